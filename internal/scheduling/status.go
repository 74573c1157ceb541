package scheduling

import (
	"github.com/fieldops-dev/shift-scheduler/backend/internal/domain"
)

// Legal status transitions. ASSIGNED loops on itself for reassignment,
// COMPLETED is terminal.
var transitions = map[domain.ShiftStatus][]domain.ShiftStatus{
	domain.StatusUnassigned: {domain.StatusAssigned},
	domain.StatusAssigned:   {domain.StatusAssigned, domain.StatusUnassigned, domain.StatusCompleted},
	domain.StatusCompleted:  {},
}

func CanTransition(from, to domain.ShiftStatus) bool {
	if from == to {
		return true
	}
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// StatusAfterAssign returns the shift status after an assignment is added.
// Completed shifts keep their status; everything else becomes ASSIGNED.
func StatusAfterAssign(current domain.ShiftStatus) domain.ShiftStatus {
	if current == domain.StatusCompleted {
		return current
	}
	return domain.StatusAssigned
}

// StatusAfterUnassign returns the status once an assignment has been removed
// and `remaining` rows are left on the shift.
func StatusAfterUnassign(remaining int) domain.ShiftStatus {
	if remaining == 0 {
		return domain.StatusUnassigned
	}
	return domain.StatusAssigned
}
