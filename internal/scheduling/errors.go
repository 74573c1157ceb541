package scheduling

import (
	"errors"
	"fmt"
)

// Kind is the stable, machine-checkable identifier of a rejected operation.
type Kind string

const (
	KindShiftNotFound      Kind = "SHIFT_NOT_FOUND"
	KindEngineerNotFound   Kind = "ENGINEER_NOT_FOUND"
	KindDefinitionNotFound Kind = "DEFINITION_NOT_FOUND"
	KindSourceNotAssigned  Kind = "SOURCE_NOT_ASSIGNED"
	KindAssignmentNotFound Kind = "ASSIGNMENT_NOT_FOUND"

	KindValidation       Kind = "VALIDATION"
	KindEngineerInactive Kind = "ENGINEER_INACTIVE"
	KindSectorMismatch   Kind = "SECTOR_MISMATCH"
	KindCapacityReached  Kind = "CAPACITY_REACHED"
	KindRangeTooLarge    Kind = "RANGE_TOO_LARGE"

	KindAlreadyAssigned  Kind = "ALREADY_ASSIGNED"
	KindOverlappingShift Kind = "OVERLAPPING_SHIFT"
	KindLockConflict     Kind = "LOCK_CONFLICT"

	KindLockUnavailable Kind = "LOCK_UNAVAILABLE"
	KindInternal        Kind = "INTERNAL"
)

// Class groups kinds by caller-visible outcome. The HTTP layer maps one
// class to one status code.
type Class int

const (
	ClassNotFound Class = iota
	ClassValidation
	ClassConflict
	ClassLockUnavailable
	ClassInternal
)

func (k Kind) Class() Class {
	switch k {
	case KindShiftNotFound, KindEngineerNotFound, KindDefinitionNotFound,
		KindSourceNotAssigned, KindAssignmentNotFound:
		return ClassNotFound
	case KindValidation, KindEngineerInactive, KindSectorMismatch,
		KindCapacityReached, KindRangeTooLarge:
		return ClassValidation
	case KindAlreadyAssigned, KindOverlappingShift, KindLockConflict:
		return ClassConflict
	case KindLockUnavailable:
		return ClassLockUnavailable
	default:
		return ClassInternal
	}
}

// Error carries a kind for machines and a message for humans.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func Errorf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Internal wraps an unexpected failure, keeping the cause in the message.
func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Message: err.Error()}
}

// KindOf extracts the kind from err, or KindInternal for untyped errors.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindInternal
}
