package handler

type ContextKey string

var (
	ActorCtxKey       ContextKey = "actor"
	RecurringShiftCtx ContextKey = "recurringShift"
)
