package worker

import (
	"slices"

	"go.trai.ch/rtosm/internal/core/domain"
)

// transitions lists the allowed successor states of every state.
var transitions = map[domain.WorkerState][]domain.WorkerState{
	domain.StateIdle: {
		domain.StateAcquiringInitial,
		domain.StateUpdating,
		domain.StateTerminated,
	},
	domain.StateAcquiringInitial: {
		domain.StateClipping,
		domain.StateIdle,
		domain.StateTerminated,
	},
	domain.StateClipping: {
		domain.StateIdle,
		domain.StateTerminated,
	},
	domain.StateUpdating: {
		domain.StateClipping,
		domain.StateIdle,
		domain.StateTerminated,
	},
	domain.StateTerminated: nil,
}

// CanTransition reports whether a worker may move from one state to another.
func CanTransition(from, to domain.WorkerState) bool {
	return slices.Contains(transitions[from], to)
}
