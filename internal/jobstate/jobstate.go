// Package jobstate implements the orchestrator job lifecycle state machine.
//
// CanTransition is a pure, total, deterministic predicate:
// store.TransitionJob calls it before every job status write and refuses
// the write on false. No type in this package touches I/O.
package jobstate

// State is one snake_case lifecycle state of an orchestrator job.
type State string

const (
	Queued             State = "queued"
	Planning           State = "planning"
	PluginPreDispatch  State = "plugin_pre_dispatch"
	Dispatching        State = "dispatching"
	Executing          State = "executing"
	Replanning         State = "replanning"
	Reviewing          State = "reviewing"
	MergePending       State = "merge_pending"
	Merging            State = "merging"
	Completed          State = "completed"
	Failed             State = "failed"
	Canceled           State = "canceled"
)

// allowed lists every non-self transition permitted out of a given state.
// Terminal states have no entry and therefore no outgoing transitions.
var allowed = map[State][]State{
	Queued:            {Planning, Canceled},
	Planning:          {PluginPreDispatch, Dispatching, Failed, Canceled},
	PluginPreDispatch: {Dispatching, Failed, Canceled},
	Dispatching:       {Executing, Failed, Canceled},
	Executing:         {Replanning, Reviewing, Completed, Failed, Canceled},
	Replanning:        {Dispatching, Failed, Canceled},
	Reviewing:         {MergePending, Merging, Completed, Failed, Canceled},
	MergePending:      {Merging, Failed, Canceled},
	Merging:           {Completed, Failed, Canceled},
}

// terminal states have no outgoing transitions except the self-transition.
var terminal = map[State]bool{
	Completed: true,
	Failed:    true,
	Canceled:  true,
}

// IsTerminal reports whether s has no outgoing transitions.
func IsTerminal(s State) bool {
	return terminal[s]
}

// IsValid reports whether s is one of the twelve known states.
func IsValid(s State) bool {
	switch s {
	case Queued, Planning, PluginPreDispatch, Dispatching, Executing,
		Replanning, Reviewing, MergePending, Merging, Completed, Failed, Canceled:
		return true
	default:
		return false
	}
}

// CanTransition reports whether a write from -> to is permitted.
// Self-transitions are always allowed (idempotent writes); terminal states
// accept nothing else; every non-terminal state can always reach Canceled
// (the cancellation guarantee).
func CanTransition(from, to State) bool {
	if from == to {
		return true
	}
	for _, candidate := range allowed[from] {
		if candidate == to {
			return true
		}
	}
	return false
}

// Transition applies from -> to, returning ok=false (and leaving from
// untouched from the caller's perspective) when the move is illegal.
// Callers use this instead of CanTransition directly when they also want
// the resulting state in one call.
func Transition(from, to State) (State, bool) {
	if !CanTransition(from, to) {
		return from, false
	}
	return to, true
}
