// Package modal implements the payment modal: a state machine that drives a
// view through loading, payment and error screens around one checkout
// attempt, and owns the payment code countdown.
package modal

import "fmt"

// State is the modal's visible state.
type State int

const (
	Idle State = iota
	Loading
	Ready
	Errored
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	case Errored:
		return "errored"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Event is a named input to the state machine.
type Event int

const (
	SubmitRequested Event = iota
	NetworkSucceeded
	NetworkFailed
	CloseRequested
	RetryRequested
	Dismissed
	TimerExpired
)

func (e Event) String() string {
	switch e {
	case SubmitRequested:
		return "submit_requested"
	case NetworkSucceeded:
		return "network_resolved_ok"
	case NetworkFailed:
		return "network_resolved_err"
	case CloseRequested:
		return "close_requested"
	case RetryRequested:
		return "retry_requested"
	case Dismissed:
		return "dismissed"
	case TimerExpired:
		return "timer_expired"
	}
	return fmt.Sprintf("event(%d)", int(e))
}

// transitions is the complete transition table. Loading has no way out but
// the network result. Expiry leaves Ready in place and only sets a flag.
var transitions = map[State]map[Event]State{
	Idle: {
		SubmitRequested: Loading,
	},
	Loading: {
		NetworkSucceeded: Ready,
		NetworkFailed:    Errored,
	},
	Ready: {
		CloseRequested: Idle,
		Dismissed:      Idle,
		TimerExpired:   Ready,
	},
	Errored: {
		CloseRequested: Idle,
		RetryRequested: Idle,
		Dismissed:      Idle,
	},
}

// TransitionError reports an event that is not accepted in the current state.
type TransitionError struct {
	From  State
	Event Event
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("modal: %s not accepted in state %s", e.Event, e.From)
}

// next looks up the transition for e from s.
func next(s State, e Event) (State, error) {
	to, ok := transitions[s][e]
	if !ok {
		return s, &TransitionError{From: s, Event: e}
	}
	return to, nil
}
