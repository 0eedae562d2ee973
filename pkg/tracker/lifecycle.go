package tracker

import (
	"errors"
	"fmt"
)

// State is the tracker lifecycle state.
type State string

const (
	StateNoUser      State = "no_user"
	StateUserPending State = "user_pending"
	StateUserReady   State = "user_ready"
)

func (s State) String() string { return string(s) }

// trigger moves the lifecycle between states.
type trigger string

const (
	triggerBootstrap   trigger = "bootstrap"
	triggerUserCreated trigger = "user_created"
	triggerResume      trigger = "resume"
	triggerClear       trigger = "clear"
)

// ErrInvalidTransition is wrapped by TransitionError.
var ErrInvalidTransition = errors.New("tracker: invalid lifecycle transition")

// TransitionError reports a trigger that is not allowed in the current state.
type TransitionError struct {
	From    State
	Trigger string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("no transition from state '%s' on '%s'", e.From, e.Trigger)
}

func (e *TransitionError) Unwrap() error { return ErrInvalidTransition }

// transitions is indexed [from][trigger] -> to.
var transitions = map[State]map[trigger]State{
	StateNoUser: {
		triggerBootstrap: StateUserPending,
		triggerResume:    StateUserReady,
		triggerClear:     StateNoUser,
	},
	StateUserPending: {
		// Initialize may be called again after a failed create-user.
		triggerBootstrap:   StateUserPending,
		triggerUserCreated: StateUserReady,
		triggerResume:      StateUserReady,
		triggerClear:       StateNoUser,
	},
	StateUserReady: {
		triggerResume: StateUserReady,
		triggerClear:  StateNoUser,
	},
}

// lifecycle is not synchronized; the Tracker mutex guards it.
type lifecycle struct {
	current State
}

func newLifecycle() *lifecycle {
	return &lifecycle{current: StateNoUser}
}

func (l *lifecycle) fire(t trigger) error {
	to, ok := transitions[l.current][t]
	if !ok {
		return &TransitionError{From: l.current, Trigger: string(t)}
	}
	l.current = to
	return nil
}
