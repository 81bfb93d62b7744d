package device

import (
	"errors"
	"fmt"
)

// Refusal names the guard that rejected a state transition
type Refusal string

const (
	InLimbo          Refusal = "in_limbo"
	AlreadyInState   Refusal = "already_in_state"
	NotConnected     Refusal = "not_connected"
	TestModeLocked   Refusal = "test_mode_locked"
	PowerOffDisabled Refusal = "power_off_disabled"
	IllegalFrom      Refusal = "illegal_from_state"
)

// TransitionError represents a transition refused by a State Manager guard
type TransitionError struct {
	Refusal Refusal
	From    State
	To      State
}

// Error implements the error interface
func (e *TransitionError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.From == e.To && e.Refusal != AlreadyInState {
		return string(e.Refusal)
	}
	return fmt.Sprintf("%s: %s -> %s", e.Refusal, e.From, e.To)
}

// Is allows errors.Is to compare TransitionError values by Refusal
func (e *TransitionError) Is(target error) bool {
	if e == nil {
		return false
	}
	t, ok := target.(*TransitionError)
	if !ok {
		return false
	}
	return e.Refusal == t.Refusal
}

// Predefined sentinel errors for refused transitions
var (
	ErrInLimbo          = &TransitionError{Refusal: InLimbo}
	ErrAlreadyInState   = &TransitionError{Refusal: AlreadyInState}
	ErrNotConnected     = &TransitionError{Refusal: NotConnected}
	ErrTestModeLocked   = &TransitionError{Refusal: TestModeLocked}
	ErrPowerOffDisabled = &TransitionError{Refusal: PowerOffDisabled}
	ErrIllegalFrom      = &TransitionError{Refusal: IllegalFrom}
)

// Session errors
var (
	ErrNoPendingConfirmation = errors.New("no pending confirmation")
	ErrUnknownLink           = errors.New("unknown link")
)

// Refuse builds a TransitionError for the given guard.
func Refuse(r Refusal, from, to State) error {
	return &TransitionError{Refusal: r, From: from, To: to}
}

// IsRefusal reports whether err is a TransitionError with the given refusal
func IsRefusal(err error, r Refusal) bool {
	var te *TransitionError
	if errors.As(err, &te) {
		return te.Refusal == r
	}
	return false
}
