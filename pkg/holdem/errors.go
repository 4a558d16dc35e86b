package holdem

import (
	"errors"
	"fmt"
)

// ErrInsufficientPlayers is returned when a hand is started with fewer than two players
var ErrInsufficientPlayers = errors.New("there must be at least two players")

// ErrSeatNotFound is returned when the player is not seated in the hand
var ErrSeatNotFound = errors.New("player is not seated in this hand")

// InvalidActionError is returned when an action breaks a betting rule
// The game is left untouched and the reason is safe to show to the player
type InvalidActionError struct {
	Reason string
}

func (i InvalidActionError) Error() string {
	return i.Reason
}

func newInvalidActionError(format string, a ...interface{}) InvalidActionError {
	return InvalidActionError{Reason: fmt.Sprintf(format, a...)}
}

// ErrNotYourTurn is returned when a player acts out of turn
var ErrNotYourTurn = InvalidActionError{Reason: "it is not your turn"}

// ErrHandIsOver is returned when an action is attempted after the hand finished
var ErrHandIsOver = InvalidActionError{Reason: "the hand is over"}

// InsufficientChipsError is returned when an action needs more chips than the seat has
type InsufficientChipsError struct {
	Needed    int
	Available int
}

func (i InsufficientChipsError) Error() string {
	return fmt.Sprintf("insufficient chips: need ${%d}, have ${%d}", i.Needed, i.Available)
}

// InconsistencyError is returned when the chip accounting no longer adds up
// The hand cannot continue once this happens
type InconsistencyError struct {
	Reason string
}

func (i InconsistencyError) Error() string {
	return fmt.Sprintf("internal inconsistency: %s", i.Reason)
}

func newInconsistencyError(format string, a ...interface{}) InconsistencyError {
	return InconsistencyError{Reason: fmt.Sprintf(format, a...)}
}

// IsUserError returns true if the error was caused by the player and is safe to display
func IsUserError(err error) bool {
	var invalid InvalidActionError
	var chips InsufficientChipsError

	return errors.As(err, &invalid) ||
		errors.As(err, &chips) ||
		errors.Is(err, ErrInsufficientPlayers) ||
		errors.Is(err, ErrSeatNotFound)
}
