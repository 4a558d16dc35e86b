package room

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"holdem-server/pkg/holdem"
	"holdem-server/pkg/model"
)

const internalErrorMessage = "an internal error occurred"

// displayable returns true if err is safe to show to the player
// A broken hand is surfaced as is so the table knows it was voided
func displayable(err error) bool {
	var userErr model.UserError
	var inconsistency holdem.InconsistencyError

	return holdem.IsUserError(err) ||
		errors.As(err, &userErr) ||
		errors.As(err, &inconsistency) ||
		errors.Is(err, model.ErrNotFound) ||
		errors.Is(err, ErrMalformedMessage) ||
		errors.Is(err, ErrUnknownMessageType) ||
		errors.Is(err, ErrInvalidRoomID) ||
		errors.Is(err, ErrRateLimited) ||
		errors.Is(err, context.DeadlineExceeded)
}

func newErrorResponse(err error) *Message {
	msg := err.Error()
	if !displayable(err) {
		logrus.WithError(err).Error("hiding internal error from client")
		msg = internalErrorMessage
	}

	return &Message{
		Type: TypeError,
		Data: &ErrorPayload{Message: msg},
	}
}
