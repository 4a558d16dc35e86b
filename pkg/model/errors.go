package model

import (
	"database/sql"
	"errors"

	"github.com/lib/pq"
)

const pqDuplicateKeyErrorCode pq.ErrorCode = "23505"

// UserError is an error that is safe to return in a response
type UserError string

func (u UserError) Error() string {
	return string(u)
}

// ErrNotFound is returned when a record does not exist
var ErrNotFound = errors.New("not found")

// ErrSessionInProgress is returned when a room already has a running hand
var ErrSessionInProgress = UserError("a hand is already in progress for this room")

// ErrRoomFull is returned when every seat in a room is taken
var ErrRoomFull = UserError("the room is full")

// translate maps driver errors onto the package's errors
func translate(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == pqDuplicateKeyErrorCode && pqErr.Constraint == "game_sessions_in_progress_idx" {
		return ErrSessionInProgress
	}

	return err
}
