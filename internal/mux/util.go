package mux

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/sirupsen/logrus"

	"holdem-server/pkg/holdem"
	"holdem-server/pkg/model"
	"holdem-server/pkg/room"
)

// history pages hold at most maxRows actions
const (
	maxRows     = 100
	defaultRows = 100
)

// parsePaginationOptions reads ?start=&rows= from the request
func parsePaginationOptions(r *http.Request) (start, rows int, err error) {
	if start, err = intParam(r, "start", 0); err != nil {
		return 0, 0, err
	} else if start < 0 {
		return 0, 0, errors.New("start cannot be less than zero")
	}

	if rows, err = intParam(r, "rows", defaultRows); err != nil {
		return 0, 0, err
	}

	switch {
	case rows <= 0:
		return 0, 0, errors.New("rows must be greater than zero")
	case rows > maxRows:
		return 0, 0, fmt.Errorf("rows cannot be greater than %d", maxRows)
	}

	return start, rows, nil
}

func intParam(r *http.Request, name string, defaultValue int) (int, error) {
	val := r.FormValue(name)
	if val == "" {
		return defaultValue, nil
	}

	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", name)
	}

	return n, nil
}

func decodeRequest(w http.ResponseWriter, r *http.Request, payload interface{}) bool {
	if ct := r.Header.Get("Content-Type"); ct != "application/json" && ct != "text/json" {
		writeJSONError(w, http.StatusUnsupportedMediaType, nil)
		return false
	}

	if err := json.NewDecoder(r.Body).Decode(payload); err != nil {
		writeJSONError(w, http.StatusBadRequest, err)
		return false
	}

	return true
}

func writeJSON(w http.ResponseWriter, statusCode int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logrus.WithError(err).Error("could not write JSON response")
	}
}

type errorResponse struct {
	Message    string `json:"message"`
	StatusCode int    `json:"statusCode"`
}

// writeError picks the status code for an error returned by the PitBoss
func writeError(w http.ResponseWriter, err error) {
	var userErr model.UserError

	switch {
	case errors.Is(err, model.ErrNotFound):
		writeJSONError(w, http.StatusNotFound, nil)
	case errors.Is(err, holdem.ErrInsufficientPlayers),
		errors.Is(err, model.ErrSessionInProgress),
		errors.Is(err, model.ErrRoomFull):
		writeJSONError(w, http.StatusConflict, err)
	case holdem.IsUserError(err), errors.As(err, &userErr):
		writeJSONError(w, http.StatusBadRequest, err)
	case errors.Is(err, room.ErrClosed):
		writeJSONError(w, http.StatusServiceUnavailable, err)
	default:
		writeJSONError(w, http.StatusInternalServerError, err)
	}
}

func writeJSONError(w http.ResponseWriter, statusCode int, err error) {
	var msg string

	if statusCode < 500 && err != nil {
		msg = err.Error()
	} else {
		msg = http.StatusText(statusCode)
	}

	if statusCode >= 500 {
		logrus.WithField("statusCode", statusCode).Error(err)
	}

	writeJSON(w, statusCode, errorResponse{
		Message:    msg,
		StatusCode: statusCode,
	})
}
