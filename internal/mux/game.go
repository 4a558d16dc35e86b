package mux

import (
	"net/http"

	gmux "github.com/gorilla/mux"

	"holdem-server/pkg/model"
	"holdem-server/pkg/poker/action"
)

func (m *Mux) postGameStart() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state, err := m.pitBoss.StartSession(r.Context(), gmux.Vars(r)["roomId"])
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, state)
	}
}

type postGameActionsPayload struct {
	Type   action.Action `json:"action_type"`
	Amount int           `json:"amount"`
}

func (m *Mux) postGameActions() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var pp postGameActionsPayload
		if !decodeRequest(w, r, &pp) {
			return
		}

		state, err := m.pitBoss.ExecuteAction(r.Context(), gmux.Vars(r)["sessionId"], userID(r), pp.Type, pp.Amount)
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, state)
	}
}

func (m *Mux) getGameStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state, err := m.pitBoss.Status(r.Context(), gmux.Vars(r)["sessionId"], userID(r))
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, state)
	}
}

func (m *Mux) getGameHistory() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start, rows, err := parsePaginationOptions(r)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, err)
			return
		}

		actions, err := m.pitBoss.History(r.Context(), gmux.Vars(r)["sessionId"])
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, page(actions, start, rows))
	}
}

func page(actions []*model.Action, start, rows int) []*model.Action {
	if start >= len(actions) {
		return []*model.Action{}
	}

	end := start + rows
	if end > len(actions) {
		end = len(actions)
	}

	return actions[start:end]
}

func (m *Mux) getGameStats() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := m.pitBoss.Stats(r.Context(), userID(r))
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, stats)
	}
}
