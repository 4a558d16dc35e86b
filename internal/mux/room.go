package mux

import (
	"net/http"

	gmux "github.com/gorilla/mux"

	"holdem-server/pkg/model"
)

type postRoomPayload struct {
	Name       string `json:"name"`
	SmallBlind int    `json:"smallBlind"`
	BigBlind   int    `json:"bigBlind"`
	MaxPlayers int    `json:"maxPlayers"`
}

// getRoom lists rooms, optionally filtered with ?status=waiting|playing
func (m *Mux) getRoom() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start, rows, err := parsePaginationOptions(r)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, err)
			return
		}

		rooms, err := m.pitBoss.ListRooms(r.Context(), model.RoomStatus(r.FormValue("status")), start, rows)
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, rooms)
	}
}

func (m *Mux) postRoom() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var pp postRoomPayload
		if !decodeRequest(w, r, &pp) {
			return
		}

		rm, err := m.pitBoss.CreateRoom(r.Context(), userID(r), pp.Name, pp.SmallBlind, pp.BigBlind, pp.MaxPlayers)
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, rm)
	}
}

func (m *Mux) getRoomID() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view, err := m.pitBoss.Room(r.Context(), gmux.Vars(r)["roomId"])
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, view)
	}
}

func (m *Mux) postRoomIDSeat() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rp, err := m.pitBoss.SeatPlayer(r.Context(), gmux.Vars(r)["roomId"], userID(r))
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, rp)
	}
}

func (m *Mux) deleteRoomIDSeat() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := m.pitBoss.StandUp(r.Context(), gmux.Vars(r)["roomId"], userID(r)); err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, "OK")
	}
}
