package mux

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	gmux "github.com/gorilla/mux"
	"golang.org/x/time/rate"

	"holdem-server/internal/jwt"
	"holdem-server/pkg/room"
)

type ctxKey int

const (
	ctxUserIDKey ctxKey = iota
)

const uuidPattern = `(?i)[a-f0-9]{8}(?:-[a-f0-9]{4}){3}-[a-f0-9]{12}`

var errMissingCredentials = errors.New("missing credentials")

// Mux handles HTTP requests
type Mux struct {
	*gmux.Router
	version string
	pitBoss *room.PitBoss
	keys    *jwt.Keys
	socket  SocketConfig

	// store for testing purposes
	authRouter *gmux.Router
}

// SocketConfig limits how quickly a websocket connection may send messages
// A zero MessagesPerSecond disables the limit
type SocketConfig struct {
	MessagesPerSecond float64
	Burst             int
}

func (s SocketConfig) newLimiter() *rate.Limiter {
	if s.MessagesPerSecond <= 0 {
		return nil
	}

	return rate.NewLimiter(rate.Limit(s.MessagesPerSecond), s.Burst)
}

// NewMux returns a new HTTP mux
func NewMux(version string, pitBoss *room.PitBoss, keys *jwt.Keys, socket SocketConfig) *Mux {
	this := &Mux{
		Router:  gmux.NewRouter(),
		version: version,
		pitBoss: pitBoss,
		keys:    keys,
		socket:  socket,
	}

	this.authRouter = this.Router.NewRoute().Subrouter()
	this.authRouter.Use(this.authMiddleware)

	// unauthorized endpoints
	{
		r := this.Router
		r.Methods(http.MethodGet).Path("/health").Handler(this.getHealth())

		// the socket authenticates after the upgrade so it can close with a reason
		r.Methods(http.MethodGet).Path("/ws").Handler(this.getWS())
	}

	// requires bearer authorization
	{
		r := this.authRouter

		r.Methods(http.MethodGet).Path("/room").Handler(this.getRoom())
		r.Methods(http.MethodPost).Path("/room").Handler(this.postRoom())
		r.Methods(http.MethodGet).Path("/room/{roomId:" + uuidPattern + "}").Handler(this.getRoomID())
		r.Methods(http.MethodPost).Path("/room/{roomId:" + uuidPattern + "}/seat").Handler(this.postRoomIDSeat())
		r.Methods(http.MethodDelete).Path("/room/{roomId:" + uuidPattern + "}/seat").Handler(this.deleteRoomIDSeat())

		r.Methods(http.MethodGet).Path("/game/stats").Handler(this.getGameStats())
		r.Methods(http.MethodPost).Path("/game/{roomId:" + uuidPattern + "}/start").Handler(this.postGameStart())
		r.Methods(http.MethodPost).Path("/game/{sessionId:" + uuidPattern + "}/actions").Handler(this.postGameActions())
		r.Methods(http.MethodGet).Path("/game/{sessionId:" + uuidPattern + "}/status").Handler(this.getGameStatus())
		r.Methods(http.MethodGet).Path("/game/{sessionId:" + uuidPattern + "}/history").Handler(this.getGameHistory())
	}

	return this
}

func (m *Mux) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := r.FormValue("access_token")
		if token == "" {
			authHeader := strings.Split(r.Header.Get("Authorization"), " ")
			if len(authHeader) != 2 || strings.ToLower(authHeader[0]) != "bearer" {
				writeJSONError(w, http.StatusUnauthorized, nil)
				return
			}

			token = authHeader[1]
		}

		id, err := m.keys.ValidUserID(token)
		if err != nil {
			writeJSONError(w, http.StatusUnauthorized, nil)
			return
		}

		newCtx := context.WithValue(r.Context(), ctxUserIDKey, id)
		w.Header().Set("Holdem-UserID", strconv.FormatInt(id, 10))
		next.ServeHTTP(w, r.WithContext(newCtx))
	})
}

func userID(r *http.Request) int64 {
	return r.Context().Value(ctxUserIDKey).(int64)
}
