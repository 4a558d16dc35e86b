package model

import (
	"encoding/json"
	"time"
)

// RoomStatus is waiting between hands and playing while one is dealt
type RoomStatus string

// RoomStatus constants
const (
	RoomWaiting RoomStatus = "waiting"
	RoomPlaying RoomStatus = "playing"
)

// IsValid returns true for the known statuses
func (r RoomStatus) IsValid() bool {
	return r == RoomWaiting || r == RoomPlaying
}

// Room is a record in the `rooms` table
type Room struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	SmallBlind int        `json:"smallBlind"`
	BigBlind   int        `json:"bigBlind"`
	MaxPlayers int        `json:"maxPlayers"`
	Status     RoomStatus `json:"status"`
	CreatedBy  int64      `json:"createdBy"`
	Created    time.Time  `json:"created"`
	Updated    time.Time  `json:"updated"`
}

// RoomPlayer is a record in the `room_players` table
// Chips is the player's bankroll in the room between hands
type RoomPlayer struct {
	ID      int64     `json:"id"`
	RoomID  string    `json:"roomId"`
	UserID  int64     `json:"userId"`
	Chips   int       `json:"chips"`
	Active  bool      `json:"active"`
	Created time.Time `json:"created"`
	Updated time.Time `json:"updated"`
}

// SessionStatus mirrors the hand status stored with a session
type SessionStatus string

// SessionStatus constants
const (
	SessionInProgress SessionStatus = "in_progress"
	SessionFinished   SessionStatus = "finished"
	SessionAborted    SessionStatus = "aborted"
)

// Session is a record in the `game_sessions` table
// State holds the full serialized hand
type Session struct {
	ID      string          `json:"id"`
	RoomID  string          `json:"roomId"`
	Status  SessionStatus   `json:"status"`
	State   json.RawMessage `json:"-"`
	Created time.Time       `json:"created"`
	Updated time.Time       `json:"updated"`
	Ended   *time.Time      `json:"ended,omitempty"`
}

// Seat is a record in the `session_seats` table
type Seat struct {
	SessionID      string `json:"sessionId"`
	UserID         int64  `json:"userId"`
	SeatIndex      int    `json:"seatIndex"`
	HoleCards      string `json:"-"`
	StartingChips  int    `json:"startingChips"`
	ChipsInPot     int    `json:"chipsInPot"`
	ChipsRemaining int    `json:"chipsRemaining"`
	Status         string `json:"status"`
	Position       string `json:"position"`
	Winnings       int    `json:"winnings"`
}

// Action is a record in the `actions` table
type Action struct {
	ID        string    `json:"id"`
	SessionID string    `json:"sessionId"`
	Sequence  int       `json:"sequence"`
	UserID    int64     `json:"userId"`
	Type      string    `json:"action_type"`
	Amount    int       `json:"amount"`
	Round     string    `json:"round"`
	Created   time.Time `json:"created"`
}

// PlayerStats is an aggregate over a user's finished hands
// A hand counts as won when the player left it with more chips than they brought
type PlayerStats struct {
	UserID      int64 `json:"userId"`
	GamesPlayed int   `json:"gamesPlayed"`
	GamesWon    int   `json:"gamesWon"`
	NetChips    int   `json:"netChips"`
}

// Progress is everything written for a session in a single transaction
type Progress struct {
	Session *Session
	Seats   []*Seat
	// Actions are appended, never updated
	Actions []*Action
	// ChipDeltas are added to room_players.chips keyed by user ID
	ChipDeltas map[int64]int
}

// roomStatusFor is the room status while a session has the given status
func roomStatusFor(s SessionStatus) RoomStatus {
	if s == SessionInProgress {
		return RoomPlaying
	}

	return RoomWaiting
}
