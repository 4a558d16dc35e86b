package model

import (
	"context"
	"sort"
	"sync"
	"time"
)

// Memory is an in-process store with the same semantics as Postgres
// Records are copied in and out so callers never share memory with the store
type Memory struct {
	mu          sync.Mutex
	rooms       map[string]*Room
	roomPlayers map[string][]*RoomPlayer
	sessions    map[string]*Session
	seats       map[string]map[int64]*Seat
	actions     map[string][]*Action
	nextID      int64
}

// NewMemory returns an empty store
func NewMemory() *Memory {
	return &Memory{
		rooms:       make(map[string]*Room),
		roomPlayers: make(map[string][]*RoomPlayer),
		sessions:    make(map[string]*Session),
		seats:       make(map[string]map[int64]*Seat),
		actions:     make(map[string][]*Action),
	}
}

// CreateRoom stores the room
func (m *Memory) CreateRoom(ctx context.Context, room *Room) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now().UTC()
	room.Status = RoomWaiting
	room.Created = now
	room.Updated = now
	cp := *room
	m.rooms[room.ID] = &cp
	return nil
}

// GetRoom returns a room by its ID
func (m *Memory) GetRoom(ctx context.Context, id string) (*Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.rooms[id]
	if !ok {
		return nil, ErrNotFound
	}

	cp := *r
	return &cp, nil
}

// ListRooms returns a page of rooms, newest first
// An empty status returns rooms in any status
func (m *Memory) ListRooms(ctx context.Context, status RoomStatus, start, rows int) ([]*Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	records := make([]*Room, 0)
	for _, r := range m.rooms {
		if status == "" || r.Status == status {
			cp := *r
			records = append(records, &cp)
		}
	}

	sort.Slice(records, func(i, j int) bool {
		if !records[i].Created.Equal(records[j].Created) {
			return records[i].Created.After(records[j].Created)
		}

		return records[i].ID < records[j].ID
	})

	if start >= len(records) {
		return []*Room{}, nil
	}

	records = records[start:]
	if len(records) > rows {
		records = records[:rows]
	}

	return records, nil
}

// SeatPlayer adds the user to the room, reactivating a returning player
func (m *Memory) SeatPlayer(ctx context.Context, roomID string, userID int64, chips int) (*RoomPlayer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	room, ok := m.rooms[roomID]
	if !ok {
		return nil, ErrNotFound
	}

	seated := 0
	var existing *RoomPlayer
	for _, rp := range m.roomPlayers[roomID] {
		if rp.UserID == userID {
			existing = rp
		} else if rp.Active {
			seated++
		}
	}

	if seated >= room.MaxPlayers {
		return nil, ErrRoomFull
	}

	now := time.Now().UTC()
	if existing != nil {
		existing.Active = true
		existing.Updated = now
		cp := *existing
		return &cp, nil
	}

	m.nextID++
	rp := &RoomPlayer{
		ID:      m.nextID,
		RoomID:  roomID,
		UserID:  userID,
		Chips:   chips,
		Active:  true,
		Created: now,
		Updated: now,
	}
	m.roomPlayers[roomID] = append(m.roomPlayers[roomID], rp)

	cp := *rp
	return &cp, nil
}

// SetPlayerActive toggles whether the user is dealt into the next hand
func (m *Memory) SetPlayerActive(ctx context.Context, roomID string, userID int64, active bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, rp := range m.roomPlayers[roomID] {
		if rp.UserID == userID {
			rp.Active = active
			rp.Updated = time.Now().UTC()
			return nil
		}
	}

	return ErrNotFound
}

// GetActivePlayers returns the active players in seating order
func (m *Memory) GetActivePlayers(ctx context.Context, roomID string) ([]*RoomPlayer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	records := make([]*RoomPlayer, 0)
	for _, rp := range m.roomPlayers[roomID] {
		if rp.Active {
			cp := *rp
			records = append(records, &cp)
		}
	}

	return records, nil
}

// CreateSession stores a new session with its seats and opening actions
func (m *Memory) CreateSession(ctx context.Context, progress *Progress) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := progress.Session
	if _, ok := m.rooms[s.RoomID]; !ok {
		return ErrNotFound
	}

	for _, existing := range m.sessions {
		if existing.RoomID == s.RoomID && existing.Status == SessionInProgress && s.Status == SessionInProgress {
			return ErrSessionInProgress
		}
	}

	if err := m.checkChipDeltas(s.RoomID, progress.ChipDeltas); err != nil {
		return err
	}

	now := time.Now().UTC()
	s.Created = now
	s.Updated = now
	m.sessions[s.ID] = copySession(s)
	m.setRoomStatus(s.RoomID, roomStatusFor(s.Status), now)
	m.seats[s.ID] = make(map[int64]*Seat)
	m.writeProgress(progress)
	return nil
}

// SaveProgress updates the session, its seats, appends actions and applies chip deltas
func (m *Memory) SaveProgress(ctx context.Context, progress *Progress) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := progress.Session
	if _, ok := m.sessions[s.ID]; !ok {
		return ErrNotFound
	}

	if err := m.checkChipDeltas(s.RoomID, progress.ChipDeltas); err != nil {
		return err
	}

	now := time.Now().UTC()
	s.Updated = now
	if s.Status != SessionInProgress {
		s.Ended = &now
		m.setRoomStatus(s.RoomID, RoomWaiting, now)
	}

	m.sessions[s.ID] = copySession(s)
	m.writeProgress(progress)
	return nil
}

// checkChipDeltas verifies every delta has a row so the write stays all-or-nothing
func (m *Memory) checkChipDeltas(roomID string, deltas map[int64]int) error {
	for userID := range deltas {
		if m.roomPlayer(roomID, userID) == nil {
			return ErrNotFound
		}
	}

	return nil
}

func (m *Memory) writeProgress(progress *Progress) {
	id := progress.Session.ID
	for _, seat := range progress.Seats {
		cp := *seat
		cp.SessionID = id
		m.seats[id][seat.UserID] = &cp
	}

	now := time.Now().UTC()
	for _, a := range progress.Actions {
		a.Created = now
		cp := *a
		cp.SessionID = id
		m.actions[id] = append(m.actions[id], &cp)
	}

	for userID, delta := range progress.ChipDeltas {
		rp := m.roomPlayer(progress.Session.RoomID, userID)
		rp.Chips += delta
		rp.Updated = now
	}
}

func (m *Memory) setRoomStatus(roomID string, status RoomStatus, now time.Time) {
	if r, ok := m.rooms[roomID]; ok {
		r.Status = status
		r.Updated = now
	}
}

func (m *Memory) roomPlayer(roomID string, userID int64) *RoomPlayer {
	for _, rp := range m.roomPlayers[roomID] {
		if rp.UserID == userID {
			return rp
		}
	}

	return nil
}

// GetSession returns a session by its ID
func (m *Memory) GetSession(ctx context.Context, id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}

	return copySession(s), nil
}

// GetActiveSession returns the running session for the room
func (m *Memory) GetActiveSession(ctx context.Context, roomID string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, s := range m.sessions {
		if s.RoomID == roomID && s.Status == SessionInProgress {
			return copySession(s), nil
		}
	}

	return nil, ErrNotFound
}

// GetActions returns the session's action log in order
func (m *Memory) GetActions(ctx context.Context, sessionID string) ([]*Action, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[sessionID]; !ok {
		return nil, ErrNotFound
	}

	records := make([]*Action, 0, len(m.actions[sessionID]))
	for _, a := range m.actions[sessionID] {
		cp := *a
		records = append(records, &cp)
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].Sequence < records[j].Sequence
	})

	return records, nil
}

// GetSeats returns the session's seats in seat order
func (m *Memory) GetSeats(sessionID string) []*Seat {
	m.mu.Lock()
	defer m.mu.Unlock()

	records := make([]*Seat, 0, len(m.seats[sessionID]))
	for _, seat := range m.seats[sessionID] {
		cp := *seat
		records = append(records, &cp)
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].SeatIndex < records[j].SeatIndex
	})

	return records
}

// GetPlayerStats aggregates the user's finished hands
func (m *Memory) GetPlayerStats(ctx context.Context, userID int64) (*PlayerStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stats := PlayerStats{UserID: userID}
	for id, seats := range m.seats {
		if m.sessions[id].Status != SessionFinished {
			continue
		}

		seat, ok := seats[userID]
		if !ok {
			continue
		}

		stats.GamesPlayed++
		if seat.ChipsRemaining > seat.StartingChips {
			stats.GamesWon++
		}

		stats.NetChips += seat.ChipsRemaining - seat.StartingChips
	}

	return &stats, nil
}

func copySession(s *Session) *Session {
	cp := *s
	cp.State = append([]byte(nil), s.State...)
	if s.Ended != nil {
		ended := *s.Ended
		cp.Ended = &ended
	}

	return &cp
}
