package room

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"holdem-server/internal/rng"
	"holdem-server/internal/util"
	"holdem-server/pkg/cache"
	"holdem-server/pkg/holdem"
	"holdem-server/pkg/model"
	"holdem-server/pkg/poker/action"
)

const cacheTimeout = time.Second

// ErrClosed is returned once the PitBoss has been shut down
var ErrClosed = errors.New("server is shutting down")

// Store is the persistence the PitBoss needs
type Store interface {
	CreateRoom(ctx context.Context, room *model.Room) error
	GetRoom(ctx context.Context, id string) (*model.Room, error)
	ListRooms(ctx context.Context, status model.RoomStatus, start, rows int) ([]*model.Room, error)
	SeatPlayer(ctx context.Context, roomID string, userID int64, chips int) (*model.RoomPlayer, error)
	SetPlayerActive(ctx context.Context, roomID string, userID int64, active bool) error
	GetActivePlayers(ctx context.Context, roomID string) ([]*model.RoomPlayer, error)
	CreateSession(ctx context.Context, progress *model.Progress) error
	SaveProgress(ctx context.Context, progress *model.Progress) error
	GetSession(ctx context.Context, id string) (*model.Session, error)
	GetActiveSession(ctx context.Context, roomID string) (*model.Session, error)
	GetActions(ctx context.Context, sessionID string) ([]*model.Action, error)
	GetPlayerStats(ctx context.Context, userID int64) (*model.PlayerStats, error)
}

// Cache holds rooms and serialized hands
// Cache failures are logged and never fail a request
type Cache interface {
	SaveRoom(ctx context.Context, view *cache.RoomView) error
	GetRoom(ctx context.Context, roomID string) (*cache.RoomView, error)
	InvalidateRoom(ctx context.Context, roomID string) error
	SaveGame(ctx context.Context, sessionID string, state []byte) error
	GetGame(ctx context.Context, sessionID string) ([]byte, error)
}

// RoomDefaults are applied to rooms created without explicit settings
type RoomDefaults struct {
	SmallBlind    int
	BigBlind      int
	MaxPlayers    int
	StartingChips int
}

// Option configures a PitBoss
type Option func(p *PitBoss)

// WithCache sets the cache
func WithCache(c Cache) Option {
	return func(p *PitBoss) {
		p.cache = c
	}
}

// WithActionTimeout folds players who take longer than d to act
// Zero disables the timeout
func WithActionTimeout(d time.Duration) Option {
	return func(p *PitBoss) {
		p.actionTimeout = d
	}
}

// WithRNG sets the source used to shuffle and place the dealer button
func WithRNG(r rng.Generator) Option {
	return func(p *PitBoss) {
		p.rng = rng.NewLocked(r)
	}
}

// WithRoomDefaults sets the defaults for new rooms and seats
func WithRoomDefaults(defaults RoomDefaults) Option {
	return func(p *PitBoss) {
		p.defaults = defaults
	}
}

// PitBoss is responsible for dispatching connections and actions to the room dealers
type PitBoss struct {
	store         Store
	cache         Cache
	rng           rng.Generator
	actionTimeout time.Duration
	defaults      RoomDefaults

	mu       sync.RWMutex
	closed   bool
	clients  map[string]*Client
	dealers  map[string]*Dealer
	sessions map[string]string
}

// NewPitBoss returns a new dispatch object
func NewPitBoss(store Store, opts ...Option) *PitBoss {
	p := &PitBoss{
		store: store,
		rng:   rng.Crypto{},
		defaults: RoomDefaults{
			SmallBlind:    holdem.DefaultOptions().SmallBlind,
			BigBlind:      holdem.DefaultOptions().BigBlind,
			MaxPlayers:    9,
			StartingChips: 10000,
		},
		clients:  make(map[string]*Client),
		dealers:  make(map[string]*Dealer),
		sessions: make(map[string]string),
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Close ends every dealer's shift and asks connected clients to go away
func (p *PitBoss) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.closed = true
	for roomID, dealer := range p.dealers {
		dealer.EndShift()
		delete(p.dealers, roomID)
	}

	for _, client := range p.clients {
		select {
		case client.Close <- ErrClosed.Error():
		default:
		}
	}
}

// dealer returns the dealer for the room, starting one if needed
func (p *PitBoss) dealer(roomID string) (*Dealer, error) {
	p.mu.RLock()
	d, found := p.dealers[roomID]
	closed := p.closed
	p.mu.RUnlock()

	if closed {
		return nil, ErrClosed
	}

	if found {
		return d, nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil, ErrClosed
	}

	if d, found := p.dealers[roomID]; found {
		return d, nil
	}

	d = NewDealer(p, roomID)
	d.StartShift()
	p.dealers[roomID] = d
	return d, nil
}

// withDealer runs fn in the room's run loop
func (p *PitBoss) withDealer(ctx context.Context, roomID string, fn func(d *Dealer) error) error {
	for {
		d, err := p.dealer(roomID)
		if err != nil {
			return err
		}

		err = d.do(ctx, func() error {
			return fn(d)
		})

		if !errors.Is(err, errShiftEnded) {
			return err
		}
	}
}

// retire removes an idle dealer
// Returns false if the dealer is still needed
func (p *PitBoss) retire(d *Dealer) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(d.execInRunLoop) > 0 || p.dealers[d.roomID] != d {
		return false
	}

	delete(p.dealers, d.roomID)
	for sessionID, roomID := range p.sessions {
		if roomID == d.roomID {
			delete(p.sessions, sessionID)
		}
	}

	return true
}

func (p *PitBoss) registerSession(sessionID, roomID string) {
	p.mu.Lock()
	p.sessions[sessionID] = roomID
	p.mu.Unlock()
}

// roomForSession finds the room that owns the session
func (p *PitBoss) roomForSession(ctx context.Context, sessionID string) (string, error) {
	p.mu.RLock()
	roomID, found := p.sessions[sessionID]
	p.mu.RUnlock()

	if found {
		return roomID, nil
	}

	session, err := p.store.GetSession(ctx, sessionID)
	if err != nil {
		return "", err
	}

	return session.RoomID, nil
}

// CreateRoom creates a room owned by userID
// Zero values are replaced with the defaults and a blank name with a random one
func (p *PitBoss) CreateRoom(ctx context.Context, userID int64, name string, smallBlind, bigBlind, maxPlayers int) (*model.Room, error) {
	if smallBlind == 0 && bigBlind == 0 {
		smallBlind = p.defaults.SmallBlind
		bigBlind = p.defaults.BigBlind
	}

	if maxPlayers == 0 {
		maxPlayers = p.defaults.MaxPlayers
	}

	if err := validateRoom(smallBlind, bigBlind, maxPlayers); err != nil {
		return nil, err
	}

	room := &model.Room{
		ID:         uuid.New().String(),
		Name:       strings.TrimSpace(name),
		SmallBlind: smallBlind,
		BigBlind:   bigBlind,
		MaxPlayers: maxPlayers,
		CreatedBy:  userID,
	}

	if room.Name == "" {
		room.Name = util.RandomRoomName(p.rng)
	}

	if err := p.store.CreateRoom(ctx, room); err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"roomId": room.ID,
		"userId": userID,
	}).Info("room created")

	return room, nil
}

func validateRoom(smallBlind, bigBlind, maxPlayers int) error {
	if smallBlind <= 0 {
		return model.UserError("smallBlind must be greater than zero")
	}

	if bigBlind < smallBlind {
		return model.UserError("bigBlind must be at least smallBlind")
	}

	if maxPlayers < 2 || maxPlayers > 10 {
		return model.UserError("maxPlayers must be between 2 and 10")
	}

	return nil
}

// Room returns the room with its active players
func (p *PitBoss) Room(ctx context.Context, roomID string) (*cache.RoomView, error) {
	if p.cache != nil {
		view, err := p.cache.GetRoom(ctx, roomID)
		if err == nil {
			return view, nil
		}

		if !errors.Is(err, model.ErrNotFound) {
			logrus.WithError(err).WithField("roomId", roomID).Warn("could not read room from cache")
		}
	}

	room, err := p.store.GetRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}

	players, err := p.store.GetActivePlayers(ctx, roomID)
	if err != nil {
		return nil, err
	}

	view := &cache.RoomView{Room: room, Players: players}
	if p.cache != nil {
		if err := p.cache.SaveRoom(ctx, view); err != nil {
			logrus.WithError(err).WithField("roomId", roomID).Warn("could not cache room")
		}
	}

	return view, nil
}

// ListRooms returns a page of rooms, newest first, optionally filtered by status
func (p *PitBoss) ListRooms(ctx context.Context, status model.RoomStatus, start, rows int) ([]*model.Room, error) {
	if status != "" && !status.IsValid() {
		return nil, model.UserError("status must be waiting or playing")
	}

	return p.store.ListRooms(ctx, status, start, rows)
}

// SeatPlayer sits the user down in the room with the starting bankroll
func (p *PitBoss) SeatPlayer(ctx context.Context, roomID string, userID int64) (*model.RoomPlayer, error) {
	rp, err := p.store.SeatPlayer(ctx, roomID, userID, p.defaults.StartingChips)
	if err != nil {
		return nil, err
	}

	p.invalidateRoom(roomID)
	return rp, nil
}

// StandUp keeps the user out of future hands in the room
func (p *PitBoss) StandUp(ctx context.Context, roomID string, userID int64) error {
	if err := p.store.SetPlayerActive(ctx, roomID, userID, false); err != nil {
		return err
	}

	p.invalidateRoom(roomID)
	return nil
}

// StartSession deals a new hand in the room
func (p *PitBoss) StartSession(ctx context.Context, roomID string) (*holdem.GameState, error) {
	var state *holdem.GameState
	err := p.withDealer(ctx, roomID, func(d *Dealer) error {
		g, err := d.startSession(ctx)
		if err != nil {
			return err
		}

		state = g.State(0)
		return nil
	})

	return state, err
}

// ExecuteAction applies the user's action to the hand
// Actions for the same hand are applied one at a time in the order they arrive
func (p *PitBoss) ExecuteAction(ctx context.Context, sessionID string, userID int64, a action.Action, amount int) (*holdem.GameState, error) {
	roomID, err := p.roomForSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	var state *holdem.GameState
	err = p.withDealer(ctx, roomID, func(d *Dealer) error {
		g, err := d.execute(ctx, sessionID, userID, a, amount)
		if err != nil {
			return err
		}

		state = g.State(userID)
		return nil
	})

	return state, err
}

// Status returns the hand as seen by viewerID
// The live hand is preferred, then the cache, then storage
func (p *PitBoss) Status(ctx context.Context, sessionID string, viewerID int64) (*holdem.GameState, error) {
	if g := p.liveGame(sessionID); g != nil {
		return g.State(viewerID), nil
	}

	if p.cache != nil {
		data, err := p.cache.GetGame(ctx, sessionID)
		if err == nil {
			g, err := holdem.Restore(data)
			if err == nil {
				return g.State(viewerID), nil
			}

			logrus.WithError(err).WithField("sessionId", sessionID).Warn("could not restore cached hand")
		} else if !errors.Is(err, model.ErrNotFound) {
			logrus.WithError(err).WithField("sessionId", sessionID).Warn("could not read hand from cache")
		}
	}

	session, err := p.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	g, err := holdem.Restore(session.State)
	if err != nil {
		return nil, err
	}

	return g.State(viewerID), nil
}

func (p *PitBoss) liveGame(sessionID string) *holdem.Game {
	p.mu.RLock()
	defer p.mu.RUnlock()

	roomID, found := p.sessions[sessionID]
	if !found {
		return nil
	}

	d, found := p.dealers[roomID]
	if !found {
		return nil
	}

	if g := d.Current(); g != nil && g.ID() == sessionID {
		return g
	}

	return nil
}

// History returns the hand's action log
func (p *PitBoss) History(ctx context.Context, sessionID string) ([]*model.Action, error) {
	return p.store.GetActions(ctx, sessionID)
}

// Stats returns the user's record over finished hands
func (p *PitBoss) Stats(ctx context.Context, userID int64) (*model.PlayerStats, error) {
	return p.store.GetPlayerStats(ctx, userID)
}

func (p *PitBoss) cacheGame(g *holdem.Game) {
	if p.cache == nil {
		return
	}

	data, err := g.MarshalJSON()
	if err != nil {
		logrus.WithError(err).WithField("sessionId", g.ID()).Error("could not serialize hand")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), cacheTimeout)
	defer cancel()

	if err := p.cache.SaveGame(ctx, g.ID(), data); err != nil {
		logrus.WithError(err).WithField("sessionId", g.ID()).Warn("could not cache hand")
	}
}

func (p *PitBoss) invalidateRoom(roomID string) {
	if p.cache == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), cacheTimeout)
	defer cancel()

	if err := p.cache.InvalidateRoom(ctx, roomID); err != nil {
		logrus.WithError(err).WithField("roomId", roomID).Warn("could not invalidate room")
	}
}

// ClientConnected is called when a client connects to the server
func (p *PitBoss) ClientConnected(client *Client) {
	p.mu.Lock()
	p.clients[client.ID] = client
	p.mu.Unlock()

	logrus.WithField("client", client.String()).Debug("client connected")
	client.Send(&Message{
		Type: TypeConnectionSuccess,
		Data: &ConnectionSuccess{ClientID: client.ID, UserID: client.UserID},
	})
}

// ClientDisconnected is called when a client disconnects from the server
// The room is notified once, no matter how many times this is called
func (p *PitBoss) ClientDisconnected(client *Client) {
	p.mu.Lock()
	_, found := p.clients[client.ID]
	delete(p.clients, client.ID)
	roomID := client.roomID
	client.roomID = ""
	p.mu.Unlock()

	if !found {
		return
	}

	logrus.WithField("client", client.String()).Debug("client disconnected")
	if roomID == "" {
		return
	}

	err := p.withDealer(context.Background(), roomID, func(d *Dealer) error {
		d.removeMember(client, TypePlayerDisconnected)
		return nil
	})

	if err != nil && !errors.Is(err, ErrClosed) {
		logrus.WithError(err).WithField("client", client.String()).Error("could not remove client from room")
	}
}

// ConnectedClients returns the number of open connections
func (p *PitBoss) ConnectedClients() int {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return len(p.clients)
}

// ReceivedMessage is called when the server receives a message from a connected client
func (p *PitBoss) ReceivedMessage(ctx context.Context, client *Client, b []byte) {
	if !client.allow() {
		client.Send(newErrorResponse(ErrRateLimited))
		return
	}

	msg, err := DecodeMessage(b)
	if err != nil {
		logrus.WithError(err).WithField("client", client.String()).Debug("could not decode message")
		client.Send(newErrorResponse(err))
		return
	}

	if err := p.dispatch(ctx, client, msg); err != nil {
		client.Send(newErrorResponse(err))
	}
}

func (p *PitBoss) dispatch(ctx context.Context, client *Client, msg Inbound) error {
	switch m := msg.(type) {
	case *JoinRoom:
		return p.joinRoom(ctx, client, m.RoomID)
	case *LeaveRoom:
		return p.leaveRoom(ctx, client, m.RoomID)
	case *GameAction:
		state, err := p.ExecuteAction(ctx, m.SessionID, client.UserID, m.Action.Type, m.Action.Amount)
		if err != nil {
			return err
		}

		// members already received the broadcast
		if p.currentRoom(client) != state.RoomID {
			client.Send(newGameStateUpdate(state))
		}

		return nil
	case *ChatMessage:
		if p.currentRoom(client) != m.RoomID {
			return ErrInvalidRoomID
		}

		return p.withDealer(ctx, m.RoomID, func(d *Dealer) error {
			return d.relayChat(client, m)
		})
	}

	return ErrUnknownMessageType
}

func (p *PitBoss) currentRoom(client *Client) string {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return client.roomID
}

// joinRoom moves the client into the room, leaving any room it was in
func (p *PitBoss) joinRoom(ctx context.Context, client *Client, roomID string) error {
	if _, err := p.Room(ctx, roomID); err != nil {
		return err
	}

	p.mu.Lock()
	previous := client.roomID
	client.roomID = roomID
	p.mu.Unlock()

	if previous != "" && previous != roomID {
		err := p.withDealer(ctx, previous, func(d *Dealer) error {
			d.removeMember(client, TypePlayerLeft)
			return nil
		})

		if err != nil {
			return err
		}
	}

	return p.withDealer(ctx, roomID, func(d *Dealer) error {
		d.addMember(ctx, client)
		return nil
	})
}

func (p *PitBoss) leaveRoom(ctx context.Context, client *Client, roomID string) error {
	p.mu.Lock()
	if client.roomID != roomID {
		p.mu.Unlock()
		return ErrInvalidRoomID
	}

	client.roomID = ""
	p.mu.Unlock()

	return p.withDealer(ctx, roomID, func(d *Dealer) error {
		d.removeMember(client, TypePlayerLeft)
		return nil
	})
}
