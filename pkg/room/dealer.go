package room

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"holdem-server/pkg/holdem"
	"holdem-server/pkg/model"
	"holdem-server/pkg/poker/action"
)

// ErrInvalidRoomID is returned when a connection addresses a room it has not joined
var ErrInvalidRoomID = errors.New("invalid room id")

// errShiftEnded is returned when a job reaches a dealer that has stopped
var errShiftEnded = errors.New("dealer shift ended")

type job struct {
	ctx  context.Context
	fn   func() error
	err  error
	done chan struct{}
}

// Dealer is the single writer for a room
// Everything below the run loop comment must only be touched from within the run loop
type Dealer struct {
	pitBoss *PitBoss
	roomID  string
	log     *logrus.Entry

	// current is the last published hand and is safe to read from any goroutine
	// published hands are never mutated
	current atomic.Pointer[holdem.Game]

	execInRunLoop chan *job
	quit          chan struct{}
	quitOnce      sync.Once
	done          chan struct{}

	// run loop
	members     map[*Client]bool
	resumed     bool
	game        *holdem.Game
	chatHistory []*Message
	timer       *time.Timer
}

// NewDealer creates a new dealer object
// This is called while the PitBoss holds its lock, so it needs to return quickly
func NewDealer(pitBoss *PitBoss, roomID string) *Dealer {
	return &Dealer{
		pitBoss:       pitBoss,
		roomID:        roomID,
		log:           logrus.WithField("roomId", roomID),
		execInRunLoop: make(chan *job, 256),
		quit:          make(chan struct{}),
		done:          make(chan struct{}),
		members:       make(map[*Client]bool),
	}
}

// StartShift starts the run loop
func (d *Dealer) StartShift() {
	go d.runLoop()
}

// EndShift stops the run loop
// Jobs that have not started yet fail with errShiftEnded
func (d *Dealer) EndShift() {
	d.quitOnce.Do(func() {
		close(d.quit)
	})
}

func (d *Dealer) runLoop() {
	d.log.Debug("creating dealer run loop")
	defer func() {
		d.stopTimer()
		close(d.done)
		d.log.Debug("terminating dealer run loop")
	}()

	for {
		select {
		case j := <-d.execInRunLoop:
			if err := j.ctx.Err(); err != nil {
				j.err = err
			} else {
				j.err = j.fn()
			}
			close(j.done)

			if d.idle() && d.pitBoss.retire(d) {
				return
			}
		case <-d.quit:
			return
		}
	}
}

// idle is true when nobody is watching and no hand is running
func (d *Dealer) idle() bool {
	return len(d.members) == 0 && (d.game == nil || d.game.IsOver()) && len(d.execInRunLoop) == 0
}

// do runs fn in the run loop and waits for it to finish
// Once fn has started it always runs to completion, even if ctx is cancelled
func (d *Dealer) do(ctx context.Context, fn func() error) error {
	j := &job{ctx: ctx, fn: fn, done: make(chan struct{})}

	select {
	case d.execInRunLoop <- j:
	case <-d.done:
		return errShiftEnded
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case <-j.done:
		return j.err
	case <-d.done:
		// the job may have finished just before the loop exited
		select {
		case <-j.done:
			return j.err
		default:
			return errShiftEnded
		}
	}
}

// Current returns the last published hand, if any
func (d *Dealer) Current() *holdem.Game {
	return d.current.Load()
}

// publish swaps in the new hand and tells everyone about it
func (d *Dealer) publish(g *holdem.Game) {
	d.game = g
	d.current.Store(g)
	d.pitBoss.cacheGame(g)
	d.broadcastState()
	d.armTimer()
}

func (d *Dealer) broadcastState() {
	if d.game == nil {
		return
	}

	for client := range d.members {
		client.Send(newGameStateUpdate(d.game.State(client.UserID)))
	}
}

func (d *Dealer) broadcast(msg *Message, except ...*Client) {
	for client := range d.members {
		if len(except) > 0 && client == except[0] {
			continue
		}

		client.Send(msg)
	}
}

func (d *Dealer) startSession(ctx context.Context) (*holdem.Game, error) {
	if err := d.resume(ctx); err != nil {
		return nil, err
	}

	if d.game != nil && !d.game.IsOver() {
		return nil, model.ErrSessionInProgress
	}

	store := d.pitBoss.store
	room, err := store.GetRoom(ctx, d.roomID)
	if err != nil {
		return nil, err
	}

	players, err := store.GetActivePlayers(ctx, d.roomID)
	if err != nil {
		return nil, err
	}

	seated := make([]*holdem.SeatPlayer, 0, len(players))
	for _, rp := range players {
		if rp.Chips > 0 {
			seated = append(seated, &holdem.SeatPlayer{PlayerID: rp.UserID, Chips: rp.Chips})
		}
	}

	opts := holdem.Options{SmallBlind: room.SmallBlind, BigBlind: room.BigBlind}
	g, err := holdem.NewGame(uuid.New().String(), d.roomID, seated, opts, d.pitBoss.rng)
	if err != nil {
		return nil, err
	}

	progress, err := newProgress(g, g.Log())
	if err != nil {
		return nil, err
	}

	if err := store.CreateSession(ctx, progress); err != nil {
		return nil, err
	}

	d.log.WithFields(logrus.Fields{
		"sessionId": g.ID(),
		"players":   len(seated),
		"deckHash":  g.DeckHash(),
	}).Info("hand started")

	d.pitBoss.registerSession(g.ID(), d.roomID)
	d.pitBoss.invalidateRoom(d.roomID)
	d.publish(g)
	return g, nil
}

// execute applies the action to a copy of the hand and only swaps it in once it is saved
func (d *Dealer) execute(ctx context.Context, sessionID string, userID int64, a action.Action, amount int) (*holdem.Game, error) {
	g, err := d.loadGame(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	next := g.Clone()
	record, err := next.Apply(userID, a, amount)
	if err == nil {
		err = next.CheckInvariants()
	}

	if err != nil {
		var inconsistency holdem.InconsistencyError
		if errors.As(err, &inconsistency) {
			d.abort(ctx, g, err)
		}

		return nil, err
	}

	progress, err := newProgress(next, []*holdem.ActionRecord{record})
	if err != nil {
		return nil, err
	}

	if err := d.pitBoss.store.SaveProgress(ctx, progress); err != nil {
		return nil, err
	}

	if next.IsOver() {
		d.log.WithField("sessionId", next.ID()).Info("hand finished")
		d.pitBoss.invalidateRoom(d.roomID)
	}

	d.publish(next)
	return next, nil
}

// abort voids a hand whose accounting no longer adds up
// Committed chips are not credited back to the room
func (d *Dealer) abort(ctx context.Context, g *holdem.Game, cause error) {
	d.log.WithError(cause).WithField("sessionId", g.ID()).Error("voiding hand")

	aborted := g.Clone()
	aborted.Abort()

	progress, err := newProgress(aborted, nil)
	if err == nil {
		err = d.pitBoss.store.SaveProgress(ctx, progress)
	}

	if err != nil {
		d.log.WithError(err).WithField("sessionId", g.ID()).Error("could not save voided hand")
	}

	d.publish(aborted)
}

// loadGame returns the hand for sessionID, restoring it from storage if this dealer has not seen it
func (d *Dealer) loadGame(ctx context.Context, sessionID string) (*holdem.Game, error) {
	if d.game != nil && d.game.ID() == sessionID {
		return d.game, nil
	}

	session, err := d.pitBoss.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if session.RoomID != d.roomID {
		return nil, model.ErrNotFound
	}

	g, err := holdem.Restore(session.State)
	if err != nil {
		return nil, err
	}

	if !g.IsOver() {
		d.adopt(g)
	}

	return g, nil
}

// resume loads the room's running hand from storage, once per dealer
func (d *Dealer) resume(ctx context.Context) error {
	if d.resumed || d.game != nil {
		d.resumed = true
		return nil
	}

	session, err := d.pitBoss.store.GetActiveSession(ctx, d.roomID)
	if errors.Is(err, model.ErrNotFound) {
		d.resumed = true
		return nil
	} else if err != nil {
		return err
	}

	g, err := holdem.Restore(session.State)
	if err != nil {
		return err
	}

	d.resumed = true
	d.adopt(g)
	return nil
}

// adopt makes a restored hand the live one
func (d *Dealer) adopt(g *holdem.Game) {
	d.log.WithField("sessionId", g.ID()).Info("resuming hand from storage")
	d.pitBoss.registerSession(g.ID(), d.roomID)
	d.game = g
	d.current.Store(g)
	d.armTimer()
}

func (d *Dealer) armTimer() {
	d.stopTimer()

	timeout := d.pitBoss.actionTimeout
	if timeout <= 0 || d.game == nil {
		return
	}

	playerID, ok := d.game.Turn()
	if !ok {
		return
	}

	sessionID, count := d.game.ID(), d.game.ActionCount()
	d.timer = time.AfterFunc(timeout, func() {
		err := d.do(context.Background(), func() error {
			return d.expire(sessionID, playerID, count)
		})

		if err != nil && !errors.Is(err, errShiftEnded) {
			d.log.WithError(err).WithField("sessionId", sessionID).Warn("could not fold on timeout")
		}
	})
}

func (d *Dealer) stopTimer() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

// expire folds the player if nothing has happened since the timer was armed
func (d *Dealer) expire(sessionID string, playerID int64, actionCount int) error {
	if d.game == nil || d.game.ID() != sessionID || d.game.ActionCount() != actionCount {
		return nil
	}

	d.log.WithFields(logrus.Fields{
		"sessionId": sessionID,
		"playerId":  playerID,
	}).Info("player ran out of time")

	_, err := d.execute(context.Background(), sessionID, playerID, action.Fold, 0)
	return err
}

func (d *Dealer) addMember(ctx context.Context, c *Client) {
	if err := d.resume(ctx); err != nil {
		d.log.WithError(err).Warn("could not resume hand")
	}

	c.Send(&Message{Type: TypeJoinRoomSuccess, Data: &RoomAck{RoomID: d.roomID}})
	if d.members[c] {
		return
	}

	d.members[c] = true
	d.broadcast(&Message{Type: TypePlayerJoined, Data: &MemberNotice{UserID: c.UserID, RoomID: d.roomID}}, c)

	for _, msg := range d.chatHistory {
		c.Send(msg)
	}

	if d.game != nil {
		c.Send(newGameStateUpdate(d.game.State(c.UserID)))
	}
}

// removeMember drops the client and notifies the rest of the room with notice
func (d *Dealer) removeMember(c *Client, notice MessageType) {
	if !d.members[c] {
		return
	}

	delete(d.members, c)
	if notice == TypePlayerLeft {
		c.Send(&Message{Type: TypeLeaveRoomSuccess, Data: &RoomAck{RoomID: d.roomID}})
	}

	d.broadcast(&Message{Type: notice, Data: &MemberNotice{UserID: c.UserID, RoomID: d.roomID}})
}

func (d *Dealer) relayChat(c *Client, msg *ChatMessage) error {
	if !d.members[c] {
		return ErrInvalidRoomID
	}

	relay := newChatRelay(c.UserID, msg, time.Now())
	d.addChatMessage(relay)
	d.broadcast(relay)
	return nil
}
