package room

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"holdem-server/pkg/cache"
	"holdem-server/pkg/deck"
	"holdem-server/pkg/holdem"
	"holdem-server/pkg/model"
	"holdem-server/pkg/poker/action"
)

func TestPitBoss_CreateRoom(t *testing.T) {
	a := assert.New(t)
	p, _ := newTestPitBoss(t)

	room, err := p.CreateRoom(cbg, 1, "  Prime Okapi ", 0, 0, 0)
	a.NoError(err)
	a.Equal("Prime Okapi", room.Name)
	a.Equal(10, room.SmallBlind)
	a.Equal(20, room.BigBlind)
	a.Equal(9, room.MaxPlayers)
	a.Equal(int64(1), room.CreatedBy)

	room, err = p.CreateRoom(cbg, 1, " ", 5, 10, 6)
	a.NoError(err)
	a.Regexp(`^\S+ \S+$`, room.Name)
	a.Equal(5, room.SmallBlind)

	_, err = p.CreateRoom(cbg, 1, "room", 0, 10, 6)
	a.EqualError(err, "smallBlind must be greater than zero")

	_, err = p.CreateRoom(cbg, 1, "room", 10, 5, 6)
	a.EqualError(err, "bigBlind must be at least smallBlind")

	_, err = p.CreateRoom(cbg, 1, "room", 10, 20, 11)
	a.EqualError(err, "maxPlayers must be between 2 and 10")
}

func TestPitBoss_Room(t *testing.T) {
	a := assert.New(t)
	mini := miniredis.RunT(t)
	c := cache.NewWithClient(redis.NewClient(&redis.Options{Addr: mini.Addr()}), cache.DefaultConfig())
	p, _ := newTestPitBoss(t, WithCache(c), WithRoomDefaults(RoomDefaults{SmallBlind: 5, BigBlind: 10, MaxPlayers: 6, StartingChips: 500}))

	room := setupRoom(t, p, 1)

	view, err := p.Room(cbg, room.ID)
	a.NoError(err)
	a.Equal(room.ID, view.Room.ID)
	a.Len(view.Players, 1)
	a.Equal(500, view.Players[0].Chips)

	// served from the cache until it is invalidated by a seat change
	cached, err := c.GetRoom(cbg, room.ID)
	a.NoError(err)
	a.Len(cached.Players, 1)

	_, err = p.SeatPlayer(cbg, room.ID, 2)
	a.NoError(err)
	_, err = c.GetRoom(cbg, room.ID)
	a.ErrorIs(err, model.ErrNotFound)

	view, err = p.Room(cbg, room.ID)
	a.NoError(err)
	a.Len(view.Players, 2)

	a.NoError(p.StandUp(cbg, room.ID, 2))
	view, err = p.Room(cbg, room.ID)
	a.NoError(err)
	a.Len(view.Players, 1)

	_, err = p.Room(cbg, "6b1f4a52-6f6c-4a0c-9d1e-3b7f0d8b8f00")
	a.ErrorIs(err, model.ErrNotFound)
}

func TestPitBoss_StartSession(t *testing.T) {
	a := assert.New(t)
	p, store := newTestPitBoss(t)
	room := setupRoom(t, p, 1, 2, 3)

	state, err := p.StartSession(cbg, room.ID)
	require.NoError(t, err)
	a.Equal(holdem.StatusInProgress, state.Status)
	a.Equal(holdem.Preflop, state.Street)
	a.Equal(30, state.Pot)
	a.Equal(10, state.SmallBlind)
	a.Equal(20, state.BigBlind)
	a.Len(state.Seats, 3)
	for _, s := range state.Seats {
		// nobody's cards are visible to an observer
		a.Nil(s.HoleCards)
	}

	_, err = p.StartSession(cbg, room.ID)
	a.ErrorIs(err, model.ErrSessionInProgress)

	history, err := p.History(cbg, state.ID)
	a.NoError(err)
	a.Len(history, 2)
	a.Equal("small_blind", history[0].Type)
	a.Equal(10, history[0].Amount)
	a.Equal("big_blind", history[1].Type)
	a.Equal(20, history[1].Amount)
	a.Equal("preflop", history[1].Round)

	seats := store.GetSeats(state.ID)
	a.Len(seats, 3)
	for _, s := range seats {
		a.Len(deck.CardsFromString(s.HoleCards), 2, "two cards are recorded for %d: %s", s.UserID, s.HoleCards)
	}
}

func TestPitBoss_StartSession_errors(t *testing.T) {
	a := assert.New(t)
	p, _ := newTestPitBoss(t)

	_, err := p.StartSession(cbg, "6b1f4a52-6f6c-4a0c-9d1e-3b7f0d8b8f00")
	a.ErrorIs(err, model.ErrNotFound)

	room := setupRoom(t, p, 1)
	_, err = p.StartSession(cbg, room.ID)
	a.ErrorIs(err, holdem.ErrInsufficientPlayers)

	_, err = p.SeatPlayer(cbg, room.ID, 2)
	a.NoError(err)
	a.NoError(p.StandUp(cbg, room.ID, 2))
	_, err = p.StartSession(cbg, room.ID)
	a.ErrorIs(err, holdem.ErrInsufficientPlayers)
}

func TestPitBoss_ExecuteAction_foldCreditsChips(t *testing.T) {
	a := assert.New(t)
	p, store := newTestPitBoss(t)
	room := setupRoom(t, p, 1, 2)

	state, err := p.StartSession(cbg, room.ID)
	require.NoError(t, err)

	folder := state.CurrentTurn
	winner := otherPlayer(state, folder)

	state, err = p.ExecuteAction(cbg, state.ID, folder, action.Fold, 0)
	require.NoError(t, err)
	a.Equal(holdem.StatusFinished, state.Status)
	a.Equal(30, seatState(state, winner).Winnings)

	players, err := store.GetActivePlayers(cbg, room.ID)
	a.NoError(err)
	chips := map[int64]int{}
	for _, rp := range players {
		chips[rp.UserID] = rp.Chips
	}

	a.Equal(9990, chips[folder])
	a.Equal(10010, chips[winner])

	stats, err := p.Stats(cbg, winner)
	a.NoError(err)
	a.Equal(&model.PlayerStats{UserID: winner, GamesPlayed: 1, GamesWon: 1, NetChips: 10}, stats)

	_, err = p.ExecuteAction(cbg, state.ID, winner, action.Check, 0)
	a.ErrorIs(err, holdem.ErrHandIsOver)

	// the next hand can start with the updated stacks
	next, err := p.StartSession(cbg, room.ID)
	a.NoError(err)
	a.NotEqual(state.ID, next.ID)
	a.Equal(9990+10010, seatState(next, folder).ChipsInPot+seatState(next, folder).ChipsRemaining+
		seatState(next, winner).ChipsInPot+seatState(next, winner).ChipsRemaining)
}

func TestPitBoss_ExecuteAction_invalid(t *testing.T) {
	a := assert.New(t)
	p, _ := newTestPitBoss(t)
	room := setupRoom(t, p, 1, 2, 3)

	state, err := p.StartSession(cbg, room.ID)
	require.NoError(t, err)
	turn := state.CurrentTurn

	_, err = p.ExecuteAction(cbg, state.ID, turn, action.Check, 0)
	a.EqualError(err, "you cannot check with an active bet of ${20}")

	_, err = p.ExecuteAction(cbg, state.ID, turn, action.Call, 5)
	var invalid holdem.InvalidActionError
	a.ErrorAs(err, &invalid)

	_, err = p.ExecuteAction(cbg, state.ID, turn, action.Raise, 20000)
	var chips holdem.InsufficientChipsError
	a.ErrorAs(err, &chips)

	_, err = p.ExecuteAction(cbg, state.ID, otherPlayer(state, turn), action.Fold, 0)
	a.ErrorIs(err, holdem.ErrNotYourTurn)

	_, err = p.ExecuteAction(cbg, state.ID, 99, action.Fold, 0)
	a.ErrorIs(err, holdem.ErrSeatNotFound)

	_, err = p.ExecuteAction(cbg, "6b1f4a52-6f6c-4a0c-9d1e-3b7f0d8b8f00", turn, action.Fold, 0)
	a.ErrorIs(err, model.ErrNotFound)

	after, err := p.Status(cbg, state.ID, 0)
	a.NoError(err)
	a.Equal(state.ActionCount, after.ActionCount)
	a.Equal(30, after.Pot)
}

func TestPitBoss_ExecuteAction_saveFailureLeavesHandUntouched(t *testing.T) {
	a := assert.New(t)
	store := &failingStore{Memory: model.NewMemory()}
	p := NewPitBoss(store)
	t.Cleanup(p.Close)
	room := setupRoom(t, p, 1, 2)

	state, err := p.StartSession(cbg, room.ID)
	require.NoError(t, err)

	store.setFail(true)
	_, err = p.ExecuteAction(cbg, state.ID, state.CurrentTurn, action.Call, toCall(state, state.CurrentTurn))
	a.EqualError(err, "connection reset by peer")

	after, err := p.Status(cbg, state.ID, 0)
	a.NoError(err)
	a.Equal(state.ActionCount, after.ActionCount)
	a.Equal(state.Pot, after.Pot)
	a.Equal(state.CurrentTurn, after.CurrentTurn)

	store.setFail(false)
	after, err = p.ExecuteAction(cbg, state.ID, state.CurrentTurn, action.Call, toCall(state, state.CurrentTurn))
	a.NoError(err)
	a.Equal(40, after.Pot)
}

func TestPitBoss_playsAHandToShowdown(t *testing.T) {
	a := assert.New(t)
	p, store := newTestPitBoss(t)
	room := setupRoom(t, p, 1, 2, 3)

	state, err := p.StartSession(cbg, room.ID)
	require.NoError(t, err)

	// everyone calls or checks down
	for state.Status == holdem.StatusInProgress {
		turn := state.CurrentTurn
		amount := toCall(state, turn)
		act := action.Check
		if amount > 0 {
			act = action.Call
		}

		state, err = p.ExecuteAction(cbg, state.ID, turn, act, amount)
		require.NoError(t, err)
	}

	a.Equal(holdem.StatusFinished, state.Status)
	a.Equal(holdem.Showdown, state.Street)
	a.Len(state.CommunityCards, 5)
	a.Equal(60, state.Pot)

	winnings := 0
	for _, s := range state.Seats {
		winnings += s.Winnings
		// cards are shown at showdown
		a.Len(s.HoleCards, 2)
		a.NotEmpty(s.Hand)
	}
	a.Equal(60, winnings)

	players, _ := store.GetActivePlayers(cbg, room.ID)
	total := 0
	for _, rp := range players {
		total += rp.Chips
	}
	a.Equal(30000, total)

	history, err := p.History(cbg, state.ID)
	a.NoError(err)
	a.Equal(state.ActionCount, len(history))
	for i, h := range history {
		a.Equal(i+1, h.Sequence)
	}
}

func TestPitBoss_Status(t *testing.T) {
	a := assert.New(t)
	mini := miniredis.RunT(t)
	c := cache.NewWithClient(redis.NewClient(&redis.Options{Addr: mini.Addr()}), cache.DefaultConfig())
	p, store := newTestPitBoss(t, WithCache(c))
	room := setupRoom(t, p, 1, 2)

	state, err := p.StartSession(cbg, room.ID)
	require.NoError(t, err)

	live, err := p.Status(cbg, state.ID, 1)
	a.NoError(err)
	a.Len(seatState(live, 1).HoleCards, 2)
	a.Nil(seatState(live, 2).HoleCards)

	// a second server sharing the cache
	fromCache := NewPitBoss(store, WithCache(c))
	t.Cleanup(fromCache.Close)
	cached, err := fromCache.Status(cbg, state.ID, 1)
	a.NoError(err)
	a.Equal(live, cached)

	// and one without the cache
	mini.FlushAll()
	fromStore := NewPitBoss(store)
	t.Cleanup(fromStore.Close)
	stored, err := fromStore.Status(cbg, state.ID, 2)
	a.NoError(err)
	a.Nil(seatState(stored, 1).HoleCards)
	a.Len(seatState(stored, 2).HoleCards, 2)
	a.Equal(live.Pot, stored.Pot)

	_, err = fromStore.Status(cbg, "6b1f4a52-6f6c-4a0c-9d1e-3b7f0d8b8f00", 1)
	a.ErrorIs(err, model.ErrNotFound)
}

func TestPitBoss_ExecuteAction_resumesAfterRestart(t *testing.T) {
	a := assert.New(t)
	p, store := newTestPitBoss(t)
	room := setupRoom(t, p, 1, 2)

	state, err := p.StartSession(cbg, room.ID)
	require.NoError(t, err)
	p.Close()

	restarted := NewPitBoss(store)
	t.Cleanup(restarted.Close)

	turn := state.CurrentTurn
	after, err := restarted.ExecuteAction(cbg, state.ID, turn, action.Call, toCall(state, turn))
	a.NoError(err)
	a.Equal(40, after.Pot)
	a.Equal(state.ActionCount+1, after.ActionCount)

	_, err = restarted.StartSession(cbg, room.ID)
	a.ErrorIs(err, model.ErrSessionInProgress)
}

func TestPitBoss_joinRoom_resumesAfterRestart(t *testing.T) {
	a := assert.New(t)
	p, store := newTestPitBoss(t)
	room := setupRoom(t, p, 1, 2)

	state, err := p.StartSession(cbg, room.ID)
	require.NoError(t, err)
	p.Close()

	restarted := NewPitBoss(store, WithActionTimeout(20*time.Millisecond))
	t.Cleanup(restarted.Close)

	c := newTestClient(t, restarted, 1)
	join(t, restarted, c, room.ID)

	msg := nextOfType(t, c, TypeGameStateUpdate)
	resumed := msg.Data.(*holdem.GameState)
	a.Equal(state.ID, resumed.ID)
	a.Equal(state.ActionCount, resumed.ActionCount)
	a.Len(seatState(resumed, 1).HoleCards, 2)

	slow := state.CurrentTurn
	a.Eventually(func() bool {
		s, err := restarted.Status(cbg, state.ID, 0)
		return err == nil && s.Status == holdem.StatusFinished
	}, 2*time.Second, 10*time.Millisecond)

	history, err := restarted.History(cbg, state.ID)
	require.NoError(t, err)
	last := history[len(history)-1]
	a.Equal(slow, last.UserID)
	a.Equal("fold", last.Type)

	// the room is free for the next hand
	found, err := store.GetRoom(cbg, room.ID)
	require.NoError(t, err)
	a.Equal(model.RoomWaiting, found.Status)

	_, err = restarted.StartSession(cbg, room.ID)
	a.NoError(err)
}

func TestPitBoss_StartSession_resumesAfterRestart(t *testing.T) {
	p, store := newTestPitBoss(t)
	room := setupRoom(t, p, 1, 2)

	_, err := p.StartSession(cbg, room.ID)
	require.NoError(t, err)
	p.Close()

	restarted := NewPitBoss(store)
	t.Cleanup(restarted.Close)

	_, err = restarted.StartSession(cbg, room.ID)
	assert.ErrorIs(t, err, model.ErrSessionInProgress)
}

func TestPitBoss_actionTimeoutFolds(t *testing.T) {
	p, store := newTestPitBoss(t, WithActionTimeout(20*time.Millisecond))
	room := setupRoom(t, p, 1, 2)

	state, err := p.StartSession(cbg, room.ID)
	require.NoError(t, err)
	slow := state.CurrentTurn

	assert.Eventually(t, func() bool {
		s, err := p.Status(cbg, state.ID, 0)
		return err == nil && s.Status == holdem.StatusFinished
	}, 2*time.Second, 10*time.Millisecond)

	history, err := p.History(cbg, state.ID)
	require.NoError(t, err)
	last := history[len(history)-1]
	assert.Equal(t, slow, last.UserID)
	assert.Equal(t, "fold", last.Type)

	session, err := store.GetSession(cbg, state.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SessionFinished, session.Status)
}

func TestPitBoss_actionTimeoutResetsOnAction(t *testing.T) {
	p, _ := newTestPitBoss(t, WithActionTimeout(150*time.Millisecond))
	room := setupRoom(t, p, 1, 2)

	state, err := p.StartSession(cbg, room.ID)
	require.NoError(t, err)

	turn := state.CurrentTurn
	state, err = p.ExecuteAction(cbg, state.ID, turn, action.Call, toCall(state, turn))
	require.NoError(t, err)

	// the big blind now has the option and is folded once their own clock runs out
	bigBlind := state.CurrentTurn
	assert.NotEqual(t, turn, bigBlind)
	assert.Eventually(t, func() bool {
		s, err := p.Status(cbg, state.ID, 0)
		return err == nil && s.Status == holdem.StatusFinished && seatState(s, bigBlind).Status == holdem.SeatFolded
	}, 2*time.Second, 10*time.Millisecond)
}

func TestDealer_abortVoidsHand(t *testing.T) {
	a := assert.New(t)
	p, store := newTestPitBoss(t)
	room := setupRoom(t, p, 1, 2)

	state, err := p.StartSession(cbg, room.ID)
	require.NoError(t, err)

	err = p.withDealer(cbg, room.ID, func(d *Dealer) error {
		d.abort(cbg, d.game, holdem.InconsistencyError{Reason: "pot is 30, seats hold 40"})
		return nil
	})
	a.NoError(err)

	after, err := p.Status(cbg, state.ID, 0)
	a.NoError(err)
	a.Equal(holdem.StatusAborted, after.Status)

	session, err := store.GetSession(cbg, state.ID)
	a.NoError(err)
	a.Equal(model.SessionAborted, session.Status)

	// nobody is paid for a voided hand
	players, _ := store.GetActivePlayers(cbg, room.ID)
	for _, rp := range players {
		a.Equal(10000, rp.Chips)
	}

	_, err = p.ExecuteAction(cbg, state.ID, state.CurrentTurn, action.Fold, 0)
	a.ErrorIs(err, holdem.ErrHandIsOver)

	_, err = p.StartSession(cbg, room.ID)
	a.NoError(err)
}

func TestPitBoss_retiresIdleDealers(t *testing.T) {
	p, _ := newTestPitBoss(t)
	room := setupRoom(t, p, 1, 2)
	c := newTestClient(t, p, 1)

	p.ReceivedMessage(cbg, c, []byte(`{"type":"join_room","data":{"roomId":"`+room.ID+`"}}`))
	nextOfType(t, c, TypeJoinRoomSuccess)

	p.ReceivedMessage(cbg, c, []byte(`{"type":"leave_room","data":{"roomId":"`+room.ID+`"}}`))
	nextOfType(t, c, TypeLeaveRoomSuccess)

	assert.Eventually(t, func() bool {
		p.mu.RLock()
		defer p.mu.RUnlock()
		return len(p.dealers) == 0
	}, time.Second, 5*time.Millisecond)

	// a new dealer takes over
	_, err := p.StartSession(cbg, room.ID)
	assert.NoError(t, err)
}

func TestPitBoss_Close(t *testing.T) {
	p, _ := newTestPitBoss(t)
	room := setupRoom(t, p, 1, 2)
	c := newTestClient(t, p, 1)
	p.Close()

	_, err := p.StartSession(cbg, room.ID)
	assert.ErrorIs(t, err, ErrClosed)

	select {
	case reason := <-c.Close:
		assert.Equal(t, "server is shutting down", reason)
	default:
		t.Error("expected the client to be asked to close")
	}
}
