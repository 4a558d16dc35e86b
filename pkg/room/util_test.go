package room

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"holdem-server/internal/rng"
	"holdem-server/pkg/holdem"
	"holdem-server/pkg/model"
)

var cbg = context.Background()

func newTestPitBoss(t *testing.T, opts ...Option) (*PitBoss, *model.Memory) {
	t.Helper()

	store := model.NewMemory()
	opts = append([]Option{WithRNG(rng.NewSeeded(1))}, opts...)
	p := NewPitBoss(store, opts...)
	t.Cleanup(p.Close)

	return p, store
}

// setupRoom creates a room with blinds of 10/20 and seats the users
func setupRoom(t *testing.T, p *PitBoss, userIDs ...int64) *model.Room {
	t.Helper()

	room, err := p.CreateRoom(cbg, userIDs[0], "Grand Hedgehog", 10, 20, 9)
	require.NoError(t, err)

	for _, id := range userIDs {
		_, err := p.SeatPlayer(cbg, room.ID, id)
		require.NoError(t, err)
	}

	return room
}

func newTestClient(t *testing.T, p *PitBoss, userID int64) *Client {
	t.Helper()

	c, err := NewClient(nil, userID, nil)
	require.NoError(t, err)

	p.ClientConnected(c)
	msg := nextMessage(t, c)
	require.Equal(t, TypeConnectionSuccess, msg.Type)

	return c
}

// nextMessage returns the next queued message
func nextMessage(t *testing.T, c *Client) *Message {
	t.Helper()

	select {
	case msg := <-c.SendChan():
		return msg.(*Message)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a message")
	}

	return nil
}

// nextOfType skips messages until one of the type arrives
func nextOfType(t *testing.T, c *Client, typ MessageType) *Message {
	t.Helper()

	for {
		msg := nextMessage(t, c)
		if msg.Type == typ {
			return msg
		}
	}
}

// queued drains whatever is waiting for the client
func queued(c *Client) []*Message {
	messages := make([]*Message, 0)
	for {
		select {
		case msg := <-c.SendChan():
			messages = append(messages, msg.(*Message))
		default:
			return messages
		}
	}
}

func errorMessage(t *testing.T, msg *Message) string {
	t.Helper()

	require.Equal(t, TypeError, msg.Type)
	return msg.Data.(*ErrorPayload).Message
}

func seatState(state *holdem.GameState, userID int64) *holdem.SeatState {
	for _, s := range state.Seats {
		if s.PlayerID == userID {
			return s
		}
	}

	return nil
}

func toCall(state *holdem.GameState, userID int64) int {
	return state.CurrentBet - seatState(state, userID).ChipsInPot
}

func otherPlayer(state *holdem.GameState, userID int64) int64 {
	for _, s := range state.Seats {
		if s.PlayerID != userID {
			return s.PlayerID
		}
	}

	return 0
}

// failingStore fails writes made after a hand has started
type failingStore struct {
	*model.Memory

	mu   sync.Mutex
	fail bool
}

func (f *failingStore) SaveProgress(ctx context.Context, progress *model.Progress) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.fail {
		return errors.New("connection reset by peer")
	}

	return f.Memory.SaveProgress(ctx, progress)
}

func (f *failingStore) setFail(fail bool) {
	f.mu.Lock()
	f.fail = fail
	f.mu.Unlock()
}
