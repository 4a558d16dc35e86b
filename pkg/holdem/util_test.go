package holdem

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"holdem-server/pkg/deck"
	"holdem-server/pkg/poker/action"
)

// lastIndex always picks the highest index
// The shuffle leaves the deck in canonical order and the button lands on the last seat
type lastIndex struct{}

func (lastIndex) Intn(n int) int {
	return n - 1
}

func newTestGame(t *testing.T, stacks ...int) *Game {
	t.Helper()

	players := make([]*SeatPlayer, len(stacks))
	for i, chips := range stacks {
		players[i] = &SeatPlayer{PlayerID: int64(i + 1), Chips: chips}
	}

	g, err := NewGame("session-1", "room-1", players, DefaultOptions(), lastIndex{})
	require.NoError(t, err)

	return g
}

// stackDeck replaces the hole cards and makes the board come out in the order given
// The hole cards stay at the front of the deck as already dealt
func stackDeck(g *Game, board string, holes ...string) {
	cards := make([]*deck.Card, 0)
	for i, h := range holes {
		g.seats[i].HoleCards = deck.CardsFromString(h)
		cards = append(cards, g.seats[i].HoleCards...)
	}

	g.deck = &deck.Deck{Cards: append(cards, deck.CardsFromString(board)...), Cursor: len(cards)}
}

func assertAction(t *testing.T, g *Game, playerID int64, a action.Action, amount int, msgAndArgs ...interface{}) {
	t.Helper()

	_, err := g.Apply(playerID, a, amount)
	require.NoError(t, err, msgAndArgs...)
}

func assertActionFailed(t *testing.T, g *Game, playerID int64, a action.Action, amount int, expectedErr string) {
	t.Helper()

	before, err := json.Marshal(g)
	require.NoError(t, err)

	_, err = g.Apply(playerID, a, amount)
	assert.EqualError(t, err, expectedErr)

	after, err := json.Marshal(g)
	require.NoError(t, err)
	assert.JSONEq(t, string(before), string(after), "a rejected action must not change the game")
}

func assertTurn(t *testing.T, g *Game, playerID int64) {
	t.Helper()

	id, ok := g.Turn()
	assert.True(t, ok)
	assert.Equal(t, playerID, id)
}

func seatByID(g *Game, playerID int64) *Seat {
	_, s, _ := g.getSeat(playerID)
	return s
}
