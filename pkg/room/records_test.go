package room

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"holdem-server/internal/rng"
	"holdem-server/pkg/deck"
	"holdem-server/pkg/holdem"
	"holdem-server/pkg/model"
	"holdem-server/pkg/poker/action"
)

func TestNewProgress(t *testing.T) {
	a := assert.New(t)

	players := []*holdem.SeatPlayer{{PlayerID: 1, Chips: 100}, {PlayerID: 2, Chips: 200}}
	g, err := holdem.NewGame("s1", "r1", players, holdem.Options{SmallBlind: 5, BigBlind: 10}, rng.NewSeeded(1))
	require.NoError(t, err)

	p, err := newProgress(g, g.Log())
	a.NoError(err)
	a.Equal("s1", p.Session.ID)
	a.Equal("r1", p.Session.RoomID)
	a.Equal(model.SessionInProgress, p.Session.Status)
	a.Nil(p.ChipDeltas)
	a.Len(p.Seats, 2)
	a.Len(p.Actions, 2)
	a.Equal("small_blind", p.Actions[0].Type)
	a.Equal(1, p.Actions[0].Sequence)
	a.Equal("preflop", p.Actions[0].Round)
	a.NotEqual(p.Actions[0].ID, p.Actions[1].ID)

	for i, s := range p.Seats {
		a.Equal(i, s.SeatIndex)
		a.Len(deck.CardsFromString(s.HoleCards), 2)
	}

	restored, err := holdem.Restore(p.Session.State)
	a.NoError(err)
	a.Equal(g.ActionCount(), restored.ActionCount())

	turn, _ := g.Turn()
	record, err := g.Apply(turn, action.Fold, 0)
	require.NoError(t, err)

	p, err = newProgress(g, []*holdem.ActionRecord{record})
	a.NoError(err)
	a.Equal(model.SessionFinished, p.Session.Status)
	a.Len(p.Actions, 1)
	a.Equal("fold", p.Actions[0].Type)
	a.Equal(3, p.Actions[0].Sequence)

	total := 0
	for _, delta := range p.ChipDeltas {
		total += delta
	}

	a.Len(p.ChipDeltas, 2)
	a.Equal(0, total)
}

func TestSessionStatus(t *testing.T) {
	a := assert.New(t)
	a.Equal(model.SessionInProgress, sessionStatus(holdem.StatusInProgress))
	a.Equal(model.SessionFinished, sessionStatus(holdem.StatusFinished))
	a.Equal(model.SessionAborted, sessionStatus(holdem.StatusAborted))
}
