package holdem

import (
	"encoding/json"
	"errors"

	"holdem-server/pkg/deck"
	"holdem-server/pkg/poker/potmanager"
)

// gameJSON is the full internal state, including the deck
// It must never be sent to players
type gameJSON struct {
	ID          string                 `json:"id"`
	RoomID      string                 `json:"roomId"`
	Options     Options                `json:"options"`
	Deck        *deck.Deck             `json:"deck"`
	Seats       []*Seat                `json:"seats"`
	DealerIndex int                    `json:"dealerIndex"`
	TurnIndex   int                    `json:"turnIndex"`
	Street      Street                 `json:"street"`
	Status      Status                 `json:"status"`
	Pot         int                    `json:"pot"`
	Community   deck.Hand              `json:"community"`
	Log         []*ActionRecord        `json:"log"`
	Settlement  *potmanager.Settlement `json:"settlement,omitempty"`
}

// MarshalJSON encodes everything needed to resume the hand
func (g *Game) MarshalJSON() ([]byte, error) {
	return json.Marshal(gameJSON{
		ID:          g.id,
		RoomID:      g.roomID,
		Options:     g.options,
		Deck:        g.deck,
		Seats:       g.seats,
		DealerIndex: g.dealerIndex,
		TurnIndex:   g.turnIndex,
		Street:      g.street,
		Status:      g.status,
		Pot:         g.pot,
		Community:   g.community,
		Log:         g.log,
		Settlement:  g.settlement,
	})
}

// Restore rebuilds a game from the output of MarshalJSON
func Restore(b []byte) (*Game, error) {
	var gj gameJSON
	if err := json.Unmarshal(b, &gj); err != nil {
		return nil, err
	}

	if gj.Deck == nil || len(gj.Seats) < 2 {
		return nil, errors.New("saved game is incomplete")
	}

	if gj.TurnIndex >= len(gj.Seats) || gj.DealerIndex < 0 || gj.DealerIndex >= len(gj.Seats) {
		return nil, errors.New("saved game has an invalid seat index")
	}

	community := gj.Community
	if community == nil {
		community = make(deck.Hand, 0, 5)
	}

	log := gj.Log
	if log == nil {
		log = make([]*ActionRecord, 0)
	}

	g := &Game{
		id:          gj.ID,
		roomID:      gj.RoomID,
		options:     gj.Options,
		deck:        gj.Deck,
		seats:       gj.Seats,
		dealerIndex: gj.DealerIndex,
		turnIndex:   gj.TurnIndex,
		street:      gj.Street,
		status:      gj.Status,
		pot:         gj.Pot,
		community:   community,
		log:         log,
		settlement:  gj.Settlement,
	}

	if err := g.CheckInvariants(); err != nil {
		return nil, err
	}

	return g, nil
}
