package holdem

import (
	"holdem-server/pkg/deck"
	"holdem-server/pkg/poker/action"
	"holdem-server/pkg/poker/handanalyzer"
	"holdem-server/pkg/poker/potmanager"
)

// SeatState is the public view of a seat
// Hole cards are only included for the viewer's own seat, or for every seat still in the hand after a showdown
type SeatState struct {
	PlayerID       int64           `json:"playerId"`
	HoleCards      deck.Hand       `json:"holeCards"`
	ChipsInPot     int             `json:"chipsInPot"`
	ChipsRemaining int             `json:"chipsRemaining"`
	Status         SeatStatus      `json:"status"`
	Position       Position        `json:"position"`
	Hand           string          `json:"hand,omitempty"`
	Winnings       int             `json:"winnings"`
	Actions        []action.Action `json:"actions,omitempty"`
	CallAmount     int             `json:"callAmount,omitempty"`
}

// GameState is a consistent snapshot of the hand
type GameState struct {
	ID              string          `json:"id"`
	RoomID          string          `json:"roomId"`
	Street          Street          `json:"street"`
	Status          Status          `json:"status"`
	Pot             int             `json:"pot"`
	CurrentBet      int             `json:"currentBet"`
	SmallBlind      int             `json:"smallBlind"`
	BigBlind        int             `json:"bigBlind"`
	DealerSeatIndex int             `json:"dealerSeatIndex"`
	CommunityCards  deck.Hand       `json:"communityCards"`
	Seats           []*SeatState    `json:"seats"`
	CurrentTurn     int64           `json:"currentTurn"`
	ActionCount     int             `json:"actionCount"`
	LastAction      *ActionRecord   `json:"lastAction"`
	Pots            potmanager.Pots `json:"pots,omitempty"`
}

// State returns the hand as seen by viewerID
// Pass 0 to get the view of an observer who is not seated
func (g *Game) State(viewerID int64) *GameState {
	reveal := g.street == Showdown
	seats := make([]*SeatState, len(g.seats))
	for i, s := range g.seats {
		ss := &SeatState{
			PlayerID:       s.PlayerID,
			ChipsInPot:     s.ChipsInPot,
			ChipsRemaining: s.ChipsRemaining,
			Status:         s.Status,
			Position:       s.Position,
			Winnings:       s.Winnings,
		}

		if s.PlayerID == viewerID || (reveal && s.Hand != "") {
			ss.HoleCards = s.HoleCards.Clone()
			ss.Hand = s.Hand

			// let players see what they are holding before the showdown
			if ss.Hand == "" && len(g.community) >= 3 && s.inHand() {
				ss.Hand = handanalyzer.New(append(s.HoleCards.Clone(), g.community...)).GetHand().Key()
			}
		}

		if s.PlayerID == viewerID && i == g.turnIndex && !g.IsOver() {
			ss.Actions, ss.CallAmount = g.actionsFor(s)
		}

		seats[i] = ss
	}

	var currentTurn int64
	if id, ok := g.Turn(); ok {
		currentTurn = id
	}

	var lastAction *ActionRecord
	if n := len(g.log); n > 0 {
		cp := *g.log[n-1]
		lastAction = &cp
	}

	var pots potmanager.Pots
	if g.settlement != nil {
		pots = g.settlement.Pots
	}

	return &GameState{
		ID:              g.id,
		RoomID:          g.roomID,
		Street:          g.street,
		Status:          g.status,
		Pot:             g.pot,
		CurrentBet:      g.maxBet(),
		SmallBlind:      g.options.SmallBlind,
		BigBlind:        g.options.BigBlind,
		DealerSeatIndex: g.dealerIndex,
		CommunityCards:  g.community.Clone(),
		Seats:           seats,
		CurrentTurn:     currentTurn,
		ActionCount:     len(g.log),
		LastAction:      lastAction,
		Pots:            pots,
	}
}

// actionsFor returns the actions the seat can take and the amount needed to call
func (g *Game) actionsFor(s *Seat) ([]action.Action, int) {
	toCall := g.maxBet() - s.ChipsInPot
	actions := make([]action.Action, 0, 4)

	if toCall == 0 {
		actions = append(actions, action.Check)
	} else if toCall <= s.ChipsRemaining {
		actions = append(actions, action.Call)
	}

	if s.ChipsRemaining > toCall {
		actions = append(actions, action.Raise)
	}

	return append(actions, action.AllIn, action.Fold), toCall
}
