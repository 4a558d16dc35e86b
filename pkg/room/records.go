package room

import (
	"encoding/json"

	"github.com/google/uuid"

	"holdem-server/pkg/deck"
	"holdem-server/pkg/holdem"
	"holdem-server/pkg/model"
)

// newProgress builds the rows to write for g, appending records to the action log
// Chip deltas are only included once the hand has finished
func newProgress(g *holdem.Game, records []*holdem.ActionRecord) (*model.Progress, error) {
	state, err := json.Marshal(g)
	if err != nil {
		return nil, err
	}

	p := &model.Progress{
		Session: &model.Session{
			ID:     g.ID(),
			RoomID: g.RoomID(),
			Status: sessionStatus(g.Status()),
			State:  state,
		},
	}

	finished := g.Status() == holdem.StatusFinished
	if finished {
		p.ChipDeltas = make(map[int64]int)
	}

	for i, seat := range g.Seats() {
		p.Seats = append(p.Seats, &model.Seat{
			SessionID:      g.ID(),
			UserID:         seat.PlayerID,
			SeatIndex:      i,
			HoleCards:      deck.CardsToString(seat.HoleCards),
			StartingChips:  seat.StartingChips,
			ChipsInPot:     seat.ChipsInPot,
			ChipsRemaining: seat.ChipsRemaining,
			Status:         string(seat.Status),
			Position:       string(seat.Position),
			Winnings:       seat.Winnings,
		})

		if finished {
			if delta := seat.ChipsRemaining - seat.StartingChips; delta != 0 {
				p.ChipDeltas[seat.PlayerID] = delta
			}
		}
	}

	for _, r := range records {
		p.Actions = append(p.Actions, &model.Action{
			ID:        uuid.New().String(),
			SessionID: g.ID(),
			Sequence:  r.Sequence,
			UserID:    r.PlayerID,
			Type:      string(r.Type),
			Amount:    r.Amount,
			Round:     r.Street.String(),
		})
	}

	return p, nil
}

func sessionStatus(s holdem.Status) model.SessionStatus {
	switch s {
	case holdem.StatusFinished:
		return model.SessionFinished
	case holdem.StatusAborted:
		return model.SessionAborted
	}

	return model.SessionInProgress
}
