package holdem

import (
	"holdem-server/pkg/deck"
)

// SeatStatus is the standing of a seat within the hand
type SeatStatus string

// seat status constants
const (
	SeatActive SeatStatus = "active"
	SeatFolded SeatStatus = "folded"
	SeatAllIn  SeatStatus = "all_in"
	SeatOut    SeatStatus = "out"
)

// Position is the seat's label relative to the dealer button
type Position string

// position constants
const (
	PositionButton      Position = "btn"
	PositionSmallBlind  Position = "sb"
	PositionBigBlind    Position = "bb"
	PositionUnderTheGun Position = "utg"
	PositionMiddle      Position = "mp"
	PositionCutoff      Position = "co"
)

// positionFor returns the label for seat index i with the dealer at index d
// The first matching label wins, so short tables never see utg or co.
// Heads-up the button posts the big blind and is labelled for it
func positionFor(i, d, n int) Position {
	if n == 2 {
		if i == d {
			return PositionBigBlind
		}

		return PositionSmallBlind
	}

	switch i {
	case d:
		return PositionButton
	case (d + 1) % n:
		return PositionSmallBlind
	case (d + 2) % n:
		return PositionBigBlind
	case (d + 3) % n:
		return PositionUnderTheGun
	case (d - 1 + n) % n:
		return PositionCutoff
	}

	return PositionMiddle
}

// SeatPlayer is a player joining the hand with a stack
type SeatPlayer struct {
	PlayerID int64
	Chips    int
}

// Seat is a player's place in a hand
// ChipsInPot counts everything the seat committed during the whole hand
type Seat struct {
	PlayerID       int64      `json:"playerId"`
	HoleCards      deck.Hand  `json:"holeCards"`
	StartingChips  int        `json:"startingChips"`
	ChipsInPot     int        `json:"chipsInPot"`
	ChipsRemaining int        `json:"chipsRemaining"`
	Status         SeatStatus `json:"status"`
	Position       Position   `json:"position"`
	// Acted is true once the seat has acted since the last raise
	Acted    bool   `json:"acted"`
	Winnings int    `json:"winnings"`
	Hand     string `json:"hand,omitempty"`
}

// commit moves chips from the stack into the pot
func (s *Seat) commit(amount int) {
	s.ChipsRemaining -= amount
	s.ChipsInPot += amount

	if s.ChipsRemaining == 0 && s.Status == SeatActive {
		s.Status = SeatAllIn
	}
}

// canAct returns true if the seat can still make decisions
func (s *Seat) canAct() bool {
	return s.Status == SeatActive
}

// inHand returns true if the seat is still contesting the pot
func (s *Seat) inHand() bool {
	return s.Status == SeatActive || s.Status == SeatAllIn
}

func (s *Seat) clone() *Seat {
	cp := *s
	cp.HoleCards = s.HoleCards.Clone()
	return &cp
}
