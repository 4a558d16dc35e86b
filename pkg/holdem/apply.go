package holdem

import (
	"holdem-server/pkg/poker/action"
	"holdem-server/pkg/poker/handanalyzer"
	"holdem-server/pkg/poker/potmanager"
)

// Apply validates and applies a player's action
// amount is the number of chips the player moves into the pot: the exact difference for a call,
// anything that lifts the player's commitment above the current bet for a raise, and the whole
// stack for all in. When an error is returned the game is unchanged, except for
// an InconsistencyError which leaves the game unusable.
func (g *Game) Apply(playerID int64, a action.Action, amount int) (*ActionRecord, error) {
	if g.IsOver() {
		return nil, ErrHandIsOver
	}

	index, seat, err := g.getSeat(playerID)
	if err != nil {
		return nil, err
	}

	if !a.IsValid() {
		return nil, newInvalidActionError("%s is not a valid action", string(a))
	}

	if !seat.canAct() {
		return nil, newInvalidActionError("you cannot act, you are %s", seat.Status)
	}

	if index != g.turnIndex {
		return nil, ErrNotYourTurn
	}

	if amount < 0 {
		return nil, newInvalidActionError("amount must not be negative")
	}

	maxBet := g.maxBet()
	mine := seat.ChipsInPot

	switch a {
	case action.Fold:
		amount = 0
	case action.Check:
		if mine != maxBet {
			return nil, newInvalidActionError("you cannot check with an active bet of ${%d}", maxBet-mine)
		}

		amount = 0
	case action.Call:
		toCall := maxBet - mine
		if toCall <= 0 {
			return nil, newInvalidActionError("there is no bet to call")
		}

		if amount != toCall {
			return nil, newInvalidActionError("call must be exactly ${%d}", toCall)
		}

		if toCall > seat.ChipsRemaining {
			return nil, InsufficientChipsError{Needed: toCall, Available: seat.ChipsRemaining}
		}
	case action.Raise:
		if mine+amount <= maxBet {
			return nil, newInvalidActionError("raise must bring your bet above ${%d}", maxBet)
		}

		if amount > seat.ChipsRemaining {
			return nil, InsufficientChipsError{Needed: amount, Available: seat.ChipsRemaining}
		}
	case action.AllIn:
		if amount != seat.ChipsRemaining {
			return nil, newInvalidActionError("all in must be exactly ${%d}", seat.ChipsRemaining)
		}
	}

	if a == action.Fold {
		seat.Status = SeatFolded
	} else if amount > 0 {
		seat.commit(amount)
		g.pot += amount
	}

	seat.Acted = true

	// a raise reopens the action for everybody else
	if seat.ChipsInPot > maxBet {
		for _, s := range g.seats {
			if s != seat {
				s.Acted = false
			}
		}
	}

	record := g.appendLog(playerID, a, amount)

	if err := g.progress(index); err != nil {
		return nil, err
	}

	if err := g.CheckInvariants(); err != nil {
		return nil, err
	}

	return record, nil
}

// progress moves the hand along after the seat at index from has acted
// It hands the turn to the next seat, deals the next street or settles the hand.
func (g *Game) progress(from int) error {
	for {
		if g.countSeats((*Seat).inHand) == 1 {
			return g.settle(false)
		}

		if !g.roundComplete() {
			g.turnIndex = g.nextToAct(from)
			return nil
		}

		if g.street == River {
			return g.settle(true)
		}

		if err := g.advanceStreet(); err != nil {
			return err
		}

		from = g.dealerIndex
	}
}

// roundComplete returns true when every seat that can act has matched the bet and acted since the last raise
// When fewer than two seats can act there is nobody left to bet against, so matching the bet is enough.
func (g *Game) roundComplete() bool {
	maxBet := g.maxBet()

	canAct := 0
	for _, s := range g.seats {
		if !s.canAct() {
			continue
		}

		canAct++
		if s.ChipsInPot != maxBet {
			return false
		}
	}

	if canAct < 2 {
		return true
	}

	for _, s := range g.seats {
		if s.canAct() && !s.Acted {
			return false
		}
	}

	return true
}

// nextToAct returns the first seat after from that still owes a decision
func (g *Game) nextToAct(from int) int {
	maxBet := g.maxBet()
	n := len(g.seats)
	for i := 1; i <= n; i++ {
		index := (from + i) % n
		s := g.seats[index]
		if s.canAct() && (!s.Acted || s.ChipsInPot < maxBet) {
			return index
		}
	}

	return -1
}

// advanceStreet deals the next tranche of community cards from the hand's deck
func (g *Game) advanceStreet() error {
	next := g.street + 1
	cards, err := g.deck.DrawN(communityCardsForStreet[next])
	if err != nil {
		return newInconsistencyError("could not deal the %s: %v", next, err)
	}

	g.community = append(g.community, cards...)
	g.street = next

	for _, s := range g.seats {
		s.Acted = false
	}

	return nil
}

// settle pays out the pot and finishes the hand
// Hands are only evaluated at a showdown, a lone survivor takes the pot without showing.
func (g *Game) settle(showdown bool) error {
	n := len(g.seats)
	contenders := make([]*potmanager.Contender, n)
	for i, s := range g.seats {
		c := &potmanager.Contender{
			ID:         s.PlayerID,
			Order:      (i - g.dealerIndex - 1 + n) % n,
			ChipsInPot: s.ChipsInPot,
			Folded:     !s.inHand(),
		}

		if showdown && s.inHand() {
			ha := handanalyzer.New(append(s.HoleCards.Clone(), g.community...))
			c.Strength = ha.GetStrength()
			s.Hand = ha.GetHand().Key()
		}

		contenders[i] = c
	}

	settlement, err := potmanager.Settle(contenders, g.pot)
	if err != nil {
		return newInconsistencyError("could not settle the pot: %v", err)
	}

	for _, s := range g.seats {
		s.Winnings = settlement.Payouts[s.PlayerID]
		s.ChipsRemaining += s.Winnings

		if s.ChipsRemaining == 0 {
			s.Status = SeatOut
		}
	}

	if showdown {
		g.street = Showdown
	}

	g.status = StatusFinished
	g.turnIndex = -1
	g.settlement = settlement

	return nil
}

// CheckInvariants verifies the chip accounting
// Before settlement the seats' commitments must equal the pot and every chip must be accounted for.
// After settlement the payouts must equal the pot and the stacks must equal the starting stacks.
func (g *Game) CheckInvariants() error {
	inPot, remaining, starting, winnings := 0, 0, 0, 0
	for _, s := range g.seats {
		if s.ChipsInPot < 0 || s.ChipsRemaining < 0 {
			return newInconsistencyError("player %d has a negative chip count", s.PlayerID)
		}

		inPot += s.ChipsInPot
		remaining += s.ChipsRemaining
		starting += s.StartingChips
		winnings += s.Winnings
	}

	if inPot != g.pot {
		return newInconsistencyError("pot is ${%d} but seats committed ${%d}", g.pot, inPot)
	}

	if g.status == StatusFinished {
		if winnings != g.pot {
			return newInconsistencyError("paid out ${%d} from a pot of ${%d}", winnings, g.pot)
		}

		if remaining != starting {
			return newInconsistencyError("stacks total ${%d}, expected ${%d}", remaining, starting)
		}
	} else if inPot+remaining != starting {
		return newInconsistencyError("chips total ${%d}, expected ${%d}", inPot+remaining, starting)
	}

	want := 0
	for street := Flop; street <= g.street && street <= River; street++ {
		want += communityCardsForStreet[street]
	}

	if len(g.community) != want {
		return newInconsistencyError("%d community cards on the %s", len(g.community), g.street)
	}

	if dealt, want := len(g.deck.Dealt()), 2*len(g.seats)+len(g.community); dealt != want {
		return newInconsistencyError("%d cards dealt from the deck, expected %d", dealt, want)
	}

	return nil
}
