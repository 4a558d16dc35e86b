package potmanager

import (
	"errors"
	"fmt"
	"sort"
)

// ErrNoContenders is returned when every seat folded, which cannot happen in a valid hand
var ErrNoContenders = errors.New("no contenders left in the hand")

// PotMismatchError is returned when the pots do not add up to the declared pot
type PotMismatchError struct {
	Declared    int
	Distributed int
}

func (p PotMismatchError) Error() string {
	return fmt.Sprintf("pot mismatch: declared %d, distributed %d", p.Declared, p.Distributed)
}

// Settlement is the result of paying out a hand
type Settlement struct {
	Pots    Pots          `json:"pots"`
	Payouts map[int64]int `json:"payouts"`
}

// CalculatePots slices the chips into a main pot and side pots
// One pot is created per distinct commitment among seats that did not fold. Folded chips
// fill the slices they reach, and anything committed above the top level goes into the last pot.
func CalculatePots(contenders []*Contender) Pots {
	levels := make([]int, 0, len(contenders))
	seen := make(map[int]bool)
	for _, c := range contenders {
		if c.Folded || c.ChipsInPot <= 0 || seen[c.ChipsInPot] {
			continue
		}

		seen[c.ChipsInPot] = true
		levels = append(levels, c.ChipsInPot)
	}
	sort.Ints(levels)

	if len(levels) == 0 {
		total := 0
		for _, c := range contenders {
			total += c.ChipsInPot
		}

		return Pots{{Amount: total, Eligible: eligibleAt(contenders, 0)}}
	}

	pots := make(Pots, 0, len(levels))
	prevLevel := 0
	for _, level := range levels {
		amount := 0
		for _, c := range contenders {
			amount += clamp(c.ChipsInPot, level) - clamp(c.ChipsInPot, prevLevel)
		}

		pots = append(pots, &Pot{
			Amount:   amount,
			Level:    level,
			Eligible: eligibleAt(contenders, level),
		})

		prevLevel = level
	}

	// folded seats may have committed more than anyone left in the hand
	last := pots[len(pots)-1]
	for _, c := range contenders {
		if c.ChipsInPot > prevLevel {
			last.Amount += c.ChipsInPot - prevLevel
		}
	}

	return pots
}

// Settle pays out the pot
// A lone survivor takes everything without a showdown. Otherwise each pot goes to the strongest
// eligible hands, split evenly with any odd chips going to the first winner left of the dealer.
// The pots must add up to declaredPot exactly.
func Settle(contenders []*Contender, declaredPot int) (*Settlement, error) {
	var survivors []*Contender
	total := 0
	for _, c := range contenders {
		total += c.ChipsInPot
		if !c.Folded {
			survivors = append(survivors, c)
		}
	}

	if len(survivors) == 0 {
		return nil, ErrNoContenders
	}

	if total != declaredPot {
		return nil, PotMismatchError{Declared: declaredPot, Distributed: total}
	}

	payouts := make(map[int64]int)

	if len(survivors) == 1 {
		winner := survivors[0]
		payouts[winner.ID] = total

		return &Settlement{
			Pots: Pots{{
				Amount:   total,
				Level:    winner.ChipsInPot,
				Eligible: []int64{winner.ID},
				Winners:  []int64{winner.ID},
			}},
			Payouts: payouts,
		}, nil
	}

	byID := make(map[int64]*Contender, len(contenders))
	for _, c := range contenders {
		byID[c.ID] = c
	}

	pots := CalculatePots(contenders)
	if sum := pots.Total(); sum != declaredPot {
		return nil, PotMismatchError{Declared: declaredPot, Distributed: sum}
	}

	paid := 0
	for _, pot := range pots {
		wm := NewWinManager()
		for _, id := range pot.Eligible {
			wm.AddContender(byID[id])
		}

		tiers := wm.GetSortedTiers()
		if len(tiers) == 0 {
			return nil, ErrNoContenders
		}

		winners := tiers[0]
		share := pot.Amount / len(winners)
		remainder := pot.Amount % len(winners)
		for i, w := range winners {
			amount := share
			if i == 0 {
				amount += remainder
			}

			payouts[w.ID] += amount
			pot.Winners = append(pot.Winners, w.ID)
			paid += amount
		}
	}

	if paid != declaredPot {
		return nil, PotMismatchError{Declared: declaredPot, Distributed: paid}
	}

	return &Settlement{
		Pots:    pots,
		Payouts: payouts,
	}, nil
}

// eligibleAt returns the ids of seats still in the hand that committed at least level, in seat order
func eligibleAt(contenders []*Contender, level int) []int64 {
	eligible := make([]*Contender, 0, len(contenders))
	for _, c := range contenders {
		if !c.Folded && c.ChipsInPot >= level {
			eligible = append(eligible, c)
		}
	}
	sort.Sort(sortByOrder(eligible))

	ids := make([]int64, len(eligible))
	for i, c := range eligible {
		ids[i] = c.ID
	}

	return ids
}

func clamp(amount, limit int) int {
	if amount > limit {
		return limit
	}

	return amount
}
