package handanalyzer

import "holdem-server/pkg/deck"

// highestStraight returns the top rank of the best straight in cards, or 0
// An ace counts both high and low, so the wheel returns 5
func highestStraight(cards []*deck.Card) int {
	var present [deck.Ace + 1]bool
	for _, c := range cards {
		present[c.Rank] = true
		present[c.AceLowRank()] = true
	}

	for top := deck.Ace; top >= 5; top-- {
		run := 0
		for run < handSize && present[top-run] {
			run++
		}

		if run == handSize {
			return top
		}
	}

	return 0
}
