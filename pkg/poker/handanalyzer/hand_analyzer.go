package handanalyzer

import (
	"sort"

	"holdem-server/pkg/deck"
)

// handSize is the number of cards that make up a poker hand
const handSize = 5

// HandAnalyzer can analyze a hand
type HandAnalyzer struct {
	// cards are ordered from the highest rank to the lowest
	cards         deck.Hand
	flush         []int
	quads         []int
	trips         []int
	pairs         []int
	straightFlush int
	straight      int

	hand     Hand
	tiebreak []int
	strength int
}

// New will return a new HandAnalyzer instance for the best five card hand in cards
func New(cards []*deck.Card) *HandAnalyzer {
	sorted := make(deck.Hand, len(cards))
	copy(sorted, cards)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Rank > sorted[j].Rank
	})

	h := &HandAnalyzer{cards: sorted}
	h.groupRanks()
	h.groupSuits()
	h.straight = highestStraight(h.cards)
	h.hand = h.category()
	h.tiebreak = h.getTiebreak()
	h.strength = calculateStrength(h.hand, h.tiebreak)

	return h
}

// groupRanks records every pair, trips and quads, best first
func (h *HandAnalyzer) groupRanks() {
	for i := 0; i < len(h.cards); {
		j := i + 1
		for j < len(h.cards) && h.cards[j].Rank == h.cards[i].Rank {
			j++
		}

		h.recordGroup(h.cards[i].Rank, j-i)
		i = j
	}
}

// groupSuits finds the best flush and straight flush
func (h *HandAnalyzer) groupSuits() {
	bySuit := make(map[deck.Suit][]*deck.Card)
	for _, c := range h.cards {
		bySuit[c.Suit] = append(bySuit[c.Suit], c)
	}

	for _, suited := range bySuit {
		if len(suited) < handSize {
			continue
		}

		if sf := highestStraight(suited); sf > h.straightFlush {
			h.straightFlush = sf
		}

		ranks := make([]int, handSize)
		for i := range ranks {
			ranks[i] = suited[i].Rank
		}

		if h.flush == nil || compareRanks(ranks, h.flush) > 0 {
			h.flush = ranks
		}
	}
}

// GetHand will return the best possible hand the cards can make
func (h *HandAnalyzer) GetHand() Hand {
	return h.hand
}

// GetRoyalFlush will return true if there's a royal flush
func (h *HandAnalyzer) GetRoyalFlush() bool {
	return h.straightFlush == deck.Ace
}

// GetStraightFlush will return the best straight flush, if possible
func (h *HandAnalyzer) GetStraightFlush() (int, bool) {
	if h.straightFlush > 0 {
		return h.straightFlush, true
	}

	return 0, false
}

// GetFourOfAKind will return the best four of a kind, if possible
func (h *HandAnalyzer) GetFourOfAKind() (int, bool) {
	if len(h.quads) > 0 {
		return h.quads[0], true
	}

	return 0, false
}

// GetFullHouse will return the best full house, if possible
func (h *HandAnalyzer) GetFullHouse() ([]int, bool) {
	if len(h.trips) == 0 {
		return nil, false
	}

	trips := h.trips[0]

	pair, ok := h.GetPair()
	if !ok {
		if len(h.trips) == 1 {
			// could not find a pair from a second set of trips
			return nil, false
		}

		pair = h.trips[1]
	} else if len(h.trips) >= 2 && h.trips[1] > pair {
		// two sets of trips and a separate pair, take the better of the two
		pair = h.trips[1]
	}

	return []int{trips, pair}, true
}

// GetFlush will return the best possible flush, if possible
func (h *HandAnalyzer) GetFlush() ([]int, bool) {
	if h.flush != nil {
		return h.flush, true
	}

	return nil, false
}

// GetStraight will return the best straight, if possible
func (h *HandAnalyzer) GetStraight() (int, bool) {
	if h.straight > 0 {
		return h.straight, true
	}

	return 0, false
}

// GetThreeOfAKind will return the best three of a kind, if possible
func (h *HandAnalyzer) GetThreeOfAKind() (int, bool) {
	if len(h.trips) > 0 {
		return h.trips[0], true
	}

	return 0, false
}

// GetTwoPair will return the best two pairs, if possible
func (h *HandAnalyzer) GetTwoPair() ([]int, bool) {
	if len(h.pairs) >= 2 {
		return h.pairs[0:2], true
	}

	return nil, false
}

// GetPair will return the best pair, if possible
func (h *HandAnalyzer) GetPair() (int, bool) {
	if len(h.pairs) > 0 {
		return h.pairs[0], true
	}

	return 0, false
}

// GetHighCard will return the high card
func (h *HandAnalyzer) GetHighCard() ([]int, bool) {
	return h.kickers(handSize), true
}

// GetTiebreak returns the ranks that break ties within the hand's category, most significant first
func (h *HandAnalyzer) GetTiebreak() []int {
	tb := make([]int, len(h.tiebreak))
	copy(tb, h.tiebreak)
	return tb
}

// GetStrength returns the strength of the hand
// Two hands compare exactly like their strengths, so equal strengths are true ties
func (h *HandAnalyzer) GetStrength() int {
	return h.strength
}

// Compare returns 1 if a beats b, -1 if b beats a and 0 on a tie
func Compare(a, b *HandAnalyzer) int {
	switch {
	case a.strength > b.strength:
		return 1
	case a.strength < b.strength:
		return -1
	default:
		return 0
	}
}

// calculateStrength packs the category and up to five ranks into base 15
func calculateStrength(hand Hand, cards []int) int {
	fiveCards := make([]int, handSize)
	copy(fiveCards, cards)

	strength := int(hand)
	for _, val := range fiveCards {
		strength = strength*15 + val
	}

	return strength
}

// kickers returns up to n ranks in descending order skipping the excluded ranks
func (h *HandAnalyzer) kickers(n int, exclude ...int) []int {
	hc := make([]int, 0, n)
	for _, card := range h.cards {
		if len(hc) == n {
			break
		}

		if containsRank(exclude, card.Rank) {
			continue
		}

		hc = append(hc, card.Rank)
	}

	return hc
}

func containsRank(ranks []int, rank int) bool {
	for _, r := range ranks {
		if r == rank {
			return true
		}
	}

	return false
}

func (h *HandAnalyzer) getTiebreak() []int {
	switch h.hand {
	case HighCard:
		c, _ := h.GetHighCard()
		return c
	case OnePair:
		pair, _ := h.GetPair()
		return append([]int{pair}, h.kickers(handSize-2, pair)...)
	case TwoPair:
		twoPair, _ := h.GetTwoPair()
		return append([]int{twoPair[0], twoPair[1]}, h.kickers(1, twoPair...)...)
	case ThreeOfAKind:
		trips, _ := h.GetThreeOfAKind()
		return append([]int{trips}, h.kickers(2, trips)...)
	case Straight:
		s, _ := h.GetStraight()
		return []int{s}
	case Flush:
		f, _ := h.GetFlush()
		return f
	case FullHouse:
		fh, _ := h.GetFullHouse()
		return fh
	case FourOfAKind:
		fk, _ := h.GetFourOfAKind()
		return append([]int{fk}, h.kickers(1, fk)...)
	case StraightFlush:
		s, _ := h.GetStraightFlush()
		return []int{s}
	case RoyalFlush:
		return []int{}
	}

	panic("unknown hand")
}

// compareRanks compares two descending rank lists element by element
func compareRanks(a, b []int) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			if a[i] > b[i] {
				return 1
			}

			return -1
		}
	}

	return len(a) - len(b)
}

func (h *HandAnalyzer) recordGroup(rank, num int) {
	switch num {
	case 4:
		h.quads = append(h.quads, rank)
	case 3:
		h.trips = append(h.trips, rank)
	case 2:
		h.pairs = append(h.pairs, rank)
	}
}

func (h *HandAnalyzer) category() Hand {
	_, twoPair := h.GetTwoPair()
	_, fullHouse := h.GetFullHouse()

	switch {
	case h.straightFlush == deck.Ace:
		return RoyalFlush
	case h.straightFlush > 0:
		return StraightFlush
	case len(h.quads) > 0:
		return FourOfAKind
	case fullHouse:
		return FullHouse
	case h.flush != nil:
		return Flush
	case h.straight > 0:
		return Straight
	case len(h.trips) > 0:
		return ThreeOfAKind
	case twoPair:
		return TwoPair
	case len(h.pairs) > 0:
		return OnePair
	default:
		return HighCard
	}
}
