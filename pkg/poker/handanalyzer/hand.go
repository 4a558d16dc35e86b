package handanalyzer

import (
	"encoding/json"
	"fmt"
)

// Hand is a poker hand category, ordered from weakest to strongest
type Hand int

// Constants for hand
const (
	HighCard Hand = iota
	OnePair
	TwoPair
	ThreeOfAKind
	Straight
	Flush
	FullHouse
	FourOfAKind
	StraightFlush
	RoyalFlush
)

var handNames = [...]struct {
	label string
	key   string
}{
	HighCard:      {"High card", "high_card"},
	OnePair:       {"Pair", "pair"},
	TwoPair:       {"Two pair", "two_pair"},
	ThreeOfAKind:  {"Three of a kind", "three_of_a_kind"},
	Straight:      {"Straight", "straight"},
	Flush:         {"Flush", "flush"},
	FullHouse:     {"Full house", "full_house"},
	FourOfAKind:   {"Four of a kind", "four_of_a_kind"},
	StraightFlush: {"Straight flush", "straight_flush"},
	RoyalFlush:    {"Royal flush", "royal_flush"},
}

func (h Hand) valid() bool {
	return h >= HighCard && h <= RoyalFlush
}

// String returns the display name, i.e., Full house
func (h Hand) String() string {
	if !h.valid() {
		panic(fmt.Sprintf("unknown hand: %d", int(h)))
	}

	return handNames[h].label
}

// Key returns the category name used on the wire, i.e., royal_flush
func (h Hand) Key() string {
	if !h.valid() {
		panic(fmt.Sprintf("unknown hand: %d", int(h)))
	}

	return handNames[h].key
}

// MarshalJSON encodes the hand as its key
func (h Hand) MarshalJSON() ([]byte, error) {
	if !h.valid() {
		return nil, fmt.Errorf("unknown hand: %d", int(h))
	}

	return json.Marshal(h.Key())
}

// UnmarshalJSON decodes a hand from its key
func (h *Hand) UnmarshalJSON(b []byte) error {
	var key string
	if err := json.Unmarshal(b, &key); err != nil {
		return err
	}

	for i, names := range handNames {
		if names.key == key {
			*h = Hand(i)
			return nil
		}
	}

	return fmt.Errorf("unknown hand: %q", key)
}
