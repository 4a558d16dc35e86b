package deck

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Suit represents a card suit
type Suit string

// suit constants
const (
	Hearts   Suit = "hearts"
	Clubs    Suit = "clubs"
	Diamonds Suit = "diamonds"
	Spades   Suit = "spades"
)

// suits holds the storage letter and display symbol of each suit
var suits = map[Suit]struct {
	letter string
	symbol string
}{
	Clubs:    {"c", "♣"},
	Diamonds: {"d", "♢"},
	Hearts:   {"h", "♡"},
	Spades:   {"s", "♠"},
}

// IsValid returns true if the suit is one of the four standard suits
func (s Suit) IsValid() bool {
	_, ok := suits[s]
	return ok
}

func suitFromLetter(letter string) (Suit, bool) {
	letter = strings.ToLower(letter)
	for suit, names := range suits {
		if names.letter == letter {
			return suit, true
		}
	}

	return "", false
}

// Card is an individual playing card
// Cards are treated as immutable values once dealt
type Card struct {
	Rank int
	Suit Suit
}

// face cards
const (
	Jack    = 11
	Queen   = 12
	King    = 13
	Ace     = 14
	HighAce = Ace
	LowAce  = 1
)

func (c *Card) String() string {
	names, ok := suits[c.Suit]
	if !ok {
		panic(fmt.Sprintf("unknown suit: %q", c.Suit))
	}

	return RankLabel(c.Rank) + names.symbol
}

// RankLabel returns the display label for a rank: 2-10, J, Q, K, A
func RankLabel(rank int) string {
	switch rank {
	case Jack:
		return "J"
	case Queen:
		return "Q"
	case King:
		return "K"
	case Ace, LowAce:
		return "A"
	default:
		return strconv.Itoa(rank)
	}
}

// RankFromLabel is the inverse of RankLabel
func RankFromLabel(label string) (int, error) {
	switch strings.ToUpper(label) {
	case "J":
		return Jack, nil
	case "Q":
		return Queen, nil
	case "K":
		return King, nil
	case "A":
		return Ace, nil
	case "T":
		return 10, nil
	}

	rank, err := strconv.Atoi(label)
	if err != nil || rank < 2 || rank > 10 {
		return 0, fmt.Errorf("invalid rank: %q", label)
	}

	return rank, nil
}

// Equal returns true if the cards are equal (matches suit and rank)
func (c *Card) Equal(card *Card) bool {
	return c.Suit == card.Suit && c.Rank == card.Rank
}

// AceLowRank return the rank where Ace is considered low instead of high
func (c *Card) AceLowRank() int {
	if c.Rank == Ace {
		return LowAce
	}

	return c.Rank
}

type cardJSON struct {
	Suit Suit   `json:"suit"`
	Rank string `json:"rank"`
}

// MarshalJSON encodes the card as {"suit":"spades","rank":"A"}
func (c *Card) MarshalJSON() ([]byte, error) {
	return json.Marshal(cardJSON{
		Suit: c.Suit,
		Rank: RankLabel(c.Rank),
	})
}

// UnmarshalJSON decodes a card in the format produced by MarshalJSON
func (c *Card) UnmarshalJSON(b []byte) error {
	var cj cardJSON
	if err := json.Unmarshal(b, &cj); err != nil {
		return err
	}

	if !cj.Suit.IsValid() {
		return fmt.Errorf("invalid suit: %q", cj.Suit)
	}

	rank, err := RankFromLabel(cj.Rank)
	if err != nil {
		return err
	}

	c.Rank = rank
	c.Suit = cj.Suit
	return nil
}

var cardRx = regexp.MustCompile(`(?i)^([2-9]|1[0-4])([cdhs])\z`)

// CardFromString parses the storage form <rank><suit>, i.e., 14s is the ace of spades
// Ranks run from 2 to 14 and suits are one of c, d, h or s. It panics on anything else
func CardFromString(s string) *Card {
	if s == "" {
		return nil
	}

	match := cardRx.FindStringSubmatch(s)
	if match == nil {
		panic(fmt.Sprintf("could not parse card: %s", s))
	}

	// both groups are constrained by cardRx
	rank, _ := strconv.Atoi(match[1])
	suit, _ := suitFromLetter(match[2])

	return &Card{Rank: rank, Suit: suit}
}

// CardsFromString parses a comma separated list of cards
func CardsFromString(s string) []*Card {
	if s == "" {
		return []*Card{}
	}

	parts := strings.Split(s, ",")
	cards := make([]*Card, 0, len(parts))
	for _, part := range parts {
		cards = append(cards, CardFromString(part))
	}

	return cards
}

// CardToString converts a card to its storage form, i.e., 14c
func CardToString(card *Card) string {
	if card == nil {
		return ""
	}

	return strconv.Itoa(card.Rank) + suits[card.Suit].letter
}

// CardsToString will convert a slice of cards to a string in the format of 2c,3h,4s,...
func CardsToString(cards []*Card) string {
	c := make([]string, len(cards))
	for i, card := range cards {
		c[i] = CardToString(card)
	}

	return strings.Join(c, ",")
}
