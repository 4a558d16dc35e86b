package deck

import (
	"crypto/sha1" // nolint:gosec
	"encoding/hex"
	"errors"

	"holdem-server/internal/rng"
)

// ErrEndOfDeck is an error when Draw() is attempted and there are no more cards
var ErrEndOfDeck = errors.New("end of deck reached")

// Deck represents a playing deck
// Cards are dealt by advancing Cursor, so the full ordering is kept for the life of a hand
type Deck struct {
	Cards  []*Card `json:"cards"`
	Cursor int     `json:"cursor"`
}

// New returns a new deck of cards in canonical order.
// Important! this deck is unshuffled. Use Shuffle() to get a shuffled copy
func New() *Deck {
	return &Deck{Cards: Generate()}
}

// Generate returns the 52 card domain: clubs, diamonds, hearts, spades, each from 2 to Ace
func Generate() []*Card {
	cards := make([]*Card, 0, 52)
	for _, suit := range []Suit{Clubs, Diamonds, Hearts, Spades} {
		for rank := 2; rank <= 14; rank++ {
			cards = append(cards, &Card{
				Rank: rank,
				Suit: suit,
			})
		}
	}

	return cards
}

// Shuffle returns a new deck holding a Fisher-Yates permutation of d's cards
// d is not modified and the returned deck has its cursor reset
func Shuffle(d *Deck, r rng.Generator) *Deck {
	cards := make([]*Card, len(d.Cards))
	copy(cards, d.Cards)

	for j := len(cards) - 1; j > 0; j-- {
		i := r.Intn(j + 1)

		cards[i], cards[j] = cards[j], cards[i]
	}

	return &Deck{Cards: cards}
}

// HashCode returns a SHA1 hash code of the deck.
func (d *Deck) HashCode() string {
	hash := sha1.New() // nolint:gosec
	for _, card := range d.Cards {
		_, _ = hash.Write([]byte(card.String()))
	}

	return hex.EncodeToString(hash.Sum(nil)[:])
}

// Draw will draw the next card
// If there are no more cards, an ErrEndOfDeck is returned along with a nil card.
func (d *Deck) Draw() (*Card, error) {
	if d.Cursor >= len(d.Cards) {
		return nil, ErrEndOfDeck
	}

	card := d.Cards[d.Cursor]
	d.Cursor++

	return card, nil
}

// DrawN draws n cards or none at all
func (d *Deck) DrawN(n int) ([]*Card, error) {
	if !d.CanDraw(n) {
		return nil, ErrEndOfDeck
	}

	cards := make([]*Card, n)
	for i := range cards {
		cards[i], _ = d.Draw()
	}

	return cards, nil
}

// CanDraw returns true if there are {want} cards left in the deck
func (d *Deck) CanDraw(want int) bool {
	return d.CardsLeft() >= want
}

// CardsLeft returns the number of cards left in the deck
func (d *Deck) CardsLeft() int {
	return len(d.Cards) - d.Cursor
}

// Dealt returns the cards that have already been drawn
func (d *Deck) Dealt() []*Card {
	return d.Cards[:d.Cursor]
}

// Clone returns a copy of the deck that shares the immutable cards
func (d *Deck) Clone() *Deck {
	cards := make([]*Card, len(d.Cards))
	copy(cards, d.Cards)

	return &Deck{Cards: cards, Cursor: d.Cursor}
}
