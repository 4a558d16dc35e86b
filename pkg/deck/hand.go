package deck

// Hand is a set of cards held by a seat or laid out on the board
type Hand []*Card

// AddCard appends card to the hand
func (h *Hand) AddCard(card *Card) {
	*h = append(*h, card)
}

// Clone returns a copy that can be appended to without touching h
// Cards are shared, they are never mutated once dealt
func (h Hand) Clone() Hand {
	if h == nil {
		return nil
	}

	return append(make(Hand, 0, len(h)), h...)
}

func (h Hand) String() string {
	return CardsToString(h)
}
