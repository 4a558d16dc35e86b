package potmanager

// Contender is a seat's final standing in a hand
type Contender struct {
	ID int64
	// Order is the seat's position counting from the first seat left of the dealer
	Order      int
	ChipsInPot int
	Folded     bool
	// Strength is only consulted for seats that did not fold
	Strength int
}

type sortByOrder []*Contender

func (s sortByOrder) Len() int {
	return len(s)
}

func (s sortByOrder) Less(i, j int) bool {
	return s[i].Order < s[j].Order
}

func (s sortByOrder) Swap(i, j int) {
	s[i], s[j] = s[j], s[i]
}
