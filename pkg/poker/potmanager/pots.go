package potmanager

// Pot is a single slice of the chips in the middle
type Pot struct {
	Amount int `json:"amount"`
	// Level is the per-seat commitment that caps this pot
	Level    int     `json:"level"`
	Eligible []int64 `json:"eligible"`
	Winners  []int64 `json:"winners,omitempty"`
}

// Pots is a collection of pots, main pot first
type Pots []*Pot

// Total returns the combined total of all pots
func (p Pots) Total() int {
	total := 0
	for _, pot := range p {
		total += pot.Amount
	}

	return total
}
