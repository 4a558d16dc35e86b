package potmanager

import (
	"sort"
)

type tier struct {
	strength   int
	contenders []*Contender
}

// WinManager groups contenders by hand strength
type WinManager map[int]*tier

// NewWinManager returns an empty WinManager
func NewWinManager() WinManager {
	return make(WinManager)
}

// AddContender places the contender in the tier for its strength
func (w WinManager) AddContender(c *Contender) {
	t, ok := w[c.Strength]
	if !ok {
		t = &tier{
			strength:   c.Strength,
			contenders: make([]*Contender, 0),
		}
	}

	t.contenders = append(t.contenders, c)
	w[c.Strength] = t
}

// GetSortedTiers returns the contenders grouped by strength, strongest first
// Within a tier contenders are in seat order
func (w WinManager) GetSortedTiers() [][]*Contender {
	tiers := make([]*tier, 0, len(w))
	for _, tier := range w {
		tiers = append(tiers, tier)
	}

	sort.Sort(sort.Reverse(sortByStrength(tiers)))

	tiered := make([][]*Contender, len(tiers))
	for i, t := range tiers {
		sort.Sort(sortByOrder(t.contenders))
		tiered[i] = t.contenders
	}

	return tiered
}

type sortByStrength []*tier

func (s sortByStrength) Len() int {
	return len(s)
}

func (s sortByStrength) Less(i, j int) bool {
	return s[i].strength < s[j].strength
}

func (s sortByStrength) Swap(i, j int) {
	s[i], s[j] = s[j], s[i]
}
