package holdem

import (
	"encoding/json"
	"fmt"
)

// Street is the stage of the hand
type Street int

// constants for Street
const (
	Preflop Street = iota
	Flop
	Turn
	River
	Showdown
)

// cards dealt to the board when moving into the street
var communityCardsForStreet = map[Street]int{
	Flop:  3,
	Turn:  1,
	River: 1,
}

func (s Street) String() string {
	switch s {
	case Preflop:
		return "preflop"
	case Flop:
		return "flop"
	case Turn:
		return "turn"
	case River:
		return "river"
	case Showdown:
		return "showdown"
	}

	return ""
}

// StreetFromString is the inverse of String
func StreetFromString(s string) (Street, error) {
	for street := Preflop; street <= Showdown; street++ {
		if street.String() == s {
			return street, nil
		}
	}

	return 0, fmt.Errorf("unknown street: %s", s)
}

// MarshalJSON encodes JSON
func (s Street) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON decodes JSON
func (s *Street) UnmarshalJSON(b []byte) error {
	var str string
	if err := json.Unmarshal(b, &str); err != nil {
		return err
	}

	street, err := StreetFromString(str)
	if err != nil {
		return err
	}

	*s = street
	return nil
}

// Status is the lifecycle of a hand
type Status string

// status constants
const (
	StatusInProgress Status = "in_progress"
	StatusFinished   Status = "finished"
	// StatusAborted marks a hand that was voided after an inconsistency
	StatusAborted Status = "aborted"
)
