package action

import (
	"encoding/json"
	"fmt"
)

// Action represents an action a player can take
type Action string

// action constants
const (
	Fold  Action = "fold"
	Check Action = "check"
	Call  Action = "call"
	Raise Action = "raise"
	AllIn Action = "all_in"

	// blinds are posted by the dealer and only ever appear in the log
	SmallBlind Action = "small_blind"
	BigBlind   Action = "big_blind"
)

var allowedActions = map[Action]bool{
	Fold:  true,
	Check: true,
	Call:  true,
	Raise: true,
	AllIn: true,
}

// FromString returns an action for the given string
// Only actions a player may submit are accepted
func FromString(s string) (Action, error) {
	if _, ok := allowedActions[Action(s)]; ok {
		return Action(s), nil
	}

	return "", fmt.Errorf("unknown action for identifier: %s", s)
}

func (a Action) String() string {
	switch a {
	case Fold:
		return "Fold"
	case Check:
		return "Check"
	case Call:
		return "Call"
	case Raise:
		return "Raise"
	case AllIn:
		return "All in"
	case SmallBlind:
		return "Small blind"
	case BigBlind:
		return "Big blind"
	}

	panic("unknown action")
}

// UnmarshalJSON decodes an action and rejects unknown identifiers
func (a *Action) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}

	if s == string(SmallBlind) || s == string(BigBlind) {
		*a = Action(s)
		return nil
	}

	act, err := FromString(s)
	if err != nil {
		return err
	}

	*a = act
	return nil
}

// IsValid returns true if a player may submit the action
func (a Action) IsValid() bool {
	_, ok := allowedActions[a]
	return ok
}

// IsBlind returns true for the forced bets
func (a Action) IsBlind() bool {
	return a == SmallBlind || a == BigBlind
}

// LogMessage returns a message formatted for the log
func (a Action) LogMessage(amount int) string {
	switch a {
	case Fold:
		return "folded"
	case Check:
		return "checked"
	case Call:
		return fmt.Sprintf("called ${%d}", amount)
	case Raise:
		return fmt.Sprintf("raised ${%d}", amount)
	case AllIn:
		return fmt.Sprintf("went all in for ${%d}", amount)
	case SmallBlind:
		return fmt.Sprintf("posted the small blind of ${%d}", amount)
	case BigBlind:
		return fmt.Sprintf("posted the big blind of ${%d}", amount)
	}

	return ""
}
