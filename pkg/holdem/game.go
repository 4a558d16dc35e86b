package holdem

import (
	"errors"
	"fmt"

	"holdem-server/internal/rng"
	"holdem-server/pkg/deck"
	"holdem-server/pkg/poker/action"
	"holdem-server/pkg/poker/potmanager"
)

// Options configures the stakes for a hand
type Options struct {
	SmallBlind int `json:"smallBlind"`
	BigBlind   int `json:"bigBlind"`
}

// DefaultOptions returns the default stakes
func DefaultOptions() Options {
	return Options{
		SmallBlind: 10,
		BigBlind:   20,
	}
}

func validateOptions(opts Options) error {
	if opts.SmallBlind < 0 {
		return errors.New("small blind must be >= 0")
	}

	if opts.BigBlind <= 0 {
		return errors.New("big blind must be > 0")
	}

	if opts.SmallBlind > opts.BigBlind {
		return errors.New("small blind must not exceed the big blind")
	}

	return nil
}

// ActionRecord is an entry in the hand's action log
// Amount is always the number of chips moved from the stack into the pot
type ActionRecord struct {
	Sequence int           `json:"sequence"`
	PlayerID int64         `json:"playerId"`
	Type     action.Action `json:"action_type"`
	Amount   int           `json:"amount"`
	Street   Street        `json:"round"`
}

// Game is a single hand of No-Limit Texas Hold'em
// A Game is not safe for concurrent use; callers serialize access
type Game struct {
	id          string
	roomID      string
	options     Options
	deck        *deck.Deck
	seats       []*Seat
	dealerIndex int
	// turnIndex is the seat on the clock, -1 when nobody is
	turnIndex  int
	street     Street
	status     Status
	pot        int
	community  deck.Hand
	log        []*ActionRecord
	settlement *potmanager.Settlement
}

// NewGame shuffles, deals two cards to every player and posts the blinds
// The dealer button is placed at random. Players sit in the order provided.
func NewGame(id, roomID string, players []*SeatPlayer, opts Options, r rng.Generator) (*Game, error) {
	if err := validateOptions(opts); err != nil {
		return nil, err
	}

	if len(players) < 2 {
		return nil, ErrInsufficientPlayers
	}

	seen := make(map[int64]bool)
	seats := make([]*Seat, len(players))
	for i, p := range players {
		if seen[p.PlayerID] {
			return nil, fmt.Errorf("player %d is seated more than once", p.PlayerID)
		}

		if p.Chips <= 0 {
			return nil, fmt.Errorf("player %d has no chips", p.PlayerID)
		}

		seen[p.PlayerID] = true
		seats[i] = &Seat{
			PlayerID:       p.PlayerID,
			HoleCards:      make(deck.Hand, 0, 2),
			StartingChips:  p.Chips,
			ChipsRemaining: p.Chips,
			Status:         SeatActive,
		}
	}

	n := len(seats)
	g := &Game{
		id:          id,
		roomID:      roomID,
		options:     opts,
		deck:        deck.Shuffle(deck.New(), r),
		seats:       seats,
		dealerIndex: r.Intn(n),
		turnIndex:   -1,
		street:      Preflop,
		status:      StatusInProgress,
		community:   make(deck.Hand, 0, 5),
		log:         make([]*ActionRecord, 0),
	}

	for i, s := range seats {
		s.Position = positionFor(i, g.dealerIndex, n)
	}

	if err := g.dealHoleCards(); err != nil {
		return nil, err
	}

	g.postBlind(g.smallBlindIndex(), action.SmallBlind, opts.SmallBlind)
	g.postBlind(g.bigBlindIndex(), action.BigBlind, opts.BigBlind)

	if err := g.progress(g.bigBlindIndex()); err != nil {
		return nil, err
	}

	if err := g.CheckInvariants(); err != nil {
		return nil, err
	}

	return g, nil
}

func (g *Game) smallBlindIndex() int {
	return (g.dealerIndex + 1) % len(g.seats)
}

func (g *Game) bigBlindIndex() int {
	return (g.dealerIndex + 2) % len(g.seats)
}

// dealHoleCards deals one card at a time starting left of the dealer
func (g *Game) dealHoleCards() error {
	n := len(g.seats)
	for round := 0; round < 2; round++ {
		for i := 1; i <= n; i++ {
			card, err := g.deck.Draw()
			if err != nil {
				return err
			}

			g.seats[(g.dealerIndex+i)%n].HoleCards.AddCard(card)
		}
	}

	return nil
}

// postBlind takes the blind from the seat, or the whole stack if it is short
func (g *Game) postBlind(index int, blind action.Action, amount int) {
	seat := g.seats[index]
	if amount > seat.ChipsRemaining {
		amount = seat.ChipsRemaining
	}

	seat.commit(amount)
	g.pot += amount
	g.appendLog(seat.PlayerID, blind, amount)
}

func (g *Game) appendLog(playerID int64, a action.Action, amount int) *ActionRecord {
	record := &ActionRecord{
		Sequence: len(g.log) + 1,
		PlayerID: playerID,
		Type:     a,
		Amount:   amount,
		Street:   g.street,
	}

	g.log = append(g.log, record)
	return record
}

// ID returns the session id
func (g *Game) ID() string {
	return g.id
}

// DeckHash identifies the shuffled deck the hand is dealt from
func (g *Game) DeckHash() string {
	return g.deck.HashCode()
}

// RoomID returns the room the hand is played in
func (g *Game) RoomID() string {
	return g.roomID
}

// Options returns the stakes
func (g *Game) Options() Options {
	return g.options
}

// Status returns the status of the hand
func (g *Game) Status() Status {
	return g.status
}

// Street returns the current street
func (g *Game) Street() Street {
	return g.street
}

// Pot returns the chips in the middle
func (g *Game) Pot() int {
	return g.pot
}

// IsOver returns true once the hand can no longer be played
func (g *Game) IsOver() bool {
	return g.status != StatusInProgress
}

// Turn returns the player on the clock
func (g *Game) Turn() (int64, bool) {
	if g.turnIndex < 0 || g.IsOver() {
		return 0, false
	}

	return g.seats[g.turnIndex].PlayerID, true
}

// ActionCount returns the number of entries in the action log
func (g *Game) ActionCount() int {
	return len(g.log)
}

// Log returns the action log
func (g *Game) Log() []*ActionRecord {
	log := make([]*ActionRecord, len(g.log))
	copy(log, g.log)
	return log
}

// Seats returns a copy of every seat
func (g *Game) Seats() []Seat {
	seats := make([]Seat, len(g.seats))
	for i, s := range g.seats {
		seats[i] = *s.clone()
	}

	return seats
}

// Settlement returns the payouts once the hand is finished
func (g *Game) Settlement() *potmanager.Settlement {
	return g.settlement
}

// Abort voids the hand
// Stacks are not touched, the caller decides what to do with the committed chips
func (g *Game) Abort() {
	g.status = StatusAborted
	g.turnIndex = -1
}

// Clone returns a deep copy that can be mutated without affecting g
func (g *Game) Clone() *Game {
	cp := *g
	cp.deck = g.deck.Clone()
	cp.community = g.community.Clone()

	cp.seats = make([]*Seat, len(g.seats))
	for i, s := range g.seats {
		cp.seats[i] = s.clone()
	}

	// records are never modified once appended
	cp.log = make([]*ActionRecord, len(g.log))
	copy(cp.log, g.log)

	return &cp
}

func (g *Game) getSeat(playerID int64) (int, *Seat, error) {
	for i, s := range g.seats {
		if s.PlayerID == playerID {
			return i, s, nil
		}
	}

	return -1, nil, ErrSeatNotFound
}

// maxBet returns the largest commitment among seats still in the hand
func (g *Game) maxBet() int {
	max := 0
	for _, s := range g.seats {
		if s.inHand() && s.ChipsInPot > max {
			max = s.ChipsInPot
		}
	}

	return max
}

func (g *Game) countSeats(fn func(s *Seat) bool) int {
	count := 0
	for _, s := range g.seats {
		if fn(s) {
			count++
		}
	}

	return count
}
