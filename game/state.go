package game

import (
	"github.com/minaorangina/shift/deck"
)

// State is everything a run needs to be resumed.
// It is owned and mutated by a single Game.
type State struct {
	Resources     Ledger
	Day           int
	Deck          deck.Deck
	Flags         Flags
	CurrentCardID string
	CardsPlayed   int
	StoryIndex    int
	GameOver      bool
	DefeatReason  Resource
	Victory       bool
}

// NewState returns a fresh run: default resources, day 1 and a shuffled deck of all
func NewState(all []string, rng deck.RNG) *State {
	return &State{
		Resources: NewLedger(),
		Day:       1,
		Deck:      deck.New(all, rng),
		Flags:     Flags{},
	}
}

// Clone returns a deep copy
func (s *State) Clone() *State {
	if s == nil {
		return nil
	}
	c := *s
	c.Resources = s.Resources.Clone()
	c.Deck = s.Deck.Clone()
	c.Flags = s.Flags.Clone()
	return &c
}

// fill replaces missing parts with fresh defaults
func (s *State) fill() {
	if s.Resources == nil {
		s.Resources = NewLedger()
	}
	for _, r := range Resources {
		if _, ok := s.Resources[r]; !ok {
			s.Resources[r] = DefaultResource
		}
	}
	if s.Flags == nil {
		s.Flags = Flags{}
	}
	if s.Deck == nil {
		s.Deck = deck.Deck{}
	}
	if s.Day < 1 {
		s.Day = 1
	}
}
