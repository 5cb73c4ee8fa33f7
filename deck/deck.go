package deck

import (
	"math/rand/v2"
	"slices"
)

// Deck is the queue of ordinary card ids awaiting draw.
// The front of the slice is the next card.
type Deck []string

// RNG abstracts random number generation so shuffles can be replayed in tests
type RNG interface {
	// Intn returns a non-negative random int in [0, n)
	Intn(n int) int
}

type pcg struct {
	r *rand.Rand
}

func (p pcg) Intn(n int) int { return p.r.IntN(n) }

// NewRNG returns a PCG-backed RNG. A zero seed draws one from the runtime.
func NewRNG(seed uint64) RNG {
	if seed == 0 {
		seed = rand.Uint64()
	}
	return pcg{r: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// Verdict is how a draw treats a candidate id
type Verdict int

const (
	// Unknown ids are stale references and are discarded
	Unknown Verdict = iota
	// Ineligible ids go to the back of the deck
	Ineligible
	// Eligible ids are drawn
	Eligible
)

// New returns a shuffled deck holding every id once
func New(ids []string, rng RNG) Deck {
	d := Deck(slices.Clone(ids))
	d.Shuffle(rng)
	return d
}

// Shuffle is a uniform Fisher-Yates shuffle in place
func (d Deck) Shuffle(rng RNG) {
	for i := len(d) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		d[i], d[j] = d[j], d[i]
	}
}

// EnsureNonEmpty refills an empty deck with a fresh shuffle of all
func (d *Deck) EnsureNonEmpty(all []string, rng RNG) {
	if len(*d) > 0 {
		return
	}
	*d = New(all, rng)
}

// Draw scans the deck from the front and removes the first eligible id.
// Exactly as many candidates are judged as the deck held when the scan
// started, so an ineligible id rotated to the back is never judged twice.
func (d *Deck) Draw(judge func(id string) Verdict) (string, bool) {
	attempts := len(*d)
	for ; attempts > 0 && len(*d) > 0; attempts-- {
		id := (*d)[0]
		*d = (*d)[1:]

		switch judge(id) {
		case Eligible:
			return id, true
		case Ineligible:
			*d = append(*d, id)
		}
	}
	return "", false
}

// Peek reports what Draw would return without touching the deck
func (d Deck) Peek(judge func(id string) Verdict) (string, bool) {
	for _, id := range d {
		if judge(id) == Eligible {
			return id, true
		}
	}
	return "", false
}

// Add appends ids that are not already in the deck
func (d *Deck) Add(ids ...string) {
	for _, id := range ids {
		if !d.Contains(id) {
			*d = append(*d, id)
		}
	}
}

// Remove strips every occurrence of ids from the deck
func (d *Deck) Remove(ids ...string) {
	if len(ids) == 0 {
		return
	}
	*d = slices.DeleteFunc(*d, func(id string) bool {
		return slices.Contains(ids, id)
	})
}

// Contains reports whether id is waiting in the deck
func (d Deck) Contains(id string) bool {
	return slices.Contains(d, id)
}

// Clone returns an independent copy
func (d Deck) Clone() Deck {
	if d == nil {
		return Deck{}
	}
	return slices.Clone(d)
}
