package game

import "github.com/minaorangina/shift/catalog"

// Flags are persistent named booleans set by choices
type Flags map[string]bool

// Clone returns an independent copy
func (f Flags) Clone() Flags {
	c := make(Flags, len(f))
	for k, v := range f {
		c[k] = v
	}
	return c
}

// IsEligible reports whether card may be shown on the given day with the given flags.
// An absent flag never satisfies a requirement and never matches a forbidden value.
func IsEligible(card catalog.Card, day int, flags Flags) bool {
	cond := card.Conditions
	if cond == nil {
		return true
	}

	if cond.DayMin != 0 && day < cond.DayMin {
		return false
	}
	if cond.DayMax != 0 && day > cond.DayMax {
		return false
	}

	for flag, expected := range cond.RequiresFlags {
		value, set := flags[flag]
		if !set || value != expected {
			return false
		}
	}

	for flag, forbidden := range cond.ForbidFlags {
		value, set := flags[flag]
		if set && value == forbidden {
			return false
		}
	}

	return true
}
