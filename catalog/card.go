package catalog

// Side is one of the two choices on a card
type Side string

const (
	Left  Side = "left"
	Right Side = "right"
)

// Sides lists the valid sides in display order
var Sides = []Side{Left, Right}

// Valid reports whether s names one of a card's two choices
func (s Side) Valid() bool {
	return s == Left || s == Right
}

// Card is a unit of narrative content with two choices.
// Cards are catalog data and are never mutated at runtime.
type Card struct {
	ID         string      `json:"id" yaml:"id"`
	Title      string      `json:"title" yaml:"title"`
	Text       string      `json:"text" yaml:"text"`
	Image      string      `json:"image,omitempty" yaml:"image,omitempty"`
	Conditions *Conditions `json:"conditions,omitempty" yaml:"conditions,omitempty"`
	Choices    Choices     `json:"choices" yaml:"choices"`
}

// Choice returns the choice on the given side
func (c Card) Choice(side Side) (Choice, bool) {
	switch side {
	case Left:
		return c.Choices.Left, true
	case Right:
		return c.Choices.Right, true
	}
	return Choice{}, false
}

// Choices holds exactly two choices keyed left and right
type Choices struct {
	Left  Choice `json:"left" yaml:"left"`
	Right Choice `json:"right" yaml:"right"`
}

// Choice describes what happens when a player picks a side.
// Effects keys are resource names; missing keys mean no change.
type Choice struct {
	Label    string          `json:"label" yaml:"label"`
	Effects  map[string]int  `json:"effects,omitempty" yaml:"effects,omitempty"`
	FlagsSet map[string]bool `json:"flags_set,omitempty" yaml:"flags_set,omitempty"`
	Adds     []string        `json:"adds,omitempty" yaml:"adds,omitempty"`
	Removes  []string        `json:"removes,omitempty" yaml:"removes,omitempty"`
}

// Conditions gate when a card may be drawn.
// A zero DayMin or DayMax means the bound is not set.
type Conditions struct {
	DayMin        int             `json:"day_min,omitempty" yaml:"day_min,omitempty"`
	DayMax        int             `json:"day_max,omitempty" yaml:"day_max,omitempty"`
	RequiresFlags map[string]bool `json:"requires_flags,omitempty" yaml:"requires_flags,omitempty"`
	ForbidFlags   map[string]bool `json:"forbid_flags,omitempty" yaml:"forbid_flags,omitempty"`
}
