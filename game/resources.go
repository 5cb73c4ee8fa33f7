package game

import "math"

// Resource is one of the bounded counters a run is judged on
type Resource string

const (
	Service Resource = "service"
	Revenue Resource = "revenue"
	Order   Resource = "order"
	Energy  Resource = "energy"
)

// Resources is the canonical key order. Depletion is reported in this order.
var Resources = []Resource{Service, Revenue, Order, Energy}

const (
	MinResource     = 0
	MaxResource     = 10
	DefaultResource = 5
)

var resourceLabels = map[Resource]string{
	Service: "Service",
	Revenue: "Revenue",
	Order:   "Order",
	Energy:  "Energy",
}

// Label is the display name of a resource
func (r Resource) Label() string {
	if label, ok := resourceLabels[r]; ok {
		return label
	}
	return string(r)
}

// Known reports whether r is one of the ledger's keys
func (r Resource) Known() bool {
	_, ok := resourceLabels[r]
	return ok
}

// Ledger maps every resource to a value in [MinResource, MaxResource]
type Ledger map[Resource]int

// NewLedger returns a ledger with every resource at its default
func NewLedger() Ledger {
	l := make(Ledger, len(Resources))
	for _, r := range Resources {
		l[r] = DefaultResource
	}
	return l
}

// ApplyEffects adds each delta to its resource and clamps the result.
// Every resource is visited; keys missing from effects count as 0 and
// unknown keys are ignored. The applied (post-clamp) deltas are returned.
func (l Ledger) ApplyEffects(effects map[string]int) map[Resource]int {
	applied := make(map[Resource]int, len(Resources))
	for _, r := range Resources {
		before := l[r]
		l[r] = clamp(saturatingAdd(before, effects[string(r)]), MinResource, MaxResource)
		if d := l[r] - before; d != 0 {
			applied[r] = d
		}
	}
	return applied
}

// Depleted returns the first resource, in canonical order, at or below the minimum
func (l Ledger) Depleted() (Resource, bool) {
	for _, r := range Resources {
		if l[r] <= MinResource {
			return r, true
		}
	}
	return "", false
}

// Clone returns an independent copy
func (l Ledger) Clone() Ledger {
	c := make(Ledger, len(l))
	for k, v := range l {
		c[k] = v
	}
	return c
}

func clamp(v, lo, hi int) int {
	return min(hi, max(lo, v))
}

func saturatingAdd(a, b int) int {
	if b > 0 && a > math.MaxInt-b {
		return math.MaxInt
	}
	if b < 0 && a < math.MinInt-b {
		return math.MinInt
	}
	return a + b
}
