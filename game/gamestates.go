package game

// Phase is where a run is in its lifecycle
// playing -> a card is showing and waits for a choice
// paused -> no card is eligible right now
// defeated, victorious -> terminal until reset
type Phase int

const (
	Playing Phase = iota
	Paused
	Defeated
	Victorious
)

var phaseNames = map[Phase]string{
	Playing:    "playing",
	Paused:     "paused",
	Defeated:   "defeated",
	Victorious: "victorious",
}

func (p Phase) String() string {
	return phaseNames[p]
}

// Terminal reports whether no further turns are accepted
func (p Phase) Terminal() bool {
	return p == Defeated || p == Victorious
}
