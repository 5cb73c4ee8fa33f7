package store

import (
	"math"

	"github.com/minaorangina/shift/catalog"
	"github.com/minaorangina/shift/deck"
	"github.com/minaorangina/shift/game"
)

// CurrentVersion is the document version written by Save
const CurrentVersion = 2

// document is a decoded save before it is trusted
type document map[string]any

// migrations[i] upgrades a version i document to version i+1
var migrations = []func(document){
	renameBurnout,
	addProgressCounters,
}

// version reports the document's shape. Unversioned saves predate the
// counters; the oldest of them still call energy "burnout".
func (d document) version() int {
	if v, ok := asInt(d["version"]); ok && v >= 0 {
		return v
	}
	if resources, ok := d["resources"].(map[string]any); ok {
		if _, ok := resources["burnout"]; ok {
			return 0
		}
	}
	return 1
}

// migrate runs every step from the document's version up to CurrentVersion
func (d document) migrate() {
	for v := d.version(); v < CurrentVersion; v++ {
		migrations[v](d)
	}
	d["version"] = CurrentVersion
}

func renameBurnout(d document) {
	resources, ok := d["resources"].(map[string]any)
	if !ok {
		return
	}
	if value, ok := resources["burnout"]; ok {
		if _, exists := resources[string(game.Energy)]; !exists {
			resources[string(game.Energy)] = value
		}
		delete(resources, "burnout")
	}
}

func addProgressCounters(d document) {
	defaults := map[string]any{
		"cardsPlayed":  0.0,
		"storyIndex":   0.0,
		"victory":      false,
		"defeatReason": nil,
	}
	for key, value := range defaults {
		if _, ok := d[key]; !ok {
			d[key] = value
		}
	}
}

// repair builds a State from a migrated document field by field.
// Malformed fields fall back to defaults instead of rejecting the save.
func (d document) repair(cat *catalog.Catalog) *game.State {
	st := &game.State{
		Resources: game.NewLedger(),
		Day:       1,
		Deck:      deck.Deck{},
		Flags:     game.Flags{},
	}

	if resources, ok := d["resources"].(map[string]any); ok {
		for _, r := range game.Resources {
			if v, ok := asInt(resources[string(r)]); ok {
				st.Resources[r] = min(game.MaxResource, max(game.MinResource, v))
			}
		}
	}

	if day, ok := asInt(d["day"]); ok && day >= 1 {
		st.Day = day
	}

	if ids, ok := d["deck"].([]any); ok {
		for _, id := range ids {
			if s, ok := id.(string); ok {
				st.Deck = append(st.Deck, s)
			}
		}
	}

	if flags, ok := d["flags"].(map[string]any); ok {
		for name, value := range flags {
			if b, ok := value.(bool); ok {
				st.Flags[name] = b
			}
		}
	}

	if id, ok := d["currentCardId"].(string); ok {
		if _, known := cat.Card(id); known {
			st.CurrentCardID = id
		}
	}

	storyCount := cat.StoryCount()
	if idx, ok := asInt(d["storyIndex"]); ok {
		st.StoryIndex = min(storyCount, max(0, idx))
	}
	if played, ok := asInt(d["cardsPlayed"]); ok && played > 0 {
		st.CardsPlayed = played
	}
	if floor := st.StoryIndex * game.StoryInterval; st.CardsPlayed < floor {
		st.CardsPlayed = floor
	}
	// the next story slot must still be ahead
	if ceiling := (st.StoryIndex+1)*game.StoryInterval - 1; st.StoryIndex < storyCount && st.CardsPlayed > ceiling {
		st.CardsPlayed = ceiling
	}
	storyDone := storyCount > 0 && st.StoryIndex >= storyCount

	st.GameOver, _ = d["gameOver"].(bool)
	if !st.GameOver {
		if storyDone {
			st.GameOver = true
			st.Victory = true
			st.CurrentCardID = ""
		}
		return st
	}

	victory, _ := d["victory"].(bool)
	reason, _ := d["defeatReason"].(string)
	switch {
	case victory:
		st.Victory = true
	case game.Resource(reason).Known():
		st.DefeatReason = game.Resource(reason)
	case storyDone:
		st.Victory = true
	default:
		if depleted, ok := st.Resources.Depleted(); ok {
			st.DefeatReason = depleted
		} else {
			st.GameOver = false
		}
	}
	if st.GameOver {
		st.CurrentCardID = ""
	}

	return st
}

// asInt accepts JSON numbers with an integral value
func asInt(v any) (int, bool) {
	f, ok := v.(float64)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	const limit = 1 << 53
	return int(min(limit, max(-limit, f))), true
}
