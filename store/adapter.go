package store

import (
	"encoding/json"
	"log"

	"github.com/minaorangina/shift/catalog"
	"github.com/minaorangina/shift/game"
)

// DefaultKey is the storage key runs are saved under
const DefaultKey = "shift-state-v2"

// record is the stored shape of a State
type record struct {
	Version       int             `json:"version"`
	Resources     map[string]int  `json:"resources"`
	Day           int             `json:"day"`
	Deck          []string        `json:"deck"`
	Flags         map[string]bool `json:"flags"`
	CurrentCardID *string         `json:"currentCardId"`
	CardsPlayed   int             `json:"cardsPlayed"`
	StoryIndex    int             `json:"storyIndex"`
	GameOver      bool            `json:"gameOver"`
	DefeatReason  *string         `json:"defeatReason"`
	Victory       bool            `json:"victory"`
}

// Adapter saves and restores one run. It satisfies game.Saver.
type Adapter struct {
	storage Storage
	key     string
	catalog *catalog.Catalog
	logger  *log.Logger
}

func NewAdapter(storage Storage, key string, cat *catalog.Catalog, logger *log.Logger) *Adapter {
	if key == "" {
		key = DefaultKey
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Adapter{
		storage: storage,
		key:     key,
		catalog: cat,
		logger:  logger,
	}
}

// Load returns the saved run, migrated and repaired against the catalog.
// Missing, unreadable or corrupt saves report false.
func (a *Adapter) Load() (*game.State, bool) {
	blob, ok, err := a.storage.Get(a.key)
	if err != nil {
		a.logger.Printf("store: could not read %q: %v", a.key, err)
		return nil, false
	}
	if !ok {
		return nil, false
	}

	var doc document
	if err := json.Unmarshal(blob, &doc); err != nil || doc == nil {
		a.logger.Printf("store: discarding unreadable save %q: %v", a.key, err)
		return nil, false
	}

	from := doc.version()
	doc.migrate()
	if from != CurrentVersion {
		a.logger.Printf("store: migrated %q from version %d to %d", a.key, from, CurrentVersion)
	}

	return doc.repair(a.catalog), true
}

// Save writes st. Failures are logged and otherwise ignored.
func (a *Adapter) Save(st *game.State) {
	if st == nil {
		return
	}

	blob, err := json.Marshal(newRecord(st))
	if err != nil {
		a.logger.Printf("store: could not encode %q: %v", a.key, err)
		return
	}
	if err := a.storage.Set(a.key, blob); err != nil {
		a.logger.Printf("store: could not write %q: %v", a.key, err)
	}
}

func newRecord(st *game.State) record {
	r := record{
		Version:     CurrentVersion,
		Resources:   make(map[string]int, len(st.Resources)),
		Day:         st.Day,
		Deck:        append([]string{}, st.Deck...),
		Flags:       make(map[string]bool, len(st.Flags)),
		CardsPlayed: st.CardsPlayed,
		StoryIndex:  st.StoryIndex,
		GameOver:    st.GameOver,
		Victory:     st.Victory,
	}
	for res, v := range st.Resources {
		r.Resources[string(res)] = v
	}
	for name, v := range st.Flags {
		r.Flags[name] = v
	}
	if st.CurrentCardID != "" {
		id := st.CurrentCardID
		r.CurrentCardID = &id
	}
	if st.DefeatReason != "" {
		reason := string(st.DefeatReason)
		r.DefeatReason = &reason
	}
	return r
}
