package engine

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	uuid "github.com/satori/go.uuid"

	"github.com/minaorangina/shift/catalog"
	"github.com/minaorangina/shift/deck"
	"github.com/minaorangina/shift/game"
	"github.com/minaorangina/shift/protocol"
	"github.com/minaorangina/shift/store"
)

const DefaultTransition = 650 * time.Millisecond

var (
	ErrLoading        = errors.New("session is still loading")
	ErrAlreadyStarted = errors.New("session has already started")
)

const (
	statusUnavailable = "The cards could not be loaded. Please try again later."
	statusPaused      = "Nothing needs you today. Take a breath and try again tomorrow."
	statusResumed     = "Welcome back."
	statusReset       = "A new run begins. The café opens its doors."
	statusDefeated    = "You ran out of %s."
	statusVictorious  = "The café made it through the year."
	statusDay         = "Day %d."
)

// Transition is the presentation step played between a choice and its
// resolution, such as a card flying off screen. It must return once ctx is done.
type Transition func(ctx context.Context, card catalog.Card, side catalog.Side)

// SessionOpts configures a Session
type SessionOpts struct {
	Source            catalog.Source
	Storage           store.Storage
	StorageKey        string
	RNG               deck.RNG
	Transition        Transition
	TransitionTimeout time.Duration
	Logger            *log.Logger
}

// Session owns one player's run: the catalog, the game and its save.
// All methods are safe for concurrent use.
type Session struct {
	source     catalog.Source
	storage    store.Storage
	key        string
	rng        deck.RNG
	transition Transition
	timeout    time.Duration
	logger     *log.Logger

	mu      sync.Mutex
	started bool
	loadErr error
	game    *game.Game
	runID   string
	status  string

	busy atomic.Bool
}

func NewSession(opts SessionOpts) *Session {
	if opts.Storage == nil {
		opts.Storage = store.NewMemoryStorage()
	}
	if opts.RNG == nil {
		opts.RNG = deck.NewRNG(0)
	}
	if opts.TransitionTimeout <= 0 {
		opts.TransitionTimeout = DefaultTransition
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}

	return &Session{
		source:     opts.Source,
		storage:    opts.Storage,
		key:        opts.StorageKey,
		rng:        opts.RNG,
		transition: opts.Transition,
		timeout:    opts.TransitionTimeout,
		logger:     opts.Logger,
	}
}

// Start loads the catalog and resumes the saved run, or starts a new one.
// A catalog failure leaves the session unavailable and is returned wrapping
// catalog.ErrUnavailable.
func (s *Session) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return ErrAlreadyStarted
	}
	s.started = true

	if s.source == nil {
		s.loadErr = fmt.Errorf("%w: no catalog source", catalog.ErrUnavailable)
	} else {
		cat, err := s.source.Load()
		if err == nil && cat == nil {
			err = catalog.ErrNoCards
		}
		if err != nil && !errors.Is(err, catalog.ErrUnavailable) {
			err = fmt.Errorf("%w: %w", catalog.ErrUnavailable, err)
		}
		if err != nil {
			s.loadErr = err
		} else {
			s.loadErr = s.begin(cat)
		}
	}

	if s.loadErr != nil {
		s.status = statusUnavailable
		s.logger.Printf("engine: %v", s.loadErr)
		return s.loadErr
	}
	return nil
}

func (s *Session) begin(cat *catalog.Catalog) error {
	adapter := store.NewAdapter(s.storage, s.key, cat, s.logger)
	saved, resumed := adapter.Load()

	g, err := game.New(game.GameOpts{
		Catalog: cat,
		State:   saved,
		RNG:     s.rng,
		Saver:   adapter,
	})
	if err != nil {
		return err
	}

	s.game = g
	s.runID = uuid.NewV4().String()
	if resumed {
		s.status = statusResumed
		s.logger.Printf("engine: run %s resumed on day %d", s.runID, g.State().Day)
	} else {
		s.logger.Printf("engine: run %s started", s.runID)
	}
	s.updateStatus()
	return nil
}

// Choose plays the transition for the current card and then resolves it.
// Only one of Choose, Retry or Reset is in flight at a time; the others get
// game.ErrTurnInProgress.
// Cancelling ctx cuts the transition short but the turn still resolves.
func (s *Session) Choose(ctx context.Context, side catalog.Side) (game.Outcome, error) {
	if !side.Valid() {
		return game.Outcome{}, game.ErrUnknownSide
	}
	if !s.busy.CompareAndSwap(false, true) {
		return game.Outcome{}, game.ErrTurnInProgress
	}
	defer s.busy.Store(false)

	card, err := s.current()
	if err != nil {
		return game.Outcome{}, err
	}

	if s.transition != nil {
		tctx, cancel := context.WithTimeout(ctx, s.timeout)
		s.transition(tctx, card, side)
		cancel()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	outcome, err := s.game.Choose(side)
	if err != nil {
		return outcome, err
	}
	s.status = ""
	s.updateStatus()

	switch outcome.Phase {
	case game.Defeated:
		s.logger.Printf("engine: run %s lost on %s after %d cards", s.runID, s.game.State().DefeatReason, s.game.State().CardsPlayed)
	case game.Victorious:
		s.logger.Printf("engine: run %s won after %d cards", s.runID, s.game.State().CardsPlayed)
	}
	return outcome, nil
}

// Retry lets a day pass while paused
func (s *Session) Retry() (game.Phase, error) {
	if !s.busy.CompareAndSwap(false, true) {
		return 0, game.ErrTurnInProgress
	}
	defer s.busy.Store(false)
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.game == nil {
		return 0, s.notReady()
	}
	phase, err := s.game.Retry()
	if err != nil {
		return phase, err
	}
	s.status = fmt.Sprintf(statusDay, s.game.State().Day)
	s.updateStatus()
	return phase, nil
}

// Reset abandons the run and starts a new one
func (s *Session) Reset() (game.Phase, error) {
	if !s.busy.CompareAndSwap(false, true) {
		return 0, game.ErrTurnInProgress
	}
	defer s.busy.Store(false)
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.game == nil {
		return 0, s.notReady()
	}
	phase := s.game.Reset()
	s.runID = uuid.NewV4().String()
	s.logger.Printf("engine: run %s started", s.runID)
	s.status = statusReset
	s.updateStatus()
	return phase, nil
}

// Handle applies one inbound command and returns the reply for the player
func (s *Session) Handle(ctx context.Context, msg protocol.InboundMessage) protocol.OutboundMessage {
	var err error
	switch msg.Command {
	case protocol.Sync:
	case protocol.Choose:
		_, err = s.Choose(ctx, catalog.Side(msg.Side))
	case protocol.Reset:
		_, err = s.Reset()
	case protocol.Retry:
		_, err = s.Retry()
	default:
		err = fmt.Errorf("unsupported command %s", msg.Command)
	}

	view := s.View()
	if err != nil {
		return protocol.OutboundMessage{Command: protocol.Error, View: &view, Error: err.Error()}
	}
	return protocol.OutboundMessage{Command: protocol.Update, View: &view}
}

// RunID identifies the current run in logs
func (s *Session) RunID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runID
}

func (s *Session) current() (catalog.Card, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.game == nil {
		return catalog.Card{}, s.notReady()
	}
	if s.game.Phase().Terminal() {
		return catalog.Card{}, game.ErrGameOver
	}
	card, ok := s.game.Current()
	if !ok {
		return catalog.Card{}, game.ErrNoCurrentCard
	}
	return card, nil
}

func (s *Session) notReady() error {
	if s.loadErr != nil {
		return s.loadErr
	}
	return ErrLoading
}

// updateStatus fills in the status line for phases that need one.
// The end of a run always overrides whatever was there.
func (s *Session) updateStatus() {
	switch s.game.Phase() {
	case game.Paused:
		if s.status != statusResumed {
			s.status = statusPaused
		}
	case game.Defeated:
		s.status = fmt.Sprintf(statusDefeated, s.game.State().DefeatReason.Label())
	case game.Victorious:
		s.status = statusVictorious
	}
}
