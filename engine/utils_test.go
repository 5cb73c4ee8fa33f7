package engine

import (
	"bytes"
	"context"
	"io"
	"log"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/minaorangina/shift/catalog"
	utils "github.com/minaorangina/shift/internal"
	"github.com/minaorangina/shift/store"
)

// TestBuffer is used in tests for io
type TestBuffer struct {
	buf bytes.Buffer
	m   sync.Mutex
}

func NewTestBuffer() *TestBuffer {
	return &TestBuffer{}
}

func (tb *TestBuffer) Read(p []byte) (int, error) {
	tb.m.Lock()
	defer tb.m.Unlock()
	return tb.buf.Read(p)
}

func (tb *TestBuffer) Write(p []byte) (int, error) {
	tb.m.Lock()
	defer tb.m.Unlock()
	return tb.buf.Write(p)
}

func (tb *TestBuffer) String() string {
	tb.m.Lock()
	defer tb.m.Unlock()
	return tb.buf.String()
}

// gate is a transition that holds each turn until released
type gate struct {
	entered chan catalog.Side
	release chan struct{}
}

func newGate() *gate {
	return &gate{
		entered: make(chan catalog.Side, 1),
		release: make(chan struct{}),
	}
}

func (g *gate) transition(ctx context.Context, card catalog.Card, side catalog.Side) {
	g.entered <- side
	select {
	case <-g.release:
	case <-ctx.Done():
	}
}

// stallingStorage holds a save once armed, until released
type stallingStorage struct {
	*store.MemoryStorage
	armed   atomic.Bool
	entered chan struct{}
	release chan struct{}
}

func newStallingStorage() *stallingStorage {
	return &stallingStorage{
		MemoryStorage: store.NewMemoryStorage(),
		entered:       make(chan struct{}, 1),
		release:       make(chan struct{}),
	}
}

func (s *stallingStorage) Set(key string, blob []byte) error {
	if s.armed.CompareAndSwap(true, false) {
		s.entered <- struct{}{}
		<-s.release
	}
	return s.MemoryStorage.Set(key, blob)
}

func effectCard(id string, left map[string]int) catalog.Card {
	card := utils.PlainCard(id)
	card.Choices.Left.Effects = left
	return card
}

func testSessionOpts(cat *catalog.Catalog, storage store.Storage, out io.Writer) SessionOpts {
	if out == nil {
		out = io.Discard
	}
	return SessionOpts{
		Source:  utils.StaticSource{Catalog: cat},
		Storage: storage,
		RNG:     utils.OrderedRNG{},
		Logger:  log.New(out, "", 0),
	}
}

func startedSession(t *testing.T, opts SessionOpts) *Session {
	t.Helper()

	s := NewSession(opts)
	require.NoError(t, s.Start())
	return s
}
