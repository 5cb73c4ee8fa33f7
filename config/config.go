package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joeshaw/envdecode"

	"github.com/minaorangina/shift/catalog"
	"github.com/minaorangina/shift/store"
)

const (
	FileStorage   = "file"
	SQLiteStorage = "sqlite"
	MemoryStorage = "memory"
)

var ErrUnknownStorage = errors.New("unknown storage kind")

// Config is read from SHIFT_* environment variables
type Config struct {
	Addr           string        `env:"SHIFT_ADDR,default=:8000"`
	Storage        string        `env:"SHIFT_STORAGE,default=file"`
	StoragePath    string        `env:"SHIFT_STORAGE_PATH,default=shift-data"`
	StorageKey     string        `env:"SHIFT_STORAGE_KEY,default=shift-state-v2"`
	CatalogDir     string        `env:"SHIFT_CATALOG_DIR"`
	Seed           uint64        `env:"SHIFT_SEED,default=0"`
	Transition     time.Duration `env:"SHIFT_TRANSITION,default=650ms"`
	AllowedOrigins []string      `env:"SHIFT_ALLOWED_ORIGINS,default=*"`
}

// Load decodes the environment and checks the result
func Load() (Config, error) {
	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return Config{}, fmt.Errorf("decode environment: %w", err)
	}
	cfg.Storage = strings.ToLower(strings.TrimSpace(cfg.Storage))

	switch cfg.Storage {
	case FileStorage, SQLiteStorage, MemoryStorage:
	default:
		return Config{}, fmt.Errorf("%w: %q", ErrUnknownStorage, cfg.Storage)
	}
	if cfg.Transition < 0 {
		return Config{}, fmt.Errorf("SHIFT_TRANSITION must not be negative, got %s", cfg.Transition)
	}
	return cfg, nil
}

// CatalogSource is the directory source when one is configured,
// otherwise the cards compiled into the binary
func (c Config) CatalogSource() catalog.Source {
	if c.CatalogDir != "" {
		return catalog.NewDirSource(c.CatalogDir)
	}
	return catalog.NewEmbeddedSource()
}

// OpenStorage opens the configured backend. The returned closer is never nil.
func (c Config) OpenStorage() (store.Storage, io.Closer, error) {
	switch c.Storage {
	case MemoryStorage:
		return store.NewMemoryStorage(), nopCloser{}, nil
	case FileStorage:
		s, err := store.NewFileStorage(c.StoragePath)
		if err != nil {
			return nil, nopCloser{}, err
		}
		return s, nopCloser{}, nil
	case SQLiteStorage:
		path := c.StoragePath
		if filepath.Ext(path) == "" {
			path = filepath.Join(path, "shift.db")
			if err := os.MkdirAll(c.StoragePath, 0o755); err != nil {
				return nil, nopCloser{}, fmt.Errorf("create data dir: %w", err)
			}
		}
		s, err := store.OpenSQLite(path)
		if err != nil {
			return nil, nopCloser{}, err
		}
		return s, s, nil
	}
	return nil, nopCloser{}, fmt.Errorf("%w: %q", ErrUnknownStorage, c.Storage)
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
