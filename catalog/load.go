package catalog

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed data/*.yaml
var dataFS embed.FS

const (
	cardsName = "cards"
	storyName = "story"
)

// extensions are tried in order; JSON files parse as YAML too
var extensions = []string{".yaml", ".yml", ".json"}

// Source loads a Catalog. Loading happens once per session.
type Source interface {
	Load() (*Catalog, error)
}

// Parse decodes a list of cards from JSON or YAML
func Parse(raw []byte) ([]Card, error) {
	var cards []Card
	if err := yaml.Unmarshal(raw, &cards); err != nil {
		return nil, err
	}
	return cards, nil
}

// EmbeddedSource serves the card set compiled into the binary
type EmbeddedSource struct {
	once    sync.Once
	catalog *Catalog
	err     error
}

func NewEmbeddedSource() *EmbeddedSource {
	return &EmbeddedSource{}
}

func (s *EmbeddedSource) Load() (*Catalog, error) {
	s.once.Do(func() {
		sub, err := fs.Sub(dataFS, "data")
		if err != nil {
			s.err = fmt.Errorf("%w: %w", ErrUnavailable, err)
			return
		}
		s.catalog, s.err = loadFS(sub)
	})
	return s.catalog, s.err
}

// DirSource reads cards.{yaml,yml,json} and an optional story.{yaml,yml,json}
// from a directory on disk
type DirSource struct {
	Dir string
}

func NewDirSource(dir string) DirSource {
	return DirSource{Dir: dir}
}

func (s DirSource) Load() (*Catalog, error) {
	return loadFS(os.DirFS(s.Dir))
}

func loadFS(fsys fs.FS) (*Catalog, error) {
	ordinary, err := readPool(fsys, cardsName)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	stories, err := readPool(fsys, storyName)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	c, err := New(ordinary, stories)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return c, nil
}

func readPool(fsys fs.FS, name string) ([]Card, error) {
	for _, ext := range extensions {
		path := name + ext
		raw, err := fs.ReadFile(fsys, path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		cards, err := Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
		}
		return cards, nil
	}
	return nil, fmt.Errorf("%s: %w", name, fs.ErrNotExist)
}
