// Package snapshot serves the pre-baked fallback dataset used when live storage
// is unreachable or not provisioned.
//
// The dataset is loaded once at startup and never mutated; every accessor returns
// copies so callers cannot alter shared state.
package snapshot

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"portal-content/internal/domain/entity"
	"portal-content/internal/resilience/faultclass"
)

//go:embed data/default.yaml
var defaultDataset []byte

// ErrKindNotCovered is returned for a kind the dataset carries no section for.
// It classifies as schema-missing so an exhausted cascade degrades to empty.
var ErrKindNotCovered = fmt.Errorf("snapshot: kind not covered: %w", faultclass.ErrSchemaMissing)

// Dataset is the on-disk snapshot format.
type Dataset struct {
	Version     string                          `yaml:"version"`
	GeneratedAt time.Time                       `yaml:"generated_at"`
	Entities    map[entity.Kind][]entity.Entity `yaml:"entities"`
	Banners     []entity.Banner                 `yaml:"banners"`
}

// Store is an immutable, in-memory view of a Dataset.
type Store struct {
	version     string
	generatedAt time.Time
	byKind      map[entity.Kind][]entity.Entity
	index       map[entity.Kind]map[string]int
	banners     []entity.Banner
}

// Default loads the dataset compiled into the binary.
func Default() (*Store, error) {
	return Load(defaultDataset)
}

// Open loads the dataset at path, or the embedded default when path is empty.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return Default()
	}
	// #nosec G304 -- path comes from operator configuration, not user input
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot file: %w", err)
	}
	return Load(data)
}

// Load parses and validates a YAML dataset.
func Load(data []byte) (*Store, error) {
	var ds Dataset
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&ds); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse snapshot: %w", err)
	}
	return New(ds)
}

// New builds a Store from an in-memory dataset after validating it.
func New(ds Dataset) (*Store, error) {
	if err := validate(&ds); err != nil {
		return nil, fmt.Errorf("snapshot validation failed: %w", err)
	}

	s := &Store{
		version:     ds.Version,
		generatedAt: ds.GeneratedAt,
		byKind:      make(map[entity.Kind][]entity.Entity, len(ds.Entities)),
		index:       make(map[entity.Kind]map[string]int, len(ds.Entities)),
		banners:     slices.Clone(ds.Banners),
	}
	for kind, items := range ds.Entities {
		list := make([]entity.Entity, len(items))
		for i := range items {
			list[i] = *items[i].Clone()
			list[i].Kind = kind
		}
		slices.SortStableFunc(list, newestFirst)

		idx := make(map[string]int, len(list))
		for i, e := range list {
			idx[e.ID] = i
		}
		s.byKind[kind] = list
		s.index[kind] = idx
	}
	return s, nil
}

func validate(ds *Dataset) error {
	for kind, items := range ds.Entities {
		if !kind.IsValid() {
			return fmt.Errorf("unknown kind %q", kind)
		}
		seen := make(map[string]struct{}, len(items))
		for i, e := range items {
			if err := entity.ValidateEntityID("id", e.ID); err != nil {
				return fmt.Errorf("%s[%d]: %w", kind, i, err)
			}
			if _, dup := seen[e.ID]; dup {
				return fmt.Errorf("%s[%d]: duplicate id %q", kind, i, e.ID)
			}
			seen[e.ID] = struct{}{}
			for _, p := range e.Portals {
				if !p.IsValid() {
					return fmt.Errorf("%s %q: invalid portal %d", kind, e.ID, p)
				}
			}
		}
	}
	for i, b := range ds.Banners {
		if !b.Placement.IsValid() {
			return fmt.Errorf("banners[%d]: invalid placement %q", i, b.Placement)
		}
		if b.Priority < 0 {
			return fmt.Errorf("banners[%d]: priority must be non-negative", i)
		}
	}
	return nil
}

// newestFirst matches the live ordering: created_at descending, then id.
func newestFirst(a, b entity.Entity) int {
	if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
		return c
	}
	return strings.Compare(a.ID, b.ID)
}

// Version returns the dataset version label.
func (s *Store) Version() string { return s.version }

// GeneratedAt returns when the dataset was produced.
func (s *Store) GeneratedAt() time.Time { return s.generatedAt }

// Counts returns the number of entities per covered kind.
func (s *Store) Counts() map[entity.Kind]int {
	out := make(map[entity.Kind]int, len(s.byKind))
	for k, v := range s.byKind {
		out[k] = len(v)
	}
	return out
}

// ListByPortal returns the entities of kind owned by portal.
func (s *Store) ListByPortal(kind entity.Kind, portal entity.PortalID) ([]entity.Entity, error) {
	items, ok := s.byKind[kind]
	if !ok {
		return nil, ErrKindNotCovered
	}
	out := make([]entity.Entity, 0)
	for i := range items {
		if items[i].OwnedBy(portal) {
			out = append(out, *items[i].Clone())
		}
	}
	return out, nil
}

// Get returns the entity of kind with the given id regardless of portal.
func (s *Store) Get(kind entity.Kind, id string) (*entity.Entity, error) {
	idx, ok := s.index[kind]
	if !ok {
		return nil, ErrKindNotCovered
	}
	i, ok := idx[id]
	if !ok {
		return nil, entity.ErrNotFound
	}
	return s.byKind[kind][i].Clone(), nil
}

// Banners returns the banners for a placement in dataset order.
func (s *Store) Banners(placement entity.Placement) ([]entity.Banner, error) {
	out := make([]entity.Banner, 0)
	for _, b := range s.banners {
		if b.Placement == placement {
			out = append(out, b)
		}
	}
	return out, nil
}

// Encode writes ds in the snapshot format.
func Encode(w io.Writer, ds Dataset) error {
	if err := validate(&ds); err != nil {
		return fmt.Errorf("snapshot validation failed: %w", err)
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(ds); err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return enc.Close()
}
