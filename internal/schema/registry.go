package schema

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
)

const defaultCacheSize = 256

// Registry looks definitions up through an LRU cache in front of a
// Repository.
type Registry struct {
	repo  Repository
	cache *lru.Cache[Ref, Definition]
	now   func() time.Time
}

// NewRegistry caches up to size definitions; size <= 0 uses a default.
func NewRegistry(repo Repository, size int) *Registry {
	if size <= 0 {
		size = defaultCacheSize
	}
	cache, err := lru.New[Ref, Definition](size)
	if err != nil {
		// only returned for a non-positive size
		panic(err)
	}
	return &Registry{repo: repo, cache: cache, now: time.Now}
}

// Get returns the definition of dataset at version. Version 0 selects the
// highest active version.
func (r *Registry) Get(ctx context.Context, dataset string, version int) (*Definition, error) {
	if version == 0 {
		return r.newest(ctx, dataset)
	}

	ref := Ref{Dataset: dataset, Version: version}
	if d, ok := r.cache.Get(ref); ok {
		return &d, nil
	}
	d, err := r.repo.Get(ctx, ref)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, ref)
		}
		return nil, err
	}
	r.cache.Add(ref, *d)
	return d, nil
}

func (r *Registry) newest(ctx context.Context, dataset string) (*Definition, error) {
	defs, err := r.repo.List(ctx, dataset)
	if err != nil {
		return nil, err
	}
	var best *Definition
	for _, d := range defs {
		if d.State == StateActive && (best == nil || d.Version > best.Version) {
			best = d
		}
	}
	if best == nil {
		return nil, fmt.Errorf("%w: no active layout for %s", ErrNotFound, dataset)
	}
	r.cache.Add(best.Ref(), *best)
	return best, nil
}

// Register stores def as a new active version. Dataset, Version, Format,
// Source and StrictMode come from the caller; the rest is filled in.
func (r *Registry) Register(ctx context.Context, def Definition) (*Definition, error) {
	switch {
	case def.Dataset == "":
		return nil, errors.New("dataset is required")
	case def.Version < 1:
		return nil, errors.New("version must be >= 1")
	case len(def.Source) == 0:
		return nil, errors.New("source is required")
	}

	def.ID = uuid.NewString()
	def.Fingerprint = Fingerprint(def.Source)
	def.State = StateActive
	def.CreatedAt = r.now().UTC()
	def.DeprecatedAt = nil

	if err := r.repo.Create(ctx, &def); err != nil {
		return nil, err
	}
	r.cache.Add(def.Ref(), def)
	return &def, nil
}

// Deprecate takes ref out of "latest" resolution. It stays readable by
// explicit version.
func (r *Registry) Deprecate(ctx context.Context, ref Ref) error {
	if err := r.repo.SetState(ctx, ref, StateDeprecated); err != nil {
		return err
	}
	r.cache.Remove(ref)
	return nil
}

// List passes through to the repository, bypassing the cache.
func (r *Registry) List(ctx context.Context, dataset string) ([]*Definition, error) {
	return r.repo.List(ctx, dataset)
}
