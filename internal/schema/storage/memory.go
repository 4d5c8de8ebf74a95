package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/hepframe/hepframe/internal/schema"
)

// MemoryRepository keeps definitions in a map. Callers get copies.
type MemoryRepository struct {
	mu   sync.RWMutex
	defs map[schema.Ref]schema.Definition
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{defs: make(map[schema.Ref]schema.Definition)}
}

func (m *MemoryRepository) Create(_ context.Context, def *schema.Definition) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.defs[def.Ref()]; ok {
		return schema.ErrAlreadyExists
	}
	m.defs[def.Ref()] = *def
	return nil
}

func (m *MemoryRepository) Get(_ context.Context, ref schema.Ref) (*schema.Definition, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	d, ok := m.defs[ref]
	if !ok {
		return nil, schema.ErrNotFound
	}
	return &d, nil
}

func (m *MemoryRepository) List(_ context.Context, dataset string) ([]*schema.Definition, error) {
	m.mu.RLock()
	out := []*schema.Definition{}
	for ref, d := range m.defs {
		if dataset == "" || ref.Dataset == dataset {
			d := d
			out = append(out, &d)
		}
	}
	m.mu.RUnlock()

	sortDefinitions(out)
	return out, nil
}

func (m *MemoryRepository) SetState(_ context.Context, ref schema.Ref, state schema.State) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	d, ok := m.defs[ref]
	if !ok {
		return schema.ErrNotFound
	}
	d.State = state
	d.DeprecatedAt = nil
	if state == schema.StateDeprecated {
		now := time.Now().UTC()
		d.DeprecatedAt = &now
	}
	m.defs[ref] = d
	return nil
}

func sortDefinitions(defs []*schema.Definition) {
	sort.Slice(defs, func(i, j int) bool {
		if defs[i].Dataset != defs[j].Dataset {
			return defs[i].Dataset < defs[j].Dataset
		}
		return defs[i].Version < defs[j].Version
	})
}
