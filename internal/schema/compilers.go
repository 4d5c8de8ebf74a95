package schema

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/hepframe/hepframe/internal/core/column"
)

// Compiler turns the source of one definition format into a Layout.
type Compiler interface {
	Compile(ctx context.Context, def *Definition) (*Layout, error)
}

// Compilers dispatches definitions to the compiler of their format and
// keeps every compiled layout, keyed by fingerprint. Concurrent compiles of
// the same definition share one call.
type Compilers struct {
	mu       sync.RWMutex
	byFormat map[Format]Compiler
	layouts  map[string]*Layout
	group    singleflight.Group
}

// NewCompilers returns an empty set; add formats with Register.
func NewCompilers() *Compilers {
	return &Compilers{
		byFormat: make(map[Format]Compiler),
		layouts:  make(map[string]*Layout),
	}
}

// Register installs c for format f, replacing any previous one.
func (cs *Compilers) Register(f Format, c Compiler) {
	cs.mu.Lock()
	cs.byFormat[f] = c
	cs.mu.Unlock()
}

// Formats lists the registered formats in order.
func (cs *Compilers) Formats() []Format {
	cs.mu.RLock()
	defer cs.mu.RUnlock()

	out := make([]Format, 0, len(cs.byFormat))
	for f := range cs.byFormat {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// layoutKey carries the fingerprint so a redefined version never hits a
// stale layout.
func layoutKey(def *Definition) string {
	fp := def.Fingerprint
	if fp == "" {
		fp = Fingerprint(def.Source)
	}
	return fmt.Sprintf("%s:%d:%t:%s", def.Dataset, def.Version, def.StrictMode, fp)
}

func (cs *Compilers) cached(key string) (*Layout, bool) {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	l, ok := cs.layouts[key]
	return l, ok
}

// Compile returns the layout of def.
func (cs *Compilers) Compile(ctx context.Context, def *Definition) (*Layout, error) {
	key := layoutKey(def)
	if l, ok := cs.cached(key); ok {
		return l, nil
	}

	v, err, _ := cs.group.Do(key, func() (interface{}, error) {
		if l, ok := cs.cached(key); ok {
			return l, nil
		}

		cs.mu.RLock()
		c, ok := cs.byFormat[def.Format]
		cs.mu.RUnlock()
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, def.Format)
		}

		l, err := c.Compile(ctx, def)
		if err != nil {
			return nil, fmt.Errorf("compile %s: %w", def.Ref(), err)
		}

		cs.mu.Lock()
		cs.layouts[key] = l
		cs.mu.Unlock()
		return l, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Layout), nil
}

// Check compiles def and checks store against it.
func (cs *Compilers) Check(ctx context.Context, def *Definition, store *column.Store) error {
	l, err := cs.Compile(ctx, def)
	if err != nil {
		return err
	}
	return l.Check(store)
}

// Forget drops the compiled layout of def.
func (cs *Compilers) Forget(def *Definition) {
	cs.mu.Lock()
	delete(cs.layouts, layoutKey(def))
	cs.mu.Unlock()
}
