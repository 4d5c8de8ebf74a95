package pipeline

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hepframe/hepframe/internal/core/aggregation"
	engerr "github.com/hepframe/hepframe/internal/core/errors"
)

type sinkState struct {
	id     int
	node   int
	column string
	proto  aggregation.Accumulator
	err    error // construction or resolution error; final
	result aggregation.Accumulator
}

// Sink is a handle to an aggregation attached to a node.
type Sink struct {
	g  *Graph
	id int
}

// Result returns the sink's accumulator, running a pass over every pending
// sink of the graph if this one has not been computed yet. The returned
// accumulator must be treated as read-only.
//
// Column resolution errors are reported for the affected sink only; the
// other pending sinks still run. A failed pass leaves all of its sinks
// pending, so Result may be called again.
func (s Sink) Result(ctx context.Context) (aggregation.Accumulator, error) {
	g := s.g
	g.mu.Lock()
	defer g.mu.Unlock()

	st := g.sinks[s.id]
	if st.result == nil && st.err == nil {
		if err := g.execute(ctx); err != nil {
			return nil, err
		}
	}
	if st.err != nil {
		return nil, st.err
	}
	return st.result, nil
}

// Done reports whether the sink already holds a result.
func (s Sink) Done() bool {
	s.g.mu.Lock()
	defer s.g.mu.Unlock()
	return s.g.sinks[s.id].result != nil
}

// Column returns the column the sink is filled from.
func (s Sink) Column() string {
	s.g.mu.Lock()
	defer s.g.mu.Unlock()
	return s.g.sinks[s.id].column
}

// Integral returns the sum of the sinks' integrals.
func Integral(ctx context.Context, sinks ...Sink) (float64, error) {
	total := 0.0
	for _, s := range sinks {
		acc, err := s.Result(ctx)
		if err != nil {
			return 0, err
		}
		total += acc.Integral()
	}
	return total, nil
}

// execute runs one pass over every pending sink. g.mu must be held.
func (g *Graph) execute(ctx context.Context) error {
	p := newPlan(g.nodes)
	for _, st := range g.sinks {
		if st.result != nil || st.err != nil {
			continue
		}
		cs, err := p.compileSink(g.store, st)
		if err != nil {
			st.err = err
			g.logger.Warn("[Pipeline] sink rejected", "sink", st.id, "column", st.column, "error", err)
			continue
		}
		p.sinks = append(p.sinks, cs)
	}
	if len(p.sinks) == 0 {
		return nil
	}

	ranges := g.store.Partition(g.degree())
	start := time.Now()
	g.logger.Debug("[Pipeline] pass started", "sinks", len(p.sinks), "events", g.store.Len(), "workers", len(ranges))

	partials := make([][]aggregation.Accumulator, len(ranges))
	eg, ectx := errgroup.WithContext(ctx)
	for i, r := range ranges {
		eg.Go(func() (err error) {
			defer func() {
				if rec := recover(); rec != nil {
					err = fmt.Errorf("%w: partition %d: panic: %v", engerr.ErrComputeFailure, i, rec)
				}
			}()
			w, err := newWorker(p)
			if err != nil {
				return err
			}
			if err := w.run(ectx, r); err != nil {
				return err
			}
			partials[i] = w.results()
			return nil
		})
	}
	err := eg.Wait()

	stats := PassStats{
		Events:   g.store.Len(),
		Sinks:    len(p.sinks),
		Workers:  len(ranges),
		Duration: time.Since(start),
		Err:      err,
	}
	if g.observer != nil {
		g.observer.ObservePass(stats)
	}
	if err != nil {
		g.logger.Error("[Pipeline] pass failed", "sinks", stats.Sinks, "workers", stats.Workers, "error", err)
		return err
	}

	// Merge in partition order on this goroutine only.
	for j, cs := range p.sinks {
		final := cs.state.proto.Empty()
		for i := range partials {
			if err := final.Merge(partials[i][j]); err != nil {
				panic(fmt.Sprintf("pipeline: merging partition %d into sink %d: %v", i, cs.state.id, err))
			}
		}
		cs.state.result = final
	}
	g.passes++

	g.logger.Info("[Pipeline] pass completed",
		"sinks", stats.Sinks,
		"events", stats.Events,
		"workers", stats.Workers,
		"duration", stats.Duration,
	)
	return nil
}
