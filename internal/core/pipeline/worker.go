package pipeline

import (
	"context"
	"fmt"

	"github.com/hepframe/hepframe/internal/core/aggregation"
	engerr "github.com/hepframe/hepframe/internal/core/errors"
	"github.com/hepframe/hepframe/internal/core/partition"
)

// checkEvery is how many events a worker processes between context checks.
const checkEvery = 1024

type filterMemo struct {
	row  int
	pass bool
}

type workerSink struct {
	node int
	fill fillFunc
	acc  aggregation.Accumulator
}

// worker owns everything mutable during a pass over one partition: derived
// slots, filter memos and partial accumulators. Nothing is shared with other
// workers except the read-only plan and store.
type worker struct {
	plan  *plan
	slots []any
	args  []Args
	memo  []filterMemo
	sinks []workerSink
	err   error
}

func newWorker(p *plan) (*worker, error) {
	w := &worker{
		plan:  p,
		slots: make([]any, len(p.nodes)),
		args:  make([]Args, len(p.nodes)),
		memo:  make([]filterMemo, len(p.nodes)),
	}
	for i := range w.memo {
		w.memo[i].row = -1
	}

	// ids ascend from the root, so every input slot exists before its reader
	for id, cn := range p.compiled {
		if cn == nil {
			continue
		}
		n := p.nodes[id]
		readers := make([]any, len(cn.inputs))
		for j, b := range cn.inputs {
			readers[j] = w.source(b)
		}
		switch n.kind {
		case kindDefine:
			w.slots[id] = n.def.slot(w, n.label, readers)
		case kindFilter:
			w.args[id] = Args{readers: readers}
		}
	}

	w.sinks = make([]workerSink, 0, len(p.sinks))
	for _, cs := range p.sinks {
		fill := fillFunc(func(acc aggregation.Accumulator, _ int) { acc.Fill(0) })
		if cs.hasSrc {
			f, err := filler(w.source(cs.source))
			if err != nil {
				return nil, fmt.Errorf("%w: sink column %s: %v", engerr.ErrTypeMismatch, quote(cs.state.column), err)
			}
			fill = f
		}
		w.sinks = append(w.sinks, workerSink{node: cs.state.node, fill: fill, acc: cs.state.proto.Empty()})
	}
	return w, nil
}

func (w *worker) source(b binding) any {
	if b.isDefine() {
		return w.slots[b.define]
	}
	return b.base
}

// fail records the first compute error of the pass.
func (w *worker) fail(err error) {
	if w.err == nil {
		w.err = fmt.Errorf("%w: %w", engerr.ErrComputeFailure, err)
	}
}

// passes reports whether row survives every filter from the root down to id.
// Each node is evaluated at most once per event.
func (w *worker) passes(id, row int) bool {
	if id == 0 {
		return true
	}
	m := &w.memo[id]
	if m.row == row {
		return m.pass
	}

	n := w.plan.nodes[id]
	pass := w.passes(n.parent, row)
	if pass && n.kind == kindFilter {
		a := w.args[id]
		a.row = row
		ok, err := n.pred(a)
		if err != nil {
			w.fail(fmt.Errorf("filter %s at row %d: %w", quote(n.label), row, err))
			ok = false
		}
		pass = ok
	}
	m.row, m.pass = row, pass
	return pass
}

// run processes every event of r, each to completion before the next.
func (w *worker) run(ctx context.Context, r partition.Range) error {
	for row := r.Begin; row < r.End; row++ {
		if (row-r.Begin)%checkEvery == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		for i := range w.sinks {
			s := &w.sinks[i]
			if w.passes(s.node, row) {
				s.fill(s.acc, row)
			}
		}
		if w.err != nil {
			return w.err
		}
	}
	return nil
}

func (w *worker) results() []aggregation.Accumulator {
	out := make([]aggregation.Accumulator, len(w.sinks))
	for i := range w.sinks {
		out[i] = w.sinks[i].acc
	}
	return out
}
