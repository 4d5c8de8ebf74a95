package pipeline

import (
	"fmt"

	"github.com/hepframe/hepframe/internal/core/aggregation"
	"github.com/hepframe/hepframe/internal/core/column"
	engerr "github.com/hepframe/hepframe/internal/core/errors"
)

// binding is a resolved column reference: either a base column or the Define
// node with the given id.
type binding struct {
	base   column.Column
	define int
}

func (b binding) isDefine() bool { return b.base == nil }

// compiledNode holds the resolved inputs of a Filter or Define node.
type compiledNode struct {
	inputs []binding
}

type compiledSink struct {
	state  *sinkState
	source binding
	hasSrc bool
}

// plan is the validated, resolved form of the graph for one pass. It is
// read-only and shared by all workers.
type plan struct {
	nodes    []*node
	compiled []*compiledNode
	sinks    []compiledSink
}

func newPlan(nodes []*node) *plan {
	return &plan{nodes: nodes, compiled: make([]*compiledNode, len(nodes))}
}

// resolve finds the source of name as seen from node from, walking towards
// the root. The closest Define wins.
func (p *plan) resolve(store *column.Store, from int, name string) (binding, error) {
	for id := from; id > 0; id = p.nodes[id].parent {
		n := p.nodes[id]
		if n.kind == kindDefine && n.label == name {
			return binding{define: id}, nil
		}
	}
	c, err := store.Column(name)
	if err != nil {
		return binding{}, err
	}
	return binding{base: c, define: -1}, nil
}

// protoOf returns a value with the reader type the binding will have at
// run time.
func (p *plan) protoOf(b binding) any {
	if b.isDefine() {
		return p.nodes[b.define].def.proto()
	}
	return b.base
}

func describeSource(p *plan, b binding) string {
	if b.isDefine() {
		return p.nodes[b.define].def.typeName()
	}
	return column.Describe(b.base.Kind(), b.base.IsList())
}

// compileNode resolves and type-checks id and all of its ancestors. Nodes
// are committed root-first, so a compiled node implies compiled ancestors.
func (p *plan) compileNode(store *column.Store, id int) error {
	var chain []int
	for cur := id; cur > 0 && p.compiled[cur] == nil; cur = p.nodes[cur].parent {
		chain = append(chain, cur)
	}
	for i := len(chain) - 1; i >= 0; i-- {
		n := p.nodes[chain[i]]
		cn := &compiledNode{inputs: make([]binding, len(n.inputs))}
		for j, in := range n.inputs {
			b, err := p.resolve(store, n.parent, in.name)
			if err != nil {
				return fmt.Errorf("%s input %d: %w", n.describe(), j, err)
			}
			if !in.accepts(p.protoOf(b)) {
				return fmt.Errorf("%w: %s input %d: column %s is %s, declared %s",
					engerr.ErrTypeMismatch, n.describe(), j, quote(in.name), describeSource(p, b), in.typeName)
			}
			cn.inputs[j] = b
		}
		p.compiled[n.id] = cn
	}
	return nil
}

// compileSink validates st against the graph and returns its plan entry.
func (p *plan) compileSink(store *column.Store, st *sinkState) (compiledSink, error) {
	if st.err != nil {
		return compiledSink{}, st.err
	}
	if err := p.compileNode(store, st.node); err != nil {
		return compiledSink{}, err
	}
	cs := compiledSink{state: st}
	if st.column == "" {
		if st.proto.Kind() != aggregation.KindCount {
			return compiledSink{}, fmt.Errorf("%w: %s sink needs a column", engerr.ErrUnknownColumn, st.proto.Kind())
		}
		return cs, nil
	}
	b, err := p.resolve(store, st.node, st.column)
	if err != nil {
		return compiledSink{}, fmt.Errorf("%s sink: %w", st.proto.Kind(), err)
	}
	if _, err := filler(p.protoOf(b)); err != nil {
		return compiledSink{}, fmt.Errorf("%w: %s sink column %s: %v", engerr.ErrTypeMismatch, st.proto.Kind(), quote(st.column), err)
	}
	cs.source, cs.hasSrc = b, true
	return cs, nil
}

// fillFunc folds the value of one event into acc.
type fillFunc func(acc aggregation.Accumulator, row int)

// filler returns the fill function for a numeric scalar or list reader.
func filler(src any) (fillFunc, error) {
	switch r := src.(type) {
	case column.Reader[float64]:
		return func(acc aggregation.Accumulator, row int) { acc.Fill(r.Value(row)) }, nil
	case column.Reader[float32]:
		return func(acc aggregation.Accumulator, row int) { acc.Fill(float64(r.Value(row))) }, nil
	case column.Reader[int32]:
		return func(acc aggregation.Accumulator, row int) { acc.Fill(float64(r.Value(row))) }, nil
	case column.Reader[int64]:
		return func(acc aggregation.Accumulator, row int) { acc.Fill(float64(r.Value(row))) }, nil
	case column.Reader[uint32]:
		return func(acc aggregation.Accumulator, row int) { acc.Fill(float64(r.Value(row))) }, nil
	case column.Reader[int]:
		return func(acc aggregation.Accumulator, row int) { acc.Fill(float64(r.Value(row))) }, nil
	case column.Reader[bool]:
		return func(acc aggregation.Accumulator, row int) { acc.Fill(boolValue(r.Value(row))) }, nil
	case column.Reader[[]float64]:
		return fillEach(r.Value, func(v float64) float64 { return v }), nil
	case column.Reader[[]float32]:
		return fillEach(r.Value, func(v float32) float64 { return float64(v) }), nil
	case column.Reader[[]int32]:
		return fillEach(r.Value, func(v int32) float64 { return float64(v) }), nil
	case column.Reader[[]int64]:
		return fillEach(r.Value, func(v int64) float64 { return float64(v) }), nil
	case column.Reader[[]uint32]:
		return fillEach(r.Value, func(v uint32) float64 { return float64(v) }), nil
	case column.Reader[[]int]:
		return fillEach(r.Value, func(v int) float64 { return float64(v) }), nil
	case column.Reader[[]bool]:
		return fillEach(r.Value, boolValue), nil
	}
	return nil, fmt.Errorf("%T is not numeric", src)
}

func fillEach[E any](value func(int) []E, conv func(E) float64) fillFunc {
	return func(acc aggregation.Accumulator, row int) {
		for _, v := range value(row) {
			acc.Fill(conv(v))
		}
	}
}

func boolValue(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
