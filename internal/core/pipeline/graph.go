// Package pipeline builds lazy filter/define/aggregate graphs over a column
// store and executes them in one parallel pass per batch of pending sinks.
package pipeline

import (
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/hepframe/hepframe/internal/core/aggregation"
	"github.com/hepframe/hepframe/internal/core/column"
)

type nodeKind int

const (
	kindRoot nodeKind = iota
	kindFilter
	kindDefine
)

func (k nodeKind) String() string {
	switch k {
	case kindFilter:
		return "filter"
	case kindDefine:
		return "define"
	}
	return "root"
}

// node is an arena entry. Nodes are immutable once appended; a parent always
// has a smaller id than its children.
type node struct {
	id     int
	kind   nodeKind
	parent int
	label  string // filter label or defined column name
	inputs []Input
	pred   func(Args) (bool, error)
	def    definer
}

func (n *node) describe() string {
	if n.kind == kindRoot {
		return "root"
	}
	return n.kind.String() + " " + quote(n.label)
}

// Observer receives a summary of every completed pass.
type Observer interface {
	ObservePass(stats PassStats)
}

// PassStats describes one execution pass.
type PassStats struct {
	Events   int
	Sinks    int
	Workers  int
	Duration time.Duration
	Err      error
}

// Option configures a Graph.
type Option func(*Graph)

// WithConcurrency sets the number of workers. k <= 0 selects runtime.NumCPU().
func WithConcurrency(k int) Option {
	return func(g *Graph) { g.concurrency = k }
}

// WithObserver reports pass statistics to o.
func WithObserver(o Observer) Option {
	return func(g *Graph) { g.observer = o }
}

// WithLogger overrides slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(g *Graph) { g.logger = l }
}

// Graph is the arena holding every node and sink built over one store.
// Builders may be called from multiple goroutines; passes are serialized.
type Graph struct {
	mu          sync.Mutex
	store       *column.Store
	nodes       []*node
	sinks       []*sinkState
	concurrency int
	passes      int
	observer    Observer
	logger      *slog.Logger
}

// New creates a graph rooted at store. Nothing is read until a sink's
// Result is requested.
func New(store *column.Store, opts ...Option) *Graph {
	g := &Graph{
		store:  store,
		nodes:  []*node{{id: 0, kind: kindRoot, parent: -1}},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Root returns the node representing the unfiltered store.
func (g *Graph) Root() Node {
	return Node{g: g, id: 0}
}

// SetConcurrency changes the worker count. It only takes effect before the
// first pass; later calls are ignored with a warning.
func (g *Graph) SetConcurrency(k int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.passes > 0 {
		g.logger.Warn("[Pipeline] SetConcurrency after first pass ignored", "requested", k, "current", g.degree())
		return
	}
	g.concurrency = k
}

// Concurrency returns the effective worker count.
func (g *Graph) Concurrency() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.degree()
}

func (g *Graph) degree() int {
	if g.concurrency <= 0 {
		return runtime.NumCPU()
	}
	return g.concurrency
}

// Passes returns how many execution passes have completed successfully.
func (g *Graph) Passes() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.passes
}

// Store returns the store the graph reads from.
func (g *Graph) Store() *column.Store { return g.store }

func (g *Graph) add(n *node) Node {
	g.mu.Lock()
	defer g.mu.Unlock()
	n.id = len(g.nodes)
	g.nodes = append(g.nodes, n)
	return Node{g: g, id: n.id}
}

// Node is a handle to a graph node. Handles are values; building on a node
// never changes what existing handles select.
type Node struct {
	g  *Graph
	id int
}

// Graph returns the graph the node belongs to.
func (n Node) Graph() *Graph { return n.g }

// Filter returns a child node that keeps only events for which pred returns
// true. Events rejected by any ancestor never reach pred.
func (n Node) Filter(label string, pred func(Args) (bool, error), inputs ...Input) Node {
	return n.g.add(&node{
		kind:   kindFilter,
		parent: n.id,
		label:  label,
		inputs: inputs,
		pred:   pred,
	})
}

// Define returns a child of parent that exposes name to its descendants,
// computed by fn from inputs. A name shadows base columns and earlier
// defines on the same branch.
func Define[T any](parent Node, name string, fn func(Args) (T, error), inputs ...Input) Node {
	return parent.g.add(&node{
		kind:   kindDefine,
		parent: parent.id,
		label:  name,
		inputs: inputs,
		def:    defineFunc[T](fn),
	})
}

// Aggregate attaches a sink of the given kind filled from col for every
// event that reaches n. List columns fill once per element.
func (n Node) Aggregate(kind string, col string, cfg aggregation.Config) Sink {
	acc, err := aggregation.New(kind, cfg)
	st := &sinkState{node: n.id, column: col, proto: acc, err: err}

	g := n.g
	g.mu.Lock()
	defer g.mu.Unlock()
	st.id = len(g.sinks)
	g.sinks = append(g.sinks, st)
	return Sink{g: g, id: st.id}
}

// Histo1D attaches a fixed-bin histogram of col.
func (n Node) Histo1D(col string, bins int, low, high float64) Sink {
	return n.Aggregate(aggregation.KindHist1D, col, aggregation.Config{Bins: bins, Low: low, High: high})
}

// Count attaches a sink counting the events that reach n.
func (n Node) Count() Sink {
	return n.Aggregate(aggregation.KindCount, "", aggregation.Config{})
}
