package aggregation

import (
	"fmt"
	"sort"
)

// Accumulator is a mergeable reduction target. Merge must be associative and
// commutative so per-partition partials can be combined in any grouping.
type Accumulator interface {
	// Kind returns the registry name of the accumulator.
	Kind() string

	// Fill folds one value into the accumulator.
	Fill(v float64)

	// Merge adds other into the receiver. Fails with ErrShapeMismatch when
	// other is of a different kind or shape; the receiver is left unchanged.
	Merge(other Accumulator) error

	// Integral is the scalar a benchmark reports for this accumulator.
	Integral() float64

	// Entries counts Fill calls, including values outside any binning.
	Entries() int64

	// Empty returns a new zero accumulator with the receiver's shape.
	Empty() Accumulator
}

// Factory builds an empty accumulator from its config.
type Factory func(cfg Config) (Accumulator, error)

// Kinds is the registry of all supported accumulator kinds.
// To add a kind: implement Accumulator and add an entry here.
var Kinds = map[string]Factory{
	KindHist1D: newHist1D,
	KindCount:  func(Config) (Accumulator, error) { return &Count{}, nil },
	KindSum:    func(Config) (Accumulator, error) { return NewSum(), nil },
	KindMin:    func(Config) (Accumulator, error) { return &Extremum{kind: KindMin}, nil },
	KindMax:    func(Config) (Accumulator, error) { return &Extremum{kind: KindMax}, nil },
}

// ValidKind reports whether kind is a registered accumulator kind.
func ValidKind(kind string) bool {
	_, ok := Kinds[kind]
	return ok
}

// KindNames returns the registered kinds, sorted.
func KindNames() []string {
	names := make([]string, 0, len(Kinds))
	for k := range Kinds {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// New builds an empty accumulator of the given kind.
func New(kind string, cfg Config) (Accumulator, error) {
	f, ok := Kinds[kind]
	if !ok {
		return nil, fmt.Errorf("unknown accumulator kind %q", kind)
	}
	acc, err := f(cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", kind, err)
	}
	return acc, nil
}
