// Package queries holds the ADL benchmark queries expressed as pipelines.
package queries

import (
	"errors"
	"fmt"
	"sort"

	"github.com/hepframe/hepframe/internal/core/pipeline"
)

var ErrUnknownQuery = errors.New("unknown query")

// Query is one benchmark query. Build attaches its nodes below root and
// returns the sinks whose integrals make up the query result, in the order of
// Titles.
type Query struct {
	ID          int
	Name        string
	Description string
	// Columns lists the stored columns the query reads.
	Columns []string
	// Titles holds the x-axis title of each histogram.
	Titles []string
	Build  func(root pipeline.Node) []pipeline.Sink
}

var catalog = map[int]Query{}

func register(q Query) {
	if _, dup := catalog[q.ID]; dup {
		panic(fmt.Sprintf("query %d registered twice", q.ID))
	}
	catalog[q.ID] = q
}

// Get returns the query with the given id.
func Get(id int) (Query, error) {
	q, ok := catalog[id]
	if !ok {
		return Query{}, fmt.Errorf("%w: %d (valid: %v)", ErrUnknownQuery, id, IDs())
	}
	return q, nil
}

// All returns every registered query ordered by id.
func All() []Query {
	out := make([]Query, 0, len(catalog))
	for _, q := range catalog {
		out = append(out, q)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// IDs returns the registered query ids in ascending order.
func IDs() []int {
	ids := make([]int, 0, len(catalog))
	for id := range catalog {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

var (
	jetColumns      = []string{"Jet_pt", "Jet_eta", "Jet_phi", "Jet_mass"}
	muonColumns     = []string{"Muon_pt", "Muon_eta", "Muon_phi", "Muon_mass", "Muon_charge"}
	electronColumns = []string{"Electron_pt", "Electron_eta", "Electron_phi", "Electron_mass", "Electron_charge"}
)

func columns(groups ...[]string) []string {
	var out []string
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

// aligned fails when the per-object arrays of one collection differ in length.
func aligned(collection string, lens ...int) error {
	for _, n := range lens[1:] {
		if n != lens[0] {
			return fmt.Errorf("%s arrays have different lengths %v", collection, lens)
		}
	}
	return nil
}
