package queries

import (
	"fmt"
	"math"

	"github.com/hepframe/hepframe/internal/core/lorentz"
	"github.com/hepframe/hepframe/internal/core/pipeline"
)

const topMass = 172.5

func init() {
	register(Query{
		ID:          6,
		Name:        "trijet",
		Description: "pT and leading b-tag of the trijet with mass closest to 172.5 GeV in events with at least three jets",
		Columns:     columns([]string{"nJet", "Jet_btag"}, jetColumns),
		Titles:      []string{"Trijet pT (GeV)", "Trijet leading b-tag"},
		Build: func(root pipeline.Node) []pipeline.Sink {
			threeJets := root.Filter("at least three jets", func(a pipeline.Args) (bool, error) {
				return pipeline.Arg[uint32](a, 0) >= 3, nil
			}, pipeline.In[uint32]("nJet"))

			trijet := pipeline.Define(threeJets, "Trijet_idx", closestTrijet, objectInputs("Jet", false)...)

			ptInputs := append(objectInputs("Jet", false), pipeline.In[[3]int]("Trijet_idx"))
			pt := pipeline.Define(trijet, "Trijet_pt", func(a pipeline.Args) (float64, error) {
				jets, err := readObjects(a, 0, "Jet", false)
				if err != nil {
					return 0, err
				}
				idx := pipeline.Arg[[3]int](a, 4)
				return lorentz.Sum(jets.p4(idx[0]), jets.p4(idx[1]), jets.p4(idx[2])).Pt(), nil
			}, ptInputs...)

			btag := pipeline.Define(trijet, "Trijet_leadingBtag", func(a pipeline.Args) (float32, error) {
				tags := pipeline.Arg[[]float32](a, 0)
				idx := pipeline.Arg[[3]int](a, 1)
				best := float32(math.Inf(-1))
				for _, i := range idx {
					if i >= len(tags) {
						return 0, fmt.Errorf("trijet index %d out of range for %d b-tags", i, len(tags))
					}
					best = max(best, tags[i])
				}
				return best, nil
			}, pipeline.In[[]float32]("Jet_btag"), pipeline.In[[3]int]("Trijet_idx"))

			return []pipeline.Sink{
				pt.Histo1D("Trijet_pt", 100, 15, 40),
				btag.Histo1D("Trijet_leadingBtag", 100, 0, 1),
			}
		},
	})
}

// closestTrijet returns the indices of the jet triple whose invariant mass is
// closest to the top mass. The first triple wins ties.
func closestTrijet(a pipeline.Args) ([3]int, error) {
	jets, err := readObjects(a, 0, "Jet", false)
	if err != nil {
		return [3]int{}, err
	}
	if jets.len() < 3 {
		return [3]int{}, fmt.Errorf("need three jets, have %d", jets.len())
	}

	p4 := make([]lorentz.P4, jets.len())
	for i := range p4 {
		p4[i] = jets.p4(i).Cartesian()
	}
	triples := lorentz.Triples(jets.len())
	best := lorentz.BestMatch(len(triples), func(i int) float64 {
		t := triples[i]
		return math.Abs(p4[t[0]].Add(p4[t[1]]).Add(p4[t[2]]).M() - topMass)
	})
	if best < 0 {
		best = 0
	}
	return triples[best], nil
}
