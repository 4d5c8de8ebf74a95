package queries

import (
	"math"

	"github.com/hepframe/hepframe/internal/core/pipeline"
)

func init() {
	register(Query{
		ID:          1,
		Name:        "met",
		Description: "Missing transverse energy of all events",
		Columns:     []string{"MET_pt"},
		Titles:      []string{"MET (GeV)"},
		Build: func(root pipeline.Node) []pipeline.Sink {
			return []pipeline.Sink{root.Histo1D("MET_pt", 100, 0, 200)}
		},
	})

	register(Query{
		ID:          2,
		Name:        "jet-pt",
		Description: "Transverse momentum of all jets",
		Columns:     []string{"Jet_pt"},
		Titles:      []string{"Jet pT (GeV)"},
		Build: func(root pipeline.Node) []pipeline.Sink {
			return []pipeline.Sink{root.Histo1D("Jet_pt", 100, 15, 60)}
		},
	})

	register(Query{
		ID:          3,
		Name:        "central-jet-pt",
		Description: "Transverse momentum of jets with |eta| < 1",
		Columns:     []string{"Jet_pt", "Jet_eta"},
		Titles:      []string{"Jet pT (GeV)"},
		Build: func(root pipeline.Node) []pipeline.Sink {
			central := pipeline.Define(root, "goodJet_pt", centralJets,
				pipeline.In[[]float32]("Jet_pt"), pipeline.In[[]float32]("Jet_eta"))
			return []pipeline.Sink{central.Histo1D("goodJet_pt", 100, 15, 60)}
		},
	})

	register(Query{
		ID:          4,
		Name:        "met-two-jets",
		Description: "Missing transverse energy of events with at least two jets with pT > 40 GeV",
		Columns:     []string{"MET_pt", "Jet_pt"},
		Titles:      []string{"MET (GeV)"},
		Build: func(root pipeline.Node) []pipeline.Sink {
			selected := root.Filter("more than one jet with pt > 40", func(a pipeline.Args) (bool, error) {
				n := 0
				for _, pt := range pipeline.Arg[[]float32](a, 0) {
					if pt > 40 {
						n++
					}
				}
				return n > 1, nil
			}, pipeline.In[[]float32]("Jet_pt"))
			return []pipeline.Sink{selected.Histo1D("MET_pt", 100, 0, 200)}
		},
	})
}

func centralJets(a pipeline.Args) ([]float32, error) {
	pt := pipeline.Arg[[]float32](a, 0)
	eta := pipeline.Arg[[]float32](a, 1)
	if err := aligned("Jet", len(pt), len(eta)); err != nil {
		return nil, err
	}
	out := make([]float32, 0, len(pt))
	for i := range pt {
		if math.Abs(float64(eta[i])) < 1 {
			out = append(out, pt[i])
		}
	}
	return out, nil
}
