package queries

import (
	"github.com/hepframe/hepframe/internal/core/lorentz"
	"github.com/hepframe/hepframe/internal/core/pipeline"
)

func init() {
	register(Query{
		ID:          5,
		Name:        "met-dimuon",
		Description: "Missing transverse energy of events with an opposite-charge dimuon of mass in [60, 120] GeV",
		Columns:     columns([]string{"MET_pt", "nMuon"}, muonColumns),
		Titles:      []string{"MET (GeV)"},
		Build: func(root pipeline.Node) []pipeline.Sink {
			twoMuons := root.Filter("at least two muons", func(a pipeline.Args) (bool, error) {
				return pipeline.Arg[uint32](a, 0) >= 2, nil
			}, pipeline.In[uint32]("nMuon"))

			masses := pipeline.Define(twoMuons, "Dimuon_mass", dimuonMasses, objectInputs("Muon", true)...)

			inWindow := masses.Filter("at least one dimuon with mass in [60, 120]", func(a pipeline.Args) (bool, error) {
				for _, m := range pipeline.Arg[[]float64](a, 0) {
					if m > 60 && m < 120 {
						return true, nil
					}
				}
				return false, nil
			}, pipeline.In[[]float64]("Dimuon_mass"))

			return []pipeline.Sink{inWindow.Histo1D("MET_pt", 100, 0, 200)}
		},
	})
}

// dimuonMasses returns the invariant mass of every opposite-charge muon pair.
func dimuonMasses(a pipeline.Args) ([]float64, error) {
	mu, err := readObjects(a, 0, "Muon", true)
	if err != nil {
		return nil, err
	}
	var masses []float64
	for _, p := range lorentz.Pairs(mu.len()) {
		if mu.charge[p[0]] == mu.charge[p[1]] {
			continue
		}
		masses = append(masses, lorentz.InvariantMass(mu.p4(p[0]), mu.p4(p[1])))
	}
	return masses, nil
}
