package queries

import (
	"github.com/hepframe/hepframe/internal/core/lorentz"
	"github.com/hepframe/hepframe/internal/core/pipeline"
)

const (
	isolationPtMin = 10
	isolationDR    = 0.4
	goodJetPtMin   = 30
)

func init() {
	register(Query{
		ID:          7,
		Name:        "isolated-jet-sum-pt",
		Description: "Scalar sum of the pT of jets with pT > 30 GeV isolated from leptons with pT > 10 GeV",
		Columns: columns([]string{"nJet", "Jet_pt", "Jet_eta", "Jet_phi"},
			[]string{"Muon_pt", "Muon_eta", "Muon_phi", "Electron_pt", "Electron_eta", "Electron_phi"}),
		Titles: []string{"Jet pT sum (GeV)"},
		Build: func(root pipeline.Node) []pipeline.Sink {
			withJets := root.Filter("at least one jet", func(a pipeline.Args) (bool, error) {
				return pipeline.Arg[uint32](a, 0) > 0, nil
			}, pipeline.In[uint32]("nJet"))

			antiMuon := pipeline.Define(withJets, "goodJet_antiMuon", isolatedFrom("Muon"), isolationInputs("Muon")...)
			antiElectron := pipeline.Define(antiMuon, "goodJet_antiElectron", isolatedFrom("Electron"), isolationInputs("Electron")...)

			good := pipeline.Define(antiElectron, "goodJet", func(a pipeline.Args) ([]bool, error) {
				pt := pipeline.Arg[[]float32](a, 0)
				muon := pipeline.Arg[[]bool](a, 1)
				electron := pipeline.Arg[[]bool](a, 2)
				if err := aligned("goodJet", len(pt), len(muon), len(electron)); err != nil {
					return nil, err
				}
				mask := make([]bool, len(pt))
				for i := range pt {
					mask[i] = pt[i] > goodJetPtMin && muon[i] && electron[i]
				}
				return mask, nil
			}, pipeline.In[[]float32]("Jet_pt"), pipeline.In[[]bool]("goodJet_antiMuon"), pipeline.In[[]bool]("goodJet_antiElectron"))

			anyGood := good.Filter("at least one good jet", func(a pipeline.Args) (bool, error) {
				for _, ok := range pipeline.Arg[[]bool](a, 0) {
					if ok {
						return true, nil
					}
				}
				return false, nil
			}, pipeline.In[[]bool]("goodJet"))

			sumPt := pipeline.Define(anyGood, "goodJet_sumPt", func(a pipeline.Args) (float64, error) {
				pt := pipeline.Arg[[]float32](a, 0)
				mask := pipeline.Arg[[]bool](a, 1)
				var sum float32
				for i, ok := range mask {
					if ok {
						sum += pt[i]
					}
				}
				return float64(sum), nil
			}, pipeline.In[[]float32]("Jet_pt"), pipeline.In[[]bool]("goodJet"))

			return []pipeline.Sink{sumPt.Histo1D("goodJet_sumPt", 100, 15, 200)}
		},
	})
}

func isolationInputs(collection string) []pipeline.Input {
	return []pipeline.Input{
		pipeline.In[[]float32]("Jet_eta"),
		pipeline.In[[]float32]("Jet_phi"),
		pipeline.In[[]float32](collection + "_pt"),
		pipeline.In[[]float32](collection + "_eta"),
		pipeline.In[[]float32](collection + "_phi"),
	}
}

// isolatedFrom flags the jets with no collection object above the pT
// threshold within the isolation cone.
func isolatedFrom(collection string) func(pipeline.Args) ([]bool, error) {
	return func(a pipeline.Args) ([]bool, error) {
		eta1 := pipeline.Arg[[]float32](a, 0)
		phi1 := pipeline.Arg[[]float32](a, 1)
		pt2 := pipeline.Arg[[]float32](a, 2)
		eta2 := pipeline.Arg[[]float32](a, 3)
		phi2 := pipeline.Arg[[]float32](a, 4)
		if err := aligned("Jet", len(eta1), len(phi1)); err != nil {
			return nil, err
		}
		if err := aligned(collection, len(pt2), len(eta2), len(phi2)); err != nil {
			return nil, err
		}
		return lorentz.IsolationMask(eta1, phi1, pt2, eta2, phi2, isolationPtMin, isolationDR), nil
	}
}
