package queries

import (
	"math"

	"github.com/hepframe/hepframe/internal/core/lorentz"
	"github.com/hepframe/hepframe/internal/core/pipeline"
)

const zMass = 91.2

const (
	flavourMuon int32 = iota
	flavourElectron
)

// leptons concatenates the muons and electrons of one event, muons first.
type leptons struct {
	objects
	flavour []int32
}

func init() {
	register(Query{
		ID:          8,
		Name:        "trilepton-mt",
		Description: "Transverse mass of MET and the leading lepton outside the same-flavour opposite-charge pair closest to the Z mass",
		Columns:     columns([]string{"MET_pt", "MET_phi", "nMuon", "nElectron"}, muonColumns, electronColumns),
		Titles:      []string{"Transverse mass (GeV)"},
		Build: func(root pipeline.Node) []pipeline.Sink {
			three := root.Filter("at least three leptons", func(a pipeline.Args) (bool, error) {
				return pipeline.Arg[uint32](a, 0)+pipeline.Arg[uint32](a, 1) > 2, nil
			}, pipeline.In[uint32]("nElectron"), pipeline.In[uint32]("nMuon"))

			inputs := append(objectInputs("Muon", true), objectInputs("Electron", true)...)
			all := pipeline.Define(three, "Lepton", concatLeptons, inputs...)

			idx := pipeline.Define(all, "AdditionalLepton_idx", func(a pipeline.Args) (int, error) {
				return additionalLepton(pipeline.Arg[leptons](a, 0)), nil
			}, pipeline.In[leptons]("Lepton"))

			valid := idx.Filter("valid lepton pair found", func(a pipeline.Args) (bool, error) {
				return pipeline.Arg[int](a, 0) >= 0, nil
			}, pipeline.In[int]("AdditionalLepton_idx"))

			mt := pipeline.Define(valid, "TransverseMass", func(a pipeline.Args) (float64, error) {
				met := float64(pipeline.Arg[float32](a, 0))
				metPhi := float64(pipeline.Arg[float32](a, 1))
				lep := pipeline.Arg[leptons](a, 2)
				i := pipeline.Arg[int](a, 3)
				return lorentz.TransverseMass(float64(lep.pt[i]), float64(lep.phi[i]), met, metPhi), nil
			}, pipeline.In[float32]("MET_pt"), pipeline.In[float32]("MET_phi"),
				pipeline.In[leptons]("Lepton"), pipeline.In[int]("AdditionalLepton_idx"))

			return []pipeline.Sink{mt.Histo1D("TransverseMass", 100, 0, 200)}
		},
	})
}

func concatLeptons(a pipeline.Args) (leptons, error) {
	mu, err := readObjects(a, 0, "Muon", true)
	if err != nil {
		return leptons{}, err
	}
	el, err := readObjects(a, 5, "Electron", true)
	if err != nil {
		return leptons{}, err
	}

	n := mu.len() + el.len()
	l := leptons{
		objects: objects{
			pt:     make([]float32, 0, n),
			eta:    make([]float32, 0, n),
			phi:    make([]float32, 0, n),
			mass:   make([]float32, 0, n),
			charge: make([]int32, 0, n),
		},
		flavour: make([]int32, 0, n),
	}
	for _, src := range []struct {
		o       objects
		flavour int32
	}{{mu, flavourMuon}, {el, flavourElectron}} {
		l.pt = append(l.pt, src.o.pt...)
		l.eta = append(l.eta, src.o.eta...)
		l.phi = append(l.phi, src.o.phi...)
		l.mass = append(l.mass, src.o.mass...)
		l.charge = append(l.charge, src.o.charge...)
		for range src.o.pt {
			l.flavour = append(l.flavour, src.flavour)
		}
	}
	return l, nil
}

// additionalLepton picks the same-flavour opposite-charge pair with mass
// closest to the Z mass and returns the highest-pT lepton outside it, or -1
// when there is no such pair.
func additionalLepton(l leptons) int {
	var candidates [][2]int
	for _, p := range lorentz.Pairs(l.len()) {
		if l.charge[p[0]] != l.charge[p[1]] && l.flavour[p[0]] == l.flavour[p[1]] {
			candidates = append(candidates, p)
		}
	}
	best := lorentz.BestMatch(len(candidates), func(i int) float64 {
		p := candidates[i]
		return math.Abs(lorentz.InvariantMass(l.p4(p[0]), l.p4(p[1])) - zMass)
	})
	if best < 0 {
		return -1
	}

	pair := candidates[best]
	idx := -1
	maxPt := float32(-999)
	for i, pt := range l.pt {
		if i != pair[0] && i != pair[1] && pt > maxPt {
			maxPt, idx = pt, i
		}
	}
	return idx
}
