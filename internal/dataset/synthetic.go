package dataset

import (
	"math"
	"math/rand/v2"

	"github.com/hepframe/hepframe/internal/core/column"
)

const muonMass = 0.10566

// collection is one NanoAOD-style object collection with its n<Name> counter.
type collection struct {
	count  []uint32
	pt     [][]float32
	eta    [][]float32
	phi    [][]float32
	mass   [][]float32
	charge [][]int32
	btag   [][]float32
}

func (c *collection) add(pt, eta, phi, mass float64, charge int32, btag float64) {
	i := len(c.count) - 1
	c.count[i]++
	c.pt[i] = append(c.pt[i], float32(pt))
	c.eta[i] = append(c.eta[i], float32(eta))
	c.phi[i] = append(c.phi[i], float32(phi))
	c.mass[i] = append(c.mass[i], float32(mass))
	c.charge[i] = append(c.charge[i], charge)
	c.btag[i] = append(c.btag[i], float32(btag))
}

func (c *collection) next() {
	c.count = append(c.count, 0)
	c.pt = append(c.pt, nil)
	c.eta = append(c.eta, nil)
	c.phi = append(c.phi, nil)
	c.mass = append(c.mass, nil)
	c.charge = append(c.charge, nil)
	c.btag = append(c.btag, nil)
}

// Generate returns n synthetic events with the NanoAOD columns the benchmark
// queries read: MET, jets, muons and electrons. A tenth of the events carry a
// Z-like opposite-charge muon pair. The output depends only on n and seed.
func Generate(n int, seed uint64) (*column.Store, error) {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))

	metPt := make([]float32, n)
	metPhi := make([]float32, n)
	var jets, muons, electrons collection

	for i := 0; i < n; i++ {
		metPt[i] = float32(rng.ExpFloat64() * 25)
		metPhi[i] = float32(uniform(rng, -math.Pi, math.Pi))

		jets.next()
		for j := rng.IntN(8); j > 0; j-- {
			jets.add(15+rng.ExpFloat64()*25, uniform(rng, -3, 3), uniform(rng, -math.Pi, math.Pi),
				2+rng.Float64()*10, 0, rng.Float64())
		}

		muons.next()
		if rng.IntN(10) == 0 {
			// back to back at central eta, invariant mass close to 2*pt
			pt := 44 + rng.Float64()*4
			phi := uniform(rng, -math.Pi, 0)
			muons.add(pt, 0, phi, muonMass, 1, 0)
			muons.add(pt, 0, phi+math.Pi, muonMass, -1, 0)
		}
		for j := rng.IntN(3); j > 0; j-- {
			muons.add(5+rng.ExpFloat64()*15, uniform(rng, -2.4, 2.4), uniform(rng, -math.Pi, math.Pi),
				muonMass, charge(rng), 0)
		}

		electrons.next()
		for j := rng.IntN(3); j > 0; j-- {
			electrons.add(5+rng.ExpFloat64()*15, uniform(rng, -2.5, 2.5), uniform(rng, -math.Pi, math.Pi),
				0.000511, charge(rng), 0)
		}
	}

	return column.NewStore(
		column.NewScalar("MET_pt", metPt),
		column.NewScalar("MET_phi", metPhi),
		column.NewScalar("nJet", jets.count),
		column.NewList("Jet_pt", jets.pt),
		column.NewList("Jet_eta", jets.eta),
		column.NewList("Jet_phi", jets.phi),
		column.NewList("Jet_mass", jets.mass),
		column.NewList("Jet_btag", jets.btag),
		column.NewScalar("nMuon", muons.count),
		column.NewList("Muon_pt", muons.pt),
		column.NewList("Muon_eta", muons.eta),
		column.NewList("Muon_phi", muons.phi),
		column.NewList("Muon_mass", muons.mass),
		column.NewList("Muon_charge", muons.charge),
		column.NewScalar("nElectron", electrons.count),
		column.NewList("Electron_pt", electrons.pt),
		column.NewList("Electron_eta", electrons.eta),
		column.NewList("Electron_phi", electrons.phi),
		column.NewList("Electron_mass", electrons.mass),
		column.NewList("Electron_charge", electrons.charge),
	)
}

func uniform(rng *rand.Rand, low, high float64) float64 {
	return low + rng.Float64()*(high-low)
}

func charge(rng *rand.Rand) int32 {
	if rng.IntN(2) == 0 {
		return -1
	}
	return 1
}
