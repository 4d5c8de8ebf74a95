package queries

import (
	"github.com/hepframe/hepframe/internal/core/lorentz"
	"github.com/hepframe/hepframe/internal/core/pipeline"
)

// objects is one event's view of a collection of physics objects.
type objects struct {
	pt, eta, phi, mass []float32
	charge             []int32
}

// readObjects reads pt, eta, phi, mass and optionally charge starting at input i.
func readObjects(a pipeline.Args, i int, collection string, withCharge bool) (objects, error) {
	o := objects{
		pt:   pipeline.Arg[[]float32](a, i),
		eta:  pipeline.Arg[[]float32](a, i+1),
		phi:  pipeline.Arg[[]float32](a, i+2),
		mass: pipeline.Arg[[]float32](a, i+3),
	}
	lens := []int{len(o.pt), len(o.eta), len(o.phi), len(o.mass)}
	if withCharge {
		o.charge = pipeline.Arg[[]int32](a, i+4)
		lens = append(lens, len(o.charge))
	}
	return o, aligned(collection, lens...)
}

func (o objects) len() int { return len(o.pt) }

func (o objects) p4(i int) lorentz.PtEtaPhiM {
	return lorentz.PtEtaPhiM{
		Pt:  float64(o.pt[i]),
		Eta: float64(o.eta[i]),
		Phi: float64(o.phi[i]),
		M:   float64(o.mass[i]),
	}
}

// objectInputs declares the pt, eta, phi, mass (and charge) inputs of a collection.
func objectInputs(collection string, withCharge bool) []pipeline.Input {
	in := []pipeline.Input{
		pipeline.In[[]float32](collection + "_pt"),
		pipeline.In[[]float32](collection + "_eta"),
		pipeline.In[[]float32](collection + "_phi"),
		pipeline.In[[]float32](collection + "_mass"),
	}
	if withCharge {
		in = append(in, pipeline.In[[]int32](collection+"_charge"))
	}
	return in
}
