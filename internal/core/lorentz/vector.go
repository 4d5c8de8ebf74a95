// Package lorentz holds the four-vector kinematics and combinatorics shared by
// the benchmark queries.
package lorentz

import "math"

// PtEtaPhiM is a four-momentum in collider coordinates.
type PtEtaPhiM struct {
	Pt  float64
	Eta float64
	Phi float64
	M   float64
}

// P4 is a four-momentum in Cartesian coordinates.
type P4 struct {
	Px float64
	Py float64
	Pz float64
	E  float64
}

// Cartesian converts v to (px, py, pz, E).
func (v PtEtaPhiM) Cartesian() P4 {
	px := v.Pt * math.Cos(v.Phi)
	py := v.Pt * math.Sin(v.Phi)
	pz := v.Pt * math.Sinh(v.Eta)
	return P4{
		Px: px,
		Py: py,
		Pz: pz,
		E:  math.Sqrt(px*px + py*py + pz*pz + v.M*v.M),
	}
}

// Add returns the component-wise sum.
func (p P4) Add(o P4) P4 {
	return P4{Px: p.Px + o.Px, Py: p.Py + o.Py, Pz: p.Pz + o.Pz, E: p.E + o.E}
}

// Pt returns the transverse momentum.
func (p P4) Pt() float64 {
	return math.Hypot(p.Px, p.Py)
}

// M returns the invariant mass. Space-like vectors, which only arise from
// rounding, return -sqrt(-m²).
func (p P4) M() float64 {
	m2 := p.E*p.E - p.Px*p.Px - p.Py*p.Py - p.Pz*p.Pz
	if m2 < 0 {
		return -math.Sqrt(-m2)
	}
	return math.Sqrt(m2)
}

// Sum adds the Cartesian forms of vs.
func Sum(vs ...PtEtaPhiM) P4 {
	var total P4
	for _, v := range vs {
		total = total.Add(v.Cartesian())
	}
	return total
}

// InvariantMass returns the mass of the combined system.
func InvariantMass(vs ...PtEtaPhiM) float64 {
	return Sum(vs...).M()
}

// DeltaPhi returns a-b wrapped into [-π, π].
func DeltaPhi(a, b float64) float64 {
	d := math.Mod(a-b, 2*math.Pi)
	switch {
	case d > math.Pi:
		d -= 2 * math.Pi
	case d < -math.Pi:
		d += 2 * math.Pi
	}
	return d
}

// DeltaR returns the angular distance sqrt(Δη² + Δφ²).
func DeltaR(eta1, phi1, eta2, phi2 float64) float64 {
	return math.Hypot(eta1-eta2, DeltaPhi(phi1, phi2))
}

// TransverseMass returns sqrt(2·pt1·pt2·(1 - cos Δφ)).
func TransverseMass(pt1, phi1, pt2, phi2 float64) float64 {
	return math.Sqrt(2 * pt1 * pt2 * (1 - math.Cos(DeltaPhi(phi1, phi2))))
}
