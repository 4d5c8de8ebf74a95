package lorentz

// Float is the element type of kinematic columns.
type Float interface {
	~float32 | ~float64
}

// IsolationMask reports, for each primary object, whether no secondary object
// with pt above ptMin lies within drMax of it. Events without qualifying
// secondaries leave every primary isolated.
func IsolationMask[T Float](eta1, phi1 []T, pt2, eta2, phi2 []T, ptMin, drMax float64) []bool {
	mask := make([]bool, len(eta1))
	for i := range mask {
		mask[i] = true
	}
	for j := range pt2 {
		if float64(pt2[j]) <= ptMin {
			continue
		}
		for i := range mask {
			if !mask[i] {
				continue
			}
			if DeltaR(float64(eta1[i]), float64(phi1[i]), float64(eta2[j]), float64(phi2[j])) < drMax {
				mask[i] = false
			}
		}
	}
	return mask
}
