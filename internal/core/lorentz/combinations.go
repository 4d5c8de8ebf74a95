package lorentz

import "math"

// Pairs returns every index pair i < j below n in ascending lexicographic order.
func Pairs(n int) [][2]int {
	if n < 2 {
		return nil
	}
	out := make([][2]int, 0, n*(n-1)/2)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			out = append(out, [2]int{i, j})
		}
	}
	return out
}

// Triples returns every index triple i < j < k below n in ascending
// lexicographic order.
func Triples(n int) [][3]int {
	if n < 3 {
		return nil
	}
	out := make([][3]int, 0, n*(n-1)*(n-2)/6)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			for k := j + 1; k < n; k++ {
				out = append(out, [3]int{i, j, k})
			}
		}
	}
	return out
}

// Cross returns every pair (i, j) with i < n and j < m, i-major.
func Cross(n, m int) [][2]int {
	if n <= 0 || m <= 0 {
		return nil
	}
	out := make([][2]int, 0, n*m)
	for i := 0; i < n; i++ {
		for j := 0; j < m; j++ {
			out = append(out, [2]int{i, j})
		}
	}
	return out
}

// BestMatch returns the index in [0, count) that minimizes objective, or -1
// when count is zero. Ties keep the first index; NaN objectives never win.
func BestMatch(count int, objective func(i int) float64) int {
	best := -1
	bestVal := math.Inf(1)
	for i := 0; i < count; i++ {
		v := objective(i)
		if v < bestVal {
			best, bestVal = i, v
		}
	}
	return best
}

// ArgMax returns the index of the largest value, or -1 for an empty slice.
// Ties keep the first index.
func ArgMax[T ~float32 | ~float64](values []T) int {
	best := -1
	for i, v := range values {
		if best < 0 || v > values[best] {
			best = i
		}
	}
	return best
}
