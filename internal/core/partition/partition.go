package partition

// Range is a half-open row range [Begin, End).
type Range struct {
	Begin int
	End   int
}

// Len returns the number of rows in the range.
func (r Range) Len() int {
	return r.End - r.Begin
}

// Split divides [0, n) into at most k contiguous, disjoint ranges that cover
// every row exactly once. Sizes differ by at most one row; the first n%k
// ranges carry the extra row. When n < k only n single-row ranges are
// returned, and n == 0 yields none.
func Split(n, k int) []Range {
	if n <= 0 {
		return nil
	}
	if k <= 0 {
		k = 1
	}
	if k > n {
		k = n
	}

	base, extra := n/k, n%k
	ranges := make([]Range, 0, k)
	begin := 0
	for i := 0; i < k; i++ {
		size := base
		if i < extra {
			size++
		}
		ranges = append(ranges, Range{Begin: begin, End: begin + size})
		begin += size
	}
	return ranges
}
