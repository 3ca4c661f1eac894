package community

// sparseWeights accumulates edge weight per cluster id for one probed node.
// Backed by dense arrays over the cluster id space so lookups are O(1), but
// clearing only touches the keys used since the last reset, which keeps a
// full probe-and-clear cycle proportional to the node's degree.
//
// One instance is owned by exactly one worker and reused across all nodes
// that worker processes; it is never shared.
type sparseWeights struct {
	values  []float64
	present []bool
	used    []uint64
}

func newSparseWeights(n uint64) *sparseWeights {
	return &sparseWeights{
		values:  make([]float64, n),
		present: make([]bool, n),
		used:    make([]uint64, 0, 16),
	}
}

// Add accumulates weight w for cluster c
func (s *sparseWeights) Add(c uint64, w float64) {
	if !s.present[c] {
		s.present[c] = true
		s.used = append(s.used, c)
	}
	s.values[c] += w
}

// Get returns the accumulated weight for cluster c (zero if untouched)
func (s *sparseWeights) Get(c uint64) float64 {
	return s.values[c]
}

// Len returns the number of distinct clusters touched since the last reset
func (s *sparseWeights) Len() int {
	return len(s.used)
}

// ForEach visits every touched cluster in insertion order
func (s *sparseWeights) ForEach(fn func(c uint64, w float64)) {
	for _, c := range s.used {
		fn(c, s.values[c])
	}
}

// Reset clears the accumulator in O(touched clusters)
func (s *sparseWeights) Reset() {
	for _, c := range s.used {
		s.present[c] = false
		s.values[c] = 0
	}
	s.used = s.used[:0]
}
