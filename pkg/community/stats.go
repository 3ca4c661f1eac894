package community

import (
	"math"
	"sync/atomic"

	"github.com/dd0wney/cluso-communities/pkg/graph"
)

// atomicFloat64 is a float64 with atomic load/store/add via its bit pattern.
// Used for the cluster statistics so that parallel strategies can read
// possibly-stale values without tripping the race detector; staleness is an
// accepted property of the optimistic strategies, torn reads are not.
type atomicFloat64 struct {
	bits uint64
}

func (f *atomicFloat64) Load() float64 {
	return math.Float64frombits(atomic.LoadUint64(&f.bits))
}

func (f *atomicFloat64) Store(v float64) {
	atomic.StoreUint64(&f.bits, math.Float64bits(v))
}

func (f *atomicFloat64) Add(delta float64) {
	for {
		old := atomic.LoadUint64(&f.bits)
		next := math.Float64bits(math.Float64frombits(old) + delta)
		if atomic.CompareAndSwapUint64(&f.bits, old, next) {
			return
		}
	}
}

// move is a candidate relocation of one node between two clusters, carrying
// the node's volume and the cut deltas its application would produce against
// the statistics it was evaluated on. Created during evaluation, consumed
// immediately by the eager strategies or batched for deferred aggregation
// (which re-derives the cut deltas from the final assignments, since the
// recorded ones go stale when neighbors move in the same pass); never
// persisted.
type move struct {
	node           uint64
	volume         float64
	origin, target uint64
	cutDeltaOrigin float64
	cutDeltaTarget float64
}

// clusterStats holds per-cluster cut and volume plus graph-wide totals.
// Cluster ids index into the node id space of the current level's graph.
//
// Invariant: after any sequence of applied moves, Volume(c) equals the sum of
// volumes of the nodes currently assigned to c, and Cut(c) the total edge
// weight leaving c, up to floating-point rounding.
type clusterStats struct {
	cut    []atomicFloat64
	volume []atomicFloat64

	totalCut atomicFloat64
	// totalVolume is a graph constant (sum of all node volumes) and never
	// changes during a run.
	totalVolume float64
}

// newClusterStats initializes statistics for the singleton partition of g in
// one linear pass: every node is its own cluster, so its cut is its weighted
// degree minus loops and its volume is its weighted degree with loops twice.
func newClusterStats(g *graph.Graph) *clusterStats {
	n := g.NumNodes()
	s := &clusterStats{
		cut:    make([]atomicFloat64, n),
		volume: make([]atomicFloat64, n),
	}

	totalCut, totalVolume := 0.0, 0.0
	for u := uint64(0); u < n; u++ {
		volume := g.WeightedDegree(u)
		cut := volume - 2*g.SelfLoopWeight(u)
		s.cut[u].Store(cut)
		s.volume[u].Store(volume)
		totalCut += cut
		totalVolume += volume
	}
	s.totalCut.Store(totalCut)
	s.totalVolume = totalVolume
	return s
}

func (s *clusterStats) Cut(c uint64) float64    { return s.cut[c].Load() }
func (s *clusterStats) Volume(c uint64) float64 { return s.volume[c].Load() }
func (s *clusterStats) TotalCut() float64       { return s.totalCut.Load() }
func (s *clusterStats) TotalVolume() float64    { return s.totalVolume }

// applyMove updates origin and target cluster statistics by the move's
// deltas and transfers the node's volume. The caller is responsible for any
// synchronization the active strategy requires.
func (s *clusterStats) applyMove(m *move) {
	s.cut[m.origin].Add(m.cutDeltaOrigin)
	s.cut[m.target].Add(m.cutDeltaTarget)
	s.volume[m.origin].Add(-m.volume)
	s.volume[m.target].Add(m.volume)
	s.totalCut.Add(m.cutDeltaOrigin + m.cutDeltaTarget)
}

// addCut and addVolume apply pre-aggregated deltas (deferred strategy)
func (s *clusterStats) addCut(c uint64, delta float64)    { s.cut[c].Add(delta) }
func (s *clusterStats) addVolume(c uint64, delta float64) { s.volume[c].Add(delta) }
func (s *clusterStats) addTotalCut(delta float64)         { s.totalCut.Add(delta) }
