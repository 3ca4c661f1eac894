package community

import (
	"math"
	"math/rand"
	"sync"
	"sync/atomic"

	"github.com/dd0wney/cluso-communities/pkg/graph"
	"github.com/dd0wney/cluso-communities/pkg/parallel"
	"github.com/dd0wney/cluso-communities/pkg/partition"
)

// fitnessEpsilon guards move acceptance: a candidate target must beat the
// stay-put baseline by more than this, or floating-point noise makes nodes
// oscillate between equally good clusters and passes never go quiescent.
const fitnessEpsilon = 1e-12

// mover drives local-moving passes for one hierarchy level. It owns the
// level's partition, statistics, per-cluster locks and per-worker scratch.
type mover struct {
	g     *graph.Graph
	p     *partition.Partition
	stats *clusterStats

	strategy parallelizationType
	pool     *parallel.WorkerPool
	rng      *rand.Rand

	// relaxmap: one lock per cluster
	locks []sync.Mutex

	// per-worker reusable state
	scratch   []*sparseWeights
	moveLists [][]move

	// deferred aggregation scratch, single-threaded use only
	aggCut *sparseWeights
	aggVol *sparseWeights

	nodes []uint64 // visitation order, reshuffled every pass
}

// newMover sets up level state with every node in its own singleton cluster
func newMover(g *graph.Graph, strategy parallelizationType, pool *parallel.WorkerPool, rng *rand.Rand) *mover {
	n := g.NumNodes()

	workers := 1
	if pool != nil {
		workers = pool.Workers()
	}

	m := &mover{
		g:        g,
		p:        partition.New(n),
		stats:    newClusterStats(g),
		strategy: strategy,
		pool:     pool,
		rng:      rng,
		scratch:  make([]*sparseWeights, workers),
		nodes:    make([]uint64, n),
	}
	for i := range m.scratch {
		m.scratch[i] = newSparseWeights(n)
	}
	for u := uint64(0); u < n; u++ {
		m.nodes[u] = u
	}

	switch strategy {
	case parallelizationRelaxMap:
		m.locks = make([]sync.Mutex, n)
	case parallelizationSynchronous:
		m.moveLists = make([][]move, workers)
		m.aggCut = newSparseWeights(n)
		m.aggVol = newSparseWeights(n)
	}
	return m
}

// pass runs one local-moving pass over all nodes and returns the number of
// applied moves. Zero means the pass was quiescent.
func (m *mover) pass() uint64 {
	m.rng.Shuffle(len(m.nodes), func(i, j int) {
		m.nodes[i], m.nodes[j] = m.nodes[j], m.nodes[i]
	})

	switch m.strategy {
	case parallelizationRelaxMap:
		return m.relaxMapPass()
	case parallelizationSynchronous:
		return m.synchronousPass()
	default:
		return m.sequentialPass()
	}
}

// forChunks dispatches fn over disjoint chunks of [0, n) on the pool. A
// mover built without a pool walks the whole range as one serial chunk, so
// the parallel strategies keep their semantics in single-threaded use.
func (m *mover) forChunks(n uint64, fn func(worker int, begin, end uint64)) {
	if m.pool == nil {
		if n > 0 {
			fn(0, 0, n)
		}
		return
	}
	m.pool.ForChunks(n, fn)
}

// sequentialPass applies each improving move immediately. Single writer,
// fully determined by the visitation order.
func (m *mover) sequentialPass() uint64 {
	moved := uint64(0)
	acc := m.scratch[0]
	for _, u := range m.nodes {
		if m.tryLocalMove(u, acc, nil) {
			moved++
		}
	}
	return moved
}

// relaxMapPass processes disjoint contiguous chunks of the shuffled order in
// parallel. Fitness is evaluated against unsynchronized, possibly stale
// statistics; only the applied update is made atomic by the per-cluster
// locks. Stale decisions are bounded collateral of the throughput gain.
func (m *mover) relaxMapPass() uint64 {
	var moved atomic.Uint64
	m.forChunks(uint64(len(m.nodes)), func(worker int, begin, end uint64) {
		acc := m.scratch[worker]
		local := uint64(0)
		for i := begin; i < end; i++ {
			if m.tryLocalMove(m.nodes[i], acc, nil) {
				local++
			}
		}
		moved.Add(local)
	})
	return moved.Load()
}

// tryLocalMove probes node u's neighborhood, evaluates staying versus every
// touched neighboring cluster and commits the strictly best improving move.
// Ties between equal targets break toward the lowest cluster id. For the
// deferred strategy the accepted move is appended to *deferred instead of
// being applied.
func (m *mover) tryLocalMove(u uint64, acc *sparseWeights, deferred *[]move) bool {
	current := m.p.Subset(u)
	loop := m.g.SelfLoopWeight(u)
	degree := m.g.WeightedDegree(u)

	weightToCurrent := 0.0
	m.g.ForNeighbors(u, func(v uint64, w float64) {
		c := m.p.Subset(v)
		if c == current {
			weightToCurrent += w
		} else {
			acc.Add(c, w)
		}
	})

	if acc.Len() == 0 {
		// Isolated node or all neighbors already share u's cluster
		return false
	}

	totalCut := m.stats.TotalCut()

	// The stay baseline is not zero: the evaluator drops target-constant
	// terms, so it is meaningful only relative to candidate targets.
	stay := m.fitnessChange(degree, loop, current, current, weightToCurrent, weightToCurrent, totalCut)

	best := stay
	bestTarget := current
	bestWeight := weightToCurrent
	acc.ForEach(func(c uint64, w float64) {
		change := m.fitnessChange(degree, loop, current, c, w, weightToCurrent, totalCut)
		if change < best || (change == best && c < bestTarget && bestTarget != current) {
			best = change
			bestTarget = c
			bestWeight = w
		}
	})
	acc.Reset()

	if bestTarget == current || !(best < stay-fitnessEpsilon) {
		return false
	}
	return m.performMove(u, degree, loop, current, bestTarget, bestWeight, weightToCurrent, deferred)
}

// performMove commits an accepted move under the active strategy's
// discipline
func (m *mover) performMove(u uint64, degree, loop float64, current, target uint64,
	weightToTarget, weightToCurrent float64, deferred *[]move) bool {

	mv := move{
		node:           u,
		volume:         degree,
		origin:         current,
		target:         target,
		cutDeltaOrigin: 2*weightToCurrent - degree + 2*loop,
		cutDeltaTarget: degree - 2*weightToTarget - 2*loop,
	}

	switch m.strategy {
	case parallelizationSynchronous:
		*deferred = append(*deferred, mv)
		return true

	case parallelizationRelaxMap:
		// Always lock the lower cluster id first. Two workers contending
		// for the same cluster pair in opposite roles then acquire in the
		// same order, which rules out deadlock.
		first, second := current, target
		if first > second {
			first, second = second, first
		}
		m.locks[first].Lock()
		m.locks[second].Lock()
		applied := m.p.Subset(u) == current
		if applied {
			m.stats.applyMove(&mv)
			m.p.MoveToSubset(target, u)
		}
		m.locks[second].Unlock()
		m.locks[first].Unlock()
		return applied

	default:
		m.stats.applyMove(&mv)
		m.p.MoveToSubset(target, u)
		return true
	}
}

// fitnessChange returns a value proportional to the map-equation codelength
// change if a node of the given volume moved from cluster current to cluster
// target, evaluated against the supplied totalCut snapshot. Terms constant
// across all candidate targets are dropped, so only differences between
// returned values are meaningful. Lower is better.
func (m *mover) fitnessChange(degree, loop float64, current, target uint64,
	weightToTarget, weightToCurrent, totalCut float64) float64 {

	cutTarget := m.stats.Cut(target)
	volTarget := m.stats.Volume(target)
	cutDeltaCurrent := 2*weightToCurrent - degree + 2*loop

	var totalCutNew, targetCutNew, targetCutOld, targetCutPlusVolNew, targetCutPlusVolOld float64
	if current != target {
		cutDeltaTarget := degree - 2*weightToTarget - 2*loop
		totalCutNew = totalCut + cutDeltaCurrent + cutDeltaTarget
		targetCutNew = cutTarget + cutDeltaTarget
		targetCutOld = cutTarget
		targetCutPlusVolNew = cutTarget + cutDeltaTarget + volTarget + degree
		targetCutPlusVolOld = cutTarget + volTarget
	} else {
		// Baseline: compare the cluster with the node against the cluster
		// as if the node had been lifted out, mirroring the target case.
		totalCutNew = totalCut
		targetCutNew = cutTarget
		targetCutOld = cutTarget + cutDeltaCurrent
		targetCutPlusVolNew = cutTarget + volTarget
		targetCutPlusVolOld = cutTarget + cutDeltaCurrent + volTarget - degree
	}

	totalVolume := m.stats.TotalVolume()
	return plogpRel(totalCutNew, totalVolume) +
		(plogpRel(targetCutPlusVolNew, totalVolume) - plogpRel(targetCutPlusVolOld, totalVolume)) -
		2*(plogpRel(targetCutNew, totalVolume)-plogpRel(targetCutOld, totalVolume))
}

// plogpRel computes (w/total)*log(w/total) with the 0*log(0) = 0 convention.
// Zero-volume or zero-cut clusters therefore contribute nothing instead of
// producing NaN.
func plogpRel(w, total float64) float64 {
	if w <= 0 || total <= 0 {
		return 0
	}
	p := w / total
	return p * math.Log(p)
}
