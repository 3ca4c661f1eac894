package community

import "sort"

// synchronousPass evaluates every node against the cut/volume snapshot taken
// at pass start. Workers never mutate shared statistics during evaluation;
// accepted moves go to per-worker lists and are applied in one aggregation
// step after all workers finish. Two workers may accept moves for different
// nodes based on now-outdated statistics of the same cluster; such conflicts
// are kept, so one pass can land on a partition no serial execution would
// produce. That is the accepted cost of running without locks. The statistics
// are reconciled against the applied partition during aggregation, so the
// staleness is confined to the decisions and never leaks into the state the
// next pass reads.
func (m *mover) synchronousPass() uint64 {
	m.forChunks(uint64(len(m.nodes)), func(worker int, begin, end uint64) {
		acc := m.scratch[worker]
		local := m.moveLists[worker][:0]
		for i := begin; i < end; i++ {
			m.tryLocalMove(m.nodes[i], acc, &local)
		}
		m.moveLists[worker] = local
	})
	return m.aggregateAndApply(m.moveLists)
}

// aggregateAndApply reduces one pass's move lists into net per-cluster cut
// and volume deltas and applies them to the statistics store in a single
// step with no partial visibility between passes.
//
// The cut deltas recorded on the moves were computed against the pass
// snapshot and go stale the moment a neighbor moves in the same pass, so
// they are ignored here. Instead every edge incident to a moved node is
// re-scored against the pre- and post-pass assignments, which keeps the
// applied statistics exactly consistent with the applied partition. The
// outcome depends only on the multiset of accepted moves: merged moves are
// processed in ascending node-id order (a node appears at most once per
// pass), so the aggregate is reproducible no matter how the work was split
// or in which order the worker lists arrive.
func (m *mover) aggregateAndApply(lists [][]move) uint64 {
	total := 0
	for _, list := range lists {
		total += len(list)
	}
	if total == 0 {
		return 0
	}

	merged := make([]move, 0, total)
	for _, list := range lists {
		merged = append(merged, list...)
	}
	sort.Slice(merged, func(i, j int) bool { return merged[i].node < merged[j].node })

	moved := make(map[uint64]*move, total)
	for i := range merged {
		moved[merged[i].node] = &merged[i]
	}

	for i := range merged {
		mv := &merged[i]
		m.aggVol.Add(mv.origin, -mv.volume)
		m.aggVol.Add(mv.target, mv.volume)

		u := mv.node
		m.g.ForNeighbors(u, func(v uint64, w float64) {
			if other, ok := moved[v]; ok {
				if v < u {
					return // edge already scored from its lower endpoint
				}
				m.scoreEdge(mv.origin, mv.target, other.origin, other.target, w)
				return
			}
			c := m.p.Subset(v)
			m.scoreEdge(mv.origin, mv.target, c, c, w)
		})
	}

	totalCutDelta := 0.0
	m.aggCut.ForEach(func(c uint64, delta float64) {
		totalCutDelta += delta
		m.stats.addCut(c, delta)
	})
	m.aggVol.ForEach(func(c uint64, delta float64) {
		m.stats.addVolume(c, delta)
	})
	m.stats.addTotalCut(totalCutDelta)
	m.aggCut.Reset()
	m.aggVol.Reset()

	for i := range merged {
		m.p.MoveToSubset(merged[i].target, merged[i].node)
	}
	return uint64(total)
}

// scoreEdge accumulates the cut change of one edge whose endpoints sit in
// clusters uOld/vOld before the pass and uNew/vNew after it. An edge
// contributes to the cut of both endpoint clusters exactly when it crosses.
func (m *mover) scoreEdge(uOld, uNew, vOld, vNew uint64, w float64) {
	if uOld != vOld {
		m.aggCut.Add(uOld, -w)
		m.aggCut.Add(vOld, -w)
	}
	if uNew != vNew {
		m.aggCut.Add(uNew, w)
		m.aggCut.Add(vNew, w)
	}
}
