package community

import (
	"fmt"
	"math"
)

// auditTolerance is the relative tolerance for comparing incrementally
// maintained statistics against a from-scratch recomputation. Incremental
// updates accumulate rounding, so exact equality is not expected.
const auditTolerance = 1e-6

// withinRelTolerance compares a and b within auditTolerance, falling back to
// an absolute check near zero
func withinRelTolerance(a, b float64) bool {
	diff := math.Abs(a - b)
	scale := math.Max(math.Abs(a), math.Abs(b))
	if scale < 1 {
		return diff <= auditTolerance
	}
	return diff <= auditTolerance*scale
}

// auditConsistency recomputes cluster cut/volume and the map equation
// directly from the graph and partition and compares them against the
// mover's incrementally maintained statistics. Returns a descriptive error
// on drift beyond tolerance. Runs only when Options.Audit is set; production
// runs never pay for it.
func (m *mover) auditConsistency() error {
	cut, volume, totalCut, totalVolume := recomputeStats(m.g, m.p)

	for c := range cut {
		if !withinRelTolerance(m.stats.Cut(uint64(c)), cut[c]) {
			return fmt.Errorf("cluster %d cut drifted: incremental %g, recomputed %g",
				c, m.stats.Cut(uint64(c)), cut[c])
		}
		if !withinRelTolerance(m.stats.Volume(uint64(c)), volume[c]) {
			return fmt.Errorf("cluster %d volume drifted: incremental %g, recomputed %g",
				c, m.stats.Volume(uint64(c)), volume[c])
		}
	}

	if !withinRelTolerance(m.stats.TotalCut(), totalCut) {
		return fmt.Errorf("total cut drifted: incremental %g, recomputed %g",
			m.stats.TotalCut(), totalCut)
	}
	if !withinRelTolerance(m.stats.TotalVolume(), totalVolume) {
		return fmt.Errorf("total volume drifted: incremental %g, recomputed %g",
			m.stats.TotalVolume(), totalVolume)
	}

	incCut := make([]float64, len(cut))
	incVol := make([]float64, len(volume))
	for c := range incCut {
		incCut[c] = m.stats.Cut(uint64(c))
		incVol[c] = m.stats.Volume(uint64(c))
	}
	fromIncremental := mapEquationFromStats(m.g, incCut, incVol, m.stats.TotalCut(), m.stats.TotalVolume())
	direct := mapEquationFromStats(m.g, cut, volume, totalCut, totalVolume)
	if !withinRelTolerance(fromIncremental, direct) {
		return fmt.Errorf("map equation drifted: incremental %g, recomputed %g", fromIncremental, direct)
	}

	return nil
}
