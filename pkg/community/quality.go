package community

import (
	"gonum.org/v1/gonum/floats"

	"github.com/dd0wney/cluso-communities/pkg/graph"
	"github.com/dd0wney/cluso-communities/pkg/partition"
)

// recomputeStats derives per-cluster cut and volume directly from the graph
// and partition, with no incremental state. The returned slices are indexed
// by cluster id in node-id space.
func recomputeStats(g *graph.Graph, p *partition.Partition) (cut, volume []float64, totalCut, totalVolume float64) {
	n := g.NumNodes()
	cut = make([]float64, n)
	volume = make([]float64, n)

	for u := uint64(0); u < n; u++ {
		c := p.Subset(u)
		volume[c] += g.WeightedDegree(u)
		g.ForNeighbors(u, func(v uint64, w float64) {
			if p.Subset(v) != c {
				cut[c] += w
			}
		})
	}

	totalCut = floats.Sum(cut)
	totalVolume = floats.Sum(volume)
	return cut, volume, totalCut, totalVolume
}

// mapEquationFromStats scores a partition from precomputed cluster
// statistics plus the per-node volume entropy term. Natural logarithm,
// lower is better.
func mapEquationFromStats(g *graph.Graph, cut, volume []float64, totalCut, totalVolume float64) float64 {
	sumPLogPCut := 0.0
	sumPLogPCutPlusVol := 0.0
	for c := range cut {
		sumPLogPCut += plogpRel(cut[c], totalVolume)
		sumPLogPCutPlusVol += plogpRel(cut[c]+volume[c], totalVolume)
	}

	sumPLogPNodeVol := 0.0
	for u := uint64(0); u < g.NumNodes(); u++ {
		sumPLogPNodeVol += plogpRel(g.WeightedDegree(u), totalVolume)
	}

	return plogpRel(totalCut, totalVolume) - 2*sumPLogPCut + sumPLogPCutPlusVol - sumPLogPNodeVol
}

// MapEquation computes the full map-equation codelength of a partition over
// g. Lower values describe a random walk on the clustering more compactly,
// i.e. a better community structure.
func MapEquation(g *graph.Graph, p *partition.Partition) float64 {
	cut, volume, totalCut, totalVolume := recomputeStats(g, p)
	return mapEquationFromStats(g, cut, volume, totalCut, totalVolume)
}

// Modularity computes Newman's modularity of a partition over g, provided
// for comparison against modularity-based detectors.
func Modularity(g *graph.Graph, p *partition.Partition) float64 {
	m := g.TotalEdgeWeight()
	if m == 0 {
		return 0
	}

	cut, volume, _, _ := recomputeStats(g, p)
	q := 0.0
	for c := range volume {
		if volume[c] == 0 {
			continue
		}
		internal := (volume[c] - cut[c]) / 2
		q += internal/m - (volume[c]/(2*m))*(volume[c]/(2*m))
	}
	return q
}
