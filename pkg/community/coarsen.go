package community

import (
	"fmt"

	"github.com/dd0wney/cluso-communities/pkg/graph"
	"github.com/dd0wney/cluso-communities/pkg/partition"
)

// coarsen collapses a clustered graph into a coarser one whose nodes are the
// distinct clusters of p. The weight between two coarse nodes is the summed
// weight of the fine edges crossing between the clusters; a coarse node's
// self-loop carries the weight of the edges fully inside its cluster plus
// the original self-loops. Returns the coarse graph, the fine-to-coarse node
// mapping and the coarse node count.
func coarsen(g *graph.Graph, p *partition.Partition) (*graph.Graph, []uint64, uint64, error) {
	n := g.NumNodes()

	// Dense coarse ids in order of first appearance, so coarsening is
	// deterministic for a fixed partition.
	fineToCoarse := make([]uint64, n)
	remap := make(map[uint64]uint64, 64)
	next := uint64(0)
	for u := uint64(0); u < n; u++ {
		c := p.Subset(u)
		id, ok := remap[c]
		if !ok {
			id = next
			remap[c] = id
			next++
		}
		fineToCoarse[u] = id
	}

	// Crossing weights accumulate in a map, but edges are inserted in
	// first-touch order so repeated runs build identical coarse graphs.
	coarse := graph.New(next)
	selfLoops := make([]float64, next)
	crossing := make(map[[2]uint64]float64)
	order := make([][2]uint64, 0, 64)

	for u := uint64(0); u < n; u++ {
		cu := fineToCoarse[u]
		selfLoops[cu] += g.SelfLoopWeight(u)
		g.ForNeighbors(u, func(v uint64, w float64) {
			if v < u {
				return // visit each undirected edge once
			}
			cv := fineToCoarse[v]
			if cu == cv {
				selfLoops[cu] += w
				return
			}
			key := [2]uint64{cu, cv}
			if key[0] > key[1] {
				key[0], key[1] = key[1], key[0]
			}
			if _, seen := crossing[key]; !seen {
				order = append(order, key)
			}
			crossing[key] += w
		})
	}

	for c, w := range selfLoops {
		if w > 0 {
			if err := coarse.AddEdge(uint64(c), uint64(c), w); err != nil {
				return nil, nil, 0, fmt.Errorf("coarsening self-loop: %w", err)
			}
		}
	}
	for _, key := range order {
		if err := coarse.AddEdge(key[0], key[1], crossing[key]); err != nil {
			return nil, nil, 0, fmt.Errorf("coarsening edge: %w", err)
		}
	}

	return coarse, fineToCoarse, next, nil
}
