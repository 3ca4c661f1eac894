package community

import (
	"testing"

	"github.com/dd0wney/cluso-communities/pkg/graph"
)

type testEdge struct {
	u, v uint64
	w    float64
}

// buildGraph constructs a graph for tests, failing on invalid edges
func buildGraph(t *testing.T, n uint64, edges []testEdge) *graph.Graph {
	t.Helper()
	g := graph.New(n)
	for _, e := range edges {
		if err := g.AddEdge(e.u, e.v, e.w); err != nil {
			t.Fatalf("AddEdge(%d, %d, %f) failed: %v", e.u, e.v, e.w, err)
		}
	}
	return g
}

// addClique adds unit-weight edges between every pair of the given nodes
func addClique(t *testing.T, g *graph.Graph, nodes []uint64) {
	t.Helper()
	for i := 0; i < len(nodes); i++ {
		for j := i + 1; j < len(nodes); j++ {
			if err := g.AddEdge(nodes[i], nodes[j], 1.0); err != nil {
				t.Fatalf("AddEdge(%d, %d) failed: %v", nodes[i], nodes[j], err)
			}
		}
	}
}

// nodeRange returns the ids [from, to)
func nodeRange(from, to uint64) []uint64 {
	ids := make([]uint64, 0, to-from)
	for u := from; u < to; u++ {
		ids = append(ids, u)
	}
	return ids
}

// sameCluster checks that all given nodes share one cluster in the detector's
// result and that no other node is in it
func sameCluster(t *testing.T, det *LouvainMapEquation, members []uint64) {
	t.Helper()
	p := det.Partition()
	c := p.Subset(members[0])
	inCluster := make(map[uint64]bool, len(members))
	for _, u := range members {
		if p.Subset(u) != c {
			t.Errorf("node %d in cluster %d, want %d", u, p.Subset(u), c)
		}
		inCluster[u] = true
	}
	for u := uint64(0); u < p.NumElements(); u++ {
		if !inCluster[u] && p.Subset(u) == c {
			t.Errorf("node %d unexpectedly in cluster %d", u, c)
		}
	}
}

func newTestDetector(t *testing.T, g *graph.Graph, opts Options) *LouvainMapEquation {
	t.Helper()
	det, err := NewLouvainMapEquation(g, opts)
	if err != nil {
		t.Fatalf("NewLouvainMapEquation failed: %v", err)
	}
	return det
}

func runDetector(t *testing.T, g *graph.Graph, opts Options) *LouvainMapEquation {
	t.Helper()
	det := newTestDetector(t, g, opts)
	if err := det.Run(); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	return det
}

// allStrategies enumerates every parallelization strategy name
var allStrategies = []string{StrategyNone, StrategyRelaxMap, StrategySynchronous}
