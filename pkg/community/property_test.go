package community

import (
	"math"
	"math/rand"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/dd0wney/cluso-communities/pkg/graph"
	"github.com/dd0wney/cluso-communities/pkg/partition"
)

// randomGraph builds an Erdos-Renyi style weighted graph from a seed so
// every property evaluation is reproducible from its inputs
func randomGraph(seed int64, nodes uint64, edgeFraction float64) *graph.Graph {
	rng := rand.New(rand.NewSource(seed))
	g := graph.New(nodes)
	for u := uint64(0); u < nodes; u++ {
		for v := u + 1; v < nodes; v++ {
			if rng.Float64() < edgeFraction {
				// Errors are impossible here: both endpoints are in range
				_ = g.AddEdge(u, v, 0.5+rng.Float64())
			}
		}
	}
	return g
}

// TestDetectionProperties verifies invariants that must hold for any graph
// under every parallelization strategy
func TestDetectionProperties(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping property-based test in short mode")
	}

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 20 // Keep test time reasonable

	properties := gopter.NewProperties(parameters)

	// Property 1: every strategy finishes with internally consistent
	// statistics (audited) and a valid partition
	properties.Property("all strategies produce audited valid partitions", prop.ForAll(
		func(seed int64, nodes uint64, edgeFraction float64) bool {
			g := randomGraph(seed, nodes, edgeFraction)
			for _, strategy := range allStrategies {
				opts := DefaultOptions()
				opts.Strategy = strategy
				opts.Seed = seed
				opts.Audit = true

				det, err := NewLouvainMapEquation(g, opts)
				if err != nil {
					return false
				}
				if err := det.Run(); err != nil {
					return false
				}
				p := det.Partition()
				if p.NumElements() != nodes {
					return false
				}
				if k := p.NumSubsets(); k < 1 || k > nodes {
					return false
				}
			}
			return true
		},
		gen.Int64(),
		gen.UInt64Range(2, 40),
		gen.Float64Range(0.05, 0.6),
	))

	// Property 2: the sequential engine only ever applies improving moves, so
	// its final codelength never exceeds the singleton baseline
	properties.Property("sequential detection never worsens the codelength", prop.ForAll(
		func(seed int64, nodes uint64, edgeFraction float64) bool {
			g := randomGraph(seed, nodes, edgeFraction)
			opts := DefaultOptions()
			opts.Strategy = StrategyNone
			opts.Seed = seed

			det, err := NewLouvainMapEquation(g, opts)
			if err != nil {
				return false
			}
			if err := det.Run(); err != nil {
				return false
			}

			baseline := MapEquation(g, partition.New(nodes))
			final := det.Result().MapEquation
			return final <= baseline+auditTolerance && !math.IsNaN(final)
		},
		gen.Int64(),
		gen.UInt64Range(2, 40),
		gen.Float64Range(0.05, 0.6),
	))

	// Property 3: hierarchical and flat detection agree on the total volume
	// they account for, which the audit checks at every level
	properties.Property("hierarchical runs stay consistent across levels", prop.ForAll(
		func(seed int64, nodes uint64, edgeFraction float64) bool {
			g := randomGraph(seed, nodes, edgeFraction)
			opts := DefaultOptions()
			opts.Hierarchical = true
			opts.Seed = seed
			opts.Audit = true

			det, err := NewLouvainMapEquation(g, opts)
			if err != nil {
				return false
			}
			if err := det.Run(); err != nil {
				return false
			}
			return det.Partition().NumElements() == nodes
		},
		gen.Int64(),
		gen.UInt64Range(2, 40),
		gen.Float64Range(0.05, 0.6),
	))

	properties.TestingRun(t)
}
