package graph

import (
	"errors"
	"fmt"
)

// ErrNodeOutOfRange is returned when an edge references a node id >= NumNodes.
var ErrNodeOutOfRange = errors.New("node id out of range")

// halfEdge is one direction of an undirected edge
type halfEdge struct {
	target uint64
	weight float64
}

// Graph is an in-memory undirected weighted graph with dense node ids
// 0..n-1. Self-loops are stored once and count twice toward a node's volume.
// The structure is append-only: algorithms consuming it never mutate it.
type Graph struct {
	adjacency [][]halfEdge
	selfLoop  []float64
	degree    []float64 // weighted degree, self-loops counted twice

	edgeCount       uint64
	totalEdgeWeight float64
}

// New creates a graph with n nodes and no edges
func New(n uint64) *Graph {
	return &Graph{
		adjacency: make([][]halfEdge, n),
		selfLoop:  make([]float64, n),
		degree:    make([]float64, n),
	}
}

// AddEdge adds an undirected edge {u, v} with the given weight.
// u == v adds a self-loop. Parallel edges are kept as-is; their weights
// simply add up in every aggregate the algorithms compute.
func (g *Graph) AddEdge(u, v uint64, weight float64) error {
	n := uint64(len(g.adjacency))
	if u >= n || v >= n {
		return fmt.Errorf("%w: edge {%d, %d} on graph with %d nodes", ErrNodeOutOfRange, u, v, n)
	}

	if u == v {
		g.selfLoop[u] += weight
		g.degree[u] += 2 * weight
	} else {
		g.adjacency[u] = append(g.adjacency[u], halfEdge{target: v, weight: weight})
		g.adjacency[v] = append(g.adjacency[v], halfEdge{target: u, weight: weight})
		g.degree[u] += weight
		g.degree[v] += weight
	}

	g.edgeCount++
	g.totalEdgeWeight += weight
	return nil
}

// NumNodes returns the number of nodes
func (g *Graph) NumNodes() uint64 {
	return uint64(len(g.adjacency))
}

// NumEdges returns the number of edges (self-loops included)
func (g *Graph) NumEdges() uint64 {
	return g.edgeCount
}

// TotalEdgeWeight returns the sum of all edge weights, self-loops counted once
func (g *Graph) TotalEdgeWeight() float64 {
	return g.totalEdgeWeight
}

// WeightedDegree returns the weighted degree of u with self-loops counted
// twice. This equals the node's volume in the map-equation sense.
func (g *Graph) WeightedDegree(u uint64) float64 {
	return g.degree[u]
}

// SelfLoopWeight returns the total self-loop weight of u (each loop once)
func (g *Graph) SelfLoopWeight(u uint64) float64 {
	return g.selfLoop[u]
}

// Degree returns the number of incident non-loop edges of u
func (g *Graph) Degree(u uint64) int {
	return len(g.adjacency[u])
}

// ForNeighbors calls fn for every non-loop edge incident to u.
// Self-loops are never reported; read them via SelfLoopWeight.
func (g *Graph) ForNeighbors(u uint64, fn func(v uint64, weight float64)) {
	for _, e := range g.adjacency[u] {
		fn(e.target, e.weight)
	}
}
