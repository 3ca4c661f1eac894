// Package graphio reads and writes graphs and partitions in simple text
// formats, with optional snappy compression selected by file extension.
package graphio

import (
	"bufio"
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/dd0wney/cluso-communities/pkg/graph"
)

// ReadEdgeList parses a whitespace-separated edge list: one "u v [weight]"
// line per undirected edge, with node ids starting at zero and a default
// weight of 1. Lines starting with '#' or '%' are comments. The graph is
// sized to the highest node id seen. Files ending in the compressed
// extension are decompressed transparently.
func ReadEdgeList(path string) (*graph.Graph, error) {
	data, err := readFileMaybeCompressed(path)
	if err != nil {
		return nil, err
	}

	type edge struct {
		u, v uint64
		w    float64
	}
	var edges []edge
	maxNode := uint64(0)
	haveNodes := false

	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || line[0] == '#' || line[0] == '%' {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 2 || len(fields) > 3 {
			return nil, fmt.Errorf("line %d: expected 2 or 3 columns, got %d", lineNum, len(fields))
		}

		u, err := strconv.ParseUint(fields[0], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid source node: %w", lineNum, err)
		}
		v, err := strconv.ParseUint(fields[1], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid target node: %w", lineNum, err)
		}
		w := 1.0
		if len(fields) == 3 {
			w, err = strconv.ParseFloat(fields[2], 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: invalid weight: %w", lineNum, err)
			}
			if w < 0 {
				return nil, fmt.Errorf("line %d: negative weight %g", lineNum, w)
			}
		}

		edges = append(edges, edge{u, v, w})
		haveNodes = true
		if u > maxNode {
			maxNode = u
		}
		if v > maxNode {
			maxNode = v
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read edge list: %w", err)
	}

	n := uint64(0)
	if haveNodes {
		n = maxNode + 1
	}
	g := graph.New(n)
	for _, e := range edges {
		if err := g.AddEdge(e.u, e.v, e.w); err != nil {
			return nil, fmt.Errorf("failed to add edge %d-%d: %w", e.u, e.v, err)
		}
	}
	return g, nil
}

// WriteEdgeList stores g as a weighted edge list, one line per undirected
// edge with u <= v, in ascending node order. Self-loops are written once.
func WriteEdgeList(path string, g *graph.Graph) error {
	var buf bytes.Buffer
	w := bufio.NewWriter(&buf)

	fmt.Fprintf(w, "# nodes=%d edges=%d\n", g.NumNodes(), g.NumEdges())
	for u := uint64(0); u < g.NumNodes(); u++ {
		if loop := g.SelfLoopWeight(u); loop > 0 {
			fmt.Fprintf(w, "%d %d %s\n", u, u, formatWeight(loop))
		}
		g.ForNeighbors(u, func(v uint64, weight float64) {
			if v < u {
				return
			}
			fmt.Fprintf(w, "%d %d %s\n", u, v, formatWeight(weight))
		})
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to serialize edge list: %w", err)
	}

	return writeFileMaybeCompressed(path, &buf)
}

func formatWeight(w float64) string {
	return strconv.FormatFloat(w, 'g', -1, 64)
}
