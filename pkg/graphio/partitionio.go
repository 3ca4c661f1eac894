package graphio

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/dd0wney/cluso-communities/pkg/partition"
)

var partitionHeader = []string{"node", "cluster"}

// WritePartition stores p as a two-column CSV of node id and cluster id,
// one row per node in ascending node order
func WritePartition(path string, p *partition.Partition) error {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(partitionHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for u := uint64(0); u < p.NumElements(); u++ {
		row := []string{
			strconv.FormatUint(u, 10),
			strconv.FormatUint(p.Subset(u), 10),
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("failed to write row for node %d: %w", u, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to serialize partition: %w", err)
	}

	return writeFileMaybeCompressed(path, &buf)
}

// ReadPartition loads a partition written by WritePartition. Rows may appear
// in any order but must cover the node ids 0..n-1 exactly once.
func ReadPartition(path string) (*partition.Partition, error) {
	data, err := readFileMaybeCompressed(path)
	if err != nil {
		return nil, err
	}

	reader := csv.NewReader(bytes.NewReader(data))
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}
	if len(records) > 0 && records[0][0] == partitionHeader[0] {
		records = records[1:]
	}

	type row struct {
		node, cluster uint64
	}
	rows := make([]row, 0, len(records))
	maxNode := uint64(0)
	for i, record := range records {
		if len(record) != 2 {
			return nil, fmt.Errorf("line %d: expected 2 columns, got %d", i+1, len(record))
		}
		node, err := strconv.ParseUint(record[0], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid node id: %w", i+1, err)
		}
		cluster, err := strconv.ParseUint(record[1], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid cluster id: %w", i+1, err)
		}
		rows = append(rows, row{node, cluster})
		if node > maxNode {
			maxNode = node
		}
	}

	n := uint64(0)
	if len(rows) > 0 {
		n = maxNode + 1
	}
	if uint64(len(rows)) != n {
		return nil, fmt.Errorf("partition covers %d rows but highest node id is %d", len(rows), maxNode)
	}

	p := partition.New(n)
	seen := make([]bool, n)
	for _, r := range rows {
		if seen[r.node] {
			return nil, fmt.Errorf("node %d assigned twice", r.node)
		}
		seen[r.node] = true
		p.MoveToSubset(r.cluster, r.node)
	}
	return p, nil
}
