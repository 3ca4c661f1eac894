package partition

import "sync/atomic"

// Partition assigns every node of a graph to exactly one cluster.
// Node ids and cluster ids share the same dense 0..n-1 id space: a cluster
// is named after one of its member nodes (typically the node it started from).
//
// Reads and writes go through atomic operations so that parallel
// community-detection strategies may read assignments of nodes owned by other
// workers without synchronization. Staleness of such reads is the caller's
// concern; the partition itself never tears.
type Partition struct {
	labels []uint64
}

// New creates a partition of n elements, each in its own singleton cluster
func New(n uint64) *Partition {
	p := &Partition{labels: make([]uint64, n)}
	p.AllToSingletons()
	return p
}

// NumElements returns the number of elements covered by the partition
func (p *Partition) NumElements() uint64 {
	return uint64(len(p.labels))
}

// Subset returns the cluster id element u is currently assigned to
func (p *Partition) Subset(u uint64) uint64 {
	return atomic.LoadUint64(&p.labels[u])
}

// MoveToSubset assigns element u to cluster c
func (p *Partition) MoveToSubset(c, u uint64) {
	atomic.StoreUint64(&p.labels[u], c)
}

// AllToSingletons resets every element to its own cluster
func (p *Partition) AllToSingletons() {
	for i := range p.labels {
		p.labels[i] = uint64(i)
	}
}

// Clone returns an independent copy of the partition.
// Must not race with concurrent writers.
func (p *Partition) Clone() *Partition {
	labels := make([]uint64, len(p.labels))
	copy(labels, p.labels)
	return &Partition{labels: labels}
}

// NumSubsets counts the distinct clusters currently in use
func (p *Partition) NumSubsets() uint64 {
	seen := make(map[uint64]struct{}, len(p.labels))
	for _, c := range p.labels {
		seen[c] = struct{}{}
	}
	return uint64(len(seen))
}

// Compact renumbers cluster ids to the dense range 0..k-1, preserving
// membership, and returns k. The mapping is order-of-first-appearance by
// ascending node id, so compaction is deterministic.
func (p *Partition) Compact() uint64 {
	remap := make(map[uint64]uint64, len(p.labels))
	next := uint64(0)
	for i, c := range p.labels {
		id, ok := remap[c]
		if !ok {
			id = next
			remap[c] = id
			next++
		}
		p.labels[i] = id
	}
	return next
}

// Subsets returns the members of every cluster, keyed by cluster id
func (p *Partition) Subsets() map[uint64][]uint64 {
	subsets := make(map[uint64][]uint64)
	for i, c := range p.labels {
		subsets[c] = append(subsets[c], uint64(i))
	}
	return subsets
}

// Equal reports whether two partitions have identical labels.
// Label-identical, not merely membership-equivalent.
func (p *Partition) Equal(other *Partition) bool {
	if len(p.labels) != len(other.labels) {
		return false
	}
	for i := range p.labels {
		if p.labels[i] != other.labels[i] {
			return false
		}
	}
	return true
}
