package community

import (
	"math"
	"testing"
)

func TestNewClusterStats_SingletonInit(t *testing.T) {
	// Triangle with a self-loop on node 0
	g := buildGraph(t, 3, []testEdge{
		{0, 1, 1.0}, {1, 2, 2.0}, {0, 2, 0.5}, {0, 0, 3.0},
	})

	s := newClusterStats(g)

	// Node 0: degree 1 + 0.5 + 2*3 = 7.5 volume, cut excludes the loop
	if got := s.Volume(0); got != 7.5 {
		t.Errorf("Volume(0) = %f, want 7.5", got)
	}
	if got := s.Cut(0); got != 1.5 {
		t.Errorf("Cut(0) = %f, want 1.5", got)
	}
	if got := s.Volume(1); got != 3.0 {
		t.Errorf("Volume(1) = %f, want 3.0", got)
	}

	// TotalVolume = sum of node volumes = 7.5 + 3.0 + 2.5
	if got := s.TotalVolume(); got != 13.0 {
		t.Errorf("TotalVolume() = %f, want 13.0", got)
	}
	// TotalCut for singletons = sum of non-loop degrees = 1.5 + 3.0 + 2.5
	if got := s.TotalCut(); got != 7.0 {
		t.Errorf("TotalCut() = %f, want 7.0", got)
	}
}

func TestApplyMove_TransfersVolumeAndCut(t *testing.T) {
	// Path 0 - 1 - 2, unit weights
	g := buildGraph(t, 3, []testEdge{{0, 1, 1.0}, {1, 2, 1.0}})
	s := newClusterStats(g)

	// Move node 1 into cluster 0: weightToCurrent = 0 (singleton),
	// weightToTarget = 1, degree = 2, loop = 0.
	mv := &move{
		node:           1,
		volume:         2.0,
		origin:         1,
		target:         0,
		cutDeltaOrigin: 2*0 - 2.0 + 0, // -degree
		cutDeltaTarget: 2.0 - 2*1.0 - 0,
	}
	s.applyMove(mv)

	if got := s.Volume(1); got != 0 {
		t.Errorf("Volume(origin) = %f, want 0", got)
	}
	if got := s.Volume(0); got != 3.0 {
		t.Errorf("Volume(target) = %f, want 3.0", got)
	}
	// Cluster {0, 1} has one edge leaving (1-2)
	if got := s.Cut(0); got != 1.0 {
		t.Errorf("Cut(target) = %f, want 1.0", got)
	}
	if got := s.Cut(1); got != 0 {
		t.Errorf("Cut(origin) = %f, want 0", got)
	}
	// Total cut: edges 0-1 internal now, only 1-2 crosses, counted from
	// both sides.
	if got := s.TotalCut(); got != 2.0 {
		t.Errorf("TotalCut() = %f, want 2.0", got)
	}
	// TotalVolume never changes
	if got := s.TotalVolume(); got != 4.0 {
		t.Errorf("TotalVolume() = %f, want 4.0", got)
	}
}

func TestAtomicFloat64(t *testing.T) {
	var f atomicFloat64

	f.Store(1.5)
	if got := f.Load(); got != 1.5 {
		t.Errorf("Load() = %f, want 1.5", got)
	}

	f.Add(-0.25)
	if got := f.Load(); got != 1.25 {
		t.Errorf("Load() after Add = %f, want 1.25", got)
	}

	f.Store(math.Inf(1))
	if !math.IsInf(f.Load(), 1) {
		t.Error("Store/Load did not round-trip +Inf")
	}
}
