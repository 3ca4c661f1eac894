package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNewRegistry(t *testing.T) {
	r := NewRegistry()

	if r.Prometheus() == nil {
		t.Fatal("Prometheus() returned nil")
	}
	if r.PassesTotal == nil || r.MovesTotal == nil || r.DetectionRunsTotal == nil {
		t.Fatal("metrics not initialized")
	}
}

func TestRecordPass(t *testing.T) {
	r := NewRegistry()

	r.RecordPass("relaxmap", 42, 10*time.Millisecond)
	r.RecordPass("relaxmap", 8, 5*time.Millisecond)

	if got := testutil.ToFloat64(r.PassesTotal.WithLabelValues("relaxmap")); got != 2 {
		t.Errorf("PassesTotal = %f, want 2", got)
	}
	if got := testutil.ToFloat64(r.MovesTotal.WithLabelValues("relaxmap")); got != 50 {
		t.Errorf("MovesTotal = %f, want 50", got)
	}
}

func TestRecordRun(t *testing.T) {
	r := NewRegistry()

	r.RecordRun("synchronous", "ok", 7, time.Second)

	if got := testutil.ToFloat64(r.DetectionRunsTotal.WithLabelValues("synchronous", "ok")); got != 1 {
		t.Errorf("DetectionRunsTotal = %f, want 1", got)
	}
	if got := testutil.ToFloat64(r.ClustersDetected.WithLabelValues("synchronous")); got != 7 {
		t.Errorf("ClustersDetected = %f, want 7", got)
	}
}

func TestRecordLevel(t *testing.T) {
	r := NewRegistry()

	r.RecordLevel("none", 3*time.Millisecond)
	r.RecordLevel("none", 2*time.Millisecond)

	if got := testutil.ToFloat64(r.LevelsTotal.WithLabelValues("none")); got != 2 {
		t.Errorf("LevelsTotal = %f, want 2", got)
	}
}
