package community

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/dd0wney/cluso-communities/pkg/graph"
	"github.com/dd0wney/cluso-communities/pkg/metrics"
	"github.com/dd0wney/cluso-communities/pkg/parallel"
	"github.com/dd0wney/cluso-communities/pkg/partition"
)

// ErrAlreadyRun is returned when Run is invoked a second time. A detector
// performs one computation over its input graph; build a new one to rerun.
var ErrAlreadyRun = errors.New("detection has already run")

// Detector is the generic community-detection contract: one full
// computation producing a flat partition of the input graph's nodes.
type Detector interface {
	Run() error
	Partition() *partition.Partition
	String() string
}

// LevelInfo describes one hierarchy level of a finished run
type LevelInfo struct {
	Level      int
	Nodes      uint64
	Clusters   uint64
	Iterations int
	Moves      uint64
	Duration   time.Duration
}

// Result carries metadata about a finished detection run
type Result struct {
	RunID       string
	Strategy    string
	Levels      []LevelInfo
	Clusters    uint64
	MapEquation float64
	Modularity  float64
	Duration    time.Duration
}

// LouvainMapEquation detects communities by heuristically minimizing the map
// equation with Louvain-style local moving, optionally recursing on a
// coarsened graph. It implements Detector.
//
// The input graph is only ever read.
type LouvainMapEquation struct {
	g        *graph.Graph
	opts     Options
	strategy parallelizationType

	logger zerolog.Logger
	reg    *metrics.Registry

	result *partition.Partition
	info   *Result
	ran    bool
}

var _ Detector = (*LouvainMapEquation)(nil)

// NewLouvainMapEquation creates a detector for g. The options are validated
// here: an unrecognized parallelization strategy fails construction before
// any computation begins.
func NewLouvainMapEquation(g *graph.Graph, opts Options) (*LouvainMapEquation, error) {
	strategy, err := opts.Validate()
	if err != nil {
		return nil, err
	}
	return &LouvainMapEquation{
		g:        g,
		opts:     opts,
		strategy: strategy,
		logger:   zerolog.Nop(),
	}, nil
}

// SetLogger attaches a logger for progress output. Call before Run.
func (l *LouvainMapEquation) SetLogger(logger zerolog.Logger) {
	l.logger = logger
}

// SetMetrics attaches a metrics registry. Call before Run; nil disables
// instrumentation.
func (l *LouvainMapEquation) SetMetrics(reg *metrics.Registry) {
	l.reg = reg
}

// String returns a human-readable description of the algorithm and its
// configuration, for logs and diagnostics.
func (l *LouvainMapEquation) String() string {
	return fmt.Sprintf("LouvainMapEquation(strategy=%s, maxIterations=%d, hierarchical=%t)",
		l.opts.Strategy, l.opts.MaxIterations, l.opts.Hierarchical)
}

// Partition returns the detected partition over the input graph's nodes.
// Valid after a successful Run.
func (l *LouvainMapEquation) Partition() *partition.Partition {
	return l.result
}

// Result returns metadata about the finished run. Valid after a successful
// Run.
func (l *LouvainMapEquation) Result() *Result {
	return l.info
}

// Run performs the full detection. It must be called exactly once; a second
// call returns ErrAlreadyRun without touching the first run's result.
//
// The run terminates when a pass applies zero moves or the iteration cap is
// reached on every level; there is no cancellation mid-pass.
func (l *LouvainMapEquation) Run() error {
	if l.ran {
		return ErrAlreadyRun
	}
	l.ran = true

	start := time.Now()
	info := &Result{
		RunID:    uuid.NewString(),
		Strategy: l.opts.Strategy,
	}
	l.info = info

	// Every error path reports the failed run, not just some
	fail := func(err error) error {
		if l.reg != nil {
			l.reg.RecordRun(l.opts.Strategy, "error", 0, time.Since(start))
		}
		return err
	}

	var pool *parallel.WorkerPool
	if l.strategy != parallelizationNone {
		var err error
		pool, err = parallel.NewWorkerPool(l.opts.workers())
		if err != nil {
			return fail(fmt.Errorf("starting worker pool: %w", err))
		}
		defer pool.Close()
	}

	logger := l.logger.With().Str("run_id", info.RunID).Logger()
	logger.Info().
		Uint64("nodes", l.g.NumNodes()).
		Uint64("edges", l.g.NumEdges()).
		Str("detector", l.String()).
		Msg("starting community detection")

	rng := rand.New(rand.NewSource(l.opts.Seed))

	g := l.g
	var mappings [][]uint64
	var top *partition.Partition

	for level := 0; ; level++ {
		levelStart := time.Now()
		mv := newMover(g, l.strategy, pool, rng)

		iterations, moves, err := l.runLocalMoving(mv, level, logger)
		if err != nil {
			return fail(err)
		}

		clusters := mv.p.NumSubsets()
		info.Levels = append(info.Levels, LevelInfo{
			Level:      level,
			Nodes:      g.NumNodes(),
			Clusters:   clusters,
			Iterations: iterations,
			Moves:      moves,
			Duration:   time.Since(levelStart),
		})
		if l.reg != nil {
			l.reg.RecordLevel(l.opts.Strategy, time.Since(levelStart))
		}
		logger.Info().
			Int("level", level).
			Uint64("nodes", g.NumNodes()).
			Uint64("clusters", clusters).
			Int("iterations", iterations).
			Uint64("moves", moves).
			Msg("level converged")

		top = mv.p

		if !l.opts.Hierarchical || clusters == g.NumNodes() {
			break
		}

		coarse, fineToCoarse, _, err := coarsen(g, mv.p)
		if err != nil {
			return fail(fmt.Errorf("level %d: %w", level, err))
		}
		mappings = append(mappings, fineToCoarse)
		g = coarse
	}

	l.result = l.projectToOriginal(top, mappings)

	info.Clusters = l.result.NumSubsets()
	info.MapEquation = MapEquation(l.g, l.result)
	info.Modularity = Modularity(l.g, l.result)
	info.Duration = time.Since(start)

	if l.reg != nil {
		l.reg.RecordRun(l.opts.Strategy, "ok", info.Clusters, info.Duration)
	}
	logger.Info().
		Uint64("clusters", info.Clusters).
		Float64("map_equation", info.MapEquation).
		Float64("modularity", info.Modularity).
		Dur("duration", info.Duration).
		Msg("community detection finished")

	return nil
}

// runLocalMoving repeats passes until quiescence or the iteration cap
func (l *LouvainMapEquation) runLocalMoving(mv *mover, level int, logger zerolog.Logger) (int, uint64, error) {
	iterations := 0
	totalMoves := uint64(0)

	for it := 0; it < l.opts.MaxIterations; it++ {
		passStart := time.Now()
		moved := mv.pass()
		iterations++
		totalMoves += moved

		if l.reg != nil {
			l.reg.RecordPass(l.opts.Strategy, moved, time.Since(passStart))
		}
		logger.Debug().
			Int("level", level).
			Int("pass", it+1).
			Uint64("moves", moved).
			Msg("local moving pass")

		if l.opts.Audit {
			if err := mv.auditConsistency(); err != nil {
				return iterations, totalMoves,
					fmt.Errorf("level %d pass %d: %w", level, it+1, err)
			}
		}

		if moved == 0 {
			break
		}
	}
	return iterations, totalMoves, nil
}

// projectToOriginal folds a coarse-level partition back down through the
// recorded fine-to-coarse mappings onto the original node set
func (l *LouvainMapEquation) projectToOriginal(top *partition.Partition, mappings [][]uint64) *partition.Partition {
	if len(mappings) == 0 {
		return top
	}

	flat := partition.New(l.g.NumNodes())
	for u := uint64(0); u < l.g.NumNodes(); u++ {
		id := u
		for _, m := range mappings {
			id = m[id]
		}
		flat.MoveToSubset(top.Subset(id), u)
	}
	return flat
}
