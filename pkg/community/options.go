package community

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/go-playground/validator/v10"
)

// ErrInvalidStrategy is returned when the configured parallelization
// strategy name is not recognized.
var ErrInvalidStrategy = errors.New("invalid parallelization strategy")

// parallelizationType selects how a local-moving pass is executed
type parallelizationType uint8

const (
	parallelizationNone parallelizationType = iota
	parallelizationRelaxMap
	parallelizationSynchronous
)

// Recognized strategy names.
const (
	StrategyNone        = "none"        // sequential reference implementation
	StrategyRelaxMap    = "relaxmap"    // one lock per cluster, optimistic reads
	StrategySynchronous = "synchronous" // frozen snapshot, deferred batch apply
)

// Options configures a map-equation detection run
type Options struct {
	// Hierarchical enables recursive coarsening after local moving converges.
	Hierarchical bool `yaml:"hierarchical"`

	// MaxIterations caps the number of local-moving passes per level.
	MaxIterations int `yaml:"max_iterations" validate:"min=0"`

	// Strategy selects the parallelization mode: one of "none", "relaxmap"
	// or "synchronous". Unknown names fail validation at construction.
	Strategy string `yaml:"parallelization_strategy"`

	// Workers is the size of the worker pool for the parallel strategies.
	// Zero means runtime.NumCPU(). Ignored when Strategy is "none".
	Workers int `yaml:"workers" validate:"min=0"`

	// Seed fixes the per-pass visitation shuffle. With the sequential
	// strategy the same seed reproduces the run bit for bit.
	Seed int64 `yaml:"seed"`

	// Audit recomputes cut/volume statistics and the map equation from
	// scratch after every pass and fails the run on drift beyond tolerance.
	// Verification tool only: it multiplies pass cost and is never needed
	// in production.
	Audit bool `yaml:"audit"`
}

// DefaultOptions returns the default detection configuration
func DefaultOptions() Options {
	return Options{
		Hierarchical:  false,
		MaxIterations: 32,
		Strategy:      StrategyRelaxMap,
		Workers:       0,
		Seed:          1,
	}
}

var validate = validator.New()

// parseStrategy converts a strategy name to its internal type.
// Unknown names are a configuration error, never silently defaulted.
func parseStrategy(name string) (parallelizationType, error) {
	switch name {
	case StrategyNone:
		return parallelizationNone, nil
	case StrategyRelaxMap:
		return parallelizationRelaxMap, nil
	case StrategySynchronous:
		return parallelizationSynchronous, nil
	default:
		return 0, fmt.Errorf("%w: %q (must be one of %q, %q, %q)",
			ErrInvalidStrategy, name, StrategyNone, StrategyRelaxMap, StrategySynchronous)
	}
}

// Validate checks the options and resolves the strategy name
func (o *Options) Validate() (parallelizationType, error) {
	if err := validate.Struct(o); err != nil {
		return 0, fmt.Errorf("invalid detection options: %w", err)
	}
	return parseStrategy(o.Strategy)
}

// workers resolves the effective worker count
func (o *Options) workers() int {
	if o.Workers > 0 {
		return o.Workers
	}
	return runtime.NumCPU()
}
