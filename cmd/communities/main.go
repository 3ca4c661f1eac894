package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/dd0wney/cluso-communities/pkg/community"
	"github.com/dd0wney/cluso-communities/pkg/graphio"
	"github.com/dd0wney/cluso-communities/pkg/metrics"
)

func main() {
	graphPath := flag.String("graph", "", "Path to the input edge list (append .sz for snappy)")
	outputPath := flag.String("output", "", "Path for the resulting partition CSV (optional)")
	configPath := flag.String("config", "", "YAML file with detection options (optional)")

	strategy := flag.String("strategy", "", "Parallelization strategy: none, relaxmap or synchronous")
	hierarchical := flag.Bool("hierarchical", false, "Enable hierarchical coarsening")
	iterations := flag.Int("iterations", -1, "Max local-moving passes per level")
	workers := flag.Int("workers", 0, "Worker pool size (0 = all CPUs)")
	seed := flag.Int64("seed", 0, "Shuffle seed (0 = keep default)")
	audit := flag.Bool("audit", false, "Verify statistics consistency after every pass")

	logLevel := flag.String("log-level", "info", "Log level: trace, debug, info, warn, error")
	metricsAddr := flag.String("metrics-addr", "", "Expose Prometheus metrics on this address (optional)")
	flag.Parse()

	logger := newLogger(*logLevel)

	if *graphPath == "" {
		logger.Fatal().Msg("missing required -graph flag")
	}

	opts, err := loadOptions(*configPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	applyFlagOverrides(&opts, *strategy, *hierarchical, *iterations, *workers, *seed, *audit)

	reg := metrics.NewRegistry()
	if *metricsAddr != "" {
		go serveMetrics(*metricsAddr, reg, logger)
	}

	logger.Info().Str("path", *graphPath).Msg("loading graph")
	g, err := graphio.ReadEdgeList(*graphPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to read graph")
	}
	logger.Info().
		Uint64("nodes", g.NumNodes()).
		Uint64("edges", g.NumEdges()).
		Float64("total_weight", g.TotalEdgeWeight()).
		Msg("graph loaded")

	det, err := community.NewLouvainMapEquation(g, opts)
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid detection options")
	}
	det.SetLogger(logger)
	det.SetMetrics(reg)

	if err := det.Run(); err != nil {
		logger.Fatal().Err(err).Msg("detection failed")
	}

	res := det.Result()
	fmt.Printf("Run %s finished in %v\n", res.RunID, res.Duration)
	fmt.Printf("  Strategy:     %s\n", res.Strategy)
	fmt.Printf("  Levels:       %d\n", len(res.Levels))
	fmt.Printf("  Clusters:     %d\n", res.Clusters)
	fmt.Printf("  Map equation: %.6f\n", res.MapEquation)
	fmt.Printf("  Modularity:   %.6f\n", res.Modularity)

	if *outputPath != "" {
		if err := graphio.WritePartition(*outputPath, det.Partition()); err != nil {
			logger.Fatal().Err(err).Msg("failed to write partition")
		}
		logger.Info().Str("path", *outputPath).Msg("partition written")
	}
}

func newLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		Level(lvl).
		With().Timestamp().Logger()
}

// loadOptions reads detection options from a YAML file, or returns the
// defaults when no file is given
func loadOptions(path string) (community.Options, error) {
	opts := community.DefaultOptions()
	if path == "" {
		return opts, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return opts, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &opts); err != nil {
		return opts, fmt.Errorf("failed to parse config file: %w", err)
	}
	return opts, nil
}

// applyFlagOverrides lets explicit flags win over file and default values
func applyFlagOverrides(opts *community.Options, strategy string, hierarchical bool,
	iterations, workers int, seed int64, audit bool) {

	if strategy != "" {
		opts.Strategy = strategy
	}
	if hierarchical {
		opts.Hierarchical = true
	}
	if iterations >= 0 {
		opts.MaxIterations = iterations
	}
	if workers > 0 {
		opts.Workers = workers
	}
	if seed != 0 {
		opts.Seed = seed
	}
	if audit {
		opts.Audit = true
	}
}

func serveMetrics(addr string, reg *metrics.Registry, logger zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg.Prometheus(), promhttp.HandlerOpts{}))
	logger.Info().Str("addr", addr).Msg("serving metrics")
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Error().Err(err).Msg("metrics server stopped")
	}
}
