package palette

import "log/slog"

const (
	// DefaultMaxIterations bounds the clustering loop when no option is given.
	DefaultMaxIterations = 100
	// DefaultTolerance is the centroid shift below which a run has converged.
	DefaultTolerance = 1e-4
	// DefaultSeed seeds centroid initialization.
	DefaultSeed int64 = 0
)

type options struct {
	maxIterations    int
	tolerance        float64
	seed             int64
	metricsCollector MetricsCollector
	logger           *Logger
}

func defaultOptions() options {
	return options{
		maxIterations:    DefaultMaxIterations,
		tolerance:        DefaultTolerance,
		seed:             DefaultSeed,
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
	}
}

// Option configures an Engine.
type Option func(*options)

// WithMaxIterations bounds the number of assignment/update rounds.
// Must be positive.
func WithMaxIterations(n int) Option {
	return func(o *options) {
		o.maxIterations = n
	}
}

// WithTolerance sets the convergence threshold on the centroid shift.
// Must be non-negative; zero runs until the centroids stop moving exactly or
// the iteration budget is spent.
func WithTolerance(tol float64) Option {
	return func(o *options) {
		o.tolerance = tol
	}
}

// WithSeed sets the seed of the engine-local random source used to pick the
// initial centroids. Equal seeds give equal results for equal inputs.
func WithSeed(seed int64) Option {
	return func(o *options) {
		o.seed = seed
	}
}

// WithMetricsCollector configures a metrics collector for monitoring fits.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &palette.BasicMetricsCollector{}
//	eng, _ := palette.New(8, palette.WithMetricsCollector(metrics))
//	// ... use eng ...
//	stats := metrics.GetStats()
//	fmt.Printf("Fits: %d, Avg iterations: %.1f\n", stats.FitCount, stats.FitAvgIters)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for fits.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := palette.NewJSONLogger(os.Stderr, slog.LevelDebug)
//	eng, _ := palette.New(8, palette.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(nil, level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(nil, level)
	}
}
