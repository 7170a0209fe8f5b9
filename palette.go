package palette

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/hupe1980/palette/internal/kmeans"
	"github.com/hupe1980/palette/sample"
)

// Engine clusters color samples into a fixed number of colors.
//
// Configuration is fixed at construction. Every Fit call owns its centroid,
// label and random state, so one Engine may be shared across goroutines.
type Engine struct {
	numClusters int
	opts        options
}

// New creates an Engine producing numClusters colors.
func New(numClusters int, optFns ...Option) (*Engine, error) {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}

	if numClusters <= 0 {
		return nil, configError("num_clusters", numClusters, ErrInvalidClusterCount)
	}
	if opts.maxIterations <= 0 {
		return nil, configError("max_iterations", opts.maxIterations, errors.New("must be positive"))
	}
	if opts.tolerance < 0 || math.IsNaN(opts.tolerance) {
		return nil, configError("tolerance", opts.tolerance, errors.New("must be non-negative"))
	}

	return &Engine{
		numClusters: numClusters,
		opts:        opts,
	}, nil
}

// NumClusters returns the configured cluster count.
func (e *Engine) NumClusters() int { return e.numClusters }

// MaxIterations returns the iteration budget.
func (e *Engine) MaxIterations() int { return e.opts.maxIterations }

// Tolerance returns the convergence threshold.
func (e *Engine) Tolerance() float64 { return e.opts.tolerance }

// Fit clusters samples and returns the quantization result.
//
// samples is only read. Fit fails with a *ConfigError when samples is empty
// or holds fewer samples than clusters; reaching the iteration budget without
// converging is not an error.
func (e *Engine) Fit(ctx context.Context, samples *sample.Set) (res *Result, err error) {
	start := time.Now()
	n := samples.Len()
	defer func() {
		iters, converged := 0, false
		if res != nil {
			iters, converged = res.Iterations, res.Converged
		}
		d := time.Since(start)
		e.opts.metricsCollector.RecordFit(e.numClusters, n, iters, converged, d, err)
		e.opts.logger.LogFit(ctx, e.numClusters, n, iters, converged, d, err)
	}()

	if n == 0 {
		return nil, configError("samples", n, ErrEmptySamples)
	}
	if e.numClusters > n {
		return nil, configError("num_clusters", e.numClusters, ErrTooManyClusters)
	}

	km, err := kmeans.Train(ctx, samples.Floats(), sample.Channels, kmeans.Config{
		K:         e.numClusters,
		MaxIter:   e.opts.maxIterations,
		Tolerance: e.opts.tolerance,
		Seed:      e.opts.seed,
	})
	if err != nil {
		return nil, translateError(err)
	}

	return newResult(km), nil
}

// Quantize maps every color to the color of its cluster.
//
// The output has the same length and order as colors.
func (e *Engine) Quantize(ctx context.Context, colors []sample.Color) ([]sample.Color, error) {
	res, err := e.Fit(ctx, sample.FromColors(colors))
	if err != nil {
		return nil, err
	}
	return res.Colors(), nil
}

func translateError(err error) error {
	switch {
	case errors.Is(err, kmeans.ErrNoVectors):
		return configError("samples", 0, ErrEmptySamples)
	case errors.Is(err, kmeans.ErrTooFewVectors):
		return configError("num_clusters", nil, ErrTooManyClusters)
	case errors.Is(err, kmeans.ErrInvalidK):
		return configError("num_clusters", nil, ErrInvalidClusterCount)
	default:
		return err
	}
}
