package palette

import (
	"context"
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/palette/sample"
	"github.com/hupe1980/palette/testutil"
)

func TestNew(t *testing.T) {
	eng, err := New(8)
	require.NoError(t, err)
	assert.Equal(t, 8, eng.NumClusters())
	assert.Equal(t, DefaultMaxIterations, eng.MaxIterations())
	assert.Equal(t, DefaultTolerance, eng.Tolerance())

	tests := []struct {
		name  string
		k     int
		opts  []Option
		param string
	}{
		{"zero clusters", 0, nil, "num_clusters"},
		{"negative clusters", -2, nil, "num_clusters"},
		{"zero iterations", 2, []Option{WithMaxIterations(0)}, "max_iterations"},
		{"negative tolerance", 2, []Option{WithTolerance(-1)}, "tolerance"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.k, tt.opts...)
			require.ErrorIs(t, err, ErrInvalidConfig)
			var ce *ConfigError
			require.ErrorAs(t, err, &ce)
			assert.Equal(t, tt.param, ce.Param)
		})
	}
}

func TestFit_TwoColorScenario(t *testing.T) {
	colors := []sample.Color{{0, 0, 0}, {0, 0, 1}, {255, 255, 254}, {255, 255, 255}}

	eng, err := New(2, WithTolerance(1e-4), WithMaxIterations(100))
	require.NoError(t, err)

	res, err := eng.Fit(context.Background(), sample.FromColors(colors))
	require.NoError(t, err)
	assert.True(t, res.Converged)

	require.Len(t, res.Labels, 4)
	assert.Equal(t, res.Labels[0], res.Labels[1])
	assert.Equal(t, res.Labels[2], res.Labels[3])
	assert.NotEqual(t, res.Labels[0], res.Labels[2])

	dark, light := res.Labels[0], res.Labels[2]
	assert.InDeltaSlice(t, []float64{0, 0, 0.5}, res.Centroids[dark][:], 1e-9)
	assert.InDeltaSlice(t, []float64{255, 255, 254.5}, res.Centroids[light][:], 1e-9)

	// 8-bit output truncates the centroid channels.
	assert.Equal(t, []sample.Color{{0, 0, 0}, {0, 0, 0}, {255, 255, 254}, {255, 255, 254}}, res.Colors())
	assert.Equal(t, []int{2, 2}, res.Counts())
}

func TestFit_ConvergedOutputUsesAssignedCentroids(t *testing.T) {
	grays := []sample.Color{{0, 0, 0}, {1, 1, 1}, {10, 10, 10}, {11, 11, 11}, {12, 12, 12}}

	eng, err := New(2, WithTolerance(20))
	require.NoError(t, err)

	res, err := eng.Fit(context.Background(), sample.FromColors(grays))
	require.NoError(t, err)
	assert.True(t, res.Converged)
	assert.Equal(t, 1, res.Iterations)

	// The update that fell below the tolerance is discarded, so every output
	// color is one of the sampled initial centroids rather than a mean.
	for _, c := range res.Colors() {
		assert.Contains(t, grays, c)
	}
	for _, c := range res.Centroids {
		assert.Contains(t, grays, sample.ToColor(c[:]))
		assert.Equal(t, math.Trunc(c[0]), c[0])
	}

	q := res.Quantized()
	assert.Equal(t, q.Floats(), res.Requantize(q).Floats())
}

func TestFit_TooManyClusters(t *testing.T) {
	eng, err := New(5)
	require.NoError(t, err)

	_, err = eng.Fit(context.Background(), sample.FromColors([]sample.Color{{1, 1, 1}, {2, 2, 2}, {3, 3, 3}}))
	require.ErrorIs(t, err, ErrInvalidConfig)
	require.ErrorIs(t, err, ErrTooManyClusters)

	var ce *ConfigError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "num_clusters", ce.Param)
}

func TestFit_EmptySamples(t *testing.T) {
	eng, err := New(1)
	require.NoError(t, err)

	_, err = eng.Fit(context.Background(), sample.NewSet(0))
	assert.ErrorIs(t, err, ErrEmptySamples)

	_, err = eng.Fit(context.Background(), nil)
	assert.ErrorIs(t, err, ErrEmptySamples)
}

func TestFit_Deterministic(t *testing.T) {
	rng := testutil.NewRNG(4711)
	colors := rng.Colors(2000)

	eng, err := New(6)
	require.NoError(t, err)

	a, err := eng.Quantize(context.Background(), colors)
	require.NoError(t, err)
	b, err := eng.Quantize(context.Background(), colors)
	require.NoError(t, err)
	assert.Equal(t, a, b)

	// A separately constructed engine with the same configuration agrees too.
	other, err := New(6)
	require.NoError(t, err)
	c, err := other.Quantize(context.Background(), colors)
	require.NoError(t, err)
	assert.Equal(t, a, c)
}

func TestFit_ConcurrentCallsAgree(t *testing.T) {
	rng := testutil.NewRNG(1)
	colors := rng.Colors(500)

	eng, err := New(4)
	require.NoError(t, err)
	want, err := eng.Quantize(context.Background(), colors)
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([][]sample.Color, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			out, err := eng.Quantize(context.Background(), colors)
			assert.NoError(t, err)
			results[i] = out
		}(i)
	}
	wg.Wait()

	for _, got := range results {
		assert.Equal(t, want, got)
	}
}

func TestFit_LengthAndClusterBound(t *testing.T) {
	rng := testutil.NewRNG(99)
	for _, n := range []int{1, 2, 7, 64, 300} {
		colors := rng.Colors(n)
		for _, k := range []int{1, 2, 3, 16} {
			if k > n {
				continue
			}
			eng, err := New(k)
			require.NoError(t, err)

			out, err := eng.Quantize(context.Background(), colors)
			require.NoError(t, err)
			assert.Len(t, out, n)
			assert.LessOrEqual(t, sample.Distinct(out), k)
		}
	}
}

func TestFit_DoesNotMutateInput(t *testing.T) {
	set := sample.FromColors(testutil.NewRNG(3).Colors(100))
	before := set.Clone()

	eng, err := New(3)
	require.NoError(t, err)
	_, err = eng.Fit(context.Background(), set)
	require.NoError(t, err)

	assert.Equal(t, before.Floats(), set.Floats())
}

func TestFit_Idempotent(t *testing.T) {
	rng := testutil.NewRNG(42)
	set := sample.FromColors(rng.ClusteredColors([]sample.Color{{20, 20, 20}, {200, 40, 40}, {40, 200, 40}, {40, 40, 200}}, 400, 12))

	eng, err := New(4)
	require.NoError(t, err)
	res, err := eng.Fit(context.Background(), set)
	require.NoError(t, err)

	quantized := res.Quantized()
	assert.Equal(t, quantized.Floats(), res.Requantize(quantized).Floats())
}

func TestFit_KEqualsNReproducesInput(t *testing.T) {
	colors := []sample.Color{{1, 2, 3}, {50, 60, 70}, {200, 100, 0}, {9, 9, 250}, {128, 128, 128}}

	eng, err := New(len(colors))
	require.NoError(t, err)

	res, err := eng.Fit(context.Background(), sample.FromColors(colors))
	require.NoError(t, err)
	assert.True(t, res.Converged)
	assert.Equal(t, 1, res.Iterations)
	assert.Equal(t, colors, res.Colors())
}

func TestFit_EmptyClusterRetainsCentroid(t *testing.T) {
	colors := []sample.Color{{10, 20, 30}, {10, 20, 30}, {10, 20, 30}}

	eng, err := New(3)
	require.NoError(t, err)

	res, err := eng.Fit(context.Background(), sample.FromColors(colors))
	require.NoError(t, err)
	assert.Equal(t, []int{3, 0, 0}, res.Counts())
	for _, c := range res.Centroids {
		assert.Equal(t, [3]float64{10, 20, 30}, c)
	}
	assert.Equal(t, colors, res.Colors())
}

func TestFit_ShiftLog(t *testing.T) {
	// Informational only: movement usually shrinks, but a single run may
	// oscillate, so nothing is asserted beyond the bookkeeping.
	rng := testutil.NewRNG(2024)
	set := sample.FromColors(rng.Colors(1000))

	eng, err := New(8, WithMaxIterations(50))
	require.NoError(t, err)

	res, err := eng.Fit(context.Background(), set)
	require.NoError(t, err)
	require.Len(t, res.Shifts, res.Iterations)

	increases := 0
	for i := 1; i < len(res.Shifts); i++ {
		if res.Shifts[i] > res.Shifts[i-1] {
			increases++
		}
	}
	t.Logf("iterations=%d converged=%v shift increases=%d", res.Iterations, res.Converged, increases)
}

func TestFit_Masks(t *testing.T) {
	colors := []sample.Color{{0, 0, 0}, {255, 255, 255}, {0, 0, 1}, {255, 255, 254}}

	eng, err := New(2)
	require.NoError(t, err)
	res, err := eng.Fit(context.Background(), sample.FromColors(colors))
	require.NoError(t, err)

	dark := res.Mask(res.Labels[0])
	assert.Equal(t, []uint32{0, 2}, dark.ToArray())

	masks := res.Masks()
	require.Len(t, masks, 2)
	assert.Equal(t, uint64(2), masks[res.Labels[1]].GetCardinality())
	assert.True(t, masks[res.Labels[1]].Contains(3))
}

func TestFit_RecordsMetrics(t *testing.T) {
	metrics := &BasicMetricsCollector{}
	eng, err := New(2, WithMetricsCollector(metrics))
	require.NoError(t, err)

	_, err = eng.Quantize(context.Background(), []sample.Color{{0, 0, 0}, {9, 9, 9}})
	require.NoError(t, err)
	_, err = eng.Quantize(context.Background(), []sample.Color{{0, 0, 0}})
	require.Error(t, err)

	stats := metrics.GetStats()
	assert.Equal(t, int64(2), stats.FitCount)
	assert.Equal(t, int64(1), stats.FitErrors)
}

func TestFit_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	eng, err := New(2)
	require.NoError(t, err)
	_, err = eng.Quantize(ctx, []sample.Color{{0, 0, 0}, {9, 9, 9}})
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, ErrInvalidConfig)
}
