package kmeans

import (
	"context"
	"errors"
	"math"
	"math/rand"
)

var (
	// ErrInvalidK is returned when k is not positive.
	ErrInvalidK = errors.New("k must be positive")
	// ErrNoVectors is returned when the arena holds no vectors.
	ErrNoVectors = errors.New("no vectors to cluster")
	// ErrTooFewVectors is returned when k exceeds the number of vectors.
	ErrTooFewVectors = errors.New("k exceeds number of vectors")
	// ErrInvalidDimension is returned for a non-positive dimension or an arena
	// whose length is not a multiple of it.
	ErrInvalidDimension = errors.New("invalid dimension")
)

// Config controls a single training run.
type Config struct {
	K         int
	MaxIter   int
	Tolerance float64
	Seed      int64
}

// Result is the outcome of a training run.
type Result struct {
	// Centroids is the flattened centroid table (k * dim).
	Centroids []float64
	// Labels maps every vector to a centroid index in [0, k).
	Labels []int
	// Iterations is the number of completed assignment/update rounds.
	Iterations int
	// Converged reports whether the centroid shift fell below the tolerance.
	Converged bool
	// Shifts records the centroid movement of every round.
	Shifts []float64
	// Empty counts, per round, the clusters that received no vectors.
	Empty []int
}

// Train clusters vectors into cfg.K centroids using Lloyd's algorithm.
//
// Initial centroids are cfg.K distinct vectors drawn without replacement from
// a source seeded with cfg.Seed, so identical inputs give identical results.
// A cluster that receives no vectors keeps its previous centroid. A converged
// run keeps the centroids the final labels were assigned against; the update
// whose shift fell below the tolerance is discarded.
func Train(ctx context.Context, vectors []float64, dim int, cfg Config) (*Result, error) {
	if dim <= 0 || len(vectors)%dim != 0 {
		return nil, ErrInvalidDimension
	}
	if cfg.K <= 0 {
		return nil, ErrInvalidK
	}
	n := len(vectors) / dim
	if n == 0 {
		return nil, ErrNoVectors
	}
	if cfg.K > n {
		return nil, ErrTooFewVectors
	}
	if cfg.MaxIter <= 0 {
		cfg.MaxIter = 1
	}

	k := cfg.K
	centroids := initCentroids(vectors, dim, k, rand.New(rand.NewSource(cfg.Seed)))
	next := make([]float64, k*dim)
	labels := make([]int, n)
	counts := make([]int, k)

	res := &Result{Labels: labels}

	for iter := 0; iter < cfg.MaxIter; iter++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		Assign(vectors, centroids, dim, labels)
		empty := Update(vectors, labels, centroids, next, counts, dim)

		shift := Shift(centroids, next)
		res.Iterations++
		res.Shifts = append(res.Shifts, shift)
		res.Empty = append(res.Empty, empty)

		if shift < cfg.Tolerance {
			res.Converged = true
			break
		}
		centroids, next = next, centroids
	}

	res.Centroids = centroids
	return res, nil
}

// initCentroids copies k distinct randomly chosen vectors into a new table.
func initCentroids(vectors []float64, dim, k int, rng *rand.Rand) []float64 {
	n := len(vectors) / dim
	centroids := make([]float64, k*dim)
	perm := rng.Perm(n)
	for i := 0; i < k; i++ {
		copy(centroids[i*dim:(i+1)*dim], vectors[perm[i]*dim:(perm[i]+1)*dim])
	}
	return centroids
}

// Assign writes the nearest centroid of every vector into labels.
//
// Distances are compared squared. On ties the lowest centroid index wins.
func Assign(vectors, centroids []float64, dim int, labels []int) {
	n := len(vectors) / dim
	for i := 0; i < n; i++ {
		labels[i] = Nearest(vectors[i*dim:(i+1)*dim], centroids, dim)
	}
}

// Nearest returns the index of the centroid closest to vec.
func Nearest(vec, centroids []float64, dim int) int {
	k := len(centroids) / dim
	best := 0
	minDist := math.Inf(1)
	for j := 0; j < k; j++ {
		d := SquaredL2(vec, centroids[j*dim:(j+1)*dim])
		if d < minDist {
			minDist = d
			best = j
		}
	}
	return best
}

// Update recomputes every centroid as the mean of its assigned vectors and
// writes the result into next. counts is scratch space of length k.
//
// Empty clusters copy their value from prev. It returns the number of empty
// clusters.
func Update(vectors []float64, labels []int, prev, next []float64, counts []int, dim int) int {
	for i := range next {
		next[i] = 0
	}
	for i := range counts {
		counts[i] = 0
	}

	for i, c := range labels {
		vec := vectors[i*dim : (i+1)*dim]
		dst := next[c*dim : (c+1)*dim]
		for d := range dst {
			dst[d] += vec[d]
		}
		counts[c]++
	}

	empty := 0
	for j, cnt := range counts {
		dst := next[j*dim : (j+1)*dim]
		if cnt == 0 {
			copy(dst, prev[j*dim:(j+1)*dim])
			empty++
			continue
		}
		scale := 1.0 / float64(cnt)
		for d := range dst {
			dst[d] *= scale
		}
	}
	return empty
}

// Shift returns the L2 norm of the difference between two flattened centroid
// tables.
func Shift(a, b []float64) float64 {
	return math.Sqrt(SquaredL2(a, b))
}

// SquaredL2 returns the squared Euclidean distance between a and b.
func SquaredL2(a, b []float64) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}

// Quantize replaces every label with its centroid, writing into dst
// (len(labels) * dim).
func Quantize(centroids []float64, labels []int, dim int, dst []float64) {
	for i, c := range labels {
		copy(dst[i*dim:(i+1)*dim], centroids[c*dim:(c+1)*dim])
	}
}
