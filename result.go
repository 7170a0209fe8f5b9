package palette

import (
	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/palette/internal/kmeans"
	"github.com/hupe1980/palette/sample"
)

// Result holds the outcome of a Fit call.
type Result struct {
	// Centroids holds one mean color per cluster.
	Centroids [][sample.Channels]float64
	// Labels maps every sample index to its cluster index.
	Labels []int
	// Iterations is the number of completed assignment/update rounds.
	Iterations int
	// Converged is false when the iteration budget ran out first.
	Converged bool
	// Shifts records the centroid movement of every round.
	Shifts []float64

	flat []float64
}

func newResult(km *kmeans.Result) *Result {
	k := len(km.Centroids) / sample.Channels
	centroids := make([][sample.Channels]float64, k)
	for j := range centroids {
		copy(centroids[j][:], km.Centroids[j*sample.Channels:(j+1)*sample.Channels])
	}
	return &Result{
		Centroids:  centroids,
		Labels:     km.Labels,
		Iterations: km.Iterations,
		Converged:  km.Converged,
		Shifts:     km.Shifts,
		flat:       km.Centroids,
	}
}

// Len returns the number of quantized samples.
func (r *Result) Len() int { return len(r.Labels) }

// Quantized returns the exact centroid value of every sample.
func (r *Result) Quantized() *sample.Set {
	out := sample.NewSet(len(r.Labels))
	kmeans.Quantize(r.flat, r.Labels, sample.Channels, out.Floats())
	return out
}

// Colors returns the 8-bit quantized colors in input order.
func (r *Result) Colors() []sample.Color {
	pal := r.Palette()
	out := make([]sample.Color, len(r.Labels))
	for i, c := range r.Labels {
		out[i] = pal[c]
	}
	return out
}

// Palette returns the 8-bit color of every cluster, indexed by label.
func (r *Result) Palette() []sample.Color {
	pal := make([]sample.Color, len(r.Centroids))
	for j := range r.Centroids {
		pal[j] = sample.ToColor(r.Centroids[j][:])
	}
	return pal
}

// Counts returns the number of samples per cluster.
func (r *Result) Counts() []int {
	counts := make([]int, len(r.Centroids))
	for _, c := range r.Labels {
		counts[c]++
	}
	return counts
}

// Requantize assigns samples to the final centroids and returns their
// centroid values. Feeding Quantized() back through Requantize returns it
// unchanged.
func (r *Result) Requantize(samples *sample.Set) *sample.Set {
	labels := make([]int, samples.Len())
	kmeans.Assign(samples.Floats(), r.flat, sample.Channels, labels)
	out := sample.NewSet(len(labels))
	kmeans.Quantize(r.flat, labels, sample.Channels, out.Floats())
	return out
}

// Mask returns the indices of the samples labeled cluster.
func (r *Result) Mask(cluster int) *roaring.Bitmap {
	bm := roaring.New()
	for i, c := range r.Labels {
		if c == cluster {
			bm.Add(uint32(i))
		}
	}
	return bm
}

// Masks returns one bitmap per cluster, indexed by label.
func (r *Result) Masks() []*roaring.Bitmap {
	masks := make([]*roaring.Bitmap, len(r.Centroids))
	for j := range masks {
		masks[j] = roaring.New()
	}
	for i, c := range r.Labels {
		masks[c].Add(uint32(i))
	}
	for _, m := range masks {
		m.RunOptimize()
	}
	return masks
}
