package testutil

import (
	"image"
	"image/color"
	"math/rand"
	"sync"

	"github.com/hupe1980/palette/sample"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Colors returns n uniformly distributed RGB colors.
func (r *RNG) Colors(n int) []sample.Color {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]sample.Color, n)
	for i := range out {
		v := r.rand.Uint32()
		out[i] = sample.Color{uint8(v), uint8(v >> 8), uint8(v >> 16)}
	}
	return out
}

// ClusteredColors returns n colors spread around centers.
// Each channel deviates from its center by at most spread.
func (r *RNG) ClusteredColors(centers []sample.Color, n, spread int) []sample.Color {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]sample.Color, n)
	for i := range out {
		c := centers[r.rand.Intn(len(centers))]
		for ch := 0; ch < sample.Channels; ch++ {
			v := int(c[ch])
			if spread > 0 {
				v += r.rand.Intn(2*spread+1) - spread
			}
			out[i][ch] = clamp(v)
		}
	}
	return out
}

// Image returns a width x height opaque image whose pixels are clustered
// around centers.
func (r *RNG) Image(width, height int, centers []sample.Color, spread int) *image.NRGBA {
	colors := r.ClusteredColors(centers, width*height, spread)
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			c := colors[y*width+x]
			img.SetNRGBA(x, y, color.NRGBA{R: c[0], G: c[1], B: c[2], A: 0xff})
		}
	}
	return img
}

func clamp(v int) uint8 {
	switch {
	case v < 0:
		return 0
	case v > 255:
		return 255
	default:
		return uint8(v)
	}
}
