// Package sample defines the flat color-sample arena shared by the clustering
// engine and the image adapters.
//
// A Set stores N RGB samples as N*3 contiguous float64 values. Samples are
// indexed by position; the set carries no clustering semantics beyond order.
package sample

import (
	"fmt"
	"math"
)

// Channels is the number of color channels per sample.
const Channels = 3

// Color is a single 8-bit RGB pixel.
type Color [Channels]uint8

// Set is an ordered sequence of color samples stored in a flat float64 arena.
//
// Channel values are kept as float64 so that summing many samples during
// centroid averaging cannot overflow.
type Set struct {
	data []float64
}

// NewSet allocates a zeroed set of n samples.
func NewSet(n int) *Set {
	if n < 0 {
		n = 0
	}
	return &Set{data: make([]float64, n*Channels)}
}

// FromColors copies 8-bit colors into a new set.
func FromColors(colors []Color) *Set {
	s := NewSet(len(colors))
	for i, c := range colors {
		off := i * Channels
		s.data[off] = float64(c[0])
		s.data[off+1] = float64(c[1])
		s.data[off+2] = float64(c[2])
	}
	return s
}

// FromFloats wraps a flat arena of channel values.
// The slice is used directly, not copied.
func FromFloats(data []float64) (*Set, error) {
	if len(data)%Channels != 0 {
		return nil, fmt.Errorf("sample: arena length %d is not a multiple of %d", len(data), Channels)
	}
	return &Set{data: data}, nil
}

// Len returns the number of samples.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.data) / Channels
}

// At returns the channel values of sample i.
// The returned slice aliases the arena and must not be modified.
func (s *Set) At(i int) []float64 {
	off := i * Channels
	return s.data[off : off+Channels : off+Channels]
}

// Set overwrites sample i.
func (s *Set) Set(i int, v []float64) {
	copy(s.data[i*Channels:(i+1)*Channels], v)
}

// Floats returns the underlying arena.
func (s *Set) Floats() []float64 {
	if s == nil {
		return nil
	}
	return s.data
}

// Clone returns a deep copy of the set.
func (s *Set) Clone() *Set {
	data := make([]float64, len(s.data))
	copy(data, s.data)
	return &Set{data: data}
}

// Color converts sample i to 8 bits.
func (s *Set) Color(i int) Color {
	return ToColor(s.At(i))
}

// Colors converts every sample to 8 bits, preserving order.
func (s *Set) Colors() []Color {
	out := make([]Color, s.Len())
	for i := range out {
		out[i] = s.Color(i)
	}
	return out
}

// ToColor converts channel values to 8 bits.
//
// Values are clamped to [0, 255] and truncated toward zero, so a centroid of
// 254.5 becomes 254. NaN maps to 0.
func ToColor(v []float64) Color {
	var c Color
	for i := 0; i < Channels && i < len(v); i++ {
		c[i] = toChannel(v[i])
	}
	return c
}

func toChannel(v float64) uint8 {
	switch {
	case math.IsNaN(v), v <= 0:
		return 0
	case v >= math.MaxUint8:
		return math.MaxUint8
	default:
		return uint8(v)
	}
}

// Distinct returns the number of distinct colors in colors.
func Distinct(colors []Color) int {
	seen := make(map[Color]struct{}, len(colors))
	for _, c := range colors {
		seen[c] = struct{}{}
	}
	return len(seen)
}
