// Package testutil provides testing utilities for palette.
//
// This package is intended for use in tests and benchmarks only.
// It provides a seeded, thread-safe random source for generating color
// samples and synthetic images.
//
// # Random Colors
//
//	rng := testutil.NewRNG(seed)
//	colors := rng.Colors(1024)                          // uniform RGB
//	cloud := rng.ClusteredColors(centers, 1024, 8)      // noisy copies of centers
//	img := rng.Image(64, 48, centers, 8)                // *image.NRGBA
package testutil
