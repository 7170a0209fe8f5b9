// Package palette quantizes the colors of an image with k-means clustering.
//
// The engine clusters a flat set of RGB samples into K representative colors
// and replaces every sample by the color of its cluster.
//
// # Quick Start
//
//	eng, err := palette.New(8)
//	if err != nil {
//	    return err
//	}
//	res, err := eng.Fit(ctx, sample.FromColors(pixels))
//	if err != nil {
//	    return err
//	}
//	quantized := res.Colors() // same length and order as pixels
//
// For the plain color-in, color-out contract use Quantize:
//
//	out, err := eng.Quantize(ctx, pixels)
//
// # Determinism
//
// Initial centroids are drawn from a random source owned by each Fit call and
// seeded from WithSeed (default 0). Equal input and configuration always give
// byte-identical output, and engines running concurrently never share random
// state.
//
// # Empty Clusters
//
// A cluster that receives no samples during an update keeps its previous
// centroid. This happens on ordinary images when K exceeds the number of
// visually distinct colors, and is never reported as an error.
//
// # Errors
//
// Configuration problems (K < 1, K > N, no samples, invalid iteration budget
// or tolerance) fail before any iteration with a *ConfigError that matches
// ErrInvalidConfig. Image decoding problems live in the imageio package and
// never match ErrInvalidConfig.
//
// # Related Packages
//
//   - sample: the flat color-sample arena
//   - imageio: image decoding and encoding
//   - artifact: compact palette + label storage (LZ4/ZSTD)
//   - report: palette summaries
//   - batch: quantizing many images from a blob store
package palette
