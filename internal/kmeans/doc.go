// Package kmeans implements Lloyd's k-means over a flat float64 arena.
//
// Used by the palette engine to cluster color samples. Vectors, centroids and
// labels are plain slices indexed by position; nothing is allocated per sample.
package kmeans
