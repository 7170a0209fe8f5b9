// Package report summarizes a quantization result as a palette listing.
package report

import (
	"fmt"
	"io"
	"sort"

	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/hupe1980/palette"
	"github.com/hupe1980/palette/codec"
	"github.com/hupe1980/palette/sample"
)

// Cluster describes one palette entry.
type Cluster struct {
	Index     int          `json:"index"`
	Hex       string       `json:"hex"`
	RGB       sample.Color `json:"rgb"`
	Centroid  [3]float64   `json:"centroid"`
	Pixels    int          `json:"pixels"`
	Share     float64      `json:"share"`
	Lightness float64      `json:"lightness"`
}

// Report is a summary of a clustering run.
type Report struct {
	Name       string    `json:"name,omitempty"`
	Width      int       `json:"width,omitempty"`
	Height     int       `json:"height,omitempty"`
	Clusters   []Cluster `json:"clusters"`
	Iterations int       `json:"iterations"`
	Converged  bool      `json:"converged"`
}

// Build summarizes res. Clusters are listed by label index.
func Build(res *palette.Result) *Report {
	counts := res.Counts()
	pal := res.Palette()
	total := res.Len()

	r := &Report{
		Clusters:   make([]Cluster, len(pal)),
		Iterations: res.Iterations,
		Converged:  res.Converged,
	}
	for j, c := range pal {
		col := toColorful(c)
		l, _, _ := col.Lab()

		var share float64
		if total > 0 {
			share = float64(counts[j]) / float64(total)
		}
		r.Clusters[j] = Cluster{
			Index:     j,
			Hex:       col.Hex(),
			RGB:       c,
			Centroid:  res.Centroids[j],
			Pixels:    counts[j],
			Share:     share,
			Lightness: l,
		}
	}
	return r
}

// FromPalette summarizes a bare palette with per-entry pixel counts, as
// stored in an artifact.
func FromPalette(pal []sample.Color, labels []int) *Report {
	counts := make([]int, len(pal))
	for _, l := range labels {
		counts[l]++
	}

	r := &Report{Clusters: make([]Cluster, len(pal)), Converged: true}
	for j, c := range pal {
		col := toColorful(c)
		l, _, _ := col.Lab()

		var share float64
		if len(labels) > 0 {
			share = float64(counts[j]) / float64(len(labels))
		}
		r.Clusters[j] = Cluster{
			Index:     j,
			Hex:       col.Hex(),
			RGB:       c,
			Centroid:  [3]float64{float64(c[0]), float64(c[1]), float64(c[2])},
			Pixels:    counts[j],
			Share:     share,
			Lightness: l,
		}
	}
	return r
}

// Dominant returns the clusters ordered by pixel count, largest first.
// Ties keep label order.
func (r *Report) Dominant() []Cluster {
	out := append([]Cluster(nil), r.Clusters...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Pixels > out[j].Pixels
	})
	return out
}

// Encode writes the report with c; a nil codec uses codec.Default.
func (r *Report) Encode(w io.Writer, c codec.Codec) error {
	if c == nil {
		c = codec.Default
	}
	data, err := c.Marshal(r)
	if err != nil {
		return fmt.Errorf("report: %s marshal: %w", c.Name(), err)
	}
	_, err = w.Write(data)
	return err
}

// WriteText prints one line per cluster, largest first.
func (r *Report) WriteText(w io.Writer) error {
	for _, c := range r.Dominant() {
		if _, err := fmt.Fprintf(w, "%3d  %s  rgb(%3d,%3d,%3d)  %6.2f%%  %d px\n",
			c.Index, c.Hex, c.RGB[0], c.RGB[1], c.RGB[2], c.Share*100, c.Pixels); err != nil {
			return err
		}
	}
	return nil
}

func toColorful(c sample.Color) colorful.Color {
	return colorful.Color{R: float64(c[0]) / 255, G: float64(c[1]) / 255, B: float64(c[2]) / 255}
}
