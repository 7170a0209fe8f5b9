package batch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"runtime"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/palette"
	"github.com/hupe1980/palette/artifact"
	"github.com/hupe1980/palette/blobstore"
	"github.com/hupe1980/palette/codec"
	"github.com/hupe1980/palette/imageio"
	"github.com/hupe1980/palette/report"
	"github.com/hupe1980/palette/resource"
	"github.com/hupe1980/palette/sample"
)

// ErrNoSource is returned when a Runner has no source store.
var ErrNoSource = errors.New("batch: no source store")

// Runner quantizes images read from Source and writes results to Dest.
type Runner struct {
	Source blobstore.BlobStore
	// Dest receives outputs. Defaults to Source.
	Dest blobstore.BlobStore

	// Clusters is the palette size of every job.
	Clusters int
	// EngineOptions are applied to the engine of every job.
	EngineOptions []palette.Option

	// Format of the quantized image. Empty keeps the input format; inputs
	// that cannot be encoded (WebP) fall back to PNG.
	Format        imageio.Format
	EncodeOptions []imageio.EncodeOption
	// OutputPrefix is prepended to every output name.
	OutputPrefix string

	// Artifact also writes a .pltq indexed artifact per image.
	Artifact    bool
	Compression artifact.Compression
	// Report also writes a .json palette report per image.
	Report bool
	Codec  codec.Codec

	// Controller bounds workers, memory and IO. Nil means GOMAXPROCS workers
	// and no other limits.
	Controller *resource.Controller
	Logger     *palette.Logger
	Metrics    palette.MetricsCollector
}

// JobResult describes one processed image.
type JobResult struct {
	Name       string
	Output     string
	Artifact   string
	Report     string
	Width      int
	Height     int
	Colors     int
	Iterations int
	Converged  bool
	Duration   time.Duration
	Err        error
}

// RunPrefix lists Source under prefix and runs every image found.
// Names whose extension is not an image format are skipped.
func (r *Runner) RunPrefix(ctx context.Context, prefix string) ([]JobResult, error) {
	if r.Source == nil {
		return nil, ErrNoSource
	}
	names, err := r.Source.List(ctx, prefix)
	if err != nil {
		return nil, fmt.Errorf("batch: list %q: %w", prefix, err)
	}

	images := names[:0]
	for _, name := range names {
		if _, err := imageio.FormatFromName(name); err == nil {
			images = append(images, name)
		}
	}
	return r.Run(ctx, images)
}

// Run processes names concurrently. Results keep the order of names. The
// returned error joins all job errors.
func (r *Runner) Run(ctx context.Context, names []string) ([]JobResult, error) {
	if r.Source == nil {
		return nil, ErrNoSource
	}
	if _, err := palette.New(r.Clusters, r.EngineOptions...); err != nil {
		return nil, err
	}

	start := time.Now()
	results := make([]JobResult, len(names))

	g := new(errgroup.Group)
	g.SetLimit(r.workers())
	for i, name := range names {
		g.Go(func() error {
			results[i] = r.process(ctx, name)
			return nil
		})
	}
	_ = g.Wait()

	var errs []error
	for _, res := range results {
		if res.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", res.Name, res.Err))
		}
	}
	r.logger().LogBatch(ctx, len(names), len(errs), time.Since(start))
	return results, errors.Join(errs...)
}

// Process runs a single job.
func (r *Runner) Process(ctx context.Context, name string) JobResult {
	return r.process(ctx, name)
}

func (r *Runner) process(ctx context.Context, name string) (res JobResult) {
	res.Name = name
	start := time.Now()
	defer func() {
		res.Duration = time.Since(start)
		r.logger().LogJob(ctx, name, res.Output, res.Colors, res.Duration, res.Err)
	}()

	if err := r.Controller.AcquireWorker(ctx); err != nil {
		res.Err = err
		return res
	}
	defer r.Controller.ReleaseWorker()

	src := r.Controller.Throttle(r.Source)
	dst := r.Controller.Throttle(r.dest())

	data, err := blobstore.Get(ctx, src, name)
	if err != nil {
		res.Err = fmt.Errorf("read: %w", err)
		return res
	}

	img, err := r.decode(data)
	if err != nil {
		res.Err = err
		return res
	}
	res.Width, res.Height = img.Width, img.Height

	mem := resource.FitBytes(img.Samples.Len(), r.Clusters)
	if err := r.Controller.AcquireMemory(ctx, mem); err != nil {
		res.Err = err
		return res
	}
	defer r.Controller.ReleaseMemory(mem)

	opts := []palette.Option{
		palette.WithLogger(r.logger().WithName(name)),
		palette.WithMetricsCollector(r.metrics()),
	}
	eng, err := palette.New(r.Clusters, append(opts, r.EngineOptions...)...)
	if err != nil {
		res.Err = err
		return res
	}
	fit, err := eng.Fit(ctx, img.Samples)
	if err != nil {
		res.Err = err
		return res
	}
	res.Iterations, res.Converged = fit.Iterations, fit.Converged

	colors := fit.Colors()
	res.Colors = sample.Distinct(colors)

	format := r.outputFormat(img.Format)
	encoded, err := r.encode(format, img.Width, img.Height, colors)
	if err != nil {
		res.Err = err
		return res
	}

	base := r.outputBase(name)
	res.Output = base + format.Extension()
	if err := dst.Put(ctx, res.Output, encoded); err != nil {
		res.Err = fmt.Errorf("write %s: %w", res.Output, err)
		return res
	}

	if r.Artifact {
		res.Artifact = base + ".pltq"
		if err := r.writeArtifact(ctx, dst, res.Artifact, fit, img); err != nil {
			res.Err = err
			return res
		}
	}
	if r.Report {
		res.Report = base + ".json"
		if err := r.writeReport(ctx, dst, res.Report, name, fit, img); err != nil {
			res.Err = err
			return res
		}
	}
	return res
}

func (r *Runner) decode(data []byte) (*imageio.Image, error) {
	start := time.Now()
	img, err := imageio.Decode(bytes.NewReader(data))
	if err != nil {
		r.metrics().RecordDecode("unknown", 0, time.Since(start), err)
		return nil, err
	}
	r.metrics().RecordDecode(string(img.Format), img.Samples.Len(), time.Since(start), nil)
	return img, nil
}

func (r *Runner) encode(format imageio.Format, width, height int, colors []sample.Color) ([]byte, error) {
	start := time.Now()
	var buf bytes.Buffer
	err := imageio.Encode(&buf, format, width, height, colors, r.EncodeOptions...)
	r.metrics().RecordEncode(string(format), buf.Len(), time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *Runner) writeArtifact(ctx context.Context, dst blobstore.BlobStore, name string, fit *palette.Result, img *imageio.Image) error {
	a, err := artifact.FromResult(fit, img.Width, img.Height)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := artifact.Write(&buf, a, r.Compression); err != nil {
		return err
	}
	if err := dst.Put(ctx, name, buf.Bytes()); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}

func (r *Runner) writeReport(ctx context.Context, dst blobstore.BlobStore, name, source string, fit *palette.Result, img *imageio.Image) error {
	rep := report.Build(fit)
	rep.Name = source
	rep.Width, rep.Height = img.Width, img.Height

	var buf bytes.Buffer
	if err := rep.Encode(&buf, r.Codec); err != nil {
		return err
	}
	if err := dst.Put(ctx, name, buf.Bytes()); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}

func (r *Runner) outputFormat(in imageio.Format) imageio.Format {
	switch {
	case r.Format != "":
		return r.Format
	case in == imageio.WEBP || in == "":
		return imageio.PNG
	default:
		return in
	}
}

// outputBase strips the extension of name and applies OutputPrefix.
func (r *Runner) outputBase(name string) string {
	return r.OutputPrefix + strings.TrimSuffix(name, path.Ext(name))
}

func (r *Runner) dest() blobstore.BlobStore {
	if r.Dest != nil {
		return r.Dest
	}
	return r.Source
}

func (r *Runner) workers() int {
	if n := r.Controller.Config().MaxWorkers; n > 0 {
		return int(n)
	}
	return runtime.GOMAXPROCS(0)
}

func (r *Runner) logger() *palette.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return palette.NoopLogger()
}

func (r *Runner) metrics() palette.MetricsCollector {
	if r.Metrics != nil {
		return r.Metrics
	}
	return palette.NoopMetricsCollector{}
}
