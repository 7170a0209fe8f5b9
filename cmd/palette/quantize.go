package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"

	"github.com/hupe1980/palette"
	"github.com/hupe1980/palette/artifact"
	"github.com/hupe1980/palette/codec"
	"github.com/hupe1980/palette/imageio"
	"github.com/hupe1980/palette/report"
)

func runQuantize(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("quantize", flag.ContinueOnError)
	fs.SetOutput(stderr)
	in := fs.String("in", "", "Input image (png, jpeg, gif, bmp, tiff, webp)")
	out := fs.String("out", "", "Output image; the format follows the extension")
	k := fs.Int("k", 8, "Number of colors")
	maxIter := fs.Int("max-iter", palette.DefaultMaxIterations, "Maximum clustering iterations")
	tol := fs.Float64("tol", palette.DefaultTolerance, "Convergence tolerance on centroid shift")
	seed := fs.Int64("seed", palette.DefaultSeed, "Seed for centroid initialization")
	quality := fs.Int("quality", 0, "JPEG quality (1-100, 0 for the default)")
	artifactPath := fs.String("artifact", "", "Also write an indexed .pltq artifact")
	compression := fs.String("compression", "zstd", "Artifact compression: none, lz4, zstd")
	reportPath := fs.String("report", "", "Also write a JSON palette report")
	codecName := fs.String("codec", "", "Report codec: json, go-json")
	verbose := fs.Bool("v", false, "Log clustering progress to stderr")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *in == "" || *out == "" {
		fs.Usage()
		return errors.New("-in and -out are required")
	}

	format, err := outputFormat(*out)
	if err != nil {
		return err
	}
	comp, err := artifact.ParseCompression(*compression)
	if err != nil {
		return err
	}
	c, ok := codec.ByName(*codecName)
	if !ok {
		return fmt.Errorf("unknown codec %q", *codecName)
	}

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	eng, err := palette.New(*k,
		palette.WithMaxIterations(*maxIter),
		palette.WithTolerance(*tol),
		palette.WithSeed(*seed),
		palette.WithLogger(palette.NewTextLogger(stderr, level).WithName(*in)),
	)
	if err != nil {
		return err
	}

	data, err := readFile(ctx, *in)
	if err != nil {
		return err
	}
	img, err := imageio.Decode(bytes.NewReader(data))
	if err != nil {
		return err
	}

	res, err := eng.Fit(ctx, img.Samples)
	if err != nil {
		return err
	}

	var opts []imageio.EncodeOption
	if *quality > 0 {
		opts = append(opts, imageio.WithJPEGQuality(*quality))
	}
	var buf bytes.Buffer
	if err := imageio.Encode(&buf, format, img.Width, img.Height, res.Colors(), opts...); err != nil {
		return err
	}
	if err := writeFile(ctx, *out, buf.Bytes()); err != nil {
		return err
	}

	if *artifactPath != "" {
		a, err := artifact.FromResult(res, img.Width, img.Height)
		if err != nil {
			return err
		}
		buf.Reset()
		if err := artifact.Write(&buf, a, comp); err != nil {
			return err
		}
		if err := writeFile(ctx, *artifactPath, buf.Bytes()); err != nil {
			return err
		}
	}

	rep := report.Build(res)
	rep.Name = *in
	rep.Width, rep.Height = img.Width, img.Height
	if *reportPath != "" {
		buf.Reset()
		if err := rep.Encode(&buf, c); err != nil {
			return err
		}
		if err := writeFile(ctx, *reportPath, buf.Bytes()); err != nil {
			return err
		}
	}

	fmt.Fprintf(stdout, "%s: %dx%d, %d colors, %d iterations, converged=%t\n",
		*out, img.Width, img.Height, len(rep.Clusters), res.Iterations, res.Converged)
	return rep.WriteText(stdout)
}

// outputFormat resolves the image format of path and rejects formats that can
// only be decoded.
func outputFormat(path string) (imageio.Format, error) {
	format, err := imageio.FormatFromName(path)
	if err != nil {
		return "", err
	}
	if format == imageio.WEBP {
		return "", fmt.Errorf("%w: %s output", imageio.ErrUnsupportedFormat, format)
	}
	return format, nil
}
