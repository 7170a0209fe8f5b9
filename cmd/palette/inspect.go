package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/hupe1980/palette/artifact"
	"github.com/hupe1980/palette/codec"
	"github.com/hupe1980/palette/imageio"
	"github.com/hupe1980/palette/report"
)

func runInspect(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("inspect", flag.ContinueOnError)
	fs.SetOutput(stderr)
	in := fs.String("in", "", "Artifact to inspect (.pltq)")
	render := fs.String("render", "", "Re-expand the artifact into an image file")
	asJSON := fs.Bool("json", false, "Print the palette report as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *in == "" {
		fs.Usage()
		return errors.New("-in is required")
	}

	data, err := readFile(ctx, *in)
	if err != nil {
		return err
	}
	a, err := artifact.Unmarshal(data)
	if err != nil {
		return err
	}

	rep := report.FromPalette(a.Palette, a.Labels)
	rep.Name = *in
	rep.Width, rep.Height = a.Width, a.Height

	if *asJSON {
		if err := rep.Encode(stdout, codec.JSON{}); err != nil {
			return err
		}
		fmt.Fprintln(stdout)
	} else {
		fmt.Fprintf(stdout, "%s: %dx%d, %d palette entries\n", *in, a.Width, a.Height, len(a.Palette))
		if err := rep.WriteText(stdout); err != nil {
			return err
		}
	}

	if *render != "" {
		format, err := outputFormat(*render)
		if err != nil {
			return err
		}
		var buf bytes.Buffer
		if err := imageio.Encode(&buf, format, a.Width, a.Height, a.Colors()); err != nil {
			return err
		}
		return writeFile(ctx, *render, buf.Bytes())
	}
	return nil
}
