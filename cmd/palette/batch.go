package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hupe1980/palette"
	"github.com/hupe1980/palette/artifact"
	"github.com/hupe1980/palette/batch"
	"github.com/hupe1980/palette/codec"
	"github.com/hupe1980/palette/imageio"
	"github.com/hupe1980/palette/internal/config"
	"github.com/hupe1980/palette/promcollector"
	"github.com/hupe1980/palette/resource"
)

func runBatch(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("batch", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "Path to config file (default $PALETTE_CONFIG)")
	prefix := fs.String("prefix", "", "Source prefix (overrides config)")
	k := fs.Int("k", 0, "Number of colors (overrides config)")
	workers := fs.Int("workers", 0, "Concurrent jobs (overrides config)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if *prefix != "" {
		cfg.Prefix = *prefix
	}
	if *k > 0 {
		cfg.Quantize.Clusters = *k
	}
	if *workers > 0 {
		cfg.Limits.Workers = *workers
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	runner, err := newRunner(ctx, cfg, stderr)
	if err != nil {
		return err
	}

	if cfg.MetricsAddr != "" {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		mc, err := promcollector.New(reg)
		if err != nil {
			return err
		}
		runner.Metrics = mc

		shutdown, err := serveMetrics(cfg.MetricsAddr, reg, runner.Logger)
		if err != nil {
			return err
		}
		defer shutdown()
	}

	start := time.Now()
	results, err := runner.RunPrefix(ctx, cfg.Prefix)
	failed := 0
	for _, res := range results {
		if res.Err != nil {
			failed++
			fmt.Fprintf(stdout, "FAIL %s: %v\n", res.Name, res.Err)
			continue
		}
		fmt.Fprintf(stdout, "ok   %s -> %s (%d colors, %d iterations)\n", res.Name, res.Output, res.Colors, res.Iterations)
	}
	fmt.Fprintf(stdout, "%d images, %d failed, %s\n", len(results), failed, time.Since(start).Round(time.Millisecond))
	if bm, ok := runner.Metrics.(*palette.BasicMetricsCollector); ok {
		stats := bm.GetStats()
		fmt.Fprintf(stdout, "%d pixels decoded, %.1f iterations per fit, %d bytes encoded\n",
			stats.PixelsDecoded, stats.FitAvgIters, stats.BytesEncoded)
	}
	if err != nil {
		return fmt.Errorf("%d of %d jobs failed", failed, len(results))
	}
	return nil
}

func newRunner(ctx context.Context, cfg *config.Config, logOut io.Writer) (*batch.Runner, error) {
	src, err := openStore(ctx, cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("source store: %w", err)
	}
	dst, err := openStore(ctx, cfg.DestStore())
	if err != nil {
		return nil, fmt.Errorf("dest store: %w", err)
	}

	comp, err := artifact.ParseCompression(cfg.Output.Compression)
	if err != nil {
		return nil, err
	}
	c, ok := codec.ByName(cfg.Output.Codec)
	if !ok {
		return nil, fmt.Errorf("unknown codec %q", cfg.Output.Codec)
	}

	var format imageio.Format
	if cfg.Output.Format != "" {
		if format, err = imageio.FormatFromName("out." + cfg.Output.Format); err != nil {
			return nil, err
		}
	}
	var encOpts []imageio.EncodeOption
	if cfg.Output.JPEGQuality > 0 {
		encOpts = append(encOpts, imageio.WithJPEGQuality(cfg.Output.JPEGQuality))
	}

	logger := palette.NewTextLogger(logOut, cfg.Log.SlogLevel())
	if cfg.Log.Format == "json" {
		logger = palette.NewJSONLogger(logOut, cfg.Log.SlogLevel())
	}

	return &batch.Runner{
		Source:   src,
		Dest:     dst,
		Clusters: cfg.Quantize.Clusters,
		EngineOptions: []palette.Option{
			palette.WithMaxIterations(cfg.Quantize.MaxIterations),
			palette.WithTolerance(cfg.Quantize.Tolerance),
			palette.WithSeed(cfg.Quantize.Seed),
		},
		Format:        format,
		EncodeOptions: encOpts,
		OutputPrefix:  cfg.OutputPrefix,
		Artifact:      cfg.Output.Artifact,
		Compression:   comp,
		Report:        cfg.Output.Report,
		Codec:         c,
		Controller: resource.NewController(resource.Config{
			MaxWorkers:         int64(cfg.Limits.Workers),
			MemoryLimitBytes:   cfg.Limits.MemoryLimitBytes(),
			IOLimitBytesPerSec: cfg.Limits.IOLimitBytesPerSec(),
		}),
		Logger:  logger,
		Metrics: &palette.BasicMetricsCollector{},
	}, nil
}

// serveMetrics exposes reg on addr until the returned function is called.
func serveMetrics(addr string, reg *prometheus.Registry, logger *palette.Logger) (func(), error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("metrics listener: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", "error", err)
		}
	}()
	logger.Info("serving metrics", "addr", ln.Addr().String())

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}, nil
}
