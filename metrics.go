package palette

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus
// (see the promcollector package).
type MetricsCollector interface {
	// RecordFit is called after each clustering run.
	// iterations is zero when err is non-nil.
	RecordFit(k, samples, iterations int, converged bool, duration time.Duration, err error)

	// RecordDecode is called after an image has been decoded into samples.
	RecordDecode(format string, pixels int, duration time.Duration, err error)

	// RecordEncode is called after a quantized image has been encoded.
	RecordEncode(format string, bytes int, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordFit(int, int, int, bool, time.Duration, error) {}
func (NoopMetricsCollector) RecordDecode(string, int, time.Duration, error)     {}
func (NoopMetricsCollector) RecordEncode(string, int, time.Duration, error)     {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	FitCount        atomic.Int64
	FitErrors       atomic.Int64
	FitConverged    atomic.Int64
	FitIterations   atomic.Int64
	FitTotalNanos   atomic.Int64
	SamplesTotal    atomic.Int64
	DecodeCount     atomic.Int64
	DecodeErrors    atomic.Int64
	PixelsDecoded   atomic.Int64
	EncodeCount     atomic.Int64
	EncodeErrors    atomic.Int64
	BytesEncoded    atomic.Int64
	EncodeTotalNano atomic.Int64
}

// RecordFit implements MetricsCollector.
func (b *BasicMetricsCollector) RecordFit(k, samples, iterations int, converged bool, duration time.Duration, err error) {
	b.FitCount.Add(1)
	b.FitTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.FitErrors.Add(1)
		return
	}
	b.SamplesTotal.Add(int64(samples))
	b.FitIterations.Add(int64(iterations))
	if converged {
		b.FitConverged.Add(1)
	}
}

// RecordDecode implements MetricsCollector.
func (b *BasicMetricsCollector) RecordDecode(format string, pixels int, duration time.Duration, err error) {
	b.DecodeCount.Add(1)
	if err != nil {
		b.DecodeErrors.Add(1)
		return
	}
	b.PixelsDecoded.Add(int64(pixels))
}

// RecordEncode implements MetricsCollector.
func (b *BasicMetricsCollector) RecordEncode(format string, bytes int, duration time.Duration, err error) {
	b.EncodeCount.Add(1)
	b.EncodeTotalNano.Add(duration.Nanoseconds())
	if err != nil {
		b.EncodeErrors.Add(1)
		return
	}
	b.BytesEncoded.Add(int64(bytes))
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		FitCount:      b.FitCount.Load(),
		FitErrors:     b.FitErrors.Load(),
		FitConverged:  b.FitConverged.Load(),
		FitAvgNanos:   b.getAvgFitNanos(),
		FitAvgIters:   b.getAvgIterations(),
		SamplesTotal:  b.SamplesTotal.Load(),
		DecodeCount:   b.DecodeCount.Load(),
		DecodeErrors:  b.DecodeErrors.Load(),
		PixelsDecoded: b.PixelsDecoded.Load(),
		EncodeCount:   b.EncodeCount.Load(),
		EncodeErrors:  b.EncodeErrors.Load(),
		BytesEncoded:  b.BytesEncoded.Load(),
	}
}

func (b *BasicMetricsCollector) getAvgFitNanos() int64 {
	count := b.FitCount.Load()
	if count == 0 {
		return 0
	}
	return b.FitTotalNanos.Load() / count
}

func (b *BasicMetricsCollector) getAvgIterations() float64 {
	ok := b.FitCount.Load() - b.FitErrors.Load()
	if ok <= 0 {
		return 0
	}
	return float64(b.FitIterations.Load()) / float64(ok)
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	FitCount      int64
	FitErrors     int64
	FitConverged  int64
	FitAvgNanos   int64
	FitAvgIters   float64
	SamplesTotal  int64
	DecodeCount   int64
	DecodeErrors  int64
	PixelsDecoded int64
	EncodeCount   int64
	EncodeErrors  int64
	BytesEncoded  int64
}
