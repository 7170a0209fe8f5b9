// Package promcollector exports palette metrics to Prometheus.
package promcollector

import (
	"time"

	"github.com/hupe1980/palette"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "palette"

// Collector implements palette.MetricsCollector with Prometheus metrics.
type Collector struct {
	opLatency  *prometheus.HistogramVec
	ops        *prometheus.CounterVec
	iterations prometheus.Histogram
	converged  *prometheus.CounterVec
	samples    prometheus.Counter
	pixels     *prometheus.CounterVec
	bytes      *prometheus.CounterVec
}

var _ palette.MetricsCollector = (*Collector)(nil)

// New creates a Collector and registers its metrics with reg.
// A nil reg registers with prometheus.DefaultRegisterer.
func New(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	c := &Collector{
		opLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_latency_seconds",
			Help:      "Latency of fit, decode and encode operations",
			Buckets:   prometheus.DefBuckets,
		}, []string{"op", "status"}),
		ops: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operations_total",
			Help:      "Total operations by type and status",
		}, []string{"op", "status"}),
		iterations: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fit_iterations",
			Help:      "Lloyd iterations per successful fit",
			Buckets:   []float64{1, 2, 5, 10, 20, 50, 100, 200, 500},
		}),
		converged: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fit_results_total",
			Help:      "Successful fits by convergence outcome",
		}, []string{"converged"}),
		samples: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "samples_clustered_total",
			Help:      "Color samples clustered by successful fits",
		}),
		pixels: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pixels_decoded_total",
			Help:      "Pixels decoded by image format",
		}, []string{"format"}),
		bytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bytes_encoded_total",
			Help:      "Bytes of encoded output by format",
		}, []string{"format"}),
	}

	for _, m := range []prometheus.Collector{c.opLatency, c.ops, c.iterations, c.converged, c.samples, c.pixels, c.bytes} {
		if err := reg.Register(m); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// MustNew is like New but panics on registration errors.
func MustNew(reg prometheus.Registerer) *Collector {
	c, err := New(reg)
	if err != nil {
		panic(err)
	}
	return c
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

func (c *Collector) observe(op string, d time.Duration, err error) {
	s := status(err)
	c.opLatency.WithLabelValues(op, s).Observe(d.Seconds())
	c.ops.WithLabelValues(op, s).Inc()
}

// RecordFit implements palette.MetricsCollector.
func (c *Collector) RecordFit(_, samples, iterations int, converged bool, d time.Duration, err error) {
	c.observe("fit", d, err)
	if err != nil {
		return
	}
	c.iterations.Observe(float64(iterations))
	c.samples.Add(float64(samples))
	if converged {
		c.converged.WithLabelValues("true").Inc()
	} else {
		c.converged.WithLabelValues("false").Inc()
	}
}

// RecordDecode implements palette.MetricsCollector.
func (c *Collector) RecordDecode(format string, pixels int, d time.Duration, err error) {
	c.observe("decode", d, err)
	if err == nil {
		c.pixels.WithLabelValues(format).Add(float64(pixels))
	}
}

// RecordEncode implements palette.MetricsCollector.
func (c *Collector) RecordEncode(format string, bytes int, d time.Duration, err error) {
	c.observe("encode", d, err)
	if err == nil {
		c.bytes.WithLabelValues(format).Add(float64(bytes))
	}
}
