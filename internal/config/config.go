// Package config loads the settings of the palette command: defaults, then a
// JSON file, then PALETTE_* environment variables.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

// Store types.
const (
	StoreLocal = "local"
	StoreS3    = "s3"
	StoreMinio = "minio"
)

// ErrInvalid is wrapped by every Validate failure.
var ErrInvalid = errors.New("config: invalid")

type Config struct {
	Source StoreConfig `json:"source"`
	// Dest defaults to Source when its type is empty.
	Dest StoreConfig `json:"dest"`

	Prefix       string `json:"prefix"`
	OutputPrefix string `json:"output_prefix"`

	Quantize QuantizeConfig `json:"quantize"`
	Output   OutputConfig   `json:"output"`
	Limits   LimitsConfig   `json:"limits"`
	Log      LogConfig      `json:"log"`

	// MetricsAddr serves Prometheus metrics during a run when set (e.g. ":2112").
	MetricsAddr string `json:"metrics_addr"`
}

type StoreConfig struct {
	Type      string `json:"type"`
	Path      string `json:"path"`
	Endpoint  string `json:"endpoint"`
	Bucket    string `json:"bucket"`
	AccessKey string `json:"access_key"`
	SecretKey string `json:"secret_key"`
	Region    string `json:"region"`
	UseSSL    bool   `json:"use_ssl"`
	RootPath  string `json:"root_path"`
}

// QuantizeConfig holds the clustering parameters applied to every image.
type QuantizeConfig struct {
	Clusters      int     `json:"clusters"`
	MaxIterations int     `json:"max_iterations"`
	Tolerance     float64 `json:"tolerance"`
	Seed          int64   `json:"seed"`
}

// OutputConfig selects what each job writes.
type OutputConfig struct {
	// Format of the quantized image; empty keeps the input format.
	Format      string `json:"format"`
	JPEGQuality int    `json:"jpeg_quality,omitempty"`
	Artifact    bool   `json:"artifact"`
	// Compression of artifact label blocks: none, lz4 or zstd.
	Compression string `json:"compression"`
	Report      bool   `json:"report"`
	// Codec of reports: json or go-json.
	Codec string `json:"codec"`
}

// LimitsConfig bounds a batch run. Zero means the default.
type LimitsConfig struct {
	Workers         int `json:"workers"`
	MemoryLimitMB   int `json:"memory_limit_mb"`
	IOLimitMBPerSec int `json:"io_limit_mb_per_sec"`
}

type LogConfig struct {
	Level  string `json:"level"`
	Format string `json:"format"` // text or json
}

// MemoryLimitBytes returns the memory limit in bytes, 0 for unlimited.
func (c LimitsConfig) MemoryLimitBytes() int64 {
	if c.MemoryLimitMB <= 0 {
		return 0
	}
	return int64(c.MemoryLimitMB) * 1024 * 1024
}

// IOLimitBytesPerSec returns the IO limit in bytes per second, 0 for unlimited.
func (c LimitsConfig) IOLimitBytesPerSec() int64 {
	if c.IOLimitMBPerSec <= 0 {
		return 0
	}
	return int64(c.IOLimitMBPerSec) * 1024 * 1024
}

// SlogLevel parses Level, defaulting to info.
func (c LogConfig) SlogLevel() slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.Level)); err != nil {
		return slog.LevelInfo
	}
	return l
}

// DestStore returns Dest, or Source when Dest is unset.
func (c *Config) DestStore() StoreConfig {
	if c.Dest.Type == "" {
		return c.Source
	}
	return c.Dest
}

func Default() *Config {
	return &Config{
		Source: StoreConfig{
			Type: StoreLocal,
			Path: ".",
		},
		OutputPrefix: "quantized/",
		Quantize: QuantizeConfig{
			Clusters:      8,
			MaxIterations: 100,
			Tolerance:     1e-4,
		},
		Output: OutputConfig{
			Compression: "zstd",
			Codec:       "go-json",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads path (or PALETTE_CONFIG when path is empty) over the defaults
// and applies environment overrides. It does not validate.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv("PALETTE_CONFIG")
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	storeEnv("PALETTE_SOURCE", &cfg.Source)
	storeEnv("PALETTE_DEST", &cfg.Dest)

	if env := os.Getenv("PALETTE_PREFIX"); env != "" {
		cfg.Prefix = env
	}
	if env, ok := os.LookupEnv("PALETTE_OUTPUT_PREFIX"); ok {
		cfg.OutputPrefix = env
	}
	if env := os.Getenv("PALETTE_METRICS_ADDR"); env != "" {
		cfg.MetricsAddr = env
	}
	if env := os.Getenv("PALETTE_LOG_LEVEL"); env != "" {
		cfg.Log.Level = env
	}
	if env := os.Getenv("PALETTE_LOG_FORMAT"); env != "" {
		cfg.Log.Format = env
	}
	if env := os.Getenv("PALETTE_OUTPUT_FORMAT"); env != "" {
		cfg.Output.Format = env
	}
	if env := os.Getenv("PALETTE_OUTPUT_ARTIFACT"); env != "" {
		cfg.Output.Artifact = parseBool(env)
	}
	if env := os.Getenv("PALETTE_OUTPUT_REPORT"); env != "" {
		cfg.Output.Report = parseBool(env)
	}
	if env := os.Getenv("PALETTE_OUTPUT_COMPRESSION"); env != "" {
		cfg.Output.Compression = env
	}

	ints := []struct {
		key string
		dst *int
	}{
		{"PALETTE_CLUSTERS", &cfg.Quantize.Clusters},
		{"PALETTE_MAX_ITERATIONS", &cfg.Quantize.MaxIterations},
		{"PALETTE_WORKERS", &cfg.Limits.Workers},
		{"PALETTE_MEMORY_LIMIT_MB", &cfg.Limits.MemoryLimitMB},
		{"PALETTE_IO_LIMIT_MB_PER_SEC", &cfg.Limits.IOLimitMBPerSec},
		{"PALETTE_JPEG_QUALITY", &cfg.Output.JPEGQuality},
	}
	for _, e := range ints {
		env := os.Getenv(e.key)
		if env == "" {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(env))
		if err != nil {
			return fmt.Errorf("config: %s: %w", e.key, err)
		}
		*e.dst = n
	}

	if env := os.Getenv("PALETTE_TOLERANCE"); env != "" {
		f, err := strconv.ParseFloat(strings.TrimSpace(env), 64)
		if err != nil {
			return fmt.Errorf("config: PALETTE_TOLERANCE: %w", err)
		}
		cfg.Quantize.Tolerance = f
	}
	if env := os.Getenv("PALETTE_SEED"); env != "" {
		n, err := strconv.ParseInt(strings.TrimSpace(env), 10, 64)
		if err != nil {
			return fmt.Errorf("config: PALETTE_SEED: %w", err)
		}
		cfg.Quantize.Seed = n
	}
	return nil
}

// storeEnv applies <prefix>_TYPE, _PATH, _ENDPOINT, _BUCKET, _ACCESS_KEY,
// _SECRET_KEY, _REGION, _USE_SSL and _ROOT.
func storeEnv(prefix string, s *StoreConfig) {
	fields := []struct {
		key string
		dst *string
	}{
		{"_TYPE", &s.Type},
		{"_PATH", &s.Path},
		{"_ENDPOINT", &s.Endpoint},
		{"_BUCKET", &s.Bucket},
		{"_ACCESS_KEY", &s.AccessKey},
		{"_SECRET_KEY", &s.SecretKey},
		{"_REGION", &s.Region},
		{"_ROOT", &s.RootPath},
	}
	for _, f := range fields {
		if env := os.Getenv(prefix + f.key); env != "" {
			*f.dst = env
		}
	}
	if env := os.Getenv(prefix + "_USE_SSL"); env != "" {
		s.UseSSL = parseBool(env)
	}
}

func parseBool(s string) bool {
	return s == "true" || s == "1"
}

// Validate checks the configuration for a batch run.
func (c *Config) Validate() error {
	var errs []error
	add := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...))
	}

	if err := c.Source.validate("source"); err != nil {
		errs = append(errs, err)
	}
	if c.Dest.Type != "" {
		if err := c.Dest.validate("dest"); err != nil {
			errs = append(errs, err)
		}
	}

	if c.Quantize.Clusters < 1 {
		add("quantize.clusters must be >= 1, got %d", c.Quantize.Clusters)
	}
	if c.Quantize.MaxIterations < 1 {
		add("quantize.max_iterations must be >= 1, got %d", c.Quantize.MaxIterations)
	}
	if c.Quantize.Tolerance < 0 {
		add("quantize.tolerance must be >= 0, got %g", c.Quantize.Tolerance)
	}

	switch c.Output.Compression {
	case "", "none", "lz4", "zstd":
	default:
		add("output.compression %q", c.Output.Compression)
	}
	switch c.Output.Codec {
	case "", "json", "go-json":
	default:
		add("output.codec %q", c.Output.Codec)
	}
	if q := c.Output.JPEGQuality; q < 0 || q > 100 {
		add("output.jpeg_quality must be within [0,100], got %d", q)
	}

	if c.Limits.Workers < 0 || c.Limits.MemoryLimitMB < 0 || c.Limits.IOLimitMBPerSec < 0 {
		add("limits must not be negative")
	}

	switch c.Log.Format {
	case "", "text", "json":
	default:
		add("log.format %q", c.Log.Format)
	}

	return errors.Join(errs...)
}

func (s StoreConfig) validate(name string) error {
	switch s.Type {
	case StoreLocal:
		if s.Path == "" {
			return fmt.Errorf("%w: %s.path is required for local stores", ErrInvalid, name)
		}
	case StoreS3:
		if s.Bucket == "" {
			return fmt.Errorf("%w: %s.bucket is required for s3 stores", ErrInvalid, name)
		}
	case StoreMinio:
		if s.Bucket == "" || s.Endpoint == "" {
			return fmt.Errorf("%w: %s.endpoint and %s.bucket are required for minio stores", ErrInvalid, name, name)
		}
	default:
		return fmt.Errorf("%w: %s.type %q", ErrInvalid, name, s.Type)
	}
	return nil
}
