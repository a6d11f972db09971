// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package config

import (
	"runtime"
	"time"

	"github.com/caarlos0/env"
)

type Config struct {
	DefaultWorkers        int     `env:"DEFAULT_WORKERS"         envDefault:"0"       envDocs:"number of solver workers when the problem does not bound it (0 means number of CPUs)"`
	MaxWorkers            int     `env:"MAX_WORKERS"             envDefault:"64"      envDocs:"hard upper bound of solver workers per solve"`
	ProgressIntervalMs    int     `env:"PROGRESS_INTERVAL_MS"    envDefault:"100"     envDocs:"interval in millisecond between progress snapshots"`
	ProgressReportBatch   int     `env:"PROGRESS_REPORT_BATCH"   envDefault:"4096"    envDocs:"number of combinations a worker enumerates before flushing its counters"`
	CancelCheckInterval   int     `env:"CANCEL_CHECK_INTERVAL"   envDefault:"1024"    envDocs:"number of combinations a worker enumerates between cancellation checks"`
	DefaultTopN           int     `env:"DEFAULT_TOP_N"           envDefault:"5"       envDocs:"number of builds returned when the problem does not set it"`
	DefaultPlotResolution int     `env:"DEFAULT_PLOT_RESOLUTION" envDefault:"100"     envDocs:"maximum number of plot points when the problem does not set it"`
	DefaultPlotStep       float64 `env:"DEFAULT_PLOT_STEP"       envDefault:"0.001"   envDocs:"finest plot axis bucket width when the problem does not set it"`
	GRPCPort              int     `env:"GRPC_PORT"               envDefault:"6565"    envDocs:"port of the optimizer gRPC service"`
	MetricsPort           int     `env:"METRICS_PORT"            envDefault:"8080"    envDocs:"port of the prometheus metrics endpoint"`
	ZipkinEndpoint        string  `env:"ZIPKIN_ENDPOINT"         envDefault:""        envDocs:"zipkin collector url, tracing is exported only when set"`
	LogLevel              string  `env:"LOG_LEVEL"               envDefault:"info"    envDocs:"logrus level"`
	ServiceName           string  `env:"SERVICE_NAME"            envDefault:"build-optimizer" envDocs:"service name used for tracing"`
}

// Load parses the configuration from the environment.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the configuration with every field at its documented default.
func Default() *Config {
	return &Config{
		MaxWorkers:            64,
		ProgressIntervalMs:    100,
		ProgressReportBatch:   4096,
		CancelCheckInterval:   1024,
		DefaultTopN:           5,
		DefaultPlotResolution: 100,
		DefaultPlotStep:       0.001,
		GRPCPort:              6565,
		MetricsPort:           8080,
		LogLevel:              "info",
		ServiceName:           "build-optimizer",
	}
}

// Workers resolves the number of workers for a solve, bound is the problem's own limit (0 means unbounded).
func (c *Config) Workers(bound int) int {
	workers := c.DefaultWorkers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if bound > 0 && bound < workers {
		workers = bound
	}
	if c.MaxWorkers > 0 && workers > c.MaxWorkers {
		workers = c.MaxWorkers
	}
	return max(workers, 1)
}

func (c *Config) ProgressInterval() time.Duration {
	if c.ProgressIntervalMs <= 0 {
		return 100 * time.Millisecond
	}
	return time.Duration(c.ProgressIntervalMs) * time.Millisecond
}
