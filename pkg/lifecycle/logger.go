/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package lifecycle owns process-level setup and teardown: telemetry
// pipelines and running an HTTP server until a shutdown signal arrives.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"

	"github.com/carverauto/assetbridge/pkg/logger"
)

// TelemetryOptions selects which pipelines InitializeTelemetry starts.
type TelemetryOptions struct {
	ServiceName    string
	Logging        *logger.Config
	EnableMetrics  bool
	ExportInterval time.Duration
}

// Telemetry is the result of InitializeTelemetry. Meter is nil when metric
// export is disabled or has no endpoint.
type Telemetry struct {
	Logger logger.Logger
	Meter  metric.Meter
}

// InitializeTelemetry builds the service logger and installs the global tracer
// and, when enabled, meter providers. Tracing always installs a provider so
// span contexts exist for log correlation even without an exporter.
func InitializeTelemetry(ctx context.Context, opts TelemetryOptions) (*Telemetry, error) {
	cfg := opts.Logging
	if cfg == nil {
		cfg = logger.DefaultConfig()
	}

	if opts.ServiceName != "" && cfg.OTel.ServiceName == "" {
		cfg.OTel.ServiceName = opts.ServiceName
	}

	if err := logger.Init(ctx, cfg); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	log, err := logger.New(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	t := &Telemetry{Logger: log}

	if _, err := logger.InitializeTracing(ctx, logger.TracingConfig{
		ServiceName: opts.ServiceName,
		Logger:      log,
		OTel:        &cfg.OTel,
	}); err != nil {
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}

	if !opts.EnableMetrics {
		return t, nil
	}

	_, err = logger.InitializeMetrics(ctx, logger.MetricsConfig{
		OTel:           &cfg.OTel,
		ExportInterval: opts.ExportInterval,
	})

	switch {
	case errors.Is(err, logger.ErrOTelMetricsDisabled):
		log.Warn().Msg("Metric export requested but logging.otel has no endpoint; keeping in-process counters only")
	case err != nil:
		return nil, fmt.Errorf("failed to initialize metrics: %w", err)
	default:
		t.Meter = otel.Meter(opts.ServiceName)
	}

	return t, nil
}

// ShutdownTelemetry flushes every OTLP pipeline started by InitializeTelemetry.
func ShutdownTelemetry() error {
	return logger.Shutdown()
}
