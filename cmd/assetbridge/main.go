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

// Command assetbridge receives inventory check-in and check-out webhooks and
// mirrors the assignee and location onto the matching managed computer.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/carverauto/assetbridge/pkg/audit"
	"github.com/carverauto/assetbridge/pkg/bridge"
	"github.com/carverauto/assetbridge/pkg/bridge/integrations/jamf"
	"github.com/carverauto/assetbridge/pkg/bridge/integrations/snipeit"
	"github.com/carverauto/assetbridge/pkg/config"
	"github.com/carverauto/assetbridge/pkg/lifecycle"
	"github.com/carverauto/assetbridge/pkg/version"
)

const serviceName = "assetbridge"

func main() {
	if err := run(); err != nil {
		log.Fatalf("assetbridge: %v", err)
	}
}

func run() error {
	configPath := flag.String("config", "/etc/assetbridge/assetbridge.json", "Path to config file")
	envFile := flag.String("env-file", ".env", "Optional dotenv file loaded before the config")
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String())
		return nil
	}

	if err := config.LoadDotEnv(true, *envFile); err != nil {
		return err
	}

	ctx := context.Background()

	var cfg bridge.Config

	if err := config.NewConfig(nil).LoadAndValidate(ctx, *configPath, &cfg); err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	tel, err := lifecycle.InitializeTelemetry(ctx, lifecycle.TelemetryOptions{
		ServiceName:    serviceName,
		Logging:        cfg.Logging,
		EnableMetrics:  cfg.Metrics.Enabled,
		ExportInterval: cfg.Metrics.ExportInterval.Or(bridge.DefaultMetricsInterval),
	})
	if err != nil {
		return err
	}

	defer func() {
		if err := lifecycle.ShutdownTelemetry(); err != nil {
			fmt.Fprintf(os.Stderr, "failed to flush telemetry: %v\n", err)
		}
	}()

	mainLogger := tel.Logger

	if redacted, err := config.RedactedJSON(&cfg); err == nil {
		mainLogger.Info().
			Str("version", version.String()).
			RawJSON("config", redacted).
			Msg("Starting assetbridge")
	}

	metrics, err := buildMetrics(tel)
	if err != nil {
		return err
	}

	sink, err := audit.NewFromConfig(ctx, &cfg.Audit, mainLogger)
	if err != nil {
		return fmt.Errorf("failed to open audit sinks: %w", err)
	}

	httpClient := jamf.NewHTTPClient(cfg.Jamf.Timeout.Or(jamf.DefaultTimeout))

	source, err := jamf.NewTokenSource(&cfg.Jamf, httpClient, nil)
	if err != nil {
		_ = sink.Close()
		return err
	}

	tokens := jamf.NewCredentialCache(source,
		jamf.WithSafetyMargin(cfg.Jamf.TokenSafetyMargin.Or(jamf.DefaultSafetyMargin)),
		jamf.WithCacheRecorder(metrics),
	)

	devices := jamf.NewClient(&cfg.Jamf, tokens,
		jamf.WithHTTPClient(httpClient),
		jamf.WithLogger(mainLogger),
		jamf.WithRecorder(metrics),
	)

	deps := bridge.Dependencies{
		Devices: devices,
		Audit:   sink,
		Metrics: metrics,
		Logger:  mainLogger,
	}

	if cfg.InventoryEnabled() {
		deps.Resolver = snipeit.NewResolver(&cfg.Inventory,
			snipeit.WithLogger(mainLogger),
			snipeit.WithRecorder(metrics),
		)
	} else {
		mainLogger.Warn().Msg("Inventory resolution disabled; chat notifications will fail with ConfigError")
	}

	if cfg.Secret == "" {
		mainLogger.Warn().Msg("No webhook secret configured; every webhook will be rejected")
	}

	svc, err := bridge.NewService(&cfg, deps)
	if err != nil {
		_ = sink.Close()
		return err
	}

	server := bridge.NewServer(&cfg, svc, metrics, tokens, mainLogger)

	return lifecycle.RunServer(ctx, &lifecycle.ServerOptions{
		ServiceName: serviceName,
		Server:      server.HTTPServer(),
		Logger:      mainLogger,
		OnShutdown: func(context.Context) error {
			return sink.Close()
		},
	})
}

// buildMetrics always keeps in-process counters for /status and adds OTel
// instruments when a meter is available.
func buildMetrics(tel *lifecycle.Telemetry) (bridge.Metrics, error) {
	inMemory := bridge.NewInMemoryMetrics(tel.Logger.WithComponent("metrics"))

	if tel.Meter == nil {
		return inMemory, nil
	}

	otelMetrics, err := bridge.NewOTelMetrics(tel.Meter)
	if err != nil {
		return nil, err
	}

	return bridge.MultiMetrics{inMemory, otelMetrics}, nil
}
