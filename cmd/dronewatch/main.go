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

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/carverauto/dronewatch/pkg/alerts"
	"github.com/carverauto/dronewatch/pkg/config"
	"github.com/carverauto/dronewatch/pkg/detect"
	"github.com/carverauto/dronewatch/pkg/logger"
	"github.com/carverauto/dronewatch/pkg/rules"
	"github.com/carverauto/dronewatch/pkg/snapshot"
)

var errFailedToLoadConfig = fmt.Errorf("failed to load config")

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	configPath := flag.String("config", "/etc/dronewatch/dronewatch.json", "Path to dronewatch config file")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfgLoader := config.NewConfig()

	var cfg detect.Config

	if err := cfgLoader.LoadAndValidate(ctx, *configPath, &cfg); err != nil {
		return fmt.Errorf("%w: %w", errFailedToLoadConfig, err)
	}

	logConfig := cfg.Logging
	if logConfig == nil {
		logConfig = logger.DefaultConfig()
	}

	dwLogger, err := logger.NewComponentLogger("dronewatch", logConfig)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	store, err := rules.Load(rules.LoadOptions{
		OUIFile:        cfg.OUIFile,
		ModuleOUIFile:  cfg.ModuleOUIFile,
		IncludeModules: cfg.IncludeModules,
		SSIDRulesFile:  cfg.SSIDRulesFile,
	}, dwLogger)
	if err != nil {
		return fmt.Errorf("failed to load detection rules: %w", err)
	}

	dwLogger.Info().
		Int("ouis", store.OUICount()).
		Int("ssid_patterns", store.PatternCount()).
		Bool("include_modules", cfg.IncludeModules).
		Msg("Loaded detection rules")

	emitter, err := buildEmitter(ctx, &cfg, dwLogger)
	if err != nil {
		return err
	}

	defer func() {
		if err := emitter.Close(); err != nil {
			dwLogger.Error().Err(err).Msg("Error closing alert sinks")
		}
	}()

	dwLogger.Info().
		Str("snapshot_prefix", cfg.SnapshotPrefix).
		Dur("poll_interval", time.Duration(cfg.PollInterval)).
		Dur("dedup_window", time.Duration(cfg.DedupWindow)).
		Msg("Watching capture snapshots")

	reader := snapshot.NewReader(cfg.SnapshotPrefix, dwLogger)
	detector := detect.New(&cfg, store, reader, emitter, nil, dwLogger)

	if err := detector.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	dwLogger.Info().Msg("Shutdown complete")

	return nil
}

func buildEmitter(ctx context.Context, cfg *detect.Config, log logger.Logger) (alerts.Emitter, error) {
	sinks := []alerts.Emitter{}

	if !cfg.Quiet {
		sinks = append(sinks, alerts.NewConsoleEmitter(os.Stdout))
	}

	if cfg.JSONLFile != "" {
		jsonl, err := alerts.NewJSONLEmitter(cfg.JSONLFile)
		if err != nil {
			return nil, fmt.Errorf("failed to open JSONL alert stream: %w", err)
		}

		sinks = append(sinks, jsonl)
	}

	if cfg.NATS != nil {
		natsSink, err := alerts.NewNATSEmitter(ctx, cfg.NATS)
		if err != nil {
			return nil, fmt.Errorf("failed to connect NATS alert sink: %w", err)
		}

		sinks = append(sinks, natsSink)
	}

	return alerts.NewMultiEmitter(log, sinks...), nil
}
