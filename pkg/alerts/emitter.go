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

// Package alerts renders accepted match results to the configured output
// sinks: console, line-delimited JSON, and optionally NATS JetStream.
package alerts

import (
	"context"
	"errors"

	"github.com/carverauto/dronewatch/pkg/logger"
	"github.com/carverauto/dronewatch/pkg/models"
)

// Emitter writes one alert event to a sink.
type Emitter interface {
	Emit(ctx context.Context, ev *models.AlertEvent) error
	Close() error
}

// MultiEmitter fans an event out to every sink in order. A failing sink is
// logged and never stops the others or the detection loop.
type MultiEmitter struct {
	sinks []Emitter
	log   logger.Logger
}

// NewMultiEmitter creates a fan-out emitter over the given sinks.
func NewMultiEmitter(log logger.Logger, sinks ...Emitter) *MultiEmitter {
	return &MultiEmitter{sinks: sinks, log: log}
}

// Emit delivers ev to each sink. Sink errors are reported through the
// logger; Emit itself never fails.
func (m *MultiEmitter) Emit(ctx context.Context, ev *models.AlertEvent) error {
	for _, sink := range m.sinks {
		if err := sink.Emit(ctx, ev); err != nil {
			m.log.Error().Err(err).Msg("Alert sink write failed")
		}
	}

	return nil
}

// Close closes every sink, joining their errors.
func (m *MultiEmitter) Close() error {
	var errs []error

	for _, sink := range m.sinks {
		if err := sink.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}
