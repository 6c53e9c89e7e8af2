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

// Package detect drives the live detection cycle: read the newest capture
// snapshot, match device records against the rule store, suppress repeat
// sightings, and emit alerts.
package detect

import (
	"context"
	"errors"
	"time"

	"github.com/carverauto/dronewatch/pkg/alerts"
	"github.com/carverauto/dronewatch/pkg/logger"
	"github.com/carverauto/dronewatch/pkg/models"
	"github.com/carverauto/dronewatch/pkg/rules"
	"github.com/carverauto/dronewatch/pkg/snapshot"
)

// Detector owns the poll loop and its dedup state. All per-cycle work runs
// synchronously on one goroutine, so cycles never overlap.
type Detector struct {
	config  *Config
	store   *rules.Store
	reader  *snapshot.Reader
	dedup   *Deduplicator
	emitter alerts.Emitter
	clock   Clock
	log     logger.Logger
}

// New creates a Detector. A nil clock defaults to the real clock.
func New(cfg *Config, store *rules.Store, reader *snapshot.Reader, emitter alerts.Emitter, clock Clock, log logger.Logger) *Detector {
	if clock == nil {
		clock = realClock{}
	}

	return &Detector{
		config:  cfg,
		store:   store,
		reader:  reader,
		dedup:   NewDeduplicator(time.Duration(cfg.DedupWindow), time.Duration(cfg.DedupSweepInterval), log),
		emitter: emitter,
		clock:   clock,
		log:     log,
	}
}

// Run executes detection cycles at the configured interval until ctx is
// canceled. An in-flight cycle always finishes its emissions before Run
// returns, so shutdown never abandons a partially-processed batch.
func (d *Detector) Run(ctx context.Context) error {
	interval := time.Duration(d.config.PollInterval)

	ticker := d.clock.Ticker(interval)
	defer ticker.Stop()

	d.log.Info().Dur("interval", interval).Msg("Starting detection loop")

	d.RunCycle(ctx)

	for {
		select {
		case <-ctx.Done():
			d.log.Info().Msg("Detection loop stopped")
			return ctx.Err()
		case <-ticker.Chan():
			d.RunCycle(ctx)
		}
	}
}

// RunCycle performs one detection cycle: read, match, dedup, emit. All
// failures short of rule-load errors are recovered here so a bad row or a
// momentarily missing snapshot never halts detection.
func (d *Detector) RunCycle(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}

	records, err := d.reader.Current()
	if err != nil {
		if errors.Is(err, snapshot.ErrNoSnapshot) {
			d.log.Debug().Msg("No snapshot file yet, skipping cycle")
		} else {
			d.log.Warn().Err(err).Msg("Failed to read snapshot, skipping cycle")
		}

		return
	}

	// Emissions of an accepted batch run to completion even when shutdown
	// arrives mid-cycle.
	emitCtx := context.WithoutCancel(ctx)
	now := d.clock.Now()
	matched, emitted := 0, 0

	for i := range records {
		res := Match(&records[i], d.store, now)
		if res == nil {
			continue
		}

		matched++

		if !d.dedup.ShouldAlert(res, now) {
			continue
		}

		if err := d.emitter.Emit(emitCtx, models.NewAlertEvent(res)); err != nil {
			d.log.Error().Err(err).Str("mac", res.MAC.String()).Msg("Failed to emit alert")
		}

		emitted++
	}

	d.log.Debug().
		Int("records", len(records)).
		Int("matched", matched).
		Int("emitted", emitted).
		Msg("Detection cycle complete")
}
