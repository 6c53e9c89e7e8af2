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

package detect

import (
	"sort"
	"strings"
	"time"

	"github.com/carverauto/dronewatch/pkg/logger"
	"github.com/carverauto/dronewatch/pkg/models"
)

// fingerprint identifies "the same sighting" across poll cycles: the MAC,
// the sorted matched labels, and the matched vendor prefix if any.
type fingerprint string

func fingerprintOf(res *models.MatchResult) fingerprint {
	labels := append([]string(nil), res.SSIDLabels...)
	sort.Strings(labels)

	oui := ""
	if res.OUIHit != nil {
		oui = res.OUIHit.Prefix
	}

	return fingerprint(strings.ToUpper(res.MAC.String()) + "|" + strings.Join(labels, ",") + "|" + oui)
}

// Deduplicator suppresses repeat alerts for the same sighting inside a
// sliding time window. It is owned by the single detection loop and needs no
// locking. This is a time-windowed gate, not a seen-once filter: a device
// that disappears and later reappears is re-alerted once the window elapses.
type Deduplicator struct {
	window     time.Duration
	sweepEvery time.Duration
	lastAlert  map[fingerprint]time.Time
	lastSweep  time.Time
	log        logger.Logger
}

// NewDeduplicator creates a Deduplicator with the given suppression window
// and sweep cadence for evicting stale fingerprints.
func NewDeduplicator(window, sweepEvery time.Duration, log logger.Logger) *Deduplicator {
	return &Deduplicator{
		window:     window,
		sweepEvery: sweepEvery,
		lastAlert:  make(map[fingerprint]time.Time),
		log:        log,
	}
}

// ShouldAlert reports whether res should be emitted at time now, recording
// now against the fingerprint when it does.
func (d *Deduplicator) ShouldAlert(res *models.MatchResult, now time.Time) bool {
	d.maybeSweep(now)

	fp := fingerprintOf(res)

	if prev, ok := d.lastAlert[fp]; ok && now.Sub(prev) < d.window {
		return false
	}

	d.lastAlert[fp] = now

	return true
}

// Len returns the number of tracked fingerprints.
func (d *Deduplicator) Len() int {
	return len(d.lastAlert)
}

// maybeSweep evicts fingerprints older than the window once per sweep
// interval so memory stays bounded across a long-running process.
func (d *Deduplicator) maybeSweep(now time.Time) {
	if d.lastSweep.IsZero() {
		d.lastSweep = now
		return
	}

	if now.Sub(d.lastSweep) < d.sweepEvery {
		return
	}

	cutoff := now.Add(-d.window)
	removed := 0

	for fp, ts := range d.lastAlert {
		if ts.Before(cutoff) {
			delete(d.lastAlert, fp)

			removed++
		}
	}

	if removed > 0 {
		d.log.Debug().
			Int("removed", removed).
			Int("remaining", len(d.lastAlert)).
			Msg("Swept stale alert fingerprints")
	}

	d.lastSweep = now
}
