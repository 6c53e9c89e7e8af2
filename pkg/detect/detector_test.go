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
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carverauto/dronewatch/pkg/logger"
	"github.com/carverauto/dronewatch/pkg/models"
	"github.com/carverauto/dronewatch/pkg/snapshot"
)

const detectorFixture = `BSSID, First time seen, Last time seen, channel, Speed, Privacy, Cipher, Authentication, Power, # beacons, # IV, LAN IP, ID-length, ESSID, Key
60:60:1F:AA:BB:CC, 2026-08-29 10:00:00, 2026-08-29 10:05:00, 6, 54, WPA2, CCMP, PSK, -42, 10, 0, 0.  0.  0.  0, 12, Spark-518dcd,
00:11:22:33:44:55, 2026-08-29 10:00:00, 2026-08-29 10:05:00, 1, 54, WPA2, CCMP, PSK, -80, 5, 0, 0.  0.  0.  0, 8, HomeWiFi,
`

// fakeClock drives the detector deterministically in tests.
type fakeClock struct {
	mu   sync.Mutex
	now  time.Time
	tick chan time.Time
}

func newFakeClock(now time.Time) *fakeClock {
	return &fakeClock{now: now, tick: make(chan time.Time)}
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.mu.Unlock()
}

func (f *fakeClock) Ticker(time.Duration) Ticker {
	return &fakeTicker{c: f.tick}
}

type fakeTicker struct {
	c chan time.Time
}

func (t *fakeTicker) Chan() <-chan time.Time { return t.c }
func (*fakeTicker) Stop()                    {}

// recordingEmitter captures emitted events in order.
type recordingEmitter struct {
	mu     sync.Mutex
	events []*models.AlertEvent
}

func (r *recordingEmitter) Emit(_ context.Context, ev *models.AlertEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.events = append(r.events, ev)

	return nil
}

func (*recordingEmitter) Close() error { return nil }

func (r *recordingEmitter) Events() []*models.AlertEvent {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]*models.AlertEvent(nil), r.events...)
}

func testDetector(t *testing.T, dir string, clock Clock, emitter *recordingEmitter) *Detector {
	t.Helper()

	cfg := &Config{
		SnapshotPrefix:     filepath.Join(dir, "scan"),
		PollInterval:       models.Duration(2 * time.Second),
		DedupWindow:        models.Duration(120 * time.Second),
		DedupSweepInterval: models.Duration(10 * time.Minute),
	}

	log := logger.NewTestLogger()
	reader := snapshot.NewReader(cfg.SnapshotPrefix, log)

	return New(cfg, testStore(t), reader, emitter, clock, log)
}

func TestRunCycleEmitsMatches(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "scan-01.csv"), []byte(detectorFixture), 0o600))

	emitter := &recordingEmitter{}
	clock := newFakeClock(time.Now())
	det := testDetector(t, dir, clock, emitter)

	det.RunCycle(context.Background())

	events := emitter.Events()
	require.Len(t, events, 1)
	assert.Equal(t, models.SeverityBoth, events[0].Severity)
	assert.Equal(t, []string{"60:60:1F:AA:BB:CC"}, events[0].MACs)
	require.NotNil(t, events[0].SSID)
	assert.Equal(t, "Spark-518dcd", *events[0].SSID)
}

func TestRunCycleSuppressesRepeatSightings(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "scan-01.csv"), []byte(detectorFixture), 0o600))

	emitter := &recordingEmitter{}
	clock := newFakeClock(time.Now())
	det := testDetector(t, dir, clock, emitter)

	// Same device observed in two consecutive cycles inside the window.
	det.RunCycle(context.Background())
	clock.Advance(2 * time.Second)
	det.RunCycle(context.Background())

	assert.Len(t, emitter.Events(), 1)

	// Once the window elapses the sighting is re-alerted.
	clock.Advance(121 * time.Second)
	det.RunCycle(context.Background())

	assert.Len(t, emitter.Events(), 2)
}

func TestRunCycleMissingSnapshot(t *testing.T) {
	emitter := &recordingEmitter{}
	clock := newFakeClock(time.Now())
	det := testDetector(t, t.TempDir(), clock, emitter)

	det.RunCycle(context.Background())

	assert.Empty(t, emitter.Events())
}

func TestRunStopsOnCancel(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "scan-01.csv"), []byte(detectorFixture), 0o600))

	emitter := &recordingEmitter{}
	clock := newFakeClock(time.Now())
	det := testDetector(t, dir, clock, emitter)

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)

	go func() {
		done <- det.Run(ctx)
	}()

	// First cycle runs immediately; drive one more tick, then cancel.
	clock.tick <- clock.Now()
	cancel()

	select {
	case err := <-done:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("detector did not stop after cancellation")
	}

	assert.Len(t, emitter.Events(), 1)
}
