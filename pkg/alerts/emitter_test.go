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

package alerts

import (
	"bytes"
	"context"
	"errors"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carverauto/dronewatch/pkg/logger"
	"github.com/carverauto/dronewatch/pkg/models"
)

func testEvent(t *testing.T) *models.AlertEvent {
	t.Helper()

	mac, err := net.ParseMAC("60:60:1F:AA:BB:CC")
	require.NoError(t, err)

	return models.NewAlertEvent(&models.MatchResult{
		MAC:        mac,
		SSID:       "Spark-518dcd",
		OUIHit:     &models.OuiEntry{Vendor: "DJI", Prefix: "60:60:1F"},
		SSIDLabels: []string{"DJI Spark"},
		Severity:   models.SeverityBoth,
		Channel:    6,
		Power:      -42,
		Timestamp:  time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC),
	})
}

func TestConsoleEmitterLine(t *testing.T) {
	var buf bytes.Buffer

	c := NewConsoleEmitter(&buf)
	require.NoError(t, c.Emit(context.Background(), testEvent(t)))

	line := strings.TrimRight(buf.String(), "\n")
	assert.Equal(t,
		"[2026-08-29T12:00:00Z] BOTH MAC=60:60:1F:AA:BB:CC SSID='Spark-518dcd' OUI=60:60:1F TAGS=DJI Spark CH=6 PWR=-42",
		line)
}

func TestConsoleEmitterOmitsAbsentFields(t *testing.T) {
	var buf bytes.Buffer

	mac, err := net.ParseMAC("60:60:1F:AA:BB:CC")
	require.NoError(t, err)

	ev := models.NewAlertEvent(&models.MatchResult{
		MAC:       mac,
		OUIHit:    &models.OuiEntry{Vendor: "DJI", Prefix: "60:60:1F"},
		Severity:  models.SeverityOUIMatch,
		Timestamp: time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC),
	})

	c := NewConsoleEmitter(&buf)
	require.NoError(t, c.Emit(context.Background(), ev))

	line := buf.String()
	assert.NotContains(t, line, "SSID=")
	assert.NotContains(t, line, "TAGS=")
	assert.NotContains(t, line, "CH=")
	assert.NotContains(t, line, "PWR=")
}

func TestJSONLEmitterRecord(t *testing.T) {
	var buf bytes.Buffer

	j := NewJSONLWriter(&buf)
	require.NoError(t, j.Emit(context.Background(), testEvent(t)))

	var record map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))

	assert.Equal(t, "2026-08-29T12:00:00Z", record["time"])
	assert.Equal(t, "BOTH", record["severity"])
	assert.Equal(t, "Spark-518dcd", record["ssid"])
	assert.Equal(t, []interface{}{"60:60:1F:AA:BB:CC"}, record["macs"])
	assert.Equal(t, []interface{}{"DJI Spark"}, record["ssid_labels"])
	assert.Equal(t, "dronewatch", record["source"])

	hits, ok := record["oui_hits"].([]interface{})
	require.True(t, ok)
	require.Len(t, hits, 1)

	hit := hits[0].(map[string]interface{})
	assert.Equal(t, "60:60:1F:AA:BB:CC", hit["mac"])
	assert.Equal(t, "60:60:1F", hit["oui"])
}

func TestJSONLEmitterNullFields(t *testing.T) {
	var buf bytes.Buffer

	mac, err := net.ParseMAC("60:60:1F:AA:BB:CC")
	require.NoError(t, err)

	j := NewJSONLWriter(&buf)
	require.NoError(t, j.Emit(context.Background(), models.NewAlertEvent(&models.MatchResult{
		MAC:       mac,
		OUIHit:    &models.OuiEntry{Prefix: "60:60:1F"},
		Severity:  models.SeverityOUIMatch,
		Timestamp: time.Now(),
	})))

	var record map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))

	// Absent SSID and labels serialize as null, not empty strings.
	assert.Contains(t, record, "ssid")
	assert.Nil(t, record["ssid"])
	assert.Contains(t, record, "ssid_labels")
	assert.Nil(t, record["ssid_labels"])
}

// failingWriter always errors to exercise sink resilience.
type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("sink is broken")
}

func TestMultiEmitterSurvivesFailingSink(t *testing.T) {
	var buf bytes.Buffer

	broken := NewJSONLWriter(failingWriter{})
	working := NewJSONLWriter(&buf)

	m := NewMultiEmitter(logger.NewTestLogger(), broken, working)
	require.NoError(t, m.Emit(context.Background(), testEvent(t)))

	// The working sink still received the alert.
	assert.NotEmpty(t, buf.String())
}

func TestMultiEmitterPreservesOrder(t *testing.T) {
	var buf bytes.Buffer

	m := NewMultiEmitter(logger.NewTestLogger(), NewJSONLWriter(&buf))

	first := testEvent(t)
	second := testEvent(t)
	second.Severity = models.SeverityOUIMatch

	require.NoError(t, m.Emit(context.Background(), first))
	require.NoError(t, m.Emit(context.Background(), second))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], `"severity":"BOTH"`)
	assert.Contains(t, lines[1], `"severity":"OUI_MATCH"`)
}
