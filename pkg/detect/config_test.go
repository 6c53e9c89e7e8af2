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
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carverauto/dronewatch/pkg/models"
)

func TestConfigUnmarshal(t *testing.T) {
	jsonConfig := `{
		"snapshot_prefix": "/var/lib/dronewatch/scan",
		"poll_interval": "5s",
		"dedup_window": "90s",
		"oui_file": "/etc/dronewatch/data/oui_drones.csv",
		"module_oui_file": "/etc/dronewatch/data/oui_modules.csv",
		"include_modules": true,
		"ssid_rules_file": "/etc/dronewatch/rules/ssids.yml",
		"jsonl_file": "/var/log/dronewatch/sightings.jsonl",
		"nats": {
			"url": "nats://127.0.0.1:4222",
			"subject": "alerts.drone"
		},
		"logging": {
			"level": "debug",
			"output": "stdout"
		}
	}`

	var cfg Config
	require.NoError(t, json.Unmarshal([]byte(jsonConfig), &cfg))
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "/var/lib/dronewatch/scan", cfg.SnapshotPrefix)
	assert.Equal(t, 5*time.Second, time.Duration(cfg.PollInterval))
	assert.Equal(t, 90*time.Second, time.Duration(cfg.DedupWindow))
	assert.True(t, cfg.IncludeModules)
	require.NotNil(t, cfg.NATS)
	assert.Equal(t, "nats://127.0.0.1:4222", cfg.NATS.URL)
	require.NotNil(t, cfg.Logging)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestConfigValidateDefaults(t *testing.T) {
	cfg := Config{
		SnapshotPrefix: "/tmp/scan",
		OUIFile:        "/tmp/oui.csv",
	}

	require.NoError(t, cfg.Validate())

	assert.Equal(t, 2*time.Second, time.Duration(cfg.PollInterval))
	assert.Equal(t, 120*time.Second, time.Duration(cfg.DedupWindow))
	assert.Equal(t, 10*time.Minute, time.Duration(cfg.DedupSweepInterval))
}

func TestConfigValidateErrors(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr error
	}{
		{
			name:    "missing snapshot prefix",
			cfg:     Config{OUIFile: "/tmp/oui.csv"},
			wantErr: ErrNoSnapshotPrefix,
		},
		{
			name:    "no rule sources",
			cfg:     Config{SnapshotPrefix: "/tmp/scan"},
			wantErr: ErrNoRuleSources,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.ErrorIs(t, tt.cfg.Validate(), tt.wantErr)
		})
	}

	t.Run("ssid rules alone suffice", func(t *testing.T) {
		cfg := Config{SnapshotPrefix: "/tmp/scan", SSIDRulesFile: "/tmp/ssids.yml"}
		assert.NoError(t, cfg.Validate())
	})
}

func TestConfigValidateDurationZeroValue(t *testing.T) {
	var cfg Config

	require.NoError(t, json.Unmarshal([]byte(`{"snapshot_prefix":"/tmp/scan","oui_file":"x"}`), &cfg))
	require.NoError(t, cfg.Validate())
	assert.Equal(t, models.Duration(2*time.Second), cfg.PollInterval)
}
