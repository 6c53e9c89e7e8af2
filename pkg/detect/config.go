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
	"time"

	"github.com/carverauto/dronewatch/pkg/alerts"
	"github.com/carverauto/dronewatch/pkg/logger"
	"github.com/carverauto/dronewatch/pkg/models"
)

const (
	defaultPollInterval = 2 * time.Second
	defaultDedupWindow  = 120 * time.Second
	defaultDedupSweep   = 10 * time.Minute
)

// Config is the detection engine configuration.
type Config struct {
	// SnapshotPrefix is the path prefix of the capture tool's rotating
	// <prefix>-NN.csv output.
	SnapshotPrefix string `json:"snapshot_prefix"`

	// PollInterval is the fixed cycle interval. Defaults to the capture
	// tool's 2s write interval.
	PollInterval models.Duration `json:"poll_interval,omitempty"`

	// DedupWindow suppresses identical alerts observed within this window.
	DedupWindow models.Duration `json:"dedup_window,omitempty"`

	// DedupSweepInterval bounds fingerprint memory by evicting stale
	// entries on this cadence.
	DedupSweepInterval models.Duration `json:"dedup_sweep_interval,omitempty"`

	// OUIFile is the primary manufacturer vendor-prefix table.
	OUIFile string `json:"oui_file,omitempty"`

	// ModuleOUIFile is the opt-in module-vendor table; loaded only when
	// IncludeModules is set because module OUIs raise false-positive risk.
	ModuleOUIFile  string `json:"module_oui_file,omitempty"`
	IncludeModules bool   `json:"include_modules,omitempty"`

	// SSIDRulesFile maps labels to lists of regex pattern strings.
	SSIDRulesFile string `json:"ssid_rules_file,omitempty"`

	// JSONLFile enables the structured line-delimited alert stream.
	JSONLFile string `json:"jsonl_file,omitempty"`

	// Quiet suppresses the human-readable console stream; structured sinks
	// are still written.
	Quiet bool `json:"quiet,omitempty"`

	// NATS enables publishing alerts to a JetStream subject.
	NATS *alerts.NATSConfig `json:"nats,omitempty"`

	Logging *logger.Config `json:"logging,omitempty"`
}

// Validate applies defaults and checks required fields.
func (c *Config) Validate() error {
	if c.SnapshotPrefix == "" {
		return ErrNoSnapshotPrefix
	}

	if c.OUIFile == "" && c.SSIDRulesFile == "" {
		return ErrNoRuleSources
	}

	if c.PollInterval <= 0 {
		c.PollInterval = models.Duration(defaultPollInterval)
	}

	if c.DedupWindow <= 0 {
		c.DedupWindow = models.Duration(defaultDedupWindow)
	}

	if c.DedupSweepInterval <= 0 {
		c.DedupSweepInterval = models.Duration(defaultDedupSweep)
	}

	return nil
}
