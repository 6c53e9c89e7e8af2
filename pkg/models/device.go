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

// Package models provides shared data models for the dronewatch detection engine.
package models

import (
	"fmt"
	"net"
	"strings"
	"time"
)

// OuiEntry is one row of a vendor-prefix table. Prefix is the canonical
// upper-case "XX:XX:XX" form and is the unique key of the table.
type OuiEntry struct {
	Vendor    string `json:"vendor"`
	Prefix    string `json:"oui"`
	SourceURL string `json:"source_url,omitempty"`
	Notes     string `json:"notes,omitempty"`
}

// DeviceRecord is one device row decoded from a capture snapshot. Records are
// rebuilt on every poll cycle and never persisted. Channel 0 and Power 0 mean
// the column was absent or unreported.
type DeviceRecord struct {
	MAC       net.HardwareAddr
	SSID      string
	Channel   int
	Power     int
	FirstSeen time.Time
	LastSeen  time.Time
	Station   bool
}

// Severity classifies a match result by which signal(s) triggered it.
type Severity string

const (
	// SeverityOUIMatch means only the hardware-address vendor prefix matched.
	SeverityOUIMatch Severity = "OUI_MATCH"
	// SeveritySSIDMatch means only a broadcast-name pattern matched.
	SeveritySSIDMatch Severity = "SSID_MATCH"
	// SeverityBoth means both signals matched for the same device.
	SeverityBoth Severity = "BOTH"
)

// MatchResult is the outcome of evaluating one DeviceRecord against the rule
// store. It is only produced when at least one of OUIHit / SSIDLabels is set.
type MatchResult struct {
	MAC        net.HardwareAddr
	SSID       string
	OUIHit     *OuiEntry
	SSIDLabels []string
	Severity   Severity
	Channel    int
	Power      int
	Timestamp  time.Time
}

// OUIPrefix returns the canonical "XX:XX:XX" prefix of a hardware address,
// or an empty string when the address is shorter than three bytes.
func OUIPrefix(mac net.HardwareAddr) string {
	if len(mac) < 3 {
		return ""
	}

	return strings.ToUpper(fmt.Sprintf("%02x:%02x:%02x", mac[0], mac[1], mac[2]))
}
