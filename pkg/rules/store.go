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

// Package rules holds the immutable vendor-prefix table and compiled SSID
// pattern groups for the process lifetime.
package rules

import (
	"net"

	"github.com/carverauto/dronewatch/pkg/logger"
	"github.com/carverauto/dronewatch/pkg/models"
)

// LoadOptions names the rule inputs for a Store.
type LoadOptions struct {
	// OUIFile is the primary manufacturer vendor-prefix table, always loaded.
	OUIFile string
	// ModuleOUIFile is the secondary module-vendor table. Module OUIs raise
	// false-positive risk, so they are only loaded when IncludeModules is set.
	ModuleOUIFile  string
	IncludeModules bool
	// SSIDRulesFile maps labels to lists of case-insensitive regex patterns.
	SSIDRulesFile string
}

// Store is the read-only rule set built once at startup.
type Store struct {
	ouis   map[string]models.OuiEntry
	groups []SSIDGroup
}

// Load builds a Store from the configured rule files. Any SSID pattern
// compilation failure is fatal; partial rule sets are never accepted.
func Load(opts LoadOptions, log logger.Logger) (*Store, error) {
	s := &Store{ouis: make(map[string]models.OuiEntry)}

	if opts.OUIFile != "" {
		if err := loadOUIFile(opts.OUIFile, s.ouis, log); err != nil {
			return nil, err
		}
	}

	if opts.IncludeModules && opts.ModuleOUIFile != "" {
		if err := loadOUIFile(opts.ModuleOUIFile, s.ouis, log); err != nil {
			return nil, err
		}
	}

	if opts.SSIDRulesFile != "" {
		groups, err := loadSSIDRules(opts.SSIDRulesFile)
		if err != nil {
			return nil, err
		}

		s.groups = groups
	}

	return s, nil
}

// LookupOUI resolves the leading three bytes of mac against the vendor table.
func (s *Store) LookupOUI(mac net.HardwareAddr) (*models.OuiEntry, bool) {
	prefix := models.OUIPrefix(mac)
	if prefix == "" {
		return nil, false
	}

	entry, ok := s.ouis[prefix]
	if !ok {
		return nil, false
	}

	return &entry, true
}

// MatchSSID returns the label of every pattern group with at least one
// pattern matching ssid, in load order. The result is empty, never nil,
// when ssid is absent or nothing matches.
func (s *Store) MatchSSID(ssid string) []string {
	labels := []string{}

	if ssid == "" {
		return labels
	}

	for i := range s.groups {
		if s.groups[i].Matches(ssid) {
			labels = append(labels, s.groups[i].Label)
		}
	}

	return labels
}

// OUICount returns the number of loaded vendor prefixes.
func (s *Store) OUICount() int {
	return len(s.ouis)
}

// PatternCount returns the total number of compiled SSID patterns.
func (s *Store) PatternCount() int {
	n := 0
	for i := range s.groups {
		n += len(s.groups[i].Patterns)
	}

	return n
}
