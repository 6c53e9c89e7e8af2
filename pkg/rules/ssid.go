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

package rules

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

// SSIDGroup is one labeled group of compiled, case-insensitive SSID patterns.
// Group order follows the rule file so matched labels report in load order.
type SSIDGroup struct {
	Label    string
	Patterns []*regexp.Regexp
}

// Matches reports whether any pattern in the group matches ssid.
func (g *SSIDGroup) Matches(ssid string) bool {
	for _, p := range g.Patterns {
		if p.MatchString(ssid) {
			return true
		}
	}

	return false
}

// loadSSIDRules reads a YAML mapping of label -> list of regex strings.
// Document order is preserved by walking the mapping node directly; a Go map
// would lose it. Any pattern that fails to compile fails the whole load,
// reported with the offending label and pattern text.
func loadSSIDRules(path string) ([]SSIDGroup, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadRuleFile, err)
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: decoding '%s': %w", ErrBadRuleFile, path, err)
	}

	if len(doc.Content) == 0 {
		return []SSIDGroup{}, nil
	}

	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: '%s' is not a mapping of label to pattern list", ErrBadRuleFile, path)
	}

	groups := make([]SSIDGroup, 0, len(root.Content)/2)

	for i := 0; i+1 < len(root.Content); i += 2 {
		label := root.Content[i].Value

		var patterns []string
		if err := root.Content[i+1].Decode(&patterns); err != nil {
			return nil, fmt.Errorf("%w: label %q in '%s': %w", ErrBadRuleFile, label, path, err)
		}

		if len(patterns) == 0 {
			continue
		}

		group := SSIDGroup{Label: label, Patterns: make([]*regexp.Regexp, 0, len(patterns))}

		for _, pat := range patterns {
			re, err := regexp.Compile("(?i)" + pat)
			if err != nil {
				return nil, fmt.Errorf("%w: label %q pattern %q: %w", ErrBadPattern, label, pat, err)
			}

			group.Patterns = append(group.Patterns, re)
		}

		groups = append(groups, group)
	}

	return groups, nil
}
