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
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/carverauto/dronewatch/pkg/logger"
	"github.com/carverauto/dronewatch/pkg/models"
)

// NormalizePrefix canonicalizes a vendor prefix into upper-case "XX:XX:XX"
// form, tolerating dash separators. It reports false when the input is not a
// 3-byte hex prefix.
func NormalizePrefix(raw string) (string, bool) {
	prefix := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(raw), "-", ":"))

	parts := strings.Split(prefix, ":")
	if len(parts) != 3 {
		return "", false
	}

	for _, p := range parts {
		if len(p) != 2 || !isHexByte(p) {
			return "", false
		}
	}

	return strings.Join(parts, ":"), true
}

func isHexByte(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'A' || c > 'F') {
			return false
		}
	}

	return true
}

// loadOUIFile reads one vendor-prefix CSV with a
// "vendor,oui,source_url,notes" header into dst, keyed by normalized prefix.
// Rows with a malformed prefix are skipped with a warning; the first load of
// a prefix wins so duplicates across tables never overwrite earlier entries.
func loadOUIFile(path string, dst map[string]models.OuiEntry, log logger.Logger) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBadRuleFile, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	header, err := r.Read()
	if err != nil {
		return fmt.Errorf("%w: reading header of '%s': %w", ErrBadRuleFile, path, err)
	}

	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.ToLower(strings.TrimSpace(name))] = i
	}

	if _, ok := col["oui"]; !ok {
		return fmt.Errorf("%w: '%s' has no 'oui' column", ErrBadRuleFile, path)
	}

	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}

		if err != nil {
			log.Warn().Err(err).Str("file", path).Msg("Skipping malformed OUI row")
			continue
		}

		field := func(name string) string {
			i, ok := col[name]
			if !ok || i >= len(row) {
				return ""
			}

			return strings.TrimSpace(row[i])
		}

		prefix, ok := NormalizePrefix(field("oui"))
		if !ok {
			log.Warn().Str("file", path).Str("oui", field("oui")).Msg("Skipping row with malformed OUI prefix")
			continue
		}

		if _, exists := dst[prefix]; exists {
			log.Warn().Str("file", path).Str("oui", prefix).Msg("Duplicate OUI prefix, keeping first entry")
			continue
		}

		dst[prefix] = models.OuiEntry{
			Vendor:    field("vendor"),
			Prefix:    prefix,
			SourceURL: field("source_url"),
			Notes:     field("notes"),
		}
	}

	return nil
}
