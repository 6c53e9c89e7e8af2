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

// Package snapshot locates and decodes the rotating capture snapshots written
// by the external radio-capture tool.
package snapshot

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/carverauto/dronewatch/pkg/logger"
	"github.com/carverauto/dronewatch/pkg/models"
)

// ErrNoSnapshot is returned when no capture file matching the prefix exists
// yet. This is a normal transient state while the capture tool spins up; the
// poll loop retries on the next cycle.
var ErrNoSnapshot = errors.New("no snapshot file found")

// timeLayout is the timestamp format the capture tool writes.
const timeLayout = "2006-01-02 15:04:05"

var snapshotNumber = regexp.MustCompile(`-(\d+)\.csv$`)

// Reader finds and decodes the current snapshot for one capture prefix.
type Reader struct {
	prefix string
	log    logger.Logger
}

// NewReader creates a Reader for capture files named <prefix>-NN.csv.
func NewReader(prefix string, log logger.Logger) *Reader {
	return &Reader{prefix: prefix, log: log}
}

// Latest returns the path of the current snapshot: the highest-numbered file
// matching the prefix, ties broken by newest modification time.
func (r *Reader) Latest() (string, error) {
	matches, err := filepath.Glob(r.prefix + "-*.csv")
	if err != nil {
		return "", fmt.Errorf("globbing snapshots for '%s': %w", r.prefix, err)
	}

	best := ""
	bestNum := -1

	var bestMod time.Time

	for _, path := range matches {
		info, err := os.Stat(path)
		if err != nil {
			continue
		}

		num := -1
		if m := snapshotNumber.FindStringSubmatch(path); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil {
				num = n
			}
		}

		if num > bestNum || (num == bestNum && info.ModTime().After(bestMod)) {
			best = path
			bestNum = num
			bestMod = info.ModTime()
		}
	}

	if best == "" {
		return "", ErrNoSnapshot
	}

	return best, nil
}

// Current decodes the newest snapshot into device records. A missing
// snapshot yields ErrNoSnapshot, not a failure.
func (r *Reader) Current() ([]models.DeviceRecord, error) {
	path, err := r.Latest()
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening snapshot '%s': %w", path, err)
	}
	defer f.Close()

	return Parse(f, r.log), nil
}

type section int

const (
	sectionNone section = iota
	sectionAPs
	sectionStations
)

// Parse decodes the two-section capture table: access-point rows first, then
// client-station rows, each introduced by its own header line. Ragged rows
// and a partially-written tail are tolerated; a row with an unparsable MAC
// is skipped with a warning.
func Parse(rd io.Reader, log logger.Logger) []models.DeviceRecord {
	cr := csv.NewReader(rd)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	records := []models.DeviceRecord{}
	sec := sectionNone

	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}

		if err != nil {
			// The capture tool rewrites the file in place; a malformed tail
			// means we caught it mid-write. Keep what parsed so far.
			log.Warn().Err(err).Msg("Skipping malformed snapshot row")

			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				continue
			}

			break
		}

		if len(row) == 0 || strings.TrimSpace(row[0]) == "" {
			continue
		}

		first := strings.TrimSpace(row[0])

		switch {
		case strings.HasPrefix(strings.ToUpper(first), "BSSID"):
			sec = sectionAPs
			continue
		case strings.HasPrefix(strings.ToUpper(first), "STATION MAC"):
			sec = sectionStations
			continue
		case sec == sectionNone:
			continue
		}

		var (
			rec models.DeviceRecord
			ok  bool
		)

		if sec == sectionAPs {
			rec, ok = parseAPRow(row, log)
		} else {
			rec, ok = parseStationRow(row, log)
		}

		if ok {
			records = append(records, rec)
		}
	}

	return records
}

// parseAPRow decodes one access-point row. Column layout:
// BSSID, First time seen, Last time seen, channel, Speed, Privacy, Cipher,
// Authentication, Power, # beacons, # IV, LAN IP, ID-length, ESSID, Key.
func parseAPRow(row []string, log logger.Logger) (models.DeviceRecord, bool) {
	mac, err := net.ParseMAC(field(row, 0))
	if err != nil {
		log.Warn().Str("mac", field(row, 0)).Msg("Skipping AP row with unparsable MAC")
		return models.DeviceRecord{}, false
	}

	return models.DeviceRecord{
		MAC:       mac,
		SSID:      field(row, 13),
		Channel:   atoiOrZero(field(row, 3)),
		Power:     atoiOrZero(field(row, 8)),
		FirstSeen: parseTime(field(row, 1)),
		LastSeen:  parseTime(field(row, 2)),
	}, true
}

// parseStationRow decodes one client-station row. Column layout:
// Station MAC, First time seen, Last time seen, Power, # packets, BSSID,
// Probed ESSIDs... (zero or more trailing columns).
func parseStationRow(row []string, log logger.Logger) (models.DeviceRecord, bool) {
	mac, err := net.ParseMAC(field(row, 0))
	if err != nil {
		log.Warn().Str("mac", field(row, 0)).Msg("Skipping station row with unparsable MAC")
		return models.DeviceRecord{}, false
	}

	ssid := ""

	for i := 6; i < len(row); i++ {
		if probed := strings.TrimSpace(row[i]); probed != "" {
			ssid = probed
			break
		}
	}

	return models.DeviceRecord{
		MAC:       mac,
		SSID:      ssid,
		Power:     atoiOrZero(field(row, 3)),
		FirstSeen: parseTime(field(row, 1)),
		LastSeen:  parseTime(field(row, 2)),
		Station:   true,
	}, true
}

func field(row []string, i int) string {
	if i >= len(row) {
		return ""
	}

	return strings.TrimSpace(row[i])
}

func atoiOrZero(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}

	return n
}

func parseTime(s string) time.Time {
	t, err := time.ParseInLocation(timeLayout, s, time.Local)
	if err != nil {
		return time.Time{}
	}

	return t
}
