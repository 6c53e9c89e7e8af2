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

	"github.com/carverauto/dronewatch/pkg/models"
	"github.com/carverauto/dronewatch/pkg/rules"
)

// Match evaluates one device record against the rule store. It is stateless
// and never consults alert history; repeat suppression belongs to the
// Deduplicator. Returns nil when neither the vendor prefix nor any SSID
// pattern group hits, and for records with no MAC.
func Match(rec *models.DeviceRecord, store *rules.Store, now time.Time) *models.MatchResult {
	if len(rec.MAC) == 0 {
		return nil
	}

	ouiHit, hasOUI := store.LookupOUI(rec.MAC)
	labels := store.MatchSSID(rec.SSID)

	var severity models.Severity

	switch {
	case hasOUI && len(labels) > 0:
		severity = models.SeverityBoth
	case hasOUI:
		severity = models.SeverityOUIMatch
	case len(labels) > 0:
		severity = models.SeveritySSIDMatch
	default:
		return nil
	}

	return &models.MatchResult{
		MAC:        rec.MAC,
		SSID:       rec.SSID,
		OUIHit:     ouiHit,
		SSIDLabels: labels,
		Severity:   severity,
		Channel:    rec.Channel,
		Power:      rec.Power,
		Timestamp:  now,
	}
}
