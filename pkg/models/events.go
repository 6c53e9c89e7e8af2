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

package models

import (
	"strings"
	"time"
)

// AlertSource tags every emitted alert record with its producer.
const AlertSource = "dronewatch"

// OUIHitDetail pairs an observed hardware address with the vendor prefix
// that matched it.
type OUIHitDetail struct {
	MAC string `json:"mac"`
	OUI string `json:"oui"`
}

// AlertEvent is the structured, line-delimited representation of an accepted
// match result. One object is appended per accepted alert.
type AlertEvent struct {
	Time       time.Time      `json:"time"`
	Severity   Severity       `json:"severity"`
	SSID       *string        `json:"ssid"`
	MACs       []string       `json:"macs"`
	OUIHits    []OUIHitDetail `json:"oui_hits"`
	SSIDLabels []string       `json:"ssid_labels"`
	Channel    int            `json:"channel,omitempty"`
	Power      int            `json:"power,omitempty"`
	Source     string         `json:"source"`
}

// NewAlertEvent derives the structured alert representation from a match
// result. The event timestamp is normalized to UTC.
func NewAlertEvent(res *MatchResult) *AlertEvent {
	ev := &AlertEvent{
		Time:     res.Timestamp.UTC().Truncate(time.Second),
		Severity: res.Severity,
		MACs:     []string{strings.ToUpper(res.MAC.String())},
		Channel:  res.Channel,
		Power:    res.Power,
		Source:   AlertSource,
	}

	if res.SSID != "" {
		ssid := res.SSID
		ev.SSID = &ssid
	}

	if res.OUIHit != nil {
		ev.OUIHits = []OUIHitDetail{
			{MAC: strings.ToUpper(res.MAC.String()), OUI: res.OUIHit.Prefix},
		}
	} else {
		ev.OUIHits = []OUIHitDetail{}
	}

	if len(res.SSIDLabels) > 0 {
		ev.SSIDLabels = res.SSIDLabels
	}

	return ev
}

// CloudEvent is the envelope used when publishing alerts to an event stream.
type CloudEvent struct {
	SpecVersion     string      `json:"specversion"`
	ID              string      `json:"id"`
	Source          string      `json:"source"`
	Type            string      `json:"type"`
	DataContentType string      `json:"datacontenttype"`
	Subject         string      `json:"subject,omitempty"`
	Time            *time.Time  `json:"time,omitempty"`
	Data            interface{} `json:"data,omitempty"`
}
