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
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/carverauto/dronewatch/pkg/models"
)

// ConsoleEmitter writes one human-readable line per accepted alert.
type ConsoleEmitter struct {
	w io.Writer
}

// NewConsoleEmitter creates a console sink. A nil writer defaults to stdout.
func NewConsoleEmitter(w io.Writer) *ConsoleEmitter {
	if w == nil {
		w = os.Stdout
	}

	return &ConsoleEmitter{w: w}
}

// Emit renders ev as a single line:
// [time] SEVERITY MAC=.. SSID='..' OUI=.. TAGS=a,b CH=n PWR=n
func (c *ConsoleEmitter) Emit(_ context.Context, ev *models.AlertEvent) error {
	var b strings.Builder

	fmt.Fprintf(&b, "[%s] %s", ev.Time.Format(time.RFC3339), ev.Severity)

	if len(ev.MACs) > 0 {
		fmt.Fprintf(&b, " MAC=%s", ev.MACs[0])
	}

	if ev.SSID != nil {
		fmt.Fprintf(&b, " SSID='%s'", *ev.SSID)
	}

	if len(ev.OUIHits) > 0 {
		fmt.Fprintf(&b, " OUI=%s", ev.OUIHits[0].OUI)
	}

	if len(ev.SSIDLabels) > 0 {
		fmt.Fprintf(&b, " TAGS=%s", strings.Join(ev.SSIDLabels, ","))
	}

	if ev.Channel != 0 {
		fmt.Fprintf(&b, " CH=%d", ev.Channel)
	}

	if ev.Power != 0 {
		fmt.Fprintf(&b, " PWR=%d", ev.Power)
	}

	if _, err := fmt.Fprintln(c.w, b.String()); err != nil {
		return fmt.Errorf("writing console alert: %w", err)
	}

	return nil
}

// Close is a no-op; the console writer is not owned by the emitter.
func (*ConsoleEmitter) Close() error {
	return nil
}
