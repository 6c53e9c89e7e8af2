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

import "errors"

var (
	// ErrNoSnapshotPrefix means the config names no capture output to watch.
	ErrNoSnapshotPrefix = errors.New("snapshot_prefix is required")

	// ErrNoRuleSources means neither an OUI table nor an SSID rule file was
	// configured, leaving nothing to detect.
	ErrNoRuleSources = errors.New("at least one of oui_file or ssid_rules_file is required")
)
