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

	"github.com/goccy/go-json"

	"github.com/carverauto/dronewatch/pkg/models"
)

// JSONLEmitter appends one JSON object per accepted alert to a stream.
type JSONLEmitter struct {
	w      io.Writer
	closer io.Closer
}

// NewJSONLEmitter opens (or creates) an append-only alert file at path.
func NewJSONLEmitter(path string) (*JSONLEmitter, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, fmt.Errorf("opening alert stream '%s': %w", path, err)
	}

	return &JSONLEmitter{w: f, closer: f}, nil
}

// NewJSONLWriter wraps an existing writer, useful for tests.
func NewJSONLWriter(w io.Writer) *JSONLEmitter {
	return &JSONLEmitter{w: w}
}

// Emit appends the event as one JSON line.
func (j *JSONLEmitter) Emit(_ context.Context, ev *models.AlertEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encoding alert event: %w", err)
	}

	if _, err := j.w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("writing alert event: %w", err)
	}

	return nil
}

// Close closes the underlying file when the emitter owns one.
func (j *JSONLEmitter) Close() error {
	if j.closer == nil {
		return nil
	}

	return j.closer.Close()
}
