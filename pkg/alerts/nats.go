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

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/carverauto/dronewatch/pkg/models"
)

const (
	defaultStream  = "dronewatch"
	defaultSubject = "alerts.drone"

	eventSource = "dronewatch/detector"
	eventType   = "com.carverauto.dronewatch.alert"
)

// NATSConfig configures the optional JetStream alert sink.
type NATSConfig struct {
	URL     string `json:"url"`
	Stream  string `json:"stream,omitempty"`
	Subject string `json:"subject,omitempty"`
}

// NATSEmitter publishes alerts as CloudEvents to a JetStream subject.
type NATSEmitter struct {
	nc      *nats.Conn
	js      jetstream.JetStream
	subject string
}

// NewNATSEmitter connects to NATS and ensures the alert stream exists.
func NewNATSEmitter(ctx context.Context, cfg *NATSConfig) (*NATSEmitter, error) {
	stream := cfg.Stream
	if stream == "" {
		stream = defaultStream
	}

	subject := cfg.Subject
	if subject == "" {
		subject = defaultSubject
	}

	nc, err := nats.Connect(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	if _, err := js.Stream(ctx, stream); err != nil {
		streamConfig := jetstream.StreamConfig{
			Name:     stream,
			Subjects: []string{subject},
		}

		if _, err := js.CreateOrUpdateStream(ctx, streamConfig); err != nil {
			nc.Close()
			return nil, fmt.Errorf("failed to create or get stream %s: %w", stream, err)
		}
	}

	return &NATSEmitter{nc: nc, js: js, subject: subject}, nil
}

// Emit wraps ev in a CloudEvent and publishes it.
func (n *NATSEmitter) Emit(ctx context.Context, ev *models.AlertEvent) error {
	ts := ev.Time

	event := models.CloudEvent{
		SpecVersion:     "1.0",
		ID:              uuid.New().String(),
		Source:          eventSource,
		Type:            eventType,
		DataContentType: "application/json",
		Subject:         n.subject,
		Time:            &ts,
		Data:            ev,
	}

	eventBytes, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal alert event: %w", err)
	}

	if _, err := n.js.Publish(ctx, n.subject, eventBytes); err != nil {
		return fmt.Errorf("failed to publish alert event: %w", err)
	}

	return nil
}

// Close drains the NATS connection.
func (n *NATSEmitter) Close() error {
	n.nc.Close()

	return nil
}
