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

package audit

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/nats-io/nats.go"

	"github.com/carverauto/assetbridge/pkg/logger"
	"github.com/carverauto/assetbridge/pkg/models"
	"github.com/carverauto/assetbridge/pkg/natsutil"
)

const (
	// AuditEventType is the CloudEvent type of every published record.
	AuditEventType = "com.carverauto.assetbridge.audit"

	DefaultNATSStream        = "ASSETBRIDGE_AUDIT"
	DefaultNATSSubjectPrefix = "assetbridge.audit"

	auditEventSource = "assetbridge/bridge"
)

// NATSConfig points the sink at a JetStream-enabled server.
type NATSConfig struct {
	URL           string             `json:"url"`
	Stream        string             `json:"stream"`
	SubjectPrefix string             `json:"subject_prefix"`
	Domain        string             `json:"domain,omitempty"`
	CredsFile     string             `json:"creds_file,omitempty"`
	TLS           *natsutil.TLSFiles `json:"tls,omitempty"`
}

func (c *NATSConfig) stream() string {
	if c.Stream == "" {
		return DefaultNATSStream
	}

	return c.Stream
}

func (c *NATSConfig) subjectPrefix() string {
	if c.SubjectPrefix == "" {
		return DefaultNATSSubjectPrefix
	}

	return strings.TrimSuffix(c.SubjectPrefix, ".")
}

// NATSSink publishes each record as a CloudEvent on <prefix>.<outcome>.
type NATSSink struct {
	publisher EventPublisher
	prefix    string
	conn      *nats.Conn
	logger    logger.Logger
	closed    atomic.Bool
}

// NewNATSSink connects, makes sure the stream captures <prefix>.* and returns the sink.
func NewNATSSink(ctx context.Context, cfg *NATSConfig, log logger.Logger) (*NATSSink, error) {
	if cfg == nil || cfg.URL == "" {
		return nil, errNATSURLRequired
	}

	log = log.WithComponent("audit")

	nc, err := natsutil.Connect(natsutil.ConnectOptions{
		URL:       cfg.URL,
		CredsFile: cfg.CredsFile,
		TLS:       cfg.TLS,
		Name:      "assetbridge-audit",
	}, log)
	if err != nil {
		return nil, err
	}

	prefix := cfg.subjectPrefix()

	publisher, err := natsutil.CreateEventPublisherWithDomain(ctx, nc, cfg.Domain, cfg.stream(), prefix+".*", auditEventSource)
	if err != nil {
		nc.Close()
		return nil, err
	}

	sink := NewNATSSinkWithPublisher(publisher, prefix, log)
	sink.conn = nc

	log.Info().
		Str("url", cfg.URL).
		Str("stream", cfg.stream()).
		Str("subject_prefix", prefix).
		Msg("Connected NATS audit sink")

	return sink, nil
}

// NewNATSSinkWithPublisher builds a sink around an existing publisher.
func NewNATSSinkWithPublisher(publisher EventPublisher, prefix string, log logger.Logger) *NATSSink {
	if prefix == "" {
		prefix = DefaultNATSSubjectPrefix
	}

	return &NATSSink{publisher: publisher, prefix: prefix, logger: log}
}

// Subject returns the subject a record with the given outcome is published on.
func (s *NATSSink) Subject(outcome models.Outcome) string {
	return s.prefix + "." + string(outcome)
}

func (s *NATSSink) Write(ctx context.Context, record *models.AuditRecord) error {
	if record == nil {
		return ErrNilRecord
	}

	if s.closed.Load() {
		return ErrSinkClosed
	}

	seq, err := s.publisher.Publish(ctx, AuditEventType, s.Subject(record.Outcome), record.Timestamp, record)
	if err != nil {
		return fmt.Errorf("failed to publish audit record %s: %w", record.ID, err)
	}

	s.logger.Debug().Str("audit_id", record.ID).Uint64("seq", seq).Msg("Published audit record")

	return nil
}

func (s *NATSSink) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}

	if s.conn != nil {
		return s.conn.Drain()
	}

	return nil
}
