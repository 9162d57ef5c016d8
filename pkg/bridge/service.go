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

// Package bridge runs the webhook pipeline: authenticate the sender, normalize
// the payload, resolve the device and patch its user and location, then audit
// the attempt. Every request ends in exactly one Outcome and one audit record.
package bridge

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"runtime/debug"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/carverauto/assetbridge/pkg/audit"
	"github.com/carverauto/assetbridge/pkg/bridge/integrations/jamf"
	"github.com/carverauto/assetbridge/pkg/bridge/payload"
	"github.com/carverauto/assetbridge/pkg/logger"
	"github.com/carverauto/assetbridge/pkg/models"
)

const (
	// SecretHeader carries the shared webhook secret.
	SecretHeader = "X-Webhook-Secret"
	// SecretQueryParam is the query-string alternative to SecretHeader.
	SecretQueryParam = "secret"

	tracerName = "github.com/carverauto/assetbridge/pkg/bridge"
)

// Inbound is the transport-neutral view of one webhook request.
type Inbound struct {
	Header     http.Header
	Query      url.Values
	Body       io.Reader
	RemoteAddr string
}

// Result is what the transport sends back. Message is plain text.
type Result struct {
	Outcome models.Outcome
	Message string
	Record  *models.AuditRecord
}

// Dependencies are the collaborators of a Service. Resolver may be nil when
// asset tag resolution is not configured.
type Dependencies struct {
	Devices  DeviceClient
	Resolver SerialResolver
	Audit    audit.Sink
	Metrics  Metrics
	Logger   logger.Logger
	Tracer   trace.Tracer
	Clock    func() time.Time
}

// Service processes webhook requests. It is safe for concurrent use.
type Service struct {
	config     *Config
	normalizer *payload.Normalizer
	devices    DeviceClient
	resolver   SerialResolver
	audit      audit.Sink
	metrics    Metrics
	logger     logger.Logger
	tracer     trace.Tracer
	now        func() time.Time
}

// NewService wires a Service from a validated Config.
func NewService(cfg *Config, deps Dependencies) (*Service, error) {
	if deps.Devices == nil {
		return nil, errDeviceClientMissing
	}

	if deps.Audit == nil {
		return nil, errAuditSinkMissing
	}

	s := &Service{
		config:     cfg,
		normalizer: payload.NewNormalizer(cfg.Payload),
		devices:    deps.Devices,
		resolver:   deps.Resolver,
		audit:      deps.Audit,
		metrics:    deps.Metrics,
		logger:     deps.Logger,
		tracer:     deps.Tracer,
		now:        deps.Clock,
	}

	if s.metrics == nil {
		s.metrics = &NoOpMetrics{}
	}

	if s.logger == nil {
		s.logger = logger.NewTestLogger()
	}

	s.logger = s.logger.WithComponent("bridge")

	if s.tracer == nil {
		s.tracer = logger.GetTracer(tracerName)
	}

	if s.now == nil {
		s.now = time.Now
	}

	return s, nil
}

// Process runs one request to completion and audits it. It never panics and
// never returns a nil Result.
func (s *Service) Process(ctx context.Context, in *Inbound) (result *Result) {
	start := s.now()

	ctx, span := s.tracer.Start(ctx, "bridge.Process", trace.WithSpanKind(trace.SpanKindServer))
	defer span.End()

	record := &models.AuditRecord{
		ID:         uuid.New().String(),
		Timestamp:  start.UTC(),
		RemoteAddr: in.RemoteAddr,
	}

	defer func() {
		if r := recover(); r != nil {
			s.logger.Error().
				Interface("panic", r).
				Bytes("stack", debug.Stack()).
				Str("audit_id", record.ID).
				Msg("Recovered from panic while processing webhook")

			result = s.finish(ctx, span, record, models.OutcomeUnhandledError,
				fmt.Sprintf("unhandled error: %v", r), start)
		}
	}()

	outcome, message := s.run(ctx, in, record)

	return s.finish(ctx, span, record, outcome, message, start)
}

func (s *Service) run(ctx context.Context, in *Inbound, record *models.AuditRecord) (models.Outcome, string) {
	if outcome, err := s.authenticate(in); err != nil {
		return outcome, err.Error()
	}

	if outcome, err := s.checkSourceHost(in.Header); err != nil {
		return outcome, err.Error()
	}

	body := in.Body
	if body == nil {
		body = http.NoBody
	}

	parsed, err := s.normalizer.NormalizeReader(body)
	if err != nil {
		return models.OutcomeMalformedPayload, err.Error()
	}

	record.PayloadKind = string(parsed.Kind)

	switch {
	case parsed.Kind == payload.KindTestPing:
		return models.OutcomeTestPing, "test notification received"
	case parsed.Ignored:
		record.AssetTag = parsed.AssetHint
		return models.OutcomeIgnored, parsed.Reason
	}

	req := parsed.Request
	record.EventKind = req.EventKind
	record.Username = req.Username

	serial, outcome, message := s.resolveSerial(ctx, req, record)
	if outcome != "" {
		return outcome, message
	}

	record.SerialNumber = serial

	return s.syncDevice(ctx, req, serial, record)
}

// authenticate compares the header and query secrets in constant time. Either
// one matching is enough.
func (s *Service) authenticate(in *Inbound) (models.Outcome, error) {
	if s.config.Secret == "" {
		return models.OutcomeConfigError, errSecretNotConfigured
	}

	expected := []byte(s.config.Secret)

	for _, candidate := range []string{in.Header.Get(SecretHeader), in.Query.Get(SecretQueryParam)} {
		if candidate != "" && subtle.ConstantTimeCompare([]byte(candidate), expected) == 1 {
			return "", nil
		}
	}

	return models.OutcomeUnauthorized, errSecretMismatch
}

// checkSourceHost accepts the request when the Referer or Origin hostname
// equals the configured source host. An empty source host disables the check.
func (s *Service) checkSourceHost(header http.Header) (models.Outcome, error) {
	if s.config.SourceHost == "" {
		return "", nil
	}

	expected, err := expectedHostname(s.config.SourceHost)
	if err != nil {
		return models.OutcomeConfigError, err
	}

	for _, name := range []string{"Referer", "Origin"} {
		value := header.Get(name)
		if value == "" {
			continue
		}

		u, err := url.Parse(value)
		if err != nil {
			continue
		}

		if strings.EqualFold(u.Hostname(), expected) {
			return "", nil
		}
	}

	return models.OutcomeUnauthorized, errHostMismatch
}

// resolveSerial returns the serial for req. A non-empty outcome ends the pipeline.
func (s *Service) resolveSerial(
	ctx context.Context, req *models.SyncRequest, record *models.AuditRecord,
) (string, models.Outcome, string) {
	if !req.NeedsResolution() {
		return req.AssetIdentifier, "", ""
	}

	record.AssetTag = req.AssetIdentifier

	if s.resolver == nil {
		return "", models.OutcomeConfigError, errResolverDisabled.Error()
	}

	ctx, span := s.tracer.Start(ctx, "bridge.ResolveSerial")
	defer span.End()

	span.SetAttributes(attribute.String("asset_tag", req.AssetIdentifier))

	serial, found, err := s.resolver.ResolveSerial(ctx, req.AssetIdentifier)
	if err != nil {
		span.RecordError(err)
		return "", models.OutcomeLookupError, err.Error()
	}

	if !found {
		return "", models.OutcomeNotFound, fmt.Sprintf("no inventory asset with tag %q", req.AssetIdentifier)
	}

	return serial, "", ""
}

func (s *Service) syncDevice(
	ctx context.Context, req *models.SyncRequest, serial string, record *models.AuditRecord,
) (models.Outcome, string) {
	deviceID, err := s.devices.ResolveBySerial(ctx, serial)
	if err != nil {
		return outcomeForError(err), err.Error()
	}

	record.DeviceID = deviceID

	status, err := s.devices.ApplyUserAndLocation(ctx, deviceID, req.Username, req.RealName, req.LocationName)
	if err != nil {
		return outcomeForError(err), err.Error()
	}

	s.logger.Info().
		Str("serial", serial).
		Str("device_id", deviceID).
		Str("event_kind", string(req.EventKind)).
		Int("status", status).
		Msg("Updated device user and location")

	return models.OutcomeUpdated, fmt.Sprintf("%s: updated device %s (serial %s)", req.EventKind, deviceID, serial)
}

// outcomeForError maps device-client errors onto outcomes. Unknown errors are
// UnhandledError.
func outcomeForError(err error) models.Outcome {
	switch {
	case errors.Is(err, jamf.ErrDeviceNotFound):
		return models.OutcomeNotFound
	case errors.Is(err, jamf.ErrAuthConfig):
		return models.OutcomeAuthConfigError
	case errors.Is(err, jamf.ErrAuthFetch):
		return models.OutcomeAuthFetchError
	case errors.Is(err, jamf.ErrLookup):
		return models.OutcomeLookupError
	case errors.Is(err, jamf.ErrUpdate):
		return models.OutcomeUpdateError
	default:
		return models.OutcomeUnhandledError
	}
}

// finish completes the record, writes it on a detached context and records
// metrics. Audit failures are logged and never change the result.
func (s *Service) finish(
	ctx context.Context, span trace.Span, record *models.AuditRecord,
	outcome models.Outcome, message string, start time.Time,
) *Result {
	record.Outcome = outcome
	record.Status = outcome.Status()
	record.Detail = message
	record.Duration = s.now().Sub(start)

	span.SetAttributes(
		attribute.String("assetbridge.outcome", string(outcome)),
		attribute.String("assetbridge.audit_id", record.ID),
	)

	if outcome.IsFailure() {
		span.SetStatus(codes.Error, message)
	}

	auditCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.config.AuditTimeout.Or(DefaultAuditTimeout))
	defer cancel()

	if err := s.writeAudit(auditCtx, record); err != nil {
		s.logger.Error().
			Err(err).
			Str("audit_id", record.ID).
			Str("outcome", string(outcome)).
			Msg("Failed to write audit record")
	}

	s.metrics.RecordEvent(outcome, record.Duration)

	return &Result{Outcome: outcome, Message: message, Record: record}
}

func (s *Service) writeAudit(ctx context.Context, record *models.AuditRecord) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("audit sink panicked: %v", r)
		}
	}()

	return s.audit.Write(ctx, record)
}
