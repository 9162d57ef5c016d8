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

package bridge

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/carverauto/assetbridge/pkg/logger"
	"github.com/carverauto/assetbridge/pkg/models"
)

// Metrics defines the interface for collecting bridge metrics. It also
// satisfies the integration recorders so one value can be handed to every client.
type Metrics interface {
	RecordEvent(outcome models.Outcome, duration time.Duration)
	RecordTokenFetch(success bool)
	RecordAPICall(integration, endpoint string, statusCode int, duration time.Duration)

	// Export metrics for the status endpoint
	GetMetrics() map[string]interface{}
}

// NoOpMetrics provides a no-op implementation of the Metrics interface
type NoOpMetrics struct{}

func (*NoOpMetrics) RecordEvent(models.Outcome, time.Duration)        {}
func (*NoOpMetrics) RecordTokenFetch(bool)                            {}
func (*NoOpMetrics) RecordAPICall(string, string, int, time.Duration) {}
func (*NoOpMetrics) GetMetrics() map[string]interface{}               { return map[string]interface{}{} }

// InMemoryMetrics keeps counters in process for GET /status.
type InMemoryMetrics struct {
	mu     sync.RWMutex
	logger logger.Logger

	events        map[string]int
	eventDuration map[string]time.Duration

	tokenFetchSuccess int
	tokenFetchFailure int

	apiCalls    map[string]int
	apiFailures map[string]int
	apiDuration map[string]time.Duration
	apiStatus   map[string]int

	startedAt   time.Time
	lastUpdated time.Time
}

// NewInMemoryMetrics creates a new in-memory metrics collector
func NewInMemoryMetrics(log logger.Logger) *InMemoryMetrics {
	now := time.Now()

	return &InMemoryMetrics{
		logger:        log,
		events:        make(map[string]int),
		eventDuration: make(map[string]time.Duration),
		apiCalls:      make(map[string]int),
		apiFailures:   make(map[string]int),
		apiDuration:   make(map[string]time.Duration),
		apiStatus:     make(map[string]int),
		startedAt:     now,
		lastUpdated:   now,
	}
}

func (m *InMemoryMetrics) RecordEvent(outcome models.Outcome, duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.events[string(outcome)]++
	m.eventDuration[string(outcome)] = duration
	m.lastUpdated = time.Now()
}

func (m *InMemoryMetrics) RecordTokenFetch(success bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if success {
		m.tokenFetchSuccess++
	} else {
		m.tokenFetchFailure++
	}

	m.lastUpdated = time.Now()
}

func (m *InMemoryMetrics) RecordAPICall(integration, endpoint string, statusCode int, duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := integration + ":" + endpoint
	m.apiCalls[key]++
	m.apiDuration[key] = duration
	m.apiStatus[key] = statusCode
	m.lastUpdated = time.Now()

	if statusCode == 0 || statusCode >= 400 {
		m.apiFailures[key]++

		m.logger.Warn().
			Str("integration", integration).
			Str("endpoint", endpoint).
			Int("status_code", statusCode).
			Dur("duration", duration).
			Msg("API call failed")
	}
}

func (m *InMemoryMetrics) GetMetrics() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return map[string]interface{}{
		"events": map[string]interface{}{
			"outcomes":  copyMap(m.events),
			"durations": copyMap(m.eventDuration),
		},
		"token": map[string]interface{}{
			"fetch_success": m.tokenFetchSuccess,
			"fetch_failure": m.tokenFetchFailure,
		},
		"api": map[string]interface{}{
			"calls":       copyMap(m.apiCalls),
			"failures":    copyMap(m.apiFailures),
			"durations":   copyMap(m.apiDuration),
			"last_status": copyMap(m.apiStatus),
		},
		"service": map[string]interface{}{
			"started_at":   m.startedAt,
			"last_updated": m.lastUpdated,
		},
	}
}

func copyMap[V any](src map[string]V) map[string]V {
	dst := make(map[string]V, len(src))
	for k, v := range src {
		dst[k] = v
	}

	return dst
}

// OTelMetrics records the same signals as OpenTelemetry instruments.
type OTelMetrics struct {
	events      metric.Int64Counter
	eventTime   metric.Float64Histogram
	tokenFetch  metric.Int64Counter
	apiCalls    metric.Int64Counter
	apiDuration metric.Float64Histogram
}

// NewOTelMetrics registers the bridge instruments on meter.
func NewOTelMetrics(meter metric.Meter) (*OTelMetrics, error) {
	events, err := meter.Int64Counter("assetbridge.events",
		metric.WithDescription("Processed webhook events by outcome"))
	if err != nil {
		return nil, fmt.Errorf("failed to create events counter: %w", err)
	}

	eventTime, err := meter.Float64Histogram("assetbridge.event.duration",
		metric.WithDescription("Webhook processing time"), metric.WithUnit("s"))
	if err != nil {
		return nil, fmt.Errorf("failed to create event duration histogram: %w", err)
	}

	tokenFetch, err := meter.Int64Counter("assetbridge.token.fetches",
		metric.WithDescription("Bearer token exchanges"))
	if err != nil {
		return nil, fmt.Errorf("failed to create token counter: %w", err)
	}

	apiCalls, err := meter.Int64Counter("assetbridge.api.calls",
		metric.WithDescription("Outbound API calls"))
	if err != nil {
		return nil, fmt.Errorf("failed to create api counter: %w", err)
	}

	apiDuration, err := meter.Float64Histogram("assetbridge.api.duration",
		metric.WithDescription("Outbound API latency"), metric.WithUnit("s"))
	if err != nil {
		return nil, fmt.Errorf("failed to create api duration histogram: %w", err)
	}

	return &OTelMetrics{
		events:      events,
		eventTime:   eventTime,
		tokenFetch:  tokenFetch,
		apiCalls:    apiCalls,
		apiDuration: apiDuration,
	}, nil
}

func (m *OTelMetrics) RecordEvent(outcome models.Outcome, duration time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String("outcome", string(outcome)),
		attribute.String("status", string(outcome.Status())),
	)

	m.events.Add(context.Background(), 1, attrs)
	m.eventTime.Record(context.Background(), duration.Seconds(), attrs)
}

func (m *OTelMetrics) RecordTokenFetch(success bool) {
	m.tokenFetch.Add(context.Background(), 1, metric.WithAttributes(attribute.Bool("success", success)))
}

func (m *OTelMetrics) RecordAPICall(integration, endpoint string, statusCode int, duration time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String("integration", integration),
		attribute.String("endpoint", endpoint),
		attribute.String("status_code", strconv.Itoa(statusCode)),
	)

	m.apiCalls.Add(context.Background(), 1, attrs)
	m.apiDuration.Record(context.Background(), duration.Seconds(), attrs)
}

// GetMetrics is empty; OTel instruments are read by the exporter.
func (*OTelMetrics) GetMetrics() map[string]interface{} {
	return map[string]interface{}{}
}

// MultiMetrics fans every record out. GetMetrics reports the first collector.
type MultiMetrics []Metrics

func (mm MultiMetrics) RecordEvent(outcome models.Outcome, duration time.Duration) {
	for _, m := range mm {
		m.RecordEvent(outcome, duration)
	}
}

func (mm MultiMetrics) RecordTokenFetch(success bool) {
	for _, m := range mm {
		m.RecordTokenFetch(success)
	}
}

func (mm MultiMetrics) RecordAPICall(integration, endpoint string, statusCode int, duration time.Duration) {
	for _, m := range mm {
		m.RecordAPICall(integration, endpoint, statusCode, duration)
	}
}

func (mm MultiMetrics) GetMetrics() map[string]interface{} {
	if len(mm) == 0 {
		return map[string]interface{}{}
	}

	return mm[0].GetMetrics()
}
