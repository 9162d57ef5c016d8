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
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/carverauto/assetbridge/pkg/audit"
	"github.com/carverauto/assetbridge/pkg/bridge/integrations/jamf"
	"github.com/carverauto/assetbridge/pkg/logger"
	"github.com/carverauto/assetbridge/pkg/models"
)

const (
	testSecret = "s3cret"

	checkInBody = `{"event":"asset.checkedin","asset":{"serial":"C02ABC","location":{"name":"HQ"}}}`
	checkOutBody = `{"event":"asset.checkedout","asset":{"serial":"C02ABC",` +
		`"assigned_to":{"username":"jdoe","first_name":"Jane","last_name":"Doe"},"location":{"name":"Lab"}}}`
	chatBody = `{"channel":"#it","attachments":[{"title":"MacBook 28 (18163) checked out",` +
		`"fields":[{"title":"To","value":"<http://x|Jane Doe>"}]}]}`
)

var errBoom = errors.New("boom")

type fixture struct {
	devices  *MockDeviceClient
	resolver *MockSerialResolver
	sink     *audit.MockSink
	metrics  *InMemoryMetrics
	config   *Config
	service  *Service

	mu      sync.Mutex
	records []*models.AuditRecord
}

func newFixture(t *testing.T, mutate func(*Config)) *fixture {
	t.Helper()

	ctrl := gomock.NewController(t)

	f := &fixture{
		devices:  NewMockDeviceClient(ctrl),
		resolver: NewMockSerialResolver(ctrl),
		sink:     audit.NewMockSink(ctrl),
		metrics:  NewInMemoryMetrics(logger.NewTestLogger()),
		config: &Config{
			Secret:       testSecret,
			ResponseMode: ResponseModeStrict,
		},
	}

	if mutate != nil {
		mutate(f.config)
	}

	f.sink.EXPECT().Write(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, r *models.AuditRecord) error {
			assert.NoError(t, ctx.Err(), "audit context must not inherit cancellation")

			f.mu.Lock()
			defer f.mu.Unlock()

			f.records = append(f.records, r)

			return nil
		}).AnyTimes()

	svc, err := NewService(f.config, Dependencies{
		Devices:  f.devices,
		Resolver: f.resolver,
		Audit:    f.sink,
		Metrics:  f.metrics,
		Logger:   logger.NewTestLogger(),
	})
	require.NoError(t, err)

	f.service = svc

	return f
}

func (f *fixture) process(body string, header http.Header, query url.Values) *Result {
	return f.service.Process(context.Background(), &Inbound{
		Header:     header,
		Query:      query,
		Body:       strings.NewReader(body),
		RemoteAddr: "10.1.2.3:5555",
	})
}

func (f *fixture) processAuthed(body string) *Result {
	return f.process(body, http.Header{SecretHeader: []string{testSecret}}, nil)
}

func (f *fixture) onlyRecord(t *testing.T) *models.AuditRecord {
	t.Helper()

	f.mu.Lock()
	defer f.mu.Unlock()

	require.Len(t, f.records, 1, "exactly one audit record per request")

	return f.records[0]
}

func TestProcess_UnauthorizedMakesNoCalls(t *testing.T) {
	tests := []struct {
		name   string
		header http.Header
		query  url.Values
	}{
		{name: "no secret"},
		{name: "wrong header", header: http.Header{SecretHeader: []string{"nope"}}},
		{name: "wrong query", query: url.Values{SecretQueryParam: []string{"nope"}}},
		{name: "prefix of secret", header: http.Header{SecretHeader: []string{"s3cre"}}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t, nil)

			res := f.process(checkInBody, tc.header, tc.query)

			assert.Equal(t, models.OutcomeUnauthorized, res.Outcome)

			rec := f.onlyRecord(t)
			assert.Equal(t, models.AuditStatusError, rec.Status)
			assert.Equal(t, models.OutcomeUnauthorized, rec.Outcome)
			assert.Equal(t, "10.1.2.3:5555", rec.RemoteAddr)
			assert.Empty(t, rec.PayloadKind, "payload is not parsed before authentication")
		})
	}
}

func TestProcess_SecretHeaderAndQueryAreInterchangeable(t *testing.T) {
	tests := []struct {
		name   string
		header http.Header
		query  url.Values
	}{
		{name: "header", header: http.Header{SecretHeader: []string{testSecret}}},
		{name: "lowercase header name", header: func() http.Header {
			h := http.Header{}
			h.Set("x-webhook-secret", testSecret)
			return h
		}()},
		{name: "query", query: url.Values{SecretQueryParam: []string{testSecret}}},
		{name: "wrong header but right query",
			header: http.Header{SecretHeader: []string{"nope"}},
			query:  url.Values{SecretQueryParam: []string{testSecret}}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t, nil)

			f.devices.EXPECT().ResolveBySerial(gomock.Any(), "C02ABC").Return("17", nil)
			f.devices.EXPECT().ApplyUserAndLocation(gomock.Any(), "17", "", "", "HQ").Return(http.StatusOK, nil)

			res := f.process(checkInBody, tc.header, tc.query)
			assert.Equal(t, models.OutcomeUpdated, res.Outcome)
		})
	}
}

func TestProcess_EmptySecretFailsClosed(t *testing.T) {
	f := newFixture(t, func(c *Config) { c.Secret = "" })

	res := f.process(checkInBody, http.Header{SecretHeader: []string{""}}, url.Values{SecretQueryParam: []string{""}})

	assert.Equal(t, models.OutcomeConfigError, res.Outcome)
	assert.Equal(t, models.OutcomeConfigError, f.onlyRecord(t).Outcome)
}

func TestProcess_SourceHost(t *testing.T) {
	tests := []struct {
		name       string
		sourceHost string
		headers    map[string]string
		expected   models.Outcome
	}{
		{
			name:       "referer matches case-insensitively",
			sourceHost: "https://inventory.example.com",
			headers:    map[string]string{"Referer": "https://INVENTORY.example.com/hardware/18163"},
			expected:   models.OutcomeUpdated,
		},
		{
			name:       "origin alone is enough",
			sourceHost: "inventory.example.com",
			headers:    map[string]string{"Origin": "https://inventory.example.com:8443"},
			expected:   models.OutcomeUpdated,
		},
		{
			name:       "bad referer but good origin",
			sourceHost: "https://inventory.example.com",
			headers: map[string]string{
				"Referer": "https://evil.example.com/",
				"Origin":  "https://inventory.example.com",
			},
			expected: models.OutcomeUpdated,
		},
		{
			name:       "neither header",
			sourceHost: "https://inventory.example.com",
			expected:   models.OutcomeUnauthorized,
		},
		{
			name:       "suffix is not a match",
			sourceHost: "https://inventory.example.com",
			headers:    map[string]string{"Referer": "https://inventory.example.com.evil.net/"},
			expected:   models.OutcomeUnauthorized,
		},
		{
			name:       "unparsable configured host",
			sourceHost: "https://",
			headers:    map[string]string{"Referer": "https://inventory.example.com/"},
			expected:   models.OutcomeConfigError,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t, func(c *Config) { c.SourceHost = tc.sourceHost })

			if tc.expected == models.OutcomeUpdated {
				f.devices.EXPECT().ResolveBySerial(gomock.Any(), "C02ABC").Return("17", nil)
				f.devices.EXPECT().ApplyUserAndLocation(gomock.Any(), "17", "", "", "HQ").Return(http.StatusNoContent, nil)
			}

			header := http.Header{SecretHeader: []string{testSecret}}
			for k, v := range tc.headers {
				header.Set(k, v)
			}

			res := f.process(checkInBody, header, nil)
			assert.Equal(t, tc.expected, res.Outcome, res.Message)
		})
	}
}

func TestProcess_StructuredCheckOut(t *testing.T) {
	f := newFixture(t, nil)

	f.devices.EXPECT().ResolveBySerial(gomock.Any(), "C02ABC").Return("17", nil)
	f.devices.EXPECT().ApplyUserAndLocation(gomock.Any(), "17", "jdoe", "Jane Doe", "Lab").Return(http.StatusOK, nil)

	res := f.processAuthed(checkOutBody)

	require.Equal(t, models.OutcomeUpdated, res.Outcome)
	assert.Contains(t, res.Message, "updated device 17")

	rec := f.onlyRecord(t)
	assert.Same(t, rec, res.Record)
	assert.Equal(t, models.AuditStatusSuccess, rec.Status)
	assert.Equal(t, models.EventCheckedOut, rec.EventKind)
	assert.Equal(t, "structured", rec.PayloadKind)
	assert.Equal(t, "C02ABC", rec.SerialNumber)
	assert.Equal(t, "17", rec.DeviceID)
	assert.Equal(t, "jdoe", rec.Username)
	assert.Empty(t, rec.AssetTag)
	assert.NotEmpty(t, rec.ID)
}

func TestProcess_ChatResolvesAssetTag(t *testing.T) {
	f := newFixture(t, nil)

	gomock.InOrder(
		f.resolver.EXPECT().ResolveSerial(gomock.Any(), "18163").Return("C02XYZ", true, nil),
		f.devices.EXPECT().ResolveBySerial(gomock.Any(), "C02XYZ").Return("99", nil),
		f.devices.EXPECT().ApplyUserAndLocation(gomock.Any(), "99", "janedoe", "Jane Doe", "").Return(http.StatusOK, nil),
	)

	res := f.processAuthed(chatBody)

	require.Equal(t, models.OutcomeUpdated, res.Outcome)

	rec := f.onlyRecord(t)
	assert.Equal(t, "chat", rec.PayloadKind)
	assert.Equal(t, "18163", rec.AssetTag)
	assert.Equal(t, "C02XYZ", rec.SerialNumber)
	assert.Equal(t, "99", rec.DeviceID)
}

func TestProcess_ResolverOutcomes(t *testing.T) {
	t.Run("not found", func(t *testing.T) {
		f := newFixture(t, nil)
		f.resolver.EXPECT().ResolveSerial(gomock.Any(), "18163").Return("", false, nil)

		res := f.processAuthed(chatBody)
		assert.Equal(t, models.OutcomeNotFound, res.Outcome)
		assert.Equal(t, "18163", f.onlyRecord(t).AssetTag)
	})

	t.Run("lookup error", func(t *testing.T) {
		f := newFixture(t, nil)
		f.resolver.EXPECT().ResolveSerial(gomock.Any(), "18163").Return("", false, errBoom)

		res := f.processAuthed(chatBody)
		assert.Equal(t, models.OutcomeLookupError, res.Outcome)
		assert.Contains(t, res.Message, "boom")
	})

	t.Run("resolution not configured", func(t *testing.T) {
		f := newFixture(t, nil)
		f.service.resolver = nil

		res := f.processAuthed(chatBody)
		assert.Equal(t, models.OutcomeConfigError, res.Outcome)
	})
}

func TestProcess_DeviceNotFoundSkipsUpdate(t *testing.T) {
	f := newFixture(t, nil)

	f.devices.EXPECT().ResolveBySerial(gomock.Any(), "C02ABC").
		Return("", fmt.Errorf("%w: serial %q", jamf.ErrDeviceNotFound, "C02ABC"))

	res := f.processAuthed(checkInBody)

	assert.Equal(t, models.OutcomeNotFound, res.Outcome)
	assert.Equal(t, models.AuditStatusError, f.onlyRecord(t).Status)
}

func TestProcess_ErrorMapping(t *testing.T) {
	tests := []struct {
		name      string
		lookupErr error
		updateErr error
		expected  models.Outcome
	}{
		{name: "auth config", lookupErr: fmt.Errorf("%w: missing password", jamf.ErrAuthConfig), expected: models.OutcomeAuthConfigError},
		{name: "auth fetch", lookupErr: fmt.Errorf("%w: 503", jamf.ErrAuthFetch), expected: models.OutcomeAuthFetchError},
		{name: "lookup", lookupErr: fmt.Errorf("%w: timeout", jamf.ErrLookup), expected: models.OutcomeLookupError},
		{name: "unknown lookup error", lookupErr: errBoom, expected: models.OutcomeUnhandledError},
		{name: "update rejected", updateErr: &jamf.UpdateError{StatusCode: 500, Body: "oops"}, expected: models.OutcomeUpdateError},
		{name: "update transport", updateErr: fmt.Errorf("%w: reset", jamf.ErrUpdate), expected: models.OutcomeUpdateError},
		{name: "token failure during update", updateErr: jamf.ErrAuthFetch, expected: models.OutcomeAuthFetchError},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t, nil)

			if tc.lookupErr != nil {
				f.devices.EXPECT().ResolveBySerial(gomock.Any(), "C02ABC").Return("", tc.lookupErr)
			} else {
				f.devices.EXPECT().ResolveBySerial(gomock.Any(), "C02ABC").Return("17", nil)
				f.devices.EXPECT().ApplyUserAndLocation(gomock.Any(), "17", "", "", "HQ").Return(0, tc.updateErr)
			}

			res := f.processAuthed(checkInBody)

			assert.Equal(t, tc.expected, res.Outcome)
			assert.Equal(t, tc.expected, f.onlyRecord(t).Outcome)
		})
	}
}

func TestProcess_PanicBecomesUnhandledError(t *testing.T) {
	f := newFixture(t, nil)

	f.devices.EXPECT().ResolveBySerial(gomock.Any(), "C02ABC").DoAndReturn(
		func(context.Context, string) (string, error) {
			panic("nil map write")
		})

	var res *Result

	require.NotPanics(t, func() { res = f.processAuthed(checkInBody) })

	assert.Equal(t, models.OutcomeUnhandledError, res.Outcome)
	assert.Contains(t, res.Message, "nil map write")
	assert.Equal(t, models.OutcomeUnhandledError, f.onlyRecord(t).Outcome)
}

func TestProcess_NonSyncOutcomes(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		expected models.Outcome
		kind     string
	}{
		{name: "unsupported event", body: `{"event":"asset.deleted","asset":{"serial":"X"}}`, expected: models.OutcomeIgnored, kind: "structured"},
		{name: "test ping", body: `{"channel":"#endor","text":"Hello :wave:"}`, expected: models.OutcomeTestPing, kind: "test_ping"},
		{name: "malformed", body: `{"event":`, expected: models.OutcomeMalformedPayload},
		{name: "empty", body: ``, expected: models.OutcomeMalformedPayload},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t, nil)

			res := f.processAuthed(tc.body)

			assert.Equal(t, tc.expected, res.Outcome)
			assert.NotEmpty(t, res.Message)
			assert.Equal(t, tc.kind, f.onlyRecord(t).PayloadKind)
		})
	}
}

func TestProcess_AuditFailureDoesNotChangeResult(t *testing.T) {
	ctrl := gomock.NewController(t)
	devices := NewMockDeviceClient(ctrl)
	sink := audit.NewMockSink(ctrl)

	sink.EXPECT().Write(gomock.Any(), gomock.Any()).Return(errBoom)
	devices.EXPECT().ResolveBySerial(gomock.Any(), "C02ABC").Return("17", nil)
	devices.EXPECT().ApplyUserAndLocation(gomock.Any(), "17", "", "", "HQ").Return(http.StatusOK, nil)

	svc, err := NewService(&Config{Secret: testSecret}, Dependencies{Devices: devices, Audit: sink})
	require.NoError(t, err)

	res := svc.Process(context.Background(), &Inbound{
		Header: http.Header{SecretHeader: []string{testSecret}},
		Body:   strings.NewReader(checkInBody),
	})

	assert.Equal(t, models.OutcomeUpdated, res.Outcome)
}

func TestProcess_CancelledContextStillAudits(t *testing.T) {
	f := newFixture(t, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := f.service.Process(ctx, &Inbound{Body: strings.NewReader(checkInBody)})

	assert.Equal(t, models.OutcomeUnauthorized, res.Outcome)
	f.onlyRecord(t)
}

func TestProcess_RecordsMetricsAndDuration(t *testing.T) {
	clock := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)

	f := newFixture(t, nil)
	f.service.now = func() time.Time {
		clock = clock.Add(250 * time.Millisecond)
		return clock
	}

	f.processAuthed(`{"event":"asset.updated","asset":{"serial":"X"}}`)
	f.process(checkInBody, nil, nil)

	outcomes := f.metrics.GetMetrics()["events"].(map[string]interface{})["outcomes"].(map[string]int)
	assert.Equal(t, 1, outcomes["Ignored"])
	assert.Equal(t, 1, outcomes["Unauthorized"])

	f.mu.Lock()
	defer f.mu.Unlock()

	require.Len(t, f.records, 2)
	assert.Equal(t, 250*time.Millisecond, f.records[0].Duration)
	assert.Equal(t, models.AuditStatusIgnored, f.records[0].Status)
}

func TestNewService_RequiresDependencies(t *testing.T) {
	_, err := NewService(&Config{}, Dependencies{})
	require.ErrorIs(t, err, errDeviceClientMissing)

	ctrl := gomock.NewController(t)

	_, err = NewService(&Config{}, Dependencies{Devices: NewMockDeviceClient(ctrl)})
	require.ErrorIs(t, err, errAuditSinkMissing)
}
