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

package natsutil

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errTestFixture = errors.New("fixture error")

func TestEnsureSubjectList(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		subjects []string
		subject  string
		want     []string
	}{
		{
			name:     "adds subject when list empty",
			subjects: nil,
			subject:  "assetbridge.audit.Updated",
			want:     []string{"assetbridge.audit.Updated"},
		},
		{
			name:     "keeps list when wildcard matches",
			subjects: []string{"assetbridge.audit.*"},
			subject:  "assetbridge.audit.Updated",
			want:     []string{"assetbridge.audit.*"},
		},
		{
			name:     "keeps list when greater wildcard matches",
			subjects: []string{"assetbridge.>"},
			subject:  "assetbridge.audit.Updated",
			want:     []string{"assetbridge.>"},
		},
		{
			name:     "appends when unmatched",
			subjects: []string{"events.syslog.*"},
			subject:  "assetbridge.audit.*",
			want:     []string{"events.syslog.*", "assetbridge.audit.*"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			result := ensureSubjectList(append([]string(nil), tc.subjects...), tc.subject)
			assert.Equal(t, tc.want, result)
		})
	}
}

func TestMatchesSubject(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		pattern  string
		subject  string
		expected bool
	}{
		{"exact match", "assetbridge.audit.Updated", "assetbridge.audit.Updated", true},
		{"single wildcard", "assetbridge.*.Updated", "assetbridge.audit.Updated", true},
		{"greater wildcard", "assetbridge.>", "assetbridge.audit.Updated", true},
		{"greater wildcard needs a token", "assetbridge.audit.>", "assetbridge.audit", false},
		{"no match length", "assetbridge.*", "assetbridge.audit.Updated", false},
		{"no match tokens", "events.syslog.*", "assetbridge.audit.Updated", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.expected, matchesSubject(tc.pattern, tc.subject))
		})
	}
}

func TestIsStreamMissingErr(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"jetstream no stream response", jetstream.ErrNoStreamResponse, true},
		{"jetstream stream not found", jetstream.ErrStreamNotFound, true},
		{"nats no stream response", nats.ErrNoStreamResponse, true},
		{"nats stream not found", nats.ErrStreamNotFound, true},
		{"nats no responders", nats.ErrNoResponders, true},
		{"other error", errTestFixture, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.expected, isStreamMissingErr(tc.err))
		})
	}
}

func TestTLSConfig(t *testing.T) {
	t.Parallel()

	_, err := TLSConfig(&TLSFiles{CertFile: "client.pem"})
	require.ErrorIs(t, err, ErrTLSFilesRequired)

	conf, err := TLSConfig(&TLSFiles{ServerName: "nats.internal"})
	require.NoError(t, err)
	assert.Equal(t, "nats.internal", conf.ServerName)
	assert.Nil(t, conf.RootCAs)

	badCA := filepath.Join(t.TempDir(), "ca.pem")
	require.NoError(t, os.WriteFile(badCA, []byte("not a certificate"), 0o600))

	_, err = TLSConfig(&TLSFiles{CAFile: badCA})
	require.ErrorIs(t, err, ErrCAParsingFailed)
}
