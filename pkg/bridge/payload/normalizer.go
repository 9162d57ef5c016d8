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

// Package payload turns inbound webhook bodies into canonical sync requests.
// Two shapes are accepted: the inventory system's structured event and its
// Slack-compatible chat notification, plus the sender's connectivity test.
package payload

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

const (
	DefaultTestChannel  = "#endor"
	DefaultTestMarker   = "Hello :wave:"
	DefaultMaxBodyBytes = 1 << 20
)

// Config tunes the normalizer.
type Config struct {
	TestChannel  string `json:"test_channel"`
	TestMarker   string `json:"test_marker"`
	MaxBodyBytes int64  `json:"max_body_bytes"`
}

// Normalizer classifies a body and validates it into a SyncRequest.
type Normalizer struct {
	testChannel  string
	testMarker   string
	maxBodyBytes int64
	rules        *chatRules
}

// NewNormalizer applies defaults for unset Config fields.
func NewNormalizer(cfg Config) *Normalizer {
	n := &Normalizer{
		testChannel:  cfg.TestChannel,
		testMarker:   cfg.TestMarker,
		maxBodyBytes: cfg.MaxBodyBytes,
		rules:        defaultChatRules(),
	}

	if n.testChannel == "" {
		n.testChannel = DefaultTestChannel
	}

	if n.testMarker == "" {
		n.testMarker = DefaultTestMarker
	}

	if n.maxBodyBytes <= 0 {
		n.maxBodyBytes = DefaultMaxBodyBytes
	}

	return n
}

// NormalizeReader reads at most the configured body size from r and normalizes it.
func (n *Normalizer) NormalizeReader(r io.Reader) (*Result, error) {
	body, err := io.ReadAll(io.LimitReader(r, n.maxBodyBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedPayload, err)
	}

	if int64(len(body)) > n.maxBodyBytes {
		return nil, fmt.Errorf("%w: %w (%d bytes)", ErrMalformedPayload, errBodyTooLarge, n.maxBodyBytes)
	}

	return n.Normalize(body)
}

// Normalize decides the payload kind and validates the body. Every parse
// failure wraps ErrMalformedPayload; unsupported but well-formed events come
// back as an ignored Result with a nil error.
func (n *Normalizer) Normalize(body []byte) (*Result, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil, fmt.Errorf("%w: %w", ErrMalformedPayload, errEmptyBody)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil || fields == nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedPayload, errNotObject)
	}

	switch n.kindOf(fields) {
	case KindStructured:
		var event structuredEvent
		if err := json.Unmarshal(body, &event); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformedPayload, err)
		}

		return normalizeStructured(&event)
	case KindChat:
		var note chatNotification
		if err := json.Unmarshal(body, &note); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformedPayload, err)
		}

		if n.isTestPing(&note) {
			return &Result{Kind: KindTestPing, Reason: "sender connectivity test"}, nil
		}

		return n.rules.normalize(&note)
	default:
		return nil, fmt.Errorf("%w: %w", ErrMalformedPayload, errUnknownShape)
	}
}

// kindOf is the discriminator: an event or asset key means structured,
// chat keys mean chat. Test pings are chat bodies and are split off later.
func (*Normalizer) kindOf(fields map[string]json.RawMessage) Kind {
	if _, ok := fields["event"]; ok {
		return KindStructured
	}

	if _, ok := fields["asset"]; ok {
		return KindStructured
	}

	for _, key := range []string{"attachments", "channel", "text"} {
		if _, ok := fields[key]; ok {
			return KindChat
		}
	}

	return ""
}

func (n *Normalizer) isTestPing(note *chatNotification) bool {
	return strings.EqualFold(strings.TrimSpace(note.Channel), n.testChannel) &&
		strings.Contains(note.Text, n.testMarker)
}
