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

package payload

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/carverauto/assetbridge/pkg/models"
)

// Capture names used by the chat rule table.
const (
	captureDirection = "direction"
	captureTag       = "tag"
	captureLabel     = "label"
)

// captureRule is one named extraction over a set of candidate strings.
// The first candidate that matches wins.
type captureRule struct {
	name    string
	pattern *regexp.Regexp
	// capture is the named group holding the value.
	capture string
	sources func(note *chatNotification) []string
}

func (r *captureRule) find(note *chatNotification) (string, bool) {
	idx := r.pattern.SubexpIndex(r.capture)

	for _, candidate := range r.sources(note) {
		if m := r.pattern.FindStringSubmatch(candidate); m != nil {
			return m[idx], true
		}
	}

	return "", false
}

// chatRules is the grammar for Slack-style notifications. Extraction is a
// best-effort heuristic: usernames are derived from display names, so two
// people with the same name collide and usernames that are not the squashed
// display name come out wrong.
type chatRules struct {
	// eventKind is tried in order; the fallback only looks at titles.
	eventKind   []*captureRule
	assetTag    *captureRule
	link        *regexp.Regexp
	userFields  []string
	locationKey string
}

func defaultChatRules() *chatRules {
	return &chatRules{
		eventKind: []*captureRule{
			{
				name:    "event_kind",
				pattern: regexp.MustCompile(`(?i)asset\s+checked\s+(?P<direction>out|in)`),
				capture: captureDirection,
				sources: allTexts,
			},
			{
				name:    "event_kind_title",
				pattern: regexp.MustCompile(`(?i)\bchecked\s+(?P<direction>out|in)\b`),
				capture: captureDirection,
				sources: titles,
			},
		},
		assetTag: &captureRule{
			name:    "asset_tag",
			pattern: regexp.MustCompile(`\((?P<tag>\d+)\)`),
			capture: captureTag,
			sources: titles,
		},
		link:        regexp.MustCompile(`<[^|>]*\|(?P<label>[^>]+)>`),
		userFields:  []string{"To", "Administrator"},
		locationKey: "Location",
	}
}

func (c *chatRules) normalize(note *chatNotification) (*Result, error) {
	if len(note.Attachments) == 0 {
		return nil, fmt.Errorf("%w: %w", ErrMalformedPayload, errNoAttachment)
	}

	tag, tagFound := c.assetTag.find(note)

	kind, ok := c.eventKindOf(note)
	if !ok {
		return &Result{
			Kind:      KindChat,
			Ignored:   true,
			Reason:    "notification is not an asset check-in or check-out",
			AssetHint: tag,
		}, nil
	}

	if !tagFound {
		return nil, fmt.Errorf("%w: %w", ErrMalformedPayload, errMissingAssetTag)
	}

	realName := ""

	for _, label := range c.userFields {
		if realName = c.fieldText(note, label); realName != "" {
			break
		}
	}

	location := c.fieldText(note, c.locationKey)

	return &Result{
		Kind:      KindChat,
		Request:   models.NewSyncRequest(kind, tag, models.IdentifierAssetTag, DeriveUsername(realName), realName, location),
		AssetHint: tag,
	}, nil
}

func (c *chatRules) eventKindOf(note *chatNotification) (models.EventKind, bool) {
	for _, rule := range c.eventKind {
		direction, ok := rule.find(note)
		if !ok {
			continue
		}

		if strings.EqualFold(direction, "in") {
			return models.EventCheckedIn, true
		}

		return models.EventCheckedOut, true
	}

	return "", false
}

// fieldText returns the link label, or the trimmed plain text, of the first
// field whose title equals label case-insensitively.
func (c *chatRules) fieldText(note *chatNotification, label string) string {
	for i := range note.Attachments {
		for _, f := range note.Attachments[i].Fields {
			if !strings.EqualFold(strings.TrimSpace(f.Title), label) {
				continue
			}

			value := f.Value.String()

			if m := c.link.FindStringSubmatch(value); m != nil {
				return strings.TrimSpace(m[c.link.SubexpIndex(captureLabel)])
			}

			return strings.TrimSpace(value)
		}
	}

	return ""
}

// DeriveUsername lowercases name and strips all whitespace: "Jane Doe" -> "janedoe".
func DeriveUsername(name string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}

		return unicode.ToLower(r)
	}, name)
}

func allTexts(note *chatNotification) []string {
	out := []string{note.Text}

	for i := range note.Attachments {
		a := &note.Attachments[i]
		out = append(out, a.Pretext, a.Text, a.Title)
	}

	return out
}

func titles(note *chatNotification) []string {
	out := make([]string, 0, len(note.Attachments))

	for i := range note.Attachments {
		out = append(out, note.Attachments[i].Title)
	}

	return out
}
