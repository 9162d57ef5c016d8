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
	"bytes"
	"encoding/json"
	"strings"

	"github.com/carverauto/assetbridge/pkg/models"
)

// Kind discriminates the supported webhook shapes.
type Kind string

const (
	KindStructured Kind = "structured"
	KindChat       Kind = "chat"
	KindTestPing   Kind = "test_ping"
)

// Result is the normalized form of one webhook body. Exactly one of Request,
// Ignored or Kind == KindTestPing describes what the caller should do.
type Result struct {
	Kind    Kind
	Request *models.SyncRequest
	// Ignored is set for well-formed events the bridge does not act on.
	Ignored bool
	Reason  string
	// AssetHint is the best identifier seen, kept for auditing ignored events.
	AssetHint string
}

// flexString decodes JSON strings and numbers alike. Inventory systems are not
// consistent about quoting numeric tags and ids.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)

	if bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}

	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}

		*f = flexString(strings.TrimSpace(s))

		return nil
	}

	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}

	*f = flexString(n.String())

	return nil
}

func (f flexString) String() string { return string(f) }

// structuredEvent is the inventory system's native webhook body.
type structuredEvent struct {
	Event string           `json:"event"`
	Asset *structuredAsset `json:"asset"`
}

type structuredAsset struct {
	Serial     flexString  `json:"serial"`
	AssetTag   flexString  `json:"asset_tag"`
	AssignedTo *assignee   `json:"assigned_to"`
	Location   *namedEntry `json:"location"`
}

type assignee struct {
	Username  flexString `json:"username"`
	FirstName flexString `json:"first_name"`
	LastName  flexString `json:"last_name"`
	Name      flexString `json:"name"`
}

type namedEntry struct {
	Name flexString `json:"name"`
}

// chatNotification is the Slack-compatible attachment body.
type chatNotification struct {
	Channel     string       `json:"channel"`
	Text        string       `json:"text"`
	Attachments []attachment `json:"attachments"`
}

type attachment struct {
	Title   string      `json:"title"`
	Pretext string      `json:"pretext"`
	Text    string      `json:"text"`
	Fields  []chatField `json:"fields"`
}

type chatField struct {
	Title string     `json:"title"`
	Value flexString `json:"value"`
}
