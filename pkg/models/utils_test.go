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

package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type redactInner struct {
	Username string `json:"username"`
	Password string `json:"password" sensitive:"true"`
}

type redactOuter struct {
	Endpoint string            `json:"endpoint"`
	Secret   string            `json:"secret" sensitive:"true"`
	Empty    string            `json:"empty" sensitive:"true"`
	Inner    *redactInner      `json:"inner"`
	Nil      *redactInner      `json:"nil_inner"`
	Labels   map[string]string `json:"labels"`
	Skipped  string            `json:"-"`
	private  string
}

func TestRedactSensitiveFields(t *testing.T) {
	in := redactOuter{
		Endpoint: "https://mdm.example.com",
		Secret:   "hunter2",
		Inner:    &redactInner{Username: "api", Password: "pw"},
		Labels:   map[string]string{"env": "prod"},
		Skipped:  "x",
		private:  "y",
	}

	out, err := RedactSensitiveFields(&in)
	require.NoError(t, err)

	assert.Equal(t, "https://mdm.example.com", out["endpoint"])
	assert.Equal(t, RedactedValue, out["secret"])
	assert.Equal(t, "", out["empty"])
	assert.Nil(t, out["nil_inner"])
	assert.NotContains(t, out, "-")
	assert.NotContains(t, out, "Skipped")
	assert.NotContains(t, out, "private")

	inner, ok := out["inner"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "api", inner["username"])
	assert.Equal(t, RedactedValue, inner["password"])

	assert.Equal(t, map[string]interface{}{"env": "prod"}, out["labels"])
}

func TestRedactSensitiveFields_NotStruct(t *testing.T) {
	_, err := RedactSensitiveFields("plain")
	require.Error(t, err)

	out, err := RedactSensitiveFields(nil)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestDuration_UnmarshalJSON(t *testing.T) {
	var cfg struct {
		A Duration `json:"a"`
		B Duration `json:"b"`
	}

	require.NoError(t, json.Unmarshal([]byte(`{"a":"10s","b":1000000}`), &cfg))
	assert.Equal(t, 10*time.Second, time.Duration(cfg.A))
	assert.Equal(t, time.Millisecond, time.Duration(cfg.B))

	require.Error(t, json.Unmarshal([]byte(`{"a":"ten"}`), &cfg))
	require.Error(t, json.Unmarshal([]byte(`{"a":true}`), &cfg))
}

func TestDuration_Or(t *testing.T) {
	assert.Equal(t, 5*time.Second, Duration(0).Or(5*time.Second))
	assert.Equal(t, time.Second, Duration(time.Second).Or(5*time.Second))
}

func TestNewSyncRequest_CheckInClearsOwnership(t *testing.T) {
	req := NewSyncRequest(EventCheckedIn, "C02ABC", IdentifierSerial, "jdoe", "Jane Doe", "HQ")

	assert.Empty(t, req.Username)
	assert.Empty(t, req.RealName)
	assert.Equal(t, "HQ", req.LocationName)
	assert.False(t, req.NeedsResolution())
}

func TestNewSyncRequest_CheckOutKeepsOwnership(t *testing.T) {
	req := NewSyncRequest(EventCheckedOut, "18163", IdentifierAssetTag, "jdoe", "Jane Doe", "HQ")

	assert.Equal(t, "jdoe", req.Username)
	assert.Equal(t, "Jane Doe", req.RealName)
	assert.True(t, req.NeedsResolution())
}

func TestNewUserAndLocation_MirrorsLocation(t *testing.T) {
	ul := NewUserAndLocation("", "", "HQ")

	body, err := json.Marshal(ul)
	require.NoError(t, err)
	assert.JSONEq(t, `{"username":"","realName":"","building":"HQ","department":"HQ"}`, string(body))
}

func TestCredential_ValidAt(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	cred := &Credential{Token: "t", ExpiresAt: now.Add(10 * time.Minute)}

	assert.True(t, cred.ValidAt(now, 5*time.Minute))
	assert.False(t, cred.ValidAt(now.Add(5*time.Minute), 5*time.Minute))
	assert.False(t, (&Credential{ExpiresAt: now.Add(time.Hour)}).ValidAt(now, 0))

	var missing *Credential
	assert.False(t, missing.ValidAt(now, 0))
}

func TestOutcome_Status(t *testing.T) {
	assert.Equal(t, AuditStatusSuccess, OutcomeUpdated.Status())
	assert.Equal(t, AuditStatusSuccess, OutcomeTestPing.Status())
	assert.Equal(t, AuditStatusIgnored, OutcomeIgnored.Status())
	assert.Equal(t, AuditStatusError, OutcomeUnauthorized.Status())
	assert.True(t, OutcomeNotFound.IsFailure())
	assert.False(t, OutcomeIgnored.IsFailure())
}

func TestAuditRecord_Row(t *testing.T) {
	rec := &AuditRecord{
		Timestamp:    time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC),
		Status:       AuditStatusSuccess,
		EventKind:    EventCheckedOut,
		AssetTag:     "18163",
		SerialNumber: "C02ABC",
		DeviceID:     "42",
		Username:     "janedoe",
		Outcome:      OutcomeUpdated,
		Detail:       "ok",
	}

	row := rec.Row()
	require.Len(t, row, len(AuditColumns))
	assert.Equal(t, []string{
		"2025-03-04T05:06:07Z", "SUCCESS", "checked_out", "18163", "C02ABC", "42", "janedoe", "Updated", "ok",
	}, row)
}
