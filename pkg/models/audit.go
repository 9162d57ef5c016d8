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
	"time"
)

// Outcome is the terminal result of processing one inbound event.
type Outcome string

const (
	OutcomeUpdated          Outcome = "Updated"
	OutcomeIgnored          Outcome = "Ignored"
	OutcomeTestPing         Outcome = "TestPing"
	OutcomeUnauthorized     Outcome = "Unauthorized"
	OutcomeMalformedPayload Outcome = "MalformedPayload"
	OutcomeNotFound         Outcome = "NotFound"
	OutcomeLookupError      Outcome = "LookupError"
	OutcomeUpdateError      Outcome = "UpdateError"
	OutcomeConfigError      Outcome = "ConfigError"
	OutcomeAuthConfigError  Outcome = "AuthConfigError"
	OutcomeAuthFetchError   Outcome = "AuthFetchError"
	OutcomeUnhandledError   Outcome = "UnhandledError"
)

// AuditStatus is the coarse status label written next to the outcome.
type AuditStatus string

const (
	AuditStatusSuccess AuditStatus = "SUCCESS"
	AuditStatusIgnored AuditStatus = "IGNORED"
	AuditStatusError   AuditStatus = "ERROR"
)

// Status collapses an outcome into its audit status label.
func (o Outcome) Status() AuditStatus {
	switch o {
	case OutcomeUpdated, OutcomeTestPing:
		return AuditStatusSuccess
	case OutcomeIgnored:
		return AuditStatusIgnored
	default:
		return AuditStatusError
	}
}

// IsFailure reports whether the outcome is a Failed terminal state.
func (o Outcome) IsFailure() bool {
	return o.Status() == AuditStatusError
}

// AuditRecord is one immutable row in the audit log. Exactly one is written
// per inbound request.
type AuditRecord struct {
	ID           string        `json:"id"`
	Timestamp    time.Time     `json:"timestamp"`
	Status       AuditStatus   `json:"status"`
	EventKind    EventKind     `json:"event_kind,omitempty"`
	PayloadKind  string        `json:"payload_kind,omitempty"`
	AssetTag     string        `json:"asset_tag,omitempty"`
	SerialNumber string        `json:"serial_number,omitempty"`
	DeviceID     string        `json:"device_id,omitempty"`
	Username     string        `json:"username,omitempty"`
	Outcome      Outcome       `json:"outcome"`
	Detail       string        `json:"detail"`
	RemoteAddr   string        `json:"remote_addr,omitempty"`
	Duration     time.Duration `json:"duration_ns"`
}

// AuditColumns names the tabular columns produced by Row, in order.
var AuditColumns = []string{
	"timestamp", "status", "event_kind", "asset_tag", "serial_number",
	"device_id", "username", "outcome", "detail",
}

// Row returns the record as an ordered tuple matching AuditColumns.
func (r *AuditRecord) Row() []string {
	return []string{
		r.Timestamp.UTC().Format(time.RFC3339),
		string(r.Status),
		string(r.EventKind),
		r.AssetTag,
		r.SerialNumber,
		r.DeviceID,
		r.Username,
		string(r.Outcome),
		r.Detail,
	}
}
