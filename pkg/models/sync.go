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

import "time"

// EventKind is the lifecycle transition reported by the inventory system.
type EventKind string

const (
	EventCheckedIn  EventKind = "checked_in"
	EventCheckedOut EventKind = "checked_out"
)

// IdentifierKind tells whether SyncRequest.AssetIdentifier is already a serial number.
type IdentifierKind string

const (
	IdentifierSerial   IdentifierKind = "serial"
	IdentifierAssetTag IdentifierKind = "asset_tag"
)

// SyncRequest is the canonical, post-normalization form of an inbound event.
type SyncRequest struct {
	EventKind       EventKind      `json:"event_kind"`
	AssetIdentifier string         `json:"asset_identifier"`
	IdentifierKind  IdentifierKind `json:"identifier_kind"`
	Username        string         `json:"username"`
	RealName        string         `json:"real_name"`
	LocationName    string         `json:"location_name"`
}

// NewSyncRequest builds a SyncRequest and applies the check-in rule: a returned
// asset has no owner, so username and real name are cleared while the location
// is kept.
func NewSyncRequest(kind EventKind, identifier string, idKind IdentifierKind, username, realName, location string) *SyncRequest {
	req := &SyncRequest{
		EventKind:       kind,
		AssetIdentifier: identifier,
		IdentifierKind:  idKind,
		Username:        username,
		RealName:        realName,
		LocationName:    location,
	}

	if kind == EventCheckedIn {
		req.Username = ""
		req.RealName = ""
	}

	return req
}

// NeedsResolution reports whether the identifier must be mapped to a serial first.
func (r *SyncRequest) NeedsResolution() bool {
	return r.IdentifierKind == IdentifierAssetTag
}

// UserAndLocation is the merge-patch body sent to the device-management system.
// Building and Department both mirror the single source location.
type UserAndLocation struct {
	Username   string `json:"username"`
	RealName   string `json:"realName"`
	Building   string `json:"building"`
	Department string `json:"department"`
}

// NewUserAndLocation maps the canonical fields onto the remote sub-record.
func NewUserAndLocation(username, realName, location string) UserAndLocation {
	return UserAndLocation{
		Username:   username,
		RealName:   realName,
		Building:   location,
		Department: location,
	}
}

// Credential is a bearer token with its absolute expiry.
type Credential struct {
	Token     string    `json:"token" sensitive:"true"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ValidAt reports whether the credential may still be handed out at now, given
// the safety margin before expiry.
func (c *Credential) ValidAt(now time.Time, margin time.Duration) bool {
	if c == nil || c.Token == "" {
		return false
	}

	return now.Before(c.ExpiresAt.Add(-margin))
}
