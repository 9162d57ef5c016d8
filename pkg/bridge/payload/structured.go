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
	"strings"

	"github.com/carverauto/assetbridge/pkg/models"
)

const (
	eventCheckedIn  = "asset.checkedin"
	eventCheckedOut = "asset.checkedout"
)

func normalizeStructured(event *structuredEvent) (*Result, error) {
	var kind models.EventKind

	switch strings.ToLower(strings.TrimSpace(event.Event)) {
	case eventCheckedIn:
		kind = models.EventCheckedIn
	case eventCheckedOut:
		kind = models.EventCheckedOut
	default:
		return &Result{
			Kind:      KindStructured,
			Ignored:   true,
			Reason:    fmt.Sprintf("unsupported event %q", event.Event),
			AssetHint: assetHint(event.Asset),
		}, nil
	}

	asset := event.Asset
	if asset == nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedPayload, errMissingAsset)
	}

	identifier, idKind := asset.Serial.String(), models.IdentifierSerial
	if identifier == "" {
		identifier, idKind = asset.AssetTag.String(), models.IdentifierAssetTag
	}

	if identifier == "" {
		return nil, fmt.Errorf("%w: %w", ErrMalformedPayload, errMissingIdentity)
	}

	var username, realName, location string

	if asset.AssignedTo != nil {
		username = asset.AssignedTo.Username.String()
		realName = asset.AssignedTo.realName()
	}

	if asset.Location != nil {
		location = asset.Location.Name.String()
	}

	return &Result{
		Kind:      KindStructured,
		Request:   models.NewSyncRequest(kind, identifier, idKind, username, realName, location),
		AssetHint: identifier,
	}, nil
}

// realName prefers first + last and falls back to the display name.
func (a *assignee) realName() string {
	full := strings.TrimSpace(a.FirstName.String() + " " + a.LastName.String())
	if full != "" {
		return full
	}

	return a.Name.String()
}

func assetHint(asset *structuredAsset) string {
	if asset == nil {
		return ""
	}

	if asset.Serial != "" {
		return asset.Serial.String()
	}

	return asset.AssetTag.String()
}
