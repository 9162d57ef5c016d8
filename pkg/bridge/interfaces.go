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
	"time"

	"github.com/carverauto/assetbridge/pkg/bridge/integrations/jamf"
	"github.com/carverauto/assetbridge/pkg/bridge/integrations/snipeit"
)

//go:generate mockgen -destination=mock_bridge.go -package=bridge github.com/carverauto/assetbridge/pkg/bridge DeviceClient,SerialResolver,TokenManager

// DeviceClient is the device-management side: serial lookup and userAndLocation patch.
type DeviceClient interface {
	ResolveBySerial(ctx context.Context, serial string) (string, error)
	ApplyUserAndLocation(ctx context.Context, deviceID, username, realName, location string) (int, error)
}

// SerialResolver maps an inventory asset tag to a hardware serial number.
type SerialResolver interface {
	ResolveSerial(ctx context.Context, assetTag string) (serial string, found bool, err error)
}

// TokenManager exposes the shared credential cache to the admin endpoints.
type TokenManager interface {
	ResetToken()
	ExpiresAt() time.Time
}

var (
	_ DeviceClient   = (*jamf.Client)(nil)
	_ TokenManager   = (*jamf.CredentialCache)(nil)
	_ SerialResolver = (*snipeit.Resolver)(nil)

	_ jamf.Recorder    = Metrics(nil)
	_ snipeit.Recorder = Metrics(nil)
)
