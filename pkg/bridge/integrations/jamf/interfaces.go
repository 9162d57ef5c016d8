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

package jamf

import (
	"context"
	"net/http"
	"time"

	"github.com/carverauto/assetbridge/pkg/models"
)

//go:generate mockgen -destination=mock_jamf.go -package=jamf github.com/carverauto/assetbridge/pkg/bridge/integrations/jamf HTTPClient,TokenSource,TokenProvider

// HTTPClient defines the interface for making HTTP requests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// TokenSource performs one credential exchange against the token endpoint.
type TokenSource interface {
	FetchToken(ctx context.Context) (*models.Credential, error)
}

// TokenProvider hands out bearer tokens and can be told to drop the cached one.
type TokenProvider interface {
	GetToken(ctx context.Context) (string, error)
	ResetToken()
}

// Recorder receives per-call telemetry. Implementations must be safe for concurrent use.
type Recorder interface {
	RecordTokenFetch(success bool)
	RecordAPICall(integration, endpoint string, statusCode int, duration time.Duration)
}
