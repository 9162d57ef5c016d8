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
	"time"

	"github.com/carverauto/assetbridge/pkg/models"
)

// AuthTokenResponse is returned by POST /api/v1/auth/token.
type AuthTokenResponse struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}

// OAuthTokenResponse is returned by POST /api/oauth/token.
type OAuthTokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

// ComputersInventoryResponse is the paged result of GET /api/v1/computers-inventory.
type ComputersInventoryResponse struct {
	TotalCount int                 `json:"totalCount"`
	Results    []ComputerInventory `json:"results"`
}

// ComputerInventory is one lookup result; only the fields the bridge reads are mapped.
type ComputerInventory struct {
	ID              string                  `json:"id"`
	UDID            string                  `json:"udid,omitempty"`
	UserAndLocation *models.UserAndLocation `json:"userAndLocation,omitempty"`
}

// UserAndLocationPatch is the merge-patch body. It carries exactly the four
// userAndLocation fields and nothing else.
type UserAndLocationPatch struct {
	UserAndLocation models.UserAndLocation `json:"userAndLocation"`
}
