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
	"errors"
	"fmt"
)

var (
	// ErrAuthConfig means the credentials needed for a token exchange are missing.
	ErrAuthConfig = errors.New("jamf credentials not configured")
	// ErrAuthFetch means the token endpoint failed or returned an unusable body.
	ErrAuthFetch = errors.New("jamf token request failed")
	// ErrDeviceNotFound means the serial lookup returned zero results.
	ErrDeviceNotFound = errors.New("device not found")
	// ErrLookup means the serial lookup failed.
	ErrLookup = errors.New("device lookup failed")
	// ErrUpdate means the userAndLocation patch was rejected or could not be sent.
	ErrUpdate = errors.New("device update failed")

	errUnexpectedStatusCode = errors.New("unexpected status code")
	errEmptyToken           = errors.New("token response did not include a token")
	errMissingExpiry        = errors.New("token response did not include an expiry")
	errMissingDeviceID      = errors.New("lookup result did not include an id")
	errBaseURLRequired      = errors.New("jamf base_url is required")
	errInvalidBaseURL       = errors.New("jamf base_url must be an absolute http(s) URL")
	errInvalidAuthMode      = errors.New("invalid jamf auth_mode")
)

// UpdateError carries the remote status and body of a rejected patch.
type UpdateError struct {
	StatusCode int
	Body       string
}

func (e *UpdateError) Error() string {
	return fmt.Sprintf("%v: %v: %d, response: %s", ErrUpdate, errUnexpectedStatusCode, e.StatusCode, e.Body)
}

// Is makes errors.Is(err, ErrUpdate) hold for every *UpdateError.
func (*UpdateError) Is(target error) bool {
	return target == ErrUpdate
}
