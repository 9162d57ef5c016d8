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

import "errors"

var (
	errInvalidResponseMode = errors.New("invalid response_mode")
	errInvalidWebhookPath  = errors.New("webhook_path must start with /")
	errInvalidSourceHost   = errors.New("invalid source_host")
	errSecretNotConfigured = errors.New("webhook secret is not configured")
	errSecretMismatch      = errors.New("missing or invalid webhook secret")
	errHostMismatch        = errors.New("request did not originate from the configured source host")
	errResolverDisabled    = errors.New("asset tag resolution is not configured")
	errDeviceClientMissing = errors.New("device client is required")
	errAuditSinkMissing    = errors.New("audit sink is required")
)
