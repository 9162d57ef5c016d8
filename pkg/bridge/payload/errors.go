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

import "errors"

var (
	// ErrMalformedPayload means the body is not one of the supported webhook shapes.
	ErrMalformedPayload = errors.New("malformed payload")

	errEmptyBody       = errors.New("empty body")
	errBodyTooLarge    = errors.New("body exceeds size limit")
	errNotObject       = errors.New("body is not a JSON object")
	errUnknownShape    = errors.New("neither a structured event nor a chat notification")
	errMissingAsset    = errors.New("structured event has no asset")
	errMissingIdentity = errors.New("asset has neither serial nor asset_tag")
	errNoAttachment    = errors.New("chat notification has no attachments")
	errMissingAssetTag = errors.New("no parenthesized asset tag in attachment title")
)
