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
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/carverauto/assetbridge/pkg/models"
)

const (
	AuthModeBasic             = "basic"
	AuthModeClientCredentials = "client_credentials"

	DefaultTimeout      = 10 * time.Second
	DefaultSafetyMargin = 5 * time.Minute
)

// Config describes how to reach and authenticate against the device-management API.
// Missing credentials are not a validation error; they surface as ErrAuthConfig
// on the first token request so the event is still audited.
type Config struct {
	BaseURL               string          `json:"base_url"`
	AuthMode              string          `json:"auth_mode"`
	Username              string          `json:"username"`
	Password              string          `json:"password" sensitive:"true"`
	ClientID              string          `json:"client_id"`
	ClientSecret          string          `json:"client_secret" sensitive:"true"`
	Timeout               models.Duration `json:"timeout"`
	TokenSafetyMargin     models.Duration `json:"token_safety_margin"`
	RefreshOnUnauthorized bool            `json:"refresh_on_unauthorized"`
}

// Validate applies defaults and checks the base URL and auth mode.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return errBaseURLRequired
	}

	u, err := url.Parse(c.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: %q", errInvalidBaseURL, c.BaseURL)
	}

	c.BaseURL = strings.TrimRight(c.BaseURL, "/")

	switch c.AuthMode {
	case "":
		c.AuthMode = AuthModeBasic
	case AuthModeBasic, AuthModeClientCredentials:
	default:
		return fmt.Errorf("%w: %q (expected %q or %q)", errInvalidAuthMode, c.AuthMode,
			AuthModeBasic, AuthModeClientCredentials)
	}

	if c.Timeout <= 0 {
		c.Timeout = models.Duration(DefaultTimeout)
	}

	if c.TokenSafetyMargin <= 0 {
		c.TokenSafetyMargin = models.Duration(DefaultSafetyMargin)
	}

	return nil
}
