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

package snipeit

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/carverauto/assetbridge/pkg/models"
)

const DefaultTimeout = 10 * time.Second

// Config points the resolver at the inventory system's own read API.
type Config struct {
	BaseURL            string          `json:"base_url"`
	APIToken           string          `json:"api_token" sensitive:"true"`
	Timeout            models.Duration `json:"timeout"`
	InsecureSkipVerify bool            `json:"insecure_skip_verify"`
}

// Validate applies defaults and checks the base URL.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return errBaseURLRequired
	}

	u, err := url.Parse(c.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: %q", errInvalidBaseURL, c.BaseURL)
	}

	c.BaseURL = strings.TrimRight(c.BaseURL, "/")

	if c.Timeout <= 0 {
		c.Timeout = models.Duration(DefaultTimeout)
	}

	return nil
}
