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
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/carverauto/assetbridge/pkg/audit"
	"github.com/carverauto/assetbridge/pkg/bridge/integrations/jamf"
	"github.com/carverauto/assetbridge/pkg/bridge/integrations/snipeit"
	"github.com/carverauto/assetbridge/pkg/bridge/payload"
	"github.com/carverauto/assetbridge/pkg/logger"
	"github.com/carverauto/assetbridge/pkg/models"
)

const (
	ResponseModeStrict   = "strict"
	ResponseModeAlwaysOK = "always_ok"

	DefaultListenAddr        = ":8080"
	DefaultWebhookPath       = "/webhook"
	DefaultProcessingTimeout = 30 * time.Second
	DefaultAuditTimeout      = 5 * time.Second
	DefaultMetricsInterval   = 15 * time.Second
)

// Config is the root configuration of the bridge service.
type Config struct {
	ListenAddr        string          `json:"listen_addr"`
	WebhookPath       string          `json:"webhook_path"`
	Secret            string          `json:"secret" sensitive:"true"`
	SourceHost        string          `json:"source_host"`
	ResponseMode      string          `json:"response_mode"`
	ProcessingTimeout models.Duration `json:"processing_timeout"`
	AuditTimeout      models.Duration `json:"audit_timeout"`
	ReadTimeout       models.Duration `json:"read_timeout"`
	WriteTimeout      models.Duration `json:"write_timeout"`
	IdleTimeout       models.Duration `json:"idle_timeout"`

	Jamf      jamf.Config    `json:"jamf"`
	Inventory snipeit.Config `json:"inventory"`
	Payload   payload.Config `json:"payload"`
	Audit     audit.Config   `json:"audit"`
	Logging   *logger.Config `json:"logging,omitempty"`
	Metrics   MetricsConfig  `json:"metrics"`
}

// MetricsConfig controls OTLP metric export. The endpoint is shared with
// logging.otel.
type MetricsConfig struct {
	Enabled        bool            `json:"enabled"`
	ExportInterval models.Duration `json:"export_interval"`
}

// Validate applies defaults and rejects unusable settings. An empty secret is
// accepted here and fails every request closed instead.
func (c *Config) Validate() error {
	if c.ListenAddr == "" {
		c.ListenAddr = DefaultListenAddr
	}

	if c.WebhookPath == "" {
		c.WebhookPath = DefaultWebhookPath
	}

	if !strings.HasPrefix(c.WebhookPath, "/") {
		return fmt.Errorf("%w: %q", errInvalidWebhookPath, c.WebhookPath)
	}

	switch c.ResponseMode {
	case "":
		c.ResponseMode = ResponseModeStrict
	case ResponseModeStrict, ResponseModeAlwaysOK:
	default:
		return fmt.Errorf("%w: %q (expected %q or %q)", errInvalidResponseMode, c.ResponseMode,
			ResponseModeStrict, ResponseModeAlwaysOK)
	}

	if c.ProcessingTimeout <= 0 {
		c.ProcessingTimeout = models.Duration(DefaultProcessingTimeout)
	}

	if c.AuditTimeout <= 0 {
		c.AuditTimeout = models.Duration(DefaultAuditTimeout)
	}

	if c.Logging == nil {
		c.Logging = logger.DefaultConfig()
	}

	var errs []error

	if err := c.Jamf.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("jamf: %w", err))
	}

	if c.Inventory.BaseURL == "" {
		c.Inventory.BaseURL = inventoryBaseFromSourceHost(c.SourceHost)
	}

	// the inventory resolver is optional; without it only serial payloads work
	if c.Inventory.BaseURL != "" {
		if err := c.Inventory.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("inventory: %w", err))
		}
	}

	if err := c.Audit.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("audit: %w", err))
	}

	return errors.Join(errs...)
}

// InventoryEnabled reports whether asset tags can be resolved to serials.
func (c *Config) InventoryEnabled() bool {
	return c.Inventory.BaseURL != ""
}

// StatusFor maps an outcome onto the HTTP status returned to the sender.
func (c *Config) StatusFor(outcome models.Outcome) int {
	if c.ResponseMode == ResponseModeAlwaysOK {
		return http.StatusOK
	}

	switch outcome {
	case models.OutcomeUpdated, models.OutcomeIgnored, models.OutcomeTestPing:
		return http.StatusOK
	case models.OutcomeUnauthorized:
		return http.StatusUnauthorized
	case models.OutcomeMalformedPayload:
		return http.StatusBadRequest
	case models.OutcomeNotFound:
		return http.StatusNotFound
	case models.OutcomeLookupError, models.OutcomeUpdateError, models.OutcomeAuthFetchError:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// inventoryBaseFromSourceHost returns the scheme and host of an absolute
// source_host URL, or "" when it is a bare hostname.
func inventoryBaseFromSourceHost(sourceHost string) string {
	u, err := url.Parse(strings.TrimSpace(sourceHost))
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return ""
	}

	return u.Scheme + "://" + u.Host
}

// expectedHostname extracts the hostname to compare Referer and Origin against.
// Both "https://inventory.example.com" and "inventory.example.com" are accepted.
func expectedHostname(sourceHost string) (string, error) {
	raw := strings.TrimSpace(sourceHost)
	if !strings.Contains(raw, "://") {
		raw = "//" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %w", errInvalidSourceHost, err)
	}

	if u.Hostname() == "" {
		return "", fmt.Errorf("%w: %q", errInvalidSourceHost, sourceHost)
	}

	return strings.ToLower(u.Hostname()), nil
}
