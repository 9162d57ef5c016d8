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

// Package jamf talks to a Jamf Pro style device-management API: bearer token
// exchange, computer lookup by serial number and userAndLocation merge-patch.
package jamf

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/carverauto/assetbridge/pkg/logger"
	"github.com/carverauto/assetbridge/pkg/models"
)

const (
	integrationName = "jamf"

	computersInventoryPath = "/api/v1/computers-inventory"
	userAndLocationSection = "USER_AND_LOCATION"

	endpointLookup = "lookup"
	endpointUpdate = "update"
)

// Client resolves computers by serial number and patches their userAndLocation record.
type Client struct {
	baseURL               string
	httpClient            HTTPClient
	tokens                TokenProvider
	refreshOnUnauthorized bool
	logger                logger.Logger
	recorder              Recorder
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient overrides the timeout-bounded default client.
func WithHTTPClient(hc HTTPClient) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithLogger sets the client logger.
func WithLogger(log logger.Logger) ClientOption {
	return func(c *Client) {
		c.logger = log.WithComponent(integrationName)
	}
}

// WithRecorder reports each outbound call.
func WithRecorder(r Recorder) ClientOption {
	return func(c *Client) {
		c.recorder = r
	}
}

// NewHTTPClient returns the http.Client used for every outbound call.
func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &http.Client{Timeout: timeout}
}

// NewClient builds a Client from a validated Config.
func NewClient(cfg *Config, tokens TokenProvider, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:               cfg.BaseURL,
		httpClient:            NewHTTPClient(cfg.Timeout.Or(DefaultTimeout)),
		tokens:                tokens,
		refreshOnUnauthorized: cfg.RefreshOnUnauthorized,
		logger:                logger.NewTestLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// ResolveBySerial returns the inventory id of the computer with the given serial number.
func (c *Client) ResolveBySerial(ctx context.Context, serial string) (string, error) {
	query := url.Values{}
	query.Set("filter", "hardware.serialNumber=="+serial)
	query.Set("section", userAndLocationSection)

	reqURL := c.baseURL + computersInventoryPath + "?" + query.Encode()

	status, body, err := c.do(ctx, endpointLookup, func(token string) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
		if err != nil {
			return nil, err
		}

		req.Header.Set("Authorization", "Bearer "+token)
		req.Header.Set("Accept", "application/json")

		return req, nil
	})
	if err != nil {
		return "", wrapTransport(ErrLookup, err)
	}

	if status != http.StatusOK {
		return "", fmt.Errorf("%w: %w: %d, response: %s", ErrLookup, errUnexpectedStatusCode, status, body)
	}

	var inventory ComputersInventoryResponse

	if err := json.Unmarshal(body, &inventory); err != nil {
		return "", fmt.Errorf("%w: failed to parse response: %w", ErrLookup, err)
	}

	if len(inventory.Results) == 0 {
		return "", fmt.Errorf("%w: serial %q", ErrDeviceNotFound, serial)
	}

	if len(inventory.Results) > 1 {
		c.logger.Warn().
			Str("serial", serial).
			Int("results", len(inventory.Results)).
			Msg("Serial lookup matched more than one computer, using the first")
	}

	id := inventory.Results[0].ID
	if id == "" {
		return "", fmt.Errorf("%w: %w", ErrLookup, errMissingDeviceID)
	}

	return id, nil
}

// ApplyUserAndLocation merge-patches the four userAndLocation fields of a computer.
// 200 and 204 are success; any other status yields an *UpdateError.
func (c *Client) ApplyUserAndLocation(ctx context.Context, deviceID, username, realName, location string) (int, error) {
	payload, err := json.Marshal(UserAndLocationPatch{
		UserAndLocation: models.NewUserAndLocation(username, realName, location),
	})
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrUpdate, err)
	}

	reqURL := c.baseURL + computersInventoryPath + "/" + url.PathEscape(deviceID)

	status, body, err := c.do(ctx, endpointUpdate, func(token string) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPatch, reqURL, bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}

		req.Header.Set("Authorization", "Bearer "+token)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")

		return req, nil
	})
	if err != nil {
		return 0, wrapTransport(ErrUpdate, err)
	}

	if status != http.StatusOK && status != http.StatusNoContent {
		return status, &UpdateError{StatusCode: status, Body: string(body)}
	}

	c.logger.Debug().
		Str("device_id", deviceID).
		Int("status", status).
		Msg("Applied userAndLocation patch")

	return status, nil
}

type requestBuilder func(token string) (*http.Request, error)

// do obtains a token, sends the request and reads a bounded body. With
// refreshOnUnauthorized set, a 401 drops the cached token and the request is
// sent once more.
func (c *Client) do(ctx context.Context, endpoint string, build requestBuilder) (int, []byte, error) {
	status, body, err := c.send(ctx, endpoint, build)
	if err != nil || status != http.StatusUnauthorized || !c.refreshOnUnauthorized {
		return status, body, err
	}

	c.logger.Info().Str("endpoint", endpoint).Msg("Received 401, refreshing token and retrying once")
	c.tokens.ResetToken()

	return c.send(ctx, endpoint, build)
}

func (c *Client) send(ctx context.Context, endpoint string, build requestBuilder) (int, []byte, error) {
	token, err := c.tokens.GetToken(ctx)
	if err != nil {
		return 0, nil, tokenError{err: err}
	}

	req, err := build(token)
	if err != nil {
		return 0, nil, err
	}

	start := time.Now()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.record(endpoint, 0, time.Since(start))

		return 0, nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))

	c.record(endpoint, resp.StatusCode, time.Since(start))

	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return resp.StatusCode, body, nil
}

func (c *Client) record(endpoint string, status int, d time.Duration) {
	if c.recorder != nil {
		c.recorder.RecordAPICall(integrationName, endpoint, status, d)
	}
}

const maxResponseBytes = 1 << 20

// tokenError marks failures from the token provider so they keep their own
// ErrAuthConfig / ErrAuthFetch identity instead of being folded into the call error.
type tokenError struct {
	err error
}

func (e tokenError) Error() string { return e.err.Error() }
func (e tokenError) Unwrap() error { return e.err }

func wrapTransport(kind, err error) error {
	var te tokenError
	if errors.As(err, &te) {
		return te.err
	}

	return fmt.Errorf("%w: %w", kind, err)
}
