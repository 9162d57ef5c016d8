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

// Package snipeit maps inventory asset tags to hardware serial numbers using a
// Snipe-IT style hardware search API.
package snipeit

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/carverauto/assetbridge/pkg/logger"
)

const (
	integrationName = "snipeit"
	hardwarePath    = "/api/v1/hardware"
	endpointSearch  = "search"

	maxResponseBytes  = 1 << 20
	maxErrorBodyBytes = 4096
)

// Resolver looks up the serial number behind an asset tag.
type Resolver struct {
	baseURL    string
	apiToken   string
	httpClient HTTPClient
	logger     logger.Logger
	recorder   Recorder
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithHTTPClient overrides the default client.
func WithHTTPClient(hc HTTPClient) Option {
	return func(r *Resolver) {
		r.httpClient = hc
	}
}

// WithLogger sets the resolver logger.
func WithLogger(log logger.Logger) Option {
	return func(r *Resolver) {
		r.logger = log.WithComponent(integrationName)
	}
}

// WithRecorder reports each outbound call.
func WithRecorder(rec Recorder) Option {
	return func(r *Resolver) {
		r.recorder = rec
	}
}

// NewResolver builds a Resolver from a validated Config.
func NewResolver(cfg *Config, opts ...Option) *Resolver {
	//nolint:gosec // self-hosted inventory servers commonly run with private certificates
	client := &http.Client{
		Timeout: cfg.Timeout.Or(DefaultTimeout),
		Transport: &http.Transport{
			Proxy:           http.ProxyFromEnvironment,
			TLSClientConfig: &tls.Config{InsecureSkipVerify: cfg.InsecureSkipVerify},
		},
	}

	r := &Resolver{
		baseURL:    cfg.BaseURL,
		apiToken:   cfg.APIToken,
		httpClient: client,
		logger:     logger.NewTestLogger(),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// ResolveSerial searches for assetTag and returns the serial of the candidate
// whose tag matches exactly. Zero rows, no exact match and an exact match with
// an empty serial all report found=false with a nil error.
func (r *Resolver) ResolveSerial(ctx context.Context, assetTag string) (serial string, found bool, err error) {
	search, err := r.search(ctx, assetTag)
	if err != nil {
		return "", false, err
	}

	for i := range search.Rows {
		row := &search.Rows[i]

		if row.AssetTag != assetTag {
			continue
		}

		if strings.TrimSpace(row.Serial) == "" {
			r.logger.Warn().
				Str("asset_tag", assetTag).
				Int("asset_id", row.ID).
				Msg("Asset matched but has no serial number")

			return "", false, nil
		}

		return row.Serial, true, nil
	}

	r.logger.Debug().
		Str("asset_tag", assetTag).
		Int("candidates", len(search.Rows)).
		Msg("No exact asset tag match")

	return "", false, nil
}

func (r *Resolver) search(ctx context.Context, assetTag string) (*HardwareSearchResponse, error) {
	reqURL := fmt.Sprintf("%s%s?search=%s", r.baseURL, hardwarePath, url.QueryEscape(assetTag))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLookup, err)
	}

	req.Header.Set("Authorization", "Bearer "+r.apiToken)
	req.Header.Set("Accept", "application/json")

	start := time.Now()

	resp, err := r.httpClient.Do(req)
	if err != nil {
		r.record(0, time.Since(start))

		return nil, fmt.Errorf("%w: %w", ErrLookup, err)
	}
	defer func() { _ = resp.Body.Close() }()

	r.record(resp.StatusCode, time.Since(start))

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))

		return nil, fmt.Errorf("%w: %w: %d, response: %s", ErrLookup, errUnexpectedStatusCode,
			resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var searchResp HardwareSearchResponse

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&searchResp); err != nil {
		return nil, fmt.Errorf("%w: failed to parse response: %w", ErrLookup, err)
	}

	return &searchResp, nil
}

func (r *Resolver) record(status int, d time.Duration) {
	if r.recorder != nil {
		r.recorder.RecordAPICall(integrationName, endpointSearch, status, d)
	}
}
