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
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/carverauto/assetbridge/pkg/models"
)

const (
	authTokenPath  = "/api/v1/auth/token"
	oauthTokenPath = "/api/oauth/token"

	maxErrorBodyBytes = 4096
)

// NewTokenSource picks the exchange flow named by cfg.AuthMode.
func NewTokenSource(cfg *Config, client HTTPClient, now func() time.Time) (TokenSource, error) {
	if now == nil {
		now = time.Now
	}

	switch cfg.AuthMode {
	case AuthModeBasic, "":
		return &BasicAuthSource{
			BaseURL:    cfg.BaseURL,
			Username:   cfg.Username,
			Password:   cfg.Password,
			HTTPClient: client,
		}, nil
	case AuthModeClientCredentials:
		return &ClientCredentialsSource{
			BaseURL:      cfg.BaseURL,
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			HTTPClient:   client,
			now:          now,
		}, nil
	default:
		return nil, fmt.Errorf("%w: %q", errInvalidAuthMode, cfg.AuthMode)
	}
}

// BasicAuthSource exchanges a username and password for a bearer token.
type BasicAuthSource struct {
	BaseURL    string
	Username   string
	Password   string `sensitive:"true"`
	HTTPClient HTTPClient
}

// FetchToken implements TokenSource.
func (s *BasicAuthSource) FetchToken(ctx context.Context) (*models.Credential, error) {
	if s.Username == "" || s.Password == "" {
		return nil, fmt.Errorf("%w: username and password are required", ErrAuthConfig)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.BaseURL+authTokenPath, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAuthFetch, err)
	}

	req.SetBasicAuth(s.Username, s.Password)
	req.Header.Set("Accept", "application/json")

	var tokenResp AuthTokenResponse

	if err := doTokenRequest(s.HTTPClient, req, &tokenResp); err != nil {
		return nil, err
	}

	if tokenResp.Token == "" {
		return nil, fmt.Errorf("%w: %w", ErrAuthFetch, errEmptyToken)
	}

	if tokenResp.Expires.IsZero() {
		return nil, fmt.Errorf("%w: %w", ErrAuthFetch, errMissingExpiry)
	}

	return &models.Credential{Token: tokenResp.Token, ExpiresAt: tokenResp.Expires}, nil
}

// ClientCredentialsSource runs the OAuth client-credentials grant against the API client endpoint.
type ClientCredentialsSource struct {
	BaseURL      string
	ClientID     string
	ClientSecret string `sensitive:"true"`
	HTTPClient   HTTPClient
	now          func() time.Time
}

// FetchToken implements TokenSource.
func (s *ClientCredentialsSource) FetchToken(ctx context.Context) (*models.Credential, error) {
	if s.ClientID == "" || s.ClientSecret == "" {
		return nil, fmt.Errorf("%w: client_id and client_secret are required", ErrAuthConfig)
	}

	data := url.Values{}
	data.Set("grant_type", "client_credentials")
	data.Set("client_id", s.ClientID)
	data.Set("client_secret", s.ClientSecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.BaseURL+oauthTokenPath,
		strings.NewReader(data.Encode()))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAuthFetch, err)
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	issuedAt := time.Now()
	if s.now != nil {
		issuedAt = s.now()
	}

	var tokenResp OAuthTokenResponse

	if err := doTokenRequest(s.HTTPClient, req, &tokenResp); err != nil {
		return nil, err
	}

	if tokenResp.AccessToken == "" {
		return nil, fmt.Errorf("%w: %w", ErrAuthFetch, errEmptyToken)
	}

	if tokenResp.ExpiresIn <= 0 {
		return nil, fmt.Errorf("%w: %w", ErrAuthFetch, errMissingExpiry)
	}

	return &models.Credential{
		Token:     tokenResp.AccessToken,
		ExpiresAt: issuedAt.Add(time.Duration(tokenResp.ExpiresIn) * time.Second),
	}, nil
}

// doTokenRequest sends req and decodes a 200 body into dst. Every failure wraps ErrAuthFetch.
func doTokenRequest(client HTTPClient, req *http.Request, dst interface{}) error {
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrAuthFetch, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %w: %d, response: %s", ErrAuthFetch, errUnexpectedStatusCode,
			resp.StatusCode, readErrorBody(resp.Body))
	}

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("%w: failed to parse token response: %w", ErrAuthFetch, err)
	}

	return nil
}

// readErrorBody returns at most maxErrorBodyBytes of an error response for messages.
func readErrorBody(r io.Reader) string {
	body, _ := io.ReadAll(io.LimitReader(r, maxErrorBodyBytes))

	return strings.TrimSpace(string(body))
}
