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
	"sync"
	"time"

	"github.com/carverauto/assetbridge/pkg/models"
)

// CredentialCache wraps a TokenSource and holds a single bearer token.
// A token is never handed out once now >= expiry - margin.
type CredentialCache struct {
	source   TokenSource
	margin   time.Duration
	now      func() time.Time
	recorder Recorder

	mu   sync.RWMutex
	cred *models.Credential
}

// CacheOption configures a CredentialCache.
type CacheOption func(*CredentialCache)

// WithSafetyMargin sets how long before expiry a token stops being reused.
func WithSafetyMargin(margin time.Duration) CacheOption {
	return func(c *CredentialCache) {
		if margin >= 0 {
			c.margin = margin
		}
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) CacheOption {
	return func(c *CredentialCache) {
		if now != nil {
			c.now = now
		}
	}
}

// WithCacheRecorder reports each token exchange.
func WithCacheRecorder(r Recorder) CacheOption {
	return func(c *CredentialCache) {
		c.recorder = r
	}
}

// NewCredentialCache creates an empty cache; the first GetToken performs the exchange.
func NewCredentialCache(source TokenSource, opts ...CacheOption) *CredentialCache {
	c := &CredentialCache{
		source: source,
		margin: DefaultSafetyMargin,
		now:    time.Now,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// GetToken returns the cached token while it is valid, otherwise fetches a new one.
// Concurrent callers that observe an expired token share one exchange.
func (c *CredentialCache) GetToken(ctx context.Context) (string, error) {
	c.mu.RLock()
	if c.cred.ValidAt(c.now(), c.margin) {
		token := c.cred.Token
		c.mu.RUnlock()

		return token, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()

	// another goroutine may have refreshed while we waited for the lock
	if c.cred.ValidAt(c.now(), c.margin) {
		return c.cred.Token, nil
	}

	cred, err := c.source.FetchToken(ctx)

	if c.recorder != nil {
		c.recorder.RecordTokenFetch(err == nil)
	}

	if err != nil {
		return "", err
	}

	c.cred = cred

	return cred.Token, nil
}

// ResetToken clears the cached token so the next GetToken performs an exchange.
func (c *CredentialCache) ResetToken() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cred = nil
}

// ExpiresAt returns the expiry of the cached token, or the zero time when empty.
func (c *CredentialCache) ExpiresAt() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.cred == nil {
		return time.Time{}
	}

	return c.cred.ExpiresAt
}
