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

// Package audit persists one record per processed webhook. Sinks are
// append-only: records are inserted and never updated or deleted.
package audit

import (
	"context"
	"errors"
	"fmt"

	"github.com/carverauto/assetbridge/pkg/logger"
)

// Config selects the optional durable sinks. The log sink is always on.
type Config struct {
	SQLite   *SQLiteConfig   `json:"sqlite,omitempty"`
	Postgres *PostgresConfig `json:"postgres,omitempty"`
	NATS     *NATSConfig     `json:"nats,omitempty"`
	Redis    *RedisConfig    `json:"redis,omitempty"`
}

// Validate checks every configured sink.
func (c *Config) Validate() error {
	var errs []error

	if c.SQLite != nil && c.SQLite.Path == "" {
		errs = append(errs, errSQLitePathRequired)
	}

	if c.Postgres != nil && c.Postgres.Host == "" {
		errs = append(errs, errPostgresHostRequired)
	}

	if c.NATS != nil && c.NATS.URL == "" {
		errs = append(errs, errNATSURLRequired)
	}

	if c.Redis != nil && c.Redis.URL == "" {
		errs = append(errs, errRedisURLRequired)
	}

	return errors.Join(errs...)
}

// NewFromConfig opens every configured sink and fans writes out to all of them.
// Sinks opened before a failure are closed again.
func NewFromConfig(ctx context.Context, cfg *Config, log logger.Logger) (Sink, error) {
	sinks := []Sink{NewLogSink(log)}

	closeAll := func() {
		for _, s := range sinks {
			_ = s.Close()
		}
	}

	if cfg == nil {
		return NewMultiSink(sinks...), nil
	}

	if cfg.SQLite != nil {
		s, err := NewSQLiteSink(ctx, cfg.SQLite)
		if err != nil {
			closeAll()
			return nil, fmt.Errorf("failed to open sqlite audit sink: %w", err)
		}

		sinks = append(sinks, s)
	}

	if cfg.Postgres != nil {
		s, err := NewPostgresSink(ctx, cfg.Postgres, log)
		if err != nil {
			closeAll()
			return nil, fmt.Errorf("failed to open postgres audit sink: %w", err)
		}

		sinks = append(sinks, s)
	}

	if cfg.NATS != nil {
		s, err := NewNATSSink(ctx, cfg.NATS, log)
		if err != nil {
			closeAll()
			return nil, fmt.Errorf("failed to open nats audit sink: %w", err)
		}

		sinks = append(sinks, s)
	}

	if cfg.Redis != nil {
		s, err := NewRedisSink(ctx, cfg.Redis, log)
		if err != nil {
			closeAll()
			return nil, fmt.Errorf("failed to open redis audit sink: %w", err)
		}

		sinks = append(sinks, s)
	}

	return NewMultiSink(sinks...), nil
}
