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

package audit

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/carverauto/assetbridge/pkg/logger"
	"github.com/carverauto/assetbridge/pkg/models"
)

const (
	DefaultRedisStream = "assetbridge:audit"
	// DefaultRedisMaxLen caps the stream; trimming is approximate.
	DefaultRedisMaxLen = 100000

	redisConnectTimeout = 5 * time.Second
)

// RedisConfig appends records to a Redis stream with XADD.
type RedisConfig struct {
	URL    string `json:"url" sensitive:"true"`
	Stream string `json:"stream"`
	MaxLen int64  `json:"max_len"`
}

// streamClient is the subset of *redis.Client the sink needs.
type streamClient interface {
	XAdd(ctx context.Context, a *redis.XAddArgs) *redis.StringCmd
	Close() error
}

// RedisSink writes each record as one stream entry.
type RedisSink struct {
	client streamClient
	stream string
	maxLen int64
	closed atomic.Bool
}

// NewRedisSink parses the URL, pings the server and returns the sink.
func NewRedisSink(ctx context.Context, cfg *RedisConfig, log logger.Logger) (*RedisSink, error) {
	if cfg == nil || cfg.URL == "" {
		return nil, errRedisURLRequired
	}

	opt, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse audit redis url: %w", err)
	}

	client := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, redisConnectTimeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to audit redis: %w", err)
	}

	sink := newRedisSink(client, cfg.Stream, cfg.MaxLen)

	log.WithComponent("audit").Info().
		Str("addr", opt.Addr).
		Str("stream", sink.stream).
		Int64("max_len", sink.maxLen).
		Msg("Connected Redis audit sink")

	return sink, nil
}

func newRedisSink(client streamClient, stream string, maxLen int64) *RedisSink {
	if stream == "" {
		stream = DefaultRedisStream
	}

	if maxLen <= 0 {
		maxLen = DefaultRedisMaxLen
	}

	return &RedisSink{client: client, stream: stream, maxLen: maxLen}
}

func (s *RedisSink) Write(ctx context.Context, record *models.AuditRecord) error {
	if record == nil {
		return ErrNilRecord
	}

	if s.closed.Load() {
		return ErrSinkClosed
	}

	err := s.client.XAdd(ctx, &redis.XAddArgs{
		Stream: s.stream,
		MaxLen: s.maxLen,
		Approx: true,
		Values: redisValues(record),
	}).Err()
	if err != nil {
		return fmt.Errorf("failed to append audit record %s: %w", record.ID, err)
	}

	return nil
}

func redisValues(record *models.AuditRecord) map[string]interface{} {
	return map[string]interface{}{
		"id":            record.ID,
		"timestamp":     record.Timestamp.UTC().Format(time.RFC3339Nano),
		"status":        string(record.Status),
		"event_kind":    string(record.EventKind),
		"payload_kind":  record.PayloadKind,
		"asset_tag":     record.AssetTag,
		"serial_number": record.SerialNumber,
		"device_id":     record.DeviceID,
		"username":      record.Username,
		"outcome":       string(record.Outcome),
		"detail":        record.Detail,
		"remote_addr":   record.RemoteAddr,
		"duration_ms":   record.Duration.Milliseconds(),
	}
}

func (s *RedisSink) Close() error {
	if s.closed.Swap(true) {
		return nil
	}

	return s.client.Close()
}
