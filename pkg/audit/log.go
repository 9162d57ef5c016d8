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

	"github.com/rs/zerolog"

	"github.com/carverauto/assetbridge/pkg/logger"
	"github.com/carverauto/assetbridge/pkg/models"
)

// LogSink writes each record as one structured log line.
type LogSink struct {
	logger logger.Logger
}

func NewLogSink(log logger.Logger) *LogSink {
	return &LogSink{logger: log.WithComponent("audit")}
}

func (s *LogSink) Write(_ context.Context, record *models.AuditRecord) error {
	if record == nil {
		return ErrNilRecord
	}

	var event *zerolog.Event

	switch record.Status {
	case models.AuditStatusError:
		event = s.logger.Warn()
	default:
		event = s.logger.Info()
	}

	event.
		Str("audit_id", record.ID).
		Time("timestamp", record.Timestamp).
		Str("status", string(record.Status)).
		Str("event_kind", string(record.EventKind)).
		Str("payload_kind", record.PayloadKind).
		Str("asset_tag", record.AssetTag).
		Str("serial_number", record.SerialNumber).
		Str("device_id", record.DeviceID).
		Str("username", record.Username).
		Str("outcome", string(record.Outcome)).
		Str("remote_addr", record.RemoteAddr).
		Dur("duration", record.Duration).
		Msg(record.Detail)

	return nil
}

func (*LogSink) Close() error { return nil }
