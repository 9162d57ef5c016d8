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
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/carverauto/assetbridge/pkg/models"
)

//go:generate mockgen -destination=mock_audit.go -package=audit github.com/carverauto/assetbridge/pkg/audit Sink,Execer,EventPublisher

// Sink stores audit records. Write must be safe for concurrent use.
type Sink interface {
	Write(ctx context.Context, record *models.AuditRecord) error
	Close() error
}

// Execer is the slice of pgxpool.Pool the postgres sink needs.
type Execer interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Close()
}

// EventPublisher publishes one CloudEvent and returns its stream sequence.
type EventPublisher interface {
	Publish(ctx context.Context, eventType, subject string, ts time.Time, data any) (uint64, error)
}
