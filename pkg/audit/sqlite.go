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
	"database/sql"
	"fmt"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/carverauto/assetbridge/pkg/models"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS audit_log (
	id            TEXT PRIMARY KEY,
	timestamp     TEXT NOT NULL,
	status        TEXT NOT NULL,
	event_kind    TEXT NOT NULL DEFAULT '',
	payload_kind  TEXT NOT NULL DEFAULT '',
	asset_tag     TEXT NOT NULL DEFAULT '',
	serial_number TEXT NOT NULL DEFAULT '',
	device_id     TEXT NOT NULL DEFAULT '',
	username      TEXT NOT NULL DEFAULT '',
	outcome       TEXT NOT NULL,
	detail        TEXT NOT NULL DEFAULT '',
	remote_addr   TEXT NOT NULL DEFAULT '',
	duration_ms   INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_audit_log_timestamp ON audit_log (timestamp);
`

const sqliteInsert = `INSERT INTO audit_log
	(id, timestamp, status, event_kind, payload_kind, asset_tag, serial_number,
	 device_id, username, outcome, detail, remote_addr, duration_ms)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

// SQLiteConfig points at a local database file. ":memory:" is accepted.
type SQLiteConfig struct {
	Path string `json:"path"`
}

// SQLiteSink appends records to the audit_log table of a SQLite file.
type SQLiteSink struct {
	db     *sql.DB
	closed atomic.Bool
}

// NewSQLiteSink opens (or creates) the database and ensures the table exists.
func NewSQLiteSink(ctx context.Context, cfg *SQLiteConfig) (*SQLiteSink, error) {
	if cfg == nil || cfg.Path == "" {
		return nil, errSQLitePathRequired
	}

	db, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	// one writer; also keeps ":memory:" databases on a single connection
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, `PRAGMA busy_timeout = 5000`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to configure sqlite database: %w", err)
	}

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create audit_log table: %w", err)
	}

	return &SQLiteSink{db: db}, nil
}

func (s *SQLiteSink) Write(ctx context.Context, record *models.AuditRecord) error {
	if record == nil {
		return ErrNilRecord
	}

	if s.closed.Load() {
		return ErrSinkClosed
	}

	_, err := s.db.ExecContext(ctx, sqliteInsert,
		record.ID,
		record.Timestamp.UTC().Format(time.RFC3339Nano),
		string(record.Status),
		string(record.EventKind),
		record.PayloadKind,
		record.AssetTag,
		record.SerialNumber,
		record.DeviceID,
		record.Username,
		string(record.Outcome),
		record.Detail,
		record.RemoteAddr,
		record.Duration.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert audit record: %w", err)
	}

	return nil
}

// Recent returns up to limit records, newest first.
func (s *SQLiteSink) Recent(ctx context.Context, limit int) ([]models.AuditRecord, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, timestamp, status, event_kind, payload_kind,
		asset_tag, serial_number, device_id, username, outcome, detail, remote_addr, duration_ms
		FROM audit_log ORDER BY timestamp DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit_log: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []models.AuditRecord

	for rows.Next() {
		var (
			rec                       models.AuditRecord
			ts, status, kind, outcome string
			durationMS                int64
		)

		if err := rows.Scan(&rec.ID, &ts, &status, &kind, &rec.PayloadKind, &rec.AssetTag,
			&rec.SerialNumber, &rec.DeviceID, &rec.Username, &outcome, &rec.Detail,
			&rec.RemoteAddr, &durationMS); err != nil {
			return nil, fmt.Errorf("failed to scan audit record: %w", err)
		}

		rec.Timestamp, err = time.Parse(time.RFC3339Nano, ts)
		if err != nil {
			return nil, fmt.Errorf("failed to parse audit timestamp %q: %w", ts, err)
		}

		rec.Status = models.AuditStatus(status)
		rec.EventKind = models.EventKind(kind)
		rec.Outcome = models.Outcome(outcome)
		rec.Duration = time.Duration(durationMS) * time.Millisecond

		records = append(records, rec)
	}

	return records, rows.Err()
}

func (s *SQLiteSink) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}

	return s.db.Close()
}
