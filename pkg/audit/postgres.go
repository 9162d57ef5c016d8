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
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/carverauto/assetbridge/pkg/logger"
	"github.com/carverauto/assetbridge/pkg/models"
)

const (
	defaultPostgresPort    = 5432
	defaultApplicationName = "assetbridge"

	postgresSchema = `
CREATE TABLE IF NOT EXISTS assetbridge_audit_log (
	id            TEXT PRIMARY KEY,
	timestamp     TIMESTAMPTZ NOT NULL,
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
	duration_ms   BIGINT NOT NULL DEFAULT 0
)`

	postgresInsert = `INSERT INTO assetbridge_audit_log
	(id, timestamp, status, event_kind, payload_kind, asset_tag, serial_number,
	 device_id, username, outcome, detail, remote_addr, duration_ms)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
)

// PostgresConfig describes the audit database connection.
type PostgresConfig struct {
	Host            string             `json:"host"`
	Port            int                `json:"port"`
	Database        string             `json:"database"`
	Username        string             `json:"username"`
	Password        string             `json:"password" sensitive:"true"`
	SSLMode         string             `json:"ssl_mode"`
	ApplicationName string             `json:"application_name"`
	MaxConnections  int32              `json:"max_connections"`
	MaxConnLifetime models.Duration    `json:"max_conn_lifetime"`
	CertDir         string             `json:"cert_dir"`
	TLS             *PostgresTLSConfig `json:"tls,omitempty"`
}

type PostgresTLSConfig struct {
	CertFile string `json:"cert_file"`
	KeyFile  string `json:"key_file"`
	CAFile   string `json:"ca_file"`
}

// ConnString renders the config as a postgres:// URL.
func (c *PostgresConfig) ConnString() string {
	port := c.Port
	if port == 0 {
		port = defaultPostgresPort
	}

	connURL := url.URL{
		Scheme: "postgres",
		Host:   fmt.Sprintf("%s:%d", c.Host, port),
		Path:   "/" + c.Database,
	}

	if c.Username != "" {
		if c.Password != "" {
			connURL.User = url.UserPassword(c.Username, c.Password)
		} else {
			connURL.User = url.User(c.Username)
		}
	}

	query := connURL.Query()

	sslMode := c.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	query.Set("sslmode", sslMode)

	appName := c.ApplicationName
	if appName == "" {
		appName = defaultApplicationName
	}

	query.Set("application_name", appName)

	connURL.RawQuery = query.Encode()

	return connURL.String()
}

// PostgresSink appends records to assetbridge_audit_log.
type PostgresSink struct {
	db     Execer
	closed atomic.Bool
}

// NewPostgresSink dials the database, creates the table if needed and returns the sink.
func NewPostgresSink(ctx context.Context, cfg *PostgresConfig, log logger.Logger) (*PostgresSink, error) {
	if cfg == nil || cfg.Host == "" {
		return nil, errPostgresHostRequired
	}

	poolConfig, err := pgxpool.ParseConfig(cfg.ConnString())
	if err != nil {
		return nil, fmt.Errorf("failed to parse postgres connection string: %w", err)
	}

	if cfg.MaxConnections > 0 {
		poolConfig.MaxConns = cfg.MaxConnections
	}

	if cfg.MaxConnLifetime > 0 {
		poolConfig.MaxConnLifetime = time.Duration(cfg.MaxConnLifetime)
	}

	if tlsConfig, err := buildPostgresTLSConfig(cfg); err != nil {
		return nil, err
	} else if tlsConfig != nil {
		poolConfig.ConnConfig.TLSConfig = tlsConfig
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize postgres pool: %w", err)
	}

	sink, err := newPostgresSink(ctx, pool)
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("host", cfg.Host).
		Str("database", cfg.Database).
		Int32("max_conns", poolConfig.MaxConns).
		Msg("Connected postgres audit sink")

	return sink, nil
}

func newPostgresSink(ctx context.Context, db Execer) (*PostgresSink, error) {
	if _, err := db.Exec(ctx, postgresSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create assetbridge_audit_log table: %w", err)
	}

	return &PostgresSink{db: db}, nil
}

func (s *PostgresSink) Write(ctx context.Context, record *models.AuditRecord) error {
	if record == nil {
		return ErrNilRecord
	}

	if s.closed.Load() {
		return ErrSinkClosed
	}

	_, err := s.db.Exec(ctx, postgresInsert,
		record.ID,
		record.Timestamp.UTC(),
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

func (s *PostgresSink) Close() error {
	if s.closed.CompareAndSwap(false, true) {
		s.db.Close()
	}

	return nil
}

func buildPostgresTLSConfig(cfg *PostgresConfig) (*tls.Config, error) {
	if cfg.TLS == nil {
		return nil, nil
	}

	resolve := func(path string) string {
		if path == "" || filepath.IsAbs(path) || cfg.CertDir == "" {
			return path
		}

		return filepath.Join(cfg.CertDir, path)
	}

	certFile := resolve(cfg.TLS.CertFile)
	keyFile := resolve(cfg.TLS.KeyFile)
	caFile := resolve(cfg.TLS.CAFile)

	if certFile == "" || keyFile == "" || caFile == "" {
		return nil, errPostgresTLSFiles
	}

	clientCert, err := tls.LoadX509KeyPair(certFile, keyFile)
	if err != nil {
		return nil, fmt.Errorf("audit postgres tls: failed to load client keypair: %w", err)
	}

	caBytes, err := os.ReadFile(caFile)
	if err != nil {
		return nil, fmt.Errorf("audit postgres tls: failed to read CA file: %w", err)
	}

	caPool := x509.NewCertPool()
	if !caPool.AppendCertsFromPEM(caBytes) {
		return nil, errPostgresCAAppend
	}

	return &tls.Config{
		Certificates: []tls.Certificate{clientCert},
		RootCAs:      caPool,
		MinVersion:   tls.VersionTLS12,
		ServerName:   cfg.Host,
	}, nil
}
