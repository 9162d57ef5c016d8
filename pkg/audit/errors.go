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

import "errors"

var (
	// ErrNilRecord is returned by every sink when asked to write nothing.
	ErrNilRecord = errors.New("audit record is nil")
	// ErrSinkClosed is returned when writing to a sink after Close.
	ErrSinkClosed = errors.New("audit sink is closed")

	errSQLitePathRequired   = errors.New("audit sqlite path is required")
	errPostgresHostRequired = errors.New("audit postgres host is required")
	errNATSURLRequired      = errors.New("audit nats url is required")
	errRedisURLRequired     = errors.New("audit redis url is required")
	errPostgresTLSFiles     = errors.New("audit postgres tls: cert_file, key_file, and ca_file are required")
	errPostgresCAAppend     = errors.New("audit postgres tls: unable to append CA certificate")
)
