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

package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit(t *testing.T) {
	err := Init(context.Background(), &Config{Level: "debug", Output: "stdout"})
	require.NoError(t, err)

	assert.Equal(t, zerolog.DebugLevel, GetLogger().GetLevel())
}

func TestInit_InvalidLevel(t *testing.T) {
	err := Init(context.Background(), &Config{Level: "loud"})
	assert.Error(t, err)
}

func TestSetDebug(t *testing.T) {
	SetDebug(true)
	assert.Equal(t, zerolog.DebugLevel, GetLogger().GetLevel())

	SetDebug(false)
	assert.Equal(t, zerolog.InfoLevel, GetLogger().GetLevel())
}

func TestWithComponent(t *testing.T) {
	componentLogger := WithComponent("test-component")

	assert.NotEqual(t, zerolog.Disabled, componentLogger.GetLevel())
}

func TestNew_DebugOverridesLevel(t *testing.T) {
	l, err := New(context.Background(), &Config{Level: "error", Debug: true})
	require.NoError(t, err)

	assert.True(t, l.Debug().Enabled())
}

func TestWriterLogger_ComponentAndFields(t *testing.T) {
	var buf bytes.Buffer

	l := NewWriterLogger(&buf).
		WithComponent("webhook").
		WithFields(map[string]interface{}{"asset_tag": "18163"})

	l.Info().Msg("received")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))

	assert.Equal(t, "webhook", entry["component"])
	assert.Equal(t, "18163", entry["asset_tag"])
	assert.Equal(t, "received", entry["message"])
	assert.Equal(t, "info", entry["level"])
}

func TestNewTestLogger_Discards(t *testing.T) {
	l := NewTestLogger()

	assert.False(t, l.Error().Enabled())
}

func TestDefaultConfig(t *testing.T) {
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("OTEL_SERVICE_NAME", "")

	config := DefaultConfig()

	assert.Equal(t, "info", config.Level)
	assert.Equal(t, "stdout", config.Output)
	assert.Equal(t, defaultServiceName, config.OTel.ServiceName)
}

func TestDefaultOTelConfig_Headers(t *testing.T) {
	t.Setenv("OTEL_EXPORTER_OTLP_HEADERS", "x-token = abc, x-tenant=acme")
	t.Setenv("OTEL_EXPORTER_OTLP_TIMEOUT", "2s")

	config := DefaultOTelConfig()

	assert.Equal(t, map[string]string{"x-token": "abc", "x-tenant": "acme"}, config.Headers)
	assert.Equal(t, 2*time.Second, time.Duration(config.BatchTimeout))
}
