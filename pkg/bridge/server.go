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

package bridge

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	bridgehttp "github.com/carverauto/assetbridge/pkg/http"
	"github.com/carverauto/assetbridge/pkg/logger"
	"github.com/carverauto/assetbridge/pkg/version"
)

// OutcomeHeader carries the outcome label on every webhook response.
const OutcomeHeader = "X-Assetbridge-Outcome"

// Server exposes the Service over HTTP.
type Server struct {
	config  *Config
	service *Service
	metrics Metrics
	tokens  TokenManager
	logger  logger.Logger
	router  *mux.Router
}

// NewServer builds the router. tokens may be nil, in which case the token
// admin route is not registered.
func NewServer(cfg *Config, svc *Service, metrics Metrics, tokens TokenManager, log logger.Logger) *Server {
	if metrics == nil {
		metrics = &NoOpMetrics{}
	}

	s := &Server{
		config:  cfg,
		service: svc,
		metrics: metrics,
		tokens:  tokens,
		logger:  log.WithComponent("http"),
		router:  mux.NewRouter(),
	}

	s.setupRoutes()

	return s
}

func (s *Server) setupRoutes() {
	s.router.Use(bridgehttp.RequestID, bridgehttp.Recovery(s.logger), bridgehttp.Logging(s.logger))

	s.router.HandleFunc(s.config.WebhookPath, s.handleWebhook).Methods(http.MethodPost)
	s.router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)

	protected := s.router.NewRoute().Subrouter()
	protected.Use(bridgehttp.SecretMiddlewareWithOptions(bridgehttp.SecretOptions{
		Secret:          s.config.Secret,
		Header:          SecretHeader,
		QueryParam:      SecretQueryParam,
		LogUnauthorized: true,
		Logger:          s.logger,
	}))

	protected.HandleFunc("/status", s.handleStatus).Methods(http.MethodGet)

	if s.tokens != nil {
		protected.HandleFunc("/admin/token/reset", s.handleTokenReset).Methods(http.MethodPost)
	}
}

// Handler returns the root http.Handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// HTTPServer returns an http.Server with the configured timeouts.
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:              s.config.ListenAddr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       s.config.ReadTimeout.Or(30 * time.Second),
		WriteTimeout:      s.config.WriteTimeout.Or(s.config.ProcessingTimeout.Or(DefaultProcessingTimeout) + 10*time.Second),
		IdleTimeout:       s.config.IdleTimeout.Or(120 * time.Second),
	}
}

func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	// a sender that disconnects must not abort a half-applied update
	ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()),
		s.config.ProcessingTimeout.Or(DefaultProcessingTimeout))
	defer cancel()

	result := s.service.Process(ctx, &Inbound{
		Header:     r.Header,
		Query:      r.URL.Query(),
		Body:       r.Body,
		RemoteAddr: r.RemoteAddr,
	})

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set(OutcomeHeader, string(result.Outcome))
	w.WriteHeader(s.config.StatusFor(result.Outcome))

	if _, err := io.WriteString(w, result.Message); err != nil {
		s.logger.Debug().Err(err).Msg("Failed to write webhook response")
	}
}

func (*Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, "ok")
}

// StatusReport is the body of GET /status.
type StatusReport struct {
	Version        string                 `json:"version"`
	Metrics        map[string]interface{} `json:"metrics"`
	TokenExpiresAt *time.Time             `json:"token_expires_at,omitempty"`
	ResponseMode   string                 `json:"response_mode"`
	Inventory      bool                   `json:"inventory_resolution"`
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	report := StatusReport{
		Version:      version.String(),
		Metrics:      s.metrics.GetMetrics(),
		ResponseMode: s.config.ResponseMode,
		Inventory:    s.service.resolver != nil,
	}

	if s.tokens != nil {
		if exp := s.tokens.ExpiresAt(); !exp.IsZero() {
			report.TokenExpiresAt = &exp
		}
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(report); err != nil {
		s.logger.Error().Err(err).Msg("Failed to encode status report")
	}
}

func (s *Server) handleTokenReset(w http.ResponseWriter, _ *http.Request) {
	s.tokens.ResetToken()
	s.logger.Info().Msg("Cached device-management token reset")

	w.WriteHeader(http.StatusNoContent)
}
