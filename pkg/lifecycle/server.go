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

package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/carverauto/assetbridge/pkg/logger"
)

const defaultShutdownTimeout = 15 * time.Second

// ServerOptions configures RunServer.
type ServerOptions struct {
	ServiceName     string
	Server          *http.Server
	Logger          logger.Logger
	ShutdownTimeout time.Duration
	// OnShutdown runs after the listener has drained, e.g. to close audit sinks.
	OnShutdown func(ctx context.Context) error
	// Listener overrides Server.Addr; used by tests to bind an ephemeral port.
	Listener net.Listener
}

// RunServer serves until ctx is cancelled or SIGINT/SIGTERM is received, then
// drains in-flight requests within ShutdownTimeout.
func RunServer(ctx context.Context, opts *ServerOptions) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	log := opts.Logger
	if log == nil {
		log = logger.NewTestLogger()
	}

	ln := opts.Listener
	if ln == nil {
		var err error

		ln, err = net.Listen("tcp", opts.Server.Addr)
		if err != nil {
			return fmt.Errorf("failed to listen on %s: %w", opts.Server.Addr, err)
		}
	}

	errCh := make(chan error, 1)

	go func() {
		log.Info().
			Str("service", opts.ServiceName).
			Str("addr", ln.Addr().String()).
			Msg("Starting HTTP server")

		if err := opts.Server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}

		close(errCh)
	}()

	var serveErr error

	select {
	case <-ctx.Done():
		log.Info().Str("service", opts.ServiceName).Msg("Shutdown requested")
	case serveErr = <-errCh:
		if serveErr == nil {
			return nil
		}

		log.Error().Err(serveErr).Msg("HTTP server stopped unexpectedly")
	}

	timeout := opts.ShutdownTimeout
	if timeout <= 0 {
		timeout = defaultShutdownTimeout
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()

	errs := []error{serveErr}

	if err := opts.Server.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("failed to shut down HTTP server: %w", err))
	}

	if opts.OnShutdown != nil {
		if err := opts.OnShutdown(shutdownCtx); err != nil {
			errs = append(errs, err)
		}
	}

	log.Info().Str("service", opts.ServiceName).Msg("Server stopped")

	return errors.Join(errs...)
}
