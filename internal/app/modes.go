package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"simctl-mcp/internal/transport/sse"
	"simctl-mcp/internal/transport/stdio"
	"simctl-mcp/pkg/logging"
)

const shutdownTimeout = 5 * time.Second

// runStdioMode serves a single client over stdin/stdout until input closes
func runStdioMode(ctx context.Context, cfg *Config, services *Services) error {
	in, out := cfg.In, cfg.Out
	if in == nil {
		in = os.Stdin
	}
	if out == nil {
		out = os.Stdout
	}

	logging.Info("CLI", "Serving MCP over stdio")
	err := stdio.New(services.Server.MCP()).Serve(ctx, in, out)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// runHTTPMode serves the event-stream transport until ctx is cancelled
func runHTTPMode(ctx context.Context, cfg *Config, services *Services) error {
	settings := cfg.Settings.Server
	srv := sse.New(services.Server.MCP(), sse.Options{
		SSEPath:           settings.SSEPath,
		MessagePath:       settings.MessagePath,
		BaseURL:           settings.BaseURL,
		KeepAlive:         settings.KeepAliveEnabled(),
		KeepAliveInterval: settings.KeepAliveInterval,
	})

	addr := net.JoinHostPort(settings.Host, strconv.Itoa(settings.Port))
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start(addr)
	}()

	announceHost := settings.Host
	if announceHost == "" || announceHost == "0.0.0.0" || announceHost == "::" {
		announceHost = "localhost"
	}
	base := fmt.Sprintf("http://%s", net.JoinHostPort(announceHost, strconv.Itoa(settings.Port)))
	logging.Info("CLI", "HTTP server listening on port %d", settings.Port)
	logging.Info("CLI", "SSE endpoint available at %s%s", base, srv.SSEPath())
	logging.Info("CLI", "Message endpoint available at %s%s", base, srv.MessagePath())

	select {
	case err := <-errCh:
		if errors.Is(err, sse.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("HTTP server failed: %w", err)
	case <-ctx.Done():
	}

	logging.Info("CLI", "Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.Error("CLI", err, "Error shutting down HTTP server")
		return err
	}
	return nil
}
