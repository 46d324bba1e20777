// ABOUTME: Local echo assistant for development and end-to-end tests
// ABOUTME: Usage: coven-echo [-addr localhost:5000] [-replay-ttl 5m] [-delay 0s]

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/2389/coven-chat/internal/assistant"
	"github.com/2389/coven-chat/internal/config"
	"github.com/2389/coven-chat/internal/echo"
	"github.com/2389/coven-chat/internal/logging"
)

func main() {
	addr := flag.String("addr", "localhost:5000", "Listen address")
	replayTTL := flag.Duration("replay-ttl", echo.DefaultReplayTTL, "How long replies are replayed for a repeated X-Request-ID")
	delay := flag.Duration("delay", 0, "Delay before each reply")
	logLevel := flag.String("log-level", "info", "Log level (debug/info/warn/error)")
	logFormat := flag.String("log-format", "text", "Log format (text/json)")
	flag.Parse()

	logger := logging.New(config.LoggingConfig{Level: *logLevel, Format: *logFormat}, os.Stderr)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, *addr, echo.Config{ReplayTTL: *replayTTL, Delay: *delay, Logger: logger}, logger); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, addr string, cfg echo.Config, logger *slog.Logger) error {
	handler := echo.NewHandler(cfg)
	defer handler.Close()

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", addr, err)
	}

	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("echo assistant listening", "endpoint", "http://"+ln.Addr().String()+assistant.ChatPath)
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("HTTP server: %w", err)
		}
	}()

	var serverErr error
	select {
	case <-ctx.Done():
		logger.Info("context canceled, initiating shutdown")
	case serverErr = <-errCh:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && serverErr == nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return serverErr
}
