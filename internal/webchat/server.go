// ABOUTME: Browser surface for a conversation: chat page, JSON state API and SSE updates
// ABOUTME: Serves on a TCP address or on the tailnet through tsnet

package webchat

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/yuin/goldmark"
	"tailscale.com/tsnet"

	"github.com/2389/coven-chat/internal/config"
	"github.com/2389/coven-chat/internal/conversation"
)

const shutdownTimeout = 5 * time.Second

// Conversation is the part of conversation.Controller the surface drives.
type Conversation interface {
	Snapshot() conversation.State
	Subscribe(ctx context.Context) <-chan conversation.State
	UpdateDraft(text string)
	ConfirmAsync(ctx context.Context) bool
}

// Config configures a Server.
type Config struct {
	Web          config.WebConfig
	Conversation Conversation
	Logger       *slog.Logger
}

// Server is the browser chat surface.
type Server struct {
	web    config.WebConfig
	conv   Conversation
	logger *slog.Logger
	md     goldmark.Markdown
	tmpl   *template.Template
	mux    *http.ServeMux

	// exchangeCtx outlives individual requests; Run cancels it on shutdown.
	exchangeCtx    context.Context
	cancelExchange context.CancelFunc

	httpServer  *http.Server
	tsnetServer *tsnet.Server
}

// New creates a Server.
func New(cfg Config) (*Server, error) {
	if cfg.Conversation == nil {
		return nil, errors.New("webchat: conversation is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	tmpl, err := template.ParseFS(templateFS, "templates/chat.html")
	if err != nil {
		return nil, fmt.Errorf("parsing templates: %w", err)
	}

	exchangeCtx, cancel := context.WithCancel(context.Background())
	s := &Server{
		web:            cfg.Web,
		conv:           cfg.Conversation,
		logger:         logger.With("component", "webchat"),
		md:             goldmark.New(),
		tmpl:           tmpl,
		mux:            http.NewServeMux(),
		exchangeCtx:    exchangeCtx,
		cancelExchange: cancel,
	}
	s.routes()

	s.httpServer = &http.Server{
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
		// Shutdown does not cancel active requests; deriving them from
		// exchangeCtx lets open event streams end when it is cancelled.
		BaseContext: func(net.Listener) context.Context { return s.exchangeCtx },
	}
	return s, nil
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /{$}", s.handleIndex)
	s.mux.HandleFunc("GET /api/state", s.handleState)
	s.mux.HandleFunc("GET /api/events", s.handleEvents)
	s.mux.HandleFunc("POST /api/draft", sameOrigin(s.handleDraft))
	s.mux.HandleFunc("POST /api/submit", sameOrigin(s.handleSubmit))
	s.mux.HandleFunc("GET /health", s.handleHealth)
}

// Handler returns the HTTP handler for the surface.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Run listens on the configured address and serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	ln, err := s.listen(ctx)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("web chat listening", "addr", ln.Addr().String())
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("HTTP server: %w", err)
		}
	}()

	var serverErr error
	select {
	case <-ctx.Done():
		s.logger.Info("context canceled, initiating shutdown")
	case serverErr = <-errCh:
		s.logger.Error("server error", "error", serverErr)
	}

	// Fresh context: the caller's is already cancelled.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	shutdownErr := s.Shutdown(shutdownCtx)

	if serverErr != nil {
		return serverErr
	}
	return shutdownErr
}

// Shutdown stops the HTTP server, cancels in-flight exchanges and leaves
// the tailnet if one was joined.
func (s *Server) Shutdown(ctx context.Context) error {
	var errs []error
	s.cancelExchange()
	if err := s.httpServer.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("http shutdown: %w", err))
	}
	if s.tsnetServer != nil {
		if err := s.tsnetServer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("tailscale close: %w", err))
		}
	}
	return errors.Join(errs...)
}
