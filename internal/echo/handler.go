// ABOUTME: Local echo assistant implementing the assistant chat wire contract
// ABOUTME: Validates transcripts, echoes the last user message with markdown, replays retried requests

package echo

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/2389/coven-chat/internal/assistant"
	"github.com/2389/coven-chat/internal/chat"
	"github.com/2389/coven-chat/internal/dedupe"
)

const (
	// DefaultReplayTTL is how long a reply is replayed for a repeated request id.
	DefaultReplayTTL = 5 * time.Minute

	replayCacheSize = 1000
	maxRequestBytes = 1 << 20

	// Messages starting with these prefixes make the assistant fail on purpose.
	failPrefix       = "!fail"
	silentFailPrefix = "!silent"
)

// Config configures the echo assistant.
type Config struct {
	ReplayTTL time.Duration
	// Delay is slept before each reply to make the pending state observable.
	Delay  time.Duration
	Logger *slog.Logger
}

// Handler serves the echo assistant.
type Handler struct {
	mux     *http.ServeMux
	replies *dedupe.Cache[string]
	delay   time.Duration
	logger  *slog.Logger
}

// NewHandler creates an echo assistant. Call Close to release the replay cache.
func NewHandler(cfg Config) *Handler {
	ttl := cfg.ReplayTTL
	if ttl <= 0 {
		ttl = DefaultReplayTTL
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	h := &Handler{
		mux:     http.NewServeMux(),
		replies: dedupe.New[string](ttl, replayCacheSize),
		delay:   cfg.Delay,
		logger:  logger.With("component", "echo"),
	}
	h.mux.HandleFunc("POST "+assistant.ChatPath, h.handleChat)
	h.mux.HandleFunc("GET /health", h.handleHealth)
	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

// Close stops the replay cache cleanup.
func (h *Handler) Close() {
	h.replies.Close()
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (h *Handler) handleChat(w http.ResponseWriter, r *http.Request) {
	requestID := r.Header.Get(assistant.RequestIDHeader)

	if reply, ok := h.replies.Lookup(requestID); ok {
		h.logger.Debug("replaying reply", "request_id", requestID)
		h.sendReply(w, reply)
		return
	}

	transcript, clientID, err := parseChatRequest(w, r)
	if err != nil {
		h.logger.Debug("rejecting request", "request_id", requestID, "error", err)
		sendJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	last := transcript[len(transcript)-1].Text
	h.logger.Info("received message",
		"request_id", requestID,
		"client_id", clientID,
		"message_count", len(transcript),
	)

	if h.delay > 0 {
		select {
		case <-time.After(h.delay):
		case <-r.Context().Done():
			return
		}
	}

	switch {
	case strings.HasPrefix(last, silentFailPrefix):
		w.WriteHeader(http.StatusInternalServerError)
		return
	case strings.HasPrefix(last, failPrefix):
		msg := strings.TrimSpace(strings.TrimPrefix(last, failPrefix))
		sendJSONError(w, http.StatusInternalServerError, msg)
		return
	}

	reply := echoReply(last)
	h.replies.Store(requestID, reply)
	h.sendReply(w, reply)
}

func (h *Handler) sendReply(w http.ResponseWriter, reply string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(assistant.ChatResponse{Reply: &reply}); err != nil {
		h.logger.Warn("failed to write reply", "error", err)
	}
}

// inboundRequest mirrors assistant.ChatRequest but keeps client_id optional
// so an absent field can be told apart from client 0.
type inboundRequest struct {
	ClientID *int64                  `json:"client_id"`
	Messages []assistant.WireMessage `json:"messages"`
}

// parseChatRequest decodes and validates a chat request body.
func parseChatRequest(w http.ResponseWriter, r *http.Request) ([]chat.Message, int64, error) {
	var req inboundRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes)).Decode(&req); err != nil {
		return nil, 0, errors.New("invalid JSON body")
	}

	if req.ClientID == nil {
		return nil, 0, errors.New("client_id is required")
	}
	if len(req.Messages) == 0 {
		return nil, 0, errors.New("messages must not be empty")
	}

	transcript, err := assistant.FromWire(req.Messages)
	if err != nil {
		return nil, 0, fmt.Errorf("invalid messages: %w", err)
	}
	if transcript[len(transcript)-1].Role != chat.RoleUser {
		return nil, 0, errors.New("last message must be from the user")
	}

	return transcript, *req.ClientID, nil
}

// echoReply builds a markdown reply for input.
func echoReply(input string) string {
	lower := strings.ToLower(input)
	if strings.Contains(lower, "markdown") || strings.Contains(lower, "bullet") || strings.Contains(lower, "list") {
		return "Here is a **markdown** response:\n\n- First item\n- Second item with `code`\n- Third item\n\n> This is a blockquote.\n"
	}
	return fmt.Sprintf("Echo: **%s**\n\nI received your message and am responding with some *formatted* text.", input)
}

func sendJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(assistant.ErrorResponse{Error: message})
}
