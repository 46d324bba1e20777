// ABOUTME: HTTP client for the assistant chat endpoint
// ABOUTME: Posts the full transcript and classifies failures as API or transport errors

package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/2389/coven-chat/internal/chat"
)

// maxResponseBytes bounds how much of a response body is read.
const maxResponseBytes = 1 << 20

var errMissingReply = errors.New("response has no reply field")

// Config configures a Client.
type Config struct {
	// Endpoint is the full URL of the chat endpoint.
	Endpoint string

	// Timeout bounds each exchange. Zero means no deadline.
	Timeout time.Duration

	// HTTPClient defaults to a fresh http.Client.
	HTTPClient *http.Client

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Client talks to the assistant service.
type Client struct {
	endpoint string
	timeout  time.Duration
	client   *http.Client
	logger   *slog.Logger
}

// NewClient creates a new assistant client.
func NewClient(cfg Config) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		endpoint: cfg.Endpoint,
		timeout:  cfg.Timeout,
		client:   httpClient,
		logger:   logger.With("component", "assistant"),
	}
}

// Endpoint returns the URL the client posts to.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Chat posts the transcript on behalf of clientID and returns the reply.
func (c *Client) Chat(ctx context.Context, clientID chat.ClientID, transcript []chat.Message) (string, error) {
	body, err := json.Marshal(ChatRequest{
		ClientID: int64(clientID),
		Messages: ToWire(transcript),
	})
	if err != nil {
		return "", &chat.TransportError{Op: "marshaling request", Err: err}
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	requestID := uuid.New().String()
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", &chat.TransportError{Op: "creating request", Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set(RequestIDHeader, requestID)

	start := time.Now()
	resp, err := c.client.Do(httpReq)
	if err != nil {
		c.logger.Warn("assistant request failed",
			"request_id", requestID,
			"error", err,
		)
		return "", &chat.TransportError{Op: "sending request", Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", &chat.TransportError{Op: "reading response", Err: err}
	}

	c.logger.Debug("assistant responded",
		"request_id", requestID,
		"status", resp.StatusCode,
		"messages", len(transcript),
		"elapsed", time.Since(start),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", errorFromResponse(resp.StatusCode, data)
	}

	var out ChatResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return "", &chat.TransportError{Op: "decoding response", Err: err}
	}
	if out.Reply == nil {
		return "", &chat.TransportError{Op: "decoding response", Err: errMissingReply}
	}
	return *out.Reply, nil
}

// errorFromResponse builds an APIError from a failure status, keeping the
// server's error message when the body carries one.
func errorFromResponse(status int, body []byte) error {
	apiErr := &chat.APIError{Status: status}

	var errResp ErrorResponse
	if len(body) > 0 && json.Unmarshal(body, &errResp) == nil {
		apiErr.Message = errResp.Error
	}

	return apiErr
}
