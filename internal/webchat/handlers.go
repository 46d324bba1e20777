// ABOUTME: HTTP handlers for the web chat page, state API, draft updates and submit
// ABOUTME: State is served as JSON and streamed as Server-Sent Events

package webchat

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"mime"
	"net/http"
	"time"

	"github.com/2389/coven-chat/internal/chat"
	"github.com/2389/coven-chat/internal/conversation"
)

const (
	maxDraftBytes     = 64 << 10
	keepaliveInterval = 30 * time.Second
)

// messageView is a transcript entry as served to the browser.
type messageView struct {
	Role    string        `json:"role"`
	Message string        `json:"message"`
	HTML    template.HTML `json:"html"`
}

// stateView is the JSON form of conversation.State.
type stateView struct {
	Messages []messageView `json:"messages"`
	Draft    string        `json:"draft"`
	Pending  bool          `json:"pending"`
}

type draftRequest struct {
	Text string `json:"text"`
}

type submitResponse struct {
	Accepted bool `json:"accepted"`
}

// view converts a snapshot, rendering assistant messages from markdown.
func (s *Server) view(state conversation.State) stateView {
	v := stateView{
		Messages: make([]messageView, len(state.Messages)),
		Draft:    state.Draft,
		Pending:  state.Pending,
	}
	for i, m := range state.Messages {
		v.Messages[i] = messageView{
			Role:    string(m.Role),
			Message: m.Text,
			HTML:    s.renderMessage(m),
		}
	}
	return v
}

// renderMessage returns the HTML for a message. Assistant replies are
// markdown; user text is escaped as is.
func (s *Server) renderMessage(m chat.Message) template.HTML {
	if m.Role != chat.RoleAssistant {
		return template.HTML(template.HTMLEscapeString(m.Text))
	}
	var buf bytes.Buffer
	if err := s.md.Convert([]byte(m.Text), &buf); err != nil {
		s.logger.Error("failed to convert markdown", "error", err)
		return template.HTML(template.HTMLEscapeString(m.Text))
	}
	// goldmark omits raw HTML unless WithUnsafe is set.
	return template.HTML(buf.String())
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	data := struct {
		Title string
		State stateView
	}{
		Title: "Coven Chat",
		State: s.view(s.conv.Snapshot()),
	}

	var buf bytes.Buffer
	if err := s.tmpl.Execute(&buf, data); err != nil {
		s.logger.Error("failed to render chat page", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	s.sendJSON(w, http.StatusOK, s.view(s.conv.Snapshot()))
}

func (s *Server) handleDraft(w http.ResponseWriter, r *http.Request) {
	if !isJSON(r) {
		s.sendJSONError(w, http.StatusUnsupportedMediaType, "content type must be application/json")
		return
	}

	var req draftRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxDraftBytes)).Decode(&req); err != nil {
		s.sendJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	s.conv.UpdateDraft(req.Text)
	w.WriteHeader(http.StatusNoContent)
}

// handleSubmit triggers Confirm. The exchange runs on the server's context
// so that it survives the browser request.
func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	if !s.conv.ConfirmAsync(s.exchangeCtx) {
		s.sendJSON(w, http.StatusOK, submitResponse{Accepted: false})
		return
	}
	s.sendJSON(w, http.StatusAccepted, submitResponse{Accepted: true})
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		s.logger.Error("streaming not supported")
		s.sendJSONError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	ctx := r.Context()
	states := s.conv.Subscribe(ctx)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	keepalive := time.NewTicker(keepaliveInterval)
	defer keepalive.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.exchangeCtx.Done():
			return
		case <-keepalive.C:
			_, _ = fmt.Fprint(w, ": keepalive\n\n")
			flusher.Flush()
		case state, ok := <-states:
			if !ok {
				return
			}
			s.writeSSEEvent(w, "state", s.view(state))
			flusher.Flush()
		}
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// sameOrigin rejects requests a browser marks as coming from another site.
// Requests without Sec-Fetch-Site (non-browser clients) pass.
func sameOrigin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Sec-Fetch-Site") == "cross-site" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusForbidden)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "cross-site request rejected"})
			return
		}
		next(w, r)
	}
}

// isJSON reports whether the request body is declared as JSON. Browsers
// cannot send that content type cross-origin without a CORS preflight.
func isJSON(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "application/json"
}

// writeSSEEvent writes a single SSE event to the response writer.
func (s *Server) writeSSEEvent(w http.ResponseWriter, event string, data any) {
	dataJSON, err := json.Marshal(data)
	if err != nil {
		s.logger.Error("failed to marshal SSE data", "error", err)
		return
	}

	fmt.Fprintf(w, "event: %s\n", event)
	fmt.Fprintf(w, "data: %s\n\n", dataJSON)
}

func (s *Server) sendJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("failed to write response", "error", err)
	}
}

// sendJSONError writes a JSON error response.
func (s *Server) sendJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
