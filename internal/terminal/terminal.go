// ABOUTME: Line-oriented terminal surface for a conversation
// ABOUTME: Reads input lines into the draft and prints transcript changes as they are published

package terminal

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/fatih/color"

	"github.com/2389/coven-chat/internal/chat"
	"github.com/2389/coven-chat/internal/conversation"
)

// TypingIndicator is printed while a request is pending.
const TypingIndicator = "Assistant is typing..."

// Conversation is the part of conversation.Controller the terminal drives.
type Conversation interface {
	Snapshot() conversation.State
	Subscribe(ctx context.Context) <-chan conversation.State
	UpdateDraft(text string)
	ConfirmAsync(ctx context.Context) bool
	Wait()
}

// Config configures a Surface.
type Config struct {
	Conversation Conversation
	In           io.Reader
	Out          io.Writer
}

// Surface renders one conversation on a terminal.
type Surface struct {
	conv Conversation
	in   io.Reader

	mu      sync.Mutex // guards out and the render bookkeeping below
	out     io.Writer
	printed int
	typing  bool

	userLabel      string
	assistantLabel string
	hint           *color.Color
}

// New creates a terminal surface.
func New(cfg Config) *Surface {
	return &Surface{
		conv:           cfg.Conversation,
		in:             cfg.In,
		out:            cfg.Out,
		userLabel:      color.New(color.FgGreen, color.Bold).Sprint("you> "),
		assistantLabel: color.New(color.FgCyan, color.Bold).Sprint("assistant> "),
		hint:           color.New(color.FgHiBlack),
	}
}

// Run reads lines until EOF, a quit command or ctx cancellation. Exchanges
// started from the terminal run under ctx. At EOF, Run waits for the
// pending exchange to resolve before returning.
func (s *Surface) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	states := s.conv.Subscribe(ctx)
	wg.Go(func() {
		for state := range states {
			s.render(state)
		}
	})
	defer wg.Wait()
	defer cancel()

	lines := make(chan string)
	readErr := make(chan error, 1)
	go func() {
		scanner := bufio.NewScanner(s.in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		readErr <- scanner.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-readErr:
			if err != nil {
				return fmt.Errorf("reading input: %w", err)
			}
			// End of input: let a reply already requested arrive.
			s.conv.Wait()
			return nil
		case line := <-lines:
			if quit := s.handleLine(ctx, line); quit {
				return nil
			}
		}
	}
}

// handleLine processes one input line and reports whether to quit.
func (s *Surface) handleLine(ctx context.Context, line string) bool {
	switch strings.TrimSpace(line) {
	case "/quit", "/exit", "/q":
		return true
	case "/help":
		s.printHelp()
		return false
	case "/history":
		s.printHistory()
		return false
	case "/draft":
		s.printDraft()
		return false
	}

	// An empty line sends the current draft, such as one saved while pending.
	if strings.TrimSpace(line) != "" {
		s.conv.UpdateDraft(line)
	}
	if !s.conv.ConfirmAsync(ctx) && s.conv.Snapshot().Pending {
		s.printHint("still waiting for the assistant; draft saved, press Enter to send it later")
	}
	return false
}

// render prints messages appended since the last render and the typing
// indicator when a request becomes pending.
func (s *Surface) render(state conversation.State) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(state.Messages) < s.printed {
		s.printed = 0
	}
	for _, m := range state.Messages[s.printed:] {
		s.writeMessage(m)
	}
	s.printed = len(state.Messages)

	if state.Pending && !s.typing {
		fmt.Fprintln(s.out, s.hint.Sprint(TypingIndicator))
	}
	s.typing = state.Pending
}

func (s *Surface) writeMessage(m chat.Message) {
	label := s.userLabel
	if m.Role == chat.RoleAssistant {
		label = s.assistantLabel
	}
	fmt.Fprintf(s.out, "%s%s\n", label, stripMarkdown(m.Text))
}

func (s *Surface) printHistory() {
	state := s.conv.Snapshot()

	s.mu.Lock()
	defer s.mu.Unlock()
	if len(state.Messages) == 0 {
		fmt.Fprintln(s.out, s.hint.Sprint("no messages yet"))
		return
	}
	for _, m := range state.Messages {
		s.writeMessage(m)
	}
}

func (s *Surface) printDraft() {
	draft := s.conv.Snapshot().Draft
	if draft == "" {
		s.printHint("draft is empty")
		return
	}
	s.printHint("draft: " + draft)
}

func (s *Surface) printHint(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintln(s.out, s.hint.Sprint(msg))
}

func (s *Surface) printHelp() {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintln(s.out, "Commands:")
	fmt.Fprintln(s.out, "  /history       Reprint the conversation")
	fmt.Fprintln(s.out, "  /draft         Show the saved draft")
	fmt.Fprintln(s.out, "  /help          Show this help")
	fmt.Fprintln(s.out, "  /quit          Exit")
	fmt.Fprintln(s.out, "An empty line sends the saved draft.")
}

// stripMarkdown removes common markdown formatting from text.
func stripMarkdown(s string) string {
	// Remove bold/italic markers (order matters: ** before *)
	s = strings.ReplaceAll(s, "**", "")
	s = strings.ReplaceAll(s, "__", "")
	// Don't remove single * as it's often used for lists
	return s
}
