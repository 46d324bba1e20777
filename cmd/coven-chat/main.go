// ABOUTME: Entry point for coven-chat, a single-conversation assistant client
// ABOUTME: Runs the terminal or browser surface over one conversation, or writes a config file

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/fatih/color"

	"github.com/2389/coven-chat/internal/assistant"
	"github.com/2389/coven-chat/internal/chat"
	"github.com/2389/coven-chat/internal/config"
	"github.com/2389/coven-chat/internal/conversation"
	"github.com/2389/coven-chat/internal/logging"
	"github.com/2389/coven-chat/internal/terminal"
	"github.com/2389/coven-chat/internal/webchat"
)

// Version is set by goreleaser at build time.
var version = "dev"

const banner = `
  ___ _____   _____ _ __         ___| |__   __ _| |_
 / __/ _ \ \ / / _ \ '_ \ _____ / __| '_ \ / _' | __|
| (_| (_) \ V /  __/ | | |_____| (__| | | | (_| | |_
 \___\___/ \_/ \___|_| |_|      \___|_| |_|\__,_|\__|
`

// getConfigPath returns the path to the chat config file.
// Priority: COVEN_CHAT_CONFIG env var > XDG_CONFIG_HOME/coven/chat.yaml > ~/.config/coven/chat.yaml
func getConfigPath() string {
	if envPath := os.Getenv("COVEN_CHAT_CONFIG"); envPath != "" {
		return envPath
	}

	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "chat.yaml" // fallback
		}
		configDir = filepath.Join(homeDir, ".config")
	}

	return filepath.Join(configDir, "coven", "chat.yaml")
}

func usage() {
	out := flag.CommandLine.Output()
	fmt.Fprintln(out, "Usage: coven-chat [flags] [command]")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Commands:")
	fmt.Fprintln(out, "  tui    Chat in the terminal (default)")
	fmt.Fprintln(out, "  web    Serve the chat in a browser")
	fmt.Fprintln(out, "  init   Create a new config file interactively")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Flags:")
	flag.PrintDefaults()
}

func main() {
	configPath := flag.String("config", "", "Config file path (default: $COVEN_CHAT_CONFIG or ~/.config/coven/chat.yaml)")
	clientID := flag.Int64("client-id", 0, "Client ID, overrides client.id from the config file")
	flag.Usage = usage
	flag.Parse()

	var idOverride *int64
	if flagSet(flag.CommandLine, "client-id") {
		idOverride = clientID
	}

	path := *configPath
	if path == "" {
		path = getConfigPath()
	}

	command := "tui"
	if flag.NArg() > 0 {
		command = flag.Arg(0)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var err error
	switch command {
	case "tui":
		err = runTUI(ctx, path, idOverride)
	case "web":
		err = runWeb(ctx, path, idOverride)
	case "init":
		err = runInit(os.Stdin, os.Stdout, path)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		usage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printBanner(w io.Writer) {
	cyan := color.New(color.FgCyan)
	cyan.Fprint(w, banner)

	gray := color.New(color.FgHiBlack)
	gray.Fprintf(w, "    version: %s\n\n", version)
}

// flagSet reports whether name was given on the command line.
func flagSet(fset *flag.FlagSet, name string) bool {
	found := false
	fset.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}

// loadConfig reads the config file and applies the -client-id override.
// A nil clientID means the flag was not given.
func loadConfig(path string, clientID *int64) (*config.Config, error) {
	cfg, err := config.Read(path)
	if err != nil {
		if clientID == nil || !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("loading config from %s: %w", path, err)
		}
		// No file, but the flag supplies the only required value.
		cfg = config.Default()
	}
	if clientID != nil {
		cfg.SetClientID(*clientID)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

// newController wires the assistant client into a conversation controller.
func newController(cfg *config.Config, logger *slog.Logger) (*conversation.Controller, error) {
	client := assistant.NewClient(assistant.Config{
		Endpoint: cfg.Assistant.URL,
		Timeout:  cfg.Assistant.Timeout,
		Logger:   logger,
	})

	ctrl, err := conversation.New(conversation.Config{
		ClientID:  chat.ClientID(cfg.ClientID()),
		Assistant: client,
		Logger:    logger,
	})
	if err != nil {
		return nil, fmt.Errorf("creating conversation: %w", err)
	}
	return ctrl, nil
}

func runTUI(ctx context.Context, configPath string, clientID *int64) error {
	cfg, err := loadConfig(configPath, clientID)
	if err != nil {
		return err
	}

	// Logs go to stderr so they do not interleave with the transcript.
	logger := logging.New(cfg.Logging, os.Stderr)
	slog.SetDefault(logger)

	ctrl, err := newController(cfg, logger)
	if err != nil {
		return err
	}
	defer ctrl.Close()

	printBanner(os.Stdout)
	fmt.Printf("Talking to %s as client %d\n", cfg.Assistant.URL, cfg.ClientID())
	fmt.Println("Type a message and press Enter. /help for commands. Ctrl+C to quit.")
	fmt.Println()

	surface := terminal.New(terminal.Config{
		Conversation: ctrl,
		In:           os.Stdin,
		Out:          os.Stdout,
	})
	if err := surface.Run(ctx); err != nil {
		return err
	}

	fmt.Println("\nGoodbye!")
	return nil
}

func runWeb(ctx context.Context, configPath string, clientID *int64) error {
	printBanner(os.Stdout)

	cfg, err := loadConfig(configPath, clientID)
	if err != nil {
		return err
	}

	logger := logging.New(cfg.Logging, os.Stderr)
	slog.SetDefault(logger)

	ctrl, err := newController(cfg, logger)
	if err != nil {
		return err
	}
	defer ctrl.Close()

	srv, err := webchat.New(webchat.Config{
		Web:          cfg.Web,
		Conversation: ctrl,
		Logger:       logger,
	})
	if err != nil {
		return fmt.Errorf("creating web chat: %w", err)
	}

	logger.Info("starting web chat",
		"assistant", cfg.Assistant.URL,
		"client_id", cfg.ClientID(),
		"tailscale", cfg.Web.Tailscale.Enabled,
	)
	if err := srv.Run(ctx); err != nil {
		return err
	}
	ctrl.Wait()
	return nil
}
