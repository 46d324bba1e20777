// ABOUTME: Interactive config file writer for coven-chat
// ABOUTME: Prompts for each setting and writes YAML or TOML depending on the file extension

package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/2389/coven-chat/internal/config"
)

func runInit(in io.Reader, out io.Writer, defaultPath string) error {
	reader := bufio.NewReader(in)
	p := &prompter{reader: reader, out: out}

	fmt.Fprintln(out, "coven-chat configuration setup")
	fmt.Fprintln(out, "==============================")
	fmt.Fprintln(out)

	outputFile := p.ask("Config file path (.yaml or .toml)", defaultPath)

	if _, err := os.Stat(outputFile); err == nil {
		if !p.confirm("File exists. Overwrite?", "no") {
			fmt.Fprintln(out, "Aborted.")
			return nil
		}
	}

	cfg := config.Default()

	fmt.Fprintln(out, "\n--- Client ---")
	for {
		raw := p.ask("Client ID (integer)", "")
		id, err := strconv.ParseInt(raw, 10, 64)
		if err == nil {
			cfg.SetClientID(id)
			break
		}
		if raw == "" && p.eof {
			return fmt.Errorf("client ID is required")
		}
		fmt.Fprintf(out, "  %q is not an integer\n", raw)
	}

	fmt.Fprintln(out, "\n--- Assistant ---")
	cfg.Assistant.URL = p.ask("Assistant endpoint URL", cfg.Assistant.URL)
	for {
		raw := p.ask("Request timeout (0s waits indefinitely)", "60s")
		d, err := time.ParseDuration(raw)
		if err == nil && d >= 0 {
			cfg.Assistant.Timeout = d
			cfg.Assistant.TimeoutRaw = raw
			break
		}
		if p.eof {
			return fmt.Errorf("invalid timeout %q", raw)
		}
		fmt.Fprintf(out, "  %q is not a valid duration\n", raw)
	}

	fmt.Fprintln(out, "\n--- Web Surface ---")
	cfg.Web.Addr = p.ask("Listen address", cfg.Web.Addr)
	cfg.Web.Tailscale.Enabled = p.confirm("Serve on your tailnet with Tailscale?", "no")
	if cfg.Web.Tailscale.Enabled {
		cfg.Web.Tailscale.Hostname = p.ask("Tailscale hostname", cfg.Web.Tailscale.Hostname)
		cfg.Web.Tailscale.AuthKey = p.ask("Tailscale auth key (leave empty to use $TS_AUTHKEY)", "${TS_AUTHKEY}")
		cfg.Web.Tailscale.Ephemeral = p.confirm("Ephemeral node?", "yes")
	}

	fmt.Fprintln(out, "\n--- Logging ---")
	cfg.Logging.Level = p.ask("Log level (debug/info/warn/error)", cfg.Logging.Level)
	cfg.Logging.Format = p.ask("Log format (text/json)", cfg.Logging.Format)

	data, err := renderConfig(cfg, filepath.Ext(outputFile))
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(outputFile), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(outputFile, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	fmt.Fprintf(out, "\nConfig written to %s\n", outputFile)
	fmt.Fprintln(out, "\nTo start chatting:")
	fmt.Fprintf(out, "  coven-chat -config %s\n", outputFile)
	return nil
}

// renderConfig encodes cfg with a header and checks that the result loads.
func renderConfig(cfg *config.Config, ext string) ([]byte, error) {
	if cfg.Web.Tailscale.Enabled && cfg.Web.Tailscale.AuthKey == "" {
		cfg.Web.Tailscale.AuthKey = "${TS_AUTHKEY}"
	}

	body, err := config.Marshal(cfg, ext)
	if err != nil {
		return nil, err
	}

	var buf strings.Builder
	buf.WriteString("# coven-chat configuration\n")
	buf.WriteString("# Generated by coven-chat init\n\n")
	buf.Write(body)

	if _, err := config.Parse([]byte(buf.String()), ext); err != nil {
		return nil, fmt.Errorf("generated config is invalid: %w", err)
	}
	return []byte(buf.String()), nil
}

type prompter struct {
	reader *bufio.Reader
	out    io.Writer
	eof    bool
}

func (p *prompter) ask(question, defaultVal string) string {
	if defaultVal != "" {
		fmt.Fprintf(p.out, "%s [%s]: ", question, defaultVal)
	} else {
		fmt.Fprintf(p.out, "%s: ", question)
	}

	input, err := p.reader.ReadString('\n')
	if err != nil {
		// On EOF or error, return default
		fmt.Fprintln(p.out)
		p.eof = true
		if strings.TrimSpace(input) == "" {
			return defaultVal
		}
	}
	input = strings.TrimSpace(input)

	if input == "" {
		return defaultVal
	}
	return input
}

func (p *prompter) confirm(question, defaultVal string) bool {
	answer := strings.ToLower(p.ask(question, defaultVal))
	return answer == "yes" || answer == "y"
}
