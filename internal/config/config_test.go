// ABOUTME: Tests for coven-chat configuration loading and validation
// ABOUTME: Covers YAML and TOML decoding, env expansion, defaults, durations and validation errors

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestLoad_YAML(t *testing.T) {
	path := writeConfig(t, "chat.yaml", `
client:
  id: 42
assistant:
  url: "https://assistant.example.com/api/assistant/chat"
  timeout: "30s"
web:
  addr: ":9000"
logging:
  level: "debug"
  format: "json"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.ClientID() != 42 {
		t.Errorf("ClientID() = %d, want 42", cfg.ClientID())
	}
	if cfg.Assistant.URL != "https://assistant.example.com/api/assistant/chat" {
		t.Errorf("Assistant.URL = %q", cfg.Assistant.URL)
	}
	if cfg.Assistant.Timeout != 30*time.Second {
		t.Errorf("Assistant.Timeout = %v, want 30s", cfg.Assistant.Timeout)
	}
	if cfg.Web.Addr != ":9000" {
		t.Errorf("Web.Addr = %q, want :9000", cfg.Web.Addr)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "json" {
		t.Errorf("Logging = %+v", cfg.Logging)
	}
}

func TestLoad_TOML(t *testing.T) {
	path := writeConfig(t, "chat.toml", `
[client]
id = 7

[assistant]
url = "http://127.0.0.1:5000/api/assistant/chat"
timeout = "2m"

[web.tailscale]
enabled = true
hostname = "chat-box"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.ClientID() != 7 {
		t.Errorf("ClientID() = %d, want 7", cfg.ClientID())
	}
	if cfg.Assistant.Timeout != 2*time.Minute {
		t.Errorf("Assistant.Timeout = %v, want 2m", cfg.Assistant.Timeout)
	}
	if !cfg.Web.Tailscale.Enabled || cfg.Web.Tailscale.Hostname != "chat-box" {
		t.Errorf("Web.Tailscale = %+v", cfg.Web.Tailscale)
	}
	if cfg.Web.Addr != DefaultWebAddr {
		t.Errorf("Web.Addr = %q, want default %q", cfg.Web.Addr, DefaultWebAddr)
	}
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, "chat.yaml", "client:\n  id: 0\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Client.ID == nil || *cfg.Client.ID != 0 {
		t.Errorf("Client.ID = %v, want explicit 0", cfg.Client.ID)
	}
	if cfg.Assistant.URL != DefaultAssistantURL {
		t.Errorf("Assistant.URL = %q, want %q", cfg.Assistant.URL, DefaultAssistantURL)
	}
	if cfg.Assistant.Timeout != 0 {
		t.Errorf("Assistant.Timeout = %v, want 0", cfg.Assistant.Timeout)
	}
	if cfg.Web.Tailscale.Hostname != DefaultHostname {
		t.Errorf("Web.Tailscale.Hostname = %q, want %q", cfg.Web.Tailscale.Hostname, DefaultHostname)
	}
	if !cfg.Web.Tailscale.Ephemeral {
		t.Error("Web.Tailscale.Ephemeral should default to true")
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "text" {
		t.Errorf("Logging = %+v, want info/text", cfg.Logging)
	}
}

func TestLoad_EnvExpansion(t *testing.T) {
	t.Setenv("TEST_TS_AUTHKEY", "tskey-abc")
	t.Setenv("TEST_ASSISTANT_HOST", "assistant.internal:5000")

	path := writeConfig(t, "chat.yaml", `
client:
  id: 1
assistant:
  url: "http://${TEST_ASSISTANT_HOST}/api/assistant/chat"
web:
  tailscale:
    auth_key: "${TEST_TS_AUTHKEY}"
    state_dir: "${TEST_UNSET_VAR_FOR_CHAT}"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Assistant.URL != "http://assistant.internal:5000/api/assistant/chat" {
		t.Errorf("Assistant.URL = %q", cfg.Assistant.URL)
	}
	if cfg.Web.Tailscale.AuthKey != "tskey-abc" {
		t.Errorf("AuthKey = %q, want tskey-abc", cfg.Web.Tailscale.AuthKey)
	}
	if cfg.Web.Tailscale.StateDir != "" {
		t.Errorf("StateDir = %q, want empty for unset variable", cfg.Web.Tailscale.StateDir)
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		wantErr string
	}{
		{
			name:    "missing client id",
			file:    "chat.yaml",
			content: "assistant:\n  url: http://localhost:5000/x\n",
			wantErr: "client.id is required",
		},
		{
			name:    "bad scheme",
			file:    "chat.yaml",
			content: "client:\n  id: 1\nassistant:\n  url: ftp://host/x\n",
			wantErr: "http or https",
		},
		{
			name:    "missing host",
			file:    "chat.yaml",
			content: "client:\n  id: 1\nassistant:\n  url: \"http:///x\"\n",
			wantErr: "must include a host",
		},
		{
			name:    "bad duration",
			file:    "chat.yaml",
			content: "client:\n  id: 1\nassistant:\n  timeout: soon\n",
			wantErr: "assistant.timeout",
		},
		{
			name:    "negative duration",
			file:    "chat.yaml",
			content: "client:\n  id: 1\nassistant:\n  timeout: -5s\n",
			wantErr: "must not be negative",
		},
		{
			name:    "bad log level",
			file:    "chat.yaml",
			content: "client:\n  id: 1\nlogging:\n  level: loud\n",
			wantErr: "logging.level",
		},
		{
			name:    "bad log format",
			file:    "chat.yaml",
			content: "client:\n  id: 1\nlogging:\n  format: xml\n",
			wantErr: "logging.format",
		},
		{
			name:    "tailscale without hostname",
			file:    "chat.yaml",
			content: "client:\n  id: 1\nweb:\n  tailscale:\n    enabled: true\n    hostname: \"\"\n",
			wantErr: "web.tailscale.hostname",
		},
		{
			name:    "invalid yaml",
			file:    "chat.yaml",
			content: "client: [unclosed",
			wantErr: "parsing config file",
		},
		{
			name:    "invalid toml",
			file:    "chat.toml",
			content: "[client\nid = 1",
			wantErr: "parsing config file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.file, tt.content)
			_, err := Load(path)
			if err == nil {
				t.Fatalf("Load() expected error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Load() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatal("Load() expected error for missing file")
	}
	if !strings.Contains(err.Error(), "reading config file") {
		t.Errorf("error = %v, want reading config file", err)
	}
}

func TestMarshal_RoundTrip(t *testing.T) {
	for _, ext := range []string{".yaml", ".toml"} {
		t.Run(ext, func(t *testing.T) {
			cfg := Default()
			cfg.SetClientID(99)
			cfg.Assistant.Timeout = 45 * time.Second

			data, err := Marshal(cfg, ext)
			if err != nil {
				t.Fatalf("Marshal() error = %v", err)
			}

			got, err := Parse(data, ext)
			if err != nil {
				t.Fatalf("Parse() error = %v\n%s", err, data)
			}
			if got.ClientID() != 99 {
				t.Errorf("ClientID() = %d, want 99", got.ClientID())
			}
			if got.Assistant.Timeout != 45*time.Second {
				t.Errorf("Timeout = %v, want 45s", got.Assistant.Timeout)
			}
			if got.Web.Addr != DefaultWebAddr {
				t.Errorf("Web.Addr = %q", got.Web.Addr)
			}
		})
	}
}

func TestRead_SkipsValidation(t *testing.T) {
	path := writeConfig(t, "chat.yaml", "assistant:\n  timeout: 10s\n")

	cfg, err := Read(path)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if cfg.Client.ID != nil {
		t.Errorf("Client.ID = %v, want nil", cfg.Client.ID)
	}
	if cfg.Assistant.Timeout != 10*time.Second {
		t.Errorf("Assistant.Timeout = %v, want 10s", cfg.Assistant.Timeout)
	}

	cfg.SetClientID(3)
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() after override error = %v", err)
	}
}

func TestClientID_Unset(t *testing.T) {
	cfg := Default()
	if cfg.ClientID() != 0 {
		t.Errorf("ClientID() = %d, want 0", cfg.ClientID())
	}
	if err := cfg.Validate(); err == nil {
		t.Error("Validate() should fail without client id")
	}
}
