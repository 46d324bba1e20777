// ABOUTME: Tests for coven-chat command wiring
// ABOUTME: Covers config path resolution, config loading with overrides and the init writer

package main

import (
	"bytes"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/coven-chat/internal/config"
)

func idPtr(v int64) *int64 { return &v }

func TestGetConfigPath(t *testing.T) {
	t.Setenv("COVEN_CHAT_CONFIG", "/etc/coven/chat.toml")
	assert.Equal(t, "/etc/coven/chat.toml", getConfigPath())

	t.Setenv("COVEN_CHAT_CONFIG", "")
	t.Setenv("XDG_CONFIG_HOME", "/xdg")
	assert.Equal(t, filepath.Join("/xdg", "coven", "chat.yaml"), getConfigPath())

	home := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", "")
	t.Setenv("HOME", home)
	assert.Equal(t, filepath.Join(home, ".config", "coven", "chat.yaml"), getConfigPath())
}

func TestLoadConfig_FlagOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chat.yaml")
	require.NoError(t, os.WriteFile(path, []byte("client:\n  id: 1\n"), 0644))

	cfg, err := loadConfig(path, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), cfg.ClientID())

	cfg, err = loadConfig(path, idPtr(99))
	require.NoError(t, err)
	assert.Equal(t, int64(99), cfg.ClientID())
}

func TestLoadConfig_FlagZeroOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chat.yaml")
	require.NoError(t, os.WriteFile(path, []byte("client:\n  id: 5\n"), 0644))

	cfg, err := loadConfig(path, idPtr(0))
	require.NoError(t, err)
	assert.Equal(t, int64(0), cfg.ClientID())

	cfg, err = loadConfig(filepath.Join(t.TempDir(), "absent.yaml"), idPtr(0))
	require.NoError(t, err)
	assert.Equal(t, int64(0), cfg.ClientID())
}

func TestFlagSet(t *testing.T) {
	fset := flag.NewFlagSet("coven-chat", flag.ContinueOnError)
	fset.Int64("client-id", 0, "")
	fset.String("config", "", "")
	require.NoError(t, fset.Parse([]string{"-client-id", "0"}))

	assert.True(t, flagSet(fset, "client-id"))
	assert.False(t, flagSet(fset, "config"))
}

func TestLoadConfig_FlagSuppliesMissingClientID(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chat.yaml")
	require.NoError(t, os.WriteFile(path, []byte("logging:\n  level: debug\n"), 0644))

	_, err := loadConfig(path, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "client.id is required")

	cfg, err := loadConfig(path, idPtr(11))
	require.NoError(t, err)
	assert.Equal(t, int64(11), cfg.ClientID())
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.yaml")

	_, err := loadConfig(path, nil)
	assert.Error(t, err)

	cfg, err := loadConfig(path, idPtr(7))
	require.NoError(t, err)
	assert.Equal(t, int64(7), cfg.ClientID())
	assert.Equal(t, config.DefaultAssistantURL, cfg.Assistant.URL)
}

func TestLoadConfig_InvalidFileNotMaskedByFlag(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chat.yaml")
	require.NoError(t, os.WriteFile(path, []byte("client: [broken"), 0644))

	_, err := loadConfig(path, idPtr(7))
	assert.Error(t, err)
}

func TestNewController(t *testing.T) {
	cfg := config.Default()
	cfg.SetClientID(42)

	ctrl, err := newController(cfg, nil)
	require.NoError(t, err)
	defer ctrl.Close()
	assert.EqualValues(t, 42, ctrl.ClientID())
}

func TestRunInit_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "coven", "chat.yaml")
	input := strings.Join([]string{
		"",      // config path (default)
		"abc",   // invalid client id
		"42",    // client id
		"",      // assistant url (default)
		"soon",  // invalid timeout
		"30s",   // timeout
		":9000", // listen address
		"no",    // tailscale
		"debug", // log level
		"",      // log format (default)
	}, "\n") + "\n"

	var out bytes.Buffer
	require.NoError(t, runInit(strings.NewReader(input), &out, path))

	assert.Contains(t, out.String(), `"abc" is not an integer`)
	assert.Contains(t, out.String(), `"soon" is not a valid duration`)
	assert.Contains(t, out.String(), "Config written to "+path)

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, int64(42), cfg.ClientID())
	assert.Equal(t, config.DefaultAssistantURL, cfg.Assistant.URL)
	assert.Equal(t, 30*time.Second, cfg.Assistant.Timeout)
	assert.Equal(t, ":9000", cfg.Web.Addr)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
}

func TestRunInit_TOMLWithTailscale(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chat.toml")
	input := strings.Join([]string{
		"",                                  // config path (default)
		"5",                                 // client id
		"https://assistant.example.com/api", // assistant url
		"0s",                                // timeout
		"",                                  // listen address
		"y",                                 // tailscale
		"chat-node",                         // hostname
		"",                                  // auth key (default)
		"no",                                // ephemeral
		"",                                  // log level
		"json",                              // log format
	}, "\n") + "\n"

	var out bytes.Buffer
	require.NoError(t, runInit(strings.NewReader(input), &out, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "# coven-chat configuration"))
	assert.Contains(t, string(data), "${TS_AUTHKEY}")

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, int64(5), cfg.ClientID())
	assert.Equal(t, "https://assistant.example.com/api", cfg.Assistant.URL)
	assert.True(t, cfg.Web.Tailscale.Enabled)
	assert.Equal(t, "chat-node", cfg.Web.Tailscale.Hostname)
	assert.False(t, cfg.Web.Tailscale.Ephemeral)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestRunInit_ExistingFileAborts(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chat.yaml")
	require.NoError(t, os.WriteFile(path, []byte("keep"), 0644))

	var out bytes.Buffer
	require.NoError(t, runInit(strings.NewReader("\nno\n"), &out, path))
	assert.Contains(t, out.String(), "Aborted.")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "keep", string(data))
}

func TestRunInit_EOFWithoutClientID(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chat.yaml")

	var out bytes.Buffer
	err := runInit(strings.NewReader("\n"), &out, path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "client ID is required")
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}
