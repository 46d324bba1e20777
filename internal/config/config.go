// ABOUTME: Configuration loading and parsing for coven-chat
// ABOUTME: Supports YAML or TOML files with environment variable expansion and duration parsing

package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

const (
	DefaultAssistantURL = "http://localhost:5000/api/assistant/chat"
	DefaultWebAddr      = "127.0.0.1:8090"
	DefaultHostname     = "coven-chat"
)

// Config represents the complete coven-chat configuration
type Config struct {
	Client    ClientConfig    `yaml:"client" toml:"client"`
	Assistant AssistantConfig `yaml:"assistant" toml:"assistant"`
	Web       WebConfig       `yaml:"web" toml:"web"`
	Logging   LoggingConfig   `yaml:"logging" toml:"logging"`
}

// ClientConfig identifies the conversation owner
type ClientConfig struct {
	// ID is a pointer so that an absent value can be told apart from 0.
	ID *int64 `yaml:"id" toml:"id"`
}

// AssistantConfig holds the assistant endpoint and request policy
type AssistantConfig struct {
	URL     string        `yaml:"url" toml:"url"`
	Timeout time.Duration `yaml:"-" toml:"-"`

	// Raw string value for YAML/TOML unmarshaling
	TimeoutRaw string `yaml:"timeout" toml:"timeout"`
}

// WebConfig holds the browser surface listener configuration
type WebConfig struct {
	Addr      string          `yaml:"addr" toml:"addr"`
	Tailscale TailscaleConfig `yaml:"tailscale" toml:"tailscale"`
}

// TailscaleConfig holds Tailscale tsnet configuration for the web surface
type TailscaleConfig struct {
	Enabled   bool   `yaml:"enabled" toml:"enabled"`
	Hostname  string `yaml:"hostname" toml:"hostname"`
	AuthKey   string `yaml:"auth_key" toml:"auth_key"`
	StateDir  string `yaml:"state_dir" toml:"state_dir"`
	Ephemeral bool   `yaml:"ephemeral" toml:"ephemeral"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level" toml:"level"`
	Format string `yaml:"format" toml:"format"`
}

// Default returns a configuration with every optional field set.
// The client ID is left unset.
func Default() *Config {
	return &Config{
		Assistant: AssistantConfig{URL: DefaultAssistantURL},
		Web: WebConfig{
			Addr: DefaultWebAddr,
			Tailscale: TailscaleConfig{
				Hostname:  DefaultHostname,
				Ephemeral: true,
			},
		},
		Logging: LoggingConfig{Level: "info", Format: "text"},
	}
}

// Load reads a configuration file from the given path and returns a parsed Config.
// Files ending in .toml are decoded as TOML, anything else as YAML.
// Environment variables in the format ${VAR_NAME} are expanded.
func Load(path string) (*Config, error) {
	cfg, err := Read(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

// Read is Load without validation, for callers that apply overrides first.
func Read(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	return decode(data, filepath.Ext(path))
}

// Parse decodes and validates configuration content. ext selects the format
// (".toml" or anything else for YAML).
func Parse(data []byte, ext string) (*Config, error) {
	cfg, err := decode(data, ext)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

func decode(data []byte, ext string) (*Config, error) {
	expanded := expandEnvVars(string(data))

	cfg := Default()
	if strings.EqualFold(ext, ".toml") {
		if _, err := toml.Decode(expanded, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	} else {
		if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	applyDefaults(cfg)

	if err := parseDurations(cfg); err != nil {
		return nil, fmt.Errorf("parsing durations: %w", err)
	}
	return cfg, nil
}

// Marshal encodes cfg in the format selected by ext.
func Marshal(cfg *Config, ext string) ([]byte, error) {
	if cfg.Assistant.TimeoutRaw == "" && cfg.Assistant.Timeout > 0 {
		cfg.Assistant.TimeoutRaw = cfg.Assistant.Timeout.String()
	}
	if strings.EqualFold(ext, ".toml") {
		var sb strings.Builder
		if err := toml.NewEncoder(&sb).Encode(cfg); err != nil {
			return nil, fmt.Errorf("encoding config: %w", err)
		}
		return []byte(sb.String()), nil
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("encoding config: %w", err)
	}
	return data, nil
}

// expandEnvVars replaces ${VAR_NAME} patterns with the corresponding environment variable values.
// If the environment variable is not set, it is replaced with an empty string.
func expandEnvVars(s string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)

	return re.ReplaceAllStringFunc(s, func(match string) string {
		varName := re.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}

// applyDefaults fills optional fields that a file set to empty values.
func applyDefaults(cfg *Config) {
	def := Default()
	if cfg.Assistant.URL == "" {
		cfg.Assistant.URL = def.Assistant.URL
	}
	if cfg.Web.Addr == "" {
		cfg.Web.Addr = def.Web.Addr
	}
	if cfg.Web.Tailscale.Hostname == "" && !cfg.Web.Tailscale.Enabled {
		cfg.Web.Tailscale.Hostname = def.Web.Tailscale.Hostname
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = def.Logging.Level
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = def.Logging.Format
	}
}

// Validate checks that all required configuration fields are present and valid.
// Returns an error describing the first validation failure encountered.
func (c *Config) Validate() error {
	if c.Client.ID == nil {
		return fmt.Errorf("client.id is required")
	}

	if c.Assistant.URL == "" {
		return fmt.Errorf("assistant.url is required")
	}
	u, err := url.Parse(c.Assistant.URL)
	if err != nil {
		return fmt.Errorf("assistant.url is not a valid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("assistant.url must use http or https scheme")
	}
	if u.Host == "" {
		return fmt.Errorf("assistant.url must include a host")
	}

	if c.Assistant.Timeout < 0 {
		return fmt.Errorf("assistant.timeout must not be negative")
	}

	if c.Web.Tailscale.Enabled && c.Web.Tailscale.Hostname == "" {
		return fmt.Errorf("web.tailscale.hostname is required when tailscale is enabled")
	}

	switch c.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level %q is not one of debug, info, warn, error", c.Logging.Level)
	}

	switch c.Logging.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("logging.format %q is not one of text, json", c.Logging.Format)
	}

	return nil
}

// SetClientID overrides the configured client ID.
func (c *Config) SetClientID(id int64) {
	c.Client.ID = &id
}

// ClientID returns the configured client ID, or 0 when unset.
func (c *Config) ClientID() int64 {
	if c.Client.ID == nil {
		return 0
	}
	return *c.Client.ID
}

// parseDurations converts the raw duration strings into time.Duration values
func parseDurations(cfg *Config) error {
	if cfg.Assistant.TimeoutRaw != "" {
		d, err := time.ParseDuration(cfg.Assistant.TimeoutRaw)
		if err != nil {
			return fmt.Errorf("parsing assistant.timeout %q: %w", cfg.Assistant.TimeoutRaw, err)
		}
		cfg.Assistant.Timeout = d
	}
	return nil
}
