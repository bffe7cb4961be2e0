// ABOUTME: Configuration loading and validation for doorman
// ABOUTME: TOML file with env var expansion, WB_* environment overrides, duration parsing

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
)

// DefaultActionDelay paces the friendship accept/welcome sequence.
const DefaultActionDelay = 3 * time.Second

// DefaultHTTPPort is the operator endpoint port when none is configured.
const DefaultHTTPPort = 3000

// Config is the complete doorman configuration.
type Config struct {
	Bot     BotConfig     `toml:"bot"`
	Console ConsoleConfig `toml:"console"`
	HTTP    HTTPConfig    `toml:"http"`
	Matrix  MatrixConfig  `toml:"matrix"`
	Logging LoggingConfig `toml:"logging"`
}

// BotConfig holds the bot's identity and invite target.
type BotConfig struct {
	// Name is the display name used in welcome messages.
	Name string `toml:"name"`
	// GroupName is the group chat requesters are invited into. Required.
	GroupName string `toml:"group_name"`

	ActionDelay time.Duration `toml:"-"`
	// Raw string value for TOML unmarshaling
	ActionDelayRaw string `toml:"action_delay"`
}

// ConsoleConfig controls the stdin command console and terminal QR output.
type ConsoleConfig struct {
	Disabled bool `toml:"disabled"`
}

// HTTPConfig controls the operator HTTP endpoint.
type HTTPConfig struct {
	Enabled bool `toml:"enabled"`
	Port    int  `toml:"port"`
}

// MatrixConfig holds the messaging session credentials.
type MatrixConfig struct {
	Homeserver  string `toml:"homeserver"`
	UserID      string `toml:"user_id"`
	AccessToken string `toml:"access_token"`
}

// LoggingConfig holds structured logging configuration.
type LoggingConfig struct {
	Level string `toml:"level"`
}

// DefaultPath returns the config file location.
// Priority: DOORMAN_CONFIG env var > XDG_CONFIG_HOME/doorman/doorman.toml >
// ~/.config/doorman/doorman.toml
func DefaultPath() string {
	if envPath := os.Getenv("DOORMAN_CONFIG"); envPath != "" {
		return envPath
	}

	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "doorman.toml" // fallback
		}
		configDir = filepath.Join(homeDir, ".config")
	}

	return filepath.Join(configDir, "doorman", "doorman.toml")
}

// Load reads the configuration file at path, expands ${VAR_NAME} references,
// applies WB_* environment overrides, and validates the result. A missing
// file is not an error: doorman can run from environment variables alone.
func Load(path string) (*Config, error) {
	cfg := &Config{
		Bot:     BotConfig{Name: "doorman"},
		HTTP:    HTTPConfig{Port: DefaultHTTPPort},
		Logging: LoggingConfig{Level: "info"},
	}

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// Environment-only configuration.
	case err != nil:
		return nil, fmt.Errorf("reading config file: %w", err)
	default:
		expanded := expandEnvVars(string(data))
		if err := toml.Unmarshal([]byte(expanded), cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, fmt.Errorf("applying environment overrides: %w", err)
	}

	if err := parseDurations(cfg); err != nil {
		return nil, fmt.Errorf("parsing durations: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// expandEnvVars replaces ${VAR_NAME} patterns with the corresponding
// environment variable values. Unset variables expand to empty strings.
func expandEnvVars(s string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)

	return re.ReplaceAllStringFunc(s, func(match string) string {
		varName := re.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}

// applyEnvOverrides applies the WB_* environment variables, which take
// precedence over file values and preserve the original env-first interface.
func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("WB_WHO_AM_I"); v != "" {
		cfg.Bot.Name = v
	}
	if v := os.Getenv("WB_TARGET_GROUP_NAME"); v != "" {
		cfg.Bot.GroupName = v
	}
	if v := os.Getenv("WB_DISABLE_CONSOLE"); v != "" {
		cfg.Console.Disabled = isTruthy(v)
	}
	if v := os.Getenv("WB_ENABLE_HTTP"); v != "" {
		cfg.HTTP.Enabled = isTruthy(v)
	}
	if v := os.Getenv("WB_HTTP_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parsing WB_HTTP_PORT %q: %w", v, err)
		}
		cfg.HTTP.Port = port
	}
	return nil
}

func isTruthy(v string) bool {
	switch v {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

// Validate checks that all required configuration fields are present.
// Returns an error describing the first validation failure encountered.
func (c *Config) Validate() error {
	if c.Bot.GroupName == "" {
		return fmt.Errorf("bot.group_name is required (or set WB_TARGET_GROUP_NAME)")
	}
	if c.HTTP.Enabled && (c.HTTP.Port <= 0 || c.HTTP.Port > 65535) {
		return fmt.Errorf("http.port %d out of range", c.HTTP.Port)
	}
	return nil
}

// HTTPAddr returns the listen address for the operator endpoint.
func (c *Config) HTTPAddr() string {
	return fmt.Sprintf(":%d", c.HTTP.Port)
}

// parseDurations converts the raw duration strings into time.Duration values.
func parseDurations(cfg *Config) error {
	cfg.Bot.ActionDelay = DefaultActionDelay

	if cfg.Bot.ActionDelayRaw != "" {
		d, err := time.ParseDuration(cfg.Bot.ActionDelayRaw)
		if err != nil {
			return fmt.Errorf("parsing action_delay %q: %w", cfg.Bot.ActionDelayRaw, err)
		}
		cfg.Bot.ActionDelay = d
	}

	return nil
}
