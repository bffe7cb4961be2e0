// ABOUTME: Tests for configuration loading and validation
// ABOUTME: Covers TOML loading, env expansion, WB_* overrides, required fields

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "doorman.toml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func TestLoad_ValidConfig(t *testing.T) {
	path := writeConfig(t, `
[bot]
name = "greeter"
group_name = "gophers"
action_delay = "1500ms"

[console]
disabled = true

[http]
enabled = true
port = 8080

[matrix]
homeserver = "https://matrix.example"
user_id = "@greeter:matrix.example"
access_token = "syt_secret"

[logging]
level = "debug"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Bot.Name != "greeter" {
		t.Errorf("bot name = %q, want greeter", cfg.Bot.Name)
	}
	if cfg.Bot.GroupName != "gophers" {
		t.Errorf("group name = %q, want gophers", cfg.Bot.GroupName)
	}
	if cfg.Bot.ActionDelay != 1500*time.Millisecond {
		t.Errorf("action delay = %v, want 1.5s", cfg.Bot.ActionDelay)
	}
	if !cfg.Console.Disabled {
		t.Error("console should be disabled")
	}
	if !cfg.HTTP.Enabled || cfg.HTTP.Port != 8080 {
		t.Errorf("http = %+v, want enabled on 8080", cfg.HTTP)
	}
	if cfg.HTTPAddr() != ":8080" {
		t.Errorf("http addr = %q, want :8080", cfg.HTTPAddr())
	}
	if cfg.Matrix.AccessToken != "syt_secret" {
		t.Errorf("access token = %q", cfg.Matrix.AccessToken)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("log level = %q, want debug", cfg.Logging.Level)
	}
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, `
[bot]
group_name = "gophers"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Bot.Name != "doorman" {
		t.Errorf("default bot name = %q, want doorman", cfg.Bot.Name)
	}
	if cfg.Bot.ActionDelay != DefaultActionDelay {
		t.Errorf("default action delay = %v, want %v", cfg.Bot.ActionDelay, DefaultActionDelay)
	}
	if cfg.HTTP.Port != DefaultHTTPPort {
		t.Errorf("default port = %d, want %d", cfg.HTTP.Port, DefaultHTTPPort)
	}
	if cfg.Console.Disabled {
		t.Error("console should default to enabled")
	}
	if cfg.HTTP.Enabled {
		t.Error("http should default to disabled")
	}
}

func TestLoad_MissingFileUsesEnvironment(t *testing.T) {
	t.Setenv("WB_TARGET_GROUP_NAME", "gophers")

	cfg, err := Load(filepath.Join(t.TempDir(), "nonexistent.toml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Bot.GroupName != "gophers" {
		t.Errorf("group name = %q, want gophers", cfg.Bot.GroupName)
	}
}

func TestLoad_MissingGroupNameIsFatal(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nonexistent.toml"))
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !strings.Contains(err.Error(), "group_name") {
		t.Errorf("error %q should mention group_name", err)
	}
}

func TestLoad_EnvVarExpansion(t *testing.T) {
	t.Setenv("TEST_DOORMAN_TOKEN", "syt_expanded")
	path := writeConfig(t, `
[bot]
group_name = "gophers"

[matrix]
access_token = "${TEST_DOORMAN_TOKEN}"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Matrix.AccessToken != "syt_expanded" {
		t.Errorf("access token = %q, want syt_expanded", cfg.Matrix.AccessToken)
	}
}

func TestLoad_EnvOverridesBeatFile(t *testing.T) {
	t.Setenv("WB_WHO_AM_I", "env-bot")
	t.Setenv("WB_TARGET_GROUP_NAME", "env-group")
	t.Setenv("WB_DISABLE_CONSOLE", "1")
	t.Setenv("WB_ENABLE_HTTP", "true")
	t.Setenv("WB_HTTP_PORT", "9000")

	path := writeConfig(t, `
[bot]
name = "file-bot"
group_name = "file-group"

[http]
enabled = false
port = 3000
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Bot.Name != "env-bot" {
		t.Errorf("bot name = %q, want env-bot", cfg.Bot.Name)
	}
	if cfg.Bot.GroupName != "env-group" {
		t.Errorf("group name = %q, want env-group", cfg.Bot.GroupName)
	}
	if !cfg.Console.Disabled {
		t.Error("console should be disabled via env")
	}
	if !cfg.HTTP.Enabled || cfg.HTTP.Port != 9000 {
		t.Errorf("http = %+v, want enabled on 9000", cfg.HTTP)
	}
}

func TestLoad_NonNumericPortEnvIsFatal(t *testing.T) {
	t.Setenv("WB_TARGET_GROUP_NAME", "gophers")
	t.Setenv("WB_HTTP_PORT", "http")

	_, err := Load(filepath.Join(t.TempDir(), "nonexistent.toml"))
	if err == nil {
		t.Fatal("expected WB_HTTP_PORT parse error")
	}
	if !strings.Contains(err.Error(), "WB_HTTP_PORT") {
		t.Errorf("error %q should mention WB_HTTP_PORT", err)
	}
}

func TestLoad_InvalidDuration(t *testing.T) {
	path := writeConfig(t, `
[bot]
group_name = "gophers"
action_delay = "soon"
`)

	if _, err := Load(path); err == nil {
		t.Fatal("expected duration parse error")
	}
}

func TestLoad_InvalidPort(t *testing.T) {
	path := writeConfig(t, `
[bot]
group_name = "gophers"

[http]
enabled = true
port = 99999
`)

	if _, err := Load(path); err == nil {
		t.Fatal("expected port validation error")
	}
}
