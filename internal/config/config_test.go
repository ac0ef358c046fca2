package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

var envKeys = []string{
	"STUDYPLAN_USER", "STUDYPLAN_BACKEND", "STUDYPLAN_DB",
	"STUDYPLAN_REDIS_ADDR", "STUDYPLAN_REDIS_PASSWORD", "STUDYPLAN_REDIS_DB",
	"STUDYPLAN_LOG_MODE", "STUDYPLAN_LOG_PATH",
	"STUDYPLAN_AI_BASE_URL", "STUDYPLAN_AI_API_KEY", "STUDYPLAN_AI_MODEL", "STUDYPLAN_AI_TIMEOUT_SECONDS",
	"STUDYPLAN_CALENDAR_TOKEN", "STUDYPLAN_CALENDAR_ID",
}

// isolate points the user config dir at a temp dir and clears overrides.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("HOME", dir)
	t.Setenv("USER", "tester")
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
	return dir
}

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
}

func requireCode(t *testing.T, err error, want ConfigErrorCode) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", want)
	}
	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected *ConfigError, got=%T", err)
	}
	if cfgErr.Code != want {
		t.Fatalf("code: want=%q got=%q", want, cfgErr.Code)
	}
}

func TestLoadDefaultsWithoutFile(t *testing.T) {
	isolate(t)
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.User != "tester" {
		t.Fatalf("User: want=%q got=%q", "tester", cfg.User)
	}
	if cfg.Backend != "sqlite" {
		t.Fatalf("Backend: want=%q got=%q", "sqlite", cfg.Backend)
	}
	if cfg.AI.Enabled() || cfg.Calendar.Enabled() {
		t.Fatalf("integrations should be off by default: %+v", cfg)
	}
	if cfg.Calendar.CalendarID != "primary" || cfg.AI.TimeoutSeconds != 30 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestLoadDefaultPathFile(t *testing.T) {
	dir := isolate(t)
	writeFile(t, filepath.Join(dir, "studyplan", "config.yaml"), `
user: alice
backend: Redis
redis:
  addr: localhost:6379
  db: 2
ai:
  api_key: sk-test
  model: local-model
calendar:
  token: ya29.token
`)
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.User != "alice" || cfg.Backend != "redis" || cfg.Redis.Addr != "localhost:6379" || cfg.Redis.DB != 2 {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if !cfg.AI.Enabled() || cfg.AI.Model != "local-model" || cfg.AI.BaseURL != "https://api.openai.com/v1" {
		t.Fatalf("unexpected ai config: %+v", cfg.AI)
	}
	if !cfg.Calendar.Enabled() {
		t.Fatal("expected calendar enabled")
	}
}

func TestEnvOverridesFile(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "custom.yaml")
	writeFile(t, path, "user: alice\nlog:\n  mode: dev\n")
	t.Setenv("STUDYPLAN_USER", "bob")
	t.Setenv("STUDYPLAN_AI_TIMEOUT_SECONDS", "5")
	t.Setenv("STUDYPLAN_DB", "/tmp/plan.db")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.User != "bob" {
		t.Fatalf("User: want=%q got=%q", "bob", cfg.User)
	}
	if cfg.Log.Mode != "dev" || cfg.AI.TimeoutSeconds != 5 || cfg.DBPath != "/tmp/plan.db" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}

func TestLoadExplicitMissingFile(t *testing.T) {
	dir := isolate(t)
	_, err := Load(filepath.Join(dir, "nope.yaml"))
	requireCode(t, err, ConfigErrorReadFile)
}

func TestLoadMalformedFile(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "bad.yaml")
	writeFile(t, path, "user: [unterminated\n")
	_, err := Load(path)
	requireCode(t, err, ConfigErrorParseFile)
}

func TestInvalidBackend(t *testing.T) {
	isolate(t)
	t.Setenv("STUDYPLAN_BACKEND", "mongo")
	_, err := Load("")
	requireCode(t, err, ConfigErrorInvalidBackend)
}

func TestRedisRequiresAddr(t *testing.T) {
	isolate(t)
	t.Setenv("STUDYPLAN_BACKEND", "redis")
	_, err := Load("")
	requireCode(t, err, ConfigErrorMissingRedis)

	t.Setenv("STUDYPLAN_REDIS_ADDR", "localhost:6379")
	if _, err := Load(""); err != nil {
		t.Fatalf("Load: %v", err)
	}
}

func TestInvalidTimeout(t *testing.T) {
	isolate(t)
	t.Setenv("STUDYPLAN_AI_TIMEOUT_SECONDS", "soon")
	_, err := Load("")
	requireCode(t, err, ConfigErrorInvalidTimeout)

	t.Setenv("STUDYPLAN_AI_TIMEOUT_SECONDS", "0")
	_, err = Load("")
	requireCode(t, err, ConfigErrorInvalidTimeout)
}

func TestInvalidLogMode(t *testing.T) {
	isolate(t)
	t.Setenv("STUDYPLAN_LOG_MODE", "verbose")
	_, err := Load("")
	requireCode(t, err, ConfigErrorInvalidLogMode)
}

func TestValidateMissingUser(t *testing.T) {
	cfg := Default()
	cfg.User = "  "
	requireCode(t, cfg.Validate(), ConfigErrorMissingUser)
}
