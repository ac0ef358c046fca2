package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestRedactsSensitiveKeys(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	log := FromCore(core)

	log.Info("calling assistant", "api_key", "sk-secret", "model", "gpt-4o-mini")
	log.With("Access_Token", "ya29.abc").Warn("calendar push failed")

	entries := logs.All()
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	first := entries[0].ContextMap()
	if first["api_key"] != "[REDACTED]" {
		t.Fatalf("api_key not redacted: %v", first["api_key"])
	}
	if first["model"] != "gpt-4o-mini" {
		t.Fatalf("model should pass through, got %v", first["model"])
	}
	if got := entries[1].ContextMap()["Access_Token"]; got != "[REDACTED]" {
		t.Fatalf("access token not redacted: %v", got)
	}
}

func TestRedactDoesNotMutateInput(t *testing.T) {
	kv := []interface{}{"token", "abc"}
	redact(kv)
	if kv[1] != "abc" {
		t.Fatalf("input mutated: %v", kv)
	}
}

func TestRedactOddPairs(t *testing.T) {
	out := redact([]interface{}{"user", "alice", "token"})
	if len(out) != 3 || out[1] != "alice" {
		t.Fatalf("unexpected output: %v", out)
	}
}

func TestNewWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "studyplan.log")
	log, err := New("prod", path)
	if err != nil {
		t.Fatal(err)
	}
	log.Info("plan saved", "user", "alice", "token", "t0k3n")
	log.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	out := string(data)
	if !strings.Contains(out, "plan saved") || !strings.Contains(out, "alice") {
		t.Fatalf("entry missing from log file: %s", out)
	}
	if strings.Contains(out, "t0k3n") {
		t.Fatalf("token leaked into log file: %s", out)
	}
}

func TestNop(t *testing.T) {
	Nop().Error("ignored", "k", "v")
}
