package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"go-chi-calculator/internal/session"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("HTTP_ADDR", "")
	t.Setenv("CALC_SESSION_TTL", "")
	t.Setenv("CALC_MEMORY_PATH", "")

	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("loading config: %v", err)
	}

	want := config{
		Addr:          ":8080",
		SessionTTL:    session.DefaultTTL,
		SweepInterval: session.DefaultTTL / 4,
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("HTTP_ADDR", "127.0.0.1:9000")
	t.Setenv("CALC_SESSION_TTL", "2s")
	t.Setenv("CALC_MEMORY_PATH", "/var/lib/calc/memory.db")

	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("loading config: %v", err)
	}

	want := config{
		Addr:          "127.0.0.1:9000",
		SessionTTL:    2 * time.Second,
		SweepInterval: time.Second,
		MemoryPath:    "/var/lib/calc/memory.db",
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadConfigRejectsBadTTL(t *testing.T) {
	for _, v := range []string{"soon", "-1m", "0s"} {
		t.Run(v, func(t *testing.T) {
			t.Setenv("CALC_SESSION_TTL", v)
			if _, err := loadConfig(); err == nil {
				t.Fatalf("expected error for %q", v)
			}
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	if err := os.WriteFile(path, []byte("CALC_TEST_FROM_FILE=file\nCALC_TEST_PRESET=file\n"), 0o600); err != nil {
		t.Fatalf("writing env file: %v", err)
	}
	t.Setenv("ENV_FILE", path)
	t.Setenv("CALC_TEST_PRESET", "process")
	t.Setenv("CALC_TEST_FROM_FILE", "")
	os.Unsetenv("CALC_TEST_FROM_FILE")

	if err := loadDotEnv(); err != nil {
		t.Fatalf("loading env file: %v", err)
	}
	t.Cleanup(func() { os.Unsetenv("CALC_TEST_FROM_FILE") })

	if got := os.Getenv("CALC_TEST_FROM_FILE"); got != "file" {
		t.Fatalf("expected value from file, got %q", got)
	}
	if got := os.Getenv("CALC_TEST_PRESET"); got != "process" {
		t.Fatalf("expected process value to win, got %q", got)
	}
}

func TestLoadDotEnvMissingExplicitFile(t *testing.T) {
	t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))

	if err := loadDotEnv(); err == nil {
		t.Fatal("expected error for missing explicit env file")
	}
}
