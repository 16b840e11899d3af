package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestGet(t *testing.T) {
	t.Setenv("CONFIG_TEST_KEY", "set")
	if got := Get("CONFIG_TEST_KEY", "fallback"); got != "set" {
		t.Fatalf("Get = %q, want set", got)
	}
	if got := Get("CONFIG_TEST_UNSET", "fallback"); got != "fallback" {
		t.Fatalf("Get = %q, want fallback", got)
	}
}

func TestLoadSolverConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "solver.yaml")
	body := "time_limit: 5s\nremote_url: http://solver.internal\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadSolverConfig(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.TimeLimit != 5*time.Second {
		t.Fatalf("time limit = %v, want 5s", cfg.TimeLimit)
	}
	if cfg.RemoteURL != "http://solver.internal" {
		t.Fatalf("remote url = %q", cfg.RemoteURL)
	}
	// unset field keeps its default
	if cfg.RemoteAPIKey != "" {
		t.Fatalf("remote api key = %q, want empty", cfg.RemoteAPIKey)
	}
}

func TestLoadSolverConfigMissingFileKeepsDefaults(t *testing.T) {
	cfg, err := LoadSolverConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if cfg.TimeLimit != DefaultSolverConfig().TimeLimit {
		t.Fatalf("time limit = %v, want default", cfg.TimeLimit)
	}
}

func TestLoadSolverConfigRejectsBadInput(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"broken yaml", "time_limit: [broken"},
		{"bad duration", "time_limit: soonish"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "solver.yaml")
			if err := os.WriteFile(path, []byte(tc.body), 0o644); err != nil {
				t.Fatalf("write config: %v", err)
			}
			if _, err := LoadSolverConfig(path); err == nil {
				t.Fatal("expected parse error")
			}
		})
	}
}
