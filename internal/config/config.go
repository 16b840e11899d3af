package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Get returns the environment value for key, or fallback when unset.
func Get(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// SolverConfig tunes the solving capability.
// Values are read from an optional YAML file; missing fields keep their
// defaults.
type SolverConfig struct {
	// TimeLimit caps the wall-clock spent per solve. Zero means no limit.
	TimeLimit time.Duration
	// RemoteURL switches solving to an external MILP service when set.
	RemoteURL string
	// RemoteAPIKey authorizes calls to the remote service.
	RemoteAPIKey string
}

// DefaultSolverConfig returns the tuning used when no file is given.
func DefaultSolverConfig() SolverConfig {
	return SolverConfig{TimeLimit: 60 * time.Second}
}

// LoadSolverConfig reads the YAML tuning file at path.
// The time limit is written in time.ParseDuration notation ("90s", "2m").
func LoadSolverConfig(path string) (SolverConfig, error) {
	cfg := DefaultSolverConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("load solver config: read %q: %w", path, err)
	}

	var raw struct {
		TimeLimit    string `yaml:"time_limit"`
		RemoteURL    string `yaml:"remote_url"`
		RemoteAPIKey string `yaml:"remote_api_key"`
	}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return cfg, fmt.Errorf("load solver config: parse %q: %w", path, err)
	}

	if raw.TimeLimit != "" {
		d, err := time.ParseDuration(raw.TimeLimit)
		if err != nil {
			return cfg, fmt.Errorf("load solver config: time_limit: %w", err)
		}
		cfg.TimeLimit = d
	}
	if raw.RemoteURL != "" {
		cfg.RemoteURL = raw.RemoteURL
	}
	if raw.RemoteAPIKey != "" {
		cfg.RemoteAPIKey = raw.RemoteAPIKey
	}

	return cfg, nil
}
