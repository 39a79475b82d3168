// Copyright 2026 The Tableside Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides configuration loading for the Tableside
// client.
//
// Configuration is loaded from a single YAML file specified by:
//   - TABLESIDE_CONFIG environment variable, or
//   - --config flag passed to the command
//
// There are no fallbacks or automatic discovery. When neither is set,
// the built-in defaults apply. This keeps configuration deterministic
// and auditable with no hidden overrides.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the master configuration for the Tableside client.
type Config struct {
	// ServiceURL is the base URL of the restaurant service
	// (e.g., "http://localhost:5000"). The session file's service URL,
	// when present, takes precedence so a login is always paired with
	// the server it was issued by.
	ServiceURL string `yaml:"service_url"`

	// Chat configures the chat sidebar and the approval poller.
	Chat ChatConfig `yaml:"chat"`
}

// ChatConfig holds the chat sidebar and approval polling settings.
type ChatConfig struct {
	// PollInterval is the cadence of the pending-question poll.
	PollInterval time.Duration `yaml:"poll_interval"`

	// ScrollThreshold is how close to the bottom of the transcript,
	// in rows, still counts as "at the bottom" for autoscroll
	// purposes. Scrolling further up than this suppresses automatic
	// scrolling until the user returns within the threshold.
	ScrollThreshold int `yaml:"scroll_threshold"`

	// AutoscrollDelay is how long to wait after new content arrives
	// before scrolling to the bottom, giving layout a chance to
	// settle.
	AutoscrollDelay time.Duration `yaml:"autoscroll_delay"`
}

// Default returns the built-in configuration: a local service and the
// polling parameters the remote contract was designed around.
func Default() *Config {
	return &Config{
		ServiceURL: "http://localhost:5000",
		Chat: ChatConfig{
			PollInterval:    2 * time.Second,
			ScrollThreshold: 50,
			AutoscrollDelay: 50 * time.Millisecond,
		},
	}
}

// Path resolves the config file path from the TABLESIDE_CONFIG
// environment variable, falling back to the given flag value. Returns
// empty when neither is set (meaning: use defaults).
func Path(flagValue string) string {
	if envPath := os.Getenv("TABLESIDE_CONFIG"); envPath != "" {
		return envPath
	}
	return flagValue
}

// Load reads the config file at path, applying defaults for any field
// the file leaves unset. An empty path returns the defaults directly.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks that the configuration is internally consistent.
func (c *Config) Validate() error {
	if c.ServiceURL == "" {
		return fmt.Errorf("service_url must not be empty")
	}
	if c.Chat.PollInterval <= 0 {
		return fmt.Errorf("chat.poll_interval must be positive, got %v", c.Chat.PollInterval)
	}
	if c.Chat.ScrollThreshold < 0 {
		return fmt.Errorf("chat.scroll_threshold must not be negative, got %d", c.Chat.ScrollThreshold)
	}
	if c.Chat.AutoscrollDelay < 0 {
		return fmt.Errorf("chat.autoscroll_delay must not be negative, got %v", c.Chat.AutoscrollDelay)
	}
	return nil
}
