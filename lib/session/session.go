// Copyright 2026 The Tableside Authors
// SPDX-License-Identifier: Apache-2.0

// Package session holds the diner's authentication state as an
// explicit value threaded into each component at construction. Nothing
// in the client reads credentials from ambient process state; the
// session is loaded once at startup and passed down.
package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Session holds the diner's identity and bearer token for the
// restaurant service. Stored at the well-known path returned by
// FilePath and loaded by commands that require authentication.
// Analogous to SSH keys: set up once via "tableside login" against the
// service, then transparent.
type Session struct {
	// UserID is the diner's identifier assigned by the service.
	UserID string `json:"user_id"`

	// Username is the diner's display name, used as the sender of
	// chat messages.
	Username string `json:"username"`

	// AccessToken is the bearer token proving the diner's identity on
	// authenticated endpoints.
	AccessToken string `json:"access_token"`

	// ServiceURL is the base URL of the restaurant service the token
	// was issued by. Included so the client always talks to the server
	// that minted the session.
	ServiceURL string `json:"service_url"`
}

// FilePath returns the path to the session file. Checks the
// TABLESIDE_SESSION_FILE environment variable first, then falls back
// to ~/.config/tableside/session.json.
func FilePath() string {
	if envPath := os.Getenv("TABLESIDE_SESSION_FILE"); envPath != "" {
		return envPath
	}

	configDirectory := os.Getenv("XDG_CONFIG_HOME")
	if configDirectory == "" {
		homeDirectory, err := os.UserHomeDir()
		if err != nil {
			// Fallback — this should rarely happen.
			return filepath.Join("/tmp", "tableside-session.json")
		}
		configDirectory = filepath.Join(homeDirectory, ".config")
	}
	return filepath.Join(configDirectory, "tableside", "session.json")
}

// Load reads the session from the well-known path.
func Load() (*Session, error) {
	return LoadFrom(FilePath())
}

// LoadFrom reads a session from a specific file path. Returns a clear
// error directing the user to log in when no session exists.
func LoadFrom(path string) (*Session, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("no Tableside session found at %s — log in against the service first", path)
		}
		return nil, fmt.Errorf("reading session file %s: %w", path, err)
	}

	var session Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("parsing session file %s: %w", path, err)
	}

	if session.UserID == "" {
		return nil, fmt.Errorf("session file %s has no user_id", path)
	}
	if session.Username == "" {
		return nil, fmt.Errorf("session file %s has no username", path)
	}
	if session.AccessToken == "" {
		return nil, fmt.Errorf("session file %s has no access_token", path)
	}

	return &session, nil
}

// Save writes a session to the well-known path.
func Save(session *Session) error {
	return SaveTo(session, FilePath())
}

// SaveTo writes a session to a specific file path. Creates the parent
// directory with mode 0700 if it doesn't exist. The session file is
// written with mode 0600 (owner-only read/write) since it contains an
// access token.
func SaveTo(session *Session, path string) error {
	data, err := json.MarshalIndent(session, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling session: %w", err)
	}
	data = append(data, '\n')

	directory := filepath.Dir(path)
	if err := os.MkdirAll(directory, 0700); err != nil {
		return fmt.Errorf("creating session directory %s: %w", directory, err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing session file %s: %w", path, err)
	}
	return nil
}
