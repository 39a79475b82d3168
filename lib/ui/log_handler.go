// Copyright 2026 The Tableside Authors
// SPDX-License-Identifier: Apache-2.0

package ui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
)

// logRecordMsg delivers one slog record into the event loop for the
// status bar.
type logRecordMsg struct {
	level   slog.Level
	message string
}

// LogHandler is a slog.Handler that forwards records into a running
// bubbletea program. While the terminal is in the alternate screen,
// writing log lines to stderr would shred the display; routing them
// through the event loop puts them in the status bar instead.
//
// The handler is created before the program exists; records arriving
// before SetProgram are dropped.
type LogHandler struct {
	mu      sync.Mutex
	program *tea.Program
	level   slog.Level
	attrs   []slog.Attr
}

// NewLogHandler creates a handler dropping records below level.
func NewLogHandler(level slog.Level) *LogHandler {
	return &LogHandler{level: level}
}

// SetProgram connects the handler to the running program.
func (h *LogHandler) SetProgram(program *tea.Program) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.program = program
}

func (h *LogHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *LogHandler) Handle(_ context.Context, record slog.Record) error {
	h.mu.Lock()
	program := h.program
	attrs := h.attrs
	h.mu.Unlock()
	if program == nil {
		return nil
	}

	var b strings.Builder
	b.WriteString(record.Message)
	for _, attr := range attrs {
		fmt.Fprintf(&b, " %s=%v", attr.Key, attr.Value)
	}
	record.Attrs(func(attr slog.Attr) bool {
		fmt.Fprintf(&b, " %s=%v", attr.Key, attr.Value)
		return true
	})

	program.Send(logRecordMsg{level: record.Level, message: b.String()})
	return nil
}

func (h *LogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	h.mu.Lock()
	defer h.mu.Unlock()
	return &LogHandler{
		program: h.program,
		level:   h.level,
		attrs:   append(append([]slog.Attr{}, h.attrs...), attrs...),
	}
}

func (h *LogHandler) WithGroup(string) slog.Handler {
	// Groups are flattened; status bar lines are short-lived.
	return h
}
