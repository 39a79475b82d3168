// Copyright 2026 The Tableside Authors
// SPDX-License-Identifier: Apache-2.0

// Package reservation tracks table availability and applies a booking
// intent against a selected table and duration.
//
// The view is a last-polled snapshot: only the service mutates
// availability, and the client never flips a table's flag locally. A
// successful booking resets the transient intent and refreshes the
// snapshot, because the service may have awarded the table to another
// diner in the same instant.
package reservation

import (
	"context"
	"log/slog"
	"sync"

	"github.com/tableside/tableside/lib/api"
)

// TableBooker is the slice of the service client the view needs.
type TableBooker interface {
	Tables(ctx context.Context) ([]api.Table, error)
	BookTable(ctx context.Context, tableID string, hours int) error
}

// View holds the table snapshot and the diner's transient booking
// intent (selected table plus duration). The intent exists only
// between selection and submission.
type View struct {
	mu     sync.Mutex
	booker TableBooker
	logger *slog.Logger

	tables   []api.Table
	selected *api.Table
	hours    int
}

// New creates an empty view booking through the given client.
func New(booker TableBooker, logger *slog.Logger) *View {
	if logger == nil {
		logger = slog.Default()
	}
	return &View{
		booker: booker,
		logger: logger,
	}
}

// Replace swaps in a fresh table snapshot from the service.
func (v *View) Replace(tables []api.Table) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.tables = make([]api.Table, len(tables))
	copy(v.tables, tables)
}

// Tables returns a copy of the current snapshot.
func (v *View) Tables() []api.Table {
	v.mu.Lock()
	defer v.mu.Unlock()
	tables := make([]api.Table, len(v.tables))
	copy(tables, v.tables)
	return tables
}

// Select sets the booking intent's table. Selecting an unavailable
// table is rejected silently: no state change, matching the dashboard
// where occupied tables simply don't respond to clicks.
func (v *View) Select(table api.Table) {
	if !table.Available {
		return
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	selected := table
	v.selected = &selected
}

// Selected returns the currently selected table, if any.
func (v *View) Selected() (api.Table, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.selected == nil {
		return api.Table{}, false
	}
	return *v.selected, true
}

// SetHours sets the booking duration. Only 1, 2, and 3 hours are
// offered; anything else is ignored.
func (v *View) SetHours(hours int) {
	if hours < 1 || hours > 3 {
		return
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	v.hours = hours
}

// Hours returns the chosen duration, or zero when none is set.
func (v *View) Hours() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.hours
}

// Book submits the booking intent. Without both a selected table and
// a duration it fails with a validation error and sends nothing. On
// success the intent is reset and the snapshot refreshed from the
// service — the availability flag is never flipped locally, because
// the service resolves conflicts and the next fetch is the only
// truth. On failure the server's message is surfaced verbatim and the
// intent is kept so the diner can retry or pick another table.
func (v *View) Book(ctx context.Context) error {
	v.mu.Lock()
	selected := v.selected
	hours := v.hours
	v.mu.Unlock()

	if selected == nil || hours == 0 {
		return api.Validation("select a table and a booking duration first")
	}

	if err := v.booker.BookTable(ctx, selected.ID, hours); err != nil {
		v.logger.Warn("booking failed", "table", selected.Number, "error", err)
		return err
	}

	v.mu.Lock()
	v.selected = nil
	v.hours = 0
	v.mu.Unlock()

	v.logger.Info("table booked", "table", selected.Number, "hours", hours)

	// Refresh the snapshot; a failed refresh keeps the stale view and
	// is corrected by the next successful fetch.
	tables, err := v.booker.Tables(ctx)
	if err != nil {
		v.logger.Warn("table refresh after booking failed", "error", err)
		return nil
	}
	v.Replace(tables)
	return nil
}
