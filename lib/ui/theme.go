// Copyright 2026 The Tableside Authors
// SPDX-License-Identifier: Apache-2.0

package ui

import "github.com/charmbracelet/lipgloss"

// Theme defines the color palette for the dashboard. All colors use
// lipgloss ANSI 256-color codes for broad terminal compatibility.
type Theme struct {
	// Text colors.
	NormalText lipgloss.Color
	FaintText  lipgloss.Color

	// Selected row.
	SelectedBackground lipgloss.Color
	SelectedForeground lipgloss.Color

	// Table availability.
	TableAvailable lipgloss.Color
	TableOccupied  lipgloss.Color
	TableOwned     lipgloss.Color

	// Order status.
	StatusPending   lipgloss.Color
	StatusOther     lipgloss.Color

	// Chat senders.
	OwnMessage   lipgloss.Color
	AgentMessage lipgloss.Color

	// Approval card accent: the pending question must not blend into
	// the transcript.
	ApprovalAccent lipgloss.Color

	// UI chrome.
	HeaderForeground lipgloss.Color
	BorderColor      lipgloss.Color
	HelpText         lipgloss.Color

	// Status bar notices.
	NoticeWarn  lipgloss.Color
	NoticeError lipgloss.Color
}

// StatusColor returns the color for an order status string.
func (theme Theme) StatusColor(status string) lipgloss.Color {
	if status == "pending" {
		return theme.StatusPending
	}
	return theme.StatusOther
}

// DefaultTheme is the built-in dark-terminal color scheme.
var DefaultTheme = Theme{
	NormalText: lipgloss.Color("252"),
	FaintText:  lipgloss.Color("245"),

	SelectedBackground: lipgloss.Color("236"),
	SelectedForeground: lipgloss.Color("255"),

	TableAvailable: lipgloss.Color("114"), // green
	TableOccupied:  lipgloss.Color("196"), // red
	TableOwned:     lipgloss.Color("220"), // amber

	StatusPending: lipgloss.Color("220"), // amber
	StatusOther:   lipgloss.Color("245"), // gray

	OwnMessage:   lipgloss.Color("75"),  // blue
	AgentMessage: lipgloss.Color("141"), // light purple

	ApprovalAccent: lipgloss.Color("208"), // orange

	HeaderForeground: lipgloss.Color("255"),
	BorderColor:      lipgloss.Color("240"),
	HelpText:         lipgloss.Color("241"),

	NoticeWarn:  lipgloss.Color("220"),
	NoticeError: lipgloss.Color("196"),
}
