// Copyright 2026 The Tableside Authors
// SPDX-License-Identifier: Apache-2.0

package ui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines all key bindings for the dashboard.
type KeyMap struct {
	// Navigation within the focused pane.
	Up   key.Binding
	Down key.Binding

	// Focus cycling between the menu, tables, and cart panes.
	NextPane key.Binding

	// Menu pane.
	AddToCart key.Binding

	// Tables pane.
	SelectTable key.Binding
	HourOne     key.Binding
	HourTwo     key.Binding
	HourThree   key.Binding
	BookTable   key.Binding

	// Cart pane.
	IncrementLine key.Binding
	DecrementLine key.Binding
	RemoveLine    key.Binding
	EditContact   key.Binding
	PlaceOrder    key.Binding

	// Chat sidebar.
	ToggleChat key.Binding
	SendChat   key.Binding
	Approve    key.Binding
	Reject     key.Binding

	// Leave an input field / close the sidebar.
	Escape key.Binding

	Quit key.Binding
}

// DefaultKeyMap is the built-in key binding set. Vim-style navigation
// alongside standard arrow keys; approval decisions use control
// chords so they never collide with typing in the chat input.
var DefaultKeyMap = KeyMap{
	Up: key.NewBinding(
		key.WithKeys("k", "up"),
		key.WithHelp("k/↑", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("j", "down"),
		key.WithHelp("j/↓", "down"),
	),
	NextPane: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "next pane"),
	),
	AddToCart: key.NewBinding(
		key.WithKeys("enter", "a"),
		key.WithHelp("enter", "add to cart"),
	),
	SelectTable: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "select table"),
	),
	HourOne: key.NewBinding(
		key.WithKeys("1"),
		key.WithHelp("1", "1 hour"),
	),
	HourTwo: key.NewBinding(
		key.WithKeys("2"),
		key.WithHelp("2", "2 hours"),
	),
	HourThree: key.NewBinding(
		key.WithKeys("3"),
		key.WithHelp("3", "3 hours"),
	),
	BookTable: key.NewBinding(
		key.WithKeys("b"),
		key.WithHelp("b", "book table"),
	),
	IncrementLine: key.NewBinding(
		key.WithKeys("+", "="),
		key.WithHelp("+", "more"),
	),
	DecrementLine: key.NewBinding(
		key.WithKeys("-"),
		key.WithHelp("-", "fewer"),
	),
	RemoveLine: key.NewBinding(
		key.WithKeys("x", "delete"),
		key.WithHelp("x", "remove"),
	),
	EditContact: key.NewBinding(
		key.WithKeys("n"),
		key.WithHelp("n", "phone number"),
	),
	PlaceOrder: key.NewBinding(
		key.WithKeys("p"),
		key.WithHelp("p", "place order"),
	),
	ToggleChat: key.NewBinding(
		key.WithKeys("c"),
		key.WithHelp("c", "chat"),
	),
	SendChat: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "send"),
	),
	Approve: key.NewBinding(
		key.WithKeys("ctrl+y"),
		key.WithHelp("C-y", "approve order"),
	),
	Reject: key.NewBinding(
		key.WithKeys("ctrl+n"),
		key.WithHelp("C-n", "reject order"),
	),
	Escape: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "back"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}
