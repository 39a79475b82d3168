// Copyright 2026 The Tableside Authors
// SPDX-License-Identifier: Apache-2.0

package ui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/tableside/tableside/lib/api"
	"github.com/tableside/tableside/lib/approval"
)

// Service is the slice of the remote client the dashboard calls
// directly. Cart submission and table booking go through their own
// state types, which hold their own client slices.
type Service interface {
	Menu(ctx context.Context) ([]api.MenuItem, error)
	Tables(ctx context.Context) ([]api.Table, error)
	Orders(ctx context.Context) ([]api.Order, error)
	Messages(ctx context.Context, userID string) ([]api.ChatMessage, error)
	SendChat(ctx context.Context, message, name, clientID string) (string, error)
}

// dataLoadedMsg carries the initial dashboard fetch. A partial failure
// is not fatal: whatever loaded is shown, the error lands in the
// status bar.
type dataLoadedMsg struct {
	menu   []api.MenuItem
	tables []api.Table
	orders []api.Order
	err    error
}

type orderPlacedMsg struct {
	order *api.Order
	err   error
}

type bookResultMsg struct{ err error }

type chatHistoryMsg struct {
	messages []api.ChatMessage
	err      error
}

type chatReplyMsg struct {
	reply string
	err   error
}

// approvalEventMsg wraps one poller event. source identifies which
// poller delivered it, so an event from a torn-down sidebar cannot
// leak into a reopened one; closed marks the channel as drained,
// ending the listen loop.
type approvalEventMsg struct {
	event  approval.Event
	source <-chan approval.Event
	closed bool
}

type answerResultMsg struct{ err error }

// autoscrollMsg fires after the deferred-scroll delay. The scroll gate
// is re-checked on arrival; stale ticks scheduled before the diner
// scrolled away do nothing.
type autoscrollMsg struct{}

// noticeExpiredMsg clears the status bar notice if no newer notice has
// replaced it (sequence numbers disambiguate).
type noticeExpiredMsg struct{ seq int }

func (m *Model) loadDataCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		var loaded dataLoadedMsg
		loaded.menu, loaded.err = m.service.Menu(ctx)

		tables, err := m.service.Tables(ctx)
		if err == nil {
			loaded.tables = tables
		} else if loaded.err == nil {
			loaded.err = err
		}

		orders, err := m.service.Orders(ctx)
		if err == nil {
			loaded.orders = orders
		} else if loaded.err == nil {
			loaded.err = err
		}
		return loaded
	}
}

func (m *Model) placeOrderCmd(contactNumber string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		order, err := m.cart.Place(ctx, contactNumber)
		return orderPlacedMsg{order: order, err: err}
	}
}

func (m *Model) bookTableCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		return bookResultMsg{err: m.tables.Book(ctx)}
	}
}

func (m *Model) loadHistoryCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		messages, err := m.service.Messages(ctx, m.session.UserID)
		return chatHistoryMsg{messages: messages, err: err}
	}
}

func (m *Model) sendChatCmd(message api.ChatMessage) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		reply, err := m.service.SendChat(ctx, message.Content, message.Sender, message.ClientID)
		return chatReplyMsg{reply: reply, err: err}
	}
}

// listenApprovalCmd blocks on the poller's event channel. Reissued
// after every delivery so the channel drains for as long as the
// sidebar is open.
func listenApprovalCmd(events <-chan approval.Event) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-events
		if !ok {
			return approvalEventMsg{source: events, closed: true}
		}
		return approvalEventMsg{event: event, source: events}
	}
}

func (m *Model) answerCmd(accepted bool) tea.Cmd {
	poller := m.poller
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		return answerResultMsg{err: poller.Answer(ctx, accepted)}
	}
}

func autoscrollCmd(delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(time.Time) tea.Msg {
		return autoscrollMsg{}
	})
}

func noticeExpiryCmd(seq int) tea.Cmd {
	return tea.Tick(noticeLifetime, func(time.Time) tea.Msg {
		return noticeExpiredMsg{seq: seq}
	})
}
