// Copyright 2026 The Tableside Authors
// SPDX-License-Identifier: Apache-2.0

// Package approval polls the restaurant service for the single
// outstanding agent-proposed order and exposes it until answered.
//
// The house agent can assemble an order on the diner's behalf; before
// anything is committed, the service parks it as a pending question
// that the diner must confirm or reject. This package owns that
// synchronization loop: a fixed-cadence poll (not push — the service
// contract is deliberately poll-based), a singleton current question
// that is replaced or cleared but never queued, and an event channel
// that tells the UI when the state changed.
//
// Consumers see events and the Current accessor, not the polling
// mechanism, so the poll could be swapped for a push subscription
// without touching them.
package approval

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/tableside/tableside/lib/api"
	"github.com/tableside/tableside/lib/clock"
)

// QuestionService is the slice of the service client the poller needs.
type QuestionService interface {
	// Authenticated reports whether a credential is available. Ticks
	// without one are silent no-ops: no request, no error.
	Authenticated() bool

	// PendingQuestion returns the outstanding question, or nil when
	// the service reports none.
	PendingQuestion(ctx context.Context) (*api.PendingQuestion, error)

	// AnswerQuestion sends the diner's yes/no decision.
	AnswerQuestion(ctx context.Context, accepted bool) error
}

// EventKind describes how the current question changed on a tick.
type EventKind int

const (
	// QuestionAppeared means a question arrived where none was shown.
	QuestionAppeared EventKind = iota
	// QuestionReplaced means a different question displaced the shown one.
	QuestionReplaced
	// QuestionCleared means the service reports no outstanding
	// question: answered, expired, or withdrawn.
	QuestionCleared
)

// Event is one change to the current question, delivered on the
// poller's channel for live UIs.
type Event struct {
	Kind EventKind

	// Question is the new current question. Nil for QuestionCleared.
	Question *api.PendingQuestion
}

// Poller runs the fixed-interval approval poll. Create with NewPoller,
// start with Run in a goroutine, and stop by cancelling the context —
// the ticker is released on exit, so an unmounted chat view leaves no
// timer firing against a possibly stale credential.
type Poller struct {
	service  QuestionService
	clock    clock.Clock
	interval time.Duration
	logger   *slog.Logger

	mu      sync.Mutex
	current *api.PendingQuestion

	events chan Event
	done   chan struct{}
}

// NewPoller creates a poller with the given cadence. The clock is
// injected so tests drive ticks deterministically.
func NewPoller(service QuestionService, clk clock.Clock, interval time.Duration, logger *slog.Logger) *Poller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Poller{
		service:  service,
		clock:    clk,
		interval: interval,
		logger:   logger,
		events:   make(chan Event, 16),
		done:     make(chan struct{}),
	}
}

// Events returns the channel carrying question-state changes. Events
// are dropped rather than queued when the consumer falls behind; the
// Current accessor always has the latest state. The channel is closed
// when Run exits, so a blocked listener always wakes up.
func (p *Poller) Events() <-chan Event { return p.events }

// Done is closed when Run has exited and the ticker is released.
func (p *Poller) Done() <-chan struct{} { return p.done }

// Current returns the question on display, or nil. At most one
// question exists at any instant.
func (p *Poller) Current() *api.PendingQuestion {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

// Run polls until the context is cancelled. Blocking; call in a
// goroutine. No failure on a cycle is fatal — the poller keeps
// ticking through network errors and malformed payloads alike.
func (p *Poller) Run(ctx context.Context) {
	// Closing events wakes any listener still blocked on the channel;
	// emit only ever runs on this goroutine, so the close is safe.
	defer close(p.done)
	defer close(p.events)

	ticker := p.clock.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.tick(ctx)
		}
	}
}

// tick performs one polling cycle.
func (p *Poller) tick(ctx context.Context) {
	if !p.service.Authenticated() {
		return
	}

	question, err := p.service.PendingQuestion(ctx)
	if err != nil {
		// Keep the displayed question; a transient fetch failure says
		// nothing about whether it was answered.
		p.logger.Warn("pending question poll failed", "error", err)
		return
	}

	p.mu.Lock()
	previous := p.current
	p.current = question
	p.mu.Unlock()

	switch {
	case question != nil && previous == nil:
		p.emit(Event{Kind: QuestionAppeared, Question: question})
	case question != nil && !questionsEqual(question, previous):
		p.emit(Event{Kind: QuestionReplaced, Question: question})
	case question == nil && previous != nil:
		p.emit(Event{Kind: QuestionCleared})
	}
}

// emit delivers an event without blocking. The channel is buffered;
// if the consumer has fallen this far behind, it will catch up from
// Current on its next read.
func (p *Poller) emit(event Event) {
	select {
	case p.events <- event:
	default:
	}
}

// Answer sends the diner's decision for the question on display. The
// current question is deliberately not cleared here: the next tick is
// the sole source of truth, and the one-interval window during which
// an already-answered question stays visible is accepted behavior,
// not a race to eliminate.
func (p *Poller) Answer(ctx context.Context, accepted bool) error {
	if err := p.service.AnswerQuestion(ctx, accepted); err != nil {
		p.logger.Warn("answer submission failed", "accepted", accepted, "error", err)
		return err
	}
	p.logger.Info("question answered", "accepted", accepted)
	return nil
}

// questionsEqual compares two questions field by field. Used to
// distinguish "same question re-reported" (no event) from "a
// different proposal displaced the shown one" (replace event).
func questionsEqual(a, b *api.PendingQuestion) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Total != b.Total || a.ContactNumber != b.ContactNumber || len(a.Items) != len(b.Items) {
		return false
	}
	for index := range a.Items {
		if a.Items[index] != b.Items[index] {
			return false
		}
	}
	return true
}
