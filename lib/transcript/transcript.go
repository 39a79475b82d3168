// Copyright 2026 The Tableside Authors
// SPDX-License-Identifier: Apache-2.0

// Package transcript merges locally-authored chat messages with
// remotely-confirmed ones and tracks the autoscroll gate.
//
// A sent message is shown immediately (optimistic) and carries a
// client-generated correlation identifier. When a full history
// refetch echoes that identifier back, the optimistic copy is dropped
// in favor of the server's; unacknowledged optimistic messages stay
// visible after history. Reconciliation is by identifier, never by
// content or timestamp equality, so a re-fetch can never duplicate a
// message the diner already sees.
//
// The scroll gate mirrors the transcript container: within the
// threshold of the bottom counts as "at the bottom" and new content
// may autoscroll; above it, the diner is reading backlog and all
// automatic scrolling is suppressed until they return.
package transcript

import (
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/tableside/tableside/lib/api"
	"github.com/tableside/tableside/lib/clock"
)

// Message is one rendered transcript entry.
type Message struct {
	api.ChatMessage

	// Optimistic is true while the entry is shown on local authority
	// only, before the server has echoed it back.
	Optimistic bool
}

// Transcript is the merged message view plus scroll state. Safe for
// concurrent use: the UI reads it from its event loop while network
// commands append replies.
type Transcript struct {
	mu        sync.Mutex
	clock     clock.Clock
	threshold int

	history    []api.ChatMessage
	optimistic []api.ChatMessage

	distanceFromBottom int
	userScrolling      bool
}

// New creates an empty transcript. threshold is how close to the
// bottom, in rows, still counts as "at the bottom".
func New(clk clock.Clock, threshold int) *Transcript {
	return &Transcript{
		clock:     clk,
		threshold: threshold,
	}
}

// ReplaceFromServer swaps in a freshly fetched history and reconciles
// optimistic entries: any whose correlation identifier appears in the
// fetched history has been acknowledged and is dropped, the rest stay
// appended after history. History is ordered by timestamp; the
// service returns it ordered already, so the sort is a stable
// guarantee rather than a repair.
func (t *Transcript) ReplaceFromServer(messages []api.ChatMessage) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.history = make([]api.ChatMessage, len(messages))
	copy(t.history, messages)
	sort.SliceStable(t.history, func(i, j int) bool {
		return t.history[i].Timestamp.Before(t.history[j].Timestamp)
	})

	acknowledged := make(map[string]bool, len(messages))
	for _, message := range messages {
		if message.ClientID != "" {
			acknowledged[message.ClientID] = true
		}
	}

	remaining := t.optimistic[:0]
	for _, message := range t.optimistic {
		if !acknowledged[message.ClientID] {
			remaining = append(remaining, message)
		}
	}
	t.optimistic = remaining
}

// AppendLocal appends an optimistic message authored by the diner.
// Blank input is rejected with a validation error and nothing is
// appended. The returned message carries the correlation identifier
// to send along with the network submission.
func (t *Transcript) AppendLocal(sender, content string) (api.ChatMessage, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return api.ChatMessage{}, api.Validation("message is empty")
	}

	message := api.ChatMessage{
		Sender:    sender,
		Content:   content,
		Timestamp: t.clock.Now(),
		ClientID:  uuid.NewString(),
	}

	t.mu.Lock()
	t.optimistic = append(t.optimistic, message)
	t.mu.Unlock()
	return message, nil
}

// AppendAgent appends an agent-authored reply. Replies come straight
// from the ai-chat response, so they are confirmed, not optimistic.
// The timestamp is clamped to the last history entry's: history
// carries server timestamps, and a skewed local clock must not break
// the rendered ordering.
func (t *Transcript) AppendAgent(content string) {
	message := api.ChatMessage{
		Sender:    api.AgentSender,
		Content:   content,
		Timestamp: t.clock.Now(),
	}

	t.mu.Lock()
	if n := len(t.history); n > 0 && message.Timestamp.Before(t.history[n-1].Timestamp) {
		message.Timestamp = t.history[n-1].Timestamp
	}
	t.history = append(t.history, message)
	t.mu.Unlock()
}

// Messages returns the rendered sequence: confirmed history in
// timestamp order, then unacknowledged optimistic entries in send
// order. The result is a copy.
func (t *Transcript) Messages() []Message {
	t.mu.Lock()
	defer t.mu.Unlock()

	messages := make([]Message, 0, len(t.history)+len(t.optimistic))
	for _, message := range t.history {
		messages = append(messages, Message{ChatMessage: message})
	}
	for _, message := range t.optimistic {
		messages = append(messages, Message{ChatMessage: message, Optimistic: true})
	}
	return messages
}

// Len returns the number of rendered entries.
func (t *Transcript) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.history) + len(t.optimistic)
}

// SetDistanceFromBottom records the transcript viewport's current
// distance from true bottom, sampled on every scroll. Crossing above
// the threshold marks the diner as scrolling; returning within it
// re-enables autoscroll for the next arrival.
func (t *Transcript) SetDistanceFromBottom(rows int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.distanceFromBottom = rows
	t.userScrolling = rows > t.threshold
}

// UserScrolling reports whether the diner has scrolled away from the
// bottom. While true, all automatic scrolling — for new messages and
// new questions alike — is suppressed.
func (t *Transcript) UserScrolling() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.userScrolling
}

// ShouldAutoscroll reports whether new content may scroll the view to
// the bottom.
func (t *Transcript) ShouldAutoscroll() bool {
	return !t.UserScrolling()
}
