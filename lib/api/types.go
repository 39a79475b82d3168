// Copyright 2026 The Tableside Authors
// SPDX-License-Identifier: Apache-2.0

package api

import "time"

// MenuItem is a dish offered by the restaurant. Immutable from the
// client's perspective; sourced from the service and replaced
// wholesale on every fetch.
type MenuItem struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Description string  `json:"description,omitempty"`
	Image       string  `json:"image,omitempty"`
}

// Table is a reservable table. Mutated only by server-side booking;
// the client reflects the last-polled snapshot and never flips
// Available locally.
type Table struct {
	ID        string `json:"id"`
	Number    int    `json:"number"`
	Seats     int    `json:"seats"`
	Available bool   `json:"is_available"`

	// OwnerID is the user currently holding the table, when occupied.
	OwnerID string `json:"user_id,omitempty"`
}

// CartLine is one menu item with a quantity, both inside the local
// cart and inside a submitted order. Quantity is always positive; a
// line whose quantity would reach zero is removed instead.
type CartLine struct {
	MenuItemID string  `json:"menu_item_id"`
	Name       string  `json:"name"`
	Price      float64 `json:"price"`
	Quantity   int     `json:"quantity"`
}

// Subtotal returns the line's contribution to the order total.
func (line CartLine) Subtotal() float64 {
	return line.Price * float64(line.Quantity)
}

// OrderStatus is the server-defined lifecycle state of an order.
type OrderStatus string

// StatusPending is the status every newly submitted order carries.
// Further states are defined by the service and observed by re-fetch.
const StatusPending OrderStatus = "pending"

// Order is a submitted order. Immutable once created except for
// status transitions applied by the server.
type Order struct {
	ID            string      `json:"id"`
	Items         []CartLine  `json:"items"`
	Total         float64     `json:"total"`
	Status        OrderStatus `json:"status"`
	ContactNumber string      `json:"contact_number"`
	CreatedAt     time.Time   `json:"created_at"`
}

// AgentSender is the sender identity the service uses for
// agent-authored chat messages.
const AgentSender = "AI"

// ChatMessage is one entry in the chat transcript.
type ChatMessage struct {
	Sender    string    `json:"sender"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`

	// ClientID is the client-generated correlation identifier for
	// messages authored in this client. The service echoes it back in
	// history responses so optimistic entries can be reconciled by
	// identity rather than by content equality. Empty for messages
	// authored elsewhere.
	ClientID string `json:"client_id,omitempty"`
}

// QuestionLine is one proposed order line inside a pending agent
// question.
type QuestionLine struct {
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

// PendingQuestion is a single outstanding agent-proposed order
// awaiting the diner's yes/no confirmation. The client holds zero or
// one of these at any time — never a queue.
type PendingQuestion struct {
	Items         []QuestionLine `json:"items"`
	Total         float64        `json:"total"`
	ContactNumber string         `json:"usernumber"`
}

// bookTableRequest is the wire body for BookTable.
type bookTableRequest struct {
	TableID string `json:"tableId"`
	Hours   int    `json:"hours"`
}

// submitOrderRequest is the wire body for SubmitOrder.
type submitOrderRequest struct {
	Items         []CartLine  `json:"items"`
	Total         float64     `json:"total"`
	Status        OrderStatus `json:"status"`
	ContactNumber string      `json:"contact_number"`
}

// messagesResponse is the wire envelope for Messages.
type messagesResponse struct {
	Success  bool          `json:"success"`
	Messages []ChatMessage `json:"messages"`
}

// chatRequest is the wire body for SendChat.
type chatRequest struct {
	Message  string `json:"message"`
	Name     string `json:"name"`
	ClientID string `json:"client_id,omitempty"`
}

// chatResponse is the wire envelope for SendChat.
type chatResponse struct {
	Reply string `json:"reply"`
}

// answerRequest is the wire body for AnswerQuestion.
type answerRequest struct {
	Answer bool `json:"answer"`
}
