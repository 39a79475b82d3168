// Copyright 2026 The Tableside Authors
// SPDX-License-Identifier: Apache-2.0

// Package cart owns the local shopping cart, converts it into a
// submitted order, and folds server-confirmed orders into a
// recent-orders view.
//
// The cart is an ordered sequence of lines keyed by menu item: at most
// one line per item, every quantity positive. A quantity driven to
// zero removes the line. The total sent to the service and the total
// rendered for history come from the same Total formula, so the two
// can never diverge.
package cart

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/tableside/tableside/lib/api"
)

// OrderSubmitter is the slice of the service client the cart needs.
type OrderSubmitter interface {
	SubmitOrder(ctx context.Context, items []api.CartLine, total float64, contactNumber string) (*api.Order, error)
}

// Cart is the local cart plus the recent-orders view. Safe for
// concurrent use: the UI mutates it from its event loop while Place
// runs in a command goroutine.
type Cart struct {
	mu        sync.Mutex
	submitter OrderSubmitter
	logger    *slog.Logger

	lines  []api.CartLine
	orders []api.Order
}

// New creates an empty cart submitting through the given client.
func New(submitter OrderSubmitter, logger *slog.Logger) *Cart {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cart{
		submitter: submitter,
		logger:    logger,
	}
}

// Add puts one unit of the item in the cart: a new line with quantity
// 1, or an increment of the existing line. Always succeeds.
func (c *Cart) Add(item api.MenuItem) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for index := range c.lines {
		if c.lines[index].MenuItemID == item.ID {
			c.lines[index].Quantity++
			return
		}
	}
	c.lines = append(c.lines, api.CartLine{
		MenuItemID: item.ID,
		Name:       item.Name,
		Price:      item.Price,
		Quantity:   1,
	})
}

// UpdateQuantity sets the line's quantity. A quantity of zero or less
// removes the line; there is no other rejection path.
func (c *Cart) UpdateQuantity(itemID string, quantity int) {
	if quantity <= 0 {
		c.Remove(itemID)
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for index := range c.lines {
		if c.lines[index].MenuItemID == itemID {
			c.lines[index].Quantity = quantity
			return
		}
	}
}

// Remove deletes the line for the item. Idempotent: removing an
// absent line is a no-op.
func (c *Cart) Remove(itemID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	filtered := c.lines[:0]
	for _, line := range c.lines {
		if line.MenuItemID != itemID {
			filtered = append(filtered, line)
		}
	}
	c.lines = filtered
}

// Lines returns a copy of the cart contents in insertion order.
func (c *Cart) Lines() []api.CartLine {
	c.mu.Lock()
	defer c.mu.Unlock()
	lines := make([]api.CartLine, len(c.lines))
	copy(lines, c.lines)
	return lines
}

// Empty reports whether the cart has no lines.
func (c *Cart) Empty() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.lines) == 0
}

// Total returns the sum of unit price times quantity across all
// lines. This is the single total formula: Place submits it and the
// orders view renders it.
func (c *Cart) Total() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return totalOf(c.lines)
}

func totalOf(lines []api.CartLine) float64 {
	var total float64
	for _, line := range lines {
		total += line.Subtotal()
	}
	return total
}

// Place validates and submits the cart as an order. Validation
// failures (blank contact number, empty cart) come back as
// validation-category errors without any network traffic. On success
// the returned order is appended to the recent-orders view and the
// cart is cleared; on a remote failure the cart is left untouched so
// the diner can retry.
func (c *Cart) Place(ctx context.Context, contactNumber string) (*api.Order, error) {
	if strings.TrimSpace(contactNumber) == "" {
		return nil, api.Validation("enter your phone number before ordering")
	}

	c.mu.Lock()
	if len(c.lines) == 0 {
		c.mu.Unlock()
		return nil, api.Validation("your cart is empty")
	}
	lines := make([]api.CartLine, len(c.lines))
	copy(lines, c.lines)
	total := totalOf(lines)
	c.mu.Unlock()

	// The round trip runs outside the lock so the UI stays
	// responsive; a hung request blocks only this order.
	order, err := c.submitter.SubmitOrder(ctx, lines, total, contactNumber)
	if err != nil {
		c.logger.Warn("order submission failed", "error", err)
		return nil, err
	}

	c.mu.Lock()
	c.orders = append(c.orders, *order)
	c.lines = nil
	c.mu.Unlock()

	c.logger.Info("order placed", "order_id", order.ID, "total", order.Total)
	return order, nil
}

// Orders returns a copy of the recent-orders view, oldest first.
func (c *Cart) Orders() []api.Order {
	c.mu.Lock()
	defer c.mu.Unlock()
	orders := make([]api.Order, len(c.orders))
	copy(orders, c.orders)
	return orders
}

// ReplaceOrders swaps in a fresh order list from the service,
// discarding the local view wholesale.
func (c *Cart) ReplaceOrders(orders []api.Order) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.orders = make([]api.Order, len(orders))
	copy(c.orders, orders)
}
