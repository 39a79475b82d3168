// Copyright 2026 The Tableside Authors
// SPDX-License-Identifier: Apache-2.0

// Package ui is the terminal dashboard: menu, tables, cart, and recent
// orders, with the assistant chat sidebar on demand. The sidebar owns
// the approval poller's lifetime; closing it stops the polling.
package ui
