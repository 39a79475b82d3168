// Copyright 2026 The Tableside Authors
// SPDX-License-Identifier: Apache-2.0

// Package api is the typed client for the restaurant service. It
// issues authenticated HTTP requests for the menu, tables, orders,
// chat messages, and the pending-question channel, and returns typed
// results or categorized errors.
//
// The client performs no caching and holds no domain state: every
// fetch reflects the service's current view, and the stateful
// components (cart, reservation, transcript, approval) replace their
// prior state wholesale from it. Wire-shape quirks are normalized at
// this boundary — most notably the pending question, which may arrive
// either structured or string-encoded and always leaves as one
// canonical PendingQuestion.
package api
