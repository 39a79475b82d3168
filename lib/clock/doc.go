// Copyright 2026 The Tableside Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock provides an injectable time abstraction so that
// time-dependent code (the approval poller's fixed cadence, message
// timestamps) can be tested deterministically.
//
// Production code receives a Clock built by Real(). Tests construct a
// FakeClock with Fake(initial) and drive it with Advance, which fires
// pending timers and tickers in deadline order. WaitForTimers closes
// the race between a goroutine registering a ticker and the test
// advancing the clock past its first deadline.
package clock
