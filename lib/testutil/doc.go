// Copyright 2026 The Tableside Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides channel assertion helpers shared across
// package tests. Every helper takes an explicit timeout so a broken
// channel fails the test instead of hanging the run.
package testutil
