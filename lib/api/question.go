// Copyright 2026 The Tableside Authors
// SPDX-License-Identifier: Apache-2.0

package api

import "encoding/json"

// questionEnvelope is the wire shape of the pending-question endpoint.
// The question field is absent or null when nothing is outstanding.
type questionEnvelope struct {
	Question json.RawMessage `json:"question"`
}

// decodeQuestionEnvelope normalizes the pending-question payload. The
// agent stores the question either as a structured object or as a
// JSON-encoded string containing that object; both arrive here and
// leave as the one canonical PendingQuestion shape. Downstream code
// never branches on representation.
func decodeQuestionEnvelope(body []byte) (*PendingQuestion, error) {
	var envelope questionEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, Internal("parsing question envelope: %w", err)
	}
	if len(envelope.Question) == 0 || string(envelope.Question) == "null" {
		return nil, nil
	}
	return decodeQuestion(envelope.Question)
}

// decodeQuestion decodes a question payload that is either an object
// or a string-encoded object.
func decodeQuestion(raw json.RawMessage) (*PendingQuestion, error) {
	// String form: unwrap, then decode the inner document.
	var encoded string
	if err := json.Unmarshal(raw, &encoded); err == nil {
		var question PendingQuestion
		if err := json.Unmarshal([]byte(encoded), &question); err != nil {
			return nil, Internal("parsing string-encoded question: %w", err)
		}
		return validateQuestion(&question)
	}

	var question PendingQuestion
	if err := json.Unmarshal(raw, &question); err != nil {
		return nil, Internal("parsing question object: %w", err)
	}
	return validateQuestion(&question)
}

// validateQuestion rejects decoded questions with no proposed lines.
// An empty proposal is indistinguishable from a decode mismatch and
// gives the diner nothing to approve.
func validateQuestion(question *PendingQuestion) (*PendingQuestion, error) {
	if len(question.Items) == 0 {
		return nil, Internal("question has no proposed items")
	}
	for index, line := range question.Items {
		if line.Quantity <= 0 {
			return nil, Internal("question line %d has non-positive quantity %d", index, line.Quantity)
		}
	}
	return question, nil
}
