// Copyright 2026 The Tableside Authors
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
)

func TestDecodeQuestionObjectForm(t *testing.T) {
	body := []byte(`{"question":{"items":[{"name":"Paneer Tikka","quantity":2,"price":10}],"total":20,"usernumber":"555-0101"}}`)

	question, err := decodeQuestionEnvelope(body)
	if err != nil {
		t.Fatalf("decode returned error: %v", err)
	}
	if question == nil {
		t.Fatal("decode returned nil for a present question")
	}
	if len(question.Items) != 1 || question.Items[0].Quantity != 2 {
		t.Errorf("items = %+v", question.Items)
	}
	if question.Total != 20 || question.ContactNumber != "555-0101" {
		t.Errorf("question = %+v", question)
	}
}

func TestDecodeQuestionStringForm(t *testing.T) {
	inner := `{"items":[{"name":"Garlic Naan","quantity":1,"price":5}],"total":5,"usernumber":"555-0101"}`
	envelope, err := json.Marshal(map[string]string{"question": inner})
	if err != nil {
		t.Fatal(err)
	}

	question, err := decodeQuestionEnvelope(envelope)
	if err != nil {
		t.Fatalf("decode returned error: %v", err)
	}
	if question == nil || question.Items[0].Name != "Garlic Naan" {
		t.Errorf("question = %+v, want the string-encoded payload normalized", question)
	}
}

func TestDecodeQuestionAbsent(t *testing.T) {
	for _, body := range []string{`{}`, `{"question":null}`} {
		question, err := decodeQuestionEnvelope([]byte(body))
		if err != nil {
			t.Fatalf("decode(%s) returned error: %v", body, err)
		}
		if question != nil {
			t.Errorf("decode(%s) = %+v, want nil", body, question)
		}
	}
}

func TestDecodeQuestionMalformed(t *testing.T) {
	cases := []string{
		`{"question":"not json"}`,
		`{"question":42}`,
		`{"question":{"items":[]}}`,
		`{"question":{"items":[{"name":"x","quantity":0,"price":1}]}}`,
	}
	for _, body := range cases {
		if _, err := decodeQuestionEnvelope([]byte(body)); err == nil {
			t.Errorf("decode(%s) accepted a malformed question", body)
		}
	}
}

func TestPendingQuestionNormalizesBothForms(t *testing.T) {
	// The endpoint alternates between forms; the client output is
	// identical either way.
	responses := []string{
		`{"question":{"items":[{"name":"Dal","quantity":1,"price":7}],"total":7,"usernumber":"555-0101"}}`,
		`{"question":"{\"items\":[{\"name\":\"Dal\",\"quantity\":1,\"price\":7}],\"total\":7,\"usernumber\":\"555-0101\"}"}`,
	}
	index := 0
	client := newTestClient(t, "tok", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(responses[index]))
	}))

	var decoded []*PendingQuestion
	for index = range responses {
		question, err := client.PendingQuestion(context.Background())
		if err != nil {
			t.Fatalf("PendingQuestion (form %d) returned error: %v", index, err)
		}
		decoded = append(decoded, question)
	}

	if len(decoded[0].Items) != 1 || len(decoded[1].Items) != 1 {
		t.Fatalf("forms decoded differently: %+v vs %+v", decoded[0], decoded[1])
	}
	if decoded[0].Items[0] != decoded[1].Items[0] || decoded[0].Total != decoded[1].Total {
		t.Errorf("forms decoded differently: %+v vs %+v", decoded[0], decoded[1])
	}
}
