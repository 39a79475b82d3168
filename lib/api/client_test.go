// Copyright 2026 The Tableside Authors
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

// newTestClient builds a client pointed at a httptest server.
func newTestClient(t *testing.T, token string, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(ClientConfig{BaseURL: server.URL, Token: token})
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	return client
}

func TestNewClientRequiresBaseURL(t *testing.T) {
	if _, err := NewClient(ClientConfig{}); err == nil {
		t.Fatal("NewClient accepted an empty BaseURL")
	}
}

func TestMenuDecodesItems(t *testing.T) {
	client := newTestClient(t, "", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/menu" {
			t.Errorf("path = %q, want /api/menu", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "" {
			t.Error("menu request carried an Authorization header")
		}
		json.NewEncoder(w).Encode([]MenuItem{
			{ID: "m1", Name: "Paneer Tikka", Price: 10},
			{ID: "m2", Name: "Garlic Naan", Price: 5},
		})
	}))

	items, err := client.Menu(context.Background())
	if err != nil {
		t.Fatalf("Menu returned error: %v", err)
	}
	if len(items) != 2 || items[0].Name != "Paneer Tikka" {
		t.Errorf("Menu = %+v, want two seeded items", items)
	}
}

func TestOrdersSendsBearerToken(t *testing.T) {
	client := newTestClient(t, "tok-abc", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok-abc" {
			t.Errorf("Authorization = %q, want bearer token", got)
		}
		json.NewEncoder(w).Encode([]Order{})
	}))

	if _, err := client.Orders(context.Background()); err != nil {
		t.Fatalf("Orders returned error: %v", err)
	}
}

func TestAuthenticatedCallWithoutTokenNeverReachesNetwork(t *testing.T) {
	requests := 0
	client := newTestClient(t, "", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
	}))

	_, err := client.Orders(context.Background())
	if err == nil {
		t.Fatal("Orders without a token did not fail")
	}
	if CategoryOf(err) != CategoryUnauthorized {
		t.Errorf("category = %q, want unauthorized", CategoryOf(err))
	}
	if requests != 0 {
		t.Errorf("server saw %d requests, want 0", requests)
	}
}

func TestSubmitOrderRoundTrip(t *testing.T) {
	client := newTestClient(t, "tok", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var request submitOrderRequest
		if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
			t.Fatalf("decoding order request: %v", err)
		}
		if request.Status != StatusPending {
			t.Errorf("status = %q, want pending", request.Status)
		}
		if request.Total != 25 {
			t.Errorf("total = %v, want 25", request.Total)
		}
		json.NewEncoder(w).Encode(Order{
			ID:            "ord-1",
			Items:         request.Items,
			Total:         request.Total,
			Status:        request.Status,
			ContactNumber: request.ContactNumber,
		})
	}))

	items := []CartLine{
		{MenuItemID: "m1", Name: "Paneer Tikka", Price: 10, Quantity: 2},
		{MenuItemID: "m2", Name: "Garlic Naan", Price: 5, Quantity: 1},
	}
	order, err := client.SubmitOrder(context.Background(), items, 25, "555-0101")
	if err != nil {
		t.Fatalf("SubmitOrder returned error: %v", err)
	}
	if order.ID != "ord-1" || order.Total != 25 {
		t.Errorf("order = %+v, want server-assigned ID and echoed total", order)
	}
}

func TestBookTableConflictSurfacesServerMessage(t *testing.T) {
	client := newTestClient(t, "tok", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(map[string]string{"error": "Table already booked"})
	}))

	err := client.BookTable(context.Background(), "t1", 2)
	if err == nil {
		t.Fatal("BookTable did not surface the conflict")
	}
	if CategoryOf(err) != CategoryConflict {
		t.Errorf("category = %q, want conflict", CategoryOf(err))
	}

	var serviceError *ServiceError
	if !errors.As(err, &serviceError) {
		t.Fatalf("error chain %v does not carry a ServiceError", err)
	}
	if serviceError.Message != "Table already booked" {
		t.Errorf("message = %q, want the server's text verbatim", serviceError.Message)
	}
}

func TestUnauthorizedResponseCategory(t *testing.T) {
	client := newTestClient(t, "stale-token", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))

	_, err := client.Orders(context.Background())
	if CategoryOf(err) != CategoryUnauthorized {
		t.Errorf("category = %q, want unauthorized", CategoryOf(err))
	}
}

func TestNetworkFailureIsTransient(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	client, err := NewClient(ClientConfig{BaseURL: server.URL, Token: "tok"})
	if err != nil {
		t.Fatal(err)
	}
	server.Close() // Connection refused from here on.

	_, err = client.Orders(context.Background())
	if err == nil {
		t.Fatal("Orders against a closed server did not fail")
	}
	if CategoryOf(err) != CategoryTransient {
		t.Errorf("category = %q, want transient", CategoryOf(err))
	}
}

func TestMessagesUnwrapsEnvelope(t *testing.T) {
	client := newTestClient(t, "tok", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/messages/diner-42" {
			t.Errorf("path = %q, want /api/messages/diner-42", r.URL.Path)
		}
		json.NewEncoder(w).Encode(messagesResponse{
			Success: true,
			Messages: []ChatMessage{
				{Sender: "priya", Content: "table for two?"},
				{Sender: AgentSender, Content: "Of course."},
			},
		})
	}))

	messages, err := client.Messages(context.Background(), "diner-42")
	if err != nil {
		t.Fatalf("Messages returned error: %v", err)
	}
	if len(messages) != 2 || messages[1].Sender != AgentSender {
		t.Errorf("Messages = %+v, want both entries", messages)
	}
}

func TestSendChatReturnsReply(t *testing.T) {
	client := newTestClient(t, "tok", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var request chatRequest
		if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
			t.Fatal(err)
		}
		if request.ClientID == "" {
			t.Error("chat request carried no client_id")
		}
		json.NewEncoder(w).Encode(chatResponse{Reply: "The kitchen recommends the tikka."})
	}))

	reply, err := client.SendChat(context.Background(), "what's good tonight?", "priya", "corr-1")
	if err != nil {
		t.Fatalf("SendChat returned error: %v", err)
	}
	if reply != "The kitchen recommends the tikka." {
		t.Errorf("reply = %q", reply)
	}
}

func TestAnswerQuestionPostsDecision(t *testing.T) {
	var got answerRequest
	client := newTestClient(t, "tok", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %q, want POST", r.Method)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatal(err)
		}
		w.WriteHeader(http.StatusOK)
	}))

	if err := client.AnswerQuestion(context.Background(), true); err != nil {
		t.Fatalf("AnswerQuestion returned error: %v", err)
	}
	if !got.Answer {
		t.Error("decision was not delivered as true")
	}
}
