// Copyright 2026 The Tableside Authors
// SPDX-License-Identifier: Apache-2.0

// tableside-mock-service is an in-memory stand-in for the Tableside
// restaurant service, for demos and manual client testing. It serves
// every endpoint the client consumes: a seeded menu and table list,
// per-user orders and chat history, canned assistant replies, and the
// agent-proposal confirm endpoints.
//
// Any non-empty bearer token is accepted; the token doubles as the
// user identifier, so two terminals with different tokens see
// different orders and transcripts.
//
// With --propose-after, the service raises one proposed order that
// many seconds after startup; the client's chat sidebar picks it up on
// its next poll, and answering clears it.
package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/spf13/pflag"

	"github.com/tableside/tableside/lib/api"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var listen string
	var proposeAfter time.Duration

	flagSet := pflag.NewFlagSet("tableside-mock-service", pflag.ContinueOnError)
	flagSet.StringVar(&listen, "listen", "127.0.0.1:5000", "address to listen on")
	flagSet.DurationVar(&proposeAfter, "propose-after", 0, "raise a proposed order this long after startup (0 = never)")
	flagSet.BoolP("help", "h", false, "show help")

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			flagSet.SetOutput(os.Stderr)
			flagSet.PrintDefaults()
			return nil
		}
		return err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	service := newMockService(logger)

	if proposeAfter > 0 {
		time.AfterFunc(proposeAfter, service.raiseProposal)
	}

	server := &http.Server{
		Addr:              listen,
		Handler:           service.routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	logger.Info("mock service listening", "addr", listen)
	return server.ListenAndServe()
}

// mockService holds all state behind one mutex; the traffic is a
// single diner clicking around, not a load test.
type mockService struct {
	mu     sync.Mutex
	logger *slog.Logger

	menu   []api.MenuItem
	tables []api.Table

	nextOrderID int
	orders      map[string][]api.Order       // by user
	messages    map[string][]api.ChatMessage // by user

	question *api.PendingQuestion
}

func newMockService(logger *slog.Logger) *mockService {
	return &mockService{
		logger:      logger,
		menu:        seedMenu(),
		tables:      seedTables(),
		nextOrderID: 1,
		orders:      make(map[string][]api.Order),
		messages:    make(map[string][]api.ChatMessage),
	}
}

func seedMenu() []api.MenuItem {
	return []api.MenuItem{
		{ID: "m-1", Name: "Paneer Tikka", Price: 10.50, Description: "Char-grilled cottage cheese with mint chutney"},
		{ID: "m-2", Name: "Dal Makhani", Price: 8.00, Description: "Black lentils simmered overnight"},
		{ID: "m-3", Name: "Butter Chicken", Price: 12.75, Description: "The house classic"},
		{ID: "m-4", Name: "Garlic Naan", Price: 3.25, Description: "Tandoor-baked"},
		{ID: "m-5", Name: "Biryani", Price: 11.00, Description: "Saffron rice, slow-sealed"},
		{ID: "m-6", Name: "Gulab Jamun", Price: 4.50, Description: "Warm, in rose syrup"},
	}
}

func seedTables() []api.Table {
	tables := make([]api.Table, 0, 8)
	for number := 1; number <= 8; number++ {
		tables = append(tables, api.Table{
			ID:        fmt.Sprintf("t-%d", number),
			Number:    number,
			Seats:     2 + 2*(number%3),
			Available: number%3 != 0,
		})
	}
	return tables
}

func (s *mockService) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/menu", s.handleMenu)
	mux.HandleFunc("GET /api/tables", s.handleTables)
	mux.HandleFunc("GET /api/orders", s.withUser(s.handleOrders))
	mux.HandleFunc("POST /api/orders", s.withUser(s.handleSubmitOrder))
	mux.HandleFunc("POST /api/tables/book", s.withUser(s.handleBookTable))
	mux.HandleFunc("GET /api/messages/{userID}", s.withUser(s.handleMessages))
	mux.HandleFunc("POST /api/ai-chat", s.withUser(s.handleChat))
	mux.HandleFunc("GET /api/confirm/question", s.withUser(s.handleQuestion))
	mux.HandleFunc("POST /api/confirm/answer", s.withUser(s.handleAnswer))
	return mux
}

// withUser extracts the bearer token as the user identity and rejects
// requests without one.
func (s *mockService) withUser(next func(http.ResponseWriter, *http.Request, string)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		if token == "" || token == r.Header.Get("Authorization") {
			writeError(w, http.StatusUnauthorized, "missing or invalid token")
			return
		}
		next(w, r, token)
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func (s *mockService) handleMenu(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, s.menu)
}

func (s *mockService) handleTables(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, s.tables)
}

func (s *mockService) handleOrders(w http.ResponseWriter, _ *http.Request, user string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	orders := s.orders[user]
	if orders == nil {
		orders = []api.Order{}
	}
	writeJSON(w, http.StatusOK, orders)
}

func (s *mockService) handleSubmitOrder(w http.ResponseWriter, r *http.Request, user string) {
	var request struct {
		Items         []api.CartLine `json:"items"`
		Total         float64        `json:"total"`
		ContactNumber string         `json:"contact_number"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		writeError(w, http.StatusBadRequest, "malformed order")
		return
	}
	if len(request.Items) == 0 {
		writeError(w, http.StatusBadRequest, "order has no items")
		return
	}

	s.mu.Lock()
	order := api.Order{
		ID:            fmt.Sprintf("o-%d", s.nextOrderID),
		Items:         request.Items,
		Total:         request.Total,
		Status:        api.StatusPending,
		ContactNumber: request.ContactNumber,
		CreatedAt:     time.Now().UTC(),
	}
	s.nextOrderID++
	s.orders[user] = append(s.orders[user], order)
	s.mu.Unlock()

	s.logger.Info("order placed", "user", user, "order", order.ID, "total", order.Total)
	writeJSON(w, http.StatusCreated, order)
}

func (s *mockService) handleBookTable(w http.ResponseWriter, r *http.Request, user string) {
	var request struct {
		TableID string `json:"tableId"`
		Hours   int    `json:"hours"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		writeError(w, http.StatusBadRequest, "malformed booking")
		return
	}
	if request.Hours < 1 || request.Hours > 3 {
		writeError(w, http.StatusBadRequest, "hours must be 1, 2, or 3")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for index := range s.tables {
		if s.tables[index].ID != request.TableID {
			continue
		}
		if !s.tables[index].Available {
			writeError(w, http.StatusConflict, "Table already booked")
			return
		}
		s.tables[index].Available = false
		s.tables[index].OwnerID = user
		s.logger.Info("table booked", "user", user, "table", request.TableID, "hours", request.Hours)
		writeJSON(w, http.StatusOK, map[string]bool{"success": true})

		// The table frees itself when the booking lapses.
		tableID := request.TableID
		time.AfterFunc(time.Duration(request.Hours)*time.Hour, func() {
			s.releaseTable(tableID)
		})
		return
	}
	writeError(w, http.StatusNotFound, "no such table")
}

func (s *mockService) releaseTable(tableID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for index := range s.tables {
		if s.tables[index].ID == tableID {
			s.tables[index].Available = true
			s.tables[index].OwnerID = ""
		}
	}
}

func (s *mockService) handleMessages(w http.ResponseWriter, r *http.Request, user string) {
	// The path names a user, but the token is the authority.
	_ = r.PathValue("userID")

	s.mu.Lock()
	defer s.mu.Unlock()
	messages := s.messages[user]
	if messages == nil {
		messages = []api.ChatMessage{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"messages": messages,
	})
}

func (s *mockService) handleChat(w http.ResponseWriter, r *http.Request, user string) {
	var request struct {
		Message  string `json:"message"`
		Name     string `json:"name"`
		ClientID string `json:"client_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		writeError(w, http.StatusBadRequest, "malformed chat message")
		return
	}
	if strings.TrimSpace(request.Message) == "" {
		writeError(w, http.StatusBadRequest, "message is empty")
		return
	}

	reply := cannedReply(request.Message)
	now := time.Now().UTC()

	s.mu.Lock()
	s.messages[user] = append(s.messages[user],
		api.ChatMessage{
			Sender:    request.Name,
			Content:   request.Message,
			Timestamp: now,
			ClientID:  request.ClientID,
		},
		api.ChatMessage{
			Sender:    api.AgentSender,
			Content:   reply,
			Timestamp: now.Add(time.Millisecond),
		},
	)
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]string{"reply": reply})
}

func cannedReply(message string) string {
	lowered := strings.ToLower(message)
	switch {
	case strings.Contains(lowered, "menu"):
		return "Tonight I'd point you at the Butter Chicken, and the Gulab Jamun never disappoints."
	case strings.Contains(lowered, "table"):
		return "There are free tables right now. Pick one in the Tables pane and I'll hold it."
	case strings.Contains(lowered, "order"):
		return "Fill your cart and I can put the order in, or I can propose one for you."
	default:
		return "Happy to help with the menu, your table, or your order."
	}
}

func (s *mockService) handleQuestion(w http.ResponseWriter, _ *http.Request, _ string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.question == nil {
		writeJSON(w, http.StatusOK, map[string]any{})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"question": s.question})
}

func (s *mockService) handleAnswer(w http.ResponseWriter, r *http.Request, user string) {
	var request struct {
		Answer bool `json:"answer"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		writeError(w, http.StatusBadRequest, "malformed answer")
		return
	}

	s.mu.Lock()
	question := s.question
	s.question = nil
	if question != nil && request.Answer {
		lines := make([]api.CartLine, 0, len(question.Items))
		for index, item := range question.Items {
			lines = append(lines, api.CartLine{
				MenuItemID: fmt.Sprintf("q-%d", index),
				Name:       item.Name,
				Price:      item.Price,
				Quantity:   item.Quantity,
			})
		}
		order := api.Order{
			ID:            fmt.Sprintf("o-%d", s.nextOrderID),
			Items:         lines,
			Total:         question.Total,
			Status:        api.StatusPending,
			ContactNumber: question.ContactNumber,
			CreatedAt:     time.Now().UTC(),
		}
		s.nextOrderID++
		s.orders[user] = append(s.orders[user], order)
	}
	s.mu.Unlock()

	s.logger.Info("proposal answered", "user", user, "accepted", request.Answer)
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// raiseProposal installs the canned agent proposal. A later call
// replaces whatever is pending; the client never sees more than one.
func (s *mockService) raiseProposal() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.question = &api.PendingQuestion{
		Items: []api.QuestionLine{
			{Name: "Butter Chicken", Quantity: 1, Price: 12.75},
			{Name: "Garlic Naan", Quantity: 2, Price: 3.25},
		},
		Total:         19.25,
		ContactNumber: "555-0101",
	}
	s.logger.Info("agent proposal raised", "total", s.question.Total)
}
