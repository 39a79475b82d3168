// Copyright 2026 The Tableside Authors
// SPDX-License-Identifier: Apache-2.0

package ui

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/tableside/tableside/lib/api"
	"github.com/tableside/tableside/lib/approval"
	"github.com/tableside/tableside/lib/cart"
	"github.com/tableside/tableside/lib/clock"
	"github.com/tableside/tableside/lib/config"
	"github.com/tableside/tableside/lib/reservation"
	"github.com/tableside/tableside/lib/session"
	"github.com/tableside/tableside/lib/testutil"
	"github.com/tableside/tableside/lib/transcript"
)

// stubService implements every client slice the dashboard touches and
// records the calls it receives.
type stubService struct {
	mu      sync.Mutex
	menu    []api.MenuItem
	tables  []api.Table
	orders  []api.Order
	history []api.ChatMessage
	reply   string

	question  *api.PendingQuestion
	chatSent  []string
	answers   []bool
	submitted int

	polls chan struct{}
}

func newStubService() *stubService {
	return &stubService{
		reply: "Of course.",
		polls: make(chan struct{}, 16),
	}
}

func (s *stubService) Menu(context.Context) ([]api.MenuItem, error) { return s.menu, nil }

func (s *stubService) Tables(context.Context) ([]api.Table, error) { return s.tables, nil }

func (s *stubService) Orders(context.Context) ([]api.Order, error) { return s.orders, nil }

func (s *stubService) Authenticated() bool { return true }

func (s *stubService) Messages(context.Context, string) ([]api.ChatMessage, error) {
	return s.history, nil
}

func (s *stubService) SendChat(_ context.Context, message, _, _ string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chatSent = append(s.chatSent, message)
	return s.reply, nil
}

func (s *stubService) PendingQuestion(context.Context) (*api.PendingQuestion, error) {
	s.mu.Lock()
	question := s.question
	s.mu.Unlock()
	s.polls <- struct{}{}
	return question, nil
}

func (s *stubService) AnswerQuestion(_ context.Context, accepted bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.answers = append(s.answers, accepted)
	return nil
}

func (s *stubService) SubmitOrder(_ context.Context, items []api.CartLine, total float64, contact string) (*api.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.submitted++
	return &api.Order{ID: "order-1", Items: items, Total: total, Status: api.StatusPending, ContactNumber: contact}, nil
}

func (s *stubService) BookTable(context.Context, string, int) error { return nil }

type testHarness struct {
	model   *Model
	service *stubService
	clock   *clock.FakeClock
	pollers []*approval.Poller
}

func newTestModel(t *testing.T) *testHarness {
	t.Helper()
	service := newStubService()
	fakeClock := clock.Fake(time.Date(2026, 3, 1, 19, 0, 0, 0, time.UTC))

	harness := &testHarness{service: service, clock: fakeClock}
	tr := transcript.New(fakeClock, 50)
	harness.model = New(Params{
		Service:    service,
		Session:    &session.Session{UserID: "u-1", Username: "priya"},
		Cart:       cart.New(service, nil),
		Tables:     reservation.New(service, nil),
		Transcript: tr,
		NewPoller: func() *approval.Poller {
			poller := approval.NewPoller(service, fakeClock, 2*time.Second, nil)
			harness.pollers = append(harness.pollers, poller)
			return poller
		},
		Config: config.ChatConfig{
			PollInterval:    2 * time.Second,
			ScrollThreshold: 50,
			AutoscrollDelay: 50 * time.Millisecond,
		},
		Theme:  DefaultTheme,
		Keys:   DefaultKeyMap,
		Logger: nil,
	})

	harness.model.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return harness
}

func keyRune(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func TestOpenChatStartsPollerCloseStopsIt(t *testing.T) {
	h := newTestModel(t)

	h.model.Update(keyRune('c'))
	if !h.model.chatOpen {
		t.Fatal("chat did not open")
	}
	if len(h.pollers) != 1 {
		t.Fatalf("pollers started = %d, want 1", len(h.pollers))
	}

	// The sidebar's poller actually polls.
	h.clock.WaitForTimers(1)
	h.clock.Advance(2 * time.Second)
	testutil.RequireReceive(t, h.service.polls, 5*time.Second, "poll while sidebar open")

	// Closing the sidebar tears the poller down with it.
	h.model.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if h.model.chatOpen {
		t.Fatal("chat did not close")
	}
	testutil.RequireClosed(t, h.pollers[0].Done(), 5*time.Second, "poller shutdown on close")
	if h.clock.PendingCount() != 0 {
		t.Errorf("PendingCount = %d after close, want 0 (ticker leaked)", h.clock.PendingCount())
	}

	// The event listener blocked on the dead poller's channel must
	// resolve to the closed marker rather than hang forever.
	msg := listenApprovalCmd(h.pollers[0].Events())()
	if event, ok := msg.(approvalEventMsg); !ok || !event.closed {
		t.Errorf("listener on closed poller returned %#v, want closed marker", msg)
	}

	// Reopening starts a fresh poller rather than reviving the old one.
	h.model.Update(keyRune('c'))
	if len(h.pollers) != 2 {
		t.Errorf("pollers started = %d after reopen, want 2", len(h.pollers))
	}
	h.model.Update(tea.KeyMsg{Type: tea.KeyEsc})
	testutil.RequireClosed(t, h.pollers[1].Done(), 5*time.Second, "second poller shutdown")
}

func TestSendChatAppendsOptimisticThenConfirms(t *testing.T) {
	h := newTestModel(t)
	h.model.chatOpen = true

	h.model.chat.input.SetValue("table for two?")
	_, cmd := h.model.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("send produced no command")
	}

	messages := h.model.transcript.Messages()
	if len(messages) != 1 || !messages[0].Optimistic {
		t.Fatalf("messages = %+v, want one optimistic entry", messages)
	}
	if !h.model.chat.sending {
		t.Error("sending flag not set while the round trip is in flight")
	}
	if h.model.chat.input.Value() != "" {
		t.Error("input not cleared after send")
	}

	// Run the network command and feed the reply back.
	for _, msg := range collectMsgs(cmd) {
		if reply, ok := msg.(chatReplyMsg); ok {
			h.model.Update(reply)
		}
	}

	if got := h.service.chatSent; len(got) != 1 || got[0] != "table for two?" {
		t.Errorf("chatSent = %v, want the one message", got)
	}
	messages = h.model.transcript.Messages()
	if len(messages) != 2 || messages[1].Sender != api.AgentSender {
		t.Fatalf("messages = %+v, want optimistic entry plus agent reply", messages)
	}
	if h.model.chat.sending {
		t.Error("sending flag survived the reply")
	}
}

func TestBlankChatSendIsRejectedLocally(t *testing.T) {
	h := newTestModel(t)
	h.model.chatOpen = true

	h.model.chat.input.SetValue("   ")
	h.model.Update(tea.KeyMsg{Type: tea.KeyEnter})

	if h.model.transcript.Len() != 0 {
		t.Error("blank send reached the transcript")
	}
	if len(h.service.chatSent) != 0 {
		t.Error("blank send reached the service")
	}
	if h.model.notice == "" {
		t.Error("blank send produced no notice")
	}
}

func TestApprovalCardLifecycle(t *testing.T) {
	h := newTestModel(t)
	h.model.chatOpen = true
	h.model.poller = h.model.newPoller()
	source := h.model.poller.Events()

	question := &api.PendingQuestion{
		Items: []api.QuestionLine{{Name: "Paneer Tikka", Quantity: 2, Price: 10}},
		Total: 20,
	}
	h.model.Update(approvalEventMsg{event: approval.Event{Kind: approval.QuestionAppeared, Question: question}, source: source})
	if h.model.chat.question == nil {
		t.Fatal("question not displayed after appearance")
	}

	replacement := &api.PendingQuestion{
		Items: []api.QuestionLine{{Name: "Dal Makhani", Quantity: 1, Price: 7}},
		Total: 7,
	}
	h.model.Update(approvalEventMsg{event: approval.Event{Kind: approval.QuestionReplaced, Question: replacement}, source: source})
	if h.model.chat.question.Total != 7 {
		t.Errorf("displayed total = %v, want the replacement only", h.model.chat.question.Total)
	}

	h.model.Update(approvalEventMsg{event: approval.Event{Kind: approval.QuestionCleared}, source: source})
	if h.model.chat.question != nil {
		t.Error("question survived a clear")
	}

	// An event from an earlier sidebar's poller must not touch the
	// card: the sidebar only trusts its own poller.
	stale := h.model.newPoller()
	h.model.Update(approvalEventMsg{event: approval.Event{Kind: approval.QuestionAppeared, Question: question}, source: stale.Events()})
	if h.model.chat.question != nil {
		t.Error("stale poller event reached the card")
	}
}

func TestAnswerDisabledWhileDecisionInFlight(t *testing.T) {
	h := newTestModel(t)
	h.model.chatOpen = true
	h.model.poller = h.model.newPoller()
	h.model.chat.question = &api.PendingQuestion{Total: 20}

	_, first := h.model.Update(tea.KeyMsg{Type: tea.KeyCtrlY})
	if first == nil {
		t.Fatal("first decision produced no command")
	}
	if !h.model.chat.answering {
		t.Fatal("answering flag not set")
	}

	// A second press while in flight does nothing.
	_, second := h.model.Update(tea.KeyMsg{Type: tea.KeyCtrlY})
	if second != nil {
		t.Error("decision accepted while one was already in flight")
	}

	for _, msg := range collectMsgs(first) {
		if result, ok := msg.(answerResultMsg); ok {
			h.model.Update(result)
		}
	}
	if got := h.service.answers; len(got) != 1 || !got[0] {
		t.Errorf("answers = %v, want one approval", got)
	}
	// The card stays disabled until a poll clears the question.
	if !h.model.chat.answering {
		t.Error("answering flag cleared before the service confirmed")
	}
}

func TestAutoscrollSuppressedWhileReadingBacklog(t *testing.T) {
	h := newTestModel(t)
	h.model.chatOpen = true

	h.model.transcript.SetDistanceFromBottom(80)
	_, cmd := h.model.Update(chatHistoryMsg{messages: []api.ChatMessage{
		{Sender: api.AgentSender, Content: "welcome back"},
	}})
	if cmd != nil {
		t.Error("autoscroll scheduled while the diner reads backlog")
	}

	h.model.transcript.SetDistanceFromBottom(0)
	_, cmd = h.model.Update(chatHistoryMsg{messages: []api.ChatMessage{
		{Sender: api.AgentSender, Content: "welcome back"},
	}})
	if cmd == nil {
		t.Error("no autoscroll scheduled at the bottom")
	}
}

func TestDashboardCartKeys(t *testing.T) {
	h := newTestModel(t)
	h.model.menu = []api.MenuItem{
		{ID: "m-1", Name: "Paneer Tikka", Price: 10},
		{ID: "m-2", Name: "Dal Makhani", Price: 7},
	}

	// Add the highlighted dish twice: one line, quantity two.
	h.model.Update(tea.KeyMsg{Type: tea.KeyEnter})
	h.model.Update(tea.KeyMsg{Type: tea.KeyEnter})
	lines := h.model.cart.Lines()
	if len(lines) != 1 || lines[0].Quantity != 2 {
		t.Fatalf("lines = %+v, want one line with quantity 2", lines)
	}

	// Focus the cart and drive the quantity to zero: line removed.
	h.model.focus = focusCart
	h.model.Update(keyRune('-'))
	h.model.Update(keyRune('-'))
	if !h.model.cart.Empty() {
		t.Errorf("cart = %+v, want empty after decrementing to zero", h.model.cart.Lines())
	}
}

func TestChatScrollGateFollowsViewport(t *testing.T) {
	h := newTestModel(t)
	h.model.chatOpen = true

	for index := 0; index < 80; index++ {
		h.model.transcript.AppendAgent(fmt.Sprintf("line %d", index))
	}
	h.model.chat.refresh()

	h.model.chat.viewport.GotoTop()
	h.model.chat.sampleScroll()
	if !h.model.transcript.UserScrolling() {
		t.Error("scrolling to the top did not trip the gate")
	}

	h.model.chat.gotoBottom()
	if h.model.transcript.UserScrolling() {
		t.Error("returning to the bottom did not release the gate")
	}
}

// collectMsgs runs a command tree, flattening batches into the
// messages they produce.
func collectMsgs(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, sub := range batch {
			out = append(out, collectMsgs(sub)...)
		}
		return out
	}
	return []tea.Msg{msg}
}
