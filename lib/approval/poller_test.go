// Copyright 2026 The Tableside Authors
// SPDX-License-Identifier: Apache-2.0

package approval

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/tableside/tableside/lib/api"
	"github.com/tableside/tableside/lib/clock"
	"github.com/tableside/tableside/lib/testutil"
)

// fakeService scripts poll responses and signals each poll on a
// channel so tests can synchronize with the poller goroutine.
type fakeService struct {
	mu            sync.Mutex
	authenticated bool
	question      *api.PendingQuestion
	pollErr       error

	polls   chan struct{}
	answers chan bool
}

func newFakeService(authenticated bool) *fakeService {
	return &fakeService{
		authenticated: authenticated,
		polls:         make(chan struct{}, 16),
		answers:       make(chan bool, 16),
	}
}

func (f *fakeService) Authenticated() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.authenticated
}

func (f *fakeService) PendingQuestion(context.Context) (*api.PendingQuestion, error) {
	f.mu.Lock()
	question, err := f.question, f.pollErr
	f.mu.Unlock()
	f.polls <- struct{}{}
	return question, err
}

func (f *fakeService) AnswerQuestion(_ context.Context, accepted bool) error {
	f.answers <- accepted
	return nil
}

func (f *fakeService) setQuestion(question *api.PendingQuestion) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.question = question
}

func (f *fakeService) setPollErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pollErr = err
}

var (
	proposalA = &api.PendingQuestion{
		Items:         []api.QuestionLine{{Name: "Paneer Tikka", Quantity: 2, Price: 10}},
		Total:         20,
		ContactNumber: "555-0101",
	}
	proposalB = &api.PendingQuestion{
		Items:         []api.QuestionLine{{Name: "Dal Makhani", Quantity: 1, Price: 7}},
		Total:         7,
		ContactNumber: "555-0101",
	}
)

// startPoller runs a poller against a fake clock and returns it with
// its cancel function. The ticker is registered before return.
func startPoller(t *testing.T, service *fakeService) (*Poller, *clock.FakeClock, context.CancelFunc) {
	t.Helper()
	fakeClock := clock.Fake(time.Date(2026, 3, 1, 19, 0, 0, 0, time.UTC))
	poller := NewPoller(service, fakeClock, 2*time.Second, nil)

	ctx, cancel := context.WithCancel(context.Background())
	go poller.Run(ctx)
	t.Cleanup(func() {
		cancel()
		testutil.RequireClosed(t, poller.Done(), 5*time.Second, "poller shutdown")
	})

	fakeClock.WaitForTimers(1)
	return poller, fakeClock, cancel
}

func TestQuestionAppears(t *testing.T) {
	service := newFakeService(true)
	service.setQuestion(proposalA)
	poller, fakeClock, _ := startPoller(t, service)

	fakeClock.Advance(2 * time.Second)
	testutil.RequireReceive(t, service.polls, 5*time.Second, "first poll")

	event := testutil.RequireReceive(t, poller.Events(), 5*time.Second, "appearance event")
	if event.Kind != QuestionAppeared {
		t.Errorf("kind = %v, want QuestionAppeared", event.Kind)
	}
	if event.Question.Total != 20 {
		t.Errorf("question total = %v, want 20", event.Question.Total)
	}
	if poller.Current() == nil {
		t.Error("Current() is nil after an appearance")
	}
}

func TestConsecutiveQuestionsReplaceNeverAccumulate(t *testing.T) {
	service := newFakeService(true)
	service.setQuestion(proposalA)
	poller, fakeClock, _ := startPoller(t, service)

	fakeClock.Advance(2 * time.Second)
	testutil.RequireReceive(t, service.polls, 5*time.Second, "first poll")
	testutil.RequireReceive(t, poller.Events(), 5*time.Second, "appearance event")

	service.setQuestion(proposalB)
	fakeClock.Advance(2 * time.Second)
	testutil.RequireReceive(t, service.polls, 5*time.Second, "second poll")

	event := testutil.RequireReceive(t, poller.Events(), 5*time.Second, "replace event")
	if event.Kind != QuestionReplaced {
		t.Errorf("kind = %v, want QuestionReplaced", event.Kind)
	}

	current := poller.Current()
	if current == nil || current.Total != 7 {
		t.Errorf("Current() = %+v, want only proposal B", current)
	}
}

func TestUnchangedQuestionEmitsNoEvent(t *testing.T) {
	service := newFakeService(true)
	service.setQuestion(proposalA)
	poller, fakeClock, _ := startPoller(t, service)

	fakeClock.Advance(2 * time.Second)
	testutil.RequireReceive(t, service.polls, 5*time.Second, "first poll")
	testutil.RequireReceive(t, poller.Events(), 5*time.Second, "appearance event")

	// Same question re-reported: the display must not re-trigger
	// autoscroll, so no event.
	fakeClock.Advance(2 * time.Second)
	testutil.RequireReceive(t, service.polls, 5*time.Second, "second poll")
	testutil.RequireNoReceive(t, poller.Events(), 100*time.Millisecond, "event for unchanged question")
}

func TestQuestionCleared(t *testing.T) {
	service := newFakeService(true)
	service.setQuestion(proposalA)
	poller, fakeClock, _ := startPoller(t, service)

	fakeClock.Advance(2 * time.Second)
	testutil.RequireReceive(t, service.polls, 5*time.Second, "first poll")
	testutil.RequireReceive(t, poller.Events(), 5*time.Second, "appearance event")

	service.setQuestion(nil)
	fakeClock.Advance(2 * time.Second)
	testutil.RequireReceive(t, service.polls, 5*time.Second, "second poll")

	event := testutil.RequireReceive(t, poller.Events(), 5*time.Second, "clear event")
	if event.Kind != QuestionCleared {
		t.Errorf("kind = %v, want QuestionCleared", event.Kind)
	}
	if poller.Current() != nil {
		t.Error("Current() survived a clear")
	}
}

func TestTickWithoutCredentialMakesNoRequest(t *testing.T) {
	service := newFakeService(false)
	service.setQuestion(proposalA)
	poller, fakeClock, _ := startPoller(t, service)

	fakeClock.Advance(2 * time.Second)
	testutil.RequireNoReceive(t, service.polls, 100*time.Millisecond, "poll without credential")
	if poller.Current() != nil {
		t.Error("Current() changed on a credential-less tick")
	}
}

func TestPollErrorKeepsQuestionAndKeepsTicking(t *testing.T) {
	service := newFakeService(true)
	service.setQuestion(proposalA)
	poller, fakeClock, _ := startPoller(t, service)

	fakeClock.Advance(2 * time.Second)
	testutil.RequireReceive(t, service.polls, 5*time.Second, "first poll")
	testutil.RequireReceive(t, poller.Events(), 5*time.Second, "appearance event")

	service.setPollErr(api.Transient("service unavailable"))
	fakeClock.Advance(2 * time.Second)
	testutil.RequireReceive(t, service.polls, 5*time.Second, "failing poll")

	if poller.Current() == nil {
		t.Error("a failed poll cleared the displayed question")
	}

	// Recovery on the next cycle.
	service.setPollErr(nil)
	service.setQuestion(nil)
	fakeClock.Advance(2 * time.Second)
	testutil.RequireReceive(t, service.polls, 5*time.Second, "poll after recovery")
	testutil.RequireReceive(t, poller.Events(), 5*time.Second, "clear event after recovery")
}

func TestStopReleasesTicker(t *testing.T) {
	service := newFakeService(true)
	poller, fakeClock, cancel := startPoller(t, service)

	cancel()
	testutil.RequireClosed(t, poller.Done(), 5*time.Second, "poller shutdown")

	if fakeClock.PendingCount() != 0 {
		t.Errorf("PendingCount = %d after shutdown, want 0 (ticker leaked)", fakeClock.PendingCount())
	}
	_ = poller
}

func TestEventsChannelClosesOnShutdown(t *testing.T) {
	service := newFakeService(true)
	poller, _, cancel := startPoller(t, service)

	cancel()
	testutil.RequireClosed(t, poller.Done(), 5*time.Second, "poller shutdown")

	// A listener blocked on Events must wake up once Run has exited;
	// otherwise every sidebar close would strand one goroutine on a
	// dead poller's channel.
	select {
	case _, open := <-poller.Events():
		if open {
			t.Fatal("unexpected event delivered after shutdown")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Events() still blocks after Run exited")
	}
}

func TestAnswerDelegatesDecisionWithoutClearing(t *testing.T) {
	service := newFakeService(true)
	service.setQuestion(proposalA)
	poller, fakeClock, _ := startPoller(t, service)

	fakeClock.Advance(2 * time.Second)
	testutil.RequireReceive(t, service.polls, 5*time.Second, "first poll")
	testutil.RequireReceive(t, poller.Events(), 5*time.Second, "appearance event")

	if err := poller.Answer(context.Background(), true); err != nil {
		t.Fatalf("Answer returned error: %v", err)
	}
	if accepted := testutil.RequireReceive(t, service.answers, 5*time.Second, "decision"); !accepted {
		t.Error("decision delivered as false, want true")
	}

	// The question stays until the next tick reports it gone.
	if poller.Current() == nil {
		t.Error("Answer cleared the question locally; the next poll owns that")
	}
}
