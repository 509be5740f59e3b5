package sweeper

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/beashaj2001/complaintsManagement/internal/models"
	"github.com/beashaj2001/complaintsManagement/internal/sla"
	"github.com/beashaj2001/complaintsManagement/internal/store"
)

type fakeStore struct {
	candidates []models.Complaint
	users      map[string]models.User
	err        error
	gotNow     time.Time
	gotBatch   int
}

func (f *fakeStore) MarkBreaches(_ context.Context, now time.Time, batchSize int, breached func(models.Complaint) bool) ([]models.Complaint, error) {
	f.gotNow = now
	f.gotBatch = batchSize
	if f.err != nil {
		return nil, f.err
	}
	var marked []models.Complaint
	for _, complaint := range f.candidates {
		if breached(complaint) {
			complaint.SLABreach = true
			marked = append(marked, complaint)
		}
	}
	return marked, nil
}

func (f *fakeStore) GetUser(_ context.Context, userID string) (models.User, error) {
	user, ok := f.users[userID]
	if !ok {
		return models.User{}, store.ErrUserNotFound
	}
	return user, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []string
}

func (p *recordingPublisher) PublishComplaint(eventType string, complaint models.Complaint, _ interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, eventType+":"+complaint.ComplaintID)
}

type recordingNotifier struct {
	recipients []string
}

func (n *recordingNotifier) Send(_ context.Context, _ string, recipient string) error {
	n.recipients = append(n.recipients, recipient)
	return nil
}

func TestRunOnceMarksOnlyBreached(t *testing.T) {
	now := time.Date(2026, 1, 12, 20, 0, 0, 0, time.UTC)
	agent := "agent-1"
	st := &fakeStore{
		candidates: []models.Complaint{
			{ComplaintID: "late", CustomerID: "cust-1", AssignedToID: &agent, SLAHours: 4, CreatedAt: now.Add(-5 * time.Hour)},
			{ComplaintID: "fine", CustomerID: "cust-1", SLAHours: 24, CreatedAt: now.Add(-5 * time.Hour)},
		},
		users: map[string]models.User{
			"cust-1":  {UserID: "cust-1", Email: "cust@example.com"},
			"agent-1": {UserID: "agent-1", Email: "agent@example.com"},
		},
	}
	publisher := &recordingPublisher{}
	notifier := &recordingNotifier{}
	sw := New(st, Options{
		BatchSize: 50,
		Evaluator: sla.NewEvaluator(sla.Options{Clock: func() time.Time { return now }}),
		Publisher: publisher,
		Notifier:  notifier,
	})

	marked, err := sw.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("run once: %v", err)
	}
	if len(marked) != 1 || marked[0].ComplaintID != "late" {
		t.Fatalf("expected only late complaint marked, got %+v", marked)
	}
	if !st.gotNow.Equal(now) || st.gotBatch != 50 {
		t.Fatalf("unexpected store call now=%s batch=%d", st.gotNow, st.gotBatch)
	}
	if len(publisher.events) != 1 || publisher.events[0] != "complaint.sla_breached:late" {
		t.Fatalf("unexpected events %v", publisher.events)
	}
	if len(notifier.recipients) != 2 {
		t.Fatalf("expected customer and assignee notified, got %v", notifier.recipients)
	}
}

func TestRunOncePropagatesStoreError(t *testing.T) {
	st := &fakeStore{err: errors.New("db down")}
	sw := New(st, Options{})
	if _, err := sw.RunOnce(context.Background()); err == nil {
		t.Fatalf("expected error")
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	sw := New(&fakeStore{}, Options{})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sw.Run(ctx, time.Millisecond)
		close(done)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("expected Run to stop after cancel")
	}
}
