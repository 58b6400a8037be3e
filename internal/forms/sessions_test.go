package forms

import (
	"context"
	"errors"
	"net/url"
	"sync"
	"testing"
	"time"

	"budget/internal/core"

	"github.com/google/uuid"
)

func newSessions(t *testing.T) *Sessions {
	t.Helper()
	s := NewSessions(SessionsConfig{})
	t.Cleanup(s.Stop)
	return s
}

func TestOpenApplyClose(t *testing.T) {
	ctx := context.Background()
	s := newSessions(t)

	id, err := s.Open(ctx, NewAddDraft(core.NewDate(2024, 1, 1)))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	d, err := s.Apply(ctx, id, func(d *Draft) { d.ImageURL = "https://img/1.png" })
	if err != nil || d.ImageURL != "https://img/1.png" {
		t.Fatalf("apply: %+v %v", d, err)
	}
	if err := s.Close(ctx, id); err != nil {
		t.Fatalf("close: %v", err)
	}
	if _, err := s.Apply(ctx, id, func(d *Draft) { d.ImageURL = "late" }); !errors.Is(err, ErrSessionClosed) {
		t.Fatalf("expected ErrSessionClosed, got %v", err)
	}
	if _, err := s.Draft(ctx, uuid.New()); !errors.Is(err, ErrSessionClosed) {
		t.Fatalf("unknown session should be closed, got %v", err)
	}
}

func TestSubmitKeepsSessionOnFailure(t *testing.T) {
	ctx := context.Background()
	s := newSessions(t)
	id, _ := s.Open(ctx, NewAddDraft(core.NewDate(2024, 1, 1)))

	boom := errors.New("rejected")
	d, err := s.Submit(ctx, id, url.Values{"amount": {"abc"}}, func(Draft) error { return boom })
	if !errors.Is(err, boom) {
		t.Fatalf("expected commit error, got %v", err)
	}
	if d.Amount != "abc" {
		t.Fatalf("submitted values should be kept, got %+v", d)
	}
	if n, _ := s.Len(ctx); n != 1 {
		t.Fatalf("session should stay open, open=%d", n)
	}

	var committed Draft
	if _, err := s.Submit(ctx, id, url.Values{"amount": {"12"}}, func(d Draft) error {
		committed = d
		return nil
	}); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if committed.Amount != "12" {
		t.Fatalf("commit saw %+v", committed)
	}
	if n, _ := s.Len(ctx); n != 0 {
		t.Fatalf("session should be closed after success, open=%d", n)
	}
	if _, err := s.Submit(ctx, id, nil, func(Draft) error { return nil }); !errors.Is(err, ErrSessionClosed) {
		t.Fatalf("double submit should fail, got %v", err)
	}
}

func TestConcurrentAppliesAreSerialised(t *testing.T) {
	ctx := context.Background()
	s := newSessions(t)
	id, _ := s.Open(ctx, NewAddDraft(core.NewDate(2024, 1, 1)))

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = s.Apply(ctx, id, func(d *Draft) { d.Name += "x" })
		}()
	}
	wg.Wait()
	d, _ := s.Draft(ctx, id)
	if len(d.Name) != 50 {
		t.Fatalf("expected 50 serialised appends, got %d", len(d.Name))
	}
}

func TestExpiry(t *testing.T) {
	ctx := context.Background()
	s := NewSessions(SessionsConfig{TTL: time.Minute, CleanupInterval: 10 * time.Millisecond})
	defer s.Stop()

	id, _ := s.Open(ctx, NewAddDraft(core.NewDate(2024, 1, 1)))
	// Move the clock forward on the owning goroutine.
	_ = s.do(ctx, func(map[uuid.UUID]*Session) {
		s.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	})

	// Len does not touch LastUsed.
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if n, _ := s.Len(ctx); n == 0 {
			if _, err := s.Draft(ctx, id); !errors.Is(err, ErrSessionClosed) {
				t.Fatalf("expected ErrSessionClosed, got %v", err)
			}
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("session did not expire")
}

func TestStopped(t *testing.T) {
	s := NewSessions(SessionsConfig{})
	s.Stop()
	s.Stop()
	if _, err := s.Open(context.Background(), Draft{}); !errors.Is(err, ErrStopped) {
		t.Fatalf("expected ErrStopped, got %v", err)
	}
}
