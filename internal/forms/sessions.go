package forms

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrSessionClosed is returned for sessions that were submitted, dismissed,
	// expired or never existed.
	ErrSessionClosed = errors.New("form session closed")
	ErrStopped       = errors.New("form sessions stopped")
)

// Session is one open form.
type Session struct {
	ID       uuid.UUID
	Draft    Draft
	Opened   time.Time
	LastUsed time.Time
}

// Sessions owns every open form. All reads and writes of drafts run on a
// single goroutine, so a result computed elsewhere (e.g. a random image
// lookup) only lands if its session is still open when it is delivered.
type Sessions struct {
	requests chan func(map[uuid.UUID]*Session)
	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
	ttl      time.Duration
	now      func() time.Time
	logger   *slog.Logger
}

// SessionsConfig configures NewSessions.
type SessionsConfig struct {
	// TTL drops sessions idle for longer than this. Zero means one hour.
	TTL             time.Duration
	CleanupInterval time.Duration
}

// NewSessions starts the owning goroutine. Call Stop to end it.
func NewSessions(cfg SessionsConfig) *Sessions {
	if cfg.TTL <= 0 {
		cfg.TTL = time.Hour
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = 5 * time.Minute
	}
	s := &Sessions{
		requests: make(chan func(map[uuid.UUID]*Session)),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
		ttl:      cfg.TTL,
		now:      time.Now,
		logger:   slog.Default().With("component", "form_sessions"),
	}
	go s.loop(cfg.CleanupInterval)
	return s
}

func (s *Sessions) loop(cleanupEvery time.Duration) {
	defer close(s.done)
	open := make(map[uuid.UUID]*Session)
	ticker := time.NewTicker(cleanupEvery)
	defer ticker.Stop()

	for {
		select {
		case fn := <-s.requests:
			fn(open)
		case <-ticker.C:
			cutoff := s.now().Add(-s.ttl)
			for id, sess := range open {
				if sess.LastUsed.Before(cutoff) {
					delete(open, id)
					s.logger.Debug("Form session expired", "session_id", id)
				}
			}
		case <-s.stop:
			return
		}
	}
}

// Stop ends the owning goroutine and waits for it.
func (s *Sessions) Stop() {
	s.stopOnce.Do(func() { close(s.stop) })
	<-s.done
}

// do runs fn on the owning goroutine and waits for it to finish.
func (s *Sessions) do(ctx context.Context, fn func(map[uuid.UUID]*Session)) error {
	finished := make(chan struct{})
	req := func(open map[uuid.UUID]*Session) {
		defer close(finished)
		fn(open)
	}
	select {
	case s.requests <- req:
	case <-ctx.Done():
		return ctx.Err()
	case <-s.done:
		return ErrStopped
	}
	<-finished
	return nil
}

// Open registers a new form session holding draft.
func (s *Sessions) Open(ctx context.Context, draft Draft) (uuid.UUID, error) {
	id := uuid.New()
	err := s.do(ctx, func(open map[uuid.UUID]*Session) {
		now := s.now()
		open[id] = &Session{ID: id, Draft: draft, Opened: now, LastUsed: now}
	})
	if err != nil {
		return uuid.Nil, err
	}
	s.logger.DebugContext(ctx, "Form session opened", "session_id", id, "mode", draft.Mode)
	return id, nil
}

// Draft returns a snapshot of the session's draft.
func (s *Sessions) Draft(ctx context.Context, id uuid.UUID) (Draft, error) {
	return s.Apply(ctx, id, nil)
}

// Apply mutates the session's draft with fn, unless the session is gone.
// A nil fn only reads.
func (s *Sessions) Apply(ctx context.Context, id uuid.UUID, fn func(*Draft)) (Draft, error) {
	var (
		out   Draft
		found bool
	)
	err := s.do(ctx, func(open map[uuid.UUID]*Session) {
		sess, ok := open[id]
		if !ok {
			return
		}
		found = true
		if fn != nil {
			fn(&sess.Draft)
		}
		sess.LastUsed = s.now()
		out = sess.Draft
	})
	if err != nil {
		return Draft{}, err
	}
	if !found {
		return Draft{}, ErrSessionClosed
	}
	return out, nil
}

// Bind stores the submitted field values in the session's draft.
func (s *Sessions) Bind(ctx context.Context, id uuid.UUID, values url.Values) (Draft, error) {
	return s.Apply(ctx, id, func(d *Draft) { d.Bind(values) })
}

// Submit binds values, then calls commit with the resulting draft. The
// session is closed only when commit succeeds; otherwise it stays open with
// the user's input so the form can be shown again. commit runs on the owning
// goroutine and must not call back into Sessions.
func (s *Sessions) Submit(ctx context.Context, id uuid.UUID, values url.Values, commit func(Draft) error) (Draft, error) {
	var (
		out       Draft
		found     bool
		commitErr error
	)
	err := s.do(ctx, func(open map[uuid.UUID]*Session) {
		sess, ok := open[id]
		if !ok {
			return
		}
		found = true
		sess.Draft.Bind(values)
		sess.LastUsed = s.now()
		out = sess.Draft
		if commitErr = commit(sess.Draft); commitErr == nil {
			delete(open, id)
		}
	})
	if err != nil {
		return Draft{}, err
	}
	if !found {
		return Draft{}, ErrSessionClosed
	}
	return out, commitErr
}

// Close dismisses the session. Closing an unknown session is not an error.
func (s *Sessions) Close(ctx context.Context, id uuid.UUID) error {
	return s.do(ctx, func(open map[uuid.UUID]*Session) {
		delete(open, id)
	})
}

// Len returns the number of open sessions.
func (s *Sessions) Len(ctx context.Context) (int, error) {
	var n int
	err := s.do(ctx, func(open map[uuid.UUID]*Session) { n = len(open) })
	return n, err
}
