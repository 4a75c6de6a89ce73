package courtroom

import (
	"context"
	"sync"
	"time"

	"github.com/ParthRana1023/AI-Courtroom-sub001/models"
)

// RateLimitMirror is the advisory local cache of the server-enforced
// submission quota. It blocks submissions locally while the window shows
// no attempts left, runs a 1 Hz countdown on seconds_until_next, and
// refetches from the server when the countdown expires, since the local
// clock may drift from server truth.
type RateLimitMirror struct {
	api      API
	notifier Notifier

	// tick is the countdown cadence, one second in production; tests
	// inject a shorter interval
	tick time.Duration

	mu     sync.Mutex
	window *models.RateLimitWindow
	cancel context.CancelFunc
}

// MirrorOption configures a RateLimitMirror
type MirrorOption func(*RateLimitMirror)

// WithTickInterval overrides the countdown cadence
func WithTickInterval(d time.Duration) MirrorOption {
	return func(m *RateLimitMirror) { m.tick = d }
}

// WithMirrorNotifier delivers countdown and window changes to a Notifier
func WithMirrorNotifier(n Notifier) MirrorOption {
	return func(m *RateLimitMirror) { m.notifier = n }
}

// NewRateLimitMirror builds a mirror; call Refresh or Start before
// relying on it
func NewRateLimitMirror(api API, opts ...MirrorOption) *RateLimitMirror {
	m := &RateLimitMirror{
		api:      api,
		notifier: nopNotifier{},
		tick:     time.Second,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Allow reports whether a submission should be attempted. Before the
// first fetch the mirror is permissive; the server is the sole arbiter
// and will reject anything the mirror wrongly allowed.
func (m *RateLimitMirror) Allow() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.window == nil {
		return true
	}
	if m.window.RemainingAttempts == 0 {
		return false
	}
	if m.window.SecondsUntilNext != nil && *m.window.SecondsUntilNext > 0 {
		return false
	}
	return true
}

// Window returns a copy of the current view, or nil before the first
// fetch
func (m *RateLimitMirror) Window() *models.RateLimitWindow {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.window == nil {
		return nil
	}
	w := *m.window
	if m.window.SecondsUntilNext != nil {
		s := *m.window.SecondsUntilNext
		w.SecondsUntilNext = &s
	}
	return &w
}

// Refresh replaces the local view with server truth
func (m *RateLimitMirror) Refresh(ctx context.Context) error {
	window, err := m.api.ArgumentRateLimit(ctx)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.window = window
	m.mu.Unlock()
	m.notifier.Notify(EventRateLimitChanged, window)
	return nil
}

// Start fetches the window and runs the countdown until ctx is cancelled
// or Stop is called. The countdown only runs while the server reported a
// wait; expiry triggers an immediate refetch.
func (m *RateLimitMirror) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	m.mu.Lock()
	if m.cancel != nil {
		m.cancel()
	}
	m.cancel = cancel
	m.mu.Unlock()

	if err := m.Refresh(ctx); err != nil {
		cancel()
		return err
	}

	go m.countdown(ctx)
	return nil
}

// Stop cancels the countdown goroutine
func (m *RateLimitMirror) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
}

func (m *RateLimitMirror) countdown(ctx context.Context) {
	ticker := time.NewTicker(m.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if m.decrement() {
				// countdown hit zero; local time is not trusted, ask
				// the server
				if err := m.Refresh(ctx); err != nil {
					continue
				}
			}
		}
	}
}

// decrement ticks the local countdown down one second and reports whether
// it just expired
func (m *RateLimitMirror) decrement() bool {
	m.mu.Lock()
	if m.window == nil || m.window.SecondsUntilNext == nil {
		m.mu.Unlock()
		return false
	}
	s := *m.window.SecondsUntilNext
	if s <= 0 {
		m.mu.Unlock()
		return false
	}
	s--
	m.window.SecondsUntilNext = &s
	view := *m.window
	m.mu.Unlock()

	m.notifier.Notify(EventRateLimitChanged, &view)
	return s == 0
}
