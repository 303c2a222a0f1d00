package middleware

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/recon2root/eventsite/internal/audit"
	apperrors "github.com/recon2root/eventsite/internal/errors"
	"github.com/recon2root/eventsite/internal/httputil"
)

const loginCleanupPeriod = 5 * time.Minute

// FailureStore counts login attempts per key within a fixed window that
// starts at the first attempt.
type FailureStore interface {
	// Attempt reserves one attempt for key and returns the number of
	// attempts in the current window, this one included, and the time left
	// until the window ends.
	Attempt(ctx context.Context, key string, window time.Duration) (count int, retryAfter time.Duration)
	// Reset forgets every attempt for key.
	Reset(ctx context.Context, key string)
}

type loginAttempt struct {
	count       int
	windowStart time.Time
	window      time.Duration
}

// MemoryFailureStore is a FailureStore for a single process.
type MemoryFailureStore struct {
	mu          sync.Mutex
	attempts    map[string]*loginAttempt
	lastCleanup time.Time
	now         func() time.Time
}

func NewMemoryFailureStore() *MemoryFailureStore {
	return &MemoryFailureStore{
		attempts:    make(map[string]*loginAttempt),
		lastCleanup: time.Now(),
		now:         time.Now,
	}
}

func (s *MemoryFailureStore) cleanup(now time.Time) {
	if now.Sub(s.lastCleanup) < loginCleanupPeriod {
		return
	}
	s.lastCleanup = now

	for key, attempt := range s.attempts {
		if now.Sub(attempt.windowStart) >= attempt.window {
			delete(s.attempts, key)
		}
	}
}

func (s *MemoryFailureStore) Attempt(_ context.Context, key string, window time.Duration) (int, time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.cleanup(now)

	attempt, ok := s.attempts[key]
	if !ok || now.Sub(attempt.windowStart) >= attempt.window {
		attempt = &loginAttempt{windowStart: now, window: window}
		s.attempts[key] = attempt
	}
	attempt.count++
	return attempt.count, attempt.window - now.Sub(attempt.windowStart)
}

func (s *MemoryFailureStore) Reset(_ context.Context, key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.attempts, key)
}

// LoginRateLimiter blocks a client after too many failed logins. Every
// attempt is counted before it reaches the handler, so concurrent attempts
// cannot all slip under the limit; a successful login clears the count.
type LoginRateLimiter struct {
	store       FailureStore
	maxFailures int
	window      time.Duration
}

func NewLoginRateLimiter(store FailureStore, maxFailures int, window time.Duration) *LoginRateLimiter {
	return &LoginRateLimiter{
		store:       store,
		maxFailures: maxFailures,
		window:      window,
	}
}

func (l *LoginRateLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := "login:" + httputil.ClientIP(r)

		count, retryAfter := l.store.Attempt(r.Context(), key, l.window)
		if count > l.maxFailures {
			audit.LogFromRequest(r, audit.Event{
				Type:    audit.EventRateLimitExceed,
				Details: map[string]interface{}{"limiter": "login"},
			})
			w.Header().Set("Retry-After", strconv.Itoa(int(retryAfter.Seconds())+1))
			writeError(w, apperrors.RateLimitExceeded("Too many login attempts. Please try again later."))
			return
		}

		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		if status := ww.Status(); status >= 200 && status < 300 {
			l.store.Reset(r.Context(), key)
		}
	})
}
