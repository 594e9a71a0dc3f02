package ratelimit

import (
	"context"
	"time"
)

// Lockout blocks a key after Max failures inside Window. A successful
// attempt clears the failures.
type Lockout struct {
	store  Store
	max    int64
	window time.Duration
	prefix string
}

func NewLockout(store Store, max int, window time.Duration) *Lockout {
	return &Lockout{store: store, max: int64(max), window: window, prefix: "login:"}
}

// Locked reports whether key has used up its failures for the current window.
func (l *Lockout) Locked(ctx context.Context, key string) (bool, error) {
	n, err := l.store.Get(ctx, l.prefix+key)
	if err != nil {
		return false, err
	}
	return n >= l.max, nil
}

// Fail records a failed attempt and returns how many attempts remain.
func (l *Lockout) Fail(ctx context.Context, key string) (int64, error) {
	n, err := l.store.Incr(ctx, l.prefix+key, l.window)
	if err != nil {
		return 0, err
	}
	if n >= l.max {
		return 0, nil
	}
	return l.max - n, nil
}

func (l *Lockout) Succeed(ctx context.Context, key string) error {
	return l.store.Reset(ctx, l.prefix+key)
}

// Window is the lockout duration.
func (l *Lockout) Window() time.Duration { return l.window }

// Limiter allows Limit hits per key in each fixed Window.
type Limiter struct {
	store  Store
	limit  int64
	window time.Duration
}

func NewLimiter(store Store, limit int, window time.Duration) *Limiter {
	return &Limiter{store: store, limit: int64(limit), window: window}
}

// Allow counts one hit for key and reports whether it is within the limit.
func (l *Limiter) Allow(ctx context.Context, key string) (bool, error) {
	n, err := l.store.Incr(ctx, "rl:"+key, l.window)
	if err != nil {
		return false, err
	}
	return n <= l.limit, nil
}

func (l *Limiter) Window() time.Duration { return l.window }
