package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

// storeUnderTest builds each Store implementation on the same fake clock.
func storesUnderTest(clock *fakeClock) map[string]Store {
	mem := NewMemoryStore()
	mem.nowFunc = clock.now
	dynStore := NewDynamoStore(newFakeDynamo(), "counters")
	dynStore.nowFunc = clock.now
	return map[string]Store{"memory": mem, "dynamodb": dynStore}
}

func TestStore_IncrGetReset(t *testing.T) {
	for name, s := range storesUnderTest(newClock()) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			n, err := s.Get(ctx, "k")
			require.NoError(t, err)
			assert.Zero(t, n)

			for want := int64(1); want <= 3; want++ {
				n, err = s.Incr(ctx, "k", time.Minute)
				require.NoError(t, err)
				assert.Equal(t, want, n)
			}

			n, err = s.Get(ctx, "k")
			require.NoError(t, err)
			assert.Equal(t, int64(3), n)

			require.NoError(t, s.Reset(ctx, "k"))
			n, err = s.Get(ctx, "k")
			require.NoError(t, err)
			assert.Zero(t, n)
		})
	}
}

func TestStore_Expiry(t *testing.T) {
	clock := newClock()
	for name, s := range storesUnderTest(clock) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			_, err := s.Incr(ctx, "exp", time.Minute)
			require.NoError(t, err)
			_, err = s.Incr(ctx, "exp", time.Minute)
			require.NoError(t, err)

			clock.advance(2 * time.Minute)

			n, err := s.Get(ctx, "exp")
			require.NoError(t, err)
			assert.Zero(t, n, "expired counter should read as zero")

			n, err = s.Incr(ctx, "exp", time.Minute)
			require.NoError(t, err)
			assert.Equal(t, int64(1), n, "expired counter should restart")
		})
	}
}

func TestDynamoStore_ExpiredWindowIsRewritten(t *testing.T) {
	clock := newClock()
	fake := newFakeDynamo()
	s := NewDynamoStore(fake, "counters")
	s.nowFunc = clock.now
	ctx := context.Background()

	_, err := s.Incr(ctx, "a", time.Second)
	require.NoError(t, err)
	clock.advance(5 * time.Second)
	n, err := s.Incr(ctx, "a", time.Second)
	require.NoError(t, err)

	assert.Equal(t, int64(1), n)
	assert.Equal(t, 1, fake.putCalls)
	assert.Equal(t, 2, fake.updateCalls)
}

func TestLockout(t *testing.T) {
	clock := newClock()
	store := NewMemoryStore()
	store.nowFunc = clock.now
	l := NewLockout(store, 3, 10*time.Minute)
	ctx := context.Background()

	locked, err := l.Locked(ctx, "alex")
	require.NoError(t, err)
	assert.False(t, locked)

	left, err := l.Fail(ctx, "alex")
	require.NoError(t, err)
	assert.Equal(t, int64(2), left)
	_, _ = l.Fail(ctx, "alex")
	left, err = l.Fail(ctx, "alex")
	require.NoError(t, err)
	assert.Zero(t, left)

	locked, err = l.Locked(ctx, "alex")
	require.NoError(t, err)
	assert.True(t, locked)

	locked, err = l.Locked(ctx, "sam")
	require.NoError(t, err)
	assert.False(t, locked, "lockout is per key")

	clock.advance(11 * time.Minute)
	locked, err = l.Locked(ctx, "alex")
	require.NoError(t, err)
	assert.False(t, locked, "lockout ends with the window")

	_, _ = l.Fail(ctx, "alex")
	require.NoError(t, l.Succeed(ctx, "alex"))
	n, _ := store.Get(ctx, "login:alex")
	assert.Zero(t, n)
}

func TestLimiter(t *testing.T) {
	clock := newClock()
	store := NewMemoryStore()
	store.nowFunc = clock.now
	l := NewLimiter(store, 2, time.Minute)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		ok, err := l.Allow(ctx, "1.2.3.4")
		require.NoError(t, err)
		assert.True(t, ok)
	}
	ok, err := l.Allow(ctx, "1.2.3.4")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, _ = l.Allow(ctx, "5.6.7.8")
	assert.True(t, ok)

	clock.advance(time.Minute)
	ok, _ = l.Allow(ctx, "1.2.3.4")
	assert.True(t, ok)
}
