package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tckdb/tckdb-go/internal/infrastructure/monitoring/logging"
)

func TestMutex_TryLock(t *testing.T) {
	_, client := newTestClient(t)
	ctx := context.Background()

	first := NewMutex(client, logging.NewNopLogger(), "migrations")
	second := NewMutex(client, logging.NewNopLogger(), "migrations")

	acquired, err := first.TryLock(ctx)
	require.NoError(t, err)
	assert.True(t, acquired)

	acquired, err = second.TryLock(ctx)
	require.NoError(t, err)
	assert.False(t, acquired)

	require.NoError(t, first.Unlock(ctx))

	acquired, err = second.TryLock(ctx)
	require.NoError(t, err)
	assert.True(t, acquired)
}

func TestMutex_UnlockByNonOwner(t *testing.T) {
	_, client := newTestClient(t)
	ctx := context.Background()

	owner := NewMutex(client, logging.NewNopLogger(), "migrations")
	other := NewMutex(client, logging.NewNopLogger(), "migrations")

	acquired, err := owner.TryLock(ctx)
	require.NoError(t, err)
	require.True(t, acquired)

	assert.ErrorIs(t, other.Unlock(ctx), ErrLockNotHeld)

	// The owner can still release it.
	assert.NoError(t, owner.Unlock(ctx))
}

func TestMutex_LockRetriesThenGivesUp(t *testing.T) {
	_, client := newTestClient(t)
	ctx := context.Background()

	holder := NewMutex(client, logging.NewNopLogger(), "migrations")
	acquired, err := holder.TryLock(ctx)
	require.NoError(t, err)
	require.True(t, acquired)

	contender := NewMutex(client, logging.NewNopLogger(), "migrations",
		WithRetryCount(2), WithRetryDelay(5*time.Millisecond))
	assert.ErrorIs(t, contender.Lock(ctx), ErrLockNotAcquired)
}

func TestMutex_Extend(t *testing.T) {
	mr, client := newTestClient(t)
	ctx := context.Background()

	mutex := NewMutex(client, logging.NewNopLogger(), "migrations", WithLockTTL(time.Second))
	acquired, err := mutex.TryLock(ctx)
	require.NoError(t, err)
	require.True(t, acquired)

	extended, err := mutex.Extend(ctx, 10*time.Second)
	require.NoError(t, err)
	assert.True(t, extended)

	ttl, err := mutex.TTL(ctx)
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Second)

	// A stranger's token cannot extend the lock.
	mr.Set("tckdb:lock:migrations", "someone-else")
	extended, err = mutex.Extend(ctx, 10*time.Second)
	require.NoError(t, err)
	assert.False(t, extended)
}
