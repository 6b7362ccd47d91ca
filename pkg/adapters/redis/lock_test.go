package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/triage/pkg/adapters/redis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocker_ExclusiveUntilUnlock(t *testing.T) {
	mr, client := newClient(t)
	locker := redis.NewLocker(client, "test:")
	ctx := context.Background()

	unlock, err := locker.Lock(ctx, "s1", 5*time.Second)
	require.NoError(t, err)
	assert.True(t, mr.Exists("test:lock:s1"))

	// A second holder times out while the first holds the lock.
	short, cancel := context.WithTimeout(ctx, 250*time.Millisecond)
	defer cancel()
	_, err = locker.Lock(short, "s1", 5*time.Second)
	assert.ErrorIs(t, err, redis.ErrLockAcquire)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	require.NoError(t, unlock(ctx))
	assert.False(t, mr.Exists("test:lock:s1"))

	unlock2, err := locker.Lock(ctx, "s1", 5*time.Second)
	require.NoError(t, err)
	require.NoError(t, unlock2(ctx))
}

func TestLocker_UnlockDoesNotStealForeignLock(t *testing.T) {
	mr, client := newClient(t)
	locker := redis.NewLocker(client, "test:")
	ctx := context.Background()

	unlock, err := locker.Lock(ctx, "s1", time.Second)
	require.NoError(t, err)

	// Lock expired and was taken by someone else.
	mr.FastForward(2 * time.Second)
	require.NoError(t, mr.Set("test:lock:s1", "foreign"))

	require.NoError(t, unlock(ctx))
	got, err := mr.Get("test:lock:s1")
	require.NoError(t, err)
	assert.Equal(t, "foreign", got)
}
