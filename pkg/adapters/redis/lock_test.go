package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/simplebot/pkg/adapters/redis"
	"github.com/stretchr/testify/assert"
)

func TestRedisLocker_LockUnlock(t *testing.T) {
	mr, client := newClient(t)
	locker := redis.NewLocker(client, "test:")
	ctx := context.Background()
	key := "console/conversations/c-1"

	unlock, err := locker.Lock(ctx, key, 5*time.Second)
	assert.NoError(t, err)
	assert.NotNil(t, unlock)

	assert.True(t, mr.Exists("test:lock:"+key), "Lock key should be set in Redis")

	err = unlock(ctx)
	assert.NoError(t, err)

	assert.False(t, mr.Exists("test:lock:"+key), "Lock key should be removed after unlock")
}

func TestRedisLocker_Contention(t *testing.T) {
	mr, client := newClient(t)
	locker1 := redis.NewLocker(client, "test:")
	locker2 := redis.NewLocker(client, "test:") // Same prefix -> contention
	ctx := context.Background()
	key := "shared-conversation"

	unlock1, err := locker1.Lock(ctx, key, 5*time.Second)
	assert.NoError(t, err)
	assert.NotNil(t, unlock1)

	ctxTimeout, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err = locker2.Lock(ctxTimeout, key, 5*time.Second)

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.WithinDuration(t, start.Add(500*time.Millisecond), time.Now(), 150*time.Millisecond, "Should block until timeout")

	err = unlock1(ctx)
	assert.NoError(t, err)

	unlock2, err := locker2.Lock(ctx, key, 5*time.Second)
	assert.NoError(t, err)
	defer unlock2(ctx)

	assert.True(t, mr.Exists("test:lock:"+key))
}

func TestRedisLocker_UnlockDoesNotReleaseForeignLock(t *testing.T) {
	mr, client := newClient(t)
	locker := redis.NewLocker(client, "test:")
	ctx := context.Background()

	unlock, err := locker.Lock(ctx, "k", 5*time.Second)
	assert.NoError(t, err)

	// Simulate expiry and takeover by another owner.
	mr.Set("test:lock:k", "someone-else")

	assert.NoError(t, unlock(ctx))
	got, err := mr.Get("test:lock:k")
	assert.NoError(t, err)
	assert.Equal(t, "someone-else", got)
}
