package cache

import (
	"context"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSweepLock(t *testing.T) (*RedisSweepLockImpl, redismock.ClientMock) {
	t.Helper()
	db, mock := redismock.NewClientMock()
	lock := NewRedisSweepLock(db).(*RedisSweepLockImpl)
	lock.newToken = func() string { return "token-1" }
	return lock, mock
}

func TestRedisSweepLock_Acquire(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		lock, mock := newTestSweepLock(t)
		mock.ExpectSetNX(SweepLockKey, "token-1", time.Minute).SetVal(true)

		token, ok, err := lock.Acquire(ctx, time.Minute)

		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "token-1", token)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Held by another replica", func(t *testing.T) {
		lock, mock := newTestSweepLock(t)
		mock.ExpectSetNX(SweepLockKey, "token-1", time.Minute).SetVal(false)

		token, ok, err := lock.Acquire(ctx, time.Minute)

		require.NoError(t, err)
		assert.False(t, ok)
		assert.Empty(t, token)
	})
}

func TestRedisSweepLock_Release(t *testing.T) {
	ctx := context.Background()
	lock, mock := newTestSweepLock(t)

	mock.ExpectEval(releaseLockScript, []string{SweepLockKey}, "token-1").SetVal(int64(1))

	require.NoError(t, lock.Release(ctx, "token-1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
