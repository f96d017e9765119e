package cache

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const SweepLockKey = "tickets:expiration-sweep:lock"

// 只有持有者（token 相同）才能釋放鎖
const releaseLockScript = `
	if redis.call('GET', KEYS[1]) == ARGV[1] then
		return redis.call('DEL', KEYS[1])
	end
	return 0
`

type SweepLock interface {
	// 取得鎖：成功時回傳持有 token
	Acquire(ctx context.Context, ttl time.Duration) (string, bool, error)
	// 釋放鎖：token 不符時不做任何事
	Release(ctx context.Context, token string) error
}

type RedisSweepLockImpl struct {
	client   *redis.Client
	key      string
	newToken func() string
}

func NewRedisSweepLock(client *redis.Client) SweepLock {
	return &RedisSweepLockImpl{
		client:   client,
		key:      SweepLockKey,
		newToken: uuid.NewString,
	}
}

func (l *RedisSweepLockImpl) Acquire(ctx context.Context, ttl time.Duration) (string, bool, error) {
	token := l.newToken()

	ok, err := l.client.SetNX(ctx, l.key, token, ttl).Result()
	if err != nil {
		return "", false, err
	}
	if !ok {
		return "", false, nil
	}

	return token, true, nil
}

func (l *RedisSweepLockImpl) Release(ctx context.Context, token string) error {
	return l.client.Eval(ctx, releaseLockScript, []string{l.key}, token).Err()
}
