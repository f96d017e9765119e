package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"ticket-marketplace/internal/model"

	"github.com/redis/go-redis/v9"
)

// ErrCacheMiss 快取中沒有該票券
var ErrCacheMiss = errors.New("cache miss")

// versionTTL 版本號只需要比一次讀取的時間長
const versionTTL = 24 * time.Hour

// 版本號與讀取時相同才寫入；不存在的版本號視為 0
const setIfVersionScript = `
	local current = redis.call('GET', KEYS[2]) or '0'
	if current ~= ARGV[3] then
		return 0
	end
	redis.call('SET', KEYS[1], ARGV[1], 'PX', ARGV[2])
	return 1
`

// KEYS 兩兩一組：詳情 key、版本 key
const invalidateScript = `
	for i = 1, #KEYS, 2 do
		redis.call('DEL', KEYS[i])
		redis.call('INCR', KEYS[i + 1])
		redis.call('PEXPIRE', KEYS[i + 1], ARGV[1])
	end
	return #KEYS / 2
`

type RedisTicketCache interface {
	// 讀取：取得快取的票券詳情，沒有時回傳 ErrCacheMiss
	Get(ctx context.Context, ticketID int64) (*model.Ticket, error)
	// 版本號：讀資料庫之前先取得，寫入快取時帶回
	Version(ctx context.Context, ticketID int64) (int64, error)
	// 寫入：版本號沒有變才以 TTL 快取票券詳情，回傳是否寫入
	Set(ctx context.Context, ticket *model.Ticket, version int64) (bool, error)
	// 失效：票券異動後刪除快取並遞增版本號
	Invalidate(ctx context.Context, ticketIDs ...int64) error
}

type RedisTicketCacheImpl struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisTicketCache(client *redis.Client, ttl time.Duration) RedisTicketCache {
	return &RedisTicketCacheImpl{
		client: client,
		ttl:    ttl,
	}
}

// 票券詳情 key
func ticketKey(ticketID int64) string {
	return fmt.Sprintf("ticket:%d:detail", ticketID)
}

func versionKey(ticketID int64) string {
	return fmt.Sprintf("ticket:%d:version", ticketID)
}

func (c *RedisTicketCacheImpl) Get(ctx context.Context, ticketID int64) (*model.Ticket, error) {
	data, err := c.client.Get(ctx, ticketKey(ticketID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, err
	}

	var ticket model.Ticket
	if err := json.Unmarshal(data, &ticket); err != nil {
		return nil, fmt.Errorf("decode cached ticket %d: %w", ticketID, err)
	}

	return &ticket, nil
}

func (c *RedisTicketCacheImpl) Version(ctx context.Context, ticketID int64) (int64, error) {
	version, err := c.client.Get(ctx, versionKey(ticketID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	return version, nil
}

func (c *RedisTicketCacheImpl) Set(ctx context.Context, ticket *model.Ticket, version int64) (bool, error) {
	data, err := json.Marshal(ticket)
	if err != nil {
		return false, fmt.Errorf("encode ticket %d: %w", ticket.ID, err)
	}

	stored, err := c.client.Eval(ctx, setIfVersionScript,
		[]string{ticketKey(ticket.ID), versionKey(ticket.ID)},
		string(data), c.ttl.Milliseconds(), strconv.FormatInt(version, 10),
	).Int64()
	if err != nil {
		return false, err
	}

	return stored == 1, nil
}

func (c *RedisTicketCacheImpl) Invalidate(ctx context.Context, ticketIDs ...int64) error {
	if len(ticketIDs) == 0 {
		return nil
	}

	keys := make([]string, 0, 2*len(ticketIDs))
	for _, id := range ticketIDs {
		keys = append(keys, ticketKey(id), versionKey(id))
	}

	return c.client.Eval(ctx, invalidateScript, keys, versionTTL.Milliseconds()).Err()
}
