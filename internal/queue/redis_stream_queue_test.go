package queue

import (
	"context"
	"errors"
	"testing"

	"ticket-marketplace/internal/model"

	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testStream = "deal-events:stream"
	testGroup  = "ticket-deal-workers"
)

func newTestStreamQueue(t *testing.T) (*RedisStreamQueueImpl[model.DealEvent], redismock.ClientMock) {
	t.Helper()
	db, mock := redismock.NewClientMock()
	mock.ExpectXGroupCreateMkStream(testStream, testGroup, "0").SetVal("OK")

	q, err := NewRedisStreamQueue[model.DealEvent](context.Background(), db, testStream, testGroup, "test-consumer", nil)
	require.NoError(t, err)

	return q.(*RedisStreamQueueImpl[model.DealEvent]), mock
}

func TestNewRedisStreamQueue(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		q, mock := newTestStreamQueue(t)
		assert.Equal(t, "worker:test-consumer", q.consumerName)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("existing group is fine", func(t *testing.T) {
		db, mock := redismock.NewClientMock()
		mock.ExpectXGroupCreateMkStream(testStream, testGroup, "0").
			SetErr(errors.New("BUSYGROUP Consumer Group name already exists"))

		_, err := NewRedisStreamQueue[model.DealEvent](context.Background(), db, testStream, testGroup, "", nil)
		require.NoError(t, err)
	})

	t.Run("failed", func(t *testing.T) {
		db, mock := redismock.NewClientMock()
		mock.ExpectXGroupCreateMkStream(testStream, testGroup, "0").SetErr(errors.New("connection refused"))

		_, err := NewRedisStreamQueue[model.DealEvent](context.Background(), db, testStream, testGroup, "", nil)
		require.Error(t, err)
	})
}

func TestRedisStreamQueue_Publish(t *testing.T) {
	q, mock := newTestStreamQueue(t)

	mock.ExpectXAdd(&redis.XAddArgs{
		Stream: testStream,
		ID:     "*",
		Values: map[string]interface{}{payloadField: `{"eventType":"deal.confirmed","dealId":3,"ticketId":9}`},
	}).SetVal("1-0")

	err := q.Publish(context.Background(), &model.DealEvent{EventType: model.DealEventConfirmed, DealID: 3, TicketID: 9})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisStreamQueue_NewDelivery(t *testing.T) {
	ctx := context.Background()

	t.Run("decodes payload and acks", func(t *testing.T) {
		q, mock := newTestStreamQueue(t)
		mock.ExpectXAck(testStream, testGroup, "1-0").SetVal(1)

		d := q.newDelivery(ctx, redis.XMessage{
			ID:     "1-0",
			Values: map[string]interface{}{payloadField: `{"eventType":"deal.reserved","dealId":1,"ticketId":2}`},
		})

		require.NotNil(t, d)
		assert.Equal(t, model.DealEventReserved, d.Data.EventType)
		assert.Equal(t, int64(2), d.Data.TicketID)
		d.Ack()
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("nack with requeue leaves message pending", func(t *testing.T) {
		q, mock := newTestStreamQueue(t)

		d := q.newDelivery(ctx, redis.XMessage{
			ID:     "1-0",
			Values: map[string]interface{}{payloadField: `{"eventType":"deal.reserved","dealId":1,"ticketId":2}`},
		})

		require.NotNil(t, d)
		d.Nack(true)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("nack without requeue acks", func(t *testing.T) {
		q, mock := newTestStreamQueue(t)
		mock.ExpectXAck(testStream, testGroup, "1-0").SetVal(1)

		d := q.newDelivery(ctx, redis.XMessage{
			ID:     "1-0",
			Values: map[string]interface{}{payloadField: `{"eventType":"deal.reserved","dealId":1,"ticketId":2}`},
		})

		require.NotNil(t, d)
		d.Nack(false)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("malformed payload is dropped", func(t *testing.T) {
		q, mock := newTestStreamQueue(t)
		mock.ExpectXAck(testStream, testGroup, "2-0").SetVal(1)

		d := q.newDelivery(ctx, redis.XMessage{
			ID:     "2-0",
			Values: map[string]interface{}{payloadField: `not-json`},
		})

		assert.Nil(t, d)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRedisStreamQueue_PoisonMessage(t *testing.T) {
	ctx := context.Background()
	q, mock := newTestStreamQueue(t)

	mock.ExpectXPendingExt(&redis.XPendingExtArgs{
		Stream: testStream,
		Group:  testGroup,
		Start:  "3-0",
		End:    "3-0",
		Count:  1,
	}).SetVal([]redis.XPendingExt{{ID: "3-0", RetryCount: 5}})
	mock.ExpectXAck(testStream, testGroup, "3-0").SetVal(1)

	assert.False(t, q.shouldProcessMessage(ctx, "3-0"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
