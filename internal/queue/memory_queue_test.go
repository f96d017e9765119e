package queue_test

import (
	"context"
	"testing"
	"time"

	"ticket-marketplace/internal/model"
	"ticket-marketplace/internal/queue"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receive(t *testing.T, ch <-chan queue.Delivery[model.TicketEvent]) queue.Delivery[model.TicketEvent] {
	t.Helper()
	select {
	case d, ok := <-ch:
		require.True(t, ok, "channel closed")
		return d
	case <-time.After(time.Second):
		t.Fatal("超時！沒有收到消息")
	}
	return queue.Delivery[model.TicketEvent]{}
}

func TestMemoryQueue_PublishAndSubscribe(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	q := queue.NewMemoryQueue[model.TicketEvent](10)
	ch, err := q.Subscribe(ctx)
	require.NoError(t, err)

	event := &model.TicketEvent{Type: model.TicketEventCreated, TicketID: 1}
	require.NoError(t, q.Publish(ctx, event))

	d := receive(t, ch)
	assert.Equal(t, event, d.Data)
	d.Ack()
}

func TestMemoryQueue_NackRequeue(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	q := queue.NewMemoryQueue[model.TicketEvent](10)
	ch, err := q.Subscribe(ctx)
	require.NoError(t, err)

	require.NoError(t, q.Publish(ctx, &model.TicketEvent{Type: model.TicketEventDeleted, TicketID: 5}))

	first := receive(t, ch)
	first.Nack(true)

	second := receive(t, ch)
	assert.Equal(t, int64(5), second.Data.TicketID)
}

func TestMemoryQueue_FullBuffer(t *testing.T) {
	ctx := context.Background()
	q := queue.NewMemoryQueue[model.TicketEvent](1)

	require.NoError(t, q.Publish(ctx, &model.TicketEvent{TicketID: 1}))
	err := q.Publish(ctx, &model.TicketEvent{TicketID: 2})

	assert.ErrorIs(t, err, queue.ErrQueueFull)
}

func TestMemoryQueue_ClosesOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	q := queue.NewMemoryQueue[model.TicketEvent](1)
	ch, err := q.Subscribe(ctx)
	require.NoError(t, err)

	cancel()

	select {
	case _, ok := <-ch:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("channel 沒有關閉")
	}
}
