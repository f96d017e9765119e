package queue

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"testing"

	"ticket-marketplace/internal/model"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	messages []kafka.Message
	err      error
}

func (w *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func ticketEventKey(e *model.TicketEvent) string {
	return strconv.FormatInt(e.TicketID, 10)
}

func TestKafkaPublisher_Publish(t *testing.T) {
	w := &fakeWriter{}
	p := NewKafkaPublisher(w, ticketEventKey)

	event := &model.TicketEvent{Type: model.TicketEventStatusChanged, TicketID: 12, Status: model.TicketStatusReserved}
	require.NoError(t, p.Publish(context.Background(), event))

	require.Len(t, w.messages, 1)
	assert.Equal(t, []byte("12"), w.messages[0].Key)

	var got model.TicketEvent
	require.NoError(t, json.Unmarshal(w.messages[0].Value, &got))
	assert.Equal(t, model.TicketEventStatusChanged, got.Type)
	assert.Equal(t, model.TicketStatusReserved, got.Status)
}

func TestKafkaPublisher_WriteFails(t *testing.T) {
	w := &fakeWriter{err: errors.New("broker unavailable")}
	p := NewKafkaPublisher(w, ticketEventKey)

	err := p.Publish(context.Background(), &model.TicketEvent{TicketID: 1})

	require.Error(t, err)
	assert.ErrorIs(t, err, w.err)
}
