package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"
)

// messageWriter 是 *kafka.Writer 用到的部分
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

type KafkaPublisherImpl[T any] struct {
	writer messageWriter
	key    func(*T) string
}

// NewKafkaPublisher key 決定 partition；同一個 key 的消息保持順序
func NewKafkaPublisher[T any](writer messageWriter, key func(*T) string) Publisher[T] {
	return &KafkaPublisherImpl[T]{
		writer: writer,
		key:    key,
	}
}

func (p *KafkaPublisherImpl[T]) Publish(ctx context.Context, msg *T) error {
	value, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(p.key(msg)),
		Value: value,
	})
	if err != nil {
		return fmt.Errorf("write kafka message: %w", err)
	}
	return nil
}
