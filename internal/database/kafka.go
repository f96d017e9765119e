package database

import (
	"errors"
	"time"

	"ticket-marketplace/config"

	"github.com/segmentio/kafka-go"
)

// InitKafkaWriter 建立 ticket 事件用的 Kafka writer；連線在第一次寫入時才建立
func InitKafkaWriter(config *config.KafkaConfig) (*kafka.Writer, error) {
	if len(config.Brokers) == 0 {
		return nil, errors.New("kafka: no brokers configured")
	}
	if config.Topic == "" {
		return nil, errors.New("kafka: topic is required")
	}

	return &kafka.Writer{
		Addr:                   kafka.TCP(config.Brokers...),
		Topic:                  config.Topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		BatchTimeout:           50 * time.Millisecond,
		WriteTimeout:           5 * time.Second,
		AllowAutoTopicCreation: true,
	}, nil
}
