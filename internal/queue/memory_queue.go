package queue

import (
	"context"
	"errors"
)

var ErrQueueFull = errors.New("queue is full")

type MemoryQueueImpl[T any] struct {
	// 使用 Go channel 來模擬 MQ 隊列
	ch chan *T
}

func NewMemoryQueue[T any](bufferSize int) Queue[T] {
	return &MemoryQueueImpl[T]{
		ch: make(chan *T, bufferSize),
	}
}

// Publish 不會阻塞呼叫端；buffer 滿時回傳 ErrQueueFull
func (q *MemoryQueueImpl[T]) Publish(ctx context.Context, msg *T) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case q.ch <- msg:
		return nil
	default:
		return ErrQueueFull
	}
}

func (q *MemoryQueueImpl[T]) Subscribe(ctx context.Context) (<-chan Delivery[T], error) {
	out := make(chan Delivery[T])

	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case msg := <-q.ch:
				d := Delivery[T]{
					Data: msg,
					Ack:  func() {},
					Nack: func(requeue bool) {
						if requeue {
							// 簡單模擬重回隊列；滿了就丟棄
							select {
							case q.ch <- msg:
							default:
							}
						}
					},
				}

				select {
				case out <- d:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, nil
}
