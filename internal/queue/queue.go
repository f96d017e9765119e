package queue

import "context"

type Delivery[T any] struct {
	Data *T
	Ack  func()
	Nack func(requeue bool)
}

type Publisher[T any] interface {
	// 發送消息；呼叫端不等待消費結果
	Publish(ctx context.Context, msg *T) error
}

type Queue[T any] interface {
	Publisher[T]
	// 訂閱隊列；ctx 結束時關閉 channel
	Subscribe(ctx context.Context) (<-chan Delivery[T], error)
}
