package mocks

import (
	"context"
	"sync"
)

// RecordingPublisher 記錄所有發送的消息；Err 不為 nil 時每次發送都失敗
type RecordingPublisher[T any] struct {
	mu       sync.Mutex
	Messages []*T
	Err      error
}

func (p *RecordingPublisher[T]) Publish(ctx context.Context, msg *T) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Err != nil {
		return p.Err
	}
	p.Messages = append(p.Messages, msg)
	return nil
}

func (p *RecordingPublisher[T]) Published() []*T {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]*T, len(p.Messages))
	copy(out, p.Messages)
	return out
}
