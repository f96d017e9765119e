package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	serviceMocks "ticket-marketplace/internal/service/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestExpirationSweeper_UntilNextTick(t *testing.T) {
	s := NewExpirationSweeper(nil, time.Minute)
	s.now = func() time.Time { return time.Date(2026, 10, 18, 10, 0, 7, 0, time.UTC) }

	assert.Equal(t, 53*time.Second, s.untilNextTick())

	s.now = func() time.Time { return time.Date(2026, 10, 18, 10, 1, 0, 0, time.UTC) }
	assert.Equal(t, time.Minute, s.untilNextTick())
}

func TestExpirationSweeper_Run(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	svc := serviceMocks.NewMockExpirationService(t)
	calls := make(chan struct{}, 10)
	// 第一次失敗不會讓 sweeper 停止
	svc.On("ExpireTickets", mock.Anything).Return(0, errors.New("db down")).Once()
	svc.On("ExpireTickets", mock.Anything).Return(2, nil).
		Run(func(mock.Arguments) {
			select {
			case calls <- struct{}{}:
			default:
			}
		})

	s := NewExpirationSweeper(svc, 20*time.Millisecond)
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	select {
	case <-calls:
	case <-time.After(2 * time.Second):
		t.Fatal("sweeper did not run again after a failed sweep")
	}

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop after cancel")
	}
}
