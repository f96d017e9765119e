package mocks

import (
	"context"
	"time"

	"ticket-marketplace/internal/model"

	"github.com/stretchr/testify/mock"
)

type MockRedisTicketCache struct {
	mock.Mock
}

func NewMockRedisTicketCache(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockRedisTicketCache {
	m := &MockRedisTicketCache{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockRedisTicketCache) Get(ctx context.Context, ticketID int64) (*model.Ticket, error) {
	args := m.Called(ctx, ticketID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Ticket), args.Error(1)
}

func (m *MockRedisTicketCache) Version(ctx context.Context, ticketID int64) (int64, error) {
	args := m.Called(ctx, ticketID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRedisTicketCache) Set(ctx context.Context, ticket *model.Ticket, version int64) (bool, error) {
	args := m.Called(ctx, ticket, version)
	return args.Bool(0), args.Error(1)
}

func (m *MockRedisTicketCache) Invalidate(ctx context.Context, ticketIDs ...int64) error {
	args := m.Called(ctx, ticketIDs)
	return args.Error(0)
}

type MockSweepLock struct {
	mock.Mock
}

func NewMockSweepLock(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockSweepLock {
	m := &MockSweepLock{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockSweepLock) Acquire(ctx context.Context, ttl time.Duration) (string, bool, error) {
	args := m.Called(ctx, ttl)
	return args.String(0), args.Bool(1), args.Error(2)
}

func (m *MockSweepLock) Release(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}
