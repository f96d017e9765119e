package mocks

import (
	"context"

	"ticket-marketplace/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/mock"
)

type MockFavoriteRepository struct {
	mock.Mock
}

func NewMockFavoriteRepository(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockFavoriteRepository {
	m := &MockFavoriteRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockFavoriteRepository) Exists(ctx context.Context, userID, ticketID int64) (bool, error) {
	args := m.Called(ctx, userID, ticketID)
	return args.Bool(0), args.Error(1)
}

func (m *MockFavoriteRepository) ListTicketsByUser(ctx context.Context, userID int64) ([]*model.Ticket, error) {
	args := m.Called(ctx, userID)
	return ticketsOrNil(args), args.Error(1)
}

func (m *MockFavoriteRepository) Remove(ctx context.Context, userID, ticketID int64) (bool, error) {
	args := m.Called(ctx, userID, ticketID)
	return args.Bool(0), args.Error(1)
}

func (m *MockFavoriteRepository) Delete(ctx context.Context, tx pgx.Tx, userID, ticketID int64) (bool, error) {
	args := m.Called(ctx, tx, userID, ticketID)
	return args.Bool(0), args.Error(1)
}

func (m *MockFavoriteRepository) InsertIfAbsent(ctx context.Context, tx pgx.Tx, userID, ticketID int64) (bool, error) {
	args := m.Called(ctx, tx, userID, ticketID)
	return args.Bool(0), args.Error(1)
}
