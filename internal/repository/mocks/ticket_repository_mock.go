package mocks

import (
	"context"
	"time"

	"ticket-marketplace/internal/model"
	"ticket-marketplace/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/mock"
)

type MockTicketRepository struct {
	mock.Mock
}

func NewMockTicketRepository(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockTicketRepository {
	m := &MockTicketRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func ticketOrNil(args mock.Arguments) *model.Ticket {
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(*model.Ticket)
}

func ticketsOrNil(args mock.Arguments) []*model.Ticket {
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]*model.Ticket)
}

func (m *MockTicketRepository) Create(ctx context.Context, ticket *model.Ticket) (*model.Ticket, error) {
	args := m.Called(ctx, ticket)
	return ticketOrNil(args), args.Error(1)
}

func (m *MockTicketRepository) CreateMany(ctx context.Context, tickets []*model.Ticket) (int64, error) {
	args := m.Called(ctx, tickets)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTicketRepository) FindByID(ctx context.Context, id int64) (*model.Ticket, error) {
	args := m.Called(ctx, id)
	return ticketOrNil(args), args.Error(1)
}

func (m *MockTicketRepository) Search(ctx context.Context, cond model.TicketSearchCondition, orders []model.SortOrder, limit, offset int) ([]*model.Ticket, int64, error) {
	args := m.Called(ctx, cond, orders, limit, offset)
	return ticketsOrNil(args), args.Get(1).(int64), args.Error(2)
}

func (m *MockTicketRepository) FindAll(ctx context.Context, cond model.TicketSearchCondition, orders []model.SortOrder) ([]*model.Ticket, error) {
	args := m.Called(ctx, cond, orders)
	return ticketsOrNil(args), args.Error(1)
}

func (m *MockTicketRepository) CountAvailableAfter(ctx context.Context, at time.Time) (int64, error) {
	args := m.Called(ctx, at)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTicketRepository) ExpireAvailable(ctx context.Context, now time.Time) ([]int64, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int64), args.Error(1)
}

func (m *MockTicketRepository) FindByIDForUpdate(ctx context.Context, tx pgx.Tx, id int64) (*model.Ticket, error) {
	args := m.Called(ctx, tx, id)
	return ticketOrNil(args), args.Error(1)
}

func (m *MockTicketRepository) Update(ctx context.Context, tx pgx.Tx, id int64, fields repository.UpdateTicketFields) (*model.Ticket, error) {
	args := m.Called(ctx, tx, id, fields)
	return ticketOrNil(args), args.Error(1)
}

func (m *MockTicketRepository) UpdateStatus(ctx context.Context, tx pgx.Tx, id int64, status model.TicketStatus) (*model.Ticket, error) {
	args := m.Called(ctx, tx, id, status)
	return ticketOrNil(args), args.Error(1)
}

func (m *MockTicketRepository) Delete(ctx context.Context, tx pgx.Tx, id int64) error {
	args := m.Called(ctx, tx, id)
	return args.Error(0)
}
