package mocks

import (
	"context"

	"ticket-marketplace/internal/model"

	"github.com/stretchr/testify/mock"
)

type testingT interface {
	mock.TestingT
	Cleanup(func())
}

type MockTicketService struct {
	mock.Mock
}

func NewMockTicketService(t testingT) *MockTicketService {
	m := &MockTicketService{}
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

func (m *MockTicketService) CreateTicket(ctx context.Context, ownerID int64, params model.CreateTicketParams) (*model.Ticket, error) {
	args := m.Called(ctx, ownerID, params)
	return ticketOrNil(args), args.Error(1)
}

func (m *MockTicketService) GetTicket(ctx context.Context, id int64) (*model.Ticket, error) {
	args := m.Called(ctx, id)
	return ticketOrNil(args), args.Error(1)
}

func (m *MockTicketService) UpdateTicket(ctx context.Context, id, callerID int64, params model.UpdateTicketParams) (*model.Ticket, error) {
	args := m.Called(ctx, id, callerID, params)
	return ticketOrNil(args), args.Error(1)
}

func (m *MockTicketService) DeleteTicket(ctx context.Context, id, callerID int64) error {
	args := m.Called(ctx, id, callerID)
	return args.Error(0)
}

func (m *MockTicketService) ChangeStatus(ctx context.Context, id, callerID int64, statusName string) (*model.Ticket, error) {
	args := m.Called(ctx, id, callerID, statusName)
	return ticketOrNil(args), args.Error(1)
}

func (m *MockTicketService) ApplyDealEvent(ctx context.Context, event *model.DealEvent) (*model.Ticket, error) {
	args := m.Called(ctx, event)
	return ticketOrNil(args), args.Error(1)
}

func (m *MockTicketService) SeedTickets(ctx context.Context, ownerID int64) (int64, error) {
	args := m.Called(ctx, ownerID)
	return args.Get(0).(int64), args.Error(1)
}

type MockTicketSearchService struct {
	mock.Mock
}

func NewMockTicketSearchService(t testingT) *MockTicketSearchService {
	m := &MockTicketSearchService{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockTicketSearchService) Search(
	ctx context.Context,
	cond model.TicketSearchCondition,
	page, size int,
	sortBy, sortDirection string,
) (*model.Page[*model.Ticket], error) {
	args := m.Called(ctx, cond, page, size, sortBy, sortDirection)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Page[*model.Ticket]), args.Error(1)
}

func (m *MockTicketSearchService) SearchAll(ctx context.Context, cond model.TicketSearchCondition) ([]*model.Ticket, error) {
	args := m.Called(ctx, cond)
	return ticketsOrNil(args), args.Error(1)
}

func (m *MockTicketSearchService) SellerTickets(ctx context.Context, ownerID int64) ([]*model.Ticket, error) {
	args := m.Called(ctx, ownerID)
	return ticketsOrNil(args), args.Error(1)
}

type MockFavoriteService struct {
	mock.Mock
}

func NewMockFavoriteService(t testingT) *MockFavoriteService {
	m := &MockFavoriteService{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockFavoriteService) Toggle(ctx context.Context, userID, ticketID int64) (bool, error) {
	args := m.Called(ctx, userID, ticketID)
	return args.Bool(0), args.Error(1)
}

func (m *MockFavoriteService) IsFavorite(ctx context.Context, userID, ticketID int64) (bool, error) {
	args := m.Called(ctx, userID, ticketID)
	return args.Bool(0), args.Error(1)
}

func (m *MockFavoriteService) ListFavorites(ctx context.Context, userID int64) ([]*model.Ticket, error) {
	args := m.Called(ctx, userID)
	return ticketsOrNil(args), args.Error(1)
}

func (m *MockFavoriteService) RemoveFavorite(ctx context.Context, userID, ticketID int64) (bool, error) {
	args := m.Called(ctx, userID, ticketID)
	return args.Bool(0), args.Error(1)
}

type MockExpirationService struct {
	mock.Mock
}

func NewMockExpirationService(t testingT) *MockExpirationService {
	m := &MockExpirationService{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockExpirationService) ExpireTickets(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}
