package mocks

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"
)

type MockBlobStore struct {
	mock.Mock
}

func NewMockBlobStore(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockBlobStore {
	m := &MockBlobStore{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockBlobStore) Put(ctx context.Context, filename string, body io.Reader) (string, error) {
	args := m.Called(ctx, filename, body)
	return args.String(0), args.Error(1)
}

func (m *MockBlobStore) Delete(ctx context.Context, ref string) error {
	args := m.Called(ctx, ref)
	return args.Error(0)
}
