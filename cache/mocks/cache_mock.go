package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type MockCache struct {
	mock.Mock
}

func (m *MockCache) GetNoteList(ctx context.Context, userId string) ([]byte, error) {
	args := m.Called(ctx, userId)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockCache) SetNoteList(ctx context.Context, userId string, data []byte) error {
	args := m.Called(ctx, userId, data)
	return args.Error(0)
}

func (m *MockCache) InvalidateNoteList(ctx context.Context, userId string) error {
	args := m.Called(ctx, userId)
	return args.Error(0)
}
