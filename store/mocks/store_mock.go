package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/zlutov/notepad/models"
)

type MockStore struct {
	mock.Mock
}

func (m *MockStore) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	args := m.Called(ctx, user)
	return args.Get(0).(models.User), args.Error(1)
}

func (m *MockStore) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(models.User), args.Error(1)
}

func (m *MockStore) GetUserById(ctx context.Context, userId string) (models.User, error) {
	args := m.Called(ctx, userId)
	return args.Get(0).(models.User), args.Error(1)
}

func (m *MockStore) CreateNote(ctx context.Context, note models.Note) (models.Note, error) {
	args := m.Called(ctx, note)
	return args.Get(0).(models.Note), args.Error(1)
}

func (m *MockStore) UpdateNote(ctx context.Context, note models.Note, fields []string) (models.Note, error) {
	args := m.Called(ctx, note, fields)
	return args.Get(0).(models.Note), args.Error(1)
}

func (m *MockStore) DeleteNote(ctx context.Context, userId string, noteId string) error {
	args := m.Called(ctx, userId, noteId)
	return args.Error(0)
}

func (m *MockStore) ListNotes(ctx context.Context, userId string) ([]models.Note, error) {
	args := m.Called(ctx, userId)
	return args.Get(0).([]models.Note), args.Error(1)
}
