package auth

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"terravista/internal/model"
)

type MockUserStore struct {
	mock.Mock
}

func (m *MockUserStore) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	args := m.Called(ctx, id)
	if u := args.Get(0); u != nil {
		return u.(*model.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserStore) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if u := args.Get(0); u != nil {
		return u.(*model.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserStore) Create(ctx context.Context, user *model.User) (*model.User, error) {
	args := m.Called(ctx, user)
	if u := args.Get(0); u != nil {
		return u.(*model.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserStore) GetOrCreate(ctx context.Context, user *model.User) (*model.User, error) {
	args := m.Called(ctx, user)
	if u := args.Get(0); u != nil {
		return u.(*model.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserStore) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	args := m.Called(ctx, id, passwordHash)
	return args.Error(0)
}

func (m *MockUserStore) MarkEmailVerified(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockTokenStore struct {
	mock.Mock
}

func (m *MockTokenStore) Save(ctx context.Context, record *model.Token) (*model.Token, error) {
	args := m.Called(ctx, record)
	if t := args.Get(0); t != nil {
		return t.(*model.Token), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockTokenStore) FindActive(ctx context.Context, token string, typ model.TokenType) (*model.Token, error) {
	args := m.Called(ctx, token, typ)
	if t := args.Get(0); t != nil {
		return t.(*model.Token), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockTokenStore) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockTokenStore) DeleteByUserAndType(ctx context.Context, userID uuid.UUID, typ model.TokenType) error {
	args := m.Called(ctx, userID, typ)
	return args.Error(0)
}
