package auth

import (
	"context"
	"testing"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"terravista/internal/model"
)

func timeNowPlusHour() time.Time {
	return time.Now().Add(time.Hour)
}

func notFoundErr(entity string) error {
	return goerrors.New(entity+" not found", goerrors.CategoryNotFound).
		WithCode(goerrors.CodeNotFound)
}

func newTestAuthenticator(users *MockUserStore, tokens *MockTokenStore) *Authenticator {
	svc := NewTokenService(testTokenConfig(), tokens, users, nil)
	return NewAuthenticator(users, svc, nil)
}

func TestAuthenticatorRegister(t *testing.T) {
	t.Run("creates user with hashed password and user role", func(t *testing.T) {
		users := &MockUserStore{}
		tokens := &MockTokenStore{}

		users.On("Create", mock.Anything, mock.MatchedBy(func(u *model.User) bool {
			return u.Email == "ana@example.com" &&
				u.Role == model.RoleUser &&
				u.PasswordHash != "" &&
				u.PasswordHash != "s3cret-password"
		})).Return(&model.User{ID: uuid.New(), Email: "ana@example.com", Role: model.RoleUser}, nil).Once()
		tokens.On("Save", mock.Anything, mock.Anything).Return(&model.Token{}, nil)

		a := newTestAuthenticator(users, tokens)

		user, err := a.Register(context.Background(), "Ana", "ana@example.com", "s3cret-password")
		require.NoError(t, err)
		assert.Equal(t, "ana@example.com", user.Email)

		users.AssertExpectations(t)
	})

	t.Run("duplicate email propagates conflict", func(t *testing.T) {
		users := &MockUserStore{}
		users.On("Create", mock.Anything, mock.Anything).
			Return(nil, goerrors.New("Email is already in use", goerrors.CategoryConflict).WithCode(goerrors.CodeConflict))

		a := newTestAuthenticator(users, &MockTokenStore{})

		_, err := a.Register(context.Background(), "Ana", "ana@example.com", "s3cret-password")
		require.Error(t, err)

		var rich *goerrors.Error
		require.True(t, goerrors.As(err, &rich))
		assert.Equal(t, goerrors.CategoryConflict, rich.Category)
	})
}

func TestAuthenticatorLogin(t *testing.T) {
	hash, err := HashPassword("s3cret-password")
	require.NoError(t, err)

	user := &model.User{
		ID:           uuid.New(),
		Email:        "ana@example.com",
		PasswordHash: hash,
		Role:         model.RoleUser,
	}

	t.Run("correct password issues a pair", func(t *testing.T) {
		users := &MockUserStore{}
		users.On("GetByEmail", mock.Anything, user.Email).Return(user, nil)

		tokens := &MockTokenStore{}
		tokens.On("Save", mock.Anything, mock.MatchedBy(func(rec *model.Token) bool {
			return rec.Type == model.TokenTypeRefresh
		})).Return(&model.Token{}, nil).Once()

		a := newTestAuthenticator(users, tokens)

		got, pair, err := a.Login(context.Background(), user.Email, "s3cret-password")
		require.NoError(t, err)
		assert.Equal(t, user.ID, got.ID)
		assert.NotEmpty(t, pair.Access.Token)
		assert.NotEmpty(t, pair.Refresh.Token)

		tokens.AssertExpectations(t)
	})

	t.Run("wrong password gets invalid credentials and no tokens", func(t *testing.T) {
		users := &MockUserStore{}
		users.On("GetByEmail", mock.Anything, user.Email).Return(user, nil)

		tokens := &MockTokenStore{}

		a := newTestAuthenticator(users, tokens)

		_, _, err := a.Login(context.Background(), user.Email, "wrong-password")
		assert.ErrorIs(t, err, ErrInvalidCredentials)

		tokens.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("unknown email gets the same invalid credentials", func(t *testing.T) {
		users := &MockUserStore{}
		users.On("GetByEmail", mock.Anything, "ghost@example.com").Return(nil, notFoundErr("user"))

		a := newTestAuthenticator(users, &MockTokenStore{})

		_, _, err := a.Login(context.Background(), "ghost@example.com", "whatever")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestAuthenticatorLogout(t *testing.T) {
	t.Run("consumes the persisted refresh token", func(t *testing.T) {
		record := &model.Token{ID: uuid.New(), Token: "signed-refresh", Type: model.TokenTypeRefresh}

		tokens := &MockTokenStore{}
		tokens.On("FindActive", mock.Anything, "signed-refresh", model.TokenTypeRefresh).Return(record, nil)
		tokens.On("Delete", mock.Anything, record.ID).Return(nil).Once()

		a := newTestAuthenticator(&MockUserStore{}, tokens)

		require.NoError(t, a.Logout(context.Background(), "signed-refresh"))
		tokens.AssertExpectations(t)
	})

	t.Run("unknown token gets not found", func(t *testing.T) {
		tokens := &MockTokenStore{}
		tokens.On("FindActive", mock.Anything, "unknown", model.TokenTypeRefresh).Return(nil, notFoundErr("token"))

		a := newTestAuthenticator(&MockUserStore{}, tokens)

		err := a.Logout(context.Background(), "unknown")
		assert.ErrorIs(t, err, ErrTokenNotFound)
	})
}

func TestAuthenticatorRefresh(t *testing.T) {
	user := &model.User{ID: uuid.New(), Email: "ana@example.com", Role: model.RoleUser}

	t.Run("valid refresh rotates the token", func(t *testing.T) {
		users := &MockUserStore{}
		tokens := &MockTokenStore{}
		a := newTestAuthenticator(users, tokens)
		svc := a.TokenService()

		signed, err := svc.Sign(user.ID.String(), timeNowPlusHour(), model.TokenTypeRefresh)
		require.NoError(t, err)

		record := &model.Token{ID: uuid.New(), Token: signed, UserID: user.ID, Type: model.TokenTypeRefresh}

		tokens.On("FindActive", mock.Anything, signed, model.TokenTypeRefresh).Return(record, nil)
		users.On("GetByID", mock.Anything, user.ID).Return(user, nil)
		tokens.On("Delete", mock.Anything, record.ID).Return(nil).Once()
		tokens.On("Save", mock.Anything, mock.Anything).Return(&model.Token{}, nil).Once()

		pair, err := a.Refresh(context.Background(), signed)
		require.NoError(t, err)
		assert.NotEmpty(t, pair.Access.Token)
		assert.NotEqual(t, signed, pair.Refresh.Token)

		tokens.AssertExpectations(t)
	})

	t.Run("consumed refresh token fails with please authenticate", func(t *testing.T) {
		users := &MockUserStore{}
		tokens := &MockTokenStore{}
		a := newTestAuthenticator(users, tokens)

		signed, err := a.TokenService().Sign(user.ID.String(), timeNowPlusHour(), model.TokenTypeRefresh)
		require.NoError(t, err)

		tokens.On("FindActive", mock.Anything, signed, model.TokenTypeRefresh).Return(nil, notFoundErr("token"))

		_, err = a.Refresh(context.Background(), signed)
		assert.ErrorIs(t, err, ErrPleaseAuthenticate)
	})

	t.Run("access token cannot refresh", func(t *testing.T) {
		a := newTestAuthenticator(&MockUserStore{}, &MockTokenStore{})

		signed, err := a.TokenService().Sign(user.ID.String(), timeNowPlusHour(), model.TokenTypeAccess)
		require.NoError(t, err)

		_, err = a.Refresh(context.Background(), signed)
		assert.ErrorIs(t, err, ErrPleaseAuthenticate)
	})

	t.Run("garbage fails with please authenticate", func(t *testing.T) {
		a := newTestAuthenticator(&MockUserStore{}, &MockTokenStore{})

		_, err := a.Refresh(context.Background(), "not-a-jwt")
		assert.ErrorIs(t, err, ErrPleaseAuthenticate)
	})
}

func TestAuthenticatorResetPassword(t *testing.T) {
	user := &model.User{ID: uuid.New(), Email: "ana@example.com"}

	t.Run("happy path updates hash and consumes tokens", func(t *testing.T) {
		users := &MockUserStore{}
		tokens := &MockTokenStore{}
		a := newTestAuthenticator(users, tokens)

		signed, err := a.TokenService().Sign(user.ID.String(), timeNowPlusHour(), model.TokenTypeResetPassword)
		require.NoError(t, err)

		record := &model.Token{ID: uuid.New(), Token: signed, UserID: user.ID, Type: model.TokenTypeResetPassword}

		tokens.On("FindActive", mock.Anything, signed, model.TokenTypeResetPassword).Return(record, nil)
		users.On("GetByID", mock.Anything, user.ID).Return(user, nil)
		users.On("UpdatePassword", mock.Anything, user.ID, mock.AnythingOfType("string")).Return(nil).Once()
		tokens.On("DeleteByUserAndType", mock.Anything, user.ID, model.TokenTypeResetPassword).Return(nil).Once()

		require.NoError(t, a.ResetPassword(context.Background(), signed, "new-password-123"))

		users.AssertExpectations(t)
		tokens.AssertExpectations(t)
	})

	t.Run("unknown token collapses to password reset failed", func(t *testing.T) {
		tokens := &MockTokenStore{}
		tokens.On("FindActive", mock.Anything, mock.Anything, model.TokenTypeResetPassword).Return(nil, notFoundErr("token"))

		a := newTestAuthenticator(&MockUserStore{}, tokens)

		err := a.ResetPassword(context.Background(), "unknown", "new-password-123")
		assert.ErrorIs(t, err, ErrPasswordResetFailed)
	})
}

func TestAuthenticatorOAuthLogin(t *testing.T) {
	t.Run("missing profile fields get bad input", func(t *testing.T) {
		a := newTestAuthenticator(&MockUserStore{}, &MockTokenStore{})

		_, _, err := a.OAuthLogin(context.Background(), "", "ana@example.com")
		require.Error(t, err)

		var rich *goerrors.Error
		require.True(t, goerrors.As(err, &rich))
		assert.Equal(t, goerrors.CategoryBadInput, rich.Category)
	})

	t.Run("creates verified account with placeholder hash", func(t *testing.T) {
		users := &MockUserStore{}
		tokens := &MockTokenStore{}

		users.On("GetOrCreate", mock.Anything, mock.MatchedBy(func(u *model.User) bool {
			return u.Email == "ana@example.com" && u.EmailValidated && u.PasswordHash != ""
		})).Return(&model.User{ID: uuid.New(), Email: "ana@example.com", Role: model.RoleUser}, nil).Once()
		tokens.On("Save", mock.Anything, mock.Anything).Return(&model.Token{}, nil)

		a := newTestAuthenticator(users, tokens)

		_, pair, err := a.OAuthLogin(context.Background(), "Ana", "ana@example.com")
		require.NoError(t, err)
		assert.NotEmpty(t, pair.Access.Token)

		users.AssertExpectations(t)
	})
}
