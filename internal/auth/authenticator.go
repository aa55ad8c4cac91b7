package auth

import (
	"context"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"

	"terravista/internal/model"
)

// Authenticator orchestrates the externally visible auth flows on top
// of the credential store and the token service.
type Authenticator struct {
	users  UserStore
	tokens *TokenService
	logger Logger
}

// NewAuthenticator returns a new Authenticator
func NewAuthenticator(users UserStore, tokens *TokenService, logger Logger) *Authenticator {
	if logger == nil {
		logger = defLogger{}
	}
	return &Authenticator{
		users:  users,
		tokens: tokens,
		logger: logger,
	}
}

// TokenService returns the token service used by this Authenticator
func (a *Authenticator) TokenService() *TokenService {
	return a.tokens
}

// Register hashes the password and creates the user. A token pair is
// issued and discarded; only a success envelope goes back to the caller.
func (a *Authenticator) Register(ctx context.Context, name, email, password string) (*model.User, error) {
	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	user, err := a.users.Create(ctx, &model.User{
		ID:           uuid.New(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         model.RoleUser,
	})
	if err != nil {
		a.logger.Error("Register create user: %v", err)
		return nil, err
	}

	if _, err := a.tokens.GenerateAuthTokens(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// Login verifies the password against the stored hash and issues a
// fresh token pair. Unknown email and wrong password are not
// distinguished for the caller.
func (a *Authenticator) Login(ctx context.Context, email, password string) (*model.User, *TokenPair, error) {
	user, err := a.users.GetByEmail(ctx, email)
	if err != nil {
		if IsNotFound(err) {
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, err
	}

	if err := ComparePasswordAndHash(password, user.PasswordHash); err != nil {
		a.logger.Info("Login password mismatch for %s", email)
		return nil, nil, ErrInvalidCredentials
	}

	pair, err := a.tokens.GenerateAuthTokens(ctx, user)
	if err != nil {
		return nil, nil, err
	}

	return user, pair, nil
}

// Logout consumes the persisted refresh token matching the literal
// string. Unknown tokens are a NotFound, not a silent no-op.
func (a *Authenticator) Logout(ctx context.Context, refreshToken string) error {
	record, err := a.tokens.VerifyPersisted(ctx, refreshToken, model.TokenTypeRefresh)
	if err != nil {
		if IsNotFound(err) {
			return ErrTokenNotFound
		}
		return err
	}

	return a.tokens.Consume(ctx, record)
}

// Refresh exchanges a refresh token for a new pair, consuming the old
// token. Every failure on this path collapses into a single
// "Please authenticate" so callers cannot probe which step failed.
func (a *Authenticator) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	if _, err := a.tokens.Verify(refreshToken, model.TokenTypeRefresh); err != nil {
		a.logger.Info("Refresh signature verification failed: %v", err)
		return nil, ErrPleaseAuthenticate
	}

	record, err := a.tokens.VerifyPersisted(ctx, refreshToken, model.TokenTypeRefresh)
	if err != nil {
		a.logger.Info("Refresh token lookup failed: %v", err)
		return nil, ErrPleaseAuthenticate
	}

	user, err := a.users.GetByID(ctx, record.UserID)
	if err != nil {
		a.logger.Info("Refresh user lookup failed: %v", err)
		return nil, ErrPleaseAuthenticate
	}

	if err := a.tokens.Consume(ctx, record); err != nil {
		a.logger.Error("Refresh token consume failed: %v", err)
		return nil, ErrPleaseAuthenticate
	}

	pair, err := a.tokens.GenerateAuthTokens(ctx, user)
	if err != nil {
		return nil, ErrPleaseAuthenticate
	}

	return pair, nil
}

// ForgotPassword issues a reset-password token for the email's owner
func (a *Authenticator) ForgotPassword(ctx context.Context, email string) (string, error) {
	return a.tokens.GenerateResetPasswordToken(ctx, email)
}

// ResetPassword consumes a reset token and replaces the user's
// password hash. All failures collapse into a single outcome.
func (a *Authenticator) ResetPassword(ctx context.Context, resetToken, newPassword string) error {
	record, err := a.tokens.VerifyPersisted(ctx, resetToken, model.TokenTypeResetPassword)
	if err != nil {
		a.logger.Info("ResetPassword token lookup failed: %v", err)
		return ErrPasswordResetFailed
	}

	user, err := a.users.GetByID(ctx, record.UserID)
	if err != nil {
		return ErrPasswordResetFailed
	}

	hash, err := HashPassword(newPassword)
	if err != nil {
		return ErrPasswordResetFailed
	}

	if err := a.users.UpdatePassword(ctx, user.ID, hash); err != nil {
		a.logger.Error("ResetPassword update failed: %v", err)
		return ErrPasswordResetFailed
	}

	if err := a.tokens.ConsumeAll(ctx, user.ID, model.TokenTypeResetPassword); err != nil {
		a.logger.Error("ResetPassword token cleanup failed: %v", err)
		return ErrPasswordResetFailed
	}

	return nil
}

// SendVerificationEmail issues a verify-email token for the email's
// owner. Delivery happens out of band.
func (a *Authenticator) SendVerificationEmail(ctx context.Context, email string) (string, error) {
	user, err := a.users.GetByEmail(ctx, email)
	if err != nil {
		if IsNotFound(err) {
			return "", ErrEmailNotFound
		}
		return "", err
	}

	return a.tokens.GenerateVerifyEmailToken(ctx, user)
}

// VerifyEmail consumes a verify-email token and marks the account
func (a *Authenticator) VerifyEmail(ctx context.Context, verifyToken string) error {
	record, err := a.tokens.VerifyPersisted(ctx, verifyToken, model.TokenTypeVerifyEmail)
	if err != nil {
		a.logger.Info("VerifyEmail token lookup failed: %v", err)
		return ErrEmailVerifyFailed
	}

	if err := a.users.MarkEmailVerified(ctx, record.UserID); err != nil {
		return ErrEmailVerifyFailed
	}

	if err := a.tokens.ConsumeAll(ctx, record.UserID, model.TokenTypeVerifyEmail); err != nil {
		a.logger.Error("VerifyEmail token cleanup failed: %v", err)
		return ErrEmailVerifyFailed
	}

	return nil
}

// OAuthLogin finds or creates the local user for a provider profile
// and issues a token pair. OAuth accounts get a random throwaway
// password hash; they can only sign in through the provider until a
// password reset.
func (a *Authenticator) OAuthLogin(ctx context.Context, name, email string) (*model.User, *TokenPair, error) {
	if name == "" || email == "" {
		return nil, nil, goerrors.New("provider did not return a name and email", goerrors.CategoryBadInput).
			WithCode(goerrors.CodeBadRequest)
	}

	user, err := a.users.GetOrCreate(ctx, &model.User{
		ID:             uuid.New(),
		Name:           name,
		Email:          email,
		PasswordHash:   RandomPasswordHash(),
		Role:           model.RoleUser,
		EmailValidated: true,
	})
	if err != nil {
		return nil, nil, err
	}

	pair, err := a.tokens.GenerateAuthTokens(ctx, user)
	if err != nil {
		return nil, nil, err
	}

	return user, pair, nil
}
