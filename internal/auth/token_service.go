package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"

	"terravista/internal/model"
)

// TokenConfig carries the signing secret and per-type TTLs. Loaded once
// at startup; read-only afterwards.
type TokenConfig struct {
	SigningKey     []byte
	AccessTTL      time.Duration
	RefreshTTL     time.Duration
	VerifyEmailTTL time.Duration
}

// TokenService mints, persists, verifies, and invalidates bearer
// tokens. Access tokens are stateless; refresh, reset-password, and
// verify-email tokens are additionally indexed in the TokenStore so
// they can be consumed exactly once.
type TokenService struct {
	cfg    TokenConfig
	tokens TokenStore
	users  UserStore
	logger Logger
}

// NewTokenService creates a new TokenService instance
func NewTokenService(cfg TokenConfig, tokens TokenStore, users UserStore, logger Logger) *TokenService {
	if logger == nil {
		logger = defLogger{}
	}
	return &TokenService{
		cfg:    cfg,
		tokens: tokens,
		users:  users,
		logger: logger,
	}
}

// Sign builds a `{jti, sub, iat, exp, type}` payload and signs it with
// the configured symmetric key. The jti is fresh per call, so repeated
// mints for the same user never collide on the unique token column. No
// side effects.
func (ts *TokenService) Sign(userID string, expiresAt time.Time, typ model.TokenType) (string, error) {
	if !typ.IsValid() {
		return "", goerrors.New("unknown token type: "+string(typ), goerrors.CategoryBadInput)
	}

	claims := newClaims(userID, time.Now(), expiresAt, typ)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := token.SignedString(ts.cfg.SigningKey)
	if err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to sign JWT")
	}

	return signed, nil
}

// Verify parses a signed token, checks its signature and expiry, and
// enforces the expected type tag. This is the single verification path
// used by both the middleware and the controllers.
func (ts *TokenService) Verify(tokenString string, typ model.TokenType) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			ts.logger.Error("TokenService verify unexpected signing method: %v", t.Header["alg"])
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return ts.cfg.SigningKey, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, goerrors.Wrap(err, ErrTokenMalformed.Category, ErrTokenMalformed.Message).
			WithCode(goerrors.CodeUnauthorized).
			WithTextCode(ErrTokenMalformed.TextCode)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrTokenMalformed
	}

	if claims.TokenType != typ {
		return nil, ErrTokenWrongType
	}

	return claims, nil
}

// Save persists a non-access token. One store write.
func (ts *TokenService) Save(ctx context.Context, tokenString string, userID uuid.UUID, expiresAt time.Time, typ model.TokenType) (*model.Token, error) {
	if !typ.Persistable() {
		return nil, goerrors.New("access tokens are never persisted", goerrors.CategoryBadInput)
	}

	return ts.tokens.Save(ctx, &model.Token{
		ID:        uuid.New(),
		Token:     tokenString,
		UserID:    userID,
		Type:      typ,
		ExpiresAt: expiresAt,
	})
}

// VerifyPersisted looks up an unconsumed, unblacklisted, unexpired
// token record matching the literal token string and type. The record
// is an index entry; the signature remains the source of trust and is
// checked separately when the token authenticates a request.
func (ts *TokenService) VerifyPersisted(ctx context.Context, tokenString string, typ model.TokenType) (*model.Token, error) {
	return ts.tokens.FindActive(ctx, tokenString, typ)
}

// Consume deletes a persisted token record. A token is consumed exactly
// once: on logout, on successful refresh, or on successful reset.
func (ts *TokenService) Consume(ctx context.Context, record *model.Token) error {
	return ts.tokens.Delete(ctx, record.ID)
}

// ConsumeAll deletes every persisted token of one type for a user,
// e.g. all outstanding reset tokens once a reset succeeds.
func (ts *TokenService) ConsumeAll(ctx context.Context, userID uuid.UUID, typ model.TokenType) error {
	return ts.tokens.DeleteByUserAndType(ctx, userID, typ)
}

// GenerateAuthTokens mints an access/refresh pair for the user and
// persists the refresh half. Every call produces a new refresh record;
// earlier refresh tokens for the same user stay valid until they are
// independently consumed, which is what keeps multi-device sessions
// working.
func (ts *TokenService) GenerateAuthTokens(ctx context.Context, user *model.User) (*TokenPair, error) {
	now := time.Now()

	accessExpires := now.Add(ts.cfg.AccessTTL)
	accessToken, err := ts.Sign(user.ID.String(), accessExpires, model.TokenTypeAccess)
	if err != nil {
		return nil, err
	}

	refreshExpires := now.Add(ts.cfg.RefreshTTL)
	refreshToken, err := ts.Sign(user.ID.String(), refreshExpires, model.TokenTypeRefresh)
	if err != nil {
		return nil, err
	}

	if _, err := ts.Save(ctx, refreshToken, user.ID, refreshExpires, model.TokenTypeRefresh); err != nil {
		return nil, err
	}

	return &TokenPair{
		Access:  TokenInfo{Token: accessToken, Expires: accessExpires},
		Refresh: TokenInfo{Token: refreshToken, Expires: refreshExpires},
	}, nil
}

// GenerateResetPasswordToken mints and persists a reset token for the
// user owning the email. Reset tokens share the access TTL.
func (ts *TokenService) GenerateResetPasswordToken(ctx context.Context, email string) (string, error) {
	user, err := ts.users.GetByEmail(ctx, email)
	if err != nil {
		if IsNotFound(err) {
			return "", ErrEmailNotFound
		}
		return "", err
	}

	expires := time.Now().Add(ts.cfg.AccessTTL)
	token, err := ts.Sign(user.ID.String(), expires, model.TokenTypeResetPassword)
	if err != nil {
		return "", err
	}

	if _, err := ts.Save(ctx, token, user.ID, expires, model.TokenTypeResetPassword); err != nil {
		return "", err
	}

	return token, nil
}

// GenerateVerifyEmailToken mints and persists a verify-email token
func (ts *TokenService) GenerateVerifyEmailToken(ctx context.Context, user *model.User) (string, error) {
	expires := time.Now().Add(ts.cfg.VerifyEmailTTL)
	token, err := ts.Sign(user.ID.String(), expires, model.TokenTypeVerifyEmail)
	if err != nil {
		return "", err
	}

	if _, err := ts.Save(ctx, token, user.ID, expires, model.TokenTypeVerifyEmail); err != nil {
		return "", err
	}

	return token, nil
}
