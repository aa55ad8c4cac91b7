package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"terravista/internal/model"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// UserStore is the credential store: it owns users and their password
// hashes. Implemented by the repository package.
type UserStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	Create(ctx context.Context, user *model.User) (*model.User, error)
	GetOrCreate(ctx context.Context, user *model.User) (*model.User, error)
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
	MarkEmailVerified(ctx context.Context, id uuid.UUID) error
}

// TokenStore persists non-access tokens. The store is an index, not the
// source of trust: signatures are verified separately.
type TokenStore interface {
	Save(ctx context.Context, token *model.Token) (*model.Token, error)
	FindActive(ctx context.Context, token string, typ model.TokenType) (*model.Token, error)
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByUserAndType(ctx context.Context, userID uuid.UUID, typ model.TokenType) error
}

// TokenInfo is one half of an auth token pair
type TokenInfo struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}

// TokenPair is the ephemeral access/refresh pair returned to callers.
// Only the refresh half is ever persisted.
type TokenPair struct {
	Access  TokenInfo `json:"access"`
	Refresh TokenInfo `json:"refresh"`
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] AUTH "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] AUTH "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] AUTH "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] AUTH "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
