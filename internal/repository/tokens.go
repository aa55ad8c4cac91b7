package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"terravista/internal/model"
)

// TokensRepository implements auth.TokenStore over bun
type TokensRepository struct {
	db *bun.DB
}

// NewTokensRepository creates a tokens repository
func NewTokensRepository(db *bun.DB) *TokensRepository {
	return &TokensRepository{db: db}
}

// Save inserts a token record
func (r *TokensRepository) Save(ctx context.Context, record *model.Token) (*model.Token, error) {
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	if _, err := r.db.NewInsert().Model(record).Exec(ctx); err != nil {
		return nil, err
	}
	return record, nil
}

// FindActive looks up a live token by payload and type. Blacklisted
// and expired rows never match.
func (r *TokensRepository) FindActive(ctx context.Context, token string, typ model.TokenType) (*model.Token, error) {
	record := &model.Token{}
	err := r.db.NewSelect().
		Model(record).
		Where("?TableAlias.token = ?", token).
		Where("?TableAlias.token_type = ?", typ).
		Where("?TableAlias.blacklisted = ?", false).
		Where("?TableAlias.expires_at > ?", time.Now()).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound("token", err)
		}
		return nil, err
	}
	return record, nil
}

// Delete removes a single token row
func (r *TokensRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.NewDelete().
		Model((*model.Token)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return err
	}
	return requireAffected(res, "token")
}

// DeleteByUserAndType removes every token of a given type for a user
func (r *TokensRepository) DeleteByUserAndType(ctx context.Context, userID uuid.UUID, typ model.TokenType) error {
	_, err := r.db.NewDelete().
		Model((*model.Token)(nil)).
		Where("user_id = ?", userID).
		Where("token_type = ?", typ).
		Exec(ctx)
	return err
}

// PurgeExpired deletes rows whose expiry has passed, returning the
// number removed
func (r *TokensRepository) PurgeExpired(ctx context.Context) (int64, error) {
	res, err := r.db.NewDelete().
		Model((*model.Token)(nil)).
		Where("expires_at <= ?", time.Now()).
		Exec(ctx)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// SweepExpired purges expired rows on the given interval until the
// context ends. The first sweep runs immediately.
func (r *TokensRepository) SweepExpired(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		_, _ = r.PurgeExpired(ctx)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
