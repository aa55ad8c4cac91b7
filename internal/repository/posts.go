package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"terravista/internal/model"
)

// PostsRepository links listings to the users that published them
type PostsRepository struct {
	db *bun.DB
}

// NewPostsRepository creates a posts repository
func NewPostsRepository(db *bun.DB) *PostsRepository {
	return &PostsRepository{db: db}
}

// Create records a publication
func (r *PostsRepository) Create(ctx context.Context, post *model.Post) (*model.Post, error) {
	if post.ID == uuid.Nil {
		post.ID = uuid.New()
	}
	if _, err := r.db.NewInsert().Model(post).Exec(ctx); err != nil {
		return nil, err
	}
	return post, nil
}

// ListByUser returns the listings a user published, newest first
func (r *PostsRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*model.Post, error) {
	var posts []*model.Post
	err := r.db.NewSelect().
		Model(&posts).
		Relation("Property").
		Where("?TableAlias.user_id = ?", userID).
		OrderExpr("?TableAlias.created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return posts, nil
}

// DeleteByProperty unlinks every post for a deleted listing
func (r *PostsRepository) DeleteByProperty(ctx context.Context, propertyID uuid.UUID) error {
	_, err := r.db.NewDelete().
		Model((*model.Post)(nil)).
		Where("property_id = ?", propertyID).
		Exec(ctx)
	return err
}
