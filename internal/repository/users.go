package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"terravista/internal/model"
)

// QueryOptions carries pagination and ordering for list queries
type QueryOptions struct {
	Page      int
	Limit     int
	SortBy    string
	SortOrder string
}

func (o QueryOptions) normalize() QueryOptions {
	if o.Page < 1 {
		o.Page = 1
	}
	if o.Limit < 1 {
		o.Limit = 10
	}
	order := strings.ToLower(o.SortOrder)
	if order != "desc" {
		order = "asc"
	}
	o.SortOrder = order
	return o
}

func applyOptions(q *bun.SelectQuery, opts QueryOptions, sortable map[string]string) *bun.SelectQuery {
	opts = opts.normalize()

	if col, ok := sortable[opts.SortBy]; ok {
		q = q.OrderExpr("?TableAlias." + col + " " + strings.ToUpper(opts.SortOrder))
	}

	return q.
		Limit(opts.Limit).
		Offset((opts.Page - 1) * opts.Limit)
}

func notFound(entity string, err error) error {
	return goerrors.Wrap(err, goerrors.CategoryNotFound, entity+" not found").
		WithCode(goerrors.CodeNotFound)
}

// UsersRepository implements auth.UserStore over bun
type UsersRepository struct {
	db *bun.DB
}

// NewUsersRepository creates a users repository
func NewUsersRepository(db *bun.DB) *UsersRepository {
	return &UsersRepository{db: db}
}

var userSortable = map[string]string{
	"name":       "name",
	"email":      "email",
	"created_at": "created_at",
}

// GetByID fetches a user by primary key
func (r *UsersRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	user := &model.User{}
	err := r.db.NewSelect().
		Model(user).
		Where("?TableAlias.id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound("user", err)
		}
		return nil, err
	}
	return user, nil
}

// GetByEmail fetches a user by unique email
func (r *UsersRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	user := &model.User{}
	err := r.db.NewSelect().
		Model(user).
		Where("?TableAlias.email = ?", email).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound("user", err)
		}
		return nil, err
	}
	return user, nil
}

// Create inserts a new user. Duplicate emails surface as a conflict.
func (r *UsersRepository) Create(ctx context.Context, user *model.User) (*model.User, error) {
	prepareUserDefaults(user)

	if _, err := r.db.NewInsert().Model(user).Exec(ctx); err != nil {
		if isUniqueViolation(err) {
			return nil, goerrors.Wrap(err, goerrors.CategoryConflict, "Email is already in use").
				WithCode(goerrors.CodeConflict)
		}
		return nil, err
	}

	return user, nil
}

// GetOrCreate returns the user matching the record's email, creating
// it when absent. Used by the OAuth callback.
func (r *UsersRepository) GetOrCreate(ctx context.Context, record *model.User) (*model.User, error) {
	user, err := r.GetByEmail(ctx, record.Email)
	if err == nil {
		return user, nil
	}

	var rich *goerrors.Error
	if goerrors.As(err, &rich) && rich.Category == goerrors.CategoryNotFound {
		return r.Create(ctx, record)
	}

	return nil, err
}

// UpdatePassword replaces the stored password hash
func (r *UsersRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	res, err := r.db.NewUpdate().
		Model((*model.User)(nil)).
		Set("password_hash = ?", passwordHash).
		Set("updated_at = ?", time.Now()).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return err
	}
	return requireAffected(res, "user")
}

// MarkEmailVerified flips the verification flag
func (r *UsersRepository) MarkEmailVerified(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.NewUpdate().
		Model((*model.User)(nil)).
		Set("is_email_verified = ?", true).
		Set("updated_at = ?", time.Now()).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return err
	}
	return requireAffected(res, "user")
}

// UserPatch carries the fields of a partial update. Nil means "leave
// alone".
type UserPatch struct {
	Name         *string
	Email        *string
	Role         *model.UserRole
	PasswordHash *string
}

// Update applies a partial update to a user record. Email changes are
// rejected when the new email belongs to somebody else.
func (r *UsersRepository) Update(ctx context.Context, id uuid.UUID, patch *UserPatch) (*model.User, error) {
	existing, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.Email != nil && *patch.Email != existing.Email {
		if other, err := r.GetByEmail(ctx, *patch.Email); err == nil && other.ID != id {
			return nil, goerrors.New("Email is already in use", goerrors.CategoryConflict).
				WithCode(goerrors.CodeConflict)
		}
		existing.Email = *patch.Email
	}
	if patch.Name != nil {
		existing.Name = *patch.Name
	}
	if patch.Role != nil {
		existing.Role = *patch.Role
	}
	if patch.PasswordHash != nil {
		existing.PasswordHash = *patch.PasswordHash
	}

	now := time.Now()
	existing.UpdatedAt = &now

	if _, err := r.db.NewUpdate().Model(existing).WherePK().Exec(ctx); err != nil {
		return nil, err
	}

	return existing, nil
}

// Delete soft-deletes a user
func (r *UsersRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.NewDelete().
		Model((*model.User)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return err
	}
	return requireAffected(res, "user")
}

// List returns a page of users
func (r *UsersRepository) List(ctx context.Context, opts QueryOptions) ([]*model.User, error) {
	var users []*model.User
	q := r.db.NewSelect().Model(&users)
	if err := applyOptions(q, opts, userSortable).Scan(ctx); err != nil {
		return nil, err
	}
	return users, nil
}

func prepareUserDefaults(record *model.User) {
	if record == nil {
		return
	}
	if record.Role == "" {
		record.Role = model.RoleUser
	}
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
}

func requireAffected(res sql.Result, entity string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return goerrors.New(entity+" not found", goerrors.CategoryNotFound).
			WithCode(goerrors.CodeNotFound)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate key")
}
