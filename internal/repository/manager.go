package repository

import (
	"context"
	"database/sql"
	"errors"
	"log"

	"github.com/uptrace/bun"
)

// Manager bundles the repositories sharing one bun connection
type Manager struct {
	db         *bun.DB
	users      *UsersRepository
	tokens     *TokensRepository
	properties *PropertiesRepository
	posts      *PostsRepository
}

// NewManager wires every repository over the given connection
func NewManager(db *bun.DB) *Manager {
	return &Manager{
		db:         db,
		users:      NewUsersRepository(db),
		tokens:     NewTokensRepository(db),
		properties: NewPropertiesRepository(db),
		posts:      NewPostsRepository(db),
	}
}

func (m *Manager) Validate() error {
	if m.db == nil {
		return errors.New("repository manager needs a database connection")
	}

	if m.users == nil {
		return errors.New("repository users should be initialized")
	}

	if m.tokens == nil {
		return errors.New("repository tokens should be initialized")
	}

	if m.properties == nil {
		return errors.New("repository properties should be initialized")
	}

	if m.posts == nil {
		return errors.New("repository posts should be initialized")
	}

	return nil
}

func (m *Manager) MustValidate() {
	if err := m.Validate(); err != nil {
		log.Panic(err)
	}
}

func (m *Manager) RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return m.db.RunInTx(ctx, opts, f)
	}
}

func (m *Manager) Users() *UsersRepository { return m.users }

func (m *Manager) Tokens() *TokensRepository { return m.tokens }

func (m *Manager) Properties() *PropertiesRepository { return m.properties }

func (m *Manager) Posts() *PostsRepository { return m.posts }
