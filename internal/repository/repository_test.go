package repository

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

const (
	sqliteCreateUsers = `CREATE TABLE users (
    id TEXT NOT NULL PRIMARY KEY,
    name TEXT NOT NULL,
    email TEXT NOT NULL UNIQUE,
    password_hash TEXT,
    user_role TEXT NOT NULL DEFAULT 'user',
    is_email_verified INTEGER NOT NULL DEFAULT 0,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    deleted_at TIMESTAMP
);`
	sqliteCreateTokens = `CREATE TABLE tokens (
    id TEXT NOT NULL PRIMARY KEY,
    token TEXT NOT NULL UNIQUE,
    user_id TEXT NOT NULL,
    token_type TEXT NOT NULL,
    expires_at TIMESTAMP NOT NULL,
    blacklisted INTEGER NOT NULL DEFAULT 0,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    FOREIGN KEY (user_id) REFERENCES users (id) ON DELETE CASCADE
);`
	sqliteCreateProperties = `CREATE TABLE properties (
    id TEXT NOT NULL PRIMARY KEY,
    images TEXT,
    name TEXT NOT NULL,
    location TEXT NOT NULL,
    description TEXT,
    bedroom INTEGER NOT NULL DEFAULT 0,
    bathroom INTEGER NOT NULL DEFAULT 0,
    building_area REAL NOT NULL DEFAULT 0,
    land_area REAL NOT NULL DEFAULT 0,
    floor INTEGER NOT NULL DEFAULT 0,
    year INTEGER NOT NULL DEFAULT 0,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    deleted_at TIMESTAMP
);`
	sqliteCreatePosts = `CREATE TABLE posts (
    id TEXT NOT NULL PRIMARY KEY,
    property_id TEXT NOT NULL,
    user_id TEXT NOT NULL,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    FOREIGN KEY (property_id) REFERENCES properties (id) ON DELETE CASCADE,
    FOREIGN KEY (user_id) REFERENCES users (id) ON DELETE CASCADE
);`
)

func setupTestDB(t *testing.T) *bun.DB {
	t.Helper()

	db, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)

	bunDB := bun.NewDB(db, sqlitedialect.New())

	_, err = bunDB.Exec("PRAGMA foreign_keys = ON;")
	require.NoError(t, err)

	for _, stmt := range []string{sqliteCreateUsers, sqliteCreateTokens, sqliteCreateProperties, sqliteCreatePosts} {
		_, err = bunDB.Exec(stmt)
		require.NoError(t, err)
	}

	t.Cleanup(func() {
		_ = bunDB.Close()
		_ = db.Close()
	})

	return bunDB
}

func ptr[T any](v T) *T {
	return &v
}
