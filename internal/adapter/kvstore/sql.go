package kvstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/eslsoft/flashdeck/internal/repository"
)

const tableName = "kv_entries"

// SQL persists entries in a single kv_entries table through database/sql.
type SQL struct {
	db      *sql.DB
	dialect dialect
}

var _ repository.KVStore = (*SQL)(nil)

type dialect struct {
	name       string
	createStmt string
	getStmt    string
	upsertStmt string
}

var dialects = map[string]dialect{
	"sqlite3": {
		name: "sqlite3",
		createStmt: `CREATE TABLE IF NOT EXISTS ` + tableName + ` (
			entry_key TEXT PRIMARY KEY,
			entry_value BLOB NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`,
		getStmt: `SELECT entry_value FROM ` + tableName + ` WHERE entry_key = ?`,
		upsertStmt: `INSERT INTO ` + tableName + ` (entry_key, entry_value, updated_at) VALUES (?, ?, ?)
			ON CONFLICT(entry_key) DO UPDATE SET entry_value = excluded.entry_value, updated_at = excluded.updated_at`,
	},
	"postgres": {
		name:       "postgres",
		createStmt: createPostgresTable,
		getStmt:    getPostgres,
		upsertStmt: upsertPostgres,
	},
}

const (
	createPostgresTable = `CREATE TABLE IF NOT EXISTS ` + tableName + ` (
		entry_key TEXT PRIMARY KEY,
		entry_value BYTEA NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`
	getPostgres    = `SELECT entry_value FROM ` + tableName + ` WHERE entry_key = $1`
	upsertPostgres = `INSERT INTO ` + tableName + ` (entry_key, entry_value, updated_at) VALUES ($1, $2, $3)
		ON CONFLICT (entry_key) DO UPDATE SET entry_value = EXCLUDED.entry_value, updated_at = EXCLUDED.updated_at`
)

// NewSQL binds a store to db. driver selects the SQL dialect (sqlite3 or postgres).
func NewSQL(db *sql.DB, driver string) (*SQL, error) {
	if db == nil {
		return nil, errors.New("kvstore: db is required")
	}
	d, ok := dialects[driver]
	if !ok {
		return nil, fmt.Errorf("kvstore: unsupported sql driver %q", driver)
	}
	return &SQL{db: db, dialect: d}, nil
}

// Migrate creates the backing table when missing.
func (s *SQL) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, s.dialect.createStmt); err != nil {
		return fmt.Errorf("create %s table: %w", tableName, err)
	}
	return nil
}

func (s *SQL) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx, s.dialect.getStmt, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get %s: %w", key, err)
	}
	return value, true, nil
}

func (s *SQL) Set(ctx context.Context, key string, value []byte) error {
	if _, err := s.db.ExecContext(ctx, s.dialect.upsertStmt, key, value, time.Now().UTC()); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}
