package kvstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/eslsoft/flashdeck/internal/repository"
)

// Pgx persists entries in the kv_entries table through a pgx pool.
type Pgx struct {
	pool *pgxpool.Pool
}

var _ repository.KVStore = (*Pgx)(nil)

// NewPgx binds a store to pool.
func NewPgx(pool *pgxpool.Pool) (*Pgx, error) {
	if pool == nil {
		return nil, errors.New("kvstore: pgx pool is required")
	}
	return &Pgx{pool: pool}, nil
}

// Migrate creates the backing table when missing.
func (p *Pgx) Migrate(ctx context.Context) error {
	if _, err := p.pool.Exec(ctx, createPostgresTable); err != nil {
		return fmt.Errorf("create %s table: %w", tableName, err)
	}
	return nil
}

func (p *Pgx) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var value []byte
	err := p.pool.QueryRow(ctx, getPostgres, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get %s: %w", key, err)
	}
	return value, true, nil
}

func (p *Pgx) Set(ctx context.Context, key string, value []byte) error {
	if _, err := p.pool.Exec(ctx, upsertPostgres, key, value, time.Now().UTC()); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}
