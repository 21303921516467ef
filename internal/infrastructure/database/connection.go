package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/tracelog"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/eslsoft/flashdeck/internal/infrastructure/config"
)

const connectTimeout = 5 * time.Second

// NewSQLDB opens a database/sql handle for the sqlite3 or postgres drivers.
func NewSQLDB(cfg *config.Config) (*sql.DB, func(), error) {
	driver, err := cfg.StorageDriver()
	if err != nil {
		return nil, nil, err
	}
	dsn, err := cfg.StorageDSN()
	if err != nil {
		return nil, nil, err
	}

	switch driver {
	case config.DriverPostgres:
		return openSQL(driver, dsn, nil)
	case config.DriverSQLite:
		if err := ensureSQLiteDir(dsn); err != nil {
			return nil, nil, err
		}
		return openSQL(driver, dsn, func(db *sql.DB) {
			db.SetMaxOpenConns(1)
			db.SetMaxIdleConns(1)
		})
	default:
		return nil, nil, fmt.Errorf("driver %q is not a database/sql driver", driver)
	}
}

func openSQL(driver, dsn string, tune func(*sql.DB)) (*sql.DB, func(), error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s db: %w", driver, err)
	}
	if tune != nil {
		tune(db)
	}

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("ping %s db: %w", driver, err)
	}
	return db, func() { _ = db.Close() }, nil
}

// ensureSQLiteDir creates the parent directory of a file-backed sqlite DSN.
func ensureSQLiteDir(dsn string) error {
	path := strings.TrimPrefix(dsn, "file:")
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	if path == "" || path == ":memory:" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create sqlite directory: %w", err)
	}
	return nil
}

// NewPgxPool creates a new pgx connection pool
func NewPgxPool(cfg *config.Config, logger logrus.FieldLogger) (*pgxpool.Pool, func(), error) {
	dsn, err := cfg.StorageDSN()
	if err != nil {
		return nil, nil, err
	}

	poolCfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("parse pool config: %w", err)
	}
	poolCfg.MaxConns = 4

	if cfg.Storage.LogSQL {
		poolCfg.ConnConfig.Tracer = &tracelog.TraceLog{
			Logger: tracelog.LoggerFunc(func(_ context.Context, lvl tracelog.LogLevel, msg string, data map[string]any) {
				logger.WithFields(logrus.Fields(data)).WithField("pgx_level", lvl.String()).Debug(msg)
			}),
			LogLevel: tracelog.LogLevelTrace,
		}
	}
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("ping db: %w", err)
	}

	return pool, pool.Close, nil
}

// NewRedisClient connects to the configured redis server.
func NewRedisClient(cfg *config.Config) (*redis.Client, func(), error) {
	addr := strings.TrimSpace(cfg.Storage.RedisAddr)
	if addr == "" {
		return nil, nil, fmt.Errorf("missing storage.redis_addr")
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:        addr,
		DB:          cfg.Storage.RedisDB,
		DialTimeout: connectTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, func() { _ = rdb.Close() }, nil
}
