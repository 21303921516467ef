package app

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/eslsoft/flashdeck/internal/adapter/kvstore"
	"github.com/eslsoft/flashdeck/internal/adapter/recorder"
	"github.com/eslsoft/flashdeck/internal/infrastructure/config"
	"github.com/eslsoft/flashdeck/internal/infrastructure/database"
	"github.com/eslsoft/flashdeck/internal/repository"
	"github.com/eslsoft/flashdeck/internal/usecase"
)

const migrateTimeout = 30 * time.Second

type migrator interface {
	Migrate(ctx context.Context) error
}

// ProvideKVStore opens the backend selected by storage.driver and makes sure its schema exists.
func ProvideKVStore(cfg *config.Config, logger *logrus.Logger) (repository.KVStore, func(), error) {
	driver, err := cfg.StorageDriver()
	if err != nil {
		return nil, nil, err
	}

	var (
		store   repository.KVStore
		cleanup = func() {}
	)
	switch driver {
	case config.DriverMemory:
		logger.Warn("memory storage selected, progress is lost on exit")
		return kvstore.NewMemory(), cleanup, nil
	case config.DriverSQLite, config.DriverPostgres:
		db, closeDB, err := database.NewSQLDB(cfg)
		if err != nil {
			return nil, nil, err
		}
		cleanup = closeDB
		store, err = kvstore.NewSQL(db, driver)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
	case config.DriverPgx:
		pool, closePool, err := database.NewPgxPool(cfg, logger)
		if err != nil {
			return nil, nil, err
		}
		cleanup = closePool
		store, err = kvstore.NewPgx(pool)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
	case config.DriverRedis:
		rdb, closeRedis, err := database.NewRedisClient(cfg)
		if err != nil {
			return nil, nil, err
		}
		cleanup = closeRedis
		store, err = kvstore.NewRedis(rdb)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
	default:
		return nil, nil, fmt.Errorf("unsupported storage driver %q", driver)
	}

	if m, ok := store.(migrator); ok {
		ctx, cancel := context.WithTimeout(context.Background(), migrateTimeout)
		defer cancel()
		if err := m.Migrate(ctx); err != nil {
			cleanup()
			return nil, nil, err
		}
	}
	logger.WithField("driver", driver).Debug("storage ready")
	return store, cleanup, nil
}

// ProvideCardStore binds the card store to kv and loads persisted progress.
func ProvideCardStore(cfg *config.Config, kv repository.KVStore) (*usecase.CardStore, error) {
	store, err := usecase.NewCardStore(kv, cfg.Storage.Namespace)
	if err != nil {
		return nil, err
	}
	if err := store.Open(context.Background()); err != nil {
		return nil, err
	}
	return store, nil
}

// ProvideTally builds the dashboard tally with the configured daily goal.
func ProvideTally(cfg *config.Config) *recorder.Tally {
	return recorder.NewTally(cfg.Study.DailyGoal)
}

// ProvideRecorder fans study events out to the log and the tally.
func ProvideRecorder(logger *logrus.Logger, tally *recorder.Tally) repository.StudyRecorder {
	return recorder.NewMulti(recorder.NewLog(logger), tally)
}
