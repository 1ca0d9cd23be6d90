package store

import (
	"context"
	"fmt"

	"ahorra/internal/config"
	"ahorra/internal/db"
	"ahorra/internal/kv"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Open builds the backend named by cfg.StorageDriver.
// The embedded sqlite file is migrated on open; postgres is migrated by cmd/migrate.
func Open(ctx context.Context, cfg config.Config, logger logrus.FieldLogger) (Store, error) {
	switch cfg.StorageDriver {
	case config.DriverSQLite, config.DriverPostgres:
		conn, err := db.Connect(cfg.StorageDriver, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if cfg.StorageDriver == config.DriverSQLite {
			if err := db.Migrate(ctx, conn, logger); err != nil {
				_ = conn.Close()
				return nil, err
			}
		}
		return NewSQLStore(conn, db.NewTxRunner(conn)), nil
	case config.DriverRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, err
		}
		return NewKVStore(kv.NewRedis(client, cfg.RedisPrefix)), nil
	case config.DriverMemory:
		return NewKVStore(kv.NewMemory()), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}
