// Package backend opens the storage.Store selected by configuration.
package backend

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ramonehamilton/EDH-Tracker/internal/config"
	"github.com/ramonehamilton/EDH-Tracker/internal/storage"
	"github.com/ramonehamilton/EDH-Tracker/internal/storage/filestore"
	"github.com/ramonehamilton/EDH-Tracker/internal/storage/redisstore"
)

// Open opens and, where applicable, migrates the configured store.
func Open(ctx context.Context, cfg config.StorageConfig, logger *zap.Logger) (storage.Store, error) {
	switch cfg.Backend {
	case config.BackendSQLite:
		dbConfig := storage.DefaultConfig(cfg.SQLitePath)
		dbConfig.AutoMigrate = true
		db, err := storage.Open(dbConfig)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite store: %w", err)
		}
		logger.Info("opened sqlite store", zap.String("path", cfg.SQLitePath))
		return storage.NewService(db), nil

	case config.BackendRedis:
		s, err := redisstore.Open(ctx, cfg.RedisURL, cfg.RedisPrefix)
		if err != nil {
			return nil, fmt.Errorf("failed to open redis store: %w", err)
		}
		logger.Info("opened redis store", zap.String("prefix", cfg.RedisPrefix))
		return s, nil

	case config.BackendFile:
		s, err := filestore.NewOS(cfg.FileDir, cfg.FileCompress)
		if err != nil {
			return nil, fmt.Errorf("failed to open file store: %w", err)
		}
		logger.Info("opened file store",
			zap.String("dir", cfg.FileDir),
			zap.Bool("compressed", cfg.FileCompress))
		return s, nil

	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}
