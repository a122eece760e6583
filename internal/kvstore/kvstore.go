package kvstore

import (
	"context"
	"fmt"
	"log"
	"time"

	"back_scan/internal/config"
	"back_scan/internal/history"

	"gorm.io/gorm"
)

// Open builds the Persister selected by cfg.Backend. The returned close func
// releases backend resources and is never nil.
func Open(ctx context.Context, cfg config.HistoryConfig, db *gorm.DB) (history.Persister, func() error, error) {
	noop := func() error { return nil }
	switch cfg.Backend {
	case "gorm":
		if db == nil {
			return nil, noop, fmt.Errorf("gorm history backend needs a database")
		}
		return NewGormStore(db), noop, nil
	case "redis":
		store := NewRedisStore(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, 0)
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := store.Ping(pingCtx); err != nil {
			store.Close()
			return nil, noop, fmt.Errorf("failed to connect to redis at %s: %w", cfg.RedisAddr, err)
		}
		log.Printf("DEBUG: History persisted to redis at %s", cfg.RedisAddr)
		return store, store.Close, nil
	case "file":
		store, err := NewFileStore(cfg.FileDir)
		if err != nil {
			return nil, noop, err
		}
		log.Printf("DEBUG: History persisted to %s", cfg.FileDir)
		return store, noop, nil
	default:
		return nil, noop, fmt.Errorf("unsupported history backend: %s", cfg.Backend)
	}
}
