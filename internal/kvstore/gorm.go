// Package kvstore implements history.Persister on the storage backends the
// service can be deployed with.
package kvstore

import (
	"context"
	"errors"
	"fmt"

	"back_scan/internal/history"
	"back_scan/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStore keeps values in the kv_entries table of the service database
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Load(ctx context.Context, key string) ([]byte, error) {
	var entry models.KVEntry
	err := s.db.WithContext(ctx).Where("entry_key = ?", key).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, history.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", key, err)
	}
	return entry.Value, nil
}

func (s *GormStore) Save(ctx context.Context, key string, value []byte) error {
	entry := models.KVEntry{Key: key, Value: value}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "entry_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&entry).Error
	if err != nil {
		return fmt.Errorf("failed to save %s: %w", key, err)
	}
	return nil
}
