package services

import (
	"path/filepath"
	"testing"

	"back_scan/internal/database"
	"back_scan/internal/validation"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.OpenSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() { _ = database.Close(db) })
	return db
}

func newGenerationService(t *testing.T) *GenerationService {
	t.Helper()
	v, err := validation.New()
	require.NoError(t, err)
	return NewGenerationService(v)
}
