package database

import (
	"fmt"
	"log"
	"strings"

	"gorm.io/gorm"
)

type index struct {
	table   string
	name    string
	columns []string
}

// composite lookups the handlers run on every request
var indexes = []index{
	{table: "folders", name: "idx_folders_user_name", columns: []string{"user_id", "name"}},
	{table: "documents", name: "idx_documents_user_folder", columns: []string{"user_id", "folder_id"}},
	{table: "pages", name: "idx_pages_document_position", columns: []string{"document_id", "position"}},
}

// ensureIndexes creates missing composite indexes. MySQL has no CREATE INDEX
// IF NOT EXISTS, so existence is checked through the migrator for every dialect.
func ensureIndexes(db *gorm.DB) error {
	migrator := db.Migrator()
	for _, idx := range indexes {
		if migrator.HasIndex(idx.table, idx.name) {
			continue
		}
		query := fmt.Sprintf("CREATE INDEX %s ON %s (%s)", idx.name, idx.table, strings.Join(idx.columns, ", "))
		if err := db.Exec(query).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}
		log.Printf("DEBUG: Created index %s on %s", idx.name, idx.table)
	}
	return nil
}
