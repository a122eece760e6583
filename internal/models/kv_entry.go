package models

import "time"

// KVEntry is a row of the key-value table backing history persistence.
// The column is not named "key" because that is reserved in MySQL.
type KVEntry struct {
	Key       string    `gorm:"column:entry_key;primaryKey;size:191"`
	Value     []byte    `gorm:"not null"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// TableName specifies the table name for KVEntry
func (KVEntry) TableName() string {
	return "kv_entries"
}
