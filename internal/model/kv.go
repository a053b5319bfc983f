package model

import "time"

// KVEntry is one row of the durable key/value store. Value holds JSON.
type KVEntry struct {
	Key       string `gorm:"primaryKey"`
	Value     string `gorm:"type:text"`
	UpdatedAt time.Time
}

// TableName pins the table name used by the store.
func (KVEntry) TableName() string {
	return "kv_entries"
}
