package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"task-manager/internal/model"
)

// Keys used by the state containers.
const (
	KeyUser  = "user"
	KeyTasks = "tasks"
)

// ErrCorrupt is returned by Load when the stored value is not valid JSON
// for the requested type.
var ErrCorrupt = errors.New("corrupt stored value")

// KVRepository is a durable string-keyed store holding JSON documents.
type KVRepository struct {
	db *gorm.DB
}

func NewKVRepository(db *gorm.DB) *KVRepository {
	return &KVRepository{db: db}
}

// Save serialises value and overwrites whatever is stored under key.
func (r *KVRepository) Save(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %q: %w", key, err)
	}
	entry := model.KVEntry{Key: key, Value: string(data)}
	err = r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&entry).Error
	if err != nil {
		return fmt.Errorf("save %q: %w", key, err)
	}
	return nil
}

// Load decodes the value stored under key into dst. It reports false when
// the key was never set or the store cannot be read; unreadable storage is
// logged rather than returned. A value that does not decode yields ErrCorrupt.
func (r *KVRepository) Load(ctx context.Context, key string, dst any) (bool, error) {
	raw, ok := r.LoadRaw(ctx, key)
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return false, fmt.Errorf("%w: %q: %v", ErrCorrupt, key, err)
	}
	return true, nil
}

// LoadRaw returns the stored JSON text for key.
func (r *KVRepository) LoadRaw(ctx context.Context, key string) (string, bool) {
	var entry model.KVEntry
	err := r.db.WithContext(ctx).Where(map[string]any{"key": key}).First(&entry).Error
	switch {
	case err == nil:
		return entry.Value, true
	case errors.Is(err, gorm.ErrRecordNotFound):
		return "", false
	default:
		log.Printf("[warn] read %q: %v", key, err)
		return "", false
	}
}

// Remove deletes key. Removing a missing key is not an error.
func (r *KVRepository) Remove(ctx context.Context, key string) error {
	if err := r.db.WithContext(ctx).Where(map[string]any{"key": key}).Delete(&model.KVEntry{}).Error; err != nil {
		return fmt.Errorf("remove %q: %w", key, err)
	}
	return nil
}
