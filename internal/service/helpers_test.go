package service

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"task-manager/internal/model"
	"task-manager/internal/repository"
)

// openStore opens a file-backed store at path; reopening the same path
// simulates a process restart.
func openStore(t *testing.T, path string) (*repository.KVRepository, *gorm.DB) {
	t.Helper()
	db, err := repository.NewDB(path)
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return repository.NewKVRepository(db), db
}

func newTestStore(t *testing.T) *repository.KVRepository {
	t.Helper()
	store, _ := openStore(t, filepath.Join(t.TempDir(), "tasks.db"))
	return store
}

func persistedTasks(t *testing.T, store Store) []model.Task {
	t.Helper()
	var tasks []model.Task
	_, err := store.Load(context.Background(), repository.KeyTasks, &tasks)
	require.NoError(t, err)
	if tasks == nil {
		tasks = []model.Task{}
	}
	return tasks
}

func sampleTask(id, title string) model.Task {
	return model.Task{
		ID:       id,
		Title:    title,
		Priority: model.PriorityMedium,
		Category: DefaultCategory,
	}
}

var errWriteFailed = errors.New("disk full")

// failingStore wraps a Store and fails every write once armed.
type failingStore struct {
	Store
	fail bool
}

func (s *failingStore) Save(ctx context.Context, key string, value any) error {
	if s.fail {
		return errWriteFailed
	}
	return s.Store.Save(ctx, key, value)
}

func (s *failingStore) Remove(ctx context.Context, key string) error {
	if s.fail {
		return errWriteFailed
	}
	return s.Store.Remove(ctx, key)
}
