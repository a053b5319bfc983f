package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"task-manager/internal/model"
)

func TestCategoryService_ListAndResolve(t *testing.T) {
	ctx := context.Background()
	tasks := NewTaskService(ctx, newTestStore(t))
	categories := NewCategoryService(tasks)

	assert.Equal(t, DefaultCategories, categories.List())

	for _, task := range []model.Task{
		{ID: "1", Title: "a", Priority: model.PriorityLow, Category: "Garden"},
		{ID: "2", Title: "b", Priority: model.PriorityLow, Category: "work"},
		{ID: "3", Title: "c", Priority: model.PriorityLow, Category: "garden"},
	} {
		require.NoError(t, tasks.AddTask(ctx, task))
	}

	assert.Equal(t, append(append([]string(nil), DefaultCategories...), "Garden"), categories.List())

	tests := map[string]string{
		"":         DefaultCategory,
		"  ":       DefaultCategory,
		"shopping": "Shopping",
		"GARDEN":   "Garden",
		"Travel":   "Travel",
	}
	for raw, want := range tests {
		assert.Equal(t, want, categories.Resolve(raw), raw)
	}
}
