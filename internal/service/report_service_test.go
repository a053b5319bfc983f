package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"task-manager/internal/model"
)

func TestReportService_Summary(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	tasks := NewTaskService(ctx, store)
	auth := NewAuthService(store)
	reports := NewReportService(tasks, auth)
	now := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)

	_, ok := reports.Summary(now)
	assert.False(t, ok)

	require.NoError(t, auth.Login(ctx, model.User{ID: "42", Username: "<alice>"}))

	later := now.Add(72 * time.Hour)
	soon := now.Add(3 * time.Hour)
	past := now.Add(-time.Hour)

	undated := sampleTask("1", "Undated")
	far := sampleTask("2", "Far away")
	far.DueDate = &later
	near := sampleTask("3", "Soon")
	near.DueDate = &soon
	late := sampleTask("4", "Late")
	late.DueDate = &past
	done := sampleTask("5", "Done already")
	done.Completed = true

	for _, task := range []model.Task{undated, far, near, late, done} {
		require.NoError(t, tasks.AddTask(ctx, task))
	}

	text, ok := reports.Summary(now)
	require.True(t, ok)
	assert.Contains(t, text, "&lt;alice&gt;")
	assert.Contains(t, text, "Completed: 1 / 5")
	assert.Contains(t, text, "Overdue: 1")
	assert.NotContains(t, text, "Done already")
	assert.Contains(t, text, "<b>overdue</b>")

	order := []string{"Late", "Soon", "Far away", "Undated"}
	last := -1
	for _, title := range order {
		idx := strings.Index(text, title)
		require.Greater(t, idx, last, title)
		last = idx
	}
}

func TestDueIcon(t *testing.T) {
	now := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	at := func(d time.Duration) *time.Time {
		ts := now.Add(d)
		return &ts
	}

	assert.Equal(t, "🟢", DueIcon(model.Task{}, now))
	assert.Equal(t, "⚠️", DueIcon(model.Task{DueDate: at(-time.Minute)}, now))
	assert.Equal(t, "⏳", DueIcon(model.Task{DueDate: at(24 * time.Hour)}, now))
	assert.Equal(t, "🟢", DueIcon(model.Task{DueDate: at(96 * time.Hour)}, now))
}
