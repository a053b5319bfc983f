package service

import (
	"strings"

	"task-manager/internal/model"
)

// DefaultCategory is assigned to new tasks when none is chosen.
const DefaultCategory = "Personal"

// CategoryAll is the filter label that matches every category.
const CategoryAll = "All"

// DefaultCategories are offered when creating a task.
var DefaultCategories = []string{"Work", "Personal", "Shopping", "Health", "Education"}

// CategoryService lists the labels tasks can be grouped by.
type CategoryService struct {
	tasks *TaskService
}

func NewCategoryService(tasks *TaskService) *CategoryService {
	return &CategoryService{tasks: tasks}
}

// List returns the default categories followed by any other label in use,
// in order of first appearance.
func (s *CategoryService) List() []string {
	return mergeCategories(s.tasks.Tasks())
}

// Resolve matches raw against known categories case-insensitively and keeps
// unknown labels as typed.
func (s *CategoryService) Resolve(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return DefaultCategory
	}
	for _, name := range s.List() {
		if strings.EqualFold(name, raw) {
			return name
		}
	}
	return raw
}

func mergeCategories(tasks []model.Task) []string {
	out := append([]string(nil), DefaultCategories...)
	seen := make(map[string]bool, len(out))
	for _, name := range out {
		seen[strings.ToLower(name)] = true
	}
	for _, task := range tasks {
		name := strings.TrimSpace(task.Category)
		if name == "" || seen[strings.ToLower(name)] {
			continue
		}
		seen[strings.ToLower(name)] = true
		out = append(out, name)
	}
	return out
}
