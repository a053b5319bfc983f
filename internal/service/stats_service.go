package service

import (
	"strings"
	"time"

	"task-manager/internal/model"
)

// StatsService derives dashboard counters and filtered views.
type StatsService struct {
	tasks *TaskService
	now   func() time.Time
}

func NewStatsService(tasks *TaskService) *StatsService {
	return &StatsService{tasks: tasks, now: time.Now}
}

// Current computes statistics over the live collection.
func (s *StatsService) Current() model.TaskStats {
	return ComputeStats(s.tasks.Tasks(), s.now())
}

// Search returns tasks whose title contains term and whose category matches.
func (s *StatsService) Search(term, category string) []model.Task {
	return FilterTasks(s.tasks.Tasks(), term, category)
}

// ComputeStats counts tasks by state. Overdue counts every task whose due
// date has passed, completed or not.
func ComputeStats(tasks []model.Task, now time.Time) model.TaskStats {
	stats := model.TaskStats{Total: len(tasks)}
	for _, task := range tasks {
		if task.Completed {
			stats.Completed++
		}
		switch task.Priority {
		case model.PriorityHigh:
			stats.High++
		case model.PriorityMedium:
			stats.Medium++
		case model.PriorityLow:
			stats.Low++
		}
		if task.IsOverdue(now) {
			stats.Overdue++
		}
	}
	return stats
}

// FilterTasks keeps tasks whose title contains term (case-insensitive) and
// whose category equals category. An empty category or CategoryAll matches all.
func FilterTasks(tasks []model.Task, term, category string) []model.Task {
	term = strings.ToLower(strings.TrimSpace(term))
	category = strings.TrimSpace(category)
	matchAll := category == "" || strings.EqualFold(category, CategoryAll)

	out := make([]model.Task, 0, len(tasks))
	for _, task := range tasks {
		if term != "" && !strings.Contains(strings.ToLower(task.Title), term) {
			continue
		}
		if !matchAll && !strings.EqualFold(task.Category, category) {
			continue
		}
		out = append(out, task)
	}
	return out
}
