package service

import (
	"context"
	"log"
	"sync"

	"task-manager/internal/model"
	"task-manager/internal/repository"
)

// ChangeListener receives a snapshot of the collection after each mutation.
type ChangeListener func(tasks []model.Task)

// TaskService owns the task collection. Every mutation writes the whole
// collection to the store before it becomes visible in memory.
type TaskService struct {
	store     Store
	mu        sync.Mutex
	tasks     []model.Task
	listeners []ChangeListener
}

// NewTaskService loads the persisted collection. A missing or corrupt
// record starts an empty list.
func NewTaskService(ctx context.Context, store Store) *TaskService {
	var tasks []model.Task
	if _, err := store.Load(ctx, repository.KeyTasks, &tasks); err != nil {
		log.Printf("[warn] load tasks, starting empty: %v", err)
		tasks = nil
	}
	if tasks == nil {
		tasks = []model.Task{}
	}
	return &TaskService{store: store, tasks: tasks}
}

// OnChange registers a listener. Listeners run after the lock is released,
// so they may call back into the service.
func (s *TaskService) OnChange(listener ChangeListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, listener)
}

// Tasks returns a copy of the collection in insertion order.
func (s *TaskService) Tasks() []model.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return model.CloneTasks(s.tasks)
}

// Find returns the task with id.
func (s *TaskService) Find(id string) (model.Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := indexOf(s.tasks, id); i >= 0 {
		return s.tasks[i].Clone(), true
	}
	return model.Task{}, false
}

// AddTask appends task. The caller supplies a unique id and the required fields.
func (s *TaskService) AddTask(ctx context.Context, task model.Task) error {
	_, err := s.mutate(ctx, func(tasks []model.Task) ([]model.Task, bool) {
		return append(tasks, task.Clone()), true
	})
	return err
}

// RemoveTask deletes the task with id and returns it. Unknown ids are a no-op.
func (s *TaskService) RemoveTask(ctx context.Context, id string) (model.Task, bool, error) {
	var removed model.Task
	found, err := s.mutate(ctx, func(tasks []model.Task) ([]model.Task, bool) {
		i := indexOf(tasks, id)
		if i < 0 {
			return tasks, false
		}
		removed = tasks[i]
		return append(tasks[:i], tasks[i+1:]...), true
	})
	return removed, found, err
}

// ToggleTask flips the completed flag of the task with id.
func (s *TaskService) ToggleTask(ctx context.Context, id string) (model.Task, bool, error) {
	var toggled model.Task
	found, err := s.mutate(ctx, func(tasks []model.Task) ([]model.Task, bool) {
		i := indexOf(tasks, id)
		if i < 0 {
			return tasks, false
		}
		tasks[i].Completed = !tasks[i].Completed
		toggled = tasks[i].Clone()
		return tasks, true
	})
	return toggled, found, err
}

// UpdateTaskWeather sets the weather snapshot of the task with id.
func (s *TaskService) UpdateTaskWeather(ctx context.Context, id string, weather model.Weather) (bool, error) {
	return s.mutate(ctx, func(tasks []model.Task) ([]model.Task, bool) {
		i := indexOf(tasks, id)
		if i < 0 {
			return tasks, false
		}
		w := weather
		tasks[i].Weather = &w
		return tasks, true
	})
}

// mutate applies fn to a copy of the collection. When fn reports a change,
// the copy is persisted and then swapped in; a failed write leaves the
// in-memory collection as it was.
func (s *TaskService) mutate(ctx context.Context, fn func([]model.Task) ([]model.Task, bool)) (bool, error) {
	s.mu.Lock()
	next, changed := fn(model.CloneTasks(s.tasks))
	if !changed {
		s.mu.Unlock()
		return false, nil
	}
	if err := s.store.Save(ctx, repository.KeyTasks, next); err != nil {
		s.mu.Unlock()
		return false, err
	}
	s.tasks = next
	snapshot := model.CloneTasks(next)
	listeners := append([]ChangeListener(nil), s.listeners...)
	s.mu.Unlock()

	for _, listener := range listeners {
		listener(snapshot)
	}
	return true, nil
}

func indexOf(tasks []model.Task, id string) int {
	for i := range tasks {
		if tasks[i].ID == id {
			return i
		}
	}
	return -1
}
