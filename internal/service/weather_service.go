package service

import (
	"context"
	"log"
	"sync"
	"time"

	"task-manager/internal/model"
	"task-manager/internal/weather"
)

// WeatherService annotates tasks that have no weather yet. Failures are
// never surfaced: a random fallback is stored instead.
type WeatherService struct {
	tasks    *TaskService
	provider weather.Provider
	fallback func() model.Weather
	timeout  time.Duration

	mu       sync.Mutex
	inFlight map[string]struct{}
	wg       sync.WaitGroup
	ctx      context.Context
}

// NewWeatherService builds the enricher. Call Attach to start observing
// the task collection.
func NewWeatherService(tasks *TaskService, provider weather.Provider, timeout time.Duration) *WeatherService {
	if timeout <= 0 {
		timeout = weather.DefaultTimeout
	}
	return &WeatherService{
		tasks:    tasks,
		provider: provider,
		fallback: func() model.Weather { return weather.Fallback(nil) },
		timeout:  timeout,
		inFlight: make(map[string]struct{}),
		ctx:      context.Background(),
	}
}

// Attach subscribes to collection changes. ctx bounds every fetch started
// afterwards; once it is cancelled, pending results are dropped.
func (s *WeatherService) Attach(ctx context.Context) {
	s.mu.Lock()
	s.ctx = ctx
	s.mu.Unlock()
	s.tasks.OnChange(func(tasks []model.Task) {
		s.enrich(tasks)
	})
}

// Sweep starts enrichment for every task still lacking weather.
func (s *WeatherService) Sweep() {
	s.enrich(s.tasks.Tasks())
}

// Wait blocks until all in-flight enrichments have been delivered.
func (s *WeatherService) Wait() {
	s.wg.Wait()
}

func (s *WeatherService) enrich(tasks []model.Task) {
	for _, task := range tasks {
		if task.Weather != nil {
			continue
		}
		s.start(task.ID)
	}
}

// start launches one fetch for id unless one is already outstanding.
// Lock order is s.mu then the task service lock; listeners run without the
// latter held.
func (s *WeatherService) start(id string) {
	s.mu.Lock()
	if _, busy := s.inFlight[id]; busy {
		s.mu.Unlock()
		return
	}
	// Snapshots can be stale: a fetch may have landed since it was taken.
	if task, ok := s.tasks.Find(id); !ok || task.Weather != nil {
		s.mu.Unlock()
		return
	}
	s.inFlight[id] = struct{}{}
	ctx := s.ctx
	s.wg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()
		defer s.finish(id)

		w := s.fetch(ctx, id)
		if ctx.Err() != nil {
			return
		}
		// The task may have been removed meanwhile; the update is then a no-op.
		if _, err := s.tasks.UpdateTaskWeather(ctx, id, w); err != nil {
			log.Printf("[warn] store weather for task %s: %v", id, err)
		}
	}()
}

func (s *WeatherService) fetch(ctx context.Context, id string) model.Weather {
	fetchCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	w, err := s.provider.Current(fetchCtx)
	if err != nil {
		fallback := s.fallback()
		log.Printf("[warn] weather for task %s unavailable, using fallback %d°C %s: %v", id, fallback.Temp, fallback.Condition, err)
		return fallback
	}
	return w
}

func (s *WeatherService) finish(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inFlight, id)
}
