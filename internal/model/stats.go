package model

// TaskStats aggregates counters shown on the dashboard.
type TaskStats struct {
	Total     int
	Completed int
	High      int
	Medium    int
	Low       int
	Overdue   int
}
