package model

import (
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"
)

// Priority ranks a task. Stored as its lowercase name.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Priorities lists every priority from lowest to highest.
var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh}

// ParsePriority maps free text to a Priority.
func ParsePriority(raw string) (Priority, bool) {
	switch Priority(strings.ToLower(strings.TrimSpace(raw))) {
	case PriorityLow:
		return PriorityLow, true
	case PriorityMedium:
		return PriorityMedium, true
	case PriorityHigh:
		return PriorityHigh, true
	default:
		return "", false
	}
}

// Task represents a single item in the task list.
type Task struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Priority  Priority   `json:"priority"`
	Category  string     `json:"category"`
	Completed bool       `json:"completed"`
	DueDate   *time.Time `json:"dueDate,omitempty"`
	Weather   *Weather   `json:"weather,omitempty"`

	// dueRaw holds a stored due date that could not be parsed, so that it
	// is written back unchanged.
	dueRaw string
}

// IsOverdue reports whether the due date has passed.
func (t Task) IsOverdue(now time.Time) bool {
	return t.DueDate != nil && t.DueDate.Before(now)
}

// dueDateLayouts are accepted when reading persisted tasks. Older records
// carry the browser's datetime-local format without seconds or zone.
var dueDateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05Z0700",
	"2006-01-02T15:04Z0700",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseDueDate parses the textual due date formats accepted for tasks.
// Formats without a zone are read in loc.
func ParseDueDate(raw string, loc *time.Location) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range dueDateLayouts {
		if parsed, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised due date %q", raw)
}

// UnmarshalJSON tolerates an empty or zone-less dueDate. A due date in an
// unknown format is kept as text and the task loads without one.
func (t *Task) UnmarshalJSON(data []byte) error {
	type alias Task
	aux := struct {
		*alias
		DueDate *string `json:"dueDate,omitempty"`
	}{alias: (*alias)(t)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	t.DueDate = nil
	t.dueRaw = ""
	if aux.DueDate == nil || strings.TrimSpace(*aux.DueDate) == "" {
		return nil
	}
	due, err := ParseDueDate(*aux.DueDate, time.Local)
	if err != nil {
		log.Printf("[warn] task %s: keeping unparsed due date: %v", t.ID, err)
		t.dueRaw = *aux.DueDate
		return nil
	}
	t.DueDate = &due
	return nil
}

// MarshalJSON writes back an unparsed due date verbatim.
func (t Task) MarshalJSON() ([]byte, error) {
	type alias Task
	aux := struct {
		alias
		DueDate *string `json:"dueDate,omitempty"`
	}{alias: alias(t)}
	switch {
	case t.DueDate != nil:
		due := t.DueDate.Format(time.RFC3339Nano)
		aux.DueDate = &due
	case t.dueRaw != "":
		due := t.dueRaw
		aux.DueDate = &due
	}
	return json.Marshal(aux)
}

// Clone returns a deep copy of the task.
func (t Task) Clone() Task {
	out := t
	if t.DueDate != nil {
		due := *t.DueDate
		out.DueDate = &due
	}
	if t.Weather != nil {
		w := *t.Weather
		out.Weather = &w
	}
	return out
}

// CloneTasks deep-copies a task slice. A nil slice yields an empty one.
func CloneTasks(tasks []Task) []Task {
	out := make([]Task, len(tasks))
	for i := range tasks {
		out[i] = tasks[i].Clone()
	}
	return out
}
