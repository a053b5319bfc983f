package service

import (
	"fmt"
	"html"
	"sort"
	"strings"
	"time"

	"task-manager/internal/model"
)

// ReportService builds the periodic summary sent to the signed-in user.
type ReportService struct {
	tasks *TaskService
	auth  *AuthService
}

func NewReportService(tasks *TaskService, auth *AuthService) *ReportService {
	return &ReportService{tasks: tasks, auth: auth}
}

// Summary renders statistics and open tasks as Telegram HTML. It reports
// false when nobody is signed in.
func (s *ReportService) Summary(now time.Time) (string, bool) {
	user, ok := s.auth.CurrentUser()
	if !ok {
		return "", false
	}

	tasks := s.tasks.Tasks()
	stats := ComputeStats(tasks, now)

	var pending []model.Task
	for _, task := range tasks {
		if !task.Completed {
			pending = append(pending, task)
		}
	}
	sortByDueDate(pending)

	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("📋 <b>Summary for %s</b>\n", html.EscapeString(user.Username)))
	builder.WriteString(fmt.Sprintf("🗓 %s\n\n", now.Format("2006-01-02 15:04")))
	builder.WriteString(FormatStats(stats))
	builder.WriteString("\n🔥 <b>Open tasks</b>\n")
	if len(pending) == 0 {
		builder.WriteString("— nothing left to do\n")
	} else {
		for _, task := range pending {
			builder.WriteString(formatReportLine(task, now))
		}
	}

	return strings.TrimSpace(builder.String()), true
}

// FormatStats renders the counters block.
func FormatStats(stats model.TaskStats) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("✅ Completed: %d / %d\n", stats.Completed, stats.Total))
	b.WriteString(fmt.Sprintf("🔴 High: %d · 🟡 Medium: %d · 🟢 Low: %d\n", stats.High, stats.Medium, stats.Low))
	b.WriteString(fmt.Sprintf("⏰ Overdue: %d\n", stats.Overdue))
	return b.String()
}

// sortByDueDate orders tasks by due date, undated last, keeping insertion
// order among equals.
func sortByDueDate(tasks []model.Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		switch {
		case tasks[i].DueDate == nil:
			return false
		case tasks[j].DueDate == nil:
			return true
		default:
			return tasks[i].DueDate.Before(*tasks[j].DueDate)
		}
	})
}

func formatReportLine(task model.Task, now time.Time) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("%s %s <i>(%s, %s)</i>", DueIcon(task, now), html.EscapeString(strings.TrimSpace(task.Title)),
		html.EscapeString(task.Category), task.Priority))

	if task.DueDate != nil {
		d := task.DueDate.In(now.Location())
		if now.After(d) {
			sb.WriteString(fmt.Sprintf("\n   ⏰ due %s — <b>overdue</b>", d.Format("2006-01-02 15:04")))
		} else {
			sb.WriteString(fmt.Sprintf("\n   ⏰ due %s", d.Format("2006-01-02 15:04")))
		}
	}

	sb.WriteByte('\n')
	return sb.String()
}

// DueIcon marks overdue tasks and tasks due within two days.
func DueIcon(task model.Task, now time.Time) string {
	if task.DueDate == nil {
		return "🟢"
	}
	d := task.DueDate.In(now.Location())
	switch {
	case now.After(d):
		return "⚠️"
	case d.Sub(now) <= 48*time.Hour:
		return "⏳"
	default:
		return "🟢"
	}
}
