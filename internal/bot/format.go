package bot

import (
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"task-manager/internal/model"
	"task-manager/internal/service"
)

var priorityIcons = map[model.Priority]string{
	model.PriorityHigh:   "🔴",
	model.PriorityMedium: "🟡",
	model.PriorityLow:    "🟢",
}

func (b *Bot) sendTaskList(chatID int64) error {
	tasks := b.svc.Tasks.Tasks()
	filter := b.getFilter(chatID)

	position := make(map[string]int, len(tasks))
	for i, task := range tasks {
		position[task.ID] = i + 1
	}
	visible := service.FilterTasks(tasks, filter.term, filter.category)

	if len(tasks) == 0 {
		return b.sendText(chatID, "No tasks yet. Add one with /newtask.")
	}
	if len(visible) == 0 {
		return b.sendText(chatID, "No tasks match"+describeFilter(filter)+". Use /tasks to clear the search or /category All.")
	}

	now := b.now()
	var builder strings.Builder
	builder.WriteString("📋 <b>Tasks</b>" + describeFilter(filter) + "\n\n")

	var buttons [][]tgbotapi.InlineKeyboardButton
	for _, task := range visible {
		pos := position[task.ID]
		builder.WriteString(formatTask(task, pos, now))

		toggleLabel := fmt.Sprintf("✅ #%d · %s", pos, shortTitle(task.Title, 24))
		if task.Completed {
			toggleLabel = fmt.Sprintf("↩️ #%d · %s", pos, shortTitle(task.Title, 24))
		}
		buttons = append(buttons, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(toggleLabel, cbTogglePrefix+task.ID),
			tgbotapi.NewInlineKeyboardButtonData("🗑", cbDeletePrefix+task.ID),
		))
	}

	msg := tgbotapi.NewMessage(chatID, strings.TrimSpace(builder.String()))
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(buttons...)
	msg.ParseMode = tgbotapi.ModeHTML
	_, err := b.api.Send(msg)
	return err
}

func describeFilter(filter listFilter) string {
	var parts []string
	if filter.term != "" {
		parts = append(parts, fmt.Sprintf("«%s»", escape(filter.term)))
	}
	if filter.category != "" {
		parts = append(parts, "in "+escape(filter.category))
	}
	if len(parts) == 0 {
		return ""
	}
	return " " + strings.Join(parts, " ")
}

func formatTask(task model.Task, pos int, now time.Time) string {
	var b strings.Builder
	check := "⬜"
	title := escape(task.Title)
	if task.Completed {
		check = "✅"
		title = "<s>" + title + "</s>"
	}
	b.WriteString(fmt.Sprintf("%s <b>#%d</b> %s\n", check, pos, title))
	b.WriteString(fmt.Sprintf("   %s · %s", priorityLabel(task.Priority), escape(task.Category)))
	if task.Weather != nil {
		b.WriteString(" · " + formatWeather(*task.Weather))
	}
	b.WriteByte('\n')
	if task.DueDate != nil {
		d := task.DueDate.In(now.Location())
		if task.IsOverdue(now) {
			b.WriteString(fmt.Sprintf("   %s %s — <b>overdue</b>\n", service.DueIcon(task, now), d.Format("2006-01-02 15:04")))
		} else {
			b.WriteString(fmt.Sprintf("   %s %s\n", service.DueIcon(task, now), d.Format("2006-01-02 15:04")))
		}
	}
	b.WriteByte('\n')
	return b.String()
}

func formatWeather(w model.Weather) string {
	icon := "☁️"
	if w.Condition == model.ConditionSunny {
		icon = "☀️"
	}
	return fmt.Sprintf("%s %d°C", icon, w.Temp)
}

func priorityLabel(p model.Priority) string {
	icon, ok := priorityIcons[p]
	if !ok {
		return escape(string(p))
	}
	name := string(p)
	return fmt.Sprintf("%s %s", icon, strings.ToUpper(name[:1])+name[1:])
}

// stripPriorityIcon turns a keyboard label like "🔴 High" back into "High".
func stripPriorityIcon(text string) string {
	for _, icon := range priorityIcons {
		text = strings.TrimPrefix(text, icon)
	}
	return strings.TrimSpace(text)
}

func shortTitle(title string, maxLen int) string {
	clean := strings.TrimSpace(strings.ReplaceAll(title, "\n", " "))
	runes := []rune(clean)
	if len(runes) <= maxLen {
		return clean
	}
	if maxLen <= 1 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-1]) + "…"
}

func mainMenuKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(menuLabelNewTask),
			tgbotapi.NewKeyboardButton(menuLabelTasks),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(menuLabelStats),
			tgbotapi.NewKeyboardButton(menuLabelHelp),
		),
	)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = false
	return kb
}

func cancelKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnCancelDialog),
		),
	)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = true
	return kb
}

func skipKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnSkip),
			tgbotapi.NewKeyboardButton(btnCancelDialog),
		),
	)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = true
	return kb
}

func priorityKeyboard() tgbotapi.ReplyKeyboardMarkup {
	row := make([]tgbotapi.KeyboardButton, 0, len(model.Priorities))
	for _, p := range model.Priorities {
		row = append(row, tgbotapi.NewKeyboardButton(priorityLabel(p)))
	}
	kb := tgbotapi.NewReplyKeyboard(
		row,
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnSkip),
			tgbotapi.NewKeyboardButton(btnCancelDialog),
		),
	)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = true
	return kb
}

// categoryKeyboard lays categories out two per row.
func categoryKeyboard(categories []string) tgbotapi.ReplyKeyboardMarkup {
	var rows [][]tgbotapi.KeyboardButton
	for i := 0; i < len(categories); i += 2 {
		row := []tgbotapi.KeyboardButton{tgbotapi.NewKeyboardButton(categories[i])}
		if i+1 < len(categories) {
			row = append(row, tgbotapi.NewKeyboardButton(categories[i+1]))
		}
		rows = append(rows, row)
	}
	rows = append(rows, tgbotapi.NewKeyboardButtonRow(
		tgbotapi.NewKeyboardButton(btnSkip),
		tgbotapi.NewKeyboardButton(btnCancelDialog),
	))
	kb := tgbotapi.NewReplyKeyboard(rows...)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = true
	return kb
}
