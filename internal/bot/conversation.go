package bot

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"

	"task-manager/internal/model"
	"task-manager/internal/service"
)

type conversationStage int

const (
	stageNone conversationStage = iota
	stageTitle
	stagePriority
	stageCategory
	stageDueDate
)

// taskDraft collects the fields of a task being created.
type taskDraft struct {
	title    string
	priority model.Priority
	category string
	dueDate  *time.Time
}

type conversationState struct {
	stage conversationStage
	draft taskDraft
}

func (b *Bot) startNewTaskConversation(msg *tgbotapi.Message) error {
	log.Printf("[info] start new task conversation user=%d", msg.From.ID)
	b.setConversation(msg.From.ID, &conversationState{stage: stageTitle})
	return b.sendWithReplyMarkup(msg.Chat.ID, "🆕 New task.\n<b>Step 1:</b> what needs to be done?", cancelKeyboard())
}

func (b *Bot) handleConversation(ctx context.Context, msg *tgbotapi.Message) error {
	state := b.getConversation(msg.From.ID)
	if state == nil {
		return nil
	}
	if _, ok, err := b.requireOwner(msg.Chat.ID, msg.From); !ok {
		b.clearConversation(msg.From.ID)
		return err
	}

	text := strings.TrimSpace(msg.Text)
	switch state.stage {
	case stageTitle:
		if text == "" {
			return b.sendWithReplyMarkup(msg.Chat.ID, "The title cannot be empty. What needs to be done?", cancelKeyboard())
		}
		state.draft.title = text
		state.stage = stagePriority
		return b.sendWithReplyMarkup(msg.Chat.ID, "🚩 <b>Step 2:</b> priority? (default: medium)", priorityKeyboard())
	case stagePriority:
		state.draft.priority = model.PriorityMedium
		if !isSkipInput(text) {
			priority, ok := model.ParsePriority(stripPriorityIcon(text))
			if !ok {
				return b.sendWithReplyMarkup(msg.Chat.ID, "Choose low, medium or high.", priorityKeyboard())
			}
			state.draft.priority = priority
		}
		state.stage = stageCategory
		return b.sendWithReplyMarkup(msg.Chat.ID, fmt.Sprintf("🏷 <b>Step 3:</b> category? Pick one or type your own (default: %s).", service.DefaultCategory),
			categoryKeyboard(b.svc.Categories.List()))
	case stageCategory:
		state.draft.category = service.DefaultCategory
		if !isSkipInput(text) {
			state.draft.category = b.svc.Categories.Resolve(text)
		}
		state.stage = stageDueDate
		return b.sendWithReplyMarkup(msg.Chat.ID, "⏰ <b>Step 4:</b> due date as <code>2026-11-30</code> or <code>2026-11-30 18:00</code> (or skip).", skipKeyboard())
	case stageDueDate:
		if !isSkipInput(text) {
			due, err := model.ParseDueDate(text, b.now().Location())
			if err != nil {
				return b.sendWithReplyMarkup(msg.Chat.ID, "I cannot read that date. Use <code>2026-11-30</code> or <code>2026-11-30 18:00</code>, or skip.", skipKeyboard())
			}
			state.draft.dueDate = &due
		}
		err := b.finishTaskCreation(ctx, msg.Chat.ID, state.draft)
		b.clearConversation(msg.From.ID)
		return err
	default:
		b.clearConversation(msg.From.ID)
		return b.sendText(msg.Chat.ID, "Dialog reset. Try /newtask again.")
	}
}

func (b *Bot) finishTaskCreation(ctx context.Context, chatID int64, draft taskDraft) error {
	task := model.Task{
		ID:       uuid.NewString(),
		Title:    draft.title,
		Priority: draft.priority,
		Category: draft.category,
		DueDate:  draft.dueDate,
	}
	if err := b.svc.Tasks.AddTask(ctx, task); err != nil {
		return b.sendText(chatID, fmt.Sprintf("Could not save the task: %s", escape(err.Error())))
	}

	log.Printf("[info] task created id=%s priority=%s category=%s", task.ID, task.Priority, task.Category)

	var summary strings.Builder
	summary.WriteString("✅ <b>Task saved</b>\n")
	summary.WriteString(fmt.Sprintf("• <b>Title:</b> %s\n", escape(task.Title)))
	summary.WriteString(fmt.Sprintf("• <b>Priority:</b> %s\n", priorityLabel(task.Priority)))
	summary.WriteString(fmt.Sprintf("• <b>Category:</b> %s\n", escape(task.Category)))
	if task.DueDate != nil {
		summary.WriteString(fmt.Sprintf("• <b>Due:</b> %s\n", task.DueDate.Format("2006-01-02 15:04")))
	}
	if err := b.sendText(chatID, strings.TrimSpace(summary.String())); err != nil {
		return err
	}
	return b.sendTaskList(chatID)
}

func (b *Bot) setConversation(userID int64, state *conversationState) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.conversations[userID] = state
}

func (b *Bot) getConversation(userID int64) *conversationState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.conversations[userID]
}

func (b *Bot) hasConversation(userID int64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.conversations[userID]
	return ok
}

func (b *Bot) clearConversation(userID int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.conversations, userID)
}

func isSkipInput(text string) bool {
	value := strings.TrimSpace(strings.ToLower(text))
	return value == "-" || value == strings.ToLower(btnSkip) || value == "skip"
}

func isCancelDialogInput(text string) bool {
	value := strings.TrimSpace(strings.ToLower(text))
	return value == strings.ToLower(btnCancelDialog) || value == "cancel"
}
