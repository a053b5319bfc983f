package bot

import (
	"context"
	"fmt"
	"html"
	"log"
	"strconv"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"task-manager/internal/model"
	"task-manager/internal/service"
)

const (
	cbTogglePrefix = "toggle:"
	cbDeletePrefix = "delete:"
)

const (
	btnSkip          = "⏭️ Skip"
	btnCancelDialog  = "⏪ Cancel"
	menuLabelNewTask = "➕ New task"
	menuLabelTasks   = "📋 Tasks"
	menuLabelStats   = "📊 Stats"
	menuLabelHelp    = "ℹ️ Help"
)

// messenger is the part of the Telegram API the bot uses.
type messenger interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// Services are the state containers and helpers the bot dispatches into.
type Services struct {
	Auth       *service.AuthService
	Tasks      *service.TaskService
	Categories *service.CategoryService
	Stats      *service.StatsService
	Reports    *service.ReportService
}

// listFilter is the search applied to /tasks for a chat.
type listFilter struct {
	term     string
	category string
}

// Bot is the Telegram front end of the task manager.
type Bot struct {
	api           messenger
	svc           Services
	now           func() time.Time
	conversations map[int64]*conversationState
	filters       map[int64]listFilter
	mu            sync.Mutex
}

func New(token string, svc Services) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}

	log.Printf("[info] bot authorized on account %s", api.Self.UserName)
	return newBot(api, svc), nil
}

func newBot(api messenger, svc Services) *Bot {
	return &Bot{
		api:           api,
		svc:           svc,
		now:           time.Now,
		conversations: make(map[int64]*conversationState),
		filters:       make(map[int64]listFilter),
	}
}

// Start begins polling updates until ctx is cancelled.
func (b *Bot) Start(ctx context.Context) error {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updates := b.api.GetUpdatesChan(updateConfig)

	log.Println("[info] start polling updates")

	go func() {
		<-ctx.Done()
		b.api.StopReceivingUpdates()
	}()

	for update := range updates {
		b.handleUpdate(ctx, update)
	}

	return ctx.Err()
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.CallbackQuery != nil:
		if err := b.handleCallback(ctx, update.CallbackQuery); err != nil {
			log.Printf("handle callback: %v", err)
		}
	case update.Message != nil:
		if update.Message.Chat == nil || !update.Message.Chat.IsPrivate() {
			return
		}
		if err := b.handleMessage(ctx, update.Message); err != nil {
			log.Printf("handle message: %v", err)
		}
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) error {
	if msg.From == nil {
		return nil
	}

	if !msg.IsCommand() && isCancelDialogInput(msg.Text) {
		b.clearConversation(msg.From.ID)
		return b.sendText(msg.Chat.ID, "⏪ Cancelled.")
	}

	if msg.IsCommand() {
		log.Printf("[info] command from %d: /%s %s", msg.From.ID, msg.Command(), msg.CommandArguments())
		return b.handleCommand(ctx, msg)
	}

	if handled, err := b.handleMenuAlias(ctx, msg); handled {
		return err
	}

	if b.hasConversation(msg.From.ID) {
		return b.handleConversation(ctx, msg)
	}

	return b.sendText(msg.Chat.ID, "I did not get that. Send /newtask to add a task or /help for the command list.")
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) error {
	switch msg.Command() {
	case "start":
		return b.handleStart(msg)
	case "help":
		return b.handleHelp(msg)
	case "login":
		return b.handleLogin(ctx, msg)
	}

	if _, ok, err := b.requireOwner(msg.Chat.ID, msg.From); !ok {
		return err
	}

	switch msg.Command() {
	case "logout":
		return b.handleLogout(ctx, msg)
	case "newtask":
		return b.startNewTaskConversation(msg)
	case "tasks":
		return b.handleListTasks(msg)
	case "category":
		return b.handleCategory(msg)
	case "toggle":
		return b.handleToggle(ctx, msg)
	case "delete":
		return b.handleDelete(ctx, msg)
	case "stats":
		return b.handleStats(msg)
	case "report":
		return b.handleReport(msg)
	case "cancel":
		b.clearConversation(msg.From.ID)
		return b.sendText(msg.Chat.ID, "⏪ Task creation cancelled.")
	default:
		return b.sendText(msg.Chat.ID, "Unknown command. See /help.")
	}
}

func (b *Bot) handleStart(msg *tgbotapi.Message) error {
	if user, ok := b.svc.Auth.CurrentUser(); ok && user.ID == userID(msg.From) {
		return b.sendText(msg.Chat.ID, fmt.Sprintf("👋 Welcome back, %s!\n\n%s", escape(user.Username), helpText))
	}
	return b.sendText(msg.Chat.ID, "👋 <b>Welcome to Task Manager</b>\nSign in with /login &lt;username&gt; to get started.\n\n"+helpText)
}

const helpText = "ℹ️ <b>Commands</b>\n" +
	"• /login &lt;username&gt; — sign in\n" +
	"• /logout — sign out\n" +
	"• /newtask — add a task step by step\n" +
	"• /tasks [text] — list tasks, optionally searching titles\n" +
	"• /category &lt;name|All&gt; — filter the list by category\n" +
	"• /toggle &lt;n&gt; — mark task #n done or not done\n" +
	"• /delete &lt;n&gt; — delete task #n\n" +
	"• /stats — task statistics\n" +
	"• /report — summary of open tasks\n" +
	"• /cancel — abort the current input"

func (b *Bot) handleHelp(msg *tgbotapi.Message) error {
	return b.sendText(msg.Chat.ID, helpText)
}

func (b *Bot) handleLogin(ctx context.Context, msg *tgbotapi.Message) error {
	username := strings.TrimSpace(msg.CommandArguments())
	if username == "" {
		username = strings.TrimSpace(msg.From.UserName)
	}
	if username == "" {
		return b.sendText(msg.Chat.ID, "Tell me your username: /login alice")
	}

	if current, ok := b.svc.Auth.CurrentUser(); ok {
		if current.ID != userID(msg.From) {
			return b.sendText(msg.Chat.ID, "🔒 Another account is signed in.")
		}
		if current.Username == username {
			return b.sendText(msg.Chat.ID, fmt.Sprintf("You are already signed in as %s.", escape(username)))
		}
	}

	user := model.User{ID: userID(msg.From), Username: username}
	if err := b.svc.Auth.Login(ctx, user); err != nil {
		return b.sendText(msg.Chat.ID, fmt.Sprintf("Could not sign in: %s", escape(err.Error())))
	}
	return b.sendText(msg.Chat.ID, fmt.Sprintf("✅ Signed in as <b>%s</b>.\n\n%s", escape(username), helpText))
}

func (b *Bot) handleLogout(ctx context.Context, msg *tgbotapi.Message) error {
	if err := b.svc.Auth.Logout(ctx); err != nil {
		return b.sendText(msg.Chat.ID, fmt.Sprintf("Could not sign out: %s", escape(err.Error())))
	}
	b.clearConversation(msg.From.ID)
	b.clearFilter(msg.Chat.ID)
	return b.sendTextWithRemove(msg.Chat.ID, "👋 Signed out. Use /login to come back.")
}

func (b *Bot) handleListTasks(msg *tgbotapi.Message) error {
	filter := b.getFilter(msg.Chat.ID)
	filter.term = strings.TrimSpace(msg.CommandArguments())
	b.setFilter(msg.Chat.ID, filter)
	return b.sendTaskList(msg.Chat.ID)
}

func (b *Bot) handleCategory(msg *tgbotapi.Message) error {
	name := strings.TrimSpace(msg.CommandArguments())
	if name == "" {
		return b.sendText(msg.Chat.ID, "Categories: "+escape(strings.Join(append([]string{service.CategoryAll}, b.svc.Categories.List()...), ", "))+
			"\nChoose one with /category Work")
	}
	filter := b.getFilter(msg.Chat.ID)
	if strings.EqualFold(name, service.CategoryAll) {
		filter.category = ""
	} else {
		filter.category = b.svc.Categories.Resolve(name)
	}
	b.setFilter(msg.Chat.ID, filter)
	return b.sendTaskList(msg.Chat.ID)
}

func (b *Bot) handleToggle(ctx context.Context, msg *tgbotapi.Message) error {
	task, ok, err := b.taskByPosition(msg.Chat.ID, msg.CommandArguments(), "/toggle 2")
	if !ok {
		return err
	}
	return b.toggleAndRefresh(ctx, msg.Chat.ID, task.ID)
}

func (b *Bot) handleDelete(ctx context.Context, msg *tgbotapi.Message) error {
	task, ok, err := b.taskByPosition(msg.Chat.ID, msg.CommandArguments(), "/delete 2")
	if !ok {
		return err
	}
	return b.deleteAndRefresh(ctx, msg.Chat.ID, task.ID)
}

func (b *Bot) handleStats(msg *tgbotapi.Message) error {
	return b.sendText(msg.Chat.ID, "📊 <b>Statistics</b>\n"+service.FormatStats(b.svc.Stats.Current()))
}

func (b *Bot) handleReport(msg *tgbotapi.Message) error {
	text, ok := b.svc.Reports.Summary(b.now())
	if !ok {
		return b.sendText(msg.Chat.ID, "Nobody is signed in.")
	}
	return b.sendText(msg.Chat.ID, text)
}

// SendReport delivers the summary to the signed-in user's chat.
func (b *Bot) SendReport(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	user, ok := b.svc.Auth.CurrentUser()
	if !ok {
		return nil
	}
	chatID, err := strconv.ParseInt(user.ID, 10, 64)
	if err != nil {
		return fmt.Errorf("report: user id %q is not a chat id: %w", user.ID, err)
	}
	text, ok := b.svc.Reports.Summary(b.now())
	if !ok {
		return nil
	}
	log.Printf("[info] sending report to %s", user.Username)
	return b.sendText(chatID, text)
}

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) error {
	if cb == nil || cb.From == nil || cb.Message == nil || cb.Message.Chat == nil {
		return nil
	}
	if _, err := b.api.Request(tgbotapi.NewCallback(cb.ID, "")); err != nil {
		log.Printf("callback ack: %v", err)
	}

	chatID := cb.Message.Chat.ID
	if _, ok, err := b.requireOwner(chatID, cb.From); !ok {
		return err
	}

	switch {
	case strings.HasPrefix(cb.Data, cbTogglePrefix):
		log.Printf("[info] callback toggle user=%d task=%s", cb.From.ID, strings.TrimPrefix(cb.Data, cbTogglePrefix))
		return b.toggleAndRefresh(ctx, chatID, strings.TrimPrefix(cb.Data, cbTogglePrefix))
	case strings.HasPrefix(cb.Data, cbDeletePrefix):
		log.Printf("[info] callback delete user=%d task=%s", cb.From.ID, strings.TrimPrefix(cb.Data, cbDeletePrefix))
		return b.deleteAndRefresh(ctx, chatID, strings.TrimPrefix(cb.Data, cbDeletePrefix))
	default:
		return nil
	}
}

func (b *Bot) toggleAndRefresh(ctx context.Context, chatID int64, taskID string) error {
	task, found, err := b.svc.Tasks.ToggleTask(ctx, taskID)
	if err != nil {
		return b.sendText(chatID, fmt.Sprintf("Error: %s", escape(err.Error())))
	}
	if !found {
		return b.sendText(chatID, "Task not found or already deleted.")
	}

	log.Printf("[info] task toggled id=%s completed=%t", task.ID, task.Completed)
	state := "not done"
	if task.Completed {
		state = "done"
	}
	if err := b.sendText(chatID, fmt.Sprintf("✅ «%s» marked %s.", escape(task.Title), state)); err != nil {
		return err
	}
	return b.sendTaskList(chatID)
}

func (b *Bot) deleteAndRefresh(ctx context.Context, chatID int64, taskID string) error {
	task, found, err := b.svc.Tasks.RemoveTask(ctx, taskID)
	if err != nil {
		return b.sendText(chatID, fmt.Sprintf("Error: %s", escape(err.Error())))
	}
	if !found {
		return b.sendText(chatID, "Task not found or already deleted.")
	}

	log.Printf("[info] task deleted id=%s", task.ID)
	if err := b.sendText(chatID, fmt.Sprintf("🗑 «%s» deleted.", escape(task.Title))); err != nil {
		return err
	}
	return b.sendTaskList(chatID)
}

// requireOwner checks that from is the signed-in user and tells the chat
// otherwise.
func (b *Bot) requireOwner(chatID int64, from *tgbotapi.User) (model.User, bool, error) {
	user, ok := b.svc.Auth.CurrentUser()
	if !ok {
		return model.User{}, false, b.sendText(chatID, "🔒 Please sign in first: /login &lt;username&gt;")
	}
	if user.ID != userID(from) {
		return model.User{}, false, b.sendText(chatID, "🔒 Another account is signed in.")
	}
	return user, true, nil
}

// taskByPosition resolves the 1-based position used in the task list.
func (b *Bot) taskByPosition(chatID int64, raw, example string) (model.Task, bool, error) {
	raw = strings.TrimPrefix(strings.TrimSpace(raw), "#")
	if raw == "" {
		return model.Task{}, false, b.sendText(chatID, "Which task? For example: "+example)
	}
	pos, err := strconv.Atoi(raw)
	if err != nil {
		return model.Task{}, false, b.sendText(chatID, "The task number must be a number.")
	}
	tasks := b.svc.Tasks.Tasks()
	if pos < 1 || pos > len(tasks) {
		return model.Task{}, false, b.sendText(chatID, "Task not found.")
	}
	return tasks[pos-1], true, nil
}

func (b *Bot) handleMenuAlias(ctx context.Context, msg *tgbotapi.Message) (bool, error) {
	text := strings.TrimSpace(strings.ToLower(msg.Text))
	switch text {
	case strings.ToLower(menuLabelNewTask), strings.ToLower(menuLabelTasks), strings.ToLower(menuLabelStats):
	case strings.ToLower(menuLabelHelp):
		return true, b.handleHelp(msg)
	default:
		return false, nil
	}

	if _, ok, err := b.requireOwner(msg.Chat.ID, msg.From); !ok {
		return true, err
	}
	switch text {
	case strings.ToLower(menuLabelNewTask):
		return true, b.startNewTaskConversation(msg)
	case strings.ToLower(menuLabelTasks):
		b.clearFilter(msg.Chat.ID)
		return true, b.sendTaskList(msg.Chat.ID)
	default:
		return true, b.handleStats(msg)
	}
}

func (b *Bot) sendText(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = mainMenuKeyboard()
	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) sendTextWithRemove(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = tgbotapi.NewRemoveKeyboard(true)
	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) sendWithReplyMarkup(chatID int64, text string, markup interface{}) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = markup
	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) getFilter(chatID int64) listFilter {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.filters[chatID]
}

func (b *Bot) setFilter(chatID int64, filter listFilter) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.filters[chatID] = filter
}

func (b *Bot) clearFilter(chatID int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.filters, chatID)
}

func userID(from *tgbotapi.User) string {
	return strconv.FormatInt(from.ID, 10)
}

func escape(s string) string {
	return html.EscapeString(s)
}
