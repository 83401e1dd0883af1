package telegram

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/gumruyanzh/telegram-task-bot/internal/clock"
	"github.com/gumruyanzh/telegram-task-bot/internal/domain"
	"github.com/gumruyanzh/telegram-task-bot/internal/repository"
	"github.com/gumruyanzh/telegram-task-bot/internal/usecase"
)

// Bot is the chat-facing layer: admin commands, the user directory upsert,
// and yes/no callback handling. The admin allow-list is enforced here, not in
// the scheduling core.
type Bot struct {
	client      *Client
	tasks       *usecase.TaskService
	reminders   *usecase.ReminderService
	users       repository.UserRepository
	admins      map[int64]struct{}
	pollTimeout time.Duration
	now         func() time.Time
}

func NewBot(
	client *Client,
	tasks *usecase.TaskService,
	reminders *usecase.ReminderService,
	users repository.UserRepository,
	adminIDs []int64,
	pollTimeout time.Duration,
) *Bot {
	admins := make(map[int64]struct{}, len(adminIDs))
	for _, id := range adminIDs {
		admins[id] = struct{}{}
	}
	return &Bot{
		client:      client,
		tasks:       tasks,
		reminders:   reminders,
		users:       users,
		admins:      admins,
		pollTimeout: pollTimeout,
		now:         time.Now,
	}
}

// NewNotifier adapts the client to the scheduling core's delivery interface.
func NewNotifier(client *Client) usecase.Notifier {
	return &notifier{client: client}
}

func (b *Bot) Run(ctx context.Context) error {
	offset := 0
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		updates, err := b.client.GetUpdates(ctx, offset, b.pollTimeout)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return err
			}
			log.Printf("telegram getUpdates error: %v", err)
			time.Sleep(2 * time.Second)
			continue
		}
		for _, upd := range updates {
			offset = upd.UpdateID + 1
			switch {
			case upd.CallbackQuery != nil:
				if err := b.handleCallback(ctx, upd.CallbackQuery); err != nil {
					log.Printf("telegram handle callback error: %v", err)
				}
			case upd.Message != nil && upd.Message.Text != "":
				if err := b.handleMessage(ctx, upd.Message); err != nil {
					log.Printf("telegram handle message error: %v", err)
				}
			}
		}
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *Message) error {
	if msg.From == nil {
		return nil
	}
	b.recordActor(msg.From)

	command, args := parseCommand(msg.Text)
	if command == "" {
		return nil
	}

	switch command {
	case "start", "help":
		return b.client.SendMessage(ctx, msg.Chat.ID, helpText(), nil)
	case "createtask":
		return b.createTask(ctx, msg, args)
	case "tasks":
		return b.listTasks(ctx, msg)
	case "removetask":
		return b.removeTask(ctx, msg, args)
	default:
		return nil
	}
}

func (b *Bot) createTask(ctx context.Context, msg *Message, args string) error {
	if !b.isAdmin(msg.From.ID) {
		return b.client.SendMessage(ctx, msg.Chat.ID, "❌ Only admins can create tasks.", nil)
	}
	fields := strings.Fields(args)
	if len(fields) < 4 {
		return b.client.SendMessage(ctx, msg.Chat.ID,
			"❌ Usage: /createtask @username [task description] [time] [frequency]\n"+
				"Example: /createtask @john Clean office 09:00 daily", nil)
	}
	username := fields[0]
	if !strings.HasPrefix(username, "@") {
		return b.client.SendMessage(ctx, msg.Chat.ID, "❌ Username must start with @", nil)
	}
	timeStr := fields[len(fields)-2]
	frequency := fields[len(fields)-1]
	description := strings.Join(fields[1:len(fields)-2], " ")

	task, err := b.tasks.CreateTask(msg.Chat.ID, username, description, timeStr, frequency)
	if err != nil {
		switch {
		case errors.Is(err, clock.ErrInvalidTime):
			return b.client.SendMessage(ctx, msg.Chat.ID,
				"❌ Invalid time format. Use HH:MM (24-hour) or HH:MMAM/PM", nil)
		case errors.Is(err, usecase.ErrInvalidFrequency):
			return b.client.SendMessage(ctx, msg.Chat.ID, "❌ Frequency must be 'once' or 'daily'", nil)
		case errors.Is(err, usecase.ErrEmptyDescription):
			return b.client.SendMessage(ctx, msg.Chat.ID, "❌ Task description is empty.", nil)
		default:
			_ = b.client.SendMessage(ctx, msg.Chat.ID, "❌ Could not create the task.", nil)
			return err
		}
	}
	return b.client.SendMessage(ctx, msg.Chat.ID, fmt.Sprintf(
		"✅ Task created!\n\nTask ID: %d\nAssignee: @%s\nDescription: %s\nTime: %s\nFrequency: %s",
		task.ID, task.AssigneeName, task.Description, task.ScheduledTime, task.Frequency), nil)
}

func (b *Bot) listTasks(ctx context.Context, msg *Message) error {
	tasks, err := b.tasks.ListTasks(msg.Chat.ID)
	if err != nil {
		_ = b.client.SendMessage(ctx, msg.Chat.ID, "❌ Could not list tasks.", nil)
		return err
	}
	if len(tasks) == 0 {
		return b.client.SendMessage(ctx, msg.Chat.ID, "📝 No tasks found.", nil)
	}
	lines := make([]string, 0, len(tasks)+1)
	lines = append(lines, "📋 Tasks:")
	for _, t := range tasks {
		lines = append(lines, fmt.Sprintf("ID %d: %s\n👤 @%s | ⏰ %s | 🔄 %s | %s",
			t.ID, t.Description, t.AssigneeName, t.ScheduledTime, t.Frequency, t.Status))
	}
	return b.client.SendMessage(ctx, msg.Chat.ID, strings.Join(lines, "\n\n"), nil)
}

func (b *Bot) removeTask(ctx context.Context, msg *Message, args string) error {
	if !b.isAdmin(msg.From.ID) {
		return b.client.SendMessage(ctx, msg.Chat.ID, "❌ Only admins can remove tasks.", nil)
	}
	id, err := strconv.ParseInt(strings.TrimSpace(args), 10, 64)
	if err != nil || id <= 0 {
		return b.client.SendMessage(ctx, msg.Chat.ID, "❌ Usage: /removetask [task_id]", nil)
	}
	if err := b.tasks.RemoveTask(id); err != nil {
		if errors.Is(err, usecase.ErrUnknownTask) {
			return b.client.SendMessage(ctx, msg.Chat.ID, "❌ Task not found or already removed.", nil)
		}
		_ = b.client.SendMessage(ctx, msg.Chat.ID, "❌ Could not remove the task.", nil)
		return err
	}
	return b.client.SendMessage(ctx, msg.Chat.ID, fmt.Sprintf("✅ Task %d removed.", id), nil)
}

func (b *Bot) handleCallback(ctx context.Context, cb *CallbackQuery) error {
	if cb.From == nil {
		return nil
	}
	b.recordActor(cb.From)

	taskID, answer, ok := parseCallbackData(cb.Data)
	if !ok {
		return b.client.AnswerCallbackQuery(ctx, cb.ID, "")
	}

	err := b.reminders.Respond(ctx, taskID, cb.From.ID, answer)
	switch {
	case err == nil:
		if answer == usecase.AnswerYes {
			return b.client.AnswerCallbackQuery(ctx, cb.ID, "✅ Task complete!")
		}
		return b.client.AnswerCallbackQuery(ctx, cb.ID, "📝 Noted, I'll remind you again.")
	case errors.Is(err, usecase.ErrUnknownTask):
		return b.client.AnswerCallbackQuery(ctx, cb.ID, "⏰ This reminder has expired or was already answered.")
	case errors.Is(err, usecase.ErrUnauthorized):
		return b.client.AnswerCallbackQuery(ctx, cb.ID, "❌ This task isn't assigned to you.")
	default:
		_ = b.client.AnswerCallbackQuery(ctx, cb.ID, "")
		return err
	}
}

// recordActor upserts the actor of any inbound event into the user
// directory. This is how assignee usernames eventually resolve to ids.
func (b *Bot) recordActor(u *User) {
	if u.ID == 0 {
		return
	}
	_, err := b.users.UpsertUser(domain.User{
		ID:        u.ID,
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		LastSeen:  b.now().UTC(),
	})
	if err != nil {
		log.Printf("telegram: upsert user %d: %v", u.ID, err)
	}
}

func (b *Bot) isAdmin(userID int64) bool {
	_, ok := b.admins[userID]
	return ok
}

type notifier struct {
	client *Client
}

func (n *notifier) SendPrivate(ctx context.Context, userID int64, text string, actions []usecase.Action) error {
	return n.client.SendMessage(ctx, userID, text, keyboard(actions))
}

func (n *notifier) SendGroup(ctx context.Context, chatID int64, text string, actions []usecase.Action) error {
	return n.client.SendMessage(ctx, chatID, text, keyboard(actions))
}

func keyboard(actions []usecase.Action) *InlineKeyboardMarkup {
	if len(actions) == 0 {
		return nil
	}
	row := make([]InlineKeyboardButton, 0, len(actions))
	for _, a := range actions {
		row = append(row, InlineKeyboardButton{Text: a.Label, CallbackData: a.Data})
	}
	return &InlineKeyboardMarkup{InlineKeyboard: [][]InlineKeyboardButton{row}}
}

func parseCommand(text string) (string, string) {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "/") {
		return "", ""
	}
	parts := strings.SplitN(trimmed, " ", 2)
	cmd := strings.TrimPrefix(parts[0], "/")
	if idx := strings.Index(cmd, "@"); idx >= 0 {
		cmd = cmd[:idx]
	}
	cmd = strings.ToLower(cmd)
	if len(parts) == 1 {
		return cmd, ""
	}
	return cmd, strings.TrimSpace(parts[1])
}

// parseCallbackData decodes "task:<id>:<yes|no>".
func parseCallbackData(data string) (int64, usecase.Answer, bool) {
	parts := strings.Split(data, ":")
	if len(parts) != 3 || parts[0] != "task" {
		return 0, "", false
	}
	id, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil || id <= 0 {
		return 0, "", false
	}
	switch usecase.Answer(parts[2]) {
	case usecase.AnswerYes:
		return id, usecase.AnswerYes, true
	case usecase.AnswerNo:
		return id, usecase.AnswerNo, true
	default:
		return 0, "", false
	}
}

func helpText() string {
	return strings.Join([]string{
		"🤖 Task Management Bot",
		"",
		"Admin commands:",
		"/createtask @username [description] [time] [frequency] — create a task",
		"/tasks — list this chat's tasks",
		"/removetask [task_id] — remove a task",
		"/help — this message",
		"",
		"When reminded about a task, answer with the ✅ Done / ❌ Not done buttons.",
		"Time format: 24-hour (14:30) or 12-hour (2:30PM). Frequency: once or daily.",
	}, "\n")
}
