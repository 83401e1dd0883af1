package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/gumruyanzh/telegram-task-bot/internal/clock"
	"github.com/gumruyanzh/telegram-task-bot/internal/domain"
	"github.com/gumruyanzh/telegram-task-bot/internal/repository"
	"github.com/gumruyanzh/telegram-task-bot/internal/storage"
)

var (
	ErrUnauthorized  = errors.New("responder is not the assignee")
	ErrInvalidAnswer = errors.New("answer must be yes or no")
)

type Answer string

const (
	AnswerYes Answer = "yes"
	AnswerNo  Answer = "no"
)

type notifyKind int

const (
	notifyInitial notifyKind = iota
	notifyFollowup
)

// Action is a button offered with a notification; Data round-trips through
// the platform's callback payload.
type Action struct {
	Label string
	Data  string
}

// Notifier delivers messages. SendPrivate fails when the recipient has never
// opened a private channel with the bot; the dispatcher falls back to the
// group in that case.
type Notifier interface {
	SendPrivate(ctx context.Context, userID int64, text string, actions []Action) error
	SendGroup(ctx context.Context, chatID int64, text string, actions []Action) error
}

// ReminderConfig tunes the scheduling core. Zero values fall back to the
// production defaults.
type ReminderConfig struct {
	// Tolerance is the symmetric window around an occurrence within which a
	// task still counts as due, absorbing tick drift.
	Tolerance time.Duration
	// FollowupInterval is the cadence of repeat notifications.
	FollowupInterval time.Duration
	// MaxReminders caps total sends per occurrence, initial included.
	MaxReminders int
}

func (c ReminderConfig) withDefaults() ReminderConfig {
	if c.Tolerance <= 0 {
		c.Tolerance = 2 * time.Minute
	}
	if c.FollowupInterval <= 0 {
		c.FollowupInterval = 2 * time.Minute
	}
	if c.MaxReminders <= 0 {
		c.MaxReminders = 30
	}
	return c
}

// ReminderService is the scheduling core: the periodic due scan, the
// notification dispatch with private-to-group fallback, and the yes/no
// response state machine. Tick and Respond serialize on one mutex so a
// follow-up can never race a completion and resurrect cleared state.
type ReminderService struct {
	mu        sync.Mutex
	tasks     repository.TaskRepository
	reminders repository.ReminderRepository
	users     repository.UserRepository
	notifier  Notifier
	clk       *clock.Clock
	cfg       ReminderConfig
	now       func() time.Time
}

func NewReminderService(
	tasks repository.TaskRepository,
	reminders repository.ReminderRepository,
	users repository.UserRepository,
	notifier Notifier,
	clk *clock.Clock,
	cfg ReminderConfig,
) *ReminderService {
	return &ReminderService{
		tasks:     tasks,
		reminders: reminders,
		users:     users,
		notifier:  notifier,
		clk:       clk,
		cfg:       cfg.withDefaults(),
		now:       time.Now,
	}
}

// Tick runs one due-task scan. Tasks are visited in ascending id order; one
// task's failure is logged and never blocks the rest.
func (s *ReminderService) Tick(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now().UTC()
	tasks, err := s.tasks.ListPendingTasks()
	if err != nil {
		log.Printf("scheduler: list pending tasks: %v", err)
		return
	}
	for _, t := range tasks {
		if err := s.visit(ctx, now, t); err != nil {
			log.Printf("scheduler: task %d: %v", t.ID, err)
		}
	}
}

func (s *ReminderService) visit(ctx context.Context, now time.Time, t domain.Task) error {
	wall, err := clock.ParseWall(t.ScheduledTime)
	if err != nil {
		return fmt.Errorf("stored schedule: %w", err)
	}

	// A completed daily task becomes pending again once the next day's
	// occurrence is reached.
	if t.Frequency == domain.FrequencyDaily && t.Status == domain.TaskStatusDone {
		if t.CompletedAt == nil || now.Before(s.clk.NextAfter(*t.CompletedAt, wall)) {
			return nil
		}
		t.Status = domain.TaskStatusPending
		t.CompletedAt = nil
		if t, err = s.tasks.UpdateTask(t); err != nil {
			return fmt.Errorf("reset daily task: %w", err)
		}
		if err := s.reminders.DeleteReminder(t.ID); err != nil {
			return fmt.Errorf("clear stale reminder: %w", err)
		}
	}
	if t.Status != domain.TaskStatusPending {
		return nil
	}

	state, err := s.reminders.GetReminder(t.ID)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		if !s.clk.Due(now, wall, s.cfg.Tolerance) {
			// Occurrences missed entirely are skipped, not queued.
			return nil
		}
		return s.notify(ctx, now, t, notifyInitial, domain.ReminderState{})
	case err != nil:
		return fmt.Errorf("get reminder state: %w", err)
	}

	if state.Exhausted(s.cfg.MaxReminders) {
		// An exhausted daily task resets at the next occurrence, same as a
		// completed one. An exhausted one-time task is terminal.
		if t.Frequency == domain.FrequencyDaily && !now.Before(s.clk.NextAfter(state.LastSentAt, wall)) {
			if err := s.reminders.DeleteReminder(t.ID); err != nil {
				return fmt.Errorf("clear exhausted reminder: %w", err)
			}
			if s.clk.Due(now, wall, s.cfg.Tolerance) {
				return s.notify(ctx, now, t, notifyInitial, domain.ReminderState{})
			}
		}
		return nil
	}
	if now.Sub(state.LastSentAt) >= s.cfg.FollowupInterval {
		return s.notify(ctx, now, t, notifyFollowup, state)
	}
	return nil
}

// notify attempts private delivery, falls back to the group chat, and records
// the attempt. Delivery errors are logged, never retried within the tick.
func (s *ReminderService) notify(ctx context.Context, now time.Time, t domain.Task, kind notifyKind, state domain.ReminderState) error {
	t, err := s.resolveAssignee(t)
	if err != nil {
		return err
	}

	count := 0
	if kind == notifyFollowup {
		count = state.Count + 1
	}
	text := reminderText(t, count)
	actions := []Action{
		{Label: "✅ Done", Data: fmt.Sprintf("task:%d:yes", t.ID)},
		{Label: "❌ Not done", Data: fmt.Sprintf("task:%d:no", t.ID)},
	}

	delivered := false
	if t.AssigneeID != nil {
		if err := s.notifier.SendPrivate(ctx, *t.AssigneeID, text, actions); err != nil {
			log.Printf("dispatch: task %d private delivery to @%s failed, using group: %v", t.ID, t.AssigneeName, err)
		} else {
			delivered = true
		}
	}
	if !delivered {
		if err := s.notifier.SendGroup(ctx, t.ChatID, text, actions); err != nil {
			log.Printf("dispatch: task %d group delivery failed: %v", t.ID, err)
		}
	}

	switch kind {
	case notifyInitial:
		state = domain.ReminderState{TaskID: t.ID, Count: 0, LastSentAt: now}
	case notifyFollowup:
		state.Count++
		state.LastSentAt = now
	}
	if err := s.reminders.PutReminder(state); err != nil {
		return fmt.Errorf("record reminder attempt: %w", err)
	}

	if state.Exhausted(s.cfg.MaxReminders) {
		log.Printf("dispatch: task %d exhausted after %d sends", t.ID, state.Count+1)
		finalText := fmt.Sprintf(
			"⏰ Final notice\n\n@%s, I've reminded you %d times about:\n%s\n\nNo further reminders will be sent.",
			t.AssigneeName, state.Count+1, t.Description,
		)
		if err := s.notifier.SendGroup(ctx, t.ChatID, finalText, nil); err != nil {
			log.Printf("dispatch: task %d final notice failed: %v", t.ID, err)
		}
	}
	return nil
}

// Respond drives the task state transition for a yes/no answer tied to a
// task id. Only the resolved assignee may answer.
func (s *ReminderService) Respond(ctx context.Context, taskID, responderID int64, answer Answer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, err := s.tasks.GetTask(taskID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrUnknownTask
		}
		return fmt.Errorf("get task: %w", err)
	}
	if task.Status == domain.TaskStatusDone {
		return ErrUnknownTask
	}
	task, err = s.resolveAssignee(task)
	if err != nil {
		return err
	}
	if task.AssigneeID == nil || *task.AssigneeID != responderID {
		return ErrUnauthorized
	}

	switch answer {
	case AnswerYes:
		now := s.now().UTC()
		task.Status = domain.TaskStatusDone
		task.CompletedAt = &now
		if _, err := s.tasks.UpdateTask(task); err != nil {
			return fmt.Errorf("mark done: %w", err)
		}
		if err := s.reminders.DeleteReminder(task.ID); err != nil {
			return fmt.Errorf("clear reminder: %w", err)
		}
		announcement := fmt.Sprintf("✅ @%s completed: %s", task.AssigneeName, task.Description)
		if err := s.notifier.SendGroup(ctx, task.ChatID, announcement, nil); err != nil {
			log.Printf("dispatch: task %d completion announcement failed: %v", task.ID, err)
		}
		return nil
	case AnswerNo:
		// Same as silence: the next follow-up fires on the normal cadence.
		ack := fmt.Sprintf("📝 Noted, @%s. I'll remind you again about: %s", task.AssigneeName, task.Description)
		if err := s.notifier.SendGroup(ctx, task.ChatID, ack, nil); err != nil {
			log.Printf("dispatch: task %d postpone ack failed: %v", task.ID, err)
		}
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrInvalidAnswer, answer)
	}
}

// resolveAssignee fills in a still-unresolved assignee id from the user
// directory and persists it. Resolution can stay pending forever if the
// assignee has never interacted with the bot.
func (s *ReminderService) resolveAssignee(t domain.Task) (domain.Task, error) {
	if t.AssigneeID != nil {
		return t, nil
	}
	u, err := s.users.GetUserByUsername(t.AssigneeName)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return t, nil
		}
		return t, fmt.Errorf("resolve assignee: %w", err)
	}
	id := u.ID
	t.AssigneeID = &id
	updated, err := s.tasks.UpdateTask(t)
	if err != nil {
		return t, fmt.Errorf("persist assignee id: %w", err)
	}
	return updated, nil
}

func reminderText(t domain.Task, count int) string {
	switch {
	case count == 0:
		return fmt.Sprintf("⏰ Task reminder\n\n@%s, it's time for your task:\n\n%s\n\nHave you completed it?", t.AssigneeName, t.Description)
	case count < 5:
		return fmt.Sprintf("🔔 Follow-up #%d\n\n@%s, still waiting for your response about:\n%s", count, t.AssigneeName, t.Description)
	case count < 15:
		return fmt.Sprintf("⚠️ Persistent reminder #%d\n\n@%s, please complete and answer:\n%s", count, t.AssigneeName, t.Description)
	default:
		return fmt.Sprintf("🚨 Urgent reminder #%d\n\n@%s, this task needs attention:\n%s", count, t.AssigneeName, t.Description)
	}
}
