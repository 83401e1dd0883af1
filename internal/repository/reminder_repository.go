package repository

import "github.com/gumruyanzh/telegram-task-bot/internal/domain"

// ReminderRepository tracks per-task follow-up state. There is at most one
// state row per task id; PutReminder creates or replaces it.
type ReminderRepository interface {
	GetReminder(taskID int64) (domain.ReminderState, error)
	PutReminder(state domain.ReminderState) error
	DeleteReminder(taskID int64) error
}
