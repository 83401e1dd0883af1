package repository

import "github.com/gumruyanzh/telegram-task-bot/internal/domain"

// TaskRepository stores tasks with instants in UTC and returns them in UTC.
type TaskRepository interface {
	CreateTask(task domain.Task) (domain.Task, error)
	GetTask(id int64) (domain.Task, error)
	ListTasksByChat(chatID int64) ([]domain.Task, error)
	// ListPendingTasks returns every task with status pending plus daily
	// tasks that are done and may be eligible for reset, ordered by id.
	ListPendingTasks() ([]domain.Task, error)
	UpdateTask(task domain.Task) (domain.Task, error)
	DeleteTask(id int64) error
}
