package usecase

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gumruyanzh/telegram-task-bot/internal/clock"
	"github.com/gumruyanzh/telegram-task-bot/internal/domain"
	"github.com/gumruyanzh/telegram-task-bot/internal/repository"
	"github.com/gumruyanzh/telegram-task-bot/internal/storage"
)

var (
	ErrEmptyDescription = errors.New("task description is empty")
	ErrInvalidFrequency = errors.New("frequency must be 'once' or 'daily'")
	ErrEmptyAssignee    = errors.New("assignee username is empty")
	ErrUnknownTask      = errors.New("unknown task")
)

// TaskService handles the admin-facing task lifecycle: creation, listing and
// removal. Scheduling is the ReminderService's job.
type TaskService struct {
	tasks repository.TaskRepository
	users repository.UserRepository
	now   func() time.Time
}

func NewTaskService(tasks repository.TaskRepository, users repository.UserRepository) *TaskService {
	return &TaskService{
		tasks: tasks,
		users: users,
		now:   time.Now,
	}
}

// CreateTask validates its inputs synchronously; nothing is persisted on a
// validation error. The assignee id is filled in from the user directory when
// already known, otherwise it stays unresolved until the assignee interacts
// with the bot.
func (s *TaskService) CreateTask(chatID int64, assigneeUsername, description, timeStr, frequency string) (domain.Task, error) {
	username := strings.TrimPrefix(strings.TrimSpace(assigneeUsername), "@")
	if username == "" {
		return domain.Task{}, ErrEmptyAssignee
	}
	description = strings.TrimSpace(description)
	if description == "" {
		return domain.Task{}, ErrEmptyDescription
	}
	wall, err := clock.ParseWall(timeStr)
	if err != nil {
		return domain.Task{}, err
	}
	frequency = strings.ToLower(strings.TrimSpace(frequency))
	if !domain.ValidFrequency(frequency) {
		return domain.Task{}, fmt.Errorf("%w: %q", ErrInvalidFrequency, frequency)
	}

	task := domain.Task{
		ChatID:        chatID,
		AssigneeName:  username,
		Description:   description,
		ScheduledTime: wall.String(),
		Frequency:     frequency,
		Status:        domain.TaskStatusPending,
		CreatedAt:     s.now().UTC(),
	}
	if u, err := s.users.GetUserByUsername(username); err == nil {
		id := u.ID
		task.AssigneeID = &id
	}
	return s.tasks.CreateTask(task)
}

// ListTasks returns the chat's tasks in ascending id order.
func (s *TaskService) ListTasks(chatID int64) ([]domain.Task, error) {
	return s.tasks.ListTasksByChat(chatID)
}

// RemoveTask deletes the task and any reminder state immediately and
// unconditionally. An in-flight notification for the removed task may still
// be delivered; responses to it fail with ErrUnknownTask.
func (s *TaskService) RemoveTask(id int64) error {
	if err := s.tasks.DeleteTask(id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrUnknownTask
		}
		return err
	}
	return nil
}
