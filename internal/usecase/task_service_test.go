package usecase

import (
	"errors"
	"testing"

	"github.com/gumruyanzh/telegram-task-bot/internal/clock"
	"github.com/gumruyanzh/telegram-task-bot/internal/domain"
	"github.com/gumruyanzh/telegram-task-bot/internal/storage/memory"
)

func TestCreateTaskNormalizesInput(t *testing.T) {
	store := memory.New()
	svc := NewTaskService(store, store)

	task, err := svc.CreateTask(1, "@john", "  Clean office  ", "2:30PM", "DAILY")
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	if task.AssigneeName != "john" {
		t.Fatalf("expected stripped username, got %q", task.AssigneeName)
	}
	if task.Description != "Clean office" {
		t.Fatalf("expected trimmed description, got %q", task.Description)
	}
	if task.ScheduledTime != "14:30" {
		t.Fatalf("expected normalized 24h time, got %q", task.ScheduledTime)
	}
	if task.Frequency != domain.FrequencyDaily {
		t.Fatalf("expected lowercased frequency, got %q", task.Frequency)
	}
	if task.Status != domain.TaskStatusPending {
		t.Fatalf("expected pending status, got %q", task.Status)
	}
	if task.AssigneeID != nil {
		t.Fatalf("expected unresolved assignee, got %v", *task.AssigneeID)
	}
}

func TestCreateTaskRejectsMalformedTime(t *testing.T) {
	store := memory.New()
	svc := NewTaskService(store, store)

	if _, err := svc.CreateTask(1, "john", "Submit report", "25:99", "once"); !errors.Is(err, clock.ErrInvalidTime) {
		t.Fatalf("expected ErrInvalidTime, got %v", err)
	}
	tasks, err := store.ListTasksByChat(1)
	if err != nil {
		t.Fatalf("list tasks: %v", err)
	}
	if len(tasks) != 0 {
		t.Fatalf("expected no task persisted after validation error, got %d", len(tasks))
	}
}

func TestCreateTaskRejectsBadFrequencyAndEmptyFields(t *testing.T) {
	store := memory.New()
	svc := NewTaskService(store, store)

	if _, err := svc.CreateTask(1, "john", "x", "09:00", "weekly"); !errors.Is(err, ErrInvalidFrequency) {
		t.Fatalf("expected ErrInvalidFrequency, got %v", err)
	}
	if _, err := svc.CreateTask(1, "john", "   ", "09:00", "once"); !errors.Is(err, ErrEmptyDescription) {
		t.Fatalf("expected ErrEmptyDescription, got %v", err)
	}
	if _, err := svc.CreateTask(1, "@", "x", "09:00", "once"); !errors.Is(err, ErrEmptyAssignee) {
		t.Fatalf("expected ErrEmptyAssignee, got %v", err)
	}
}

func TestCreateTaskResolvesKnownAssignee(t *testing.T) {
	store := memory.New()
	if _, err := store.UpsertUser(domain.User{ID: 42, Username: "John"}); err != nil {
		t.Fatalf("upsert user: %v", err)
	}
	svc := NewTaskService(store, store)

	task, err := svc.CreateTask(1, "@john", "Water plants", "09:00", "daily")
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	if task.AssigneeID == nil || *task.AssigneeID != 42 {
		t.Fatalf("expected assignee resolved to 42, got %v", task.AssigneeID)
	}
}

func TestListTasksAscendingByID(t *testing.T) {
	store := memory.New()
	svc := NewTaskService(store, store)

	for _, desc := range []string{"first", "second", "third"} {
		if _, err := svc.CreateTask(7, "john", desc, "09:00", "once"); err != nil {
			t.Fatalf("create task: %v", err)
		}
	}
	// Different chat, must not appear.
	if _, err := svc.CreateTask(8, "jane", "other", "09:00", "once"); err != nil {
		t.Fatalf("create task: %v", err)
	}

	tasks, err := svc.ListTasks(7)
	if err != nil {
		t.Fatalf("list tasks: %v", err)
	}
	if len(tasks) != 3 {
		t.Fatalf("expected 3 tasks, got %d", len(tasks))
	}
	for i := 1; i < len(tasks); i++ {
		if tasks[i-1].ID >= tasks[i].ID {
			t.Fatalf("expected ascending ids, got %v then %v", tasks[i-1].ID, tasks[i].ID)
		}
	}
}

func TestRemoveTask(t *testing.T) {
	store := memory.New()
	svc := NewTaskService(store, store)

	task, err := svc.CreateTask(1, "john", "x", "09:00", "once")
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	if err := svc.RemoveTask(task.ID); err != nil {
		t.Fatalf("remove task: %v", err)
	}
	if err := svc.RemoveTask(task.ID); !errors.Is(err, ErrUnknownTask) {
		t.Fatalf("expected ErrUnknownTask on second removal, got %v", err)
	}
}
