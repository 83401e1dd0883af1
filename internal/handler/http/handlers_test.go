package httpx

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gumruyanzh/telegram-task-bot/internal/domain"
	"github.com/gumruyanzh/telegram-task-bot/internal/storage/memory"
)

func TestTasksRequiresChatID(t *testing.T) {
	h := New(memory.New())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/tasks", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestTasksListsChat(t *testing.T) {
	store := memory.New()
	_, err := store.CreateTask(domain.Task{
		ChatID:        5,
		AssigneeName:  "john",
		Description:   "Clean office",
		ScheduledTime: "09:00",
		Frequency:     domain.FrequencyDaily,
		Status:        domain.TaskStatusPending,
	})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}

	h := New(store)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/tasks?chat_id=5", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body struct {
		Items []domain.Task `json:"items"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(body.Items) != 1 || body.Items[0].Description != "Clean office" {
		t.Fatalf("unexpected items: %+v", body.Items)
	}
}

func TestTaskNotFound(t *testing.T) {
	h := New(memory.New())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/tasks/99", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
