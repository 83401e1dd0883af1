// Package httpx exposes a read-only status surface for operators: health,
// per-chat task listings, and reminder state. All mutations go through the
// chat commands.
package httpx

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gumruyanzh/telegram-task-bot/internal/domain"
	"github.com/gumruyanzh/telegram-task-bot/internal/storage"
	"github.com/gumruyanzh/telegram-task-bot/pkg/response"
)

type Store interface {
	ListTasksByChat(chatID int64) ([]domain.Task, error)
	GetTask(id int64) (domain.Task, error)
	GetReminder(taskID int64) (domain.ReminderState, error)
}

type Handler struct {
	mux   *http.ServeMux
	store Store
}

func New(s Store) http.Handler {
	h := &Handler{
		mux:   http.NewServeMux(),
		store: s,
	}
	h.routes()
	return h
}

func (h *Handler) routes() {
	h.mux.HandleFunc("GET /healthz", h.health)
	h.mux.HandleFunc("GET /tasks", h.tasks)
	h.mux.HandleFunc("GET /tasks/{id}", h.task)
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, map[string]string{"ok": "true"})
}

func (h *Handler) tasks(w http.ResponseWriter, r *http.Request) {
	chatID, err := parseInt64Query(r, "chat_id")
	if err != nil || chatID == 0 {
		writeError(w, http.StatusBadRequest, "chat_id")
		return
	}
	items, err := h.store.ListTasksByChat(chatID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "store")
		return
	}
	response.JSON(w, http.StatusOK, map[string]any{"items": items})
}

func (h *Handler) task(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "id")
		return
	}
	item, err := h.store.GetTask(id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found")
			return
		}
		writeError(w, http.StatusInternalServerError, "store")
		return
	}
	body := map[string]any{"task": item}
	if state, err := h.store.GetReminder(id); err == nil {
		body["reminder"] = state
	}
	response.JSON(w, http.StatusOK, body)
}

func parseID(r *http.Request) (int64, error) {
	return strconv.ParseInt(r.PathValue("id"), 10, 64)
}

func parseInt64Query(r *http.Request, key string) (int64, error) {
	return strconv.ParseInt(r.URL.Query().Get(key), 10, 64)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	response.JSON(w, code, map[string]string{"error": msg})
}
