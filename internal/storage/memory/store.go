package memory

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gumruyanzh/telegram-task-bot/internal/domain"
	"github.com/gumruyanzh/telegram-task-bot/internal/storage"
)

// Store is the in-memory backend. It backs tests and local runs and mirrors
// the behavior of the sql backends: instants are stored in UTC and callers
// get copies, never shared references.
type Store struct {
	mu        sync.Mutex
	tasks     map[int64]domain.Task
	reminders map[int64]domain.ReminderState
	users     map[int64]domain.User
	nextID    int64
}

func New() *Store {
	return &Store{
		tasks:     make(map[int64]domain.Task),
		reminders: make(map[int64]domain.ReminderState),
		users:     make(map[int64]domain.User),
		nextID:    1,
	}
}

func (s *Store) CreateTask(t domain.Task) (domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t.ID = s.nextID
	s.nextID++
	if t.Status == "" {
		t.Status = domain.TaskStatusPending
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
	s.tasks[t.ID] = t
	return t, nil
}

func (s *Store) GetTask(id int64) (domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[id]
	if !ok {
		return domain.Task{}, storage.ErrNotFound
	}
	return t, nil
}

func (s *Store) ListTasksByChat(chatID int64) ([]domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var res []domain.Task
	for _, t := range s.tasks {
		if t.ChatID == chatID {
			res = append(res, t)
		}
	}
	sortTasks(res)
	return res, nil
}

func (s *Store) ListPendingTasks() ([]domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var res []domain.Task
	for _, t := range s.tasks {
		if t.Status == domain.TaskStatusPending ||
			(t.Frequency == domain.FrequencyDaily && t.Status == domain.TaskStatusDone) {
			res = append(res, t)
		}
	}
	sortTasks(res)
	return res, nil
}

func (s *Store) UpdateTask(t domain.Task) (domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tasks[t.ID]; !ok {
		return domain.Task{}, storage.ErrNotFound
	}
	s.tasks[t.ID] = t
	return t, nil
}

func (s *Store) DeleteTask(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tasks[id]; !ok {
		return storage.ErrNotFound
	}
	delete(s.tasks, id)
	delete(s.reminders, id)
	return nil
}

func (s *Store) GetReminder(taskID int64) (domain.ReminderState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.reminders[taskID]
	if !ok {
		return domain.ReminderState{}, storage.ErrNotFound
	}
	return r, nil
}

func (s *Store) PutReminder(r domain.ReminderState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reminders[r.TaskID] = r
	return nil
}

func (s *Store) DeleteReminder(taskID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.reminders, taskID)
	return nil
}

func (s *Store) GetUserByUsername(username string) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var found domain.User
	ok := false
	for _, u := range s.users {
		if !strings.EqualFold(u.Username, username) {
			continue
		}
		// Usernames are mutable; prefer the record seen most recently.
		if !ok || u.LastSeen.After(found.LastSeen) {
			found = u
			ok = true
		}
	}
	if !ok {
		return domain.User{}, storage.ErrNotFound
	}
	return found, nil
}

func (s *Store) UpsertUser(u domain.User) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if prev, ok := s.users[u.ID]; ok {
		u.CreatedAt = prev.CreatedAt
	} else if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	s.users[u.ID] = u
	return u, nil
}

func sortTasks(ts []domain.Task) {
	sort.Slice(ts, func(i, j int) bool { return ts[i].ID < ts[j].ID })
}
