// Package sqlite is the default persistent backend: a single-file database
// opened through gorm with the pure-Go sqlite driver.
package sqlite

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/gumruyanzh/telegram-task-bot/internal/domain"
	"github.com/gumruyanzh/telegram-task-bot/internal/storage"
)

type taskRow struct {
	ID            int64 `gorm:"primarykey"`
	ChatID        int64 `gorm:"index;not null"`
	AssigneeID    *int64
	AssigneeName  string `gorm:"not null"`
	Description   string `gorm:"not null"`
	ScheduledTime string `gorm:"not null"`
	Frequency     string `gorm:"not null"`
	Status        string `gorm:"index;default:pending"`
	CompletedAt   *time.Time
	CreatedAt     time.Time
}

func (taskRow) TableName() string { return "tasks" }

type reminderRow struct {
	TaskID     int64 `gorm:"primarykey"`
	Count      int   `gorm:"not null;default:0"`
	LastSentAt time.Time
}

func (reminderRow) TableName() string { return "reminder_states" }

type userRow struct {
	ID        int64  `gorm:"primarykey"`
	Username  string `gorm:"index"`
	FirstName string
	LastName  string
	LastSeen  time.Time
	CreatedAt time.Time
}

func (userRow) TableName() string { return "users" }

type Store struct {
	db *gorm.DB
}

// Open connects to the database file, creating its directory if needed, and
// runs migrations.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.AutoMigrate(&taskRow{}, &reminderRow{}, &userRow{}); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *Store) CreateTask(t domain.Task) (domain.Task, error) {
	row := toTaskRow(t)
	row.ID = 0
	if row.Status == "" {
		row.Status = domain.TaskStatusPending
	}
	if err := s.db.Create(&row).Error; err != nil {
		return domain.Task{}, err
	}
	return fromTaskRow(row), nil
}

func (s *Store) GetTask(id int64) (domain.Task, error) {
	var row taskRow
	if err := s.db.First(&row, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Task{}, storage.ErrNotFound
		}
		return domain.Task{}, err
	}
	return fromTaskRow(row), nil
}

func (s *Store) ListTasksByChat(chatID int64) ([]domain.Task, error) {
	var rows []taskRow
	if err := s.db.Where("chat_id = ?", chatID).Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}
	return fromTaskRows(rows), nil
}

func (s *Store) ListPendingTasks() ([]domain.Task, error) {
	var rows []taskRow
	err := s.db.
		Where("status = ? OR (frequency = ? AND status = ?)",
			domain.TaskStatusPending, domain.FrequencyDaily, domain.TaskStatusDone).
		Order("id").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return fromTaskRows(rows), nil
}

func (s *Store) UpdateTask(t domain.Task) (domain.Task, error) {
	row := toTaskRow(t)
	res := s.db.Model(&taskRow{}).Where("id = ?", row.ID).Updates(map[string]any{
		"assignee_id":  row.AssigneeID,
		"status":       row.Status,
		"completed_at": row.CompletedAt,
	})
	if res.Error != nil {
		return domain.Task{}, res.Error
	}
	if res.RowsAffected == 0 {
		return domain.Task{}, storage.ErrNotFound
	}
	return t, nil
}

func (s *Store) DeleteTask(id int64) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&taskRow{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return storage.ErrNotFound
		}
		return tx.Delete(&reminderRow{}, "task_id = ?", id).Error
	})
}

func (s *Store) GetReminder(taskID int64) (domain.ReminderState, error) {
	var row reminderRow
	if err := s.db.First(&row, "task_id = ?", taskID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ReminderState{}, storage.ErrNotFound
		}
		return domain.ReminderState{}, err
	}
	return domain.ReminderState{TaskID: row.TaskID, Count: row.Count, LastSentAt: row.LastSentAt.UTC()}, nil
}

func (s *Store) PutReminder(r domain.ReminderState) error {
	row := reminderRow{TaskID: r.TaskID, Count: r.Count, LastSentAt: r.LastSentAt.UTC()}
	return s.db.Save(&row).Error
}

func (s *Store) DeleteReminder(taskID int64) error {
	return s.db.Delete(&reminderRow{}, "task_id = ?", taskID).Error
}

func (s *Store) GetUserByUsername(username string) (domain.User, error) {
	var row userRow
	err := s.db.
		Where("lower(username) = ?", strings.ToLower(username)).
		Order("last_seen desc").
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.User{}, storage.ErrNotFound
		}
		return domain.User{}, err
	}
	return fromUserRow(row), nil
}

func (s *Store) UpsertUser(u domain.User) (domain.User, error) {
	row := userRow{
		ID:        u.ID,
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		LastSeen:  u.LastSeen.UTC(),
		CreatedAt: u.CreatedAt,
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var prev userRow
		if err := tx.First(&prev, u.ID).Error; err == nil {
			row.CreatedAt = prev.CreatedAt
		} else if row.CreatedAt.IsZero() {
			row.CreatedAt = time.Now().UTC()
		}
		return tx.Save(&row).Error
	})
	if err != nil {
		return domain.User{}, err
	}
	return fromUserRow(row), nil
}

func toTaskRow(t domain.Task) taskRow {
	return taskRow{
		ID:            t.ID,
		ChatID:        t.ChatID,
		AssigneeID:    t.AssigneeID,
		AssigneeName:  t.AssigneeName,
		Description:   t.Description,
		ScheduledTime: t.ScheduledTime,
		Frequency:     t.Frequency,
		Status:        t.Status,
		CompletedAt:   t.CompletedAt,
		CreatedAt:     t.CreatedAt,
	}
}

func fromTaskRow(row taskRow) domain.Task {
	return domain.Task{
		ID:            row.ID,
		ChatID:        row.ChatID,
		AssigneeID:    row.AssigneeID,
		AssigneeName:  row.AssigneeName,
		Description:   row.Description,
		ScheduledTime: row.ScheduledTime,
		Frequency:     row.Frequency,
		Status:        row.Status,
		CompletedAt:   row.CompletedAt,
		CreatedAt:     row.CreatedAt.UTC(),
	}
}

func fromTaskRows(rows []taskRow) []domain.Task {
	res := make([]domain.Task, 0, len(rows))
	for _, row := range rows {
		res = append(res, fromTaskRow(row))
	}
	return res
}

func fromUserRow(row userRow) domain.User {
	return domain.User{
		ID:        row.ID,
		Username:  row.Username,
		FirstName: row.FirstName,
		LastName:  row.LastName,
		LastSeen:  row.LastSeen.UTC(),
		CreatedAt: row.CreatedAt.UTC(),
	}
}
