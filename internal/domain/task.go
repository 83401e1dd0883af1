package domain

import "time"

const (
	FrequencyOnce  = "once"
	FrequencyDaily = "daily"
)

const (
	TaskStatusPending = "pending"
	TaskStatusDone    = "done"
)

// Task is a chore assigned to one group member. ScheduledTime is a civil
// "HH:MM" wall clock in the bot's fixed timezone; the date component is
// derived from Frequency at scan time.
type Task struct {
	ID            int64      `json:"id"`
	ChatID        int64      `json:"chat_id"`
	AssigneeID    *int64     `json:"assignee_id,omitempty"`
	AssigneeName  string     `json:"assignee_name"`
	Description   string     `json:"description"`
	ScheduledTime string     `json:"scheduled_time"`
	Frequency     string     `json:"frequency"`
	Status        string     `json:"status"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

func ValidFrequency(f string) bool {
	return f == FrequencyOnce || f == FrequencyDaily
}
