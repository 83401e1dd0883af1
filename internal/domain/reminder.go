package domain

import "time"

// ReminderState exists for each task with an outstanding reminder.
// Count is the number of follow-ups sent since the initial notification:
// 0 right after the initial send, incremented per follow-up, so total
// dispatches for the occurrence is Count+1.
type ReminderState struct {
	TaskID     int64     `json:"task_id"`
	Count      int       `json:"count"`
	LastSentAt time.Time `json:"last_sent_at"`
}

// Exhausted reports whether the follow-up cap has been reached for a cap of
// maxReminders total sends. An exhausted state stays in the store so the task
// is never re-selected within the same occurrence.
func (s ReminderState) Exhausted(maxReminders int) bool {
	return s.Count+1 >= maxReminders
}
