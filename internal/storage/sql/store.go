package sqlstore

import (
	"database/sql"
	"errors"

	"github.com/gumruyanzh/telegram-task-bot/internal/domain"
	"github.com/gumruyanzh/telegram-task-bot/internal/storage"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// Store is the Postgres backend. Schema (managed externally):
//
//	tasks(id bigserial pk, chat_id, assignee_id, assignee_name, description,
//	      scheduled_time, frequency, status, completed_at, created_at)
//	reminder_states(task_id bigint pk references tasks, count, last_sent_at)
//	users(id bigint pk, username, first_name, last_name, last_seen, created_at)
type Store struct {
	db *sql.DB
}

func New(driver, dsn string) *Store {
	var db *sql.DB
	if driver != "" && dsn != "" {
		db, _ = sql.Open(driver, dsn)
	}
	return &Store{db: db}
}

func (s *Store) CreateTask(t domain.Task) (domain.Task, error) {
	if s.db == nil {
		return domain.Task{}, errors.New("db")
	}
	if t.Status == "" {
		t.Status = domain.TaskStatusPending
	}
	row := s.db.QueryRow(`
		insert into tasks(chat_id, assignee_id, assignee_name, description,
			scheduled_time, frequency, status, completed_at)
		values ($1, $2, $3, $4, $5, $6, $7, $8)
		returning id, created_at`,
		t.ChatID,
		t.AssigneeID,
		t.AssigneeName,
		t.Description,
		t.ScheduledTime,
		t.Frequency,
		t.Status,
		t.CompletedAt,
	)
	if err := row.Scan(&t.ID, &t.CreatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return domain.Task{}, storage.ErrNotFound
		}
		return domain.Task{}, err
	}
	return t, nil
}

func (s *Store) GetTask(id int64) (domain.Task, error) {
	if s.db == nil {
		return domain.Task{}, errors.New("db")
	}
	row := s.db.QueryRow(`
		select id, chat_id, assignee_id, assignee_name, description,
			scheduled_time, frequency, status, completed_at, created_at
		from tasks
		where id = $1`,
		id,
	)
	t, err := scanTask(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Task{}, storage.ErrNotFound
		}
		return domain.Task{}, err
	}
	return t, nil
}

func (s *Store) ListTasksByChat(chatID int64) ([]domain.Task, error) {
	if s.db == nil {
		return nil, errors.New("db")
	}
	rows, err := s.db.Query(`
		select id, chat_id, assignee_id, assignee_name, description,
			scheduled_time, frequency, status, completed_at, created_at
		from tasks
		where chat_id = $1
		order by id`,
		chatID,
	)
	if err != nil {
		return nil, err
	}
	return collectTasks(rows)
}

func (s *Store) ListPendingTasks() ([]domain.Task, error) {
	if s.db == nil {
		return nil, errors.New("db")
	}
	rows, err := s.db.Query(`
		select id, chat_id, assignee_id, assignee_name, description,
			scheduled_time, frequency, status, completed_at, created_at
		from tasks
		where status = $1 or (frequency = $2 and status = $3)
		order by id`,
		domain.TaskStatusPending,
		domain.FrequencyDaily,
		domain.TaskStatusDone,
	)
	if err != nil {
		return nil, err
	}
	return collectTasks(rows)
}

func (s *Store) UpdateTask(t domain.Task) (domain.Task, error) {
	if s.db == nil {
		return domain.Task{}, errors.New("db")
	}
	res, err := s.db.Exec(`
		update tasks
		set assignee_id = $1,
			status = $2,
			completed_at = $3
		where id = $4`,
		t.AssigneeID,
		t.Status,
		t.CompletedAt,
		t.ID,
	)
	if err != nil {
		return domain.Task{}, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return domain.Task{}, err
	}
	if affected == 0 {
		return domain.Task{}, storage.ErrNotFound
	}
	return t, nil
}

func (s *Store) DeleteTask(id int64) error {
	if s.db == nil {
		return errors.New("db")
	}
	if _, err := s.db.Exec(`delete from reminder_states where task_id = $1`, id); err != nil {
		return err
	}
	res, err := s.db.Exec(`delete from tasks where id = $1`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (s *Store) GetReminder(taskID int64) (domain.ReminderState, error) {
	if s.db == nil {
		return domain.ReminderState{}, errors.New("db")
	}
	var r domain.ReminderState
	row := s.db.QueryRow(`
		select task_id, count, last_sent_at
		from reminder_states
		where task_id = $1`,
		taskID,
	)
	if err := row.Scan(&r.TaskID, &r.Count, &r.LastSentAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ReminderState{}, storage.ErrNotFound
		}
		return domain.ReminderState{}, err
	}
	return r, nil
}

func (s *Store) PutReminder(r domain.ReminderState) error {
	if s.db == nil {
		return errors.New("db")
	}
	_, err := s.db.Exec(`
		insert into reminder_states(task_id, count, last_sent_at)
		values ($1, $2, $3)
		on conflict (task_id) do update
		set count = excluded.count, last_sent_at = excluded.last_sent_at`,
		r.TaskID,
		r.Count,
		r.LastSentAt,
	)
	return err
}

func (s *Store) DeleteReminder(taskID int64) error {
	if s.db == nil {
		return errors.New("db")
	}
	_, err := s.db.Exec(`delete from reminder_states where task_id = $1`, taskID)
	return err
}

func (s *Store) GetUserByUsername(username string) (domain.User, error) {
	if s.db == nil {
		return domain.User{}, errors.New("db")
	}
	var u domain.User
	row := s.db.QueryRow(`
		select id, username, first_name, last_name, last_seen, created_at
		from users
		where lower(username) = lower($1)
		order by last_seen desc
		limit 1`,
		username,
	)
	if err := row.Scan(&u.ID, &u.Username, &u.FirstName, &u.LastName, &u.LastSeen, &u.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.User{}, storage.ErrNotFound
		}
		return domain.User{}, err
	}
	return u, nil
}

func (s *Store) UpsertUser(u domain.User) (domain.User, error) {
	if s.db == nil {
		return domain.User{}, errors.New("db")
	}
	row := s.db.QueryRow(`
		insert into users(id, username, first_name, last_name, last_seen)
		values ($1, $2, $3, $4, $5)
		on conflict (id) do update
		set username = excluded.username,
			first_name = excluded.first_name,
			last_name = excluded.last_name,
			last_seen = excluded.last_seen
		returning created_at`,
		u.ID,
		u.Username,
		u.FirstName,
		u.LastName,
		u.LastSeen,
	)
	if err := row.Scan(&u.CreatedAt); err != nil {
		return domain.User{}, err
	}
	return u, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (domain.Task, error) {
	var t domain.Task
	var assigneeID sql.NullInt64
	var completedAt sql.NullTime
	err := row.Scan(
		&t.ID,
		&t.ChatID,
		&assigneeID,
		&t.AssigneeName,
		&t.Description,
		&t.ScheduledTime,
		&t.Frequency,
		&t.Status,
		&completedAt,
		&t.CreatedAt,
	)
	if err != nil {
		return domain.Task{}, err
	}
	if assigneeID.Valid {
		t.AssigneeID = &assigneeID.Int64
	}
	if completedAt.Valid {
		t.CompletedAt = &completedAt.Time
	}
	return t, nil
}

func collectTasks(rows *sql.Rows) ([]domain.Task, error) {
	defer rows.Close()
	var res []domain.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, t)
	}
	return res, rows.Err()
}
