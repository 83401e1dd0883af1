package app

import (
	"fmt"
	"net/http"

	"github.com/gumruyanzh/telegram-task-bot/internal/clock"
	"github.com/gumruyanzh/telegram-task-bot/internal/config"
	httphandlers "github.com/gumruyanzh/telegram-task-bot/internal/handler/http"
	"github.com/gumruyanzh/telegram-task-bot/internal/repository"
	"github.com/gumruyanzh/telegram-task-bot/internal/scheduler"
	"github.com/gumruyanzh/telegram-task-bot/internal/storage/memory"
	sqlstore "github.com/gumruyanzh/telegram-task-bot/internal/storage/sql"
	"github.com/gumruyanzh/telegram-task-bot/internal/storage/sqlite"
	"github.com/gumruyanzh/telegram-task-bot/internal/telegram"
	"github.com/gumruyanzh/telegram-task-bot/internal/usecase"
)

type Store interface {
	repository.TaskRepository
	repository.ReminderRepository
	repository.UserRepository
}

type App struct {
	Config    config.Config
	Store     Store
	Router    http.Handler
	Bot       *telegram.Bot
	Scheduler *scheduler.Scheduler
}

func New(cfg config.Config) (*App, error) {
	store, err := openStore(cfg)
	if err != nil {
		return nil, err
	}
	clk, err := clock.New(cfg.Timezone)
	if err != nil {
		return nil, err
	}

	client := telegram.NewClient(cfg.BotToken)
	tasks := usecase.NewTaskService(store, store)
	reminders := usecase.NewReminderService(store, store, store, telegram.NewNotifier(client), clk, usecase.ReminderConfig{
		Tolerance:        cfg.DueTolerance,
		FollowupInterval: cfg.FollowupInterval,
		MaxReminders:     cfg.MaxReminders,
	})
	bot := telegram.NewBot(client, tasks, reminders, store, cfg.AdminIDs, cfg.PollTimeout)

	sched, err := scheduler.New(cfg.TickInterval, reminders.Tick)
	if err != nil {
		return nil, err
	}

	return &App{
		Config:    cfg,
		Store:     store,
		Router:    httphandlers.New(store),
		Bot:       bot,
		Scheduler: sched,
	}, nil
}

func openStore(cfg config.Config) (Store, error) {
	switch cfg.Storage {
	case "memory":
		return memory.New(), nil
	case "sqlite":
		return sqlite.Open(cfg.DBPath)
	case "postgres":
		return sqlstore.New(cfg.DBDriver, cfg.DBDSN), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage)
	}
}
