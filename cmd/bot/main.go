package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gumruyanzh/telegram-task-bot/internal/app"
	"github.com/gumruyanzh/telegram-task-bot/internal/config"
	"github.com/gumruyanzh/telegram-task-bot/internal/server"
)

func main() {
	cfg := config.Load()
	if cfg.BotToken == "" {
		log.Fatal("BOT_TOKEN is not set")
	}
	if len(cfg.AdminIDs) == 0 {
		log.Print("warning: ADMIN_IDS is empty, nobody can manage tasks")
	}

	a, err := app.New(cfg)
	if err != nil {
		log.Fatalf("init: %v", err)
	}

	srv := server.New(cfg.HTTPAddr, a.Router)
	srvErr := make(chan error, 1)
	go func() {
		srvErr <- srv.Start()
	}()

	botCtx, cancelBot := context.WithCancel(context.Background())
	botErr := make(chan error, 1)
	go func() {
		botErr <- a.Bot.Run(botCtx)
	}()

	a.Scheduler.Start()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(stop)
	select {
	case sig := <-stop:
		log.Printf("signal %s received, shutting down", sig)
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("server error: %v", err)
		}
	case err := <-botErr:
		if err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("bot error: %v", err)
		}
	}

	a.Scheduler.Stop()
	cancelBot()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Stop(ctx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}
