package repository

import "github.com/gumruyanzh/telegram-task-bot/internal/domain"

// UserRepository is the username directory, refreshed opportunistically from
// every observed interaction.
type UserRepository interface {
	GetUserByUsername(username string) (domain.User, error)
	UpsertUser(user domain.User) (domain.User, error)
}
