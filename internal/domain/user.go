package domain

import "time"

// User is a directory record for anyone the bot has seen interact. It maps a
// telegram username to the stable numeric id needed for private delivery.
type User struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	FirstName string    `json:"first_name,omitempty"`
	LastName  string    `json:"last_name,omitempty"`
	LastSeen  time.Time `json:"last_seen"`
	CreatedAt time.Time `json:"created_at"`
}
