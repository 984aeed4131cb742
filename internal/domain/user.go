package domain

import "time"

// Column widths of the users table.
const (
	MaxNameLen  = 100
	MaxEmailLen = 255

	// bcrypt ignores everything past 72 bytes; x/crypto rejects it outright.
	MaxPasswordBytes = 72
)

type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// UserRegistered is emitted once a user row has been committed.
type UserRegistered struct {
	UserID string    `json:"user_id"`
	Name   string    `json:"name"`
	Email  string    `json:"email"`
	At     time.Time `json:"at"`
}
