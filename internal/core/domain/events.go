package domain

import "time"

// AccountRegisteredEvent is emitted after a new account is persisted.
type AccountRegisteredEvent struct {
	EventID      string
	AccountID    int64
	Username     string
	Email        string
	RegisteredAt time.Time
}

// AccountDeletedEvent is emitted after an account row is removed.
type AccountDeletedEvent struct {
	EventID   string
	AccountID int64
	Username  string
	DeletedAt time.Time
}
