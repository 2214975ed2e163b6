package models

import "time"

// Account represents a named balance owned by a single user. Accounts
// flagged as debt count against the user's net total.
type Account struct {
	ID     string  `json:"id"`
	UserID int64   `json:"user_id"`
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
	Debt   bool    `json:"debt"`
}

// Goal represents a savings target with a due date and a recurrence.
// TargetDate is stored at midnight UTC.
type Goal struct {
	ID         string    `json:"id"`
	UserID     int64     `json:"user_id"`
	Name       string    `json:"name"`
	Target     float64   `json:"target"`
	TargetDate time.Time `json:"target_date"`
	Recurrence string    `json:"recurrence"`
}

// User represents a user account.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Session represents a user session.
type Session struct {
	Token     string    `json:"token"`
	UserID    int64     `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
}
