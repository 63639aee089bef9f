package models

import "time"

// User is an account that owns credentials. UserName is unique and never
// changes after registration.
type User struct {
	ID           string
	UserName     string
	PasswordHash string
	CreatedAt    time.Time
}
