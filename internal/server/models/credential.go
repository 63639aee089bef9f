package models

import "time"

// Credential is one stored site login. Password holds the envelope
// ciphertext; plaintext never reaches storage.
type Credential struct {
	ID        string
	UserID    string
	Site      string
	UserName  string
	Password  string
	CreatedAt time.Time
	UpdatedAt time.Time
}
