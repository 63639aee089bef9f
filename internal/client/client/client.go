package client

import (
	"context"
)

// Credential is one vault record as the server returns it.
type Credential struct {
	ID           string `json:"id"`
	Site         string `json:"site"`
	UserName     string `json:"username"`
	Password     string `json:"password"`
	DecryptError bool   `json:"decryptError,omitempty"`
}

// Backup locates an uploaded vault snapshot.
type Backup struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

// Client is the API surface the CLI needs.
type Client interface {
	Register(ctx context.Context, userName string, password []byte) error
	Login(ctx context.Context, userName string, password []byte) error
	Logout()
	Ping(ctx context.Context) error
	List(ctx context.Context) ([]Credential, error)
	Add(ctx context.Context, c Credential) (Credential, error)
	Delete(ctx context.Context, id string) error
	Backup(ctx context.Context) (Backup, error)
}
