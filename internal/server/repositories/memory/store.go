// Package memory keeps users and credentials in process memory. It backs
// development runs without a database and the end-to-end tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/dmitrijs2005/securepass/internal/common"
	"github.com/dmitrijs2005/securepass/internal/server/models"
)

// Store holds all rows. Rows are copied in and out so callers never share
// memory with the store.
type Store struct {
	mu          sync.RWMutex
	users       map[string]models.User
	credentials map[string]models.Credential
	now         func() time.Time
}

func NewStore() *Store {
	return &Store{
		users:       make(map[string]models.User),
		credentials: make(map[string]models.Credential),
		now:         time.Now,
	}
}

type journalKey struct{}

// Journal records how to undo the writes of one transaction. Writes made
// with a context that carries no journal are never touched by a rollback.
type Journal struct {
	undo []func(s *Store)
}

// Begin returns ctx carrying a fresh journal. Repository writes made with
// the returned context are recorded in it.
func (s *Store) Begin(ctx context.Context) (context.Context, *Journal) {
	j := &Journal{}
	return context.WithValue(ctx, journalKey{}, j), j
}

// Rollback reverts the writes recorded in j, newest first.
func (s *Store) Rollback(j *Journal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(j.undo) - 1; i >= 0; i-- {
		j.undo[i](s)
	}
	j.undo = nil
}

// record must be called with s.mu held.
func record(ctx context.Context, undo func(s *Store)) {
	if j, ok := ctx.Value(journalKey{}).(*Journal); ok {
		j.undo = append(j.undo, undo)
	}
}

// UserRepository implements users.Repository.
type UserRepository struct{ s *Store }

func (r UserRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, u := range r.s.users {
		if u.UserName == user.UserName {
			return nil, common.ErrAlreadyExists
		}
	}
	if _, ok := r.s.users[user.ID]; ok {
		return nil, common.ErrAlreadyExists
	}

	user.CreatedAt = r.s.now()
	r.s.users[user.ID] = *user
	id := user.ID
	record(ctx, func(s *Store) { delete(s.users, id) })
	return user, nil
}

func (r UserRepository) GetByUserName(_ context.Context, userName string) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, u := range r.s.users {
		if u.UserName == userName {
			return &u, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r UserRepository) GetByID(_ context.Context, id string) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &u, nil
}

// CredentialRepository implements credentials.Repository.
type CredentialRepository struct{ s *Store }

func (r CredentialRepository) Create(ctx context.Context, c *models.Credential) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.credentials[c.ID]; ok {
		return common.ErrAlreadyExists
	}
	now := r.s.now()
	c.CreatedAt, c.UpdatedAt = now, now
	r.s.credentials[c.ID] = *c
	id := c.ID
	record(ctx, func(s *Store) { delete(s.credentials, id) })
	return nil
}

func (r CredentialRepository) GetByID(_ context.Context, id string) (*models.Credential, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	c, ok := r.s.credentials[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &c, nil
}

func (r CredentialRepository) ListByOwner(_ context.Context, ownerID string) ([]*models.Credential, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	result := make([]*models.Credential, 0)
	for _, c := range r.s.credentials {
		if c.UserID == ownerID {
			result = append(result, &c)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID < result[j].ID
		}
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

func (r CredentialRepository) Update(ctx context.Context, c *models.Credential) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	cur, ok := r.s.credentials[c.ID]
	if !ok || cur.UserID != c.UserID {
		return common.ErrorNotFound
	}
	prev := cur
	cur.Site, cur.UserName, cur.Password = c.Site, c.UserName, c.Password
	cur.UpdatedAt = r.s.now()
	r.s.credentials[c.ID] = cur
	record(ctx, func(s *Store) { s.credentials[prev.ID] = prev })

	c.CreatedAt, c.UpdatedAt = cur.CreatedAt, cur.UpdatedAt
	return nil
}

func (r CredentialRepository) Delete(ctx context.Context, id, ownerID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	cur, ok := r.s.credentials[id]
	if !ok || cur.UserID != ownerID {
		return common.ErrorNotFound
	}
	delete(r.s.credentials, id)
	record(ctx, func(s *Store) { s.credentials[cur.ID] = cur })
	return nil
}

// Users returns the account repository.
func (s *Store) Users() UserRepository { return UserRepository{s: s} }

// Credentials returns the credential repository.
func (s *Store) Credentials() CredentialRepository { return CredentialRepository{s: s} }
