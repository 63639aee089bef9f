// Package services contains server-side business logic: account
// registration and login (UserService) and the owner-scoped credential
// vault (VaultService).
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/securepass/internal/common"
	"github.com/dmitrijs2005/securepass/internal/cryptox"
	"github.com/dmitrijs2005/securepass/internal/logging"
	"github.com/dmitrijs2005/securepass/internal/server/auth"
	"github.com/dmitrijs2005/securepass/internal/server/models"
	"github.com/dmitrijs2005/securepass/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/securepass/internal/server/validation"
	"github.com/google/uuid"
)

// TokenIssuer mints bearer tokens for a user id.
type TokenIssuer interface {
	Issue(userID string) (string, error)
}

// UserService provides authentication-related operations:
// - Register: create users and sign them in
// - Login: verify credentials and mint a token
// - ResolvePrincipal: load the live account behind a token
type UserService struct {
	repomanager repomanager.RepositoryManager
	tokens      TokenIssuer
	log         logging.Logger
	// dummyHash is verified against when the user does not exist so both
	// login failure paths cost one argon2 derivation.
	dummyHash string
}

// NewUserService constructs a UserService.
func NewUserService(m repomanager.RepositoryManager, tokens TokenIssuer, log logging.Logger) (*UserService, error) {
	dummy, err := cryptox.HashPassword(uuid.NewString())
	if err != nil {
		return nil, fmt.Errorf("dummy hash: %w", err)
	}
	return &UserService{
		repomanager: m,
		tokens:      tokens,
		log:         log.With("module", "users"),
		dummyHash:   dummy,
	}, nil
}

// Register creates an account and returns a token for it. Validation
// failures are validation.Errors; a taken name is common.ErrAlreadyExists.
func (s *UserService) Register(ctx context.Context, userName, password string) (string, error) {
	if err := validation.Registration(userName, password); err != nil {
		return "", err
	}

	user, err := s.create(ctx, userName, password)
	if err != nil {
		return "", err
	}

	s.log.Info(ctx, "user registered", "user_id", user.ID)
	return s.issue(user.ID)
}

// Login checks the password and returns a token. An unknown user and a
// wrong password both yield common.ErrorUnauthorized.
func (s *UserService) Login(ctx context.Context, userName, password string) (string, error) {
	if err := validation.Login(userName, password); err != nil {
		return "", err
	}

	repo := s.repomanager.Users(s.repomanager.Conn())
	user, err := repo.GetByUserName(ctx, userName)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			_, _ = cryptox.VerifyPassword(s.dummyHash, password)
			return "", common.ErrorUnauthorized
		}
		return "", fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}

	ok, err := cryptox.VerifyPassword(user.PasswordHash, password)
	if err != nil {
		s.log.Error(ctx, "stored password hash is unreadable", "user_id", user.ID, "error", err)
		return "", common.ErrorUnauthorized
	}
	if !ok {
		return "", common.ErrorUnauthorized
	}

	return s.issue(user.ID)
}

// ResolvePrincipal returns the account behind a verified token subject, or
// common.ErrorNotFound when it was deleted.
func (s *UserService) ResolvePrincipal(ctx context.Context, userID string) (auth.Principal, error) {
	repo := s.repomanager.Users(s.repomanager.Conn())
	user, err := repo.GetByID(ctx, userID)
	if err != nil {
		return auth.Principal{}, err
	}
	return auth.Principal{UserID: user.ID, UserName: user.UserName}, nil
}

// SeedAdmin creates the bootstrap account when it is missing. It does
// nothing when either value is empty.
func (s *UserService) SeedAdmin(ctx context.Context, userName, password string) error {
	if userName == "" || password == "" {
		return nil
	}

	repo := s.repomanager.Users(s.repomanager.Conn())
	_, err := repo.GetByUserName(ctx, userName)
	switch {
	case err == nil:
		s.log.Info(ctx, "admin user already exists", "username", userName)
		return nil
	case !errors.Is(err, common.ErrorNotFound):
		return fmt.Errorf("look up admin: %w", err)
	}

	if _, err := s.create(ctx, userName, password); err != nil {
		if errors.Is(err, common.ErrAlreadyExists) {
			return nil
		}
		return fmt.Errorf("create admin: %w", err)
	}

	s.log.Info(ctx, "admin user created", "username", userName)
	return nil
}

// --- helpers below ---

func (s *UserService) create(ctx context.Context, userName, password string) (*models.User, error) {
	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}

	repo := s.repomanager.Users(s.repomanager.Conn())
	user, err := repo.Create(ctx, &models.User{ID: uuid.NewString(), UserName: userName, PasswordHash: hash})
	if err != nil {
		if errors.Is(err, common.ErrAlreadyExists) {
			return nil, common.ErrAlreadyExists
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}
	return user, nil
}

func (s *UserService) issue(userID string) (string, error) {
	token, err := s.tokens.Issue(userID)
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}
	return token, nil
}
