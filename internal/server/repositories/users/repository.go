package users

import (
	"context"

	"github.com/dmitrijs2005/securepass/internal/server/models"
)

// Repository persists accounts. Lookups of a missing account return
// common.ErrorNotFound; a duplicate user name on Create returns
// common.ErrAlreadyExists.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByUserName(ctx context.Context, userName string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
}
