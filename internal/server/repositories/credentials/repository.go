package credentials

import (
	"context"

	"github.com/dmitrijs2005/securepass/internal/server/models"
)

// Repository persists credential records. Update and Delete are scoped by
// owner: a record that exists under another owner behaves like a missing
// one and yields common.ErrorNotFound.
type Repository interface {
	Create(ctx context.Context, c *models.Credential) error
	GetByID(ctx context.Context, id string) (*models.Credential, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*models.Credential, error)
	Update(ctx context.Context, c *models.Credential) error
	Delete(ctx context.Context, id, ownerID string) error
}
