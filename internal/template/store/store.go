package store

import (
	"context"

	"certserve/internal/template/models"
)

// Store is interface-driven so the service can run against in-memory storage
// in tests and Postgres in production without rewiring.
type Store interface {
	Create(ctx context.Context, tpl *models.Template) error
	Update(ctx context.Context, tpl *models.Template) error
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*models.Template, error)
	FindDefault(ctx context.Context) (*models.Template, error)
	List(ctx context.Context, filter models.Filter) ([]*models.Template, error)
	// ClearDefault unsets the default flag everywhere except exceptID. Paired
	// with a following Create/Update it implements the clear-then-set default
	// exclusivity sequence.
	ClearDefault(ctx context.Context, exceptID string) error
}
