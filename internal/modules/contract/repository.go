package contract

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines contract persistence.
type Repository interface {
	Create(ctx context.Context, c *Contract) error
	GetByID(ctx context.Context, id uuid.UUID) (*Contract, error)
	List(ctx context.Context, f ListFilter) ([]*Contract, error)
	Update(ctx context.Context, c *Contract) error
}
