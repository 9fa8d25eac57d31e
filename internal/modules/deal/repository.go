package deal

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines deal persistence. GetByID returns ErrNotFound for
// unknown ids.
type Repository interface {
	Create(ctx context.Context, d *Deal) error
	GetByID(ctx context.Context, id uuid.UUID) (*Deal, error)
	List(ctx context.Context, f ListFilter) ([]*Deal, error)
	Update(ctx context.Context, d *Deal) error
	Delete(ctx context.Context, id uuid.UUID) error
}
