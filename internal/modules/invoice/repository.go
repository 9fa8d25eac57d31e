package invoice

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository defines invoice persistence.
type Repository interface {
	Create(ctx context.Context, inv *Invoice) error
	GetByID(ctx context.Context, id uuid.UUID) (*Invoice, error)
	GetByNumber(ctx context.Context, number string) (*Invoice, error)
	List(ctx context.Context, f ListFilter) ([]*Invoice, error)
	Update(ctx context.Context, inv *Invoice) error
	Delete(ctx context.Context, id uuid.UUID) error
	// MarkOverdue moves sent invoices due before today to overdue and
	// returns how many changed.
	MarkOverdue(ctx context.Context, today time.Time) (int64, error)
}
