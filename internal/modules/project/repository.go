package project

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines project persistence. Stored legacy statuses are
// migrated on read.
type Repository interface {
	Create(ctx context.Context, p *Project) error
	GetByID(ctx context.Context, id uuid.UUID) (*Project, error)
	List(ctx context.Context, status string) ([]*Project, error)
	Update(ctx context.Context, p *Project) error
	// UpdateChecklist writes only stage_completion.
	UpdateChecklist(ctx context.Context, id uuid.UUID, checklist Checklist) error
	Delete(ctx context.Context, id uuid.UUID) error
}
