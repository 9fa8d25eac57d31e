package user

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines admin user persistence. Lookups return ErrNotFound when
// no row matches.
type Repository interface {
	CreateUser(ctx context.Context, user *User) error
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*User, error)
}
