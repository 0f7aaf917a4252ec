package identity

import (
	"context"

	"github.com/google/uuid"

	"github.com/uiticket/ticket-system/internal/core/domain"
)

// UserRepository persists accounts. Lookups return domain.ErrNotFound when no
// account matches; returned users carry their role names.
type UserRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	// FindByNormalizedEmail expects an email already passed through domain.NormalizeEmail.
	FindByNormalizedEmail(ctx context.Context, email string) (*domain.User, error)
	// Create returns domain.ErrDuplicateEmail when the email is taken.
	Create(ctx context.Context, user *domain.User) error
	Update(ctx context.Context, user *domain.User) error
	// AddToRole returns domain.ErrNotFound for an unknown role and
	// domain.ErrAlreadyInRole when the link exists.
	AddToRole(ctx context.Context, userID uuid.UUID, roleName string) error
}

// RoleRepository persists the role catalogue.
type RoleRepository interface {
	FindByName(ctx context.Context, name string) (*domain.Role, error)
	// Create returns domain.ErrDuplicateRole when the name is taken.
	Create(ctx context.Context, role *domain.Role) error
}
