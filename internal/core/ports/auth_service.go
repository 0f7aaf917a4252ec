package ports

import (
	"context"

	"github.com/uiticket/ticket-system/internal/core/domain"
)

// RegisterResult is what a registration attempt reports back to the caller.
type RegisterResult struct {
	Success bool
	Message string
}

type AuthService interface {
	Authenticate(ctx context.Context, email, password string, rememberMe bool) (bool, error)
	Logout(ctx context.Context) error
	RegisterUser(ctx context.Context, fullName, email, password string) (RegisterResult, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	UpdateUserProfile(ctx context.Context, userID, imagePath string) (bool, error)
	CurrentUser(ctx context.Context, userID string) (*domain.User, error)
}
