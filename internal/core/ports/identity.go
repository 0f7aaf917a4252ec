package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/uiticket/ticket-system/internal/core/domain"
)

// IdentityError is a single validation failure reported by the identity store.
type IdentityError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// IdentityResult is the outcome of an identity store mutation. Infrastructure
// failures are returned as errors; rule violations are reported here.
type IdentityResult struct {
	Succeeded bool
	Errors    []IdentityError
}

// Success is the result of a mutation that passed every rule.
func Success() IdentityResult { return IdentityResult{Succeeded: true} }

// Failed builds a failed result from one or more identity errors.
func Failed(errs ...IdentityError) IdentityResult {
	return IdentityResult{Succeeded: false, Errors: errs}
}

// FirstError returns the description of the first reported error, or "".
func (r IdentityResult) FirstError() string {
	if len(r.Errors) == 0 {
		return ""
	}
	return r.Errors[0].Description
}

// IdentityStore manages user accounts and their credentials.
type IdentityStore interface {
	// FindByEmail returns nil, nil when no user has the email.
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	// FindByID returns nil, nil when no user has the id.
	FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	CheckPassword(ctx context.Context, user *domain.User, password string) (bool, error)
	Create(ctx context.Context, user *domain.User, password string) (IdentityResult, error)
	Update(ctx context.Context, user *domain.User) (IdentityResult, error)
	GetClaims(ctx context.Context, user *domain.User) ([]domain.Claim, error)
	AddToRole(ctx context.Context, user *domain.User, roleName string) (IdentityResult, error)
}

// RoleStore manages the role catalogue.
type RoleStore interface {
	RoleExists(ctx context.Context, name string) (bool, error)
	Create(ctx context.Context, name string) (IdentityResult, error)
}

// SessionManager issues and terminates sessions for the current request.
type SessionManager interface {
	SignIn(ctx context.Context, principal domain.Principal, opts domain.SessionOptions) error
	// SignOut is idempotent: calling it without an active session is not an error.
	SignOut(ctx context.Context) error
}
