package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/uiticket/ticket-system/internal/core/domain"
)

// Repository is the generic persistence contract for one entity type.
//
// Reads hit storage directly. Save, Update and Delete only stage the change on
// the change tracker shared with a UnitOfWork; nothing becomes durable until
// UnitOfWork.Commit succeeds.
type Repository[T domain.Entity] interface {
	// GetAll returns every stored entity. Order is unspecified.
	GetAll(ctx context.Context) ([]T, error)
	// GetByID returns domain.ErrNotFound when no entity has the given id.
	GetByID(ctx context.Context, id uuid.UUID) (T, error)
	// FindBy returns the stored entities whose column equals value.
	FindBy(ctx context.Context, column string, value any) ([]T, error)
	Save(ctx context.Context, entity T) error
	Update(ctx context.Context, entity T) error
	Delete(ctx context.Context, entity T) error
}

// UnitOfWork flushes every change staged by the repositories sharing its
// change tracker as one atomic operation.
type UnitOfWork interface {
	// Commit returns a *domain.CommitError wrapping the cause on failure.
	Commit(ctx context.Context) error
}

// TicketScope groups the repositories that share one change tracker together
// with the unit of work committing them. A scope is owned by a single request.
type TicketScope interface {
	Tickets() Repository[*domain.Ticket]
	Comments() Repository[*domain.Comment]
	UnitOfWork() UnitOfWork
}

// TicketScopeFactory opens a fresh TicketScope.
type TicketScopeFactory interface {
	NewScope() TicketScope
}
