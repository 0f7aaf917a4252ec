package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/uiticket/ticket-system/internal/core/domain"
)

// CreateTicketInput carries all data needed to open a new ticket.
type CreateTicketInput struct {
	Title       string
	Description string
	Priority    string
	Tags        []string
	CreatedBy   uuid.UUID
}

// UpdateTicketInput replaces the editable fields of a ticket. Nil fields are left untouched.
type UpdateTicketInput struct {
	ID          uuid.UUID
	Title       *string
	Description *string
	Priority    *string
	Tags        []string
}

// ChangeStatusInput moves a ticket along its status state machine.
type ChangeStatusInput struct {
	ID     uuid.UUID
	Status string
}

// AssignTicketInput sets or clears (nil Assignee) the ticket owner.
type AssignTicketInput struct {
	ID       uuid.UUID
	Assignee *uuid.UUID
}

// AddCommentInput appends a comment to a ticket.
type AddCommentInput struct {
	TicketID uuid.UUID
	AuthorID uuid.UUID
	Body     string
}

// ListTicketsFilter narrows List results. Empty fields do not filter.
type ListTicketsFilter struct {
	Status     string
	AssignedTo *uuid.UUID
	CreatedBy  *uuid.UUID
}

// TicketService defines use-case operations for tickets.
type TicketService interface {
	List(ctx context.Context, filter ListTicketsFilter) ([]*domain.Ticket, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.Ticket, error)
	Create(ctx context.Context, input CreateTicketInput) (*domain.Ticket, error)
	Update(ctx context.Context, input UpdateTicketInput) (*domain.Ticket, error)
	ChangeStatus(ctx context.Context, input ChangeStatusInput) (*domain.Ticket, error)
	Assign(ctx context.Context, input AssignTicketInput) (*domain.Ticket, error)
	Delete(ctx context.Context, id uuid.UUID) error
	AddComment(ctx context.Context, input AddCommentInput) (*domain.Comment, error)
	ListComments(ctx context.Context, ticketID uuid.UUID) ([]*domain.Comment, error)
}
