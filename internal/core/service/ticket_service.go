package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/uiticket/ticket-system/internal/core/domain"
	"github.com/uiticket/ticket-system/internal/core/ports"
	"github.com/uiticket/ticket-system/internal/pkg/metrics"
)

// TicketService runs ticket use cases. Every call opens its own scope, stages
// its changes through the scope repositories and commits them once.
type TicketService struct {
	scopes ports.TicketScopeFactory
	logger zerolog.Logger
	now    func() time.Time
}

func NewTicketService(scopes ports.TicketScopeFactory, logger zerolog.Logger) *TicketService {
	return &TicketService{scopes: scopes, logger: logger, now: time.Now}
}

// List returns the tickets matching filter, newest first.
func (s *TicketService) List(ctx context.Context, filter ports.ListTicketsFilter) ([]*domain.Ticket, error) {
	all, err := s.scopes.NewScope().Tickets().GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tickets: %w", err)
	}

	out := make([]*domain.Ticket, 0, len(all))
	for _, t := range all {
		if filter.Status != "" && string(t.Status) != filter.Status {
			continue
		}
		if filter.CreatedBy != nil && t.CreatedBy != *filter.CreatedBy {
			continue
		}
		if filter.AssignedTo != nil && (t.AssignedTo == nil || *t.AssignedTo != *filter.AssignedTo) {
			continue
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *TicketService) Get(ctx context.Context, id uuid.UUID) (*domain.Ticket, error) {
	t, err := s.scopes.NewScope().Tickets().GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get ticket: %w", err)
	}
	return t, nil
}

// Create opens a ticket in the open status.
func (s *TicketService) Create(ctx context.Context, input ports.CreateTicketInput) (*domain.Ticket, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, fmt.Errorf("create ticket: title is required: %w", domain.ErrInvalidInput)
	}
	priority, err := parsePriority(input.Priority)
	if err != nil {
		return nil, fmt.Errorf("create ticket: %w", err)
	}

	now := s.now().UTC()
	ticket := &domain.Ticket{
		ID:          uuid.New(),
		Title:       title,
		Description: input.Description,
		Status:      domain.StatusOpen,
		Priority:    priority,
		Tags:        normalizeTags(input.Tags),
		CreatedBy:   input.CreatedBy,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	scope := s.scopes.NewScope()
	if err := scope.Tickets().Save(ctx, ticket); err != nil {
		return nil, fmt.Errorf("create ticket: %w", err)
	}
	if err := scope.UnitOfWork().Commit(ctx); err != nil {
		s.logger.Error().Err(err).Msg("failed to create ticket")
		return nil, fmt.Errorf("create ticket: %w", err)
	}

	metrics.TicketsCreatedTotal.WithLabelValues(string(priority)).Inc()
	s.logger.Info().Str("ticket_id", ticket.ID.String()).Str("created_by", input.CreatedBy.String()).Msg("ticket created")
	return ticket, nil
}

// Update replaces the editable fields that are set on input.
func (s *TicketService) Update(ctx context.Context, input ports.UpdateTicketInput) (*domain.Ticket, error) {
	scope := s.scopes.NewScope()
	ticket, err := scope.Tickets().GetByID(ctx, input.ID)
	if err != nil {
		return nil, fmt.Errorf("update ticket: %w", err)
	}

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, fmt.Errorf("update ticket: title is required: %w", domain.ErrInvalidInput)
		}
		ticket.Title = title
	}
	if input.Description != nil {
		ticket.Description = *input.Description
	}
	if input.Priority != nil {
		p, err := parsePriority(*input.Priority)
		if err != nil {
			return nil, fmt.Errorf("update ticket: %w", err)
		}
		ticket.Priority = p
	}
	if input.Tags != nil {
		ticket.Tags = normalizeTags(input.Tags)
	}

	if err := s.stageUpdate(ctx, scope, ticket); err != nil {
		return nil, fmt.Errorf("update ticket: %w", err)
	}
	return ticket, nil
}

// ChangeStatus applies a status transition allowed by the ticket state machine.
func (s *TicketService) ChangeStatus(ctx context.Context, input ports.ChangeStatusInput) (*domain.Ticket, error) {
	next := domain.TicketStatus(input.Status)

	scope := s.scopes.NewScope()
	ticket, err := scope.Tickets().GetByID(ctx, input.ID)
	if err != nil {
		return nil, fmt.Errorf("change status: %w", err)
	}
	if !ticket.Status.CanTransitionTo(next) {
		return nil, fmt.Errorf("change status: %w (from %s to %s)", domain.ErrInvalidTransition, ticket.Status, next)
	}

	ticket.Status = next
	if err := s.stageUpdate(ctx, scope, ticket); err != nil {
		return nil, fmt.Errorf("change status: %w", err)
	}

	metrics.TicketStatusChangesTotal.WithLabelValues(string(next)).Inc()
	return ticket, nil
}

// Assign sets the ticket owner; a nil assignee clears it.
func (s *TicketService) Assign(ctx context.Context, input ports.AssignTicketInput) (*domain.Ticket, error) {
	scope := s.scopes.NewScope()
	ticket, err := scope.Tickets().GetByID(ctx, input.ID)
	if err != nil {
		return nil, fmt.Errorf("assign ticket: %w", err)
	}

	ticket.AssignedTo = input.Assignee
	if err := s.stageUpdate(ctx, scope, ticket); err != nil {
		return nil, fmt.Errorf("assign ticket: %w", err)
	}
	return ticket, nil
}

// Delete removes the ticket and all its comments in a single commit.
func (s *TicketService) Delete(ctx context.Context, id uuid.UUID) error {
	scope := s.scopes.NewScope()
	ticket, err := scope.Tickets().GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("delete ticket: %w", err)
	}

	comments, err := scope.Comments().FindBy(ctx, "ticket_id", id)
	if err != nil {
		return fmt.Errorf("delete ticket: comments: %w", err)
	}
	for _, c := range comments {
		if err := scope.Comments().Delete(ctx, c); err != nil {
			return fmt.Errorf("delete ticket: comment %s: %w", c.ID, err)
		}
	}
	if err := scope.Tickets().Delete(ctx, ticket); err != nil {
		return fmt.Errorf("delete ticket: %w", err)
	}

	if err := scope.UnitOfWork().Commit(ctx); err != nil {
		return fmt.Errorf("delete ticket: %w", err)
	}
	s.logger.Info().Str("ticket_id", id.String()).Msg("ticket deleted")
	return nil
}

// AddComment stores the comment and bumps the ticket's UpdatedAt in one commit.
func (s *TicketService) AddComment(ctx context.Context, input ports.AddCommentInput) (*domain.Comment, error) {
	body := strings.TrimSpace(input.Body)
	if body == "" {
		return nil, fmt.Errorf("add comment: body is required: %w", domain.ErrInvalidInput)
	}

	scope := s.scopes.NewScope()
	ticket, err := scope.Tickets().GetByID(ctx, input.TicketID)
	if err != nil {
		return nil, fmt.Errorf("add comment: %w", err)
	}

	now := s.now().UTC()
	comment := &domain.Comment{
		ID:        uuid.New(),
		TicketID:  ticket.ID,
		AuthorID:  input.AuthorID,
		Body:      body,
		CreatedAt: now,
	}
	if err := scope.Comments().Save(ctx, comment); err != nil {
		return nil, fmt.Errorf("add comment: %w", err)
	}

	if err := s.stageUpdate(ctx, scope, ticket); err != nil {
		return nil, fmt.Errorf("add comment: %w", err)
	}
	return comment, nil
}

// ListComments returns the ticket's comments, oldest first.
func (s *TicketService) ListComments(ctx context.Context, ticketID uuid.UUID) ([]*domain.Comment, error) {
	scope := s.scopes.NewScope()
	if _, err := scope.Tickets().GetByID(ctx, ticketID); err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}

	out, err := scope.Comments().FindBy(ctx, "ticket_id", ticketID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	if out == nil {
		out = []*domain.Comment{}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// stageUpdate touches UpdatedAt, stages the ticket update and commits the scope.
func (s *TicketService) stageUpdate(ctx context.Context, scope ports.TicketScope, ticket *domain.Ticket) error {
	ticket.UpdatedAt = s.now().UTC()
	if err := scope.Tickets().Update(ctx, ticket); err != nil {
		return err
	}
	return scope.UnitOfWork().Commit(ctx)
}

func parsePriority(raw string) (domain.TicketPriority, error) {
	switch p := domain.TicketPriority(strings.ToLower(strings.TrimSpace(raw))); p {
	case "":
		return domain.PriorityMedium, nil
	case domain.PriorityLow, domain.PriorityMedium, domain.PriorityHigh:
		return p, nil
	default:
		return "", fmt.Errorf("unknown priority %q: %w", raw, domain.ErrInvalidInput)
	}
}

// normalizeTags lower-cases, trims and de-duplicates tags, preserving order.
func normalizeTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
