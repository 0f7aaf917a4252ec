package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/uiticket/ticket-system/internal/core/domain"
	"github.com/uiticket/ticket-system/internal/core/ports"
)

// ---------------------------------------------------------------------------
// In-memory scope stub: repositories stage, the unit of work applies.
// ---------------------------------------------------------------------------

type stubDB struct {
	tickets   map[uuid.UUID]domain.Ticket
	comments  map[uuid.UUID]domain.Comment
	commits   int
	scans     int
	commitErr error
}

func newStubDB() *stubDB {
	return &stubDB{
		tickets:  make(map[uuid.UUID]domain.Ticket),
		comments: make(map[uuid.UUID]domain.Comment),
	}
}

func (db *stubDB) NewScope() ports.TicketScope {
	return &stubScope{db: db}
}

type stubScope struct {
	db     *stubDB
	staged []func()
}

func (s *stubScope) Tickets() ports.Repository[*domain.Ticket] {
	return &stubRepo[*domain.Ticket]{
		scope: s,
		all: func() []*domain.Ticket {
			out := make([]*domain.Ticket, 0, len(s.db.tickets))
			for _, t := range s.db.tickets {
				clone := t
				out = append(out, &clone)
			}
			return out
		},
		put:    func(t *domain.Ticket) { s.db.tickets[t.ID] = *t },
		remove: func(id uuid.UUID) { delete(s.db.tickets, id) },
		column: func(t *domain.Ticket, name string) any {
			switch name {
			case "status":
				return string(t.Status)
			case "created_by":
				return t.CreatedBy
			}
			return nil
		},
	}
}

func (s *stubScope) Comments() ports.Repository[*domain.Comment] {
	return &stubRepo[*domain.Comment]{
		scope: s,
		all: func() []*domain.Comment {
			out := make([]*domain.Comment, 0, len(s.db.comments))
			for _, c := range s.db.comments {
				clone := c
				out = append(out, &clone)
			}
			return out
		},
		put:    func(c *domain.Comment) { s.db.comments[c.ID] = *c },
		remove: func(id uuid.UUID) { delete(s.db.comments, id) },
		column: func(c *domain.Comment, name string) any {
			switch name {
			case "ticket_id":
				return c.TicketID
			case "author_id":
				return c.AuthorID
			}
			return nil
		},
	}
}

func (s *stubScope) UnitOfWork() ports.UnitOfWork { return s }

func (s *stubScope) Commit(context.Context) error {
	if s.db.commitErr != nil {
		return &domain.CommitError{Err: s.db.commitErr}
	}
	for _, op := range s.staged {
		op()
	}
	s.staged = nil
	s.db.commits++
	return nil
}

type stubRepo[T domain.Entity] struct {
	scope  *stubScope
	all    func() []T
	put    func(T)
	remove func(uuid.UUID)
	column func(T, string) any
}

func (r *stubRepo[T]) GetAll(context.Context) ([]T, error) {
	r.scope.db.scans++
	return r.all(), nil
}

func (r *stubRepo[T]) GetByID(_ context.Context, id uuid.UUID) (T, error) {
	for _, e := range r.all() {
		if e.EntityID() == id {
			return e, nil
		}
	}
	var zero T
	return zero, domain.ErrNotFound
}

func (r *stubRepo[T]) FindBy(_ context.Context, column string, value any) ([]T, error) {
	var out []T
	for _, e := range r.all() {
		if v := r.column(e, column); v != nil && v == value {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *stubRepo[T]) Save(_ context.Context, e T) error {
	r.scope.staged = append(r.scope.staged, func() { r.put(e) })
	return nil
}

func (r *stubRepo[T]) Update(_ context.Context, e T) error {
	r.scope.staged = append(r.scope.staged, func() { r.put(e) })
	return nil
}

func (r *stubRepo[T]) Delete(_ context.Context, e T) error {
	id := e.EntityID()
	r.scope.staged = append(r.scope.staged, func() { r.remove(id) })
	return nil
}

func newTicketService(db *stubDB) *TicketService {
	svc := NewTicketService(db, zerolog.Nop())
	clock := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}
	return svc
}

func mustCreate(t *testing.T, svc *TicketService, title string) *domain.Ticket {
	t.Helper()
	ticket, err := svc.Create(context.Background(), ports.CreateTicketInput{
		Title:     title,
		Priority:  "high",
		Tags:      []string{" Printer ", "printer", "Network"},
		CreatedBy: uuid.New(),
	})
	if err != nil {
		t.Fatalf("create ticket: %v", err)
	}
	return ticket
}

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func TestTicketService_Create(t *testing.T) {
	db := newStubDB()
	svc := newTicketService(db)

	ticket := mustCreate(t, svc, "  Printer jammed ")
	if ticket.Title != "Printer jammed" || ticket.Status != domain.StatusOpen || ticket.Priority != domain.PriorityHigh {
		t.Fatalf("unexpected ticket: %+v", ticket)
	}
	if len(ticket.Tags) != 2 || ticket.Tags[0] != "printer" || ticket.Tags[1] != "network" {
		t.Fatalf("unexpected tags: %v", ticket.Tags)
	}
	if _, ok := db.tickets[ticket.ID]; !ok || db.commits != 1 {
		t.Fatalf("expected ticket committed once, commits=%d", db.commits)
	}
}

func TestTicketService_Create_Validation(t *testing.T) {
	svc := newTicketService(newStubDB())

	cases := []ports.CreateTicketInput{
		{Title: "   "},
		{Title: "ok", Priority: "urgent"},
	}
	for _, in := range cases {
		if _, err := svc.Create(context.Background(), in); !errors.Is(err, domain.ErrInvalidInput) {
			t.Fatalf("input %+v: expected ErrInvalidInput, got %v", in, err)
		}
	}
}

func TestTicketService_Create_DefaultPriority(t *testing.T) {
	svc := newTicketService(newStubDB())
	ticket, err := svc.Create(context.Background(), ports.CreateTicketInput{Title: "No priority"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if ticket.Priority != domain.PriorityMedium {
		t.Fatalf("expected medium priority, got %s", ticket.Priority)
	}
}

func TestTicketService_Create_CommitFailure(t *testing.T) {
	db := newStubDB()
	db.commitErr = errors.New("disk full")
	svc := newTicketService(db)

	_, err := svc.Create(context.Background(), ports.CreateTicketInput{Title: "lost"})
	var commitErr *domain.CommitError
	if !errors.As(err, &commitErr) {
		t.Fatalf("expected CommitError, got %v", err)
	}
	if len(db.tickets) != 0 {
		t.Fatalf("expected nothing persisted")
	}
}

func TestTicketService_Get_NotFound(t *testing.T) {
	svc := newTicketService(newStubDB())
	if _, err := svc.Get(context.Background(), uuid.New()); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestTicketService_Update(t *testing.T) {
	db := newStubDB()
	svc := newTicketService(db)
	ticket := mustCreate(t, svc, "Old title")

	title := "New title"
	desc := "details"
	updated, err := svc.Update(context.Background(), ports.UpdateTicketInput{ID: ticket.ID, Title: &title, Description: &desc})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	stored := db.tickets[ticket.ID]
	if stored.Title != "New title" || stored.Description != "details" || stored.Priority != domain.PriorityHigh {
		t.Fatalf("unexpected stored ticket: %+v", stored)
	}
	if !updated.UpdatedAt.After(ticket.UpdatedAt) {
		t.Fatalf("expected UpdatedAt to advance")
	}
}

func TestTicketService_ChangeStatus(t *testing.T) {
	db := newStubDB()
	svc := newTicketService(db)
	ticket := mustCreate(t, svc, "Status")

	if _, err := svc.ChangeStatus(context.Background(), ports.ChangeStatusInput{ID: ticket.ID, Status: "in_progress"}); err != nil {
		t.Fatalf("open -> in_progress: %v", err)
	}
	if db.tickets[ticket.ID].Status != domain.StatusInProgress {
		t.Fatalf("expected in_progress, got %s", db.tickets[ticket.ID].Status)
	}

	if _, err := svc.ChangeStatus(context.Background(), ports.ChangeStatusInput{ID: ticket.ID, Status: "bogus"}); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestTicketService_Assign(t *testing.T) {
	db := newStubDB()
	svc := newTicketService(db)
	ticket := mustCreate(t, svc, "Assign")
	agent := uuid.New()

	if _, err := svc.Assign(context.Background(), ports.AssignTicketInput{ID: ticket.ID, Assignee: &agent}); err != nil {
		t.Fatalf("assign: %v", err)
	}
	if got := db.tickets[ticket.ID].AssignedTo; got == nil || *got != agent {
		t.Fatalf("expected assignee %s, got %v", agent, got)
	}

	mine, err := svc.List(context.Background(), ports.ListTicketsFilter{AssignedTo: &agent})
	if err != nil || len(mine) != 1 {
		t.Fatalf("expected one assigned ticket, got %d (%v)", len(mine), err)
	}

	if _, err := svc.Assign(context.Background(), ports.AssignTicketInput{ID: ticket.ID}); err != nil {
		t.Fatalf("unassign: %v", err)
	}
	if db.tickets[ticket.ID].AssignedTo != nil {
		t.Fatalf("expected assignee cleared")
	}
}

func TestTicketService_List_FilterAndOrder(t *testing.T) {
	svc := newTicketService(newStubDB())
	first := mustCreate(t, svc, "first")
	second := mustCreate(t, svc, "second")
	if _, err := svc.ChangeStatus(context.Background(), ports.ChangeStatusInput{ID: first.ID, Status: "closed"}); err != nil {
		t.Fatalf("close: %v", err)
	}

	all, err := svc.List(context.Background(), ports.ListTicketsFilter{})
	if err != nil || len(all) != 2 {
		t.Fatalf("expected 2 tickets, got %d (%v)", len(all), err)
	}
	if all[0].ID != second.ID {
		t.Fatalf("expected newest first")
	}

	open, _ := svc.List(context.Background(), ports.ListTicketsFilter{Status: "open"})
	if len(open) != 1 || open[0].ID != second.ID {
		t.Fatalf("unexpected open tickets: %+v", open)
	}
}

func TestTicketService_AddComment_And_Delete(t *testing.T) {
	db := newStubDB()
	svc := newTicketService(db)
	ticket := mustCreate(t, svc, "Commented")
	other := mustCreate(t, svc, "Other")

	author := uuid.New()
	for _, body := range []string{"first", "second"} {
		if _, err := svc.AddComment(context.Background(), ports.AddCommentInput{TicketID: ticket.ID, AuthorID: author, Body: body}); err != nil {
			t.Fatalf("add comment: %v", err)
		}
	}
	if _, err := svc.AddComment(context.Background(), ports.AddCommentInput{TicketID: other.ID, AuthorID: author, Body: "keep"}); err != nil {
		t.Fatalf("add comment: %v", err)
	}

	db.scans = 0
	comments, err := svc.ListComments(context.Background(), ticket.ID)
	if err != nil || len(comments) != 2 {
		t.Fatalf("expected 2 comments, got %d (%v)", len(comments), err)
	}
	if comments[0].Body != "first" {
		t.Fatalf("expected oldest first, got %q", comments[0].Body)
	}
	if !db.tickets[ticket.ID].UpdatedAt.After(ticket.UpdatedAt) {
		t.Fatalf("expected comment to touch ticket UpdatedAt")
	}

	commits := db.commits
	if err := svc.Delete(context.Background(), ticket.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if db.commits != commits+1 {
		t.Fatalf("expected a single commit for delete, got %d", db.commits-commits)
	}
	if _, ok := db.tickets[ticket.ID]; ok {
		t.Fatalf("expected ticket removed")
	}
	if len(db.comments) != 1 {
		t.Fatalf("expected only the other ticket's comment to remain, got %d", len(db.comments))
	}
	if db.scans != 0 {
		t.Fatalf("expected comments to be filtered by ticket, got %d full scans", db.scans)
	}
}

func TestTicketService_AddComment_Validation(t *testing.T) {
	svc := newTicketService(newStubDB())

	if _, err := svc.AddComment(context.Background(), ports.AddCommentInput{TicketID: uuid.New(), Body: " "}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if _, err := svc.AddComment(context.Background(), ports.AddCommentInput{TicketID: uuid.New(), Body: "hi"}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
