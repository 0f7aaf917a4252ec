package postgres

import (
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/uiticket/ticket-system/internal/core/domain"
	"github.com/uiticket/ticket-system/internal/core/ports"
)

// Scope ties the ticket repositories and their unit of work to one tracker.
type Scope struct {
	tickets  *Repository[*domain.Ticket]
	comments *Repository[*domain.Comment]
	uow      *UnitOfWork
}

func (s *Scope) Tickets() ports.Repository[*domain.Ticket]   { return s.tickets }
func (s *Scope) Comments() ports.Repository[*domain.Comment] { return s.comments }
func (s *Scope) UnitOfWork() ports.UnitOfWork                { return s.uow }

// ScopeFactory opens a fresh Scope per use case over a shared connection pool.
type ScopeFactory struct {
	db  *gorm.DB
	log zerolog.Logger
}

var _ ports.TicketScopeFactory = (*ScopeFactory)(nil)

func NewScopeFactory(db *gorm.DB, log zerolog.Logger) *ScopeFactory {
	return &ScopeFactory{db: db, log: log}
}

func (f *ScopeFactory) NewScope() ports.TicketScope {
	tracker := NewChangeTracker()
	return &Scope{
		tickets:  NewRepository[*domain.Ticket](f.db, tracker),
		comments: NewRepository[*domain.Comment](f.db, tracker),
		uow:      NewUnitOfWork(f.db, tracker, f.log),
	}
}
