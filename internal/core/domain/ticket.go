package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// TicketStatus represents the lifecycle state of a ticket.
type TicketStatus string

const (
	StatusOpen       TicketStatus = "open"
	StatusInProgress TicketStatus = "in_progress"
	StatusResolved   TicketStatus = "resolved"
	StatusClosed     TicketStatus = "closed"
)

// validTransitions defines the allowed state machine transitions.
var validTransitions = map[TicketStatus][]TicketStatus{
	StatusOpen:       {StatusInProgress, StatusClosed},
	StatusInProgress: {StatusResolved, StatusOpen, StatusClosed},
	StatusResolved:   {StatusClosed, StatusOpen},
	StatusClosed:     {StatusOpen},
}

// CanTransitionTo reports whether a transition from current status to next is valid.
func (s TicketStatus) CanTransitionTo(next TicketStatus) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// TicketPriority ranks how urgently a ticket must be handled.
type TicketPriority string

const (
	PriorityLow    TicketPriority = "low"
	PriorityMedium TicketPriority = "medium"
	PriorityHigh   TicketPriority = "high"
)

// Ticket is the core aggregate root.
type Ticket struct {
	ID          uuid.UUID                   `json:"id" gorm:"type:uuid;primaryKey"`
	Title       string                      `json:"title" gorm:"size:200;not null"`
	Description string                      `json:"description" gorm:"type:text"`
	Status      TicketStatus                `json:"status" gorm:"size:32;not null;index"`
	Priority    TicketPriority              `json:"priority" gorm:"size:16;not null"`
	Tags        datatypes.JSONSlice[string] `json:"tags"`
	CreatedBy   uuid.UUID                   `json:"created_by" gorm:"type:uuid;not null;index"`
	AssignedTo  *uuid.UUID                  `json:"assigned_to,omitempty" gorm:"type:uuid;index"`
	CreatedAt   time.Time                   `json:"created_at"`
	UpdatedAt   time.Time                   `json:"updated_at"`
}

func (t *Ticket) EntityID() uuid.UUID { return t.ID }

// Comment is a message attached to a ticket.
type Comment struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	TicketID  uuid.UUID `json:"ticket_id" gorm:"type:uuid;not null;index"`
	AuthorID  uuid.UUID `json:"author_id" gorm:"type:uuid;not null"`
	Body      string    `json:"body" gorm:"type:text;not null"`
	CreatedAt time.Time `json:"created_at"`
}

func (c *Comment) EntityID() uuid.UUID { return c.ID }

// TableName keeps the comments table name stable regardless of the struct name.
func (Comment) TableName() string { return "ticket_comments" }
