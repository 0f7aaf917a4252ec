package handler

import (
	"time"

	"github.com/uiticket/ticket-system/internal/core/domain"
)

func toTicketResponse(t *domain.Ticket) ticketResponse {
	self := "/v1/tickets/" + t.ID.String()
	resp := ticketResponse{
		ID:          t.ID.String(),
		Title:       t.Title,
		Description: t.Description,
		Status:      string(t.Status),
		Priority:    string(t.Priority),
		Tags:        []string(t.Tags),
		CreatedBy:   t.CreatedBy.String(),
		CreatedAt:   t.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   t.UpdatedAt.Format(time.RFC3339),
		Links: ticketLinks{
			Self:     self,
			Comments: self + "/comments",
		},
	}
	if resp.Tags == nil {
		resp.Tags = []string{}
	}
	if t.AssignedTo != nil {
		resp.AssignedTo = t.AssignedTo.String()
	}
	return resp
}

func toCommentResponse(c *domain.Comment) commentResponse {
	return commentResponse{
		ID:        c.ID.String(),
		TicketID:  c.TicketID.String(),
		AuthorID:  c.AuthorID.String(),
		Body:      c.Body,
		CreatedAt: c.CreatedAt.Format(time.RFC3339),
	}
}

func toUserResponse(u *domain.User) userResponse {
	roles := u.Roles
	if roles == nil {
		roles = []string{}
	}
	return userResponse{
		ID:             u.ID.String(),
		FullName:       u.FullName,
		Email:          u.Email,
		ProfilePicture: u.ProfilePicture,
		Roles:          roles,
	}
}
