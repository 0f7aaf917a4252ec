package handler

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/uiticket/ticket-system/internal/core/ports"
)

type TicketHandler struct {
	service ports.TicketService
}

func NewTicketHandler(service ports.TicketService) *TicketHandler {
	return &TicketHandler{service: service}
}

// List returns tickets, newest first.
//
// @Summary      List tickets
// @Tags         tickets
// @Produce      json
// @Param        status       query     string  false  "Filter by status"
// @Param        assigned_to  query     string  false  "Filter by assignee id; 'me' for the caller"
// @Param        created_by   query     string  false  "Filter by author id; 'me' for the caller"
// @Success      200          {object}  listTicketsResponse
// @Failure      400          {object}  errorResponse
// @Security     SessionCookie
// @Router       /v1/tickets [get]
func (h *TicketHandler) List(c echo.Context) error {
	_, userID, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	filter := ports.ListTicketsFilter{Status: strings.TrimSpace(c.QueryParam("status"))}
	if filter.AssignedTo, err = queryUser(c, "assigned_to", userID); err != nil {
		return err
	}
	if filter.CreatedBy, err = queryUser(c, "created_by", userID); err != nil {
		return err
	}

	tickets, err := h.service.List(c.Request().Context(), filter)
	if err != nil {
		return err
	}

	items := make([]ticketResponse, 0, len(tickets))
	for _, t := range tickets {
		items = append(items, toTicketResponse(t))
	}
	return c.JSON(http.StatusOK, listTicketsResponse{Items: items, Count: len(items)})
}

// Get returns a single ticket.
//
// @Summary      Get ticket
// @Tags         tickets
// @Produce      json
// @Param        id   path      string  true  "Ticket ID"
// @Success      200  {object}  ticketResponse
// @Failure      404  {object}  errorResponse
// @Security     SessionCookie
// @Router       /v1/tickets/{id} [get]
func (h *TicketHandler) Get(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	t, err := h.service.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toTicketResponse(t))
}

// Create opens a ticket authored by the caller.
//
// @Summary      Create ticket
// @Tags         tickets
// @Accept       json
// @Produce      json
// @Param        body  body      createTicketRequest  true  "Ticket"
// @Success      201   {object}  ticketResponse
// @Failure      400   {object}  errorResponse
// @Security     SessionCookie
// @Router       /v1/tickets [post]
func (h *TicketHandler) Create(c echo.Context) error {
	_, userID, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	var req createTicketRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	t, err := h.service.Create(c.Request().Context(), ports.CreateTicketInput{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		Tags:        req.Tags,
		CreatedBy:   userID,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toTicketResponse(t))
}

// Update edits title, description, priority or tags.
//
// @Summary      Update ticket
// @Tags         tickets
// @Accept       json
// @Produce      json
// @Param        id    path      string               true  "Ticket ID"
// @Param        body  body      updateTicketRequest  true  "Fields to change"
// @Success      200   {object}  ticketResponse
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Security     SessionCookie
// @Router       /v1/tickets/{id} [put]
func (h *TicketHandler) Update(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	var req updateTicketRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	t, err := h.service.Update(c.Request().Context(), ports.UpdateTicketInput{
		ID:          id,
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		Tags:        req.Tags,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toTicketResponse(t))
}

// ChangeStatus moves the ticket to another status.
//
// @Summary      Change ticket status
// @Tags         tickets
// @Accept       json
// @Produce      json
// @Param        id    path      string               true  "Ticket ID"
// @Param        body  body      changeStatusRequest  true  "Target status"
// @Success      200   {object}  ticketResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Security     SessionCookie
// @Router       /v1/tickets/{id}/status [patch]
func (h *TicketHandler) ChangeStatus(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	var req changeStatusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	t, err := h.service.ChangeStatus(c.Request().Context(), ports.ChangeStatusInput{ID: id, Status: req.Status})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toTicketResponse(t))
}

// Assign sets or clears the ticket assignee.
//
// @Summary      Assign ticket
// @Tags         tickets
// @Accept       json
// @Produce      json
// @Param        id    path      string         true  "Ticket ID"
// @Param        body  body      assignRequest  true  "Assignee (null clears)"
// @Success      200   {object}  ticketResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Security     SessionCookie
// @Router       /v1/tickets/{id}/assignee [patch]
func (h *TicketHandler) Assign(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	var req assignRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	input := ports.AssignTicketInput{ID: id}
	if req.Assignee != nil {
		assignee, err := uuid.Parse(*req.Assignee)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "assignee must be a valid uuid")
		}
		input.Assignee = &assignee
	}

	t, err := h.service.Assign(c.Request().Context(), input)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toTicketResponse(t))
}

// Delete removes the ticket and its comments.
//
// @Summary      Delete ticket
// @Tags         tickets
// @Param        id   path  string  true  "Ticket ID"
// @Success      204
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Security     SessionCookie
// @Router       /v1/tickets/{id} [delete]
func (h *TicketHandler) Delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// queryUser parses a user id query parameter. "me" resolves to the caller.
func queryUser(c echo.Context, name string, caller uuid.UUID) (*uuid.UUID, error) {
	raw := strings.TrimSpace(c.QueryParam(name))
	switch raw {
	case "":
		return nil, nil
	case "me":
		return &caller, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, name+" must be a valid uuid")
	}
	return &id, nil
}
