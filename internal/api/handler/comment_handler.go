package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/uiticket/ticket-system/internal/core/ports"
)

type CommentHandler struct {
	service ports.TicketService
}

func NewCommentHandler(service ports.TicketService) *CommentHandler {
	return &CommentHandler{service: service}
}

// List returns the comments of a ticket, oldest first.
//
// @Summary      List comments
// @Tags         comments
// @Produce      json
// @Param        id   path      string  true  "Ticket ID"
// @Success      200  {object}  listCommentsResponse
// @Failure      404  {object}  errorResponse
// @Security     SessionCookie
// @Router       /v1/tickets/{id}/comments [get]
func (h *CommentHandler) List(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	comments, err := h.service.ListComments(c.Request().Context(), id)
	if err != nil {
		return err
	}
	items := make([]commentResponse, 0, len(comments))
	for _, cm := range comments {
		items = append(items, toCommentResponse(cm))
	}
	return c.JSON(http.StatusOK, listCommentsResponse{Items: items, Count: len(items)})
}

// Add posts a comment on a ticket as the caller.
//
// @Summary      Add comment
// @Tags         comments
// @Accept       json
// @Produce      json
// @Param        id    path      string             true  "Ticket ID"
// @Param        body  body      addCommentRequest  true  "Comment"
// @Success      201   {object}  commentResponse
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Security     SessionCookie
// @Router       /v1/tickets/{id}/comments [post]
func (h *CommentHandler) Add(c echo.Context) error {
	_, userID, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	id, err := pathID(c)
	if err != nil {
		return err
	}

	var req addCommentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	cm, err := h.service.AddComment(c.Request().Context(), ports.AddCommentInput{
		TicketID: id,
		AuthorID: userID,
		Body:     req.Body,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toCommentResponse(cm))
}
