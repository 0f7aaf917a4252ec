package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/uiticket/ticket-system/internal/core/domain"
)

func TestHTTPErrorHandler(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code int
		msg  string
	}{
		{"not found", fmt.Errorf("get ticket: %w", domain.ErrNotFound), http.StatusNotFound, "resource not found"},
		{"forbidden", domain.ErrForbidden, http.StatusForbidden, "access forbidden"},
		{"transition", fmt.Errorf("change status: %w", domain.ErrInvalidTransition), http.StatusUnprocessableEntity, ""},
		{"input", fmt.Errorf("create ticket: title is required: %w", domain.ErrInvalidInput), http.StatusBadRequest, ""},
		{"commit", &domain.CommitError{Err: errors.New("connection reset")}, http.StatusInternalServerError, "internal server error"},
		{"echo", echo.NewHTTPError(http.StatusUnauthorized, "authentication required"), http.StatusUnauthorized, "authentication required"},
	}

	e := echo.New()
	handler := NewHTTPErrorHandler(zerolog.Nop())
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
		handler(tc.err, c)

		if rec.Code != tc.code {
			t.Fatalf("%s: expected %d, got %d", tc.name, tc.code, rec.Code)
		}
		var body errorResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("%s: invalid json: %v", tc.name, err)
		}
		if tc.msg != "" && body.Error != tc.msg {
			t.Fatalf("%s: expected %q, got %q", tc.name, tc.msg, body.Error)
		}
		if body.Error == "" {
			t.Fatalf("%s: empty error message", tc.name)
		}
	}
}
