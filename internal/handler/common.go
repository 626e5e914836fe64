package handler // handler defines the HTTP handlers of the restaurant API

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/siri-restaurant/internal/repository"
	"github.com/iliyamo/siri-restaurant/internal/service"
)

// dbTimeout bounds the store calls of a single request.
const dbTimeout = 5 * time.Second

const (
	codeInvalidBody = "INVALID_BODY"
	codeInvalidID   = "INVALID_ID"
	codeNotFound    = "NOT_FOUND"
)

func reqCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), dbTimeout)
}

// decodeJSON decodes the request body into dst, rejecting unknown fields
// and trailing data.
func decodeJSON(c echo.Context, dst any) error {
	dec := json.NewDecoder(c.Request().Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return service.NewValidationError(codeInvalidBody, "Request body is required")
		}
		return service.NewValidationError(codeInvalidBody, "Invalid JSON body: "+err.Error())
	}
	if dec.More() {
		return service.NewValidationError(codeInvalidBody, "Invalid JSON body: unexpected data after object")
	}
	return nil
}

// idParam reads a positive id from the :id path segment or, failing that,
// the ?id= query parameter.
func idParam(c echo.Context) (uint64, error) {
	raw := c.Param("id")
	if raw == "" {
		raw = c.QueryParam("id")
	}
	id, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
	if err != nil || id == 0 {
		return 0, service.NewValidationError(codeInvalidID, "Valid ID is required")
	}
	return id, nil
}

// queryInt parses an optional integer query parameter.
func queryInt(c echo.Context, name string) (int, error) {
	raw := strings.TrimSpace(c.QueryParam(name))
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, service.NewValidationError("INVALID_"+strings.ToUpper(name), name+" must be a non-negative integer")
	}
	return n, nil
}

// writeError maps err onto the JSON error body and status used by every
// endpoint.  notFound is the message for sql.ErrNoRows.
func writeError(c echo.Context, err error, notFound string) error {
	var ve *service.ValidationError
	switch {
	case errors.As(err, &ve):
		body := echo.Map{"error": ve.Message, "code": ve.Code}
		if len(ve.Fields) > 0 {
			body["fields"] = ve.Fields
		}
		return c.JSON(http.StatusBadRequest, body)
	case errors.Is(err, service.ErrReservationNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Reservation not found", "code": codeNotFound})
	case errors.Is(err, sql.ErrNoRows):
		return c.JSON(http.StatusNotFound, echo.Map{"error": notFound, "code": codeNotFound})
	case errors.Is(err, service.ErrUnauthenticated):
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Unauthorized", "code": "UNAUTHORIZED"})
	case errors.Is(err, service.ErrInvalidCredentials):
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Invalid email or password", "code": "INVALID_CREDENTIALS"})
	case errors.Is(err, service.ErrSignupDisabled):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "Sign-up is disabled", "code": "SIGNUP_DISABLED"})
	case errors.Is(err, service.ErrEmailExists), errors.Is(err, repository.ErrEmailExists):
		return c.JSON(http.StatusConflict, echo.Map{"error": "Email already registered", "code": "EMAIL_EXISTS"})
	case errors.Is(err, repository.ErrConflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": "Conflicting write, please retry", "code": "CONFLICT"})
	case errors.Is(err, context.DeadlineExceeded):
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "Request timed out", "code": "TIMEOUT"})
	}
	c.Logger().Errorf("handler: %s %s: %v", c.Request().Method, c.Path(), err)
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Internal server error: " + err.Error()})
}

// optString distinguishes an absent JSON field from an explicit null.
type optString struct {
	Set   bool
	Value *string
}

func (o *optString) UnmarshalJSON(b []byte) error {
	o.Set = true
	if string(b) == "null" {
		o.Value = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	o.Value = &s
	return nil
}

// str returns the value or "" for null.
func (o optString) str() string {
	if o.Value == nil {
		return ""
	}
	return *o.Value
}

// ptr returns nil when the field was absent, otherwise a pointer to the
// trimmed value ("" for null).
func (o optString) ptr() *string {
	if !o.Set {
		return nil
	}
	s := strings.TrimSpace(o.str())
	return &s
}

// flexInt accepts a JSON number or a numeric string.
type flexInt struct {
	Set   bool
	Value int
	Bad   bool
}

func (f *flexInt) UnmarshalJSON(b []byte) error {
	f.Set = true
	s := strings.TrimSpace(string(b))
	if s == "null" {
		f.Set = false
		return nil
	}
	if unq, err := strconv.Unquote(s); err == nil {
		s = strings.TrimSpace(unq)
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		f.Bad = true
		return nil
	}
	f.Value = n
	return nil
}
