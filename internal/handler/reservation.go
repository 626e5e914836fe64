package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/siri-restaurant/internal/model"
	"github.com/iliyamo/siri-restaurant/internal/service"
)

// Reservations is the workflow the handler drives.  Implemented by
// *service.ReservationService.
type Reservations interface {
	Submit(ctx context.Context, in service.ReservationInput) (*model.Reservation, error)
	UpdateStatus(ctx context.Context, id uint64, in service.StatusInput) (*model.Reservation, error)
	PendingCount(ctx context.Context) (int, error)
	List(ctx context.Context, status string) ([]model.Reservation, error)
	Get(ctx context.Context, id uint64) (*model.Reservation, error)
	Delete(ctx context.Context, id uint64) error
}

// ReservationHandler serves the public intake and the admin views.
type ReservationHandler struct {
	Svc Reservations
}

func NewReservationHandler(svc Reservations) *ReservationHandler {
	if svc == nil {
		panic("nil service passed to NewReservationHandler")
	}
	return &ReservationHandler{Svc: svc}
}

// Create handles POST /api/reservations.  The stored record is returned
// with 201 whether or not the restaurant notification went out.
func (h *ReservationHandler) Create(c echo.Context) error {
	var in service.ReservationInput
	if err := decodeJSON(c, &in); err != nil {
		return writeError(c, err, "")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	r, err := h.Svc.Submit(ctx, in)
	if err != nil {
		return writeError(c, err, "")
	}
	return c.JSON(http.StatusCreated, r)
}

// UpdateStatus handles PUT /api/reservations/:id and PUT
// /api/reservations?id=.
func (h *ReservationHandler) UpdateStatus(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return writeError(c, err, "")
	}
	var in service.StatusInput
	if err := decodeJSON(c, &in); err != nil {
		return writeError(c, err, "")
	}
	// the guest email is sent inline, so allow more than the store timeout
	r, err := h.Svc.UpdateStatus(c.Request().Context(), id, in)
	if err != nil {
		return writeError(c, err, "")
	}
	return c.JSON(http.StatusOK, r)
}

// PendingCount handles GET /api/reservations/pending-count.
func (h *ReservationHandler) PendingCount(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	n, err := h.Svc.PendingCount(ctx)
	if err != nil {
		return writeError(c, err, "")
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "no-store")
	return c.JSON(http.StatusOK, echo.Map{"count": n})
}

// List handles GET /api/reservations[?status=].  With ?id= it returns the
// single reservation instead.
func (h *ReservationHandler) List(c echo.Context) error {
	if c.QueryParam("id") != "" {
		return h.Get(c)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	list, err := h.Svc.List(ctx, c.QueryParam("status"))
	if err != nil {
		return writeError(c, err, "")
	}
	if list == nil {
		list = []model.Reservation{}
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "no-store")
	return c.JSON(http.StatusOK, list)
}

// Get handles GET /api/reservations/:id.
func (h *ReservationHandler) Get(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return writeError(c, err, "")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	r, err := h.Svc.Get(ctx, id)
	if err != nil {
		return writeError(c, err, "")
	}
	return c.JSON(http.StatusOK, r)
}

// Delete handles DELETE /api/reservations/:id.
func (h *ReservationHandler) Delete(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return writeError(c, err, "")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Svc.Delete(ctx, id); err != nil {
		return writeError(c, err, "")
	}
	return c.NoContent(http.StatusNoContent)
}
