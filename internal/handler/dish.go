package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/siri-restaurant/internal/model"
	"github.com/iliyamo/siri-restaurant/internal/repository"
	"github.com/iliyamo/siri-restaurant/internal/service"
)

const dishNotFound = "Dish not found"

type dishReq struct {
	Name        *string   `json:"name"`
	Description *string   `json:"description"`
	Category    *string   `json:"category"`
	Price       *string   `json:"price"`
	ImageURL    optString `json:"imageUrl"`
	IsAvailable *bool     `json:"isAvailable"`
	Style       optString `json:"style"`
}

func blank(s *string) bool { return s == nil || strings.TrimSpace(*s) == "" }

func checkStyle(o optString) error {
	if s := strings.TrimSpace(o.str()); s != "" && !model.ValidDishStyle(s) {
		return service.NewValidationError("INVALID_STYLE", `Style must be either "North Indian" or "South Indian"`)
	}
	return nil
}

// ListDishes handles GET /api/dishes.  With ?id= it returns one dish.
func (h *CMSHandler) ListDishes(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	if c.QueryParam("id") != "" {
		id, err := idParam(c)
		if err != nil {
			return writeError(c, err, "")
		}
		d, err := h.Dishes.Get(ctx, id)
		if err != nil {
			return writeError(c, err, dishNotFound)
		}
		return c.JSON(http.StatusOK, d)
	}

	limit, offset, err := h.listParams(c)
	if err != nil {
		return writeError(c, err, "")
	}
	q := repository.DishQuery{
		Search:   strings.TrimSpace(c.QueryParam("search")),
		Category: strings.TrimSpace(c.QueryParam("category")),
		Style:    strings.TrimSpace(c.QueryParam("style")),
		Limit:    limit,
		Offset:   offset,
	}
	switch c.QueryParam("available") {
	case "true":
		v := true
		q.Available = &v
	case "false":
		v := false
		q.Available = &v
	}
	list, err := h.Dishes.List(ctx, q)
	if err != nil {
		return writeError(c, err, "")
	}
	if list == nil {
		list = []model.Dish{}
	}
	return c.JSON(http.StatusOK, list)
}

// CreateDish handles POST /api/dishes.
func (h *CMSHandler) CreateDish(c echo.Context) error {
	var req dishReq
	if err := decodeJSON(c, &req); err != nil {
		return writeError(c, err, "")
	}
	switch {
	case blank(req.Name):
		return writeError(c, service.NewValidationError("MISSING_NAME", "Name is required and cannot be empty"), "")
	case blank(req.Description):
		return writeError(c, service.NewValidationError("MISSING_DESCRIPTION", "Description is required and cannot be empty"), "")
	case blank(req.Category):
		return writeError(c, service.NewValidationError("MISSING_CATEGORY", "Category is required"), "")
	case blank(req.Price):
		return writeError(c, service.NewValidationError("MISSING_PRICE", "Price is required"), "")
	}
	if err := checkStyle(req.Style); err != nil {
		return writeError(c, err, "")
	}

	d := model.Dish{
		Name:        strings.TrimSpace(*req.Name),
		Description: strings.TrimSpace(*req.Description),
		Category:    strings.TrimSpace(*req.Category),
		Price:       strings.TrimSpace(*req.Price),
		IsAvailable: req.IsAvailable == nil || *req.IsAvailable,
	}
	if s := strings.TrimSpace(req.ImageURL.str()); s != "" {
		d.ImageURL = &s
	}
	if s := strings.TrimSpace(req.Style.str()); s != "" {
		d.Style = &s
	}

	ctx, cancel := reqCtx(c)
	defer cancel()
	created, err := h.Dishes.Create(ctx, d)
	if err != nil {
		return writeError(c, err, "")
	}
	h.changed(c, "dish", created.ID, "created")
	return c.JSON(http.StatusCreated, created)
}

// UpdateDish handles PUT /api/dishes?id=.  Absent fields are left as they
// are; imageUrl and style accept null to clear them.
func (h *CMSHandler) UpdateDish(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return writeError(c, err, "")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	if _, err := h.Dishes.Get(ctx, id); err != nil {
		return writeError(c, err, dishNotFound)
	}

	var req dishReq
	if err := decodeJSON(c, &req); err != nil {
		return writeError(c, err, "")
	}
	if req.Name != nil && blank(req.Name) {
		return writeError(c, service.NewValidationError("INVALID_NAME", "Name cannot be empty"), "")
	}
	if req.Description != nil && blank(req.Description) {
		return writeError(c, service.NewValidationError("INVALID_DESCRIPTION", "Description cannot be empty"), "")
	}
	if err := checkStyle(req.Style); err != nil {
		return writeError(c, err, "")
	}

	updated, err := h.Dishes.Update(ctx, id, repository.DishPatch{
		Name:        trimmedPtr(req.Name),
		Description: trimmedPtr(req.Description),
		Category:    trimmedPtr(req.Category),
		Price:       trimmedPtr(req.Price),
		ImageURL:    req.ImageURL.ptr(),
		IsAvailable: req.IsAvailable,
		Style:       req.Style.ptr(),
	})
	if err != nil {
		return writeError(c, err, dishNotFound)
	}
	h.changed(c, "dish", id, "updated")
	return c.JSON(http.StatusOK, updated)
}

// DeleteDish handles DELETE /api/dishes?id= and returns the removed dish.
func (h *CMSHandler) DeleteDish(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return writeError(c, err, "")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	d, err := h.Dishes.Delete(ctx, id)
	if err != nil {
		return writeError(c, err, dishNotFound)
	}
	h.changed(c, "dish", id, "deleted")
	return c.JSON(http.StatusOK, echo.Map{"message": "Dish deleted successfully", "dish": d})
}
