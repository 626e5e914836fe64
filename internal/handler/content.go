package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/siri-restaurant/internal/model"
	"github.com/iliyamo/siri-restaurant/internal/repository"
	"github.com/iliyamo/siri-restaurant/internal/service"
)

const contentNotFound = "Content not found"

type contentReq struct {
	Section     *string   `json:"section"`
	Title       *string   `json:"title"`
	Description *string   `json:"description"`
	ImageURL    optString `json:"imageUrl"`
}

// ListContent handles GET /api/content.  With ?id= it returns one block.
func (h *CMSHandler) ListContent(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	if c.QueryParam("id") != "" {
		id, err := idParam(c)
		if err != nil {
			return writeError(c, err, "")
		}
		item, err := h.Contents.Get(ctx, id)
		if err != nil {
			return writeError(c, err, contentNotFound)
		}
		return c.JSON(http.StatusOK, item)
	}
	limit, offset, err := h.listParams(c)
	if err != nil {
		return writeError(c, err, "")
	}
	list, err := h.Contents.List(ctx, repository.ContentQuery{
		Section: strings.TrimSpace(c.QueryParam("section")),
		Search:  strings.TrimSpace(c.QueryParam("search")),
		Limit:   limit,
		Offset:  offset,
	})
	if err != nil {
		return writeError(c, err, "")
	}
	if list == nil {
		list = []model.Content{}
	}
	return c.JSON(http.StatusOK, list)
}

// CreateContent handles POST /api/content.
func (h *CMSHandler) CreateContent(c echo.Context) error {
	var req contentReq
	if err := decodeJSON(c, &req); err != nil {
		return writeError(c, err, "")
	}
	switch {
	case blank(req.Section):
		return writeError(c, service.NewValidationError("MISSING_SECTION", "Section is required"), "")
	case blank(req.Title):
		return writeError(c, service.NewValidationError("MISSING_TITLE", "Title is required"), "")
	case blank(req.Description):
		return writeError(c, service.NewValidationError("MISSING_DESCRIPTION", "Description is required"), "")
	}
	item := model.Content{
		Section:     strings.TrimSpace(*req.Section),
		Title:       strings.TrimSpace(*req.Title),
		Description: strings.TrimSpace(*req.Description),
	}
	if s := strings.TrimSpace(req.ImageURL.str()); s != "" {
		item.ImageURL = &s
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	created, err := h.Contents.Create(ctx, item)
	if err != nil {
		return writeError(c, err, "")
	}
	h.changed(c, "content", created.ID, "created")
	return c.JSON(http.StatusCreated, created)
}

// UpdateContent handles PUT /api/content?id=.
func (h *CMSHandler) UpdateContent(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return writeError(c, err, "")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	if _, err := h.Contents.Get(ctx, id); err != nil {
		return writeError(c, err, contentNotFound)
	}
	var req contentReq
	if err := decodeJSON(c, &req); err != nil {
		return writeError(c, err, "")
	}
	switch {
	case req.Section != nil && blank(req.Section):
		return writeError(c, service.NewValidationError("INVALID_SECTION", "Section cannot be empty"), "")
	case req.Title != nil && blank(req.Title):
		return writeError(c, service.NewValidationError("INVALID_TITLE", "Title cannot be empty"), "")
	case req.Description != nil && blank(req.Description):
		return writeError(c, service.NewValidationError("INVALID_DESCRIPTION", "Description cannot be empty"), "")
	}
	updated, err := h.Contents.Update(ctx, id, repository.ContentPatch{
		Section:     trimmedPtr(req.Section),
		Title:       trimmedPtr(req.Title),
		Description: trimmedPtr(req.Description),
		ImageURL:    req.ImageURL.ptr(),
	})
	if err != nil {
		return writeError(c, err, contentNotFound)
	}
	h.changed(c, "content", id, "updated")
	return c.JSON(http.StatusOK, updated)
}

// DeleteContent handles DELETE /api/content?id=.
func (h *CMSHandler) DeleteContent(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return writeError(c, err, "")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	item, err := h.Contents.Delete(ctx, id)
	if err != nil {
		return writeError(c, err, contentNotFound)
	}
	h.changed(c, "content", id, "deleted")
	return c.JSON(http.StatusOK, echo.Map{"message": "Content deleted successfully", "content": item})
}
