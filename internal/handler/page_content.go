package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/siri-restaurant/internal/model"
	"github.com/iliyamo/siri-restaurant/internal/repository"
	"github.com/iliyamo/siri-restaurant/internal/service"
)

const pageContentNotFound = "Page content not found"

type pageContentReq struct {
	Page         *string   `json:"page"`
	Section      *string   `json:"section"`
	ContentType  *string   `json:"contentType"`
	FieldName    *string   `json:"fieldName"`
	FieldValue   optString `json:"fieldValue"`
	DisplayOrder flexInt   `json:"displayOrder"`
}

var (
	errInvalidPage = service.NewValidationError("INVALID_PAGE",
		"Page must be one of: "+strings.Join(model.Pages, ", "))
	errInvalidContentType = service.NewValidationError("INVALID_CONTENT_TYPE",
		"Content type must be one of: "+strings.Join(model.ContentTypes, ", "))
	errInvalidDisplayOrder = service.NewValidationError("INVALID_DISPLAY_ORDER",
		"Display order must be a valid integer")
)

// ListPageContents handles GET /api/page-contents.
func (h *CMSHandler) ListPageContents(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	if c.QueryParam("id") != "" {
		id, err := idParam(c)
		if err != nil {
			return writeError(c, err, "")
		}
		pc, err := h.Pages.Get(ctx, id)
		if err != nil {
			return writeError(c, err, pageContentNotFound)
		}
		return c.JSON(http.StatusOK, pc)
	}
	limit, offset, err := h.listParams(c)
	if err != nil {
		return writeError(c, err, "")
	}
	list, err := h.Pages.List(ctx, repository.PageContentQuery{
		Page:    strings.TrimSpace(c.QueryParam("page")),
		Section: strings.TrimSpace(c.QueryParam("section")),
		Limit:   limit,
		Offset:  offset,
	})
	if err != nil {
		return writeError(c, err, "")
	}
	if list == nil {
		list = []model.PageContent{}
	}
	return c.JSON(http.StatusOK, list)
}

// CreatePageContent handles POST /api/page-contents.
func (h *CMSHandler) CreatePageContent(c echo.Context) error {
	var req pageContentReq
	if err := decodeJSON(c, &req); err != nil {
		return writeError(c, err, "")
	}
	if blank(req.Page) || blank(req.Section) || blank(req.ContentType) || blank(req.FieldName) {
		return writeError(c, service.NewValidationError(service.CodeMissingRequiredFields,
			"Required fields: page, section, contentType, fieldName"), "")
	}
	pc := model.PageContent{
		Page:        strings.TrimSpace(*req.Page),
		Section:     strings.TrimSpace(*req.Section),
		ContentType: strings.TrimSpace(*req.ContentType),
		FieldName:   strings.TrimSpace(*req.FieldName),
	}
	switch {
	case !oneOf(pc.Page, model.Pages):
		return writeError(c, errInvalidPage, "")
	case !oneOf(pc.ContentType, model.ContentTypes):
		return writeError(c, errInvalidContentType, "")
	case req.DisplayOrder.Bad:
		return writeError(c, errInvalidDisplayOrder, "")
	}
	pc.DisplayOrder = req.DisplayOrder.Value
	if s := strings.TrimSpace(req.FieldValue.str()); s != "" {
		pc.FieldValue = &s
	}

	ctx, cancel := reqCtx(c)
	defer cancel()
	created, err := h.Pages.Create(ctx, pc)
	if err != nil {
		return writeError(c, err, "")
	}
	h.changed(c, "page_content", created.ID, "created")
	return c.JSON(http.StatusCreated, created)
}

// UpdatePageContent handles PUT /api/page-contents?id=.
func (h *CMSHandler) UpdatePageContent(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return writeError(c, err, "")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	if _, err := h.Pages.Get(ctx, id); err != nil {
		return writeError(c, err, pageContentNotFound)
	}
	var req pageContentReq
	if err := decodeJSON(c, &req); err != nil {
		return writeError(c, err, "")
	}

	p := repository.PageContentPatch{
		Page:        trimmedPtr(req.Page),
		Section:     trimmedPtr(req.Section),
		ContentType: trimmedPtr(req.ContentType),
		FieldName:   trimmedPtr(req.FieldName),
		FieldValue:  req.FieldValue.ptr(),
	}
	switch {
	case p.Page != nil && !oneOf(*p.Page, model.Pages):
		return writeError(c, errInvalidPage, "")
	case p.Section != nil && *p.Section == "":
		return writeError(c, service.NewValidationError(service.CodeMissingRequiredFields, "Section must be a non-empty string"), "")
	case p.ContentType != nil && !oneOf(*p.ContentType, model.ContentTypes):
		return writeError(c, errInvalidContentType, "")
	case p.FieldName != nil && *p.FieldName == "":
		return writeError(c, service.NewValidationError(service.CodeMissingRequiredFields, "Field name must be a non-empty string"), "")
	case req.DisplayOrder.Bad:
		return writeError(c, errInvalidDisplayOrder, "")
	}
	if req.DisplayOrder.Set {
		n := req.DisplayOrder.Value
		p.DisplayOrder = &n
	}

	updated, err := h.Pages.Update(ctx, id, p)
	if err != nil {
		return writeError(c, err, pageContentNotFound)
	}
	h.changed(c, "page_content", id, "updated")
	return c.JSON(http.StatusOK, updated)
}

// DeletePageContent handles DELETE /api/page-contents?id=.
func (h *CMSHandler) DeletePageContent(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return writeError(c, err, "")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	pc, err := h.Pages.Delete(ctx, id)
	if err != nil {
		return writeError(c, err, pageContentNotFound)
	}
	h.changed(c, "page_content", id, "deleted")
	return c.JSON(http.StatusOK, echo.Map{"message": "Page content deleted successfully", "pageContent": pc})
}
