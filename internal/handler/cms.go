package handler

import (
	"context"
	"log/slog"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/siri-restaurant/internal/model"
	"github.com/iliyamo/siri-restaurant/internal/repository"
)

// DishStore is implemented by *repository.DishRepo.
type DishStore interface {
	Get(ctx context.Context, id uint64) (*model.Dish, error)
	List(ctx context.Context, q repository.DishQuery) ([]model.Dish, error)
	Create(ctx context.Context, d model.Dish) (*model.Dish, error)
	Update(ctx context.Context, id uint64, p repository.DishPatch) (*model.Dish, error)
	Delete(ctx context.Context, id uint64) (*model.Dish, error)
}

// ContentStore is implemented by *repository.ContentRepo.
type ContentStore interface {
	Get(ctx context.Context, id uint64) (*model.Content, error)
	List(ctx context.Context, q repository.ContentQuery) ([]model.Content, error)
	Create(ctx context.Context, c model.Content) (*model.Content, error)
	Update(ctx context.Context, id uint64, p repository.ContentPatch) (*model.Content, error)
	Delete(ctx context.Context, id uint64) (*model.Content, error)
}

// PageContentStore is implemented by *repository.PageContentRepo.
type PageContentStore interface {
	Get(ctx context.Context, id uint64) (*model.PageContent, error)
	List(ctx context.Context, q repository.PageContentQuery) ([]model.PageContent, error)
	Create(ctx context.Context, pc model.PageContent) (*model.PageContent, error)
	Update(ctx context.Context, id uint64, p repository.PageContentPatch) (*model.PageContent, error)
	Delete(ctx context.Context, id uint64) (*model.PageContent, error)
}

// CMSHandler serves the menu, content block and page-content editors.
// Reads are public; writes sit behind the session gate.  After every
// successful write Invalidate (when set) drops the cached public reads.
type CMSHandler struct {
	Dishes     DishStore
	Contents   ContentStore
	Pages      PageContentStore
	Invalidate func(ctx context.Context) error
	Log        *slog.Logger
}

func NewCMSHandler(dishes DishStore, contents ContentStore, pages PageContentStore) *CMSHandler {
	if dishes == nil || contents == nil || pages == nil {
		panic("nil store passed to NewCMSHandler")
	}
	return &CMSHandler{Dishes: dishes, Contents: contents, Pages: pages, Log: slog.Default()}
}

func (h *CMSHandler) changed(c echo.Context, what string, id uint64, op string) {
	ctx := c.Request().Context()
	h.Log.InfoContext(ctx, "cms."+what+"."+op, "id", id)
	if h.Invalidate == nil {
		return
	}
	if err := h.Invalidate(context.WithoutCancel(ctx)); err != nil {
		h.Log.WarnContext(ctx, "cms.cache.invalidate_failed", "err", err)
	}
}

func (h *CMSHandler) listParams(c echo.Context) (limit, offset int, err error) {
	if limit, err = queryInt(c, "limit"); err != nil {
		return 0, 0, err
	}
	offset, err = queryInt(c, "offset")
	return limit, offset, err
}

func oneOf(v string, allowed []string) bool {
	for _, a := range allowed {
		if v == a {
			return true
		}
	}
	return false
}

func trimmedPtr(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	return &t
}
