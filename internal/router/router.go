package router // package router defines how HTTP routes are registered for the API

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/siri-restaurant/internal/handler"
	"github.com/iliyamo/siri-restaurant/internal/middleware"
)

// Gate codes.  The reservation admin and account endpoints answer with
// UNAUTHORIZED, the CMS editors with INVALID_TOKEN.
const (
	CodeUnauthorized = "UNAUTHORIZED"
	CodeInvalidToken = "INVALID_TOKEN"
)

// Options carries the middleware shared by several route groups.  Nil
// middlewares are skipped.
type Options struct {
	Auth       middleware.Authenticator
	CookieName string
	RateLimit  echo.MiddlewareFunc // public intake and sign-in
	Cache      echo.MiddlewareFunc // public CMS reads
	Logger     *slog.Logger
}

func (o Options) gate(code string) echo.MiddlewareFunc {
	return middleware.RequireSession(o.Auth, o.CookieName, code, o.Logger)
}

func use(mws ...echo.MiddlewareFunc) []echo.MiddlewareFunc {
	out := mws[:0]
	for _, m := range mws {
		if m != nil {
			out = append(out, m)
		}
	}
	return out
}

// RegisterRoutes registers the operational endpoints: liveness, readiness
// and the Prometheus scrape endpoint.
func RegisterRoutes(e *echo.Echo, db handler.Pinger, metrics http.Handler) {
	e.GET("/healthz", handler.Health)
	if db != nil {
		e.GET("/readyz", handler.Ready(db))
	}
	if metrics != nil {
		e.GET("/metrics", echo.WrapHandler(metrics))
	}
}

// RegisterAuth registers the admin account endpoints under /api/auth.
// Sign-up and sign-in are public; sign-out and get-session need a live
// session.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, o Options) {
	g := e.Group("/api/auth")
	g.POST("/sign-up/email", a.SignUp, use(o.RateLimit)...)
	g.POST("/sign-in/email", a.SignIn, use(o.RateLimit)...)

	gate := o.gate(CodeUnauthorized)
	g.POST("/sign-out", a.SignOut, gate)
	g.GET("/get-session", a.GetSession, gate)
}

// RegisterReservations registers the public intake and the admin
// reservation endpoints.  Admin reads are never cached.
func RegisterReservations(e *echo.Echo, r *handler.ReservationHandler, o Options) {
	// guests submit the booking form without an account
	e.POST("/api/reservations", r.Create, use(o.RateLimit)...)

	gate := o.gate(CodeUnauthorized)
	e.GET("/api/reservations", r.List, gate)
	e.GET("/api/reservations/pending-count", r.PendingCount, gate)
	e.GET("/api/reservations/:id", r.Get, gate)
	// status updates accept the id as path segment or ?id=
	e.PUT("/api/reservations", r.UpdateStatus, gate)
	e.PUT("/api/reservations/:id", r.UpdateStatus, gate)
	e.PATCH("/api/reservations/:id", r.UpdateStatus, gate)
	e.DELETE("/api/reservations/:id", r.Delete, gate)
}

// RegisterCMS registers the menu, content block and page-content editors.
// Reads are public and go through the response cache; writes take the id
// from ?id= and need a live session.
func RegisterCMS(e *echo.Echo, h *handler.CMSHandler, o Options) {
	gate := o.gate(CodeInvalidToken)

	e.GET("/api/dishes", h.ListDishes, use(o.Cache)...)
	e.POST("/api/dishes", h.CreateDish, gate)
	e.PUT("/api/dishes", h.UpdateDish, gate)
	e.DELETE("/api/dishes", h.DeleteDish, gate)

	e.GET("/api/content", h.ListContent, use(o.Cache)...)
	e.POST("/api/content", h.CreateContent, gate)
	e.PUT("/api/content", h.UpdateContent, gate)
	e.DELETE("/api/content", h.DeleteContent, gate)

	e.GET("/api/page-contents", h.ListPageContents, use(o.Cache)...)
	e.POST("/api/page-contents", h.CreatePageContent, gate)
	e.PUT("/api/page-contents", h.UpdatePageContent, gate)
	e.DELETE("/api/page-contents", h.DeletePageContent, gate)
}
