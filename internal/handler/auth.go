package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/siri-restaurant/internal/middleware"
	"github.com/iliyamo/siri-restaurant/internal/model"
	"github.com/iliyamo/siri-restaurant/internal/service"
)

// Accounts is the account logic behind the auth endpoints.  Implemented by
// *service.AuthService.
type Accounts interface {
	SignUp(ctx context.Context, in service.SignUpInput, meta service.ClientMeta) (*service.IssuedSession, error)
	SignIn(ctx context.Context, in service.SignInInput, meta service.ClientMeta) (*service.IssuedSession, error)
	SignOut(ctx context.Context, token string) error
	User(ctx context.Context, id uint64) (model.User, error)
}

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
	Accounts     Accounts
	CookieName   string
	SecureCookie bool
}

func NewAuthHandler(a Accounts, cookieName string, secure bool) *AuthHandler {
	if a == nil {
		panic("nil service passed to NewAuthHandler")
	}
	return &AuthHandler{Accounts: a, CookieName: cookieName, SecureCookie: secure}
}

type sessionResp struct {
	Token     string     `json:"token"`
	ExpiresAt time.Time  `json:"expiresAt"`
	User      model.User `json:"user"`
}

// SignUp handles POST /api/auth/sign-up/email.
func (h *AuthHandler) SignUp(c echo.Context) error {
	var in service.SignUpInput
	if err := decodeJSON(c, &in); err != nil {
		return writeError(c, err, "")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	s, err := h.Accounts.SignUp(ctx, in, clientMeta(c))
	if err != nil {
		return writeError(c, err, "")
	}
	h.setCookie(c, s.Token, s.ExpiresAt)
	return c.JSON(http.StatusCreated, sessionResp{Token: s.Token, ExpiresAt: s.ExpiresAt, User: s.User})
}

// SignIn handles POST /api/auth/sign-in/email.
func (h *AuthHandler) SignIn(c echo.Context) error {
	var in service.SignInInput
	if err := decodeJSON(c, &in); err != nil {
		return writeError(c, err, "")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	s, err := h.Accounts.SignIn(ctx, in, clientMeta(c))
	if err != nil {
		return writeError(c, err, "")
	}
	h.setCookie(c, s.Token, s.ExpiresAt)
	return c.JSON(http.StatusOK, sessionResp{Token: s.Token, ExpiresAt: s.ExpiresAt, User: s.User})
}

// SignOut handles POST /api/auth/sign-out behind the session gate.
func (h *AuthHandler) SignOut(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Accounts.SignOut(ctx, middleware.TokenFrom(c)); err != nil {
		return writeError(c, err, "")
	}
	h.setCookie(c, "", time.Unix(0, 0))
	return c.NoContent(http.StatusNoContent)
}

// GetSession handles GET /api/auth/get-session behind the session gate.
func (h *AuthHandler) GetSession(c echo.Context) error {
	sess, ok := middleware.SessionFrom(c)
	if !ok {
		return writeError(c, service.ErrUnauthenticated, "")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	u, err := h.Accounts.User(ctx, sess.UserID)
	if err != nil {
		return writeError(c, err, "User not found")
	}
	return c.JSON(http.StatusOK, echo.Map{"session": sess, "user": u})
}

func (h *AuthHandler) setCookie(c echo.Context, token string, exp time.Time) {
	if h.CookieName == "" {
		return
	}
	ck := &http.Cookie{
		Name:     h.CookieName,
		Value:    token,
		Path:     "/",
		Expires:  exp,
		HttpOnly: true,
		Secure:   h.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	}
	if token == "" {
		ck.MaxAge = -1
	}
	c.SetCookie(ck)
}

func clientMeta(c echo.Context) service.ClientMeta {
	return service.ClientMeta{IP: c.RealIP(), UserAgent: c.Request().UserAgent()}
}
