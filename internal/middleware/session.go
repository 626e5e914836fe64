package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/siri-restaurant/internal/model"
	"github.com/iliyamo/siri-restaurant/internal/service"
)

// Authenticator resolves a bearer token.  Implemented by
// *service.AuthService.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (model.Session, error)
}

// ExtractToken reads "Authorization: Bearer <token>" and falls back to the
// session cookie.
func ExtractToken(r *http.Request, cookieName string) string {
	if h := r.Header.Get(echo.HeaderAuthorization); h != "" {
		const prefix = "bearer "
		if len(h) > len(prefix) && strings.EqualFold(h[:len(prefix)], prefix) {
			return strings.TrimSpace(h[len(prefix):])
		}
	}
	if cookieName != "" {
		if ck, err := r.Cookie(cookieName); err == nil {
			return strings.TrimSpace(ck.Value)
		}
	}
	return ""
}

// RequireSession rejects requests without a live session.  Absent, unknown
// and expired credentials all get the same 401 body with the given code.
// The resolved session is stored on the context for SessionFrom.
func RequireSession(auth Authenticator, cookieName, code string, log *slog.Logger) echo.MiddlewareFunc {
	if log == nil {
		log = slog.Default()
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := ExtractToken(c.Request(), cookieName)
			sess, err := auth.Authenticate(c.Request().Context(), token)
			if err != nil {
				if errors.Is(err, service.ErrUnauthenticated) {
					return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Unauthorized", "code": code})
				}
				log.ErrorContext(c.Request().Context(), "auth.session.lookup_failed", "err", err)
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Internal server error: " + err.Error()})
			}
			c.Set(sessionKey, sess)
			c.Set(tokenKey, token)
			return next(c)
		}
	}
}
