package middleware

// identity.go holds the context accessors shared by the session gate, the
// rate limiter and the request logger.

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/siri-restaurant/internal/model"
)

const (
	sessionKey = "session"
	tokenKey   = "session_token"
)

// SessionFrom returns the session stored by RequireSession.
func SessionFrom(c echo.Context) (model.Session, bool) {
	s, ok := c.Get(sessionKey).(model.Session)
	return s, ok
}

// TokenFrom returns the raw token accepted by RequireSession.
func TokenFrom(c echo.Context) string {
	t, _ := c.Get(tokenKey).(string)
	return t
}

// subject identifies the caller for rate limiting and logs: the session's
// user id, or "anon" before authentication.
func subject(c echo.Context) string {
	if s, ok := SessionFrom(c); ok && s.UserID != 0 {
		return strconv.FormatUint(s.UserID, 10)
	}
	return "anon"
}
