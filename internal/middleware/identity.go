package middleware

import "github.com/labstack/echo/v4"

// UserID returns the authenticated user's id, or "" for anonymous requests.
func UserID(c echo.Context) string { return ctxString(c, CtxUserID) }

// Email returns the authenticated user's email, or "".
func Email(c echo.Context) string { return ctxString(c, CtxEmail) }

// currentUserID is UserID with "anon" for anonymous callers, for use in
// rate limit keys.
func currentUserID(c echo.Context) string {
	if id := UserID(c); id != "" {
		return id
	}
	return "anon"
}

func ctxString(c echo.Context, key string) string {
	s, _ := c.Get(key).(string)
	return s
}
