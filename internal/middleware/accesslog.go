package middleware

import (
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

var sensitiveKeys = map[string]struct{}{
	"password": {}, "pwd": {}, "token": {}, "authorization": {},
	"secret": {}, "refresh_token": {}, "access_token": {},
}

func maskQuery(kv map[string][]string) map[string][]string {
	out := make(map[string][]string, len(kv))
	for k, v := range kv {
		if _, ok := sensitiveKeys[strings.ToLower(k)]; ok {
			out[k] = []string{"****"}
			continue
		}
		out[k] = v
	}
	return out
}

// commitError renders err through echo's error handler so the status seen
// by outer middleware is the one the client gets.
func commitError(c echo.Context, err error) {
	if err != nil {
		c.Error(err)
	}
}

// AccessLog writes one line per request.  Server errors are logged at
// error level, client errors at warn.
func AccessLog(l *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			commitError(c, err)

			req := c.Request()
			res := c.Response()
			path := c.Path()
			if path == "" {
				path = req.URL.Path
			}
			fields := []zap.Field{
				zap.String("rid", RequestIDOf(c)),
				zap.String("method", req.Method),
				zap.String("path", path),
				zap.Int("status", res.Status),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", c.RealIP()),
				zap.String("ua", req.UserAgent()),
				zap.Any("query", maskQuery(req.URL.Query())),
				zap.Int64("size", res.Size),
			}
			if uid := UserID(c); uid != "" {
				fields = append(fields, zap.String("user_id", uid))
			}
			if err != nil {
				fields = append(fields, zap.Error(err))
			}

			switch {
			case res.Status >= 500:
				l.Error("HTTP", fields...)
			case res.Status >= 400:
				l.Warn("HTTP", fields...)
			default:
				l.Info("HTTP", fields...)
			}
			return nil
		}
	}
}
