package logger

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const headerRequestID = "X-Request-Id"

// Middleware injects a request-scoped logger (keyed by request_id) and logs
// one summary line per request. Console clients poll GET /v1/session once a
// second, so health and session polls are logged at Debug to keep the Info
// stream readable.
func Middleware(l *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		rid := c.GetHeader(headerRequestID)
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Writer.Header().Set(headerRequestID, rid)

		rl := l.With("request_id", rid)
		c.Set("logger", rl)

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}

		attrs := []any{
			"method", c.Request.Method,
			"path", path,
			"status", c.Writer.Status(),
			"client_ip", c.ClientIP(),
			"duration_ms", time.Since(start).Milliseconds(),
		}

		switch {
		case len(c.Errors) > 0:
			attrs = append(attrs, "errors", c.Errors.String())
			rl.Error("request", attrs...)
		case isPollPath(path):
			rl.Debug("request", attrs...)
		default:
			rl.Info("request", attrs...)
		}
	}
}

func isPollPath(path string) bool {
	return path == "/healthz" || path == "/v1/session"
}

// FromGin pulls the request-scoped logger from the Gin context.
func FromGin(c *gin.Context) *slog.Logger {
	if v, ok := c.Get("logger"); ok {
		if l, ok := v.(*slog.Logger); ok && l != nil {
			return l
		}
	}
	return slog.Default()
}
