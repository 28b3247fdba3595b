package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"

	authHTTP "github.com/opspilot/platform/internal/auth/http"
	"github.com/opspilot/platform/internal/httputil"
)

// CustomLoggerMiddleware writes one structured log line per request. 5xx
// responses log at error, 4xx at warn and everything else at info. The
// authenticated subject is included when the request carried a valid token.
func CustomLoggerMiddleware(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		status := c.Writer.Status()
		attrs := []slog.Attr{
			slog.String("request_id", requestid.Get(c)),
			slog.String("method", c.Request.Method),
			slog.String("path", path),
			slog.Int("status", status),
			slog.Duration("latency", time.Since(start)),
			slog.String("client_ip", c.ClientIP()),
		}
		if query != "" {
			attrs = append(attrs, slog.String("query", query))
		}
		if principal, ok := authHTTP.GetPrincipal(c.Request.Context()); ok {
			attrs = append(attrs, slog.String("subject", principal.Subject))
		}
		if len(c.Errors) > 0 {
			attrs = append(attrs, slog.String("errors", c.Errors.ByType(gin.ErrorTypePrivate).String()))
		}

		level := slog.LevelInfo
		switch {
		case status >= http.StatusInternalServerError:
			level = slog.LevelError
		case status >= http.StatusBadRequest:
			level = slog.LevelWarn
		}
		logger.LogAttrs(c.Request.Context(), level, "http request", attrs...)
	}
}

// recoveryMiddleware turns a panic into a 500 with the standard error body.
func recoveryMiddleware(logger *slog.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logger.ErrorContext(c.Request.Context(), "panic recovered",
			slog.Any("panic", recovered),
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.String("request_id", requestid.Get(c)),
		)
		c.AbortWithStatusJSON(http.StatusInternalServerError, httputil.ErrorResponse{
			Error:   "internal_error",
			Message: "An internal error occurred",
		})
	})
}
