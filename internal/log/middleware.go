package log

import (
	"context"
	"log/slog"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// RequestLogger returns an echo middleware that writes one structured record
// per request through logger.
func RequestLogger(logger *Logger) echo.MiddlewareFunc {
	httpLogger := logger.WithComponent(ComponentHTTP)
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:    true,
		LogURI:       true,
		LogMethod:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogRequestID: true,
		LogUserAgent: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []slog.Attr{
				slog.String(FieldRequestID, v.RequestID),
				slog.String(FieldMethod, v.Method),
				slog.String(FieldPath, v.URI),
				slog.Int(FieldStatusCode, v.Status),
				slog.Int64(FieldDuration, v.Latency.Milliseconds()),
				slog.String(FieldClientIP, v.RemoteIP),
				slog.String(FieldUserAgent, v.UserAgent),
			}
			level := slog.LevelInfo
			if v.Error != nil {
				attrs = append(attrs, slog.String(FieldError, v.Error.Error()))
			}
			if v.Status >= 500 {
				level = slog.LevelError
			}
			httpLogger.LogAttrs(context.Background(), level, "request", attrs...)
			return nil
		},
	})
}
