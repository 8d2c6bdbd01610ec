package errors

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"sakubijak/internal/log"
)

// HTTPErrorHandler renders every error returned by a handler or middleware as
// {"error": "..."}. Internal failures are logged with their cause and replaced
// by a generic message.
func HTTPErrorHandler(logger *slog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status, message := resolve(err)
		if status >= http.StatusInternalServerError {
			logger.Error("request failed",
				log.FieldMethod, c.Request().Method,
				log.FieldPath, c.Path(),
				log.FieldRequestID, c.Response().Header().Get(echo.HeaderXRequestID),
				log.FieldError, err,
			)
		}

		var writeErr error
		if c.Request().Method == http.MethodHead {
			writeErr = c.NoContent(status)
		} else {
			writeErr = c.JSON(status, ErrorResponse{Error: message})
		}
		if writeErr != nil {
			logger.Error("write error response", log.FieldError, writeErr)
		}
	}
}

func resolve(err error) (int, string) {
	var echoErr *echo.HTTPError
	if errors.As(err, &echoErr) {
		if echoErr.Code >= http.StatusInternalServerError {
			return echoErr.Code, "internal server error"
		}
		switch m := echoErr.Message.(type) {
		case string:
			return echoErr.Code, m
		case ErrorResponse:
			return echoErr.Code, m.Error
		case error:
			return echoErr.Code, m.Error()
		default:
			if text := http.StatusText(echoErr.Code); text != "" {
				return echoErr.Code, text
			}
			return echoErr.Code, fmt.Sprint(m)
		}
	}

	httpErr := MapErrorToHTTP(err)
	return httpErr.StatusCode, httpErr.Message
}
