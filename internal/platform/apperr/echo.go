package apperr

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// HTTPErrorHandler is installed as echo's error handler so every handler
// error goes through Render. Echo's own HTTP errors (unknown route, method
// not allowed, body too large) keep their status codes.
func HTTPErrorHandler(logger zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var status int
		var body Response

		var appErr *Error
		var he *echo.HTTPError
		if !errors.As(err, &appErr) && errors.As(err, &he) {
			status = he.Code
			body = Response{Error: fmt.Sprintf("%v", he.Message)}
			if status >= http.StatusInternalServerError {
				body.Error = "internal server error"
			}
		} else {
			status, body = Render(err)
		}

		if status >= http.StatusInternalServerError {
			rid, _ := c.Get("request_id").(string)
			logger.Error().
				Err(err).
				Str("request_id", rid).
				Str("method", c.Request().Method).
				Str("path", c.Request().URL.Path).
				Msg("request failed")
		}

		var writeErr error
		if c.Request().Method == http.MethodHead {
			writeErr = c.NoContent(status)
		} else {
			writeErr = c.JSON(status, body)
		}
		if writeErr != nil {
			logger.Error().Err(writeErr).Msg("write error response")
		}
	}
}

// BindError converts a failed c.Bind into a validation error carrying
// message. An oversized body keeps its 413.
func BindError(err error, message string) error {
	var he *echo.HTTPError
	if errors.As(err, &he) && he.Code == http.StatusRequestEntityTooLarge {
		return he
	}
	return Validation(message, nil)
}
