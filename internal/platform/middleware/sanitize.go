package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/ywu256/MAPD713-Project/internal/platform/apperr"
)

// maxHeaderValueSize is the maximum allowed size for any single header value.
const maxHeaderValueSize = 8192

// Sanitize rejects requests whose path, headers or query carry traversal
// sequences, null bytes or line breaks before they reach a handler.
func Sanitize(logger zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			path := req.URL.Path
			rawPath := req.URL.RawPath
			if rawPath == "" {
				rawPath = path
			}

			if containsPathTraversal(path) || containsPathTraversal(rawPath) {
				return reject(c, logger, "path traversal detected")
			}
			if containsNullByte(path) || containsNullByte(rawPath) {
				return reject(c, logger, "null byte in path")
			}

			for name, values := range req.Header {
				for _, v := range values {
					if len(v) > maxHeaderValueSize {
						return reject(c, logger, "header value too large: "+name)
					}
					if strings.ContainsAny(v, "\r\n") {
						return reject(c, logger, "line break in header: "+name)
					}
				}
			}

			for key, values := range req.URL.Query() {
				if containsNullByte(key) {
					return reject(c, logger, "null byte in query parameter")
				}
				for _, v := range values {
					if containsNullByte(v) {
						return reject(c, logger, "null byte in query parameter")
					}
				}
			}

			return next(c)
		}
	}
}

func reject(c echo.Context, logger zerolog.Logger, reason string) error {
	rid, _ := c.Get("request_id").(string)
	logger.Warn().
		Str("request_id", rid).
		Str("path", c.Request().URL.Path).
		Str("remote_ip", c.RealIP()).
		Str("reason", reason).
		Msg("request rejected")
	return apperr.Validation(reason, nil)
}

// containsPathTraversal checks for path traversal sequences in raw and
// percent-encoded forms.
func containsPathTraversal(s string) bool {
	if strings.Contains(s, "..") {
		return true
	}
	lower := strings.ToLower(s)
	return strings.Contains(lower, "%2e%2e") || strings.Contains(lower, "%252e")
}

func containsNullByte(s string) bool {
	return strings.ContainsRune(s, '\x00') || strings.Contains(strings.ToLower(s), "%00")
}
