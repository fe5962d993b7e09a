package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/ywu256/MAPD713-Project/internal/platform/apperr"
)

func sanitizeOKHandler(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

func newSanitizeEcho() *echo.Echo {
	e := echo.New()
	logger := zerolog.New(os.Stderr)
	e.HTTPErrorHandler = apperr.HTTPErrorHandler(logger)
	e.Use(Sanitize(logger))
	e.GET("/*", sanitizeOKHandler)
	return e
}

func assertRejected(t *testing.T, rec *httptest.ResponseRecorder, want string) {
	t.Helper()
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	msg, _ := body["error"].(string)
	if !strings.Contains(msg, want) {
		t.Errorf("expected error containing %q, got %q", want, msg)
	}
}

func TestSanitize_PathTraversal(t *testing.T) {
	tests := []string{
		"/../../etc/passwd",
		"/%2e%2e/%2e%2e/etc/passwd",
		"/%252e%252e/etc/passwd",
	}
	for _, target := range tests {
		t.Run(target, func(t *testing.T) {
			e := newSanitizeEcho()
			req := httptest.NewRequest(http.MethodGet, target, nil)
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)
			assertRejected(t, rec, "path traversal")
		})
	}
}

func TestSanitize_NullByteInPath(t *testing.T) {
	e := newSanitizeEcho()

	req := httptest.NewRequest(http.MethodGet, "/patients%00", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assertRejected(t, rec, "null byte")
}

func TestSanitize_NullByteInQuery(t *testing.T) {
	e := newSanitizeEcho()

	req := httptest.NewRequest(http.MethodGet, "/patients?name=a%00b", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assertRejected(t, rec, "null byte in query")
}

func TestSanitize_HeaderLineBreak(t *testing.T) {
	e := newSanitizeEcho()

	req := httptest.NewRequest(http.MethodGet, "/patients", nil)
	req.Header.Set("X-Custom", "value\r\nX-Injected: yes")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assertRejected(t, rec, "line break in header")
}

func TestSanitize_OversizedHeader(t *testing.T) {
	e := newSanitizeEcho()

	req := httptest.NewRequest(http.MethodGet, "/patients", nil)
	req.Header.Set("X-Large", strings.Repeat("a", maxHeaderValueSize+1))
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assertRejected(t, rec, "header value too large")
}

func TestSanitize_CleanRequestPasses(t *testing.T) {
	e := newSanitizeEcho()

	req := httptest.NewRequest(http.MethodGet, "/patients/7f1c2a56-3f51-4c59-9a8e-0f6f0c1b8f11?x=1", nil)
	req.Header.Set("User-Agent", "curl/8.0")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}
