package user

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

func newTestHandler(t *testing.T) (*Handler, *echo.Echo, *User) {
	t.Helper()
	svc, _ := newTestService()
	u := provision(t, svc, "nurse@clinic.test", "s3cret-pass", "nurse")
	h := NewHandler(svc)
	e := echo.New()
	e.HTTPErrorHandler = apperr.HTTPErrorHandler(zerolog.New(os.Stderr))
	h.RegisterRoutes(e.Group(""))
	return h, e, u
}

func postLogin(e *echo.Echo, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestHandler_Login(t *testing.T) {
	h, e, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"email":"nurse@clinic.test","password":"s3cret-pass"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Login(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}

	var resp struct {
		Message string            `json:"message"`
		User    map[string]string `json:"user"`
	}
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.Message != "login successful" {
		t.Errorf("unexpected message %q", resp.Message)
	}
	if resp.User["email"] != "nurse@clinic.test" || resp.User["role"] != "nurse" {
		t.Errorf("unexpected user %v", resp.User)
	}
	if len(resp.User) != 2 {
		t.Errorf("expected only email and role, got %v", resp.User)
	}
}

func TestHandler_Login_NeverEchoesSecrets(t *testing.T) {
	_, e, u := newTestHandler(t)

	rec := postLogin(e, `{"email":"nurse@clinic.test","password":"s3cret-pass"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	if strings.Contains(body, "s3cret-pass") {
		t.Error("response contains the password")
	}
	if strings.Contains(body, u.PasswordHash) || strings.Contains(body, "password") {
		t.Errorf("response leaks the password hash: %s", body)
	}
}

func TestHandler_Login_Failures(t *testing.T) {
	_, e, _ := newTestHandler(t)

	tests := []struct {
		name string
		body string
		want string
	}{
		{"unknown email", `{"email":"ghost@clinic.test","password":"s3cret-pass"}`, ErrInvalidEmail},
		{"wrong password", `{"email":"nurse@clinic.test","password":"nope"}`, ErrInvalidPassword},
		{"missing fields", `{}`, "validation failed"},
		{"malformed", `{"email":`, "request body must be JSON with email and password"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postLogin(e, tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d", rec.Code)
			}
			var errBody map[string]interface{}
			json.Unmarshal(rec.Body.Bytes(), &errBody)
			if errBody["error"] != tt.want {
				t.Errorf("expected %q, got %v", tt.want, errBody["error"])
			}
		})
	}
}
