package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/ywu256/MAPD713-Project/internal/platform/apperr"
)

// AuditEntry records who touched which patient data and how the request
// ended. There is no session, so the caller is identified by address only.
type AuditEntry struct {
	Collection string
	PatientID  string
	Action     string // read, create, login
	Method     string
	Path       string
	IPAddress  string
	UserAgent  string
	RequestID  string
	StatusCode int
	Timestamp  time.Time
}

// AuditRecorder persists audit entries. The middleware always logs; a
// recorder is optional.
type AuditRecorder interface {
	RecordAccess(entry AuditEntry) error
}

// AuditRecorderFunc is a function adapter for AuditRecorder.
type AuditRecorderFunc func(entry AuditEntry) error

func (f AuditRecorderFunc) RecordAccess(entry AuditEntry) error {
	return f(entry)
}

// Audit emits one "record_access" log line for every request that reaches the
// patients, clinical or login routes. Health checks and unknown paths are
// skipped.
func Audit(logger zerolog.Logger, recorders ...AuditRecorder) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			collection := auditedCollection(req.URL.Path)
			if collection == "" {
				return next(c)
			}

			err := next(c)

			status := c.Response().Status
			if err != nil {
				// The error handler has not written yet.
				status = apperr.StatusFor(apperr.KindOf(err))
				var he *echo.HTTPError
				if apperr.KindOf(err) == apperr.KindInternal && errors.As(err, &he) {
					status = he.Code
				}
			}

			entry := AuditEntry{
				Collection: collection,
				PatientID:  patientKey(c),
				Action:     auditAction(collection, req.Method),
				Method:     req.Method,
				Path:       req.URL.Path,
				IPAddress:  c.RealIP(),
				UserAgent:  req.UserAgent(),
				StatusCode: status,
				Timestamp:  time.Now().UTC(),
			}
			if rid, ok := c.Get("request_id").(string); ok {
				entry.RequestID = rid
			}

			for _, r := range recorders {
				if r == nil {
					continue
				}
				if recErr := r.RecordAccess(entry); recErr != nil {
					logger.Error().Err(recErr).
						Str("request_id", entry.RequestID).
						Msg("failed to record audit entry")
				}
			}

			logger.Info().
				Str("type", "audit").
				Str("request_id", entry.RequestID).
				Str("collection", entry.Collection).
				Str("patient_id", entry.PatientID).
				Str("action", entry.Action).
				Str("method", entry.Method).
				Str("path", entry.Path).
				Str("remote_ip", entry.IPAddress).
				Int("status", entry.StatusCode).
				Msg("record_access")

			return err
		}
	}
}

func auditedCollection(path string) string {
	switch {
	case path == "/patients" || strings.HasPrefix(path, "/patients/"):
		return "patients"
	case path == "/clinical" || strings.HasPrefix(path, "/clinical/"):
		return "clinical_records"
	case path == "/login":
		return "users"
	default:
		return ""
	}
}

func auditAction(collection, method string) string {
	if collection == "users" {
		return "login"
	}
	switch method {
	case http.MethodPost:
		return "create"
	default:
		return "read"
	}
}

// patientKey returns the patient key named in the route, if it parses.
func patientKey(c echo.Context) string {
	for _, name := range []string{"id", "patient_id"} {
		if v := c.Param(name); v != "" {
			if _, err := uuid.Parse(v); err == nil {
				return v
			}
		}
	}
	return ""
}
