package db

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

type fakePinger struct{ err error }

func (p fakePinger) Ping(context.Context) error { return p.err }

func TestHealthHandler_AllHealthy(t *testing.T) {
	pingers := map[string]Pinger{
		PatientsCollection: fakePinger{},
		UsersCollection:    fakePinger{},
		ClinicalCollection: fakePinger{},
	}
	h := healthHandler(pingers, func(string) *PoolStats { return &PoolStats{MaxConns: 10} })

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/health/db", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}

	var body struct {
		Status string                `json:"status"`
		Stores map[string]*PoolStats `json:"stores"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Status != "healthy" {
		t.Errorf("expected healthy, got %s", body.Status)
	}
	if len(body.Stores) != 3 {
		t.Errorf("expected 3 stores, got %d", len(body.Stores))
	}
	if !body.Stores[UsersCollection].Healthy {
		t.Error("expected users store to be healthy")
	}
}

func TestHealthHandler_OneStoreDown(t *testing.T) {
	pingers := map[string]Pinger{
		PatientsCollection: fakePinger{},
		ClinicalCollection: fakePinger{err: errors.New("connection refused")},
	}
	h := healthHandler(pingers, func(string) *PoolStats { return nil })

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/health/db", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", rec.Code)
	}

	var body struct {
		Status string                `json:"status"`
		Stores map[string]*PoolStats `json:"stores"`
	}
	json.Unmarshal(rec.Body.Bytes(), &body)
	if body.Status != "unhealthy" {
		t.Errorf("expected unhealthy, got %s", body.Status)
	}
	if body.Stores[ClinicalCollection].Error != "connection refused" {
		t.Errorf("expected ping error to be reported, got %q", body.Stores[ClinicalCollection].Error)
	}
	if !body.Stores[PatientsCollection].Healthy {
		t.Error("expected patients store to stay healthy")
	}
}
