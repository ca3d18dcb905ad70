package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHealthHandler_Readiness(t *testing.T) {
	e := newTestEcho()
	handler := NewHealthHandler(
		DependencyCheck{Name: "mongo", Ping: func(context.Context) error { return nil }},
		DependencyCheck{Name: "redis", Ping: func(context.Context) error { return errors.New("connection refused") }},
	)

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/health/ready", nil), rec)
	if err := handler.Readiness(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}

	var resp readinessResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Status != "degraded" || resp.Dependencies["mongo"].Status != "ok" || resp.Dependencies["redis"].Status != "unhealthy" {
		t.Fatalf("unexpected readiness payload: %+v", resp)
	}
}

func TestHealthHandler_Liveness(t *testing.T) {
	e := newTestEcho()
	rec := httptest.NewRecorder()
	if err := NewHealthHandler().Liveness(e.NewContext(httptest.NewRequest(http.MethodGet, "/health", nil), rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}
