package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ghadirb/PersianAINavigation/internal/config"
	"github.com/ghadirb/PersianAINavigation/internal/history"
)

func newTestServer() *Server {
	return NewServer(config.Config{JWTSecret: "secret", ServerPort: ":0", MaxHistory: 10}, nil, nil)
}

func TestHealthRoute(t *testing.T) {
	s := newTestServer()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	resp, err := s.App.Test(req)
	if err != nil {
		t.Fatalf("test request: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 status")
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	s := newTestServer()

	for _, path := range []string{"/trips/start", "/predict/"} {
		req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader([]byte("{}")))
		req.Header.Set("Content-Type", "application/json")
		resp, err := s.App.Test(req)
		if err != nil {
			t.Fatalf("test request %s: %v", path, err)
		}
		if resp.StatusCode != http.StatusUnauthorized {
			t.Fatalf("%s without token: got %d want 401", path, resp.StatusCode)
		}
	}
}

func TestCurrentTripOpenRoute(t *testing.T) {
	s := newTestServer()

	req := httptest.NewRequest(http.MethodGet, "/trips/current", nil)
	resp, err := s.App.Test(req)
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("current trip: %v %d", err, resp.StatusCode)
	}
}

func TestHistoryExportOpenRoute(t *testing.T) {
	s := newTestServer()
	s.History.Add(history.CompletedTrip{ID: "t1", TimestampMs: 1})

	req := httptest.NewRequest(http.MethodGet, "/history/export", nil)
	resp, err := s.App.Test(req)
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("history export: %v %d", err, resp.StatusCode)
	}
	var export struct {
		Count int                     `json:"count"`
		Trips []history.CompletedTrip `json:"trips"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&export); err != nil {
		t.Fatalf("decode export: %v", err)
	}
	if export.Count != 1 || len(export.Trips) != 1 || export.Trips[0].ID != "t1" {
		t.Fatalf("unexpected export: %+v", export)
	}
}

func TestHazardRoutesAbsentWithoutDatabase(t *testing.T) {
	s := newTestServer()

	req := httptest.NewRequest(http.MethodGet, "/hazards/near?lat=35&lon=51", nil)
	resp, err := s.App.Test(req)
	if err != nil {
		t.Fatalf("test request: %v", err)
	}
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("hazard routes need a database, got %d", resp.StatusCode)
	}
}
