package history

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
)

func passMiddleware(c *fiber.Ctx) error { return c.Next() }

func TestHistoryHandlersListImportQuery(t *testing.T) {
	store := NewStore(0)
	store.Add(tripAt("t1", 100))

	app := fiber.New()
	RegisterRoutes(app.Group("/history"), store, passMiddleware)

	req := httptest.NewRequest(http.MethodGet, "/history/", nil)
	resp, err := app.Test(req)
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("list status: %v", err)
	}
	var trips []CompletedTrip
	if err := json.NewDecoder(resp.Body).Decode(&trips); err != nil || len(trips) != 1 {
		t.Fatalf("unexpected list payload: %v", err)
	}

	body, _ := json.Marshal([]CompletedTrip{tripAt("t2", 200)})
	req = httptest.NewRequest(http.MethodPost, "/history/import", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err = app.Test(req)
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("import status: %v", err)
	}
	if store.Len() != 2 {
		t.Fatalf("expected 2 trips after import, got %d", store.Len())
	}

	req = httptest.NewRequest(http.MethodGet,
		"/history/query?origin_lat=35.6892&origin_lon=51.3890&dest_lat=35.6997&dest_lon=51.3380&hour=8&day_of_week=3", nil)
	resp, err = app.Test(req)
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("query status: %v", err)
	}
	trips = nil
	if err := json.NewDecoder(resp.Body).Decode(&trips); err != nil || len(trips) != 2 {
		t.Fatalf("unexpected query payload: %v (%d trips)", err, len(trips))
	}
}

func TestHistoryHandlersImportBadPayload(t *testing.T) {
	app := fiber.New()
	RegisterRoutes(app.Group("/history"), NewStore(0), passMiddleware)

	req := httptest.NewRequest(http.MethodPost, "/history/import", bytes.NewReader([]byte("{")))
	req.Header.Set("Content-Type", "application/json")
	resp, _ := app.Test(req)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected bad request")
	}
}

func TestHistoryHandlersQueryEmpty(t *testing.T) {
	app := fiber.New()
	RegisterRoutes(app.Group("/history"), NewStore(0), passMiddleware)

	req := httptest.NewRequest(http.MethodGet, "/history/query?origin_lat=1&origin_lon=1&dest_lat=2&dest_lon=2", nil)
	resp, err := app.Test(req)
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("query status: %v", err)
	}
	var trips []CompletedTrip
	if err := json.NewDecoder(resp.Body).Decode(&trips); err != nil {
		t.Fatalf("expected empty array, got decode error: %v", err)
	}
	if trips == nil || len(trips) != 0 {
		t.Fatalf("expected empty, non-null list")
	}
}
