package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"

	"dealerscraper/internal/database"
	"dealerscraper/internal/models"
	"dealerscraper/internal/scraper"
	"dealerscraper/internal/snapshot"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	cwd, err := os.Getwd()
	if err != nil {
		panic(err)
	}
	root := filepath.Join(cwd, "..", "..")
	if err := os.Chdir(root); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

type stubRunner struct {
	result models.RunResult
	calls  int
}

func (r *stubRunner) Run(_ context.Context, _ scraper.Options) models.RunResult {
	r.calls++
	return r.result
}

func newTestRouter(t *testing.T, runner ScrapeRunner, snapshotPath string) (*gin.Engine, *database.Database) {
	t.Helper()
	db, err := database.NewDatabase(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	handler := NewVehicleHandler(db, runner, "dealer", snapshotPath)

	r := gin.New()
	r.GET("/api/vehicles", handler.ListVehicles)
	r.GET("/api/vehicles/:id", handler.GetVehicle)
	r.GET("/api/snapshot-status", handler.SnapshotStatus)
	r.POST("/api/refresh", handler.Refresh)
	r.GET("/api/health", handler.Health)
	return r, db
}

func seedVehicle(t *testing.T, db *database.Database) int64 {
	t.Helper()
	price := 12500.0
	listing := &models.VehicleListing{
		ExternalID:   "ford-focus-123",
		Title:        "Ford Focus 1.0 EcoBoost",
		PriceNumeric: &price,
		Transmission: "Manual",
		FuelType:     "Petrol",
	}
	attrID, err := db.FindOrCreateAttribute(listing)
	if err != nil {
		t.Fatalf("failed to create attribute: %v", err)
	}
	id, _, err := db.UpsertVehicle(listing, attrID, "dealer", false)
	if err != nil {
		t.Fatalf("failed to insert vehicle: %v", err)
	}
	return id
}

func request(r http.Handler, method, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestListVehicles(t *testing.T) {
	r, db := newTestRouter(t, nil, "")
	seedVehicle(t, db)

	rec := request(r, http.MethodGet, "/api/vehicles")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var body struct {
		Count    int                     `json:"count"`
		Vehicles []*models.VehicleRecord `json:"vehicles"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body.Count != 1 || len(body.Vehicles) != 1 {
		t.Fatalf("expected 1 vehicle, got %+v", body)
	}
	if body.Vehicles[0].ExternalID != "ford-focus-123" {
		t.Fatalf("unexpected vehicle %+v", body.Vehicles[0])
	}
}

func TestGetVehicle(t *testing.T) {
	r, db := newTestRouter(t, nil, "")
	id := seedVehicle(t, db)
	if err := db.SaveImages(id, []models.VehicleImage{{URL: "https://dealer.example/img/1.jpg", Sequence: 0}}); err != nil {
		t.Fatalf("failed to save image: %v", err)
	}

	rec := request(r, http.MethodGet, "/api/vehicles/1")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var vehicle models.VehicleRecord
	if err := json.Unmarshal(rec.Body.Bytes(), &vehicle); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if vehicle.ID != id || len(vehicle.Images) != 1 {
		t.Fatalf("expected vehicle with image, got %+v", vehicle)
	}
}

func TestGetVehicleNotFound(t *testing.T) {
	r, _ := newTestRouter(t, nil, "")

	if rec := request(r, http.MethodGet, "/api/vehicles/999"); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if rec := request(r, http.MethodGet, "/api/vehicles/notanumber"); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestSnapshotStatus(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshot.json")
	r, _ := newTestRouter(t, nil, path)

	if rec := request(r, http.MethodGet, "/api/snapshot-status"); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 before first snapshot, got %d", rec.Code)
	}

	if err := snapshot.Write(path, "dealer", nil); err != nil {
		t.Fatalf("failed to write snapshot: %v", err)
	}

	rec := request(r, http.MethodGet, "/api/snapshot-status")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var body struct {
		Source string `json:"source"`
		Count  int    `json:"count"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body.Source != "dealer" {
		t.Fatalf("unexpected status body %+v", body)
	}
}

func TestRefresh(t *testing.T) {
	runner := &stubRunner{result: models.RunResult{Success: true, Source: "dealer"}}
	r, _ := newTestRouter(t, runner, "")

	rec := request(r, http.MethodPost, "/api/refresh")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if runner.calls != 1 {
		t.Fatalf("expected one scrape run, got %d", runner.calls)
	}
}

func TestRefreshFailedRun(t *testing.T) {
	runner := &stubRunner{result: models.RunResult{Success: false, Error: "listing page fetch failed"}}
	r, _ := newTestRouter(t, runner, "")

	if rec := request(r, http.MethodPost, "/api/refresh"); rec.Code != http.StatusBadGateway {
		t.Fatalf("expected 502 for failed run, got %d", rec.Code)
	}
}

func TestRefreshWithoutRunner(t *testing.T) {
	r, _ := newTestRouter(t, nil, "")

	if rec := request(r, http.MethodPost, "/api/refresh"); rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 without a configured scraper, got %d", rec.Code)
	}
}

func TestHealth(t *testing.T) {
	r, _ := newTestRouter(t, nil, "")

	if rec := request(r, http.MethodGet, "/api/health"); rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}
