package api

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/cloudwego/eino/components/model"

	"github.com/mattjoyce/airaware/internal/airquality"
	"github.com/mattjoyce/airaware/internal/storage"
	"github.com/mattjoyce/airaware/internal/store"
)

func newTestServer(t *testing.T, cfg Config, chatModel model.BaseChatModel) *Server {
	t.Helper()
	ctx := context.Background()
	db, err := storage.OpenSQLite(ctx, filepath.Join(t.TempDir(), "airaware.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	cities := store.NewCityStore(db)
	if err := cities.Seed(ctx, airquality.Cities()); err != nil {
		t.Fatalf("seed cities: %v", err)
	}
	if cfg.Token == "" {
		cfg.Token = "test-token"
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(cfg, cities, store.NewZoneStore(db), chatModel, logger)
}

func doRequest(t *testing.T, h http.Handler, method, path, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestHealthzIsUnauthenticated(t *testing.T) {
	router := newTestServer(t, Config{}, nil).setupRoutes()
	rr := doRequest(t, router, http.MethodGet, "/healthz", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("healthz status = %d, want 200", rr.Code)
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	router := newTestServer(t, Config{}, nil).setupRoutes()

	for _, token := range []string{"", "wrong-token"} {
		rr := doRequest(t, router, http.MethodGet, "/v1/cities", token)
		if rr.Code != http.StatusUnauthorized {
			t.Fatalf("token %q: status = %d, want 401", token, rr.Code)
		}
		if rr.Header().Get("WWW-Authenticate") == "" {
			t.Fatalf("token %q: missing WWW-Authenticate challenge", token)
		}
		var resp ErrorResponse
		if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil || resp.Error == "" {
			t.Fatalf("expected error envelope, got %q", rr.Body.String())
		}
	}
}

func TestListAndGetCities(t *testing.T) {
	router := newTestServer(t, Config{}, nil).setupRoutes()

	rr := doRequest(t, router, http.MethodGet, "/v1/cities", "test-token")
	if rr.Code != http.StatusOK {
		t.Fatalf("list status = %d", rr.Code)
	}
	var list CityListResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(list.Cities) != len(airquality.Cities()) {
		t.Fatalf("cities = %d, want %d", len(list.Cities), len(airquality.Cities()))
	}

	rr = doRequest(t, router, http.MethodGet, "/v1/cities/Delhi", "test-token")
	if rr.Code != http.StatusOK {
		t.Fatalf("get status = %d: %s", rr.Code, rr.Body.String())
	}
	var city CityResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &city); err != nil {
		t.Fatalf("decode city: %v", err)
	}
	if city.ID != "del" || city.Level.Label != "Very Unhealthy" || len(city.Actions) == 0 {
		t.Fatalf("unexpected city response: %+v", city)
	}

	rr = doRequest(t, router, http.MethodGet, "/v1/cities/atlantis", "test-token")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("unknown city status = %d, want 404", rr.Code)
	}
}

func TestZonesAreRecorded(t *testing.T) {
	router := newTestServer(t, Config{}, nil).setupRoutes()

	rr := doRequest(t, router, http.MethodGet, "/v1/cities/mum/zones/latest", "test-token")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("latest before any reading = %d, want 404", rr.Code)
	}

	rr = doRequest(t, router, http.MethodGet, "/v1/cities/mum/zones", "test-token")
	if rr.Code != http.StatusOK {
		t.Fatalf("zones status = %d: %s", rr.Code, rr.Body.String())
	}
	var fresh store.ZoneBatch
	if err := json.Unmarshal(rr.Body.Bytes(), &fresh); err != nil {
		t.Fatalf("decode zones: %v", err)
	}
	if len(fresh.Zones) != 9 || fresh.Zones[0].Name != "Andheri" {
		t.Fatalf("unexpected zones: %+v", fresh.Zones)
	}

	rr = doRequest(t, router, http.MethodGet, "/v1/cities/mum/zones/latest", "test-token")
	var latest store.ZoneBatch
	if err := json.Unmarshal(rr.Body.Bytes(), &latest); err != nil {
		t.Fatalf("decode latest: %v", err)
	}
	if latest.ID != fresh.ID {
		t.Fatalf("latest batch = %s, want %s", latest.ID, fresh.ID)
	}
}

func TestAlertsTrendAndSimulate(t *testing.T) {
	router := newTestServer(t, Config{}, nil).setupRoutes()

	rr := doRequest(t, router, http.MethodGet, "/v1/cities/kch/alerts", "test-token")
	var alerts AlertsResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &alerts); err != nil {
		t.Fatalf("decode alerts: %v", err)
	}
	if alerts.Alerts == nil || len(alerts.Alerts) != 0 {
		t.Fatalf("clean city should return an empty alert list, got %s", rr.Body.String())
	}

	rr = doRequest(t, router, http.MethodGet, "/v1/cities/del/trend", "test-token")
	var trend TrendResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &trend); err != nil {
		t.Fatalf("decode trend: %v", err)
	}
	if len(trend.Points) != 10 {
		t.Fatalf("trend points = %d, want 10", len(trend.Points))
	}

	rr = doRequest(t, router, http.MethodGet, "/v1/cities/del/simulate?traffic=100", "test-token")
	var sim airquality.Simulation
	if err := json.Unmarshal(rr.Body.Bytes(), &sim); err != nil {
		t.Fatalf("decode simulation: %v", err)
	}
	if sim.BaseAQI != 287 || sim.Delta <= 0 {
		t.Fatalf("unexpected simulation: %+v", sim)
	}

	rr = doRequest(t, router, http.MethodGet, "/v1/cities/del/simulate?weather=abc", "test-token")
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("bad factor status = %d, want 400", rr.Code)
	}
}
