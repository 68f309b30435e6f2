package dashboard

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestClientFetchesCityAndZones(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-token" {
			w.WriteHeader(http.StatusUnauthorized)
			io.WriteString(w, `{"error":"invalid token"}`)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/v1/cities/pne":
			io.WriteString(w, `{"id":"pne","name":"Pune","state":"Maharashtra","aqi":118,"level":{"label":"Unhealthy (SG)"}}`)
		case "/v1/cities/pne/zones":
			io.WriteString(w, `{"id":"b1","city_id":"pne","zones":[{"id":"pne-z0","name":"Koregaon Park","aqi":120,"trend":"stable","main_pollutant":"PM10"}]}`)
		default:
			w.WriteHeader(http.StatusNotFound)
			io.WriteString(w, `{"error":"city not found"}`)
		}
	}))
	defer server.Close()

	client := NewClient(server.URL+"/", "test-token", slog.New(slog.NewTextHandler(io.Discard, nil)))
	ctx := context.Background()

	city, err := client.GetCity(ctx, "pne")
	if err != nil {
		t.Fatalf("GetCity: %v", err)
	}
	if city.Name != "Pune" || city.AQI != 118 {
		t.Fatalf("unexpected city: %+v", city)
	}

	batch, err := client.Zones(ctx, "pne")
	if err != nil {
		t.Fatalf("Zones: %v", err)
	}
	if len(batch.Zones) != 1 || batch.Zones[0].Name != "Koregaon Park" {
		t.Fatalf("unexpected zones: %+v", batch.Zones)
	}

	_, err = client.GetCity(ctx, "atlantis")
	if err == nil || !strings.Contains(err.Error(), "status 404") {
		t.Fatalf("expected 404 error, got %v", err)
	}
}
