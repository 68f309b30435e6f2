package api

import (
	"encoding/json"
	"errors"
	"math/rand"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mattjoyce/airaware/internal/airquality"
	"github.com/mattjoyce/airaware/internal/store"
)

// HealthzResponse is returned by GET /healthz.
type HealthzResponse struct {
	Status        string `json:"status"`
	UptimeSeconds int64  `json:"uptime_seconds"`
}

// ErrorResponse is returned on errors.
type ErrorResponse struct {
	Error string `json:"error"`
}

// CityResponse is returned by GET /v1/cities/{city_id}.
type CityResponse struct {
	airquality.City
	Level       airquality.Level       `json:"level"`
	SimpleLevel airquality.SimpleLevel `json:"simple_level"`
	Actions     []airquality.Action    `json:"actions"`
}

// CityListResponse is returned by GET /v1/cities.
type CityListResponse struct {
	Cities []airquality.City `json:"cities"`
}

// AlertsResponse is returned by GET /v1/cities/{city_id}/alerts.
type AlertsResponse struct {
	CityID string             `json:"city_id"`
	Alerts []airquality.Alert `json:"alerts"`
}

// TrendResponse is returned by GET /v1/cities/{city_id}/trend.
type TrendResponse struct {
	CityID string                  `json:"city_id"`
	Points []airquality.TrendPoint `json:"points"`
}

// handleHealthz handles GET /healthz.
func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, HealthzResponse{
		Status:        "ok",
		UptimeSeconds: int64(time.Since(s.startedAt).Seconds()),
	})
}

// handleListCities handles GET /v1/cities.
func (s *Server) handleListCities(w http.ResponseWriter, r *http.Request) {
	cities, err := s.cities.List(r.Context())
	if err != nil {
		s.logger.Error("failed to list cities", "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to list cities")
		return
	}
	respondJSON(w, http.StatusOK, CityListResponse{Cities: cities})
}

// handleGetCity handles GET /v1/cities/{city_id}.
func (s *Server) handleGetCity(w http.ResponseWriter, r *http.Request) {
	city, ok := s.lookupCity(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, CityResponse{
		City:        city,
		Level:       airquality.LevelFor(city.AQI),
		SimpleLevel: airquality.SimpleLevelFor(city.AQI),
		Actions:     airquality.RecommendedActions(city),
	})
}

// handleZones handles GET /v1/cities/{city_id}/zones. Every call produces a
// fresh set of readings and records it.
func (s *Server) handleZones(w http.ResponseWriter, r *http.Request) {
	city, ok := s.lookupCity(w, r)
	if !ok {
		return
	}

	var zones []airquality.Zone
	s.withRand(func(rng *rand.Rand) { zones = airquality.GenerateZones(city, rng) })

	batch, err := s.zones.Record(r.Context(), city.ID, zones)
	if err != nil {
		s.logger.Error("failed to record zone readings", "city_id", city.ID, "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to record zone readings")
		return
	}
	respondJSON(w, http.StatusOK, batch)
}

// handleLatestZones handles GET /v1/cities/{city_id}/zones/latest.
func (s *Server) handleLatestZones(w http.ResponseWriter, r *http.Request) {
	city, ok := s.lookupCity(w, r)
	if !ok {
		return
	}
	batch, err := s.zones.Latest(r.Context(), city.ID)
	if errors.Is(err, store.ErrNotFound) {
		s.writeError(w, http.StatusNotFound, "no zone readings recorded")
		return
	}
	if err != nil {
		s.logger.Error("failed to load zone readings", "city_id", city.ID, "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to load zone readings")
		return
	}
	respondJSON(w, http.StatusOK, batch)
}

// handleAlerts handles GET /v1/cities/{city_id}/alerts.
func (s *Server) handleAlerts(w http.ResponseWriter, r *http.Request) {
	city, ok := s.lookupCity(w, r)
	if !ok {
		return
	}
	alerts := airquality.Alerts(city)
	if alerts == nil {
		alerts = []airquality.Alert{}
	}
	respondJSON(w, http.StatusOK, AlertsResponse{CityID: city.ID, Alerts: alerts})
}

// handleTrend handles GET /v1/cities/{city_id}/trend.
func (s *Server) handleTrend(w http.ResponseWriter, r *http.Request) {
	city, ok := s.lookupCity(w, r)
	if !ok {
		return
	}
	var points []airquality.TrendPoint
	s.withRand(func(rng *rand.Rand) { points = airquality.DailyTrend(city, rng) })
	respondJSON(w, http.StatusOK, TrendResponse{CityID: city.ID, Points: points})
}

// handleSimulate handles GET /v1/cities/{city_id}/simulate.
func (s *Server) handleSimulate(w http.ResponseWriter, r *http.Request) {
	city, ok := s.lookupCity(w, r)
	if !ok {
		return
	}

	var scenario airquality.Scenario
	for name, dst := range map[string]*int{
		"traffic":    &scenario.Traffic,
		"industrial": &scenario.Industrial,
		"weather":    &scenario.Weather,
	} {
		raw := r.URL.Query().Get(name)
		if raw == "" {
			continue
		}
		v, err := strconv.Atoi(raw)
		if err != nil || v < -100 || v > 100 {
			s.writeError(w, http.StatusBadRequest, name+" must be an integer between -100 and 100")
			return
		}
		*dst = v
	}
	respondJSON(w, http.StatusOK, airquality.Simulate(city.AQI, scenario))
}

func (s *Server) lookupCity(w http.ResponseWriter, r *http.Request) (airquality.City, bool) {
	cityID := chi.URLParam(r, "city_id")
	city, err := s.cities.Get(r.Context(), cityID)
	if errors.Is(err, store.ErrNotFound) {
		s.writeError(w, http.StatusNotFound, "city not found")
		return airquality.City{}, false
	}
	if err != nil {
		s.logger.Error("failed to get city", "city_id", cityID, "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to get city")
		return airquality.City{}, false
	}
	return city, true
}

func respondJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) writeError(w http.ResponseWriter, statusCode int, message string) {
	respondJSON(w, statusCode, ErrorResponse{Error: message})
}
