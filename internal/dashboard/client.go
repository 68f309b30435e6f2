// Package dashboard is an HTTP client for the gateway's city data endpoints.
package dashboard

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mattjoyce/airaware/internal/airquality"
)

// ZoneBatch is the response of GET /v1/cities/{city_id}/zones.
type ZoneBatch struct {
	ID         string            `json:"id"`
	CityID     string            `json:"city_id"`
	RecordedAt time.Time         `json:"recorded_at"`
	Zones      []airquality.Zone `json:"zones"`
}

// Client is an HTTP client for the dashboard data API.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a new dashboard API client.
func NewClient(baseURL, token string, logger *slog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger,
	}
}

// ListCities fetches GET /v1/cities.
func (c *Client) ListCities(ctx context.Context) ([]airquality.City, error) {
	var resp struct {
		Cities []airquality.City `json:"cities"`
	}
	if err := c.get(ctx, "/v1/cities", &resp); err != nil {
		return nil, fmt.Errorf("list cities: %w", err)
	}
	return resp.Cities, nil
}

// GetCity fetches GET /v1/cities/{city_id}. key may be an id or a name.
func (c *Client) GetCity(ctx context.Context, key string) (airquality.City, error) {
	var city airquality.City
	if err := c.get(ctx, "/v1/cities/"+url.PathEscape(key), &city); err != nil {
		return airquality.City{}, fmt.Errorf("get city %s: %w", key, err)
	}
	return city, nil
}

// Zones fetches a fresh set of zone readings for a city.
func (c *Client) Zones(ctx context.Context, cityID string) (*ZoneBatch, error) {
	var batch ZoneBatch
	if err := c.get(ctx, "/v1/cities/"+url.PathEscape(cityID)+"/zones", &batch); err != nil {
		return nil, fmt.Errorf("get zones %s: %w", cityID, err)
	}
	return &batch, nil
}

// Alerts fetches the standing alerts for a city.
func (c *Client) Alerts(ctx context.Context, cityID string) ([]airquality.Alert, error) {
	var resp struct {
		Alerts []airquality.Alert `json:"alerts"`
	}
	if err := c.get(ctx, "/v1/cities/"+url.PathEscape(cityID)+"/alerts", &resp); err != nil {
		return nil, fmt.Errorf("get alerts %s: %w", cityID, err)
	}
	return resp.Alerts, nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	c.logger.Debug("dashboard request", "path", path, "status", resp.StatusCode, "duration_ms", time.Since(start).Milliseconds())
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	return nil
}
