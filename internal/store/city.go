package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mattjoyce/airaware/internal/airquality"
)

// ErrNotFound is returned when a lookup matches nothing.
var ErrNotFound = errors.New("not found")

// CityStore provides access to the cities table.
type CityStore struct {
	db *sql.DB
}

// NewCityStore creates a new CityStore.
func NewCityStore(db *sql.DB) *CityStore {
	return &CityStore{db: db}
}

// Seed upserts the catalog, keeping its order for List.
func (s *CityStore) Seed(ctx context.Context, cities []airquality.City) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin seed: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC().Format(time.RFC3339Nano)
	for i, c := range cities {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO cities (id, position, name, state, aqi, lat, lng, population, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
			 ON CONFLICT(id) DO UPDATE SET position = excluded.position, name = excluded.name,
			 state = excluded.state, aqi = excluded.aqi, lat = excluded.lat, lng = excluded.lng,
			 population = excluded.population, updated_at = excluded.updated_at`,
			c.ID, i, c.Name, c.State, c.AQI, c.Lat, c.Lng, c.Population, now,
		)
		if err != nil {
			return fmt.Errorf("seed city %s: %w", c.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit seed: %w", err)
	}
	return nil
}

// List returns every city in catalog order.
func (s *CityStore) List(ctx context.Context) ([]airquality.City, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, state, aqi, lat, lng, population FROM cities ORDER BY position ASC`)
	if err != nil {
		return nil, fmt.Errorf("list cities: %w", err)
	}
	defer rows.Close()

	var cities []airquality.City
	for rows.Next() {
		c, err := scanCity(rows)
		if err != nil {
			return nil, err
		}
		cities = append(cities, c)
	}
	return cities, rows.Err()
}

// Get finds a city by id or by case-insensitive name.
func (s *CityStore) Get(ctx context.Context, key string) (airquality.City, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, state, aqi, lat, lng, population FROM cities WHERE id = ? OR lower(name) = ? LIMIT 1`,
		key, strings.ToLower(key))
	c, err := scanCity(row)
	if errors.Is(err, sql.ErrNoRows) {
		return airquality.City{}, ErrNotFound
	}
	return c, err
}

// scanner is an interface satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanCity(s scanner) (airquality.City, error) {
	var c airquality.City
	if err := s.Scan(&c.ID, &c.Name, &c.State, &c.AQI, &c.Lat, &c.Lng, &c.Population); err != nil {
		return airquality.City{}, fmt.Errorf("scan city: %w", err)
	}
	return c, nil
}
