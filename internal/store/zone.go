package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mattjoyce/airaware/internal/airquality"
)

// timeLayout is fixed width so recorded_at sorts correctly as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// ZoneBatch is one recorded set of zone readings for a city.
type ZoneBatch struct {
	ID         string            `json:"id"`
	CityID     string            `json:"city_id"`
	RecordedAt time.Time         `json:"recorded_at"`
	Zones      []airquality.Zone `json:"zones"`
}

// ZoneStore records zone readings served by the gateway.
type ZoneStore struct {
	db *sql.DB
}

// NewZoneStore creates a new ZoneStore.
func NewZoneStore(db *sql.DB) *ZoneStore {
	return &ZoneStore{db: db}
}

// Record stores zones as one batch for cityID.
func (s *ZoneStore) Record(ctx context.Context, cityID string, zones []airquality.Zone) (*ZoneBatch, error) {
	batch := &ZoneBatch{
		ID:         uuid.New().String(),
		CityID:     cityID,
		RecordedAt: time.Now().UTC(),
		Zones:      zones,
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin record zones: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	recordedAt := batch.RecordedAt.Format(timeLayout)
	for i, z := range zones {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO zone_readings (id, batch_id, city_id, zone_id, position, name, aqi, trend,
			 main_pollutant, reliability, lat, lng, recorded_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			uuid.New().String(), batch.ID, cityID, z.ID, i, z.Name, z.AQI, string(z.Trend),
			z.MainPollutant, z.ReliabilityScore, z.Lat, z.Lng, recordedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("insert zone reading: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit zone readings: %w", err)
	}
	return batch, nil
}

// Latest returns the most recent batch recorded for cityID.
func (s *ZoneStore) Latest(ctx context.Context, cityID string) (*ZoneBatch, error) {
	var batchID, recordedAt string
	err := s.db.QueryRowContext(ctx,
		`SELECT batch_id, recorded_at FROM zone_readings WHERE city_id = ?
		 ORDER BY recorded_at DESC, rowid DESC LIMIT 1`, cityID).Scan(&batchID, &recordedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("latest zone batch: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT zone_id, name, aqi, trend, main_pollutant, reliability, lat, lng
		 FROM zone_readings WHERE batch_id = ? ORDER BY position ASC`, batchID)
	if err != nil {
		return nil, fmt.Errorf("list zone readings: %w", err)
	}
	defer rows.Close()

	batch := &ZoneBatch{ID: batchID, CityID: cityID}
	if t, err := time.Parse(timeLayout, recordedAt); err == nil {
		batch.RecordedAt = t
	}
	for rows.Next() {
		var z airquality.Zone
		var trend string
		if err := rows.Scan(&z.ID, &z.Name, &z.AQI, &trend, &z.MainPollutant, &z.ReliabilityScore, &z.Lat, &z.Lng); err != nil {
			return nil, fmt.Errorf("scan zone reading: %w", err)
		}
		z.Trend = airquality.Trend(trend)
		batch.Zones = append(batch.Zones, z)
	}
	return batch, rows.Err()
}
