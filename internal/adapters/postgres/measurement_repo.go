package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/enekolm/aldapa/internal/core/domain"
)

// MeasurementRepo implements ports.MeasurementRepository with pgx.
type MeasurementRepo struct {
	db *DB
}

// NewMeasurementRepo creates a new MeasurementRepo.
func NewMeasurementRepo(db *DB) *MeasurementRepo {
	return &MeasurementRepo{db: db}
}

// Insert stores a completed measurement and fills in its generated ID.
func (r *MeasurementRepo) Insert(ctx context.Context, m *domain.Measurement) error {
	err := r.db.Pool.QueryRow(ctx, `
		INSERT INTO measurements
			(from_lat, from_lon, to_lat, to_lon, distance_meters, sample_count,
			 elevations, start_elevation, end_elevation, min_elevation, max_elevation)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at
	`, m.From.Lat, m.From.Lon, m.To.Lat, m.To.Lon, m.DistanceMeters, m.SampleCount,
		m.Elevations, m.Summary.StartElevation, m.Summary.EndElevation,
		m.Summary.MinElevation, m.Summary.MaxElevation,
	).Scan(&m.ID, &m.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert measurement: %w", err)
	}
	return nil
}

// GetByID returns a measurement by UUID.
func (r *MeasurementRepo) GetByID(ctx context.Context, id string) (*domain.Measurement, error) {
	row := r.db.Pool.QueryRow(ctx, selectColumns+` FROM measurements WHERE id = $1`, id)
	m, err := scanMeasurement(row)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// List returns a page of measurements, newest first, plus the total count.
func (r *MeasurementRepo) List(ctx context.Context, offset, limit int) ([]domain.Measurement, int, error) {
	var total int
	if err := r.db.Pool.QueryRow(ctx, `SELECT count(*) FROM measurements`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count measurements: %w", err)
	}

	rows, err := r.db.Pool.Query(ctx, selectColumns+`
		FROM measurements
		ORDER BY created_at DESC
		OFFSET $1 LIMIT $2
	`, offset, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("list measurements: %w", err)
	}
	defer rows.Close()

	measurements, err := scanMeasurements(rows)
	if err != nil {
		return nil, 0, err
	}
	return measurements, total, nil
}

// ListStale returns measurements not refreshed within the cutoff, oldest first.
func (r *MeasurementRepo) ListStale(ctx context.Context, olderThanDays int, limit int) ([]domain.Measurement, error) {
	rows, err := r.db.Pool.Query(ctx, selectColumns+`
		FROM measurements
		WHERE COALESCE(refreshed_at, created_at) < now() - make_interval(days => $1)
		ORDER BY COALESCE(refreshed_at, created_at) ASC
		LIMIT $2
	`, olderThanDays, limit)
	if err != nil {
		return nil, fmt.Errorf("list stale measurements: %w", err)
	}
	defer rows.Close()

	return scanMeasurements(rows)
}

// UpdateElevations replaces a measurement's elevations and summary after a refresh.
func (r *MeasurementRepo) UpdateElevations(ctx context.Context, id string, elevations []float64, summary domain.PathSummary) error {
	tag, err := r.db.Pool.Exec(ctx, `
		UPDATE measurements
		SET elevations = $2,
		    start_elevation = $3, end_elevation = $4,
		    min_elevation = $5, max_elevation = $6,
		    refreshed_at = now()
		WHERE id = $1
	`, id, elevations, summary.StartElevation, summary.EndElevation,
		summary.MinElevation, summary.MaxElevation)
	if err != nil {
		return fmt.Errorf("update measurement %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("measurement %s not found", id)
	}
	return nil
}

// Delete removes a measurement.
func (r *MeasurementRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.Pool.Exec(ctx, `DELETE FROM measurements WHERE id = $1`, id)
	return err
}

const selectColumns = `
	SELECT id, from_lat, from_lon, to_lat, to_lon, distance_meters, sample_count,
	       elevations, start_elevation, end_elevation, min_elevation, max_elevation,
	       created_at, refreshed_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMeasurement(row rowScanner) (*domain.Measurement, error) {
	var m domain.Measurement
	err := row.Scan(
		&m.ID, &m.From.Lat, &m.From.Lon, &m.To.Lat, &m.To.Lon,
		&m.DistanceMeters, &m.SampleCount, &m.Elevations,
		&m.Summary.StartElevation, &m.Summary.EndElevation,
		&m.Summary.MinElevation, &m.Summary.MaxElevation,
		&m.CreatedAt, &m.RefreshedAt,
	)
	if err != nil {
		return nil, err
	}
	m.Summary.DistanceMeters = m.DistanceMeters
	return &m, nil
}

func scanMeasurements(rows pgx.Rows) ([]domain.Measurement, error) {
	var measurements []domain.Measurement
	for rows.Next() {
		m, err := scanMeasurement(rows)
		if err != nil {
			return nil, fmt.Errorf("scan measurement: %w", err)
		}
		measurements = append(measurements, *m)
	}
	return measurements, rows.Err()
}
