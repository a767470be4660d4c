package ports

import (
	"context"

	"github.com/enekolm/aldapa/internal/core/domain"
)

// MeasurementRepository persists completed elevation profiles.
type MeasurementRepository interface {
	Insert(ctx context.Context, m *domain.Measurement) error
	GetByID(ctx context.Context, id string) (*domain.Measurement, error)
	// List returns a page of measurements, newest first, and the total count.
	List(ctx context.Context, offset, limit int) ([]domain.Measurement, int, error)
	// ListStale returns measurements whose elevations have not been refreshed
	// since the cutoff, oldest first.
	ListStale(ctx context.Context, olderThanDays int, limit int) ([]domain.Measurement, error)
	UpdateElevations(ctx context.Context, id string, elevations []float64, summary domain.PathSummary) error
	Delete(ctx context.Context, id string) error
}
