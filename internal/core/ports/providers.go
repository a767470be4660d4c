package ports

import (
	"context"

	"github.com/enekolm/aldapa/internal/core/domain"
)

// ElevationProvider resolves terrain elevation for an ordered set of points.
// Implementations must return exactly one elevation per requested point, in
// the same order, or an error; partial results are not a success.
type ElevationProvider interface {
	Elevations(ctx context.Context, points []domain.GeoPoint) ([]float64, error)
}
