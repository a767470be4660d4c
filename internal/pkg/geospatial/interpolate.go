package geospatial

import (
	"fmt"

	"github.com/enekolm/aldapa/internal/core/domain"
)

// ErrInvalidCount is returned when an interpolation is requested with a
// non-positive sample count.
var ErrInvalidCount = fmt.Errorf("sample count must be positive")

// Interpolate returns count+1 points between from and to, endpoints included.
// Intermediate points are per-coordinate linear, not great-circle.
func Interpolate(from, to domain.GeoPoint, count int) ([]domain.GeoPoint, error) {
	if count <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidCount, count)
	}

	points := make([]domain.GeoPoint, count+1)
	for i := 0; i <= count; i++ {
		t := float64(i) / float64(count)
		points[i] = domain.GeoPoint{
			Lat: from.Lat + (to.Lat-from.Lat)*t,
			Lon: from.Lon + (to.Lon-from.Lon)*t,
		}
	}

	// Exact endpoints regardless of float rounding in the loop.
	points[0] = from
	points[count] = to

	return points, nil
}

// SegmentDistance is the haversine distance in meters between the endpoints
// of a segment.
func SegmentDistance(s domain.Segment) float64 {
	return Haversine(s.From.Lat, s.From.Lon, s.To.Lat, s.To.Lon)
}
