package usecases

import (
	"github.com/enekolm/aldapa/internal/core/domain"
)

// Summarize derives the path summary from a completed profile and the
// endpoint distance. It is recomputed on every profile change, never cached.
func Summarize(profile domain.ElevationProfile, distanceMeters float64) (domain.PathSummary, error) {
	if len(profile) == 0 {
		return domain.PathSummary{}, domain.ErrEmptyInput
	}

	summary := domain.PathSummary{
		DistanceMeters: distanceMeters,
		StartElevation: profile[0].Elevation,
		EndElevation:   profile[len(profile)-1].Elevation,
		MinElevation:   profile[0].Elevation,
		MaxElevation:   profile[0].Elevation,
	}

	for _, p := range profile[1:] {
		if p.Elevation < summary.MinElevation {
			summary.MinElevation = p.Elevation
		}
		if p.Elevation > summary.MaxElevation {
			summary.MaxElevation = p.Elevation
		}
	}

	return summary, nil
}
