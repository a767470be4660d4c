package usecases_test

import (
	"errors"
	"testing"

	"github.com/enekolm/aldapa/internal/core/domain"
	"github.com/enekolm/aldapa/internal/core/usecases"
)

func profileWith(elevations ...float64) domain.ElevationProfile {
	profile := make(domain.ElevationProfile, len(elevations))
	for i, e := range elevations {
		profile[i] = domain.ProfilePoint{
			Point:     domain.GeoPoint{Lat: float64(i), Lon: float64(i)},
			Elevation: e,
		}
	}
	return profile
}

func TestSummarize(t *testing.T) {
	profile := profileWith(100, 102, 140, 95, 80)

	summary, err := usecases.Summarize(profile, 10960)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if summary.StartElevation != 100 {
		t.Errorf("start: expected 100, got %f", summary.StartElevation)
	}
	if summary.EndElevation != 80 {
		t.Errorf("end: expected 80, got %f", summary.EndElevation)
	}
	if summary.MinElevation != 80 {
		t.Errorf("min: expected 80, got %f", summary.MinElevation)
	}
	if summary.MaxElevation != 140 {
		t.Errorf("max: expected 140, got %f", summary.MaxElevation)
	}
	if summary.DistanceMeters != 10960 {
		t.Errorf("distance: expected 10960, got %f", summary.DistanceMeters)
	}
}

func TestSummarize_SinglePoint(t *testing.T) {
	summary, err := usecases.Summarize(profileWith(55), 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.StartElevation != 55 || summary.EndElevation != 55 ||
		summary.MinElevation != 55 || summary.MaxElevation != 55 {
		t.Errorf("single-point summary wrong: %+v", summary)
	}
}

func TestSummarize_NegativeElevations(t *testing.T) {
	summary, err := usecases.Summarize(profileWith(-5, -20, -1), 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.MinElevation != -20 {
		t.Errorf("min: expected -20, got %f", summary.MinElevation)
	}
	if summary.MaxElevation != -1 {
		t.Errorf("max: expected -1, got %f", summary.MaxElevation)
	}
}

func TestSummarize_Empty(t *testing.T) {
	_, err := usecases.Summarize(nil, 10)
	if !errors.Is(err, domain.ErrEmptyInput) {
		t.Fatalf("expected ErrEmptyInput, got %v", err)
	}
}
