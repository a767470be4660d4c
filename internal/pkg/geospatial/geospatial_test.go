package geospatial_test

import (
	"errors"
	"math"
	"testing"

	"github.com/enekolm/aldapa/internal/core/domain"
	"github.com/enekolm/aldapa/internal/pkg/geospatial"
)

func TestHaversine_Symmetric(t *testing.T) {
	pairs := [][4]float64{
		{43.263, -2.935, 43.264, -2.934},
		{10.0, 20.0, 10.0, 20.1},
		{-33.9, 151.2, 35.7, 139.7},
		{0, 0, 0, 180}, // antipodal on the equator
	}

	for _, p := range pairs {
		ab := geospatial.Haversine(p[0], p[1], p[2], p[3])
		ba := geospatial.Haversine(p[2], p[3], p[0], p[1])
		if math.Abs(ab-ba) > 1e-6 {
			t.Errorf("distance not symmetric: %f vs %f", ab, ba)
		}
	}
}

func TestHaversine_Identity(t *testing.T) {
	if d := geospatial.Haversine(43.263, -2.935, 43.263, -2.935); d != 0 {
		t.Errorf("expected 0 for identical points, got %f", d)
	}
}

func TestHaversine_KnownDistance(t *testing.T) {
	// ~10,960 m for 0.1 degrees of longitude at latitude 10.
	d := geospatial.Haversine(10.0, 20.0, 10.0, 20.1)
	if d < 10910 || d > 11010 {
		t.Errorf("expected ~10960 m, got %f", d)
	}
}

func TestInterpolate_Endpoints(t *testing.T) {
	from := domain.GeoPoint{Lat: 10.0, Lon: 20.0}
	to := domain.GeoPoint{Lat: 10.0, Lon: 20.1}

	points, err := geospatial.Interpolate(from, to, 50)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(points) != 51 {
		t.Fatalf("expected 51 points, got %d", len(points))
	}
	if points[0] != from {
		t.Errorf("first point is not the start: %+v", points[0])
	}
	if points[50] != to {
		t.Errorf("last point is not the end: %+v", points[50])
	}
}

func TestInterpolate_Monotonic(t *testing.T) {
	from := domain.GeoPoint{Lat: 43.0, Lon: -2.0}
	to := domain.GeoPoint{Lat: 42.0, Lon: -1.5}

	points, err := geospatial.Interpolate(from, to, 20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i := 1; i < len(points); i++ {
		if points[i].Lat > points[i-1].Lat {
			t.Errorf("lat not non-increasing at %d: %f > %f", i, points[i].Lat, points[i-1].Lat)
		}
		if points[i].Lon < points[i-1].Lon {
			t.Errorf("lon not non-decreasing at %d: %f < %f", i, points[i].Lon, points[i-1].Lon)
		}
	}
}

func TestInterpolate_InvalidCount(t *testing.T) {
	for _, count := range []int{0, -1, -50} {
		_, err := geospatial.Interpolate(domain.GeoPoint{}, domain.GeoPoint{Lat: 1}, count)
		if !errors.Is(err, geospatial.ErrInvalidCount) {
			t.Errorf("count %d: expected ErrInvalidCount, got %v", count, err)
		}
	}
}

func TestInterpolate_IdenticalEndpoints(t *testing.T) {
	p := domain.GeoPoint{Lat: 5.5, Lon: 6.6}
	points, err := geospatial.Interpolate(p, p, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, got := range points {
		if got != p {
			t.Errorf("point %d drifted: %+v", i, got)
		}
	}
}

func TestSegmentDistance(t *testing.T) {
	s := domain.Segment{
		From: domain.GeoPoint{Lat: 10.0, Lon: 20.0},
		To:   domain.GeoPoint{Lat: 10.0, Lon: 20.1},
	}
	d := geospatial.SegmentDistance(s)
	want := geospatial.Haversine(10.0, 20.0, 10.0, 20.1)
	if d != want {
		t.Errorf("expected %f, got %f", want, d)
	}
}
