package domain

import "time"

// ProfilePoint is one sample of the elevation profile.
type ProfilePoint struct {
	Point     GeoPoint `json:"point"`
	Elevation float64  `json:"elevation"` // meters
}

// ElevationProfile is the ordered elevation-per-sample result for a segment.
// Index i corresponds to sample i of the interpolated segment; the profile is
// always replaced as a whole, never merged incrementally.
type ElevationProfile []ProfilePoint

// PathSummary is derived from a completed profile, never stored on its own.
type PathSummary struct {
	DistanceMeters float64 `json:"distance_meters"`
	StartElevation float64 `json:"start_elevation"`
	EndElevation   float64 `json:"end_elevation"`
	MinElevation   float64 `json:"min_elevation"`
	MaxElevation   float64 `json:"max_elevation"`
}

// Measurement is a completed profile persisted for history and refresh.
type Measurement struct {
	ID             string      `json:"id"`
	From           GeoPoint    `json:"from"`
	To             GeoPoint    `json:"to"`
	DistanceMeters float64     `json:"distance_meters"`
	SampleCount    int         `json:"sample_count"` // N: the profile holds N+1 points
	Elevations     []float64   `json:"elevations"`
	Summary        PathSummary `json:"summary"`
	CreatedAt      time.Time   `json:"created_at"`
	RefreshedAt    *time.Time  `json:"refreshed_at,omitempty"`
}
