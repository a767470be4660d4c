package usecases

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/enekolm/aldapa/internal/core/domain"
	"github.com/enekolm/aldapa/internal/core/ports"
	"github.com/enekolm/aldapa/internal/pkg/geospatial"
	"github.com/enekolm/aldapa/internal/pkg/metrics"
)

// DefaultSampleCount is the number of interpolation steps per segment; the
// resulting profile holds DefaultSampleCount+1 points.
const DefaultSampleCount = 50

// ElevationSampler builds the elevation profile for a segment: a fixed-count
// interpolated sample set resolved through one batched provider call.
type ElevationSampler struct {
	provider ports.ElevationProvider
	cache    ports.CacheService
	samples  int
}

// NewElevationSampler creates a sampler with the given sample count
// (DefaultSampleCount when count <= 0).
func NewElevationSampler(provider ports.ElevationProvider, cache ports.CacheService, count int) *ElevationSampler {
	if count <= 0 {
		count = DefaultSampleCount
	}
	return &ElevationSampler{provider: provider, cache: cache, samples: count}
}

// SampleCount returns the configured step count N; profiles have N+1 points.
func (s *ElevationSampler) SampleCount() int {
	return s.samples
}

// WithSampleCount returns a sampler sharing this one's provider and cache
// but resolving count steps per segment. Cache keys include the count, so
// the two samplers never serve each other's entries.
func (s *ElevationSampler) WithSampleCount(count int) *ElevationSampler {
	if count <= 0 {
		count = DefaultSampleCount
	}
	return &ElevationSampler{provider: s.provider, cache: s.cache, samples: count}
}

// Profile resolves the elevation profile between from and to. Index i of the
// result corresponds to sample i of the interpolated segment. On any failure
// (transport, decode, count mismatch) no partial profile is returned.
func (s *ElevationSampler) Profile(ctx context.Context, from, to domain.GeoPoint) (domain.ElevationProfile, error) {
	points, err := geospatial.Interpolate(from, to, s.samples)
	if err != nil {
		return nil, err
	}

	elevations, cached := s.cachedElevations(ctx, from, to)
	if !cached {
		elevations, err = s.provider.Elevations(ctx, points)
		if err != nil {
			if errors.Is(err, domain.ErrResultMismatch) {
				return nil, err
			}
			return nil, fmt.Errorf("%w: %v", domain.ErrLookupFailure, err)
		}
	}

	if len(elevations) != len(points) {
		return nil, fmt.Errorf("%w: want %d, got %d", domain.ErrResultMismatch, len(points), len(elevations))
	}

	if !cached {
		s.storeElevations(ctx, from, to, elevations)
	}

	profile := make(domain.ElevationProfile, len(points))
	for i, p := range points {
		profile[i] = domain.ProfilePoint{Point: p, Elevation: elevations[i]}
	}
	return profile, nil
}

// cacheKey rounds coordinates to ~1 m so nearby clicks share cache entries.
func (s *ElevationSampler) cacheKey(from, to domain.GeoPoint) string {
	return fmt.Sprintf("elev:%.5f:%.5f:%.5f:%.5f:%d",
		from.Lat, from.Lon, to.Lat, to.Lon, s.samples)
}

func (s *ElevationSampler) cachedElevations(ctx context.Context, from, to domain.GeoPoint) ([]float64, bool) {
	if s.cache == nil {
		return nil, false
	}

	data, err := s.cache.Get(ctx, s.cacheKey(from, to))
	if err != nil {
		metrics.CacheMisses.WithLabelValues("elevations").Inc()
		return nil, false
	}

	var elevations []float64
	if err := json.Unmarshal(data, &elevations); err != nil || len(elevations) != s.samples+1 {
		metrics.CacheMisses.WithLabelValues("elevations").Inc()
		return nil, false
	}

	metrics.CacheHits.WithLabelValues("elevations").Inc()
	return elevations, true
}

func (s *ElevationSampler) storeElevations(ctx context.Context, from, to domain.GeoPoint, elevations []float64) {
	if s.cache == nil {
		return
	}
	if data, err := json.Marshal(elevations); err == nil {
		// Terrain changes slowly; a day of caching is safe.
		_ = s.cache.Set(ctx, s.cacheKey(from, to), data, 86400)
	}
}
