package usecases_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/enekolm/aldapa/internal/core/domain"
	"github.com/enekolm/aldapa/internal/core/usecases"
)

// --- Mock ElevationProvider ---

type mockProvider struct {
	elevationsFn func(ctx context.Context, points []domain.GeoPoint) ([]float64, error)
	calls        int
}

func (m *mockProvider) Elevations(ctx context.Context, points []domain.GeoPoint) ([]float64, error) {
	m.calls++
	if m.elevationsFn != nil {
		return m.elevationsFn(ctx, points)
	}
	return make([]float64, len(points)), nil
}

// --- Mock CacheService ---

type mockCache struct {
	store map[string][]byte
}

func newMockCache() *mockCache {
	return &mockCache{store: make(map[string][]byte)}
}

func (m *mockCache) Get(ctx context.Context, key string) ([]byte, error) {
	if v, ok := m.store[key]; ok {
		return v, nil
	}
	return nil, errors.New("miss")
}

func (m *mockCache) Set(ctx context.Context, key string, value []byte, ttlSeconds int) error {
	m.store[key] = value
	return nil
}

func (m *mockCache) Delete(ctx context.Context, key string) error {
	delete(m.store, key)
	return nil
}

// --- Tests ---

func TestSampler_ProfileCorrespondence(t *testing.T) {
	provider := &mockProvider{
		elevationsFn: func(ctx context.Context, points []domain.GeoPoint) ([]float64, error) {
			elevs := make([]float64, len(points))
			for i := range elevs {
				elevs[i] = 100 + float64(i)
			}
			return elevs, nil
		},
	}
	sampler := usecases.NewElevationSampler(provider, nil, 50)

	from := domain.GeoPoint{Lat: 10.0, Lon: 20.0}
	to := domain.GeoPoint{Lat: 10.0, Lon: 20.1}

	profile, err := sampler.Profile(context.Background(), from, to)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(profile) != 51 {
		t.Fatalf("expected 51 points, got %d", len(profile))
	}
	if profile[0].Point != from {
		t.Errorf("first point is not the start: %+v", profile[0].Point)
	}
	if profile[50].Point != to {
		t.Errorf("last point is not the end: %+v", profile[50].Point)
	}
	for i, p := range profile {
		if p.Elevation != 100+float64(i) {
			t.Fatalf("elevation order broken at %d: %f", i, p.Elevation)
		}
	}
}

func TestSampler_CountMismatch(t *testing.T) {
	provider := &mockProvider{
		elevationsFn: func(ctx context.Context, points []domain.GeoPoint) ([]float64, error) {
			return make([]float64, len(points)-1), nil
		},
	}
	sampler := usecases.NewElevationSampler(provider, nil, 50)

	profile, err := sampler.Profile(context.Background(),
		domain.GeoPoint{Lat: 10.0, Lon: 20.0}, domain.GeoPoint{Lat: 10.0, Lon: 20.1})

	if !errors.Is(err, domain.ErrResultMismatch) {
		t.Fatalf("expected ErrResultMismatch, got %v", err)
	}
	if profile != nil {
		t.Errorf("no partial profile allowed on mismatch, got %d points", len(profile))
	}
}

func TestSampler_ProviderFailure(t *testing.T) {
	provider := &mockProvider{
		elevationsFn: func(ctx context.Context, points []domain.GeoPoint) ([]float64, error) {
			return nil, fmt.Errorf("connection refused")
		},
	}
	sampler := usecases.NewElevationSampler(provider, nil, 10)

	_, err := sampler.Profile(context.Background(),
		domain.GeoPoint{Lat: 1, Lon: 1}, domain.GeoPoint{Lat: 2, Lon: 2})

	if !errors.Is(err, domain.ErrLookupFailure) {
		t.Fatalf("expected ErrLookupFailure, got %v", err)
	}
}

func TestSampler_MismatchFromProviderPassesThrough(t *testing.T) {
	provider := &mockProvider{
		elevationsFn: func(ctx context.Context, points []domain.GeoPoint) ([]float64, error) {
			return nil, fmt.Errorf("%w: null elevation at index 3", domain.ErrResultMismatch)
		},
	}
	sampler := usecases.NewElevationSampler(provider, nil, 10)

	_, err := sampler.Profile(context.Background(),
		domain.GeoPoint{Lat: 1, Lon: 1}, domain.GeoPoint{Lat: 2, Lon: 2})

	if !errors.Is(err, domain.ErrResultMismatch) {
		t.Fatalf("expected ErrResultMismatch, got %v", err)
	}
	if errors.Is(err, domain.ErrLookupFailure) {
		t.Errorf("mismatch must not be double-wrapped as lookup failure")
	}
}

func TestSampler_CacheRoundTrip(t *testing.T) {
	provider := &mockProvider{
		elevationsFn: func(ctx context.Context, points []domain.GeoPoint) ([]float64, error) {
			elevs := make([]float64, len(points))
			for i := range elevs {
				elevs[i] = float64(i) * 2
			}
			return elevs, nil
		},
	}
	cache := newMockCache()
	sampler := usecases.NewElevationSampler(provider, cache, 20)

	from := domain.GeoPoint{Lat: 43.263, Lon: -2.935}
	to := domain.GeoPoint{Lat: 43.3, Lon: -2.9}

	first, err := sampler.Profile(context.Background(), from, to)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	second, err := sampler.Profile(context.Background(), from, to)
	if err != nil {
		t.Fatalf("unexpected error on cached call: %v", err)
	}

	if provider.calls != 1 {
		t.Errorf("expected 1 provider call, got %d", provider.calls)
	}
	if len(first) != len(second) {
		t.Fatalf("cached profile length differs: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("cached profile differs at %d", i)
		}
	}
}

func TestSampler_DefaultCount(t *testing.T) {
	sampler := usecases.NewElevationSampler(&mockProvider{}, nil, 0)
	if sampler.SampleCount() != usecases.DefaultSampleCount {
		t.Errorf("expected default %d, got %d", usecases.DefaultSampleCount, sampler.SampleCount())
	}
}
