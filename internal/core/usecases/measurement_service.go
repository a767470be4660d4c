package usecases

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/enekolm/aldapa/internal/core/domain"
	"github.com/enekolm/aldapa/internal/core/ports"
)

// MeasurementService serves the persisted profile history.
type MeasurementService struct {
	measurements ports.MeasurementRepository
	cache        ports.CacheService
}

// NewMeasurementService creates a new MeasurementService.
func NewMeasurementService(measurements ports.MeasurementRepository, cache ports.CacheService) *MeasurementService {
	return &MeasurementService{measurements: measurements, cache: cache}
}

// List returns a page of measurements, newest first, plus the total count.
func (s *MeasurementService) List(ctx context.Context, offset, limit int) ([]domain.Measurement, int, error) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.measurements.List(ctx, offset, limit)
}

// GetByID returns a single measurement.
func (s *MeasurementService) GetByID(ctx context.Context, id string) (*domain.Measurement, error) {
	if id == "" {
		return nil, fmt.Errorf("measurement id is required")
	}

	cacheKey := "measurements:id:" + id
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var m domain.Measurement
			if err := json.Unmarshal(data, &m); err == nil {
				return &m, nil
			}
		}
	}

	m, err := s.measurements.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if data, err := json.Marshal(m); err == nil {
			// Measurements only change on refresh; 10 minutes is plenty.
			_ = s.cache.Set(ctx, cacheKey, data, 600)
		}
	}

	return m, nil
}

// Delete removes a measurement and its cache entry.
func (s *MeasurementService) Delete(ctx context.Context, id string) error {
	if err := s.measurements.Delete(ctx, id); err != nil {
		return err
	}
	if s.cache != nil {
		_ = s.cache.Delete(ctx, "measurements:id:"+id)
	}
	return nil
}
