package workflows

import (
	"context"
	"fmt"
	"log"

	"github.com/enekolm/aldapa/internal/core/ports"
	"github.com/enekolm/aldapa/internal/core/usecases"
	"github.com/enekolm/aldapa/internal/pkg/metrics"
)

// RefreshActivities holds the activity implementations for the refresh workflow.
type RefreshActivities struct {
	Measurements ports.MeasurementRepository
	Provider     ports.ElevationProvider
	Cache        ports.CacheService
	Publisher    ports.EventPublisher
}

// ListStaleMeasurements returns the IDs of measurements whose elevations have
// not been refreshed since the cutoff.
func (a *RefreshActivities) ListStaleMeasurements(ctx context.Context, olderThanDays, limit int) ([]string, error) {
	stale, err := a.Measurements.ListStale(ctx, olderThanDays, limit)
	if err != nil {
		return nil, fmt.Errorf("list stale measurements: %w", err)
	}

	ids := make([]string, 0, len(stale))
	for _, m := range stale {
		ids = append(ids, m.ID)
	}
	return ids, nil
}

// RefreshMeasurement re-samples one measurement against the elevation
// provider and stores the fresh elevations and summary.
func (a *RefreshActivities) RefreshMeasurement(ctx context.Context, id string) error {
	m, err := a.Measurements.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("get measurement %s: %w", id, err)
	}

	// Sample at the measurement's own resolution so the stored
	// sample_count stays truthful across config changes.
	sampler := usecases.NewElevationSampler(a.Provider, a.Cache, m.SampleCount)
	profile, err := sampler.Profile(ctx, m.From, m.To)
	if err != nil {
		metrics.MeasurementsRefreshed.WithLabelValues("error").Inc()
		return fmt.Errorf("re-sample measurement %s: %w", id, err)
	}

	summary, err := usecases.Summarize(profile, m.DistanceMeters)
	if err != nil {
		metrics.MeasurementsRefreshed.WithLabelValues("error").Inc()
		return fmt.Errorf("summarize measurement %s: %w", id, err)
	}

	elevations := make([]float64, len(profile))
	for i, p := range profile {
		elevations[i] = p.Elevation
	}

	if err := a.Measurements.UpdateElevations(ctx, id, elevations, summary); err != nil {
		metrics.MeasurementsRefreshed.WithLabelValues("error").Inc()
		return fmt.Errorf("store refreshed measurement %s: %w", id, err)
	}
	metrics.MeasurementsRefreshed.WithLabelValues("ok").Inc()

	if a.Publisher != nil {
		m.Elevations = elevations
		m.Summary = summary
		if err := a.Publisher.PublishProfileCompleted(ctx, m); err != nil {
			// The refresh itself succeeded; the event is advisory.
			log.Printf("publish refreshed measurement %s: %v", id, err)
		}
	}
	return nil
}
