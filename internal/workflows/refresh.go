package workflows

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"
)

// RefreshInput is the input for the measurement refresh workflow.
type RefreshInput struct {
	OlderThanDays int
	BatchSize     int
}

// RefreshMeasurementsWorkflow re-samples the elevation data of persisted
// measurements that have not been refreshed recently. Elevation datasets get
// corrections over time; stored profiles drift out of sync with them.
// Each measurement is refreshed in its own activity so one bad segment
// does not fail the whole batch.
func RefreshMeasurementsWorkflow(ctx workflow.Context, input RefreshInput) error {
	logger := workflow.GetLogger(ctx)
	logger.Info("Starting measurement refresh", "olderThanDays", input.OlderThanDays)

	if input.OlderThanDays <= 0 {
		input.OlderThanDays = 90
	}
	if input.BatchSize <= 0 {
		input.BatchSize = 100
	}

	actOpts := workflow.ActivityOptions{
		StartToCloseTimeout: 60 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 3,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, actOpts)

	// Step 1: Find stale measurements
	var ids []string
	err := workflow.ExecuteActivity(ctx, "ListStaleMeasurements", input.OlderThanDays, input.BatchSize).Get(ctx, &ids)
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		logger.Info("No stale measurements")
		return nil
	}

	// Step 2: Refresh each one; collect failures but keep going
	failed := 0
	for _, id := range ids {
		if err := workflow.ExecuteActivity(ctx, "RefreshMeasurement", id).Get(ctx, nil); err != nil {
			logger.Warn("refresh failed", "measurement", id, "error", err)
			failed++
		}
	}

	logger.Info("Measurement refresh done", "total", len(ids), "failed", failed)
	return nil
}
