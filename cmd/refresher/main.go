package main

import (
	"context"
	"log"
	"time"

	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"

	natsadapter "github.com/enekolm/aldapa/internal/adapters/nats"
	"github.com/enekolm/aldapa/internal/adapters/openelevation"
	"github.com/enekolm/aldapa/internal/adapters/postgres"
	"github.com/enekolm/aldapa/internal/adapters/valkey"
	"github.com/enekolm/aldapa/internal/core/ports"
	"github.com/enekolm/aldapa/internal/pkg/config"
	"github.com/enekolm/aldapa/internal/workflows"
)

func main() {
	cfg, err := config.Load("aldapa-refresher")
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx := context.Background()

	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	var cacheSvc ports.CacheService
	if cache, err := valkey.New(cfg.Valkey.Addr); err != nil {
		log.Printf("valkey unavailable: %v", err)
	} else {
		cacheSvc = cache
		defer cache.Close()
	}

	var publisher ports.EventPublisher
	if nc, err := natsadapter.NewPublisher(cfg.NATS.URL); err != nil {
		log.Printf("nats unavailable: %v", err)
	} else {
		publisher = nc
		defer nc.Close()
	}

	provider := openelevation.New(
		cfg.Elevation.BaseURL,
		cfg.Elevation.RequestsPerSec,
		time.Duration(cfg.Elevation.TimeoutSeconds)*time.Second,
	)

	// Connect to Temporal
	c, err := client.Dial(client.Options{
		HostPort: "localhost:7233",
	})
	if err != nil {
		log.Fatalf("temporal client: %v", err)
	}
	defer c.Close()

	w := worker.New(c, "measurement-refresh-queue", worker.Options{})

	// Register workflow & activities
	w.RegisterWorkflow(workflows.RefreshMeasurementsWorkflow)
	w.RegisterActivity(&workflows.RefreshActivities{
		Measurements: postgres.NewMeasurementRepo(db),
		Provider:     provider,
		Cache:        cacheSvc,
		Publisher:    publisher,
	})

	// Nightly refresh of measurements older than 90 days
	_, err = c.ExecuteWorkflow(ctx, client.StartWorkflowOptions{
		ID:           "measurement-refresh",
		TaskQueue:    "measurement-refresh-queue",
		CronSchedule: "0 3 * * *",
	}, workflows.RefreshMeasurementsWorkflow, workflows.RefreshInput{OlderThanDays: 90, BatchSize: 100})
	if err != nil {
		log.Printf("schedule refresh workflow: %v", err)
	}

	log.Println("refresher worker started")
	if err := w.Run(worker.InterruptCh()); err != nil {
		log.Fatalf("worker: %v", err)
	}
}
