package http

import (
	"github.com/nats-io/nats.go"

	"github.com/enekolm/aldapa/internal/adapters/postgres"
	"github.com/enekolm/aldapa/internal/adapters/valkey"
	"github.com/enekolm/aldapa/internal/core/usecases"
)

// Dependencies holds all services needed by HTTP handlers.
type Dependencies struct {
	Sessions     *usecases.SessionService
	Measurements *usecases.MeasurementService
	Sampler      *usecases.ElevationSampler
	NATS         *nats.Conn
	DB           *postgres.DB
	Cache        *valkey.Cache
}
