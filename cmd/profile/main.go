package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/enekolm/aldapa/internal/adapters/openelevation"
	"github.com/enekolm/aldapa/internal/core/domain"
	"github.com/enekolm/aldapa/internal/core/usecases"
	"github.com/enekolm/aldapa/internal/pkg/config"
	"github.com/enekolm/aldapa/internal/pkg/geospatial"
)

// profile computes one elevation profile from the command line and prints it,
// bypassing the API server. Useful for smoke-testing a provider endpoint.
func main() {
	fromLat := flag.Float64("from-lat", 0, "start latitude")
	fromLon := flag.Float64("from-lon", 0, "start longitude")
	toLat := flag.Float64("to-lat", 0, "end latitude")
	toLon := flag.Float64("to-lon", 0, "end longitude")
	asJSON := flag.Bool("json", false, "print the full profile as JSON")
	flag.Parse()

	cfg, err := config.Load("aldapa-profile")
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	from := domain.GeoPoint{Lat: *fromLat, Lon: *fromLon}
	to := domain.GeoPoint{Lat: *toLat, Lon: *toLon}
	if !from.Valid() || !to.Valid() {
		log.Fatal("from-lat, from-lon, to-lat, to-lon must be valid coordinates")
	}

	provider := openelevation.New(
		cfg.Elevation.BaseURL,
		cfg.Elevation.RequestsPerSec,
		time.Duration(cfg.Elevation.TimeoutSeconds)*time.Second,
	)
	sampler := usecases.NewElevationSampler(provider, nil, cfg.Elevation.SampleCount)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	profile, err := sampler.Profile(ctx, from, to)
	if err != nil {
		log.Fatalf("profile: %v", err)
	}

	distance := geospatial.Haversine(from.Lat, from.Lon, to.Lat, to.Lon)
	summary, err := usecases.Summarize(profile, distance)
	if err != nil {
		log.Fatalf("summarize: %v", err)
	}

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(map[string]interface{}{
			"profile": profile,
			"summary": summary,
		}); err != nil {
			log.Fatal(err)
		}
		return
	}

	fmt.Printf("distance: %.0f m over %d samples\n", summary.DistanceMeters, len(profile))
	fmt.Printf("start %.1f m, end %.1f m, min %.1f m, max %.1f m\n",
		summary.StartElevation, summary.EndElevation, summary.MinElevation, summary.MaxElevation)
	for i, p := range profile {
		fmt.Printf("%3d  %9.5f %10.5f  %8.1f m\n", i, p.Point.Lat, p.Point.Lon, p.Elevation)
	}
}
