package openelevation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/enekolm/aldapa/internal/core/domain"
	"github.com/enekolm/aldapa/internal/pkg/metrics"
)

// DefaultBaseURL is the public Open-Elevation lookup endpoint.
const DefaultBaseURL = "https://api.open-elevation.com/api/v1/lookup"

// Client implements ports.ElevationProvider against the Open-Elevation API.
// One call resolves the whole sample set in a single batched POST.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// New creates a rate-limited Open-Elevation client. rps caps outgoing
// requests per second (default 5); timeout bounds each HTTP call.
func New(baseURL string, rps int, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if rps <= 0 {
		rps = 5
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(rate.Limit(rps), 1),
	}
}

type lookupLocation struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type lookupRequest struct {
	Locations []lookupLocation `json:"locations"`
}

type lookupResponse struct {
	Results []struct {
		Elevation *float64 `json:"elevation"`
	} `json:"results"`
}

// Elevations resolves one elevation per point, in order. A short response or
// a null elevation anywhere in the batch is a result mismatch: index
// correspondence with the request cannot be trusted.
func (c *Client) Elevations(ctx context.Context, points []domain.GeoPoint) ([]float64, error) {
	if len(points) == 0 {
		return nil, nil
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	reqBody := lookupRequest{Locations: make([]lookupLocation, len(points))}
	for i, p := range points {
		reqBody.Locations[i] = lookupLocation{Latitude: p.Lat, Longitude: p.Lon}
	}

	data, err := json.Marshal(reqBody)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.ProviderRequests.WithLabelValues("transport_error").Inc()
		return nil, fmt.Errorf("open-elevation request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.ProviderRequests.WithLabelValues(fmt.Sprintf("http_%d", resp.StatusCode)).Inc()
		return nil, fmt.Errorf("open-elevation status %d", resp.StatusCode)
	}

	var result lookupResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		metrics.ProviderRequests.WithLabelValues("decode_error").Inc()
		return nil, fmt.Errorf("open-elevation decode: %w", err)
	}

	if len(result.Results) != len(points) {
		metrics.ProviderRequests.WithLabelValues("mismatch").Inc()
		return nil, fmt.Errorf("%w: requested %d, got %d",
			domain.ErrResultMismatch, len(points), len(result.Results))
	}

	elevations := make([]float64, len(result.Results))
	for i, r := range result.Results {
		if r.Elevation == nil {
			metrics.ProviderRequests.WithLabelValues("mismatch").Inc()
			return nil, fmt.Errorf("%w: null elevation at index %d", domain.ErrResultMismatch, i)
		}
		elevations[i] = *r.Elevation
	}

	metrics.ProviderRequests.WithLabelValues("ok").Inc()
	return elevations, nil
}
