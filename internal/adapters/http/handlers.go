package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/enekolm/aldapa/internal/core/domain"
	"github.com/enekolm/aldapa/internal/core/usecases"
	"github.com/enekolm/aldapa/internal/pkg/geospatial"
)

// clickRequest is the body of POST /v1/sessions/:id/clicks.
type clickRequest struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// cursorRequest is the body of POST /v1/sessions/:id/cursor.
type cursorRequest struct {
	Index int `json:"index"`
}

// CreateSessionHandler opens a new measurement session.
func CreateSessionHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		snap := deps.Sessions.Create(c.Context())
		return c.Status(201).JSON(snap)
	}
}

// GetSessionHandler returns the current snapshot of a session.
func GetSessionHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		snap, err := deps.Sessions.Snapshot(c.Context(), c.Params("id"))
		if err != nil {
			return errNotFound(c, "session not found")
		}
		return c.JSON(snap)
	}
}

// DeleteSessionHandler removes a session and aborts any pending lookup.
func DeleteSessionHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := deps.Sessions.Delete(c.Context(), c.Params("id")); err != nil {
			return errNotFound(c, "session not found")
		}
		return c.SendStatus(204)
	}
}

// ClickHandler applies one map click to a session. The second click of a
// pair starts the elevation lookup; the response snapshot reports status
// "computing" until the lookup lands.
func ClickHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req clickRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		snap, err := deps.Sessions.Click(c.Context(), c.Params("id"), domain.GeoPoint{Lat: req.Lat, Lon: req.Lon})
		if err != nil {
			if errors.Is(err, domain.ErrSessionNotFound) {
				return errNotFound(c, "session not found")
			}
			return errBadRequest(c, err.Error())
		}
		return c.JSON(snap)
	}
}

// SelectCursorHandler highlights the profile sample at the given index.
// Out-of-range indexes are accepted and ignored, so a chart hovering past
// the profile edge never faults the session.
func SelectCursorHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req cursorRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		snap, err := deps.Sessions.SelectCursor(c.Context(), c.Params("id"), req.Index)
		if err != nil {
			return errNotFound(c, "session not found")
		}
		return c.JSON(snap)
	}
}

// ClearCursorHandler unsets the highlighted sample.
func ClearCursorHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		snap, err := deps.Sessions.ClearCursor(c.Context(), c.Params("id"))
		if err != nil {
			return errNotFound(c, "session not found")
		}
		return c.JSON(snap)
	}
}

// ListMeasurementsHandler returns persisted measurements, newest first.
func ListMeasurementsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		offset := c.QueryInt("offset", 0)
		limit := c.QueryInt("limit", 50)

		items, total, err := deps.Measurements.List(c.Context(), offset, limit)
		if err != nil {
			return errInternal(c, err.Error())
		}

		pg := Pagination{Offset: offset, Limit: limit, Total: total}
		SetLinkHeaders(c, pg)
		return c.JSON(PaginatedResponse{Data: items, Pagination: pg})
	}
}

// GetMeasurementHandler returns a single persisted measurement.
func GetMeasurementHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if id == "" {
			return errBadRequest(c, "measurement id is required")
		}
		m, err := deps.Measurements.GetByID(c.Context(), id)
		if err != nil {
			return errNotFound(c, "measurement not found")
		}
		return c.JSON(m)
	}
}

// DeleteMeasurementHandler removes a persisted measurement.
func DeleteMeasurementHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if id == "" {
			return errBadRequest(c, "measurement id is required")
		}
		if err := deps.Measurements.Delete(c.Context(), id); err != nil {
			return errNotFound(c, "measurement not found")
		}
		return c.SendStatus(204)
	}
}

// profileResponse is the one-shot profile result.
type profileResponse struct {
	From    domain.GeoPoint         `json:"from"`
	To      domain.GeoPoint         `json:"to"`
	Profile domain.ElevationProfile `json:"profile"`
	Summary domain.PathSummary      `json:"summary"`
}

// ProfileHandler computes an elevation profile synchronously from query
// parameters, bypassing session state. Useful for scripted clients.
func ProfileHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		from := domain.GeoPoint{
			Lat: c.QueryFloat("from_lat", 0),
			Lon: c.QueryFloat("from_lon", 0),
		}
		to := domain.GeoPoint{
			Lat: c.QueryFloat("to_lat", 0),
			Lon: c.QueryFloat("to_lon", 0),
		}
		if !from.Valid() || !to.Valid() {
			return errBadRequest(c, "from_lat, from_lon, to_lat, to_lon must be valid coordinates")
		}

		sampler := deps.Sampler
		if samples := c.QueryInt("samples", 0); samples != 0 {
			if samples < 1 || samples > 500 {
				return errBadRequest(c, "samples must be between 1 and 500")
			}
			sampler = sampler.WithSampleCount(samples)
		}

		profile, err := sampler.Profile(c.Context(), from, to)
		if err != nil {
			if errors.Is(err, domain.ErrResultMismatch) || errors.Is(err, domain.ErrLookupFailure) {
				return errBadGateway(c, "elevation lookup failed")
			}
			return errInternal(c, err.Error())
		}

		distance := geospatial.Haversine(from.Lat, from.Lon, to.Lat, to.Lon)
		summary, err := usecases.Summarize(profile, distance)
		if err != nil {
			return errInternal(c, err.Error())
		}

		c.Set("Cache-Control", "public, max-age=3600")
		return c.JSON(profileResponse{From: from, To: to, Profile: profile, Summary: summary})
	}
}
