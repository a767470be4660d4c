package domain

import "time"

// Phase is the selection state of a session: how many endpoints are picked.
type Phase string

const (
	PhaseEmpty       Phase = "empty"
	PhaseOneSelected Phase = "one_selected"
	PhaseTwoSelected Phase = "two_selected"
)

// SelectionState is the tagged state of the two-point selection machine.
// A is set for one_selected and two_selected, B only for two_selected.
type SelectionState struct {
	Phase Phase     `json:"phase"`
	A     *GeoPoint `json:"a,omitempty"`
	B     *GeoPoint `json:"b,omitempty"`
}

// SessionStatus is the user-visible status of a measurement session.
type SessionStatus string

const (
	StatusSelectingStart SessionStatus = "selecting_start"
	StatusSelectingEnd   SessionStatus = "selecting_end"
	StatusComputing      SessionStatus = "computing"
	StatusReady          SessionStatus = "ready"
	StatusFailed         SessionStatus = "failed"
)

// SessionEvent is published on every status transition of a session.
type SessionEvent struct {
	SessionID      string        `json:"session_id"`
	Status         SessionStatus `json:"status"`
	Message        string        `json:"message,omitempty"`
	DistanceMeters float64       `json:"distance_meters,omitempty"`
	Summary        *PathSummary  `json:"summary,omitempty"`
	Time           time.Time     `json:"time"`
}

// SessionSnapshot is a point-in-time view of a session, safe to serialize.
type SessionSnapshot struct {
	ID          string           `json:"id"`
	Selection   SelectionState   `json:"selection"`
	Status      SessionStatus    `json:"status"`
	Message     string           `json:"message,omitempty"`
	Profile     ElevationProfile `json:"profile,omitempty"`
	Summary     *PathSummary     `json:"summary,omitempty"`
	CursorIndex *int             `json:"cursor_index,omitempty"`
	CursorPoint *GeoPoint        `json:"cursor_point,omitempty"`
}
