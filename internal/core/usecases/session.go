package usecases

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/enekolm/aldapa/internal/core/domain"
	"github.com/enekolm/aldapa/internal/core/ports"
	"github.com/enekolm/aldapa/internal/pkg/geospatial"
	"github.com/enekolm/aldapa/internal/pkg/metrics"
)

const (
	defaultSessionTTL  = 30 * time.Minute
	sessionSweepPeriod = time.Minute
)

// session is one user's measurement state. All mutation goes through mu, so
// click handling and lookup completion are serialized per session; the
// generation counter decides whether a completed lookup still applies.
type session struct {
	mu         sync.Mutex
	id         string
	state      domain.SelectionState
	samples    []domain.GeoPoint
	profile    domain.ElevationProfile
	summary    *domain.PathSummary
	cursor     *ProfileCursor
	status     domain.SessionStatus
	message    string
	distance   float64
	generation uint64
	cancel     context.CancelFunc
	touched    time.Time
}

// SessionService owns measurement sessions and drives the pipeline: clicks
// through the selection machine, lookups through the sampler, completed
// profiles into the measurement history.
type SessionService struct {
	mu       sync.RWMutex
	sessions map[string]*session

	sampler      *ElevationSampler
	measurements ports.MeasurementRepository
	publisher    ports.EventPublisher
	ttl          time.Duration
	done         chan struct{}
}

// NewSessionService creates the service and starts the idle-session sweeper.
// measurements and publisher may be nil; persistence and events are then
// skipped.
func NewSessionService(sampler *ElevationSampler, measurements ports.MeasurementRepository, publisher ports.EventPublisher) *SessionService {
	s := &SessionService{
		sessions:     make(map[string]*session),
		sampler:      sampler,
		measurements: measurements,
		publisher:    publisher,
		ttl:          defaultSessionTTL,
		done:         make(chan struct{}),
	}
	go s.sweep()
	return s
}

// Close stops the idle-session sweeper.
func (s *SessionService) Close() {
	close(s.done)
}

// Create starts a new empty session.
func (s *SessionService) Create(ctx context.Context) *domain.SessionSnapshot {
	id := newSessionID()
	sess := &session{
		id:      id,
		state:   domain.SelectionState{Phase: domain.PhaseEmpty},
		status:  domain.StatusSelectingStart,
		touched: time.Now(),
	}

	s.mu.Lock()
	s.sessions[id] = sess
	metrics.ActiveSessions.Set(float64(len(s.sessions)))
	s.mu.Unlock()

	s.publishStatus(ctx, sess.id, domain.StatusSelectingStart, "", 0, nil)

	snap := sess.snapshot()
	return &snap
}

// Click applies one map click to the session. The one_selected→two_selected
// transition starts a generation-stamped asynchronous lookup; any other
// transition clears the profile and supersedes a pending lookup.
func (s *SessionService) Click(ctx context.Context, sessionID string, p domain.GeoPoint) (*domain.SessionSnapshot, error) {
	if !p.Valid() {
		return nil, fmt.Errorf("coordinate out of range: %.4f, %.4f", p.Lat, p.Lon)
	}

	sess, err := s.get(sessionID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	sess.touched = time.Now()

	next, effects := ApplyClick(sess.state, p)
	sess.state = next

	var evt *domain.SessionEvent
	for _, effect := range effects {
		switch effect {
		case EffectClearProfile:
			sess.supersedeLocked()
			sess.clearProfileLocked()
			sess.status = domain.StatusSelectingEnd
			sess.message = ""
			evt = sess.eventLocked()

		case EffectStartLookup:
			evt = s.startLookupLocked(sess)
		}
	}

	snap := sess.snapshot()
	sess.mu.Unlock()

	if evt != nil {
		s.publish(ctx, evt)
	}
	return &snap, nil
}

// SelectCursor highlights the sample at a chart-reported index. Out-of-range
// indexes leave the cursor untouched.
func (s *SessionService) SelectCursor(ctx context.Context, sessionID string, index int) (*domain.SessionSnapshot, error) {
	sess, err := s.get(sessionID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.touched = time.Now()

	if sess.cursor != nil {
		sess.cursor.Select(index)
	}

	snap := sess.snapshot()
	return &snap, nil
}

// ClearCursor unsets the highlighted sample.
func (s *SessionService) ClearCursor(ctx context.Context, sessionID string) (*domain.SessionSnapshot, error) {
	sess, err := s.get(sessionID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.touched = time.Now()

	if sess.cursor != nil {
		sess.cursor.Clear()
	}

	snap := sess.snapshot()
	return &snap, nil
}

// Snapshot returns the current view of a session.
func (s *SessionService) Snapshot(ctx context.Context, sessionID string) (*domain.SessionSnapshot, error) {
	sess, err := s.get(sessionID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	snap := sess.snapshot()
	return &snap, nil
}

// Delete removes a session and discards any in-flight lookup.
func (s *SessionService) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	sess, ok := s.sessions[sessionID]
	if ok {
		delete(s.sessions, sessionID)
	}
	metrics.ActiveSessions.Set(float64(len(s.sessions)))
	s.mu.Unlock()

	if !ok {
		return domain.ErrSessionNotFound
	}

	sess.mu.Lock()
	sess.supersedeLocked()
	sess.mu.Unlock()
	return nil
}

func (s *SessionService) get(id string) (*session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return sess, nil
}

// startLookupLocked transitions the session into computing and launches the
// lookup goroutine. Caller holds sess.mu.
func (s *SessionService) startLookupLocked(sess *session) *domain.SessionEvent {
	from, to := *sess.state.A, *sess.state.B

	sess.supersedeLocked()
	sess.clearProfileLocked()

	sess.distance = geospatial.Haversine(from.Lat, from.Lon, to.Lat, to.Lon)

	samples, err := geospatial.Interpolate(from, to, s.sampler.SampleCount())
	if err != nil {
		// Unreachable with a validated sample count.
		sess.status = domain.StatusFailed
		sess.message = err.Error()
		return sess.eventLocked()
	}
	sess.samples = samples

	sess.generation++
	gen := sess.generation

	// The lookup outlives the triggering request, so it gets its own
	// context; superseding the generation also cancels it.
	ctx, cancel := context.WithCancel(context.Background())
	sess.cancel = cancel

	sess.status = domain.StatusComputing
	sess.message = ""

	go s.runLookup(ctx, sess, gen, from, to)

	return sess.eventLocked()
}

// runLookup resolves the profile and applies the result if the generation is
// still current. Stale results are dropped without surfacing anything.
func (s *SessionService) runLookup(ctx context.Context, sess *session, gen uint64, from, to domain.GeoPoint) {
	start := time.Now()
	profile, err := s.sampler.Profile(ctx, from, to)
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	metrics.LookupDuration.WithLabelValues(outcome).Observe(time.Since(start).Seconds())

	sess.mu.Lock()
	if gen != sess.generation {
		sess.mu.Unlock()
		metrics.StaleResultsDropped.Inc()
		slog.Debug("stale lookup result dropped", "session", sess.id, "generation", gen)
		return
	}
	sess.cancel = nil

	var evt *domain.SessionEvent
	var measurement *domain.Measurement

	if err != nil {
		sess.clearProfileLocked()
		sess.status = domain.StatusFailed
		sess.message = err.Error()
		metrics.LookupsTotal.WithLabelValues("failed").Inc()
		evt = sess.eventLocked()
	} else {
		sess.profile = profile
		sess.cursor = NewProfileCursor(profile)

		summary, sumErr := Summarize(profile, sess.distance)
		if sumErr == nil {
			sess.summary = &summary
		}
		sess.status = domain.StatusReady
		sess.message = ""
		metrics.LookupsTotal.WithLabelValues("ok").Inc()
		evt = sess.eventLocked()
		measurement = measurementLocked(sess, from, to, s.sampler.SampleCount())
	}
	sess.mu.Unlock()

	bg := context.Background()
	s.publish(bg, evt)

	if measurement != nil && s.measurements != nil {
		if err := s.measurements.Insert(bg, measurement); err != nil {
			slog.Warn("measurement insert failed", "session", sess.id, "error", err)
		} else if s.publisher != nil {
			_ = s.publisher.PublishProfileCompleted(bg, measurement)
		}
	}
}

// supersedeLocked invalidates any in-flight lookup: the generation moves on
// and the lookup's context is cancelled. Caller holds sess.mu.
func (sess *session) supersedeLocked() {
	sess.generation++
	if sess.cancel != nil {
		sess.cancel()
		sess.cancel = nil
	}
}

// clearProfileLocked resets cursor first, then profile, samples, and summary.
// Cursor goes first so no observer ever sees a cursor over a dead profile.
func (sess *session) clearProfileLocked() {
	sess.cursor = nil
	sess.profile = nil
	sess.samples = nil
	sess.summary = nil
	sess.distance = 0
}

func (sess *session) eventLocked() *domain.SessionEvent {
	evt := &domain.SessionEvent{
		SessionID: sess.id,
		Status:    sess.status,
		Message:   sess.message,
		Time:      time.Now(),
	}
	if sess.status == domain.StatusComputing || sess.status == domain.StatusReady {
		evt.DistanceMeters = sess.distance
	}
	evt.Summary = sess.summary
	return evt
}

func (sess *session) snapshot() domain.SessionSnapshot {
	snap := domain.SessionSnapshot{
		ID:        sess.id,
		Selection: sess.state,
		Status:    sess.status,
		Message:   sess.message,
		Profile:   sess.profile,
		Summary:   sess.summary,
	}
	if sess.cursor != nil {
		snap.CursorIndex = sess.cursor.Index()
		snap.CursorPoint = sess.cursor.Point()
	}
	return snap
}

func measurementLocked(sess *session, from, to domain.GeoPoint, sampleCount int) *domain.Measurement {
	if sess.summary == nil {
		return nil
	}
	elevations := make([]float64, len(sess.profile))
	for i, p := range sess.profile {
		elevations[i] = p.Elevation
	}
	return &domain.Measurement{
		From:           from,
		To:             to,
		DistanceMeters: sess.distance,
		SampleCount:    sampleCount,
		Elevations:     elevations,
		Summary:        *sess.summary,
		CreatedAt:      time.Now(),
	}
}

func (s *SessionService) publishStatus(ctx context.Context, id string, status domain.SessionStatus, msg string, distance float64, summary *domain.PathSummary) {
	s.publish(ctx, &domain.SessionEvent{
		SessionID:      id,
		Status:         status,
		Message:        msg,
		DistanceMeters: distance,
		Summary:        summary,
		Time:           time.Now(),
	})
}

func (s *SessionService) publish(ctx context.Context, evt *domain.SessionEvent) {
	if s.publisher == nil || evt == nil {
		return
	}
	if err := s.publisher.PublishSessionStatus(ctx, evt); err != nil {
		slog.Warn("status publish failed", "session", evt.SessionID, "error", err)
	}
}

// sweep evicts sessions idle longer than the TTL.
func (s *SessionService) sweep() {
	ticker := time.NewTicker(sessionSweepPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			cutoff := time.Now().Add(-s.ttl)
			s.mu.Lock()
			for id, sess := range s.sessions {
				sess.mu.Lock()
				idle := sess.touched.Before(cutoff)
				if idle {
					sess.supersedeLocked()
				}
				sess.mu.Unlock()
				if idle {
					delete(s.sessions, id)
				}
			}
			metrics.ActiveSessions.Set(float64(len(s.sessions)))
			s.mu.Unlock()
		case <-s.done:
			return
		}
	}
}

func newSessionID() string {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(b)
}
