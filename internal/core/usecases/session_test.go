package usecases_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/enekolm/aldapa/internal/core/domain"
	"github.com/enekolm/aldapa/internal/core/usecases"
)

// blockingProvider parks every lookup until the test releases it. It ignores
// context cancellation on purpose: that is how a slow provider delivers a
// result for a selection the user has already abandoned.
type blockingProvider struct {
	mu      sync.Mutex
	waiters []chan lookupResult
}

type lookupResult struct {
	elevations []float64
	err        error
}

func (p *blockingProvider) Elevations(ctx context.Context, points []domain.GeoPoint) ([]float64, error) {
	ch := make(chan lookupResult, 1)
	p.mu.Lock()
	p.waiters = append(p.waiters, ch)
	p.mu.Unlock()

	res := <-ch
	return res.elevations, res.err
}

func (p *blockingProvider) calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.waiters)
}

// waiter blocks until the nth lookup (0-based) has registered; lookups run
// in goroutines, so they may not have reached the provider yet.
func (p *blockingProvider) waiter(n int) chan lookupResult {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		p.mu.Lock()
		if n < len(p.waiters) {
			ch := p.waiters[n]
			p.mu.Unlock()
			return ch
		}
		p.mu.Unlock()
		time.Sleep(5 * time.Millisecond)
	}
	panic(fmt.Sprintf("timed out waiting for lookup %d", n))
}

// release completes the nth lookup (0-based) with a flat elevation value.
func (p *blockingProvider) release(n int, elevation float64, count int) {
	elevs := make([]float64, count)
	for i := range elevs {
		elevs[i] = elevation
	}
	p.waiter(n) <- lookupResult{elevations: elevs}
}

func (p *blockingProvider) fail(n int, err error) {
	p.waiter(n) <- lookupResult{err: err}
}

// --- Mock measurement repo ---

type mockMeasurementRepo struct {
	mu       sync.Mutex
	inserted []domain.Measurement
}

func (m *mockMeasurementRepo) Insert(ctx context.Context, meas *domain.Measurement) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inserted = append(m.inserted, *meas)
	return nil
}

func (m *mockMeasurementRepo) GetByID(ctx context.Context, id string) (*domain.Measurement, error) {
	return nil, errors.New("not found")
}

func (m *mockMeasurementRepo) List(ctx context.Context, offset, limit int) ([]domain.Measurement, int, error) {
	return nil, 0, nil
}

func (m *mockMeasurementRepo) ListStale(ctx context.Context, olderThanDays, limit int) ([]domain.Measurement, error) {
	return nil, nil
}

func (m *mockMeasurementRepo) UpdateElevations(ctx context.Context, id string, elevations []float64, summary domain.PathSummary) error {
	return nil
}

func (m *mockMeasurementRepo) Delete(ctx context.Context, id string) error { return nil }

func (m *mockMeasurementRepo) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.inserted)
}

// --- Helpers ---

func newService(t *testing.T, provider *blockingProvider, repo *mockMeasurementRepo) *usecases.SessionService {
	t.Helper()
	sampler := usecases.NewElevationSampler(provider, nil, 50)
	var svc *usecases.SessionService
	if repo != nil {
		svc = usecases.NewSessionService(sampler, repo, nil)
	} else {
		svc = usecases.NewSessionService(sampler, nil, nil)
	}
	t.Cleanup(svc.Close)
	return svc
}

func waitStatus(t *testing.T, svc *usecases.SessionService, id string, want domain.SessionStatus) *domain.SessionSnapshot {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		snap, err := svc.Snapshot(context.Background(), id)
		if err != nil {
			t.Fatalf("snapshot: %v", err)
		}
		if snap.Status == want {
			return snap
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for status %s", want)
	return nil
}

func waitCalls(t *testing.T, provider *blockingProvider, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if provider.calls() >= want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d provider calls", want)
}

// --- Tests ---

func TestSession_ClickSequence(t *testing.T) {
	provider := &blockingProvider{}
	svc := newService(t, provider, nil)
	ctx := context.Background()

	snap := svc.Create(ctx)
	if snap.Status != domain.StatusSelectingStart {
		t.Fatalf("expected selecting_start, got %s", snap.Status)
	}
	if snap.Selection.Phase != domain.PhaseEmpty {
		t.Fatalf("expected empty, got %s", snap.Selection.Phase)
	}

	snap, err := svc.Click(ctx, snap.ID, click(10.0, 20.0))
	if err != nil {
		t.Fatalf("click: %v", err)
	}
	if snap.Selection.Phase != domain.PhaseOneSelected {
		t.Fatalf("expected one_selected, got %s", snap.Selection.Phase)
	}
	if snap.Status != domain.StatusSelectingEnd {
		t.Fatalf("expected selecting_end, got %s", snap.Status)
	}

	snap, err = svc.Click(ctx, snap.ID, click(10.0, 20.1))
	if err != nil {
		t.Fatalf("click: %v", err)
	}
	if snap.Selection.Phase != domain.PhaseTwoSelected {
		t.Fatalf("expected two_selected, got %s", snap.Selection.Phase)
	}
	if snap.Status != domain.StatusComputing {
		t.Fatalf("expected computing, got %s", snap.Status)
	}

	provider.release(0, 100, 51)
	snap = waitStatus(t, svc, snap.ID, domain.StatusReady)

	if len(snap.Profile) != 51 {
		t.Fatalf("expected 51 profile points, got %d", len(snap.Profile))
	}
	if snap.Profile[0].Point != click(10.0, 20.0) || snap.Profile[50].Point != click(10.0, 20.1) {
		t.Error("profile endpoints do not match the selection")
	}
	if snap.Summary == nil {
		t.Fatal("expected summary on ready")
	}
	if snap.Summary.DistanceMeters < 10910 || snap.Summary.DistanceMeters > 11010 {
		t.Errorf("expected ~10960 m, got %f", snap.Summary.DistanceMeters)
	}
}

func TestSession_LookupFailureResets(t *testing.T) {
	provider := &blockingProvider{}
	svc := newService(t, provider, nil)
	ctx := context.Background()

	snap := svc.Create(ctx)
	_, _ = svc.Click(ctx, snap.ID, click(1, 1))
	_, _ = svc.Click(ctx, snap.ID, click(2, 2))

	provider.fail(0, errors.New("connection reset"))
	snap = waitStatus(t, svc, snap.ID, domain.StatusFailed)

	if len(snap.Profile) != 0 {
		t.Errorf("profile must be empty after failure, got %d points", len(snap.Profile))
	}
	if snap.CursorIndex != nil {
		t.Error("cursor must be cleared after failure")
	}
	if snap.Summary != nil {
		t.Error("summary must be cleared after failure")
	}
}

func TestSession_ResultCountMismatch(t *testing.T) {
	provider := &blockingProvider{}
	svc := newService(t, provider, nil)
	ctx := context.Background()

	snap := svc.Create(ctx)
	_, _ = svc.Click(ctx, snap.ID, click(1, 1))
	_, _ = svc.Click(ctx, snap.ID, click(2, 2))

	// 50 elevations for 51 samples.
	provider.release(0, 100, 50)
	snap = waitStatus(t, svc, snap.ID, domain.StatusFailed)

	if len(snap.Profile) != 0 {
		t.Errorf("profile must stay empty on mismatch, got %d points", len(snap.Profile))
	}
}

func TestSession_ThirdClickSupersedesPendingLookup(t *testing.T) {
	provider := &blockingProvider{}
	svc := newService(t, provider, nil)
	ctx := context.Background()

	snap := svc.Create(ctx)
	_, _ = svc.Click(ctx, snap.ID, click(1, 1))
	_, _ = svc.Click(ctx, snap.ID, click(2, 2))
	waitCalls(t, provider, 1)

	// Third click restarts selection while the lookup is still in flight.
	snap, err := svc.Click(ctx, snap.ID, click(3, 3))
	if err != nil {
		t.Fatalf("click: %v", err)
	}
	if snap.Selection.Phase != domain.PhaseOneSelected {
		t.Fatalf("expected one_selected, got %s", snap.Selection.Phase)
	}

	// The superseded lookup completes late; its result must be dropped.
	provider.release(0, 100, 51)
	time.Sleep(100 * time.Millisecond)

	snap, _ = svc.Snapshot(ctx, snap.ID)
	if snap.Status != domain.StatusSelectingEnd {
		t.Errorf("stale result leaked: status %s", snap.Status)
	}
	if len(snap.Profile) != 0 {
		t.Errorf("stale result leaked: %d profile points", len(snap.Profile))
	}
}

func TestSession_StaleGenerationDoesNotOverwriteNewer(t *testing.T) {
	provider := &blockingProvider{}
	svc := newService(t, provider, nil)
	ctx := context.Background()

	snap := svc.Create(ctx)
	_, _ = svc.Click(ctx, snap.ID, click(1, 1))
	_, _ = svc.Click(ctx, snap.ID, click(2, 2)) // generation 1
	waitCalls(t, provider, 1)

	_, _ = svc.Click(ctx, snap.ID, click(3, 3)) // restart
	_, _ = svc.Click(ctx, snap.ID, click(4, 4)) // generation 2
	waitCalls(t, provider, 2)

	// Generation 2 completes first, then generation 1 arrives late.
	provider.release(1, 200, 51)
	snap = waitStatus(t, svc, snap.ID, domain.StatusReady)

	provider.release(0, 100, 51)
	time.Sleep(100 * time.Millisecond)

	snap, _ = svc.Snapshot(ctx, snap.ID)
	if snap.Status != domain.StatusReady {
		t.Fatalf("expected ready, got %s", snap.Status)
	}
	for i, p := range snap.Profile {
		if p.Elevation != 200 {
			t.Fatalf("stale generation overwrote profile at %d: %f", i, p.Elevation)
		}
	}
}

func TestSession_CursorLifecycle(t *testing.T) {
	provider := &blockingProvider{}
	svc := newService(t, provider, nil)
	ctx := context.Background()

	snap := svc.Create(ctx)
	_, _ = svc.Click(ctx, snap.ID, click(1, 1))
	_, _ = svc.Click(ctx, snap.ID, click(2, 2))
	provider.release(0, 100, 51)
	waitStatus(t, svc, snap.ID, domain.StatusReady)

	snap, err := svc.SelectCursor(ctx, snap.ID, 25)
	if err != nil {
		t.Fatalf("select cursor: %v", err)
	}
	if snap.CursorIndex == nil || *snap.CursorIndex != 25 {
		t.Fatalf("expected cursor 25, got %v", snap.CursorIndex)
	}
	if snap.CursorPoint == nil {
		t.Fatal("expected a highlight point")
	}
	if *snap.CursorPoint != snap.Profile[25].Point {
		t.Error("highlight point does not match sample 25")
	}

	// Out of range leaves the cursor unchanged.
	snap, _ = svc.SelectCursor(ctx, snap.ID, 51)
	if snap.CursorIndex == nil || *snap.CursorIndex != 25 {
		t.Errorf("out-of-range select mutated cursor: %v", snap.CursorIndex)
	}

	snap, _ = svc.ClearCursor(ctx, snap.ID)
	if snap.CursorIndex != nil {
		t.Errorf("expected cleared cursor, got %v", snap.CursorIndex)
	}

	// A new click clears profile and cursor together.
	snap, _ = svc.SelectCursor(ctx, snap.ID, 10)
	snap, _ = svc.Click(ctx, snap.ID, click(5, 5))
	if snap.CursorIndex != nil {
		t.Error("cursor survived a profile reset")
	}
	if len(snap.Profile) != 0 {
		t.Error("profile survived a selection reset")
	}
}

func TestSession_MeasurementPersistedOnSuccess(t *testing.T) {
	provider := &blockingProvider{}
	repo := &mockMeasurementRepo{}
	svc := newService(t, provider, repo)
	ctx := context.Background()

	snap := svc.Create(ctx)
	_, _ = svc.Click(ctx, snap.ID, click(10.0, 20.0))
	_, _ = svc.Click(ctx, snap.ID, click(10.0, 20.1))
	provider.release(0, 120, 51)
	waitStatus(t, svc, snap.ID, domain.StatusReady)

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) && repo.count() == 0 {
		time.Sleep(5 * time.Millisecond)
	}
	if repo.count() != 1 {
		t.Fatalf("expected 1 persisted measurement, got %d", repo.count())
	}

	repo.mu.Lock()
	m := repo.inserted[0]
	repo.mu.Unlock()
	if len(m.Elevations) != 51 {
		t.Errorf("expected 51 elevations, got %d", len(m.Elevations))
	}
	if m.SampleCount != 50 {
		t.Errorf("expected sample count 50, got %d", m.SampleCount)
	}
}

func TestSession_InvalidCoordinateRejected(t *testing.T) {
	svc := newService(t, &blockingProvider{}, nil)
	snap := svc.Create(context.Background())

	if _, err := svc.Click(context.Background(), snap.ID, click(91, 0)); err == nil {
		t.Error("expected error for latitude out of range")
	}
	if _, err := svc.Click(context.Background(), snap.ID, click(0, 181)); err == nil {
		t.Error("expected error for longitude out of range")
	}
}

func TestSession_NotFound(t *testing.T) {
	svc := newService(t, &blockingProvider{}, nil)

	_, err := svc.Snapshot(context.Background(), "missing")
	if !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}

	if err := svc.Delete(context.Background(), "missing"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound on delete, got %v", err)
	}
}

func TestSession_DeleteRemovesSession(t *testing.T) {
	svc := newService(t, &blockingProvider{}, nil)
	ctx := context.Background()

	snap := svc.Create(ctx)
	if err := svc.Delete(ctx, snap.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := svc.Snapshot(ctx, snap.ID); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound after delete, got %v", err)
	}
}
