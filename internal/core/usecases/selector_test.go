package usecases_test

import (
	"testing"

	"github.com/enekolm/aldapa/internal/core/domain"
	"github.com/enekolm/aldapa/internal/core/usecases"
)

func click(lat, lon float64) domain.GeoPoint {
	return domain.GeoPoint{Lat: lat, Lon: lon}
}

func TestApplyClick_EmptyToOne(t *testing.T) {
	state := domain.SelectionState{Phase: domain.PhaseEmpty}

	next, effects := usecases.ApplyClick(state, click(10.0, 20.0))

	if next.Phase != domain.PhaseOneSelected {
		t.Fatalf("expected one_selected, got %s", next.Phase)
	}
	if next.A == nil || *next.A != click(10.0, 20.0) {
		t.Errorf("expected A=(10,20), got %+v", next.A)
	}
	if next.B != nil {
		t.Errorf("expected no B, got %+v", next.B)
	}
	if len(effects) != 1 || effects[0] != usecases.EffectClearProfile {
		t.Errorf("expected [EffectClearProfile], got %+v", effects)
	}
}

func TestApplyClick_OneToTwo(t *testing.T) {
	a := click(10.0, 20.0)
	state := domain.SelectionState{Phase: domain.PhaseOneSelected, A: &a}

	next, effects := usecases.ApplyClick(state, click(10.0, 20.1))

	if next.Phase != domain.PhaseTwoSelected {
		t.Fatalf("expected two_selected, got %s", next.Phase)
	}
	if *next.A != a {
		t.Errorf("A changed: %+v", next.A)
	}
	if next.B == nil || *next.B != click(10.0, 20.1) {
		t.Errorf("expected B=(10,20.1), got %+v", next.B)
	}
	if len(effects) != 1 || effects[0] != usecases.EffectStartLookup {
		t.Errorf("expected [EffectStartLookup], got %+v", effects)
	}
}

func TestApplyClick_ThirdClickRestarts(t *testing.T) {
	a, b := click(10.0, 20.0), click(10.0, 20.1)
	state := domain.SelectionState{Phase: domain.PhaseTwoSelected, A: &a, B: &b}

	next, effects := usecases.ApplyClick(state, click(43.0, -2.9))

	if next.Phase != domain.PhaseOneSelected {
		t.Fatalf("third click must re-enter one_selected, got %s", next.Phase)
	}
	if next.A == nil || *next.A != click(43.0, -2.9) {
		t.Errorf("expected A to be the new point, got %+v", next.A)
	}
	if next.B != nil {
		t.Errorf("B must be dropped, got %+v", next.B)
	}
	if len(effects) != 1 || effects[0] != usecases.EffectClearProfile {
		t.Errorf("expected [EffectClearProfile], got %+v", effects)
	}
}

func TestApplyClick_CycleNeverSkipsOneSelected(t *testing.T) {
	state := domain.SelectionState{Phase: domain.PhaseEmpty}

	want := []domain.Phase{
		domain.PhaseOneSelected,
		domain.PhaseTwoSelected,
		domain.PhaseOneSelected,
		domain.PhaseTwoSelected,
		domain.PhaseOneSelected,
		domain.PhaseTwoSelected,
	}

	for i, phase := range want {
		state, _ = usecases.ApplyClick(state, click(float64(i), float64(i)))
		if state.Phase != phase {
			t.Fatalf("click %d: expected %s, got %s", i+1, phase, state.Phase)
		}
		if state.Phase == domain.PhaseEmpty {
			t.Fatalf("click %d: machine fell back to empty", i+1)
		}
	}
}
