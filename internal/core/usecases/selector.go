package usecases

import (
	"github.com/enekolm/aldapa/internal/core/domain"
)

// Effect is a side effect requested by a selection transition. The caller
// owns the mutable session state; the machine itself never touches it.
type Effect int

const (
	// EffectClearProfile drops the current profile, sample set, and cursor,
	// and discards any in-flight lookup.
	EffectClearProfile Effect = iota
	// EffectStartLookup begins the elevation pipeline for the selected pair.
	EffectStartLookup
)

// ApplyClick advances the two-point selection machine by one click.
// It is a strict function of (state, point): empty and two_selected both move
// to one_selected with the clicked point as the new start; one_selected
// completes the pair and requests the lookup. It never fails.
func ApplyClick(state domain.SelectionState, p domain.GeoPoint) (domain.SelectionState, []Effect) {
	switch state.Phase {
	case domain.PhaseOneSelected:
		return domain.SelectionState{
			Phase: domain.PhaseTwoSelected,
			A:     state.A,
			B:     &p,
		}, []Effect{EffectStartLookup}

	case domain.PhaseTwoSelected:
		return domain.SelectionState{
			Phase: domain.PhaseOneSelected,
			A:     &p,
		}, []Effect{EffectClearProfile}

	default: // empty
		return domain.SelectionState{
			Phase: domain.PhaseOneSelected,
			A:     &p,
		}, []Effect{EffectClearProfile}
	}
}
