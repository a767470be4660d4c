package usecases

import (
	"github.com/enekolm/aldapa/internal/core/domain"
)

// ProfileCursor links a chart x-position and a map highlight through a shared
// sample index. It is bound to one profile; replacing the profile means
// building a fresh cursor.
type ProfileCursor struct {
	profile domain.ElevationProfile
	index   *int
}

// NewProfileCursor creates an unset cursor over the given profile.
func NewProfileCursor(profile domain.ElevationProfile) *ProfileCursor {
	return &ProfileCursor{profile: profile}
}

// Select sets the cursor to a chart-reported sample index. Out-of-range
// indexes are ignored, not errors: chart hit-testing is imprecise at the
// edges. Returns whether the selection was applied.
func (c *ProfileCursor) Select(index int) bool {
	if index < 0 || index >= len(c.profile) {
		return false
	}
	c.index = &index
	return true
}

// Clear unsets the cursor.
func (c *ProfileCursor) Clear() {
	c.index = nil
}

// Index returns the selected sample index, or nil when nothing is highlighted.
func (c *ProfileCursor) Index() *int {
	return c.index
}

// Point returns the map point to highlight for the current selection.
func (c *ProfileCursor) Point() *domain.GeoPoint {
	if c.index == nil {
		return nil
	}
	p := c.profile[*c.index].Point
	return &p
}
