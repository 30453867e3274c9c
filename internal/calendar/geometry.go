package calendar

import (
	"time"

	"styllobarbe/internal/slots"
)

// Geometry maps event times onto the day/week spatial grid. The grid rows
// match the availability generator's granularity, so the calendar and the
// slot picker always line up.
type Geometry struct {
	Grid            slots.Grid
	SlotHeightPx    int
	MinSlotHeightPx int
}

// DefaultGeometry uses 40px rows with a 20px minimum event height.
func DefaultGeometry(grid slots.Grid) Geometry {
	return Geometry{Grid: grid, SlotHeightPx: 40, MinSlotHeightPx: 20}
}

// OffsetY returns the vertical pixel offset for an instant: its slot index
// times the row height. Identical inputs always yield identical offsets.
func (g Geometry) OffsetY(t time.Time) int {
	return g.Grid.SlotIndex(t) * g.SlotHeightPx
}

// Height returns the pixel height for a duration, never below the minimum.
func (g Geometry) Height(d time.Duration) int {
	h := int(d * time.Duration(g.SlotHeightPx) / g.Grid.Granularity)
	if h < g.MinSlotHeightPx {
		return g.MinSlotHeightPx
	}
	return h
}

// Box returns the (offsetY, height) pair for an event.
func (g Geometry) Box(e Event) (int, int) {
	return g.OffsetY(e.Start), g.Height(e.EndTime.Sub(e.Start))
}
