// Package calendar projects appointments onto day, week and month viewing
// windows, including the spatial slot-grid mapping used by day and week
// layouts.
package calendar

import (
	"time"

	"styllobarbe/internal/clock"
	"styllobarbe/internal/filters"
	"styllobarbe/internal/models"
)

// Mode is the active calendar view mode.
type Mode string

const (
	ModeDay   Mode = "day"
	ModeWeek  Mode = "week"
	ModeMonth Mode = "month"
)

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	return m == ModeDay || m == ModeWeek || m == ModeMonth
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func firstOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// Window returns the half-open interval [start, end) covered by mode at
// ref. Weeks start on Sunday. The month window is the calendar month; use
// GridWindow for the padded rendering grid.
func Window(mode Mode, ref time.Time) (time.Time, time.Time) {
	switch mode {
	case ModeDay:
		start := midnight(ref)
		return start, start.AddDate(0, 0, 1)
	case ModeWeek:
		start := midnight(ref).AddDate(0, 0, -int(ref.Weekday()))
		return start, start.AddDate(0, 0, 7)
	case ModeMonth:
		start := firstOfMonth(ref)
		return start, start.AddDate(0, 1, 0)
	default:
		start := midnight(ref)
		return start, start.AddDate(0, 0, 1)
	}
}

// GridWindow returns the month rendering window padded to full weeks:
// leading days of the previous month and trailing days of the next, so the
// grid always starts on a Sunday and ends on a Saturday (half-open).
func GridWindow(ref time.Time) (time.Time, time.Time) {
	start, end := Window(ModeMonth, ref)
	start = start.AddDate(0, 0, -int(start.Weekday()))
	if pad := int(end.Weekday()); pad > 0 {
		end = end.AddDate(0, 0, 7-pad)
	}
	return start, end
}

// View is the calendar's navigation state: active mode, reference date and
// filter spec.
type View struct {
	Mode    Mode
	Ref     time.Time
	Filters models.AppointmentFilters
}

// NewView creates a view in month mode anchored on today.
func NewView(clk clock.Clock) *View {
	return &View{Mode: ModeMonth, Ref: clk.Now()}
}

// SetMode switches the view mode, keeping the reference date.
func (v *View) SetMode(mode Mode) {
	if mode.Valid() {
		v.Mode = mode
	}
}

// Window returns the view's active window.
func (v *View) Window() (time.Time, time.Time) {
	return Window(v.Mode, v.Ref)
}

// Prev shifts the reference date one unit of the active mode backward.
func (v *View) Prev() { v.shift(-1) }

// Next shifts the reference date one unit of the active mode forward.
func (v *View) Next() { v.shift(1) }

// Today resets the reference date to the current date without changing the
// mode.
func (v *View) Today(clk clock.Clock) {
	v.Ref = clk.Now()
}

func (v *View) shift(units int) {
	switch v.Mode {
	case ModeDay:
		v.Ref = v.Ref.AddDate(0, 0, units)
	case ModeWeek:
		v.Ref = v.Ref.AddDate(0, 0, 7*units)
	case ModeMonth:
		// Anchor on the first of the month so a 31st never overflows into
		// the month after next.
		v.Ref = firstOfMonth(v.Ref).AddDate(0, units, 0)
	}
}

// Events projects the appointments intersecting the active window, after
// applying the view's filter spec. Appointments outside the window stay in
// the backing collection untouched.
func (v *View) Events(appts []models.Appointment) []Event {
	start, end := v.Window()
	return Project(filters.Appointments(appts, v.Filters), start, end)
}
