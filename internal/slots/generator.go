// Package slots generates bookable time-slot candidates for a date,
// service duration and barber choice, checking real appointment intervals
// for conflicts.
package slots

import (
	"context"
	"fmt"
	"time"

	"styllobarbe/internal/apperr"
	"styllobarbe/internal/clock"
	"styllobarbe/internal/models"
)

// Reason explains why a slot is unavailable. Values are human-readable and
// shown as-is in the UI.
type Reason string

const (
	ReasonNone         Reason = ""
	ReasonPast         Reason = "horário já passou"
	ReasonOutsideHours Reason = "fora do horário de funcionamento"
	ReasonBreak        Reason = "intervalo de almoço"
	ReasonConflict     Reason = "conflito com agendamento existente"
)

// Grid describes the slot grid: candidate starts every Granularity within
// business hours, with an optional break window. Times are minutes from
// midnight in the date's location.
type Grid struct {
	Granularity   time.Duration
	OpenMin       int
	CloseMin      int
	BreakStartMin int
	BreakEndMin   int
}

// DefaultGrid is the system default: 30-minute granularity, 08:00-18:00,
// break 12:00-13:00.
func DefaultGrid() Grid {
	return Grid{
		Granularity:   30 * time.Minute,
		OpenMin:       8 * 60,
		CloseMin:      18 * 60,
		BreakStartMin: 12 * 60,
		BreakEndMin:   13 * 60,
	}
}

// At returns the instant of the given minutes-from-midnight on date's day.
func (g Grid) At(date time.Time, minutes int) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), 0, minutes, 0, 0, date.Location())
}

// SlotIndex maps an instant to its grid row: full granularity steps since
// opening on that day. Instants before opening map to 0.
func (g Grid) SlotIndex(t time.Time) int {
	open := g.At(t, g.OpenMin)
	if t.Before(open) {
		return 0
	}
	return int(t.Sub(open) / g.Granularity)
}

// HasBreak reports whether the grid carries a break window.
func (g Grid) HasBreak() bool {
	return g.BreakEndMin > g.BreakStartMin
}

// TimeSlot is a discrete bookable start-time candidate with its
// availability verdict.
type TimeSlot struct {
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	Label     string    `json:"label"`
	Available bool      `json:"available"`
	Reason    Reason    `json:"reason,omitempty"`
	// BarberID is the bound barber: the requested barber, or the barber
	// resolved for the slot in "any barber" mode.
	BarberID string `json:"barber_id,omitempty"`
}

// Request carries all inputs for one generation run. Barber nil means "any
// barber": a candidate is available when at least one of Eligible is free
// for the full duration.
type Request struct {
	Date     time.Time
	Duration time.Duration
	Barber   *models.Barber
	Eligible []models.Barber
	// Existing holds the day's appointments for the barbershop. Only
	// appointments in a blocking status count as conflicts.
	Existing []models.Appointment
	// ExcludeID removes one appointment from conflict checking, used when
	// rescheduling that appointment.
	ExcludeID string
}

// Generator computes slot availability against the injected clock.
type Generator struct {
	grid Grid
	clk  clock.Clock
}

// NewGenerator creates a generator for the given grid.
func NewGenerator(grid Grid, clk clock.Clock) *Generator {
	if grid.Granularity <= 0 {
		grid.Granularity = 30 * time.Minute
	}
	if clk == nil {
		clk = clock.Real{}
	}
	return &Generator{grid: grid, clk: clk}
}

// Grid returns the generator's grid.
func (g *Generator) Grid() Grid { return g.grid }

// SlotsFor produces the ordered, finite slot sequence for the request.
// Candidates start on the grid and must finish by closing time.
func (g *Generator) SlotsFor(req Request) []TimeSlot {
	if req.Duration <= 0 {
		return nil
	}
	open := g.grid.At(req.Date, g.grid.OpenMin)
	closing := g.grid.At(req.Date, g.grid.CloseMin)
	now := g.clk.Now()

	var out []TimeSlot
	for cursor := open; !cursor.Add(req.Duration).After(closing); cursor = cursor.Add(g.grid.Granularity) {
		slot := TimeSlot{
			Start: cursor,
			End:   cursor.Add(req.Duration),
			Label: cursor.Format("15:04"),
		}
		reason, barberID := g.verdict(cursor, now, req)
		slot.Available = reason == ReasonNone
		slot.Reason = reason
		slot.BarberID = barberID
		out = append(out, slot)
	}
	return out
}

// Verdict evaluates a single candidate start, grid-aligned or not. It
// returns the unavailability reason (ReasonNone when bookable) and the
// bound barber id.
func (g *Generator) Verdict(start time.Time, req Request) (Reason, string) {
	return g.verdict(start, g.clk.Now(), req)
}

func (g *Generator) verdict(start, now time.Time, req Request) (Reason, string) {
	end := start.Add(req.Duration)

	// Only strictly future starts are bookable.
	if !start.After(now) {
		return ReasonPast, ""
	}

	// The whole interval must fit within business hours. SlotsFor only
	// emits in-hours candidates, but Verdict also sees arbitrary starts
	// coming from reschedule.
	open := g.grid.At(start, g.grid.OpenMin)
	closing := g.grid.At(start, g.grid.CloseMin)
	if start.Before(open) || end.After(closing) {
		return ReasonOutsideHours, ""
	}

	if g.grid.HasBreak() {
		breakStart := g.grid.At(start, g.grid.BreakStartMin)
		breakEnd := g.grid.At(start, g.grid.BreakEndMin)
		if overlaps(start, end, breakStart, breakEnd) {
			return ReasonBreak, ""
		}
	}

	if req.Barber != nil {
		if conflicts(start, end, req.Barber.ID, req.Existing, req.ExcludeID) {
			return ReasonConflict, req.Barber.ID
		}
		return ReasonNone, req.Barber.ID
	}

	// Any-barber mode: first eligible barber free for the full duration
	// wins. Eligible is rating-ordered, so the best free barber binds.
	for _, b := range req.Eligible {
		if !b.Available {
			continue
		}
		if !conflicts(start, end, b.ID, req.Existing, req.ExcludeID) {
			return ReasonNone, b.ID
		}
	}
	return ReasonConflict, ""
}

func conflicts(start, end time.Time, barberID string, existing []models.Appointment, excludeID string) bool {
	for _, a := range existing {
		if a.BarberID != barberID || !a.Status.Blocking() {
			continue
		}
		if excludeID != "" && a.ID == excludeID {
			continue
		}
		if a.Overlaps(start, end) {
			return true
		}
	}
	return false
}

// Half-open interval overlap: [s1,e1) and [s2,e2).
func overlaps(s1, e1, s2, e2 time.Time) bool {
	return s1.Before(e2) && s2.Before(e1)
}

// AppointmentSource lists a barbershop's appointments, implemented by the
// AppointmentRepository collaborator.
type AppointmentSource interface {
	List(ctx context.Context, barbershopID string, f models.AppointmentFilters) ([]models.Appointment, error)
}

// Service wires the generator to the appointment collaborator.
type Service struct {
	gen   *Generator
	appts AppointmentSource
}

// NewService creates an availability service.
func NewService(gen *Generator, appts AppointmentSource) *Service {
	return &Service{gen: gen, appts: appts}
}

// Generator exposes the underlying generator.
func (s *Service) Generator() *Generator { return s.gen }

// SlotsFor loads the day's appointments and generates slots for the
// service/barber pair. barber nil means "any barber" over eligible.
func (s *Service) SlotsFor(ctx context.Context, barbershopID string, svc models.Service, barber *models.Barber, eligible []models.Barber, date time.Time) ([]TimeSlot, error) {
	existing, err := s.dayAppointments(ctx, barbershopID, date)
	if err != nil {
		return nil, err
	}
	return s.gen.SlotsFor(Request{
		Date:     date,
		Duration: svc.Duration(),
		Barber:   barber,
		Eligible: eligible,
		Existing: existing,
	}), nil
}

// Check re-evaluates a single start for a specific barber, excluding the
// given appointment id from conflicts. Used by reschedule just before
// commit.
func (s *Service) Check(ctx context.Context, barbershopID, barberID string, start time.Time, duration time.Duration, excludeID string) (Reason, error) {
	existing, err := s.dayAppointments(ctx, barbershopID, start)
	if err != nil {
		return ReasonNone, err
	}
	barber := models.Barber{ID: barberID, Available: true}
	reason, _ := s.gen.Verdict(start, Request{
		Date:      start,
		Duration:  duration,
		Barber:    &barber,
		Existing:  existing,
		ExcludeID: excludeID,
	})
	return reason, nil
}

func (s *Service) dayAppointments(ctx context.Context, barbershopID string, date time.Time) ([]models.Appointment, error) {
	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	appts, err := s.appts.List(ctx, barbershopID, models.AppointmentFilters{
		From: dayStart,
		To:   dayStart.AddDate(0, 0, 1),
	})
	if err != nil {
		return nil, apperr.Collaborator("list appointments", err)
	}
	return appts, nil
}

// String implements fmt.Stringer for log output like "09:30 (conflito...)".
func (t TimeSlot) String() string {
	if t.Available {
		return t.Label
	}
	return fmt.Sprintf("%s (%s)", t.Label, t.Reason)
}
