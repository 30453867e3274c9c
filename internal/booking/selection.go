// Package booking implements the multi-step booking selection wizard:
// barbershop → service → barber → time slot → confirmation, with dependent
// invalidation.
package booking

import (
	"time"

	"styllobarbe/internal/models"
)

// Step is the wizard's current step. It is always derived from which
// selection fields are populated, never stored independently.
type Step string

const (
	StepChoosingBarbershop Step = "choosing_barbershop"
	StepChoosingService    Step = "choosing_service"
	StepChoosingBarber     Step = "choosing_barber"
	StepChoosingTime       Step = "choosing_time"
	StepConfirming         Step = "confirming"
)

type barberMode int

const (
	barberUnselected barberMode = iota
	barberSpecific
	barberAny
)

// BarberChoice is a tagged variant: Unselected, Specific(barber), or the
// explicit "any barber" wildcard. The wildcard is distinct from unselected.
type BarberChoice struct {
	mode   barberMode
	barber models.Barber
}

// NoBarber is the unselected choice.
func NoBarber() BarberChoice { return BarberChoice{} }

// AnyBarber is the explicit wildcard choice.
func AnyBarber() BarberChoice { return BarberChoice{mode: barberAny} }

// SpecificBarber selects one barber.
func SpecificBarber(b models.Barber) BarberChoice {
	return BarberChoice{mode: barberSpecific, barber: b}
}

// Selected reports whether a choice (specific or wildcard) has been made.
func (c BarberChoice) Selected() bool { return c.mode != barberUnselected }

// Any reports whether the wildcard was chosen.
func (c BarberChoice) Any() bool { return c.mode == barberAny }

// Specific returns the chosen barber when the choice is specific.
func (c BarberChoice) Specific() (models.Barber, bool) {
	return c.barber, c.mode == barberSpecific
}

// Selection is the in-progress, not-yet-committed wizard state. It is owned
// exclusively by one wizard session.
type Selection struct {
	Barbershop *models.Barbershop
	Service    *models.Service
	Barber     BarberChoice
	Start      *time.Time
	Notes      string

	// SlotBarberID is the barber resolved for the chosen slot when the
	// choice is "any barber".
	SlotBarberID string
}

// Step derives the current wizard step from the populated fields.
func (s Selection) Step() Step {
	switch {
	case s.Barbershop == nil:
		return StepChoosingBarbershop
	case s.Service == nil:
		return StepChoosingService
	case !s.Barber.Selected():
		return StepChoosingBarber
	case s.Start == nil:
		return StepChoosingTime
	default:
		return StepConfirming
	}
}

// CanAdvance reports whether the field required by the current step is
// populated. Because the step is derived from the populated fields, this
// is satisfied only once every field is present.
func (s Selection) CanAdvance() bool {
	switch s.Step() {
	case StepChoosingBarbershop:
		return s.Barbershop != nil
	case StepChoosingService:
		return s.Service != nil
	case StepChoosingBarber:
		return s.Barber.Selected()
	case StepChoosingTime:
		return s.Start != nil
	default:
		return true
	}
}

// SelectBarbershop sets the barbershop and clears everything downstream:
// service, barber and time.
func (s *Selection) SelectBarbershop(shop models.Barbershop) {
	s.Barbershop = &shop
	s.clearService()
}

// SelectService sets the service and clears barber and time.
func (s *Selection) SelectService(svc models.Service) {
	s.Service = &svc
	s.clearBarber()
}

// SelectBarber sets the barber choice and clears the time.
func (s *Selection) SelectBarber(choice BarberChoice) {
	s.Barber = choice
	s.clearStart()
}

// SelectStart sets the chosen start time. slotBarberID binds the resolved
// barber when the choice is "any".
func (s *Selection) SelectStart(start time.Time, slotBarberID string) {
	s.Start = &start
	s.SlotBarberID = slotBarberID
}

// End returns the computed end time (start + service duration). It is
// recomputed on read, never persisted before confirmation.
func (s Selection) End() (time.Time, bool) {
	if s.Start == nil || s.Service == nil {
		return time.Time{}, false
	}
	return s.Start.Add(s.Service.Duration()), true
}

// BarberID resolves the barber the appointment would be booked with.
func (s Selection) BarberID() string {
	if b, ok := s.Barber.Specific(); ok {
		return b.ID
	}
	if s.Barber.Any() {
		return s.SlotBarberID
	}
	return ""
}

// GoBack moves exactly one derived step backward, clearing the field that
// produced the step being left (and, through the cascade, everything
// downstream of it).
func (s *Selection) GoBack() {
	switch s.Step() {
	case StepConfirming:
		s.clearStart()
	case StepChoosingTime:
		s.clearBarber()
	case StepChoosingBarber:
		s.clearService()
	case StepChoosingService:
		s.Barbershop = nil
		s.clearService()
	case StepChoosingBarbershop:
		// Already at the first step.
	}
}

// Reset clears the selection to empty, including notes.
func (s *Selection) Reset() {
	*s = Selection{}
}

func (s *Selection) clearService() {
	s.Service = nil
	s.clearBarber()
}

func (s *Selection) clearBarber() {
	s.Barber = NoBarber()
	s.clearStart()
}

func (s *Selection) clearStart() {
	s.Start = nil
	s.SlotBarberID = ""
}
