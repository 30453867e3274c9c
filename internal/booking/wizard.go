package booking

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"styllobarbe/internal/apperr"
	"styllobarbe/internal/clock"
	"styllobarbe/internal/metrics"
	"styllobarbe/internal/models"
	"styllobarbe/internal/slots"
)

// ErrSessionNotFound marks an unknown or expired wizard session.
var ErrSessionNotFound = errors.New("wizard session not found")

// CreateRequest packages a confirmed selection for the appointment
// creation collaborator.
type CreateRequest struct {
	BarbershopID string
	BarberID     string
	ServiceID    string
	Start        time.Time
	DurationMin  int
	TotalCents   int64
	Client       models.ClientInfo
	Notes        string
	Prefs        models.NotifyPrefs
}

// AppointmentCreator is the appointment creation collaborator.
type AppointmentCreator interface {
	Create(ctx context.Context, req CreateRequest) (string, error)
}

// Rules are config-driven validation limits applied at confirm time.
// ConfirmRate and ConfirmBurst throttle confirm submissions across
// sessions; zero values fall back to 5/s with a burst of 10.
type Rules struct {
	MinAdvance   time.Duration
	MaxAdvance   time.Duration
	ConfirmRate  float64
	ConfirmBurst int
}

func (r Rules) limiter() *rate.Limiter {
	rt, burst := r.ConfirmRate, r.ConfirmBurst
	if rt <= 0 {
		rt = 5
	}
	if burst <= 0 {
		burst = 10
	}
	return rate.NewLimiter(rate.Limit(rt), burst)
}

// Wizard drives the booking selection flow over sessions.
type Wizard struct {
	store   *Store
	avail   *slots.Service
	creator AppointmentCreator
	rules   Rules
	clk     clock.Clock
	limiter *rate.Limiter
	logger  zerolog.Logger
}

// NewWizard creates the wizard. The confirm limiter is built from the
// rules' rate and burst.
func NewWizard(store *Store, avail *slots.Service, creator AppointmentCreator, rules Rules, clk clock.Clock, logger zerolog.Logger) *Wizard {
	if clk == nil {
		clk = clock.Real{}
	}
	return &Wizard{
		store:   store,
		avail:   avail,
		creator: creator,
		rules:   rules,
		clk:     clk,
		limiter: rules.limiter(),
		logger:  logger,
	}
}

// Store exposes the session store.
func (w *Wizard) Store() *Store { return w.store }

func (w *Wizard) session(id string) (*Session, error) {
	session := w.store.Get(id)
	if session == nil {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

// SelectBarbershop records the shop choice, cascading away any previously
// chosen service, barber and time.
func (w *Wizard) SelectBarbershop(sessionID string, shop models.Barbershop) (Selection, error) {
	return w.mutate(sessionID, func(sel *Selection) error {
		sel.SelectBarbershop(shop)
		return nil
	})
}

// SelectService records the service choice. The barbershop must already be
// chosen.
func (w *Wizard) SelectService(sessionID string, svc models.Service) (Selection, error) {
	return w.mutate(sessionID, func(sel *Selection) error {
		if sel.Barbershop == nil {
			return apperr.Validation("service", "choose a barbershop first")
		}
		sel.SelectService(svc)
		return nil
	})
}

// SelectBarber records a specific barber or the explicit "any" wildcard.
func (w *Wizard) SelectBarber(sessionID string, choice BarberChoice) (Selection, error) {
	return w.mutate(sessionID, func(sel *Selection) error {
		if sel.Service == nil {
			return apperr.Validation("barber", "choose a service first")
		}
		if !choice.Selected() {
			return apperr.Validation("barber", "a barber or \"any\" is required")
		}
		sel.SelectBarber(choice)
		return nil
	})
}

// SelectSlot records the chosen time slot. Unavailable slots are rejected
// locally with a ValidationError; the slot's bound barber is kept for
// "any barber" selections.
func (w *Wizard) SelectSlot(sessionID string, slot slots.TimeSlot) (Selection, error) {
	return w.mutate(sessionID, func(sel *Selection) error {
		if !sel.Barber.Selected() {
			return apperr.Validation("time", "choose a barber first")
		}
		if !slot.Available {
			return apperr.Validation("time", "slot is not available: "+string(slot.Reason))
		}
		sel.SelectStart(slot.Start, slot.BarberID)
		return nil
	})
}

// SetNotes attaches free-text notes without affecting the derived step.
func (w *Wizard) SetNotes(sessionID, notes string) (Selection, error) {
	return w.mutate(sessionID, func(sel *Selection) error {
		sel.Notes = notes
		return nil
	})
}

// GoBack moves one derived step backward.
func (w *Wizard) GoBack(sessionID string) (Selection, error) {
	return w.mutate(sessionID, func(sel *Selection) error {
		sel.GoBack()
		return nil
	})
}

// Reset clears the selection to empty.
func (w *Wizard) Reset(sessionID string) (Selection, error) {
	return w.mutate(sessionID, func(sel *Selection) error {
		sel.Reset()
		return nil
	})
}

// Slots generates time slots for the session's current service/barber
// choice on the given date.
func (w *Wizard) Slots(ctx context.Context, sessionID string, date time.Time) ([]slots.TimeSlot, error) {
	session, err := w.session(sessionID)
	if err != nil {
		return nil, err
	}
	sel := session.Snapshot()
	if sel.Barbershop == nil || sel.Service == nil || !sel.Barber.Selected() {
		return nil, apperr.Validation("time", "barbershop, service and barber are required first")
	}

	var barber *models.Barber
	if b, ok := sel.Barber.Specific(); ok {
		barber = &b
	}
	return w.avail.SlotsFor(ctx, sel.Barbershop.ID, *sel.Service, barber, sel.Service.EligibleBarbers, date)
}

// Confirm packages the selection with the client's contact info and
// notification preferences and submits it to the appointment creation
// collaborator. On success the session is discarded; on failure the
// selection is retained unchanged.
func (w *Wizard) Confirm(ctx context.Context, sessionID string, client models.ClientInfo, prefs models.NotifyPrefs) (string, error) {
	session, err := w.session(sessionID)
	if err != nil {
		return "", err
	}
	sel := session.Snapshot()
	if sel.Step() != StepConfirming {
		return "", apperr.Validation("confirm", "selection is incomplete")
	}

	now := w.clk.Now()
	if w.rules.MinAdvance > 0 && sel.Start.Before(now.Add(w.rules.MinAdvance)) {
		return "", apperr.Validation("time", "start is too soon")
	}
	if w.rules.MaxAdvance > 0 && sel.Start.After(now.Add(w.rules.MaxAdvance)) {
		return "", apperr.Validation("time", "start is too far ahead")
	}
	if !w.limiter.Allow() {
		return "", apperr.Validation("confirm", "too many confirmation attempts, retry shortly")
	}

	// Stale-write protection: re-validate the slot against the live
	// appointment set immediately before submitting.
	reason, err := w.avail.Check(ctx, sel.Barbershop.ID, sel.BarberID(), *sel.Start, sel.Service.Duration(), "")
	if err != nil {
		return "", err
	}
	if reason != slots.ReasonNone {
		metrics.IncBookingConflict()
		return "", apperr.Validation("time", "slot is not available: "+string(reason))
	}

	id, err := w.creator.Create(ctx, CreateRequest{
		BarbershopID: sel.Barbershop.ID,
		BarberID:     sel.BarberID(),
		ServiceID:    sel.Service.ID,
		Start:        *sel.Start,
		DurationMin:  sel.Service.DurationMin,
		TotalCents:   sel.Service.PriceCents,
		Client:       client,
		Notes:        sel.Notes,
		Prefs:        prefs,
	})
	if err != nil {
		w.logger.Error().Err(err).Str("session", sessionID).Msg("appointment creation failed")
		return "", apperr.Collaborator("create appointment", err)
	}

	w.store.Delete(sessionID)
	metrics.IncBookingConfirmed()
	w.logger.Info().
		Str("appointment", id).
		Str("barbershop", sel.Barbershop.ID).
		Str("barber", sel.BarberID()).
		Time("start", *sel.Start).
		Msg("booking confirmed")
	return id, nil
}

func (w *Wizard) mutate(sessionID string, fn func(sel *Selection) error) (Selection, error) {
	session, err := w.session(sessionID)
	if err != nil {
		return Selection{}, err
	}
	var opErr error
	session.With(func(sel *Selection) {
		opErr = fn(sel)
	})
	if opErr != nil {
		return session.Snapshot(), opErr
	}
	return session.Snapshot(), nil
}
