// Package appointments manages the appointment status lifecycle, single
// and batch transitions, and rescheduling with pre-commit availability
// checks.
package appointments

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"styllobarbe/internal/apperr"
	"styllobarbe/internal/clock"
	"styllobarbe/internal/metrics"
	"styllobarbe/internal/models"
	"styllobarbe/internal/slots"
)

// Repository is the appointment persistence collaborator. Implementations
// return apperr.ErrNotFound for unknown ids.
type Repository interface {
	Get(ctx context.Context, id string) (*models.Appointment, error)
	List(ctx context.Context, barbershopID string, f models.AppointmentFilters) ([]models.Appointment, error)
	UpdateStatus(ctx context.Context, id string, status models.AppointmentStatus, updatedAt time.Time) (*models.Appointment, error)
	Reschedule(ctx context.Context, id string, newStart time.Time, updatedAt time.Time) (*models.Appointment, error)
	Delete(ctx context.Context, id string) error
}

// transitions is the directed status graph. no_show is absent on purpose:
// it is reachable only through the explicit MarkNoShow terminal marking.
var transitions = map[models.AppointmentStatus][]models.AppointmentStatus{
	models.StatusScheduled:  {models.StatusConfirmed, models.StatusCancelled},
	models.StatusConfirmed:  {models.StatusInProgress, models.StatusCancelled},
	models.StatusInProgress: {models.StatusCompleted},
}

// CanTransition reports whether from→to is an edge of the lifecycle graph.
func CanTransition(from, to models.AppointmentStatus) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Manager applies lifecycle operations over the repository.
type Manager struct {
	repo   Repository
	avail  *slots.Service
	clk    clock.Clock
	logger zerolog.Logger
}

// NewManager creates a lifecycle manager. avail is consulted before every
// reschedule commit.
func NewManager(repo Repository, avail *slots.Service, clk clock.Clock, logger zerolog.Logger) *Manager {
	if clk == nil {
		clk = clock.Real{}
	}
	return &Manager{repo: repo, avail: avail, clk: clk, logger: logger}
}

// Get returns one appointment.
func (m *Manager) Get(ctx context.Context, id string) (*models.Appointment, error) {
	return m.repo.Get(ctx, id)
}

// List returns the scope's appointments matching the filter spec.
func (m *Manager) List(ctx context.Context, barbershopID string, f models.AppointmentFilters) ([]models.Appointment, error) {
	appts, err := m.repo.List(ctx, barbershopID, f)
	if err != nil {
		return nil, apperr.Collaborator("list appointments", err)
	}
	return appts, nil
}

// UpdateStatus applies a single status transition, enforcing the lifecycle
// graph, and stamps UpdatedAt. The updated appointment is returned.
func (m *Manager) UpdateStatus(ctx context.Context, id string, newStatus models.AppointmentStatus) (*models.Appointment, error) {
	if !newStatus.Valid() {
		return nil, apperr.Validation("status", "unknown status "+string(newStatus))
	}
	appt, err := m.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanTransition(appt.Status, newStatus) {
		return nil, apperr.ErrInvalidTransition
	}
	updated, err := m.repo.UpdateStatus(ctx, id, newStatus, m.clk.Now())
	if err != nil {
		return nil, err
	}
	metrics.IncStatusChanged(string(appt.Status), string(newStatus))
	m.logger.Info().
		Str("appointment", id).
		Str("from", string(appt.Status)).
		Str("to", string(newStatus)).
		Msg("status updated")
	return updated, nil
}

// MarkNoShow is the explicit terminal marking for clients who never showed
// up. It applies only to appointments still on the happy path's waiting
// states.
func (m *Manager) MarkNoShow(ctx context.Context, id string) (*models.Appointment, error) {
	appt, err := m.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if appt.Status != models.StatusScheduled && appt.Status != models.StatusConfirmed {
		return nil, apperr.ErrInvalidTransition
	}
	updated, err := m.repo.UpdateStatus(ctx, id, models.StatusNoShow, m.clk.Now())
	if err != nil {
		return nil, err
	}
	metrics.IncStatusChanged(string(appt.Status), string(models.StatusNoShow))
	return updated, nil
}

// Reschedule moves the appointment start, re-running the availability
// check against the live appointment set (excluding the appointment being
// moved) immediately before commit. On conflict the prior schedule is
// preserved and ErrConflict returned.
func (m *Manager) Reschedule(ctx context.Context, id string, newStart time.Time) (*models.Appointment, error) {
	appt, err := m.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	reason, err := m.avail.Check(ctx, appt.BarbershopID, appt.BarberID, newStart,
		time.Duration(appt.DurationMin)*time.Minute, appt.ID)
	if err != nil {
		return nil, err
	}
	if reason != slots.ReasonNone {
		m.logger.Warn().
			Str("appointment", id).
			Time("new_start", newStart).
			Str("reason", string(reason)).
			Msg("reschedule rejected")
		return nil, apperr.ErrConflict
	}

	updated, err := m.repo.Reschedule(ctx, id, newStart, m.clk.Now())
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes an appointment explicitly. It is the only physical
// removal path.
func (m *Manager) Delete(ctx context.Context, id string) error {
	return m.repo.Delete(ctx, id)
}

// BatchItem is the per-id outcome of a batch status update.
type BatchItem struct {
	ID          string              `json:"id"`
	Appointment *models.Appointment `json:"appointment,omitempty"`
	Err         error               `json:"-"`
	Error       string              `json:"error,omitempty"`
}

// BatchResult reports a best-effort batch: every id appears exactly once,
// either updated or failed.
type BatchResult struct {
	Items []BatchItem `json:"items"`
}

// Failed returns the items that did not update.
func (r BatchResult) Failed() []BatchItem {
	var out []BatchItem
	for _, it := range r.Items {
		if it.Err != nil {
			out = append(out, it)
		}
	}
	return out
}

// AllOK reports whether every item updated.
func (r BatchResult) AllOK() bool { return len(r.Failed()) == 0 }

// BatchUpdateStatus applies UpdateStatus to each id, best-effort: a failing
// id is reported in the result and does not stop the rest. The selection
// set, when given, is cleared afterward regardless of outcome.
func (m *Manager) BatchUpdateStatus(ctx context.Context, ids []string, newStatus models.AppointmentStatus, sel *SelectionSet) BatchResult {
	result := BatchResult{Items: make([]BatchItem, 0, len(ids))}
	for _, id := range ids {
		item := BatchItem{ID: id}
		appt, err := m.UpdateStatus(ctx, id, newStatus)
		if err != nil {
			item.Err = err
			item.Error = err.Error()
			metrics.IncBatchItem("failed")
		} else {
			item.Appointment = appt
			metrics.IncBatchItem("ok")
		}
		result.Items = append(result.Items, item)
	}
	if sel != nil {
		sel.Clear()
	}
	if !result.AllOK() {
		m.logger.Warn().
			Int("total", len(ids)).
			Int("failed", len(result.Failed())).
			Str("status", string(newStatus)).
			Msg("batch status update completed with failures")
	}
	return result
}

// IsNotFound reports whether err is the unknown-id error.
func IsNotFound(err error) bool { return errors.Is(err, apperr.ErrNotFound) }
