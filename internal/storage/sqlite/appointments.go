package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"styllobarbe/internal/apperr"
	"styllobarbe/internal/booking"
	"styllobarbe/internal/clock"
	"styllobarbe/internal/filters"
	"styllobarbe/internal/models"
)

// AppointmentStore implements the appointment repository collaborators:
// lifecycle persistence, day listing for the availability generator, and
// creation for the wizard.
type AppointmentStore struct {
	db  *DB
	clk clock.Clock
}

// NewAppointmentStore creates the store.
func NewAppointmentStore(db *DB, clk clock.Clock) *AppointmentStore {
	if clk == nil {
		clk = clock.Real{}
	}
	return &AppointmentStore{db: db, clk: clk}
}

const apptColumns = `id, COALESCE(client_id, ''), COALESCE(client_name, ''),
	barber_id, service_id, COALESCE(service_name, ''), barbershop_id,
	start_time, duration_min, total_cents, status, COALESCE(notes, ''),
	created_at, updated_at`

func scanAppointment(row interface{ Scan(...any) error }) (*models.Appointment, error) {
	var a models.Appointment
	err := row.Scan(&a.ID, &a.ClientID, &a.ClientName, &a.BarberID, &a.ServiceID,
		&a.ServiceName, &a.BarbershopID, &a.Start, &a.DurationMin, &a.TotalCents,
		&a.Status, &a.Notes, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// Get returns one appointment or apperr.ErrNotFound.
func (s *AppointmentStore) Get(ctx context.Context, id string) (*models.Appointment, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+apptColumns+` FROM appointments WHERE id = ?`, id)
	a, err := scanAppointment(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get appointment: %w", err)
	}
	return a, nil
}

// List returns the scope's appointments matching the filter, ordered by
// start time. The time range narrows in SQL; the remaining predicates
// apply through the pure filter layer.
func (s *AppointmentStore) List(ctx context.Context, barbershopID string, f models.AppointmentFilters) ([]models.Appointment, error) {
	query := `SELECT ` + apptColumns + ` FROM appointments WHERE 1=1`
	var args []any
	if barbershopID != "" {
		query += ` AND barbershop_id = ?`
		args = append(args, barbershopID)
	}
	if !f.From.IsZero() {
		query += ` AND start_time >= ?`
		args = append(args, f.From)
	}
	if !f.To.IsZero() {
		query += ` AND start_time < ?`
		args = append(args, f.To)
	}
	query += ` ORDER BY start_time`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	defer rows.Close()

	var appts []models.Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan appointment: %w", err)
		}
		appts = append(appts, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return filters.Appointments(appts, f), nil
}

// UpdateStatus applies the status and stamps updated_at, returning the
// updated row.
func (s *AppointmentStore) UpdateStatus(ctx context.Context, id string, status models.AppointmentStatus, updatedAt time.Time) (*models.Appointment, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE appointments SET status = ?, updated_at = ? WHERE id = ?`,
		status, updatedAt, id)
	if err != nil {
		return nil, fmt.Errorf("update status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, apperr.ErrNotFound
	}
	return s.Get(ctx, id)
}

// Reschedule moves the start time and stamps updated_at.
func (s *AppointmentStore) Reschedule(ctx context.Context, id string, newStart time.Time, updatedAt time.Time) (*models.Appointment, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE appointments SET start_time = ?, updated_at = ? WHERE id = ?`,
		newStart, updatedAt, id)
	if err != nil {
		return nil, fmt.Errorf("reschedule: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, apperr.ErrNotFound
	}
	return s.Get(ctx, id)
}

// Delete removes an appointment.
func (s *AppointmentStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM appointments WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete appointment: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

// Create inserts a new scheduled appointment from a confirmed wizard
// selection and returns its id.
func (s *AppointmentStore) Create(ctx context.Context, req booking.CreateRequest) (string, error) {
	var serviceName string
	_ = s.db.QueryRowContext(ctx,
		`SELECT name FROM services WHERE id = ?`, req.ServiceID).Scan(&serviceName)

	id := uuid.NewString()
	now := s.clk.Now()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO appointments (id, client_id, client_name, barber_id,
			service_id, service_name, barbershop_id, start_time, duration_min,
			total_cents, status, notes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, req.Client.ID, req.Client.Name, req.BarberID, req.ServiceID,
		serviceName, req.BarbershopID, req.Start, req.DurationMin,
		req.TotalCents, models.StatusScheduled, req.Notes, now, now)
	if err != nil {
		return "", fmt.Errorf("create appointment: %w", err)
	}
	return id, nil
}
