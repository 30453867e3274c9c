// Package models holds the core entities of the booking engine.
package models

import "time"

// ServiceCategory classifies a bookable service.
type ServiceCategory string

const (
	CategoryCut   ServiceCategory = "cut"
	CategoryBeard ServiceCategory = "beard"
	CategoryCombo ServiceCategory = "combo"
	CategoryOther ServiceCategory = "other"
)

// AppointmentStatus is the lifecycle status of an appointment.
type AppointmentStatus string

const (
	StatusScheduled  AppointmentStatus = "scheduled"
	StatusConfirmed  AppointmentStatus = "confirmed"
	StatusInProgress AppointmentStatus = "in_progress"
	StatusCompleted  AppointmentStatus = "completed"
	StatusCancelled  AppointmentStatus = "cancelled"
	StatusNoShow     AppointmentStatus = "no_show"
)

// Blocking reports whether an appointment in this status occupies the
// barber's chair for conflict purposes. Cancelled, no-show and completed
// appointments free their interval.
func (s AppointmentStatus) Blocking() bool {
	switch s {
	case StatusScheduled, StatusConfirmed, StatusInProgress:
		return true
	}
	return false
}

// Valid reports whether s is a known status value.
func (s AppointmentStatus) Valid() bool {
	switch s {
	case StatusScheduled, StatusConfirmed, StatusInProgress,
		StatusCompleted, StatusCancelled, StatusNoShow:
		return true
	}
	return false
}

// Barbershop is immutable reference data for a service-providing location.
type Barbershop struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Address       string  `json:"address"`
	Phone         string  `json:"phone"`
	Rating        float64 `json:"rating"`
	RatingCount   int     `json:"rating_count"`
	DistanceKm    float64 `json:"distance_km"`
	TravelTimeMin int     `json:"travel_time_min"`
	NetworkID     string  `json:"network_id,omitempty"`
	OwnerAdminID  string  `json:"owner_admin_id,omitempty"`
}

// Service is a bookable offering with fixed price and duration.
// EligibleBarbers is derived (never stored) via filters.EligibleBarbers.
type Service struct {
	ID              string          `json:"id"`
	BarbershopID    string          `json:"barbershop_id"`
	Name            string          `json:"name"`
	Description     string          `json:"description,omitempty"`
	Category        ServiceCategory `json:"category"`
	PriceCents      int64           `json:"price_cents"`
	DurationMin     int             `json:"duration_min"`
	EligibleBarbers []Barber        `json:"eligible_barbers,omitempty"`
}

// Duration returns the service duration as a time.Duration.
func (s Service) Duration() time.Duration {
	return time.Duration(s.DurationMin) * time.Minute
}

// Barber is a service provider with specialties and a rating.
type Barber struct {
	ID           string   `json:"id"`
	BarbershopID string   `json:"barbershop_id"`
	Name         string   `json:"name"`
	Specialties  []string `json:"specialties"`
	Rating       float64  `json:"rating"`
	RatingCount  int      `json:"rating_count"`
	Available    bool     `json:"available"`
}

// Appointment is a committed booking. It is mutated in place by status and
// reschedule operations and removed only by an explicit delete.
type Appointment struct {
	ID           string            `json:"id"`
	ClientID     string            `json:"client_id"`
	ClientName   string            `json:"client_name,omitempty"`
	BarberID     string            `json:"barber_id"`
	ServiceID    string            `json:"service_id"`
	ServiceName  string            `json:"service_name,omitempty"`
	BarbershopID string            `json:"barbershop_id"`
	Start        time.Time         `json:"start"`
	DurationMin  int               `json:"duration_min"`
	TotalCents   int64             `json:"total_cents"`
	Status       AppointmentStatus `json:"status"`
	Notes        string            `json:"notes,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

// End returns the computed end instant (start + duration).
func (a Appointment) End() time.Time {
	return a.Start.Add(time.Duration(a.DurationMin) * time.Minute)
}

// Overlaps reports whether [a.Start, a.End) intersects [start, end).
func (a Appointment) Overlaps(start, end time.Time) bool {
	return a.Start.Before(end) && start.Before(a.End())
}

// AppointmentFilters is a pure filter spec over appointments. A zero-value
// field imposes no constraint.
type AppointmentFilters struct {
	BarberID  string            `json:"barber_id,omitempty"`
	ServiceID string            `json:"service_id,omitempty"`
	Status    AppointmentStatus `json:"status,omitempty"`
	From      time.Time         `json:"from,omitempty"`
	To        time.Time         `json:"to,omitempty"`
	Query     string            `json:"query,omitempty"`
}

// ClientInfo is the contact information packaged with a confirmation.
type ClientInfo struct {
	ID    string `json:"id,omitempty"`
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email,omitempty"`
}

// NotifyPrefs carries the client's notification preferences at confirm
// time. Delivery itself is handled outside this engine.
type NotifyPrefs struct {
	Email bool `json:"email"`
	SMS   bool `json:"sms"`
}
