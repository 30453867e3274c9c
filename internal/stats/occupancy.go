// Package stats computes occupancy rates and exports them on a periodic
// refresh ticker for the dashboard widgets.
package stats

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"styllobarbe/internal/models"
	"styllobarbe/internal/slots"
)

var (
	once sync.Once

	occupancy = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "styllobarbe",
			Name:      "barber_occupancy_rate",
			Help:      "Ratio of booked to bookable slots per barber over the refresh window.",
		},
		[]string{"barber_id"},
	)
)

// Register registers stats metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(occupancy)
	})
}

// bookableSlots counts grid slots per day, excluding the break window.
func bookableSlots(grid slots.Grid) int {
	granMin := int(grid.Granularity / time.Minute)
	if granMin <= 0 {
		return 0
	}
	open := grid.CloseMin - grid.OpenMin
	if grid.HasBreak() {
		open -= grid.BreakEndMin - grid.BreakStartMin
	}
	if open <= 0 {
		return 0
	}
	return open / granMin
}

// OccupancyRate returns the ratio of booked to bookable slots for one
// barber's appointments over [from, to). Only blocking appointments count;
// the result is clamped to [0, 1].
func OccupancyRate(appts []models.Appointment, grid slots.Grid, from, to time.Time) float64 {
	days := int(to.Sub(from).Hours() / 24)
	if days <= 0 {
		days = 1
	}
	bookable := bookableSlots(grid) * days
	if bookable == 0 {
		return 0
	}

	granMin := int(grid.Granularity / time.Minute)
	booked := 0
	for _, a := range appts {
		if !a.Status.Blocking() || !a.Overlaps(from, to) {
			continue
		}
		// Slots covered, rounded up to whole grid rows.
		booked += (a.DurationMin + granMin - 1) / granMin
	}

	rate := float64(booked) / float64(bookable)
	if rate > 1 {
		return 1
	}
	return rate
}

// ByBarber groups the appointments by barber and computes each barber's
// occupancy over [from, to).
func ByBarber(appts []models.Appointment, grid slots.Grid, from, to time.Time) map[string]float64 {
	byBarber := make(map[string][]models.Appointment)
	for _, a := range appts {
		byBarber[a.BarberID] = append(byBarber[a.BarberID], a)
	}
	out := make(map[string]float64, len(byBarber))
	for id, list := range byBarber {
		out[id] = OccupancyRate(list, grid, from, to)
	}
	return out
}
