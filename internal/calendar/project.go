package calendar

import (
	"time"

	"styllobarbe/internal/models"
)

// Event is a read-only projection of an appointment onto a viewing window:
// the appointment plus its computed end time and status color. Events are
// recomputed whenever the appointment list or the window changes and are
// never persisted.
type Event struct {
	models.Appointment
	EndTime time.Time `json:"end_time"`
	Color   string    `json:"color"`
}

var statusColors = map[models.AppointmentStatus]string{
	models.StatusScheduled:  "#F59E0B",
	models.StatusConfirmed:  "#3B82F6",
	models.StatusInProgress: "#8B5CF6",
	models.StatusCompleted:  "#10B981",
	models.StatusCancelled:  "#EF4444",
	models.StatusNoShow:     "#6B7280",
}

const defaultColor = "#9CA3AF"

// StatusColor maps a status to its display color.
func StatusColor(s models.AppointmentStatus) string {
	if c, ok := statusColors[s]; ok {
		return c
	}
	return defaultColor
}

// Project turns every appointment intersecting [start, end) into an Event,
// preserving input order.
func Project(appts []models.Appointment, start, end time.Time) []Event {
	var out []Event
	for _, a := range appts {
		if !a.Overlaps(start, end) {
			continue
		}
		out = append(out, Event{
			Appointment: a,
			EndTime:     a.End(),
			Color:       StatusColor(a.Status),
		})
	}
	return out
}
