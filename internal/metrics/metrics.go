package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	bookingConfirmed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "styllobarbe",
			Name:      "booking_confirmed_total",
			Help:      "Count of wizard confirmations that created an appointment.",
		},
	)

	bookingConflict = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "styllobarbe",
			Name:      "booking_conflict_total",
			Help:      "Count of confirmations rejected because the slot was taken.",
		},
	)

	statusChanged = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "styllobarbe",
			Name:      "appointment_status_changed_total",
			Help:      "Count of appointment status transitions by edge.",
		},
		[]string{"from", "to"},
	)

	batchItems = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "styllobarbe",
			Name:      "batch_status_items_total",
			Help:      "Count of batch status update items by result.",
		},
		[]string{"result"},
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(bookingConfirmed, bookingConflict, statusChanged, batchItems)
	})
}

func IncBookingConfirmed() {
	bookingConfirmed.Inc()
}

func IncBookingConflict() {
	bookingConflict.Inc()
}

func IncStatusChanged(from, to string) {
	statusChanged.WithLabelValues(from, to).Inc()
}

func IncBatchItem(result string) {
	batchItems.WithLabelValues(result).Inc()
}
