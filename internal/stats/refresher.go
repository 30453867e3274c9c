package stats

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"styllobarbe/internal/clock"
	"styllobarbe/internal/models"
	"styllobarbe/internal/slots"
)

// AppointmentLister is the slice of the appointment collaborator the
// refresher needs.
type AppointmentLister interface {
	List(ctx context.Context, barbershopID string, f models.AppointmentFilters) ([]models.Appointment, error)
}

// Refresher recomputes occupancy gauges on a fixed interval. Its lifetime
// is tied to the context it runs under, not an ambient process-wide timer.
type Refresher struct {
	lister       AppointmentLister
	barbershopID string
	grid         slots.Grid
	interval     time.Duration
	clk          clock.Clock
	logger       zerolog.Logger
}

// NewRefresher creates a refresher scoped to one barbershop (empty id
// means all). Default interval is 30 seconds.
func NewRefresher(lister AppointmentLister, barbershopID string, grid slots.Grid, interval time.Duration, clk clock.Clock, logger zerolog.Logger) *Refresher {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	if clk == nil {
		clk = clock.Real{}
	}
	return &Refresher{
		lister:       lister,
		barbershopID: barbershopID,
		grid:         grid,
		interval:     interval,
		clk:          clk,
		logger:       logger,
	}
}

// Run refreshes once immediately, then on every tick until ctx is done.
func (r *Refresher) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.refresh(ctx)
	for {
		select {
		case <-ctx.Done():
			r.logger.Info().Msg("stats refresher stopped")
			return
		case <-ticker.C:
			r.refresh(ctx)
		}
	}
}

// refresh computes today's occupancy per barber.
func (r *Refresher) refresh(ctx context.Context) {
	now := r.clk.Now()
	from := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	to := from.AddDate(0, 0, 1)

	appts, err := r.lister.List(ctx, r.barbershopID, models.AppointmentFilters{From: from, To: to})
	if err != nil {
		r.logger.Error().Err(err).Msg("stats refresh failed")
		return
	}

	for barberID, rate := range ByBarber(appts, r.grid, from, to) {
		occupancy.WithLabelValues(barberID).Set(rate)
	}
}
