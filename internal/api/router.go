package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// RouterConfig carries the services and middleware inputs for the HTTP
// surface.
type RouterConfig struct {
	Server *Server
	Scope  ScopeResolver
	Logger zerolog.Logger
}

// NewRouter builds the chi router for the booking and calendar API.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware(cfg.Logger))
	r.Use(ScopeMiddleware(cfg.Scope))

	s := cfg.Server

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", s.createSession)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.getSession)
				r.Get("/barbershops", s.listBarbershops)
				r.Get("/services", s.listServices)
				r.Get("/barbers", s.listBarbers)
				r.Get("/slots", s.listSlots)
				r.Post("/barbershop", s.selectBarbershop)
				r.Post("/service", s.selectService)
				r.Post("/barber", s.selectBarber)
				r.Post("/slot", s.selectSlot)
				r.Post("/notes", s.setNotes)
				r.Post("/back", s.goBack)
				r.Post("/reset", s.resetSession)
				r.Post("/confirm", s.confirm)
			})
		})

		r.Route("/barbershops/{shopID}", func(r chi.Router) {
			r.Get("/appointments", s.listAppointments)
			r.Post("/appointments/batch-status", s.batchStatus)
			r.Get("/appointments/export", s.exportAppointments)
			r.Get("/calendar", s.calendarEvents)
			r.Get("/calendar/month", s.calendarMonth)
		})

		r.Route("/appointments/{id}", func(r chi.Router) {
			r.Get("/", s.getAppointment)
			r.Patch("/status", s.updateStatus)
			r.Post("/no-show", s.markNoShow)
			r.Post("/reschedule", s.reschedule)
			r.Delete("/", s.deleteAppointment)
		})
	})

	return r
}
