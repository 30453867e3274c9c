package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"styllobarbe/internal/apperr"
	"styllobarbe/internal/appointments"
	"styllobarbe/internal/booking"
	"styllobarbe/internal/filters"
	"styllobarbe/internal/models"
)

// Server holds the engine services behind the HTTP surface.
type Server struct {
	wizard  *booking.Wizard
	loader  *booking.Loader
	manager AppointmentManager
}

// AppointmentManager is the lifecycle surface the appointment handlers
// call into.
type AppointmentManager interface {
	Get(ctx context.Context, id string) (*models.Appointment, error)
	List(ctx context.Context, barbershopID string, f models.AppointmentFilters) ([]models.Appointment, error)
	UpdateStatus(ctx context.Context, id string, newStatus models.AppointmentStatus) (*models.Appointment, error)
	MarkNoShow(ctx context.Context, id string) (*models.Appointment, error)
	Reschedule(ctx context.Context, id string, newStart time.Time) (*models.Appointment, error)
	Delete(ctx context.Context, id string) error
	BatchUpdateStatus(ctx context.Context, ids []string, newStatus models.AppointmentStatus, sel *appointments.SelectionSet) appointments.BatchResult
}

// NewServer creates the handler set.
func NewServer(wizard *booking.Wizard, loader *booking.Loader, manager AppointmentManager) *Server {
	return &Server{wizard: wizard, loader: loader, manager: manager}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, out any) bool {
	if err := json.NewDecoder(r.Body).Decode(out); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
		return false
	}
	return true
}

func (s *Server) createSession(w http.ResponseWriter, r *http.Request) {
	var req CreateSessionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	session := s.wizard.Store().Create(req.ClientID)
	writeJSON(w, http.StatusCreated, sessionResponse(session.ID, session.Snapshot()))
}

func (s *Server) getSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	session := s.wizard.Store().Get(id)
	if session == nil {
		writeAppError(w, booking.ErrSessionNotFound)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse(id, session.Snapshot()))
}

func (s *Server) listBarbershops(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	f := filters.BarbershopFilter{
		Query: r.URL.Query().Get("q"),
		Scope: ScopeFrom(r.Context()),
	}
	if v := r.URL.Query().Get("max_distance_km"); v != "" {
		f.MaxDistanceKm, _ = strconv.ParseFloat(v, 64)
	}
	if v := r.URL.Query().Get("min_rating"); v != "" {
		f.MinRating, _ = strconv.ParseFloat(v, 64)
	}

	shops, err := s.loader.Barbershops(r.Context(), id, f)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"barbershops": shops})
}

func (s *Server) listServices(w http.ResponseWriter, r *http.Request) {
	session := s.wizard.Store().Get(chi.URLParam(r, "id"))
	if session == nil {
		writeAppError(w, booking.ErrSessionNotFound)
		return
	}
	f := filters.ServiceFilter{
		Category: models.ServiceCategory(r.URL.Query().Get("category")),
		Query:    r.URL.Query().Get("q"),
	}
	if v := r.URL.Query().Get("min_price_cents"); v != "" {
		f.MinPriceCents, _ = strconv.ParseInt(v, 10, 64)
	}
	if v := r.URL.Query().Get("max_price_cents"); v != "" {
		f.MaxPriceCents, _ = strconv.ParseInt(v, 10, 64)
	}

	services, err := s.loader.Services(r.Context(), session, f)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"services": services})
}

func (s *Server) listBarbers(w http.ResponseWriter, r *http.Request) {
	session := s.wizard.Store().Get(chi.URLParam(r, "id"))
	if session == nil {
		writeAppError(w, booking.ErrSessionNotFound)
		return
	}
	f := filters.BarberFilter{
		Specialty: r.URL.Query().Get("specialty"),
	}
	if v := r.URL.Query().Get("min_rating"); v != "" {
		f.MinRating, _ = strconv.ParseFloat(v, 64)
	}

	barbers, err := s.loader.Barbers(r.Context(), session, f)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"barbers": barbers})
}

func (s *Server) selectBarbershop(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req SelectBarbershopRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	shops, err := s.loader.Barbershops(r.Context(), id, filters.BarbershopFilter{Scope: ScopeFrom(r.Context())})
	if err != nil {
		writeAppError(w, err)
		return
	}
	shop, ok := findBarbershop(shops, req.BarbershopID)
	if !ok {
		writeError(w, http.StatusNotFound, "barbershop_not_found", "unknown barbershop id")
		return
	}

	sel, err := s.wizard.SelectBarbershop(id, shop)
	if err != nil {
		writeAppError(w, err)
		return
	}
	s.loader.Invalidate(id)
	writeJSON(w, http.StatusOK, sessionResponse(id, sel))
}

func (s *Server) selectService(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	session := s.wizard.Store().Get(id)
	if session == nil {
		writeAppError(w, booking.ErrSessionNotFound)
		return
	}
	var req SelectServiceRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	services, err := s.loader.Services(r.Context(), session, filters.ServiceFilter{})
	if err != nil {
		writeAppError(w, err)
		return
	}
	svc, ok := findService(services, req.ServiceID)
	if !ok {
		writeError(w, http.StatusNotFound, "service_not_found", "unknown service id")
		return
	}

	sel, err := s.wizard.SelectService(id, svc)
	if err != nil {
		writeAppError(w, err)
		return
	}
	s.loader.Invalidate(id)
	writeJSON(w, http.StatusOK, sessionResponse(id, sel))
}

func (s *Server) selectBarber(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	session := s.wizard.Store().Get(id)
	if session == nil {
		writeAppError(w, booking.ErrSessionNotFound)
		return
	}
	var req SelectBarberRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	choice := booking.AnyBarber()
	if !req.Any {
		barbers, err := s.loader.Barbers(r.Context(), session, filters.BarberFilter{})
		if err != nil {
			writeAppError(w, err)
			return
		}
		b, ok := findBarber(barbers, req.BarberID)
		if !ok {
			writeError(w, http.StatusNotFound, "barber_not_found", "unknown or ineligible barber id")
			return
		}
		choice = booking.SpecificBarber(b)
	}

	sel, err := s.wizard.SelectBarber(id, choice)
	if err != nil {
		writeAppError(w, err)
		return
	}
	s.loader.Invalidate(id)
	writeJSON(w, http.StatusOK, sessionResponse(id, sel))
}

func (s *Server) listSlots(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	date, err := time.Parse("2006-01-02", r.URL.Query().Get("date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_date", "date must be YYYY-MM-DD")
		return
	}

	out, err := s.wizard.Slots(r.Context(), id, date)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"slots": out})
}

// selectSlot resolves the requested start against the freshly generated
// slot list, so an unavailable or unknown slot never reaches the
// selection.
func (s *Server) selectSlot(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req SelectSlotRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	daySlots, err := s.wizard.Slots(r.Context(), id, req.Start)
	if err != nil {
		writeAppError(w, err)
		return
	}
	for _, slot := range daySlots {
		if slot.Start.Equal(req.Start) {
			sel, err := s.wizard.SelectSlot(id, slot)
			if err != nil {
				writeAppError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, sessionResponse(id, sel))
			return
		}
	}
	writeAppError(w, apperr.Validation("time", "start does not match an offered slot"))
}

func (s *Server) setNotes(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req NotesRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	sel, err := s.wizard.SetNotes(id, req.Notes)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse(id, sel))
}

func (s *Server) goBack(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	sel, err := s.wizard.GoBack(id)
	if err != nil {
		writeAppError(w, err)
		return
	}
	s.loader.Invalidate(id)
	writeJSON(w, http.StatusOK, sessionResponse(id, sel))
}

func (s *Server) resetSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	sel, err := s.wizard.Reset(id)
	if err != nil {
		writeAppError(w, err)
		return
	}
	s.loader.Invalidate(id)
	writeJSON(w, http.StatusOK, sessionResponse(id, sel))
}

func (s *Server) confirm(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req ConfirmRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	apptID, err := s.wizard.Confirm(r.Context(), id, req.Client, req.Prefs)
	if err != nil {
		writeAppError(w, err)
		return
	}
	s.loader.Forget(id)
	writeJSON(w, http.StatusCreated, ConfirmResponse{AppointmentID: apptID})
}

func findBarbershop(shops []models.Barbershop, id string) (models.Barbershop, bool) {
	for _, shop := range shops {
		if shop.ID == id {
			return shop, true
		}
	}
	return models.Barbershop{}, false
}

func findService(services []models.Service, id string) (models.Service, bool) {
	for _, svc := range services {
		if svc.ID == id {
			return svc, true
		}
	}
	return models.Service{}, false
}

func findBarber(barbers []models.Barber, id string) (models.Barber, bool) {
	for _, b := range barbers {
		if b.ID == id {
			return b, true
		}
	}
	return models.Barber{}, false
}
