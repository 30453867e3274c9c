package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"styllobarbe/internal/calendar"
	"styllobarbe/internal/export"
	"styllobarbe/internal/models"
)

// appointmentFilters parses the shared query parameters for appointment
// listings. The tenant scope is never read from the query.
func appointmentFilters(r *http.Request) models.AppointmentFilters {
	q := r.URL.Query()
	f := models.AppointmentFilters{
		BarberID:  q.Get("barber_id"),
		ServiceID: q.Get("service_id"),
		Status:    models.AppointmentStatus(q.Get("status")),
		Query:     q.Get("q"),
	}
	if v := q.Get("from"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			f.From = t
		}
	}
	if v := q.Get("to"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			f.To = t
		}
	}
	return f
}

func (s *Server) listAppointments(w http.ResponseWriter, r *http.Request) {
	shopID := chi.URLParam(r, "shopID")
	appts, err := s.manager.List(r.Context(), shopID, appointmentFilters(r))
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"appointments": appts})
}

func (s *Server) getAppointment(w http.ResponseWriter, r *http.Request) {
	appt, err := s.manager.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, appt)
}

func (s *Server) updateStatus(w http.ResponseWriter, r *http.Request) {
	var req StatusRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	appt, err := s.manager.UpdateStatus(r.Context(), chi.URLParam(r, "id"), models.AppointmentStatus(req.Status))
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, appt)
}

func (s *Server) markNoShow(w http.ResponseWriter, r *http.Request) {
	appt, err := s.manager.MarkNoShow(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, appt)
}

func (s *Server) reschedule(w http.ResponseWriter, r *http.Request) {
	var req RescheduleRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	appt, err := s.manager.Reschedule(r.Context(), chi.URLParam(r, "id"), req.Start)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, appt)
}

func (s *Server) deleteAppointment(w http.ResponseWriter, r *http.Request) {
	if err := s.manager.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeAppError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) batchStatus(w http.ResponseWriter, r *http.Request) {
	var req BatchStatusRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if len(req.IDs) == 0 {
		writeError(w, http.StatusBadRequest, "empty_batch", "ids must not be empty")
		return
	}

	result := s.manager.BatchUpdateStatus(r.Context(), req.IDs, models.AppointmentStatus(req.Status), nil)
	resp := BatchStatusResponse{AllOK: result.AllOK()}
	for _, item := range result.Items {
		resp.Items = append(resp.Items, BatchItemResponse{
			ID:    item.ID,
			OK:    item.Err == nil,
			Error: item.Error,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

// calendarEvents returns the projected events for a day, week or month
// window anchored at ref.
func (s *Server) calendarEvents(w http.ResponseWriter, r *http.Request) {
	shopID := chi.URLParam(r, "shopID")
	mode := calendar.Mode(r.URL.Query().Get("mode"))
	if mode == "" {
		mode = calendar.ModeWeek
	}
	if !mode.Valid() {
		writeError(w, http.StatusBadRequest, "invalid_mode", "mode must be day, week or month")
		return
	}
	ref, err := time.Parse("2006-01-02", r.URL.Query().Get("ref"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_ref", "ref must be YYYY-MM-DD")
		return
	}

	start, end := calendar.Window(mode, ref)
	f := appointmentFilters(r)
	f.From, f.To = start, end
	appts, err := s.manager.List(r.Context(), shopID, f)
	if err != nil {
		writeAppError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"mode":   mode,
		"start":  start,
		"end":    end,
		"events": calendar.Project(appts, start, end),
	})
}

// calendarMonth returns the padded month grid with per-day event buckets.
func (s *Server) calendarMonth(w http.ResponseWriter, r *http.Request) {
	shopID := chi.URLParam(r, "shopID")
	ref, err := time.Parse("2006-01-02", r.URL.Query().Get("ref"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_ref", "ref must be YYYY-MM-DD")
		return
	}

	start, end := calendar.GridWindow(ref)
	f := appointmentFilters(r)
	f.From, f.To = start, end
	appts, err := s.manager.List(r.Context(), shopID, f)
	if err != nil {
		writeAppError(w, err)
		return
	}

	events := calendar.Project(appts, start, end)
	writeJSON(w, http.StatusOK, map[string]any{
		"start": start,
		"end":   end,
		"cells": calendar.MonthCells(ref, events, calendar.DefaultMaxPerCell),
	})
}

// exportAppointments streams the filtered appointment list as an xlsx
// workbook.
func (s *Server) exportAppointments(w http.ResponseWriter, r *http.Request) {
	shopID := chi.URLParam(r, "shopID")
	appts, err := s.manager.List(r.Context(), shopID, appointmentFilters(r))
	if err != nil {
		writeAppError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", "agendamentos-"+shopID+".xlsx"))
	_ = export.AppointmentReport(w, "Agendamentos", appts)
}
