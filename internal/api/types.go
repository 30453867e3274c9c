package api

import (
	"time"

	"styllobarbe/internal/booking"
	"styllobarbe/internal/models"
)

type CreateSessionRequest struct {
	ClientID string `json:"client_id"`
}

type SelectBarbershopRequest struct {
	BarbershopID string `json:"barbershop_id"`
}

type SelectServiceRequest struct {
	ServiceID string `json:"service_id"`
}

type SelectBarberRequest struct {
	BarberID string `json:"barber_id,omitempty"`
	Any      bool   `json:"any,omitempty"`
}

type SelectSlotRequest struct {
	Start time.Time `json:"start"`
}

type NotesRequest struct {
	Notes string `json:"notes"`
}

type ConfirmRequest struct {
	Client models.ClientInfo  `json:"client"`
	Prefs  models.NotifyPrefs `json:"prefs"`
}

type ConfirmResponse struct {
	AppointmentID string `json:"appointment_id"`
}

type RescheduleRequest struct {
	Start time.Time `json:"start"`
}

type StatusRequest struct {
	Status string `json:"status"`
}

type BatchStatusRequest struct {
	IDs    []string `json:"ids"`
	Status string   `json:"status"`
}

type BatchItemResponse struct {
	ID    string `json:"id"`
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

type BatchStatusResponse struct {
	Items []BatchItemResponse `json:"items"`
	AllOK bool                `json:"all_ok"`
}

// SessionResponse is the wizard state snapshot returned by every
// selection operation.
type SessionResponse struct {
	SessionID    string             `json:"session_id"`
	Step         string             `json:"step"`
	CanAdvance   bool               `json:"can_advance"`
	Barbershop   *models.Barbershop `json:"barbershop,omitempty"`
	Service      *models.Service    `json:"service,omitempty"`
	BarberID     string             `json:"barber_id,omitempty"`
	AnyBarber    bool               `json:"any_barber,omitempty"`
	Start        *time.Time         `json:"start,omitempty"`
	End          *time.Time         `json:"end,omitempty"`
	Notes        string             `json:"notes,omitempty"`
	SlotBarberID string             `json:"slot_barber_id,omitempty"`
}

func sessionResponse(sessionID string, sel booking.Selection) SessionResponse {
	resp := SessionResponse{
		SessionID:  sessionID,
		Step:       string(sel.Step()),
		CanAdvance: sel.CanAdvance(),
		Barbershop: sel.Barbershop,
		Service:    sel.Service,
		AnyBarber:  sel.Barber.Any(),
		Start:      sel.Start,
		Notes:      sel.Notes,
	}
	if b, ok := sel.Barber.Specific(); ok {
		resp.BarberID = b.ID
	}
	if sel.Barber.Any() {
		resp.SlotBarberID = sel.SlotBarberID
	}
	if end, ok := sel.End(); ok {
		resp.End = &end
	}
	return resp
}
