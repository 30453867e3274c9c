package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"styllobarbe/internal/apperr"
	"styllobarbe/internal/appointments"
	"styllobarbe/internal/booking"
	"styllobarbe/internal/clock"
	"styllobarbe/internal/filters"
	"styllobarbe/internal/models"
	"styllobarbe/internal/slots"
)

var testNow = time.Date(2026, 3, 11, 9, 0, 0, 0, time.UTC)

var (
	testShop = models.Barbershop{ID: "shop-1", Name: "Barbearia Centro", DistanceKm: 1.2, Rating: 4.7}

	testService = models.Service{
		ID: "svc-1", BarbershopID: "shop-1", Name: "Corte Masculino",
		Category: models.CategoryCut, PriceCents: 4500, DurationMin: 30,
	}

	testBarber = models.Barber{
		ID: "barber-1", BarbershopID: "shop-1", Name: "Carlos",
		Specialties: []string{"corte"}, Rating: 4.9, Available: true,
	}
	beardOnlyBarber = models.Barber{
		ID: "barber-2", BarbershopID: "shop-1", Name: "Rafael",
		Specialties: []string{"barba"}, Rating: 4.5, Available: true,
	}
)

// memCatalog serves the reference data for the wizard endpoints.
type memCatalog struct{}

func (memCatalog) List(_ context.Context, f filters.BarbershopFilter) ([]models.Barbershop, error) {
	return filters.Barbershops([]models.Barbershop{testShop}, f), nil
}

func (memCatalog) ListForBarbershop(_ context.Context, shopID string, f filters.ServiceFilter) ([]models.Service, error) {
	if shopID != testShop.ID {
		return nil, nil
	}
	svc := testService
	svc.EligibleBarbers = filters.EligibleBarbers(svc, []models.Barber{testBarber, beardOnlyBarber})
	return filters.Services([]models.Service{svc}, f), nil
}

func (memCatalog) ListBarbersForBarbershop(_ context.Context, shopID string, f filters.BarberFilter) ([]models.Barber, error) {
	if shopID != testShop.ID {
		return nil, nil
	}
	return filters.Barbers([]models.Barber{testBarber, beardOnlyBarber}, f), nil
}

// memRepo is an in-memory appointment store shared by the availability
// service, the wizard's creator and the lifecycle manager.
type memRepo struct {
	mu    sync.Mutex
	seq   int
	appts map[string]models.Appointment
}

func newMemRepo() *memRepo {
	return &memRepo{appts: make(map[string]models.Appointment)}
}

func (r *memRepo) Get(_ context.Context, id string) (*models.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.appts[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	return &a, nil
}

func (r *memRepo) List(_ context.Context, shopID string, f models.AppointmentFilters) ([]models.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Appointment
	for _, a := range r.appts {
		if shopID != "" && a.BarbershopID != shopID {
			continue
		}
		out = append(out, a)
	}
	return filters.Appointments(out, f), nil
}

func (r *memRepo) UpdateStatus(_ context.Context, id string, status models.AppointmentStatus, updatedAt time.Time) (*models.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.appts[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	a.Status = status
	a.UpdatedAt = updatedAt
	r.appts[id] = a
	return &a, nil
}

func (r *memRepo) Reschedule(_ context.Context, id string, newStart time.Time, updatedAt time.Time) (*models.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.appts[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	a.Start = newStart
	a.UpdatedAt = updatedAt
	r.appts[id] = a
	return &a, nil
}

func (r *memRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.appts[id]; !ok {
		return apperr.ErrNotFound
	}
	delete(r.appts, id)
	return nil
}

func (r *memRepo) Create(_ context.Context, req booking.CreateRequest) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	id := fmt.Sprintf("appt-%d", r.seq)
	r.appts[id] = models.Appointment{
		ID:           id,
		ClientID:     req.Client.ID,
		ClientName:   req.Client.Name,
		BarberID:     req.BarberID,
		ServiceID:    req.ServiceID,
		BarbershopID: req.BarbershopID,
		Start:        req.Start,
		DurationMin:  req.DurationMin,
		TotalCents:   req.TotalCents,
		Status:       models.StatusScheduled,
		Notes:        req.Notes,
		CreatedAt:    testNow,
		UpdatedAt:    testNow,
	}
	return id, nil
}

func (r *memRepo) put(a models.Appointment) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.appts[a.ID] = a
}

func newTestServer(t *testing.T) (*httptest.Server, *memRepo) {
	t.Helper()

	repo := newMemRepo()
	clk := clock.At(testNow)
	logger := zerolog.Nop()

	avail := slots.NewService(slots.NewGenerator(slots.DefaultGrid(), clk), repo)
	store := booking.NewStore(30 * time.Minute)
	wizard := booking.NewWizard(store, avail, repo, booking.Rules{MinAdvance: time.Hour}, clk, logger)

	catalog := memCatalog{}
	loader := booking.NewLoader(catalog, catalog, catalog)
	manager := appointments.NewManager(repo, avail, clk, logger)

	router := NewRouter(RouterConfig{
		Server: NewServer(wizard, loader, manager),
		Logger: logger,
	})
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv, repo
}

func doJSON(t *testing.T, method, url string, body any) (*http.Response, []byte) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out bytes.Buffer
	_, err = out.ReadFrom(resp.Body)
	require.NoError(t, err)
	return resp, out.Bytes()
}

func TestWizardFlow(t *testing.T) {
	srv, repo := newTestServer(t)
	base := srv.URL + "/api/v1/sessions"

	resp, body := doJSON(t, http.MethodPost, base, CreateSessionRequest{ClientID: "client-1"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var sess SessionResponse
	require.NoError(t, json.Unmarshal(body, &sess))
	require.Equal(t, "choosing_barbershop", sess.Step)
	sessionURL := base + "/" + sess.SessionID

	resp, body = doJSON(t, http.MethodPost, sessionURL+"/barbershop", SelectBarbershopRequest{BarbershopID: "shop-1"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(body, &sess))
	require.Equal(t, "choosing_service", sess.Step)

	resp, body = doJSON(t, http.MethodPost, sessionURL+"/service", SelectServiceRequest{ServiceID: "svc-1"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(body, &sess))
	require.Equal(t, "choosing_barber", sess.Step)

	resp, body = doJSON(t, http.MethodPost, sessionURL+"/barber", SelectBarberRequest{BarberID: "barber-1"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(body, &sess))
	require.Equal(t, "choosing_time", sess.Step)

	start := time.Date(2026, 3, 12, 10, 0, 0, 0, time.UTC)
	resp, body = doJSON(t, http.MethodPost, sessionURL+"/slot", SelectSlotRequest{Start: start})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(body, &sess))
	require.Equal(t, "confirming", sess.Step)
	require.True(t, sess.CanAdvance)

	resp, body = doJSON(t, http.MethodPost, sessionURL+"/confirm", ConfirmRequest{
		Client: models.ClientInfo{ID: "client-1", Name: "João", Phone: "+55 11 99999-0000"},
		Prefs:  models.NotifyPrefs{Email: true},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var confirmed ConfirmResponse
	require.NoError(t, json.Unmarshal(body, &confirmed))
	require.NotEmpty(t, confirmed.AppointmentID)

	created, err := repo.Get(context.Background(), confirmed.AppointmentID)
	require.NoError(t, err)
	require.Equal(t, "barber-1", created.BarberID)
	require.True(t, created.Start.Equal(start))

	// The session is discarded after confirmation.
	resp, _ = doJSON(t, http.MethodGet, sessionURL, nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSelectBarber_IneligibleRejected(t *testing.T) {
	srv, _ := newTestServer(t)
	base := srv.URL + "/api/v1/sessions"

	_, body := doJSON(t, http.MethodPost, base, CreateSessionRequest{ClientID: "c"})
	var sess SessionResponse
	require.NoError(t, json.Unmarshal(body, &sess))
	sessionURL := base + "/" + sess.SessionID

	doJSON(t, http.MethodPost, sessionURL+"/barbershop", SelectBarbershopRequest{BarbershopID: "shop-1"})
	doJSON(t, http.MethodPost, sessionURL+"/service", SelectServiceRequest{ServiceID: "svc-1"})

	// barber-2 only does beards; a cut service filters him out.
	resp, _ := doJSON(t, http.MethodPost, sessionURL+"/barber", SelectBarberRequest{BarberID: "barber-2"})
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCausalOrderEnforced(t *testing.T) {
	srv, _ := newTestServer(t)
	base := srv.URL + "/api/v1/sessions"

	_, body := doJSON(t, http.MethodPost, base, CreateSessionRequest{ClientID: "c"})
	var sess SessionResponse
	require.NoError(t, json.Unmarshal(body, &sess))
	sessionURL := base + "/" + sess.SessionID

	// Services cannot load before a barbershop is chosen.
	resp, _ := doJSON(t, http.MethodGet, sessionURL+"/services", nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodPost, sessionURL+"/service", SelectServiceRequest{ServiceID: "svc-1"})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestUnknownSession(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, body := doJSON(t, http.MethodGet, srv.URL+"/api/v1/sessions/ghost", nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	var er ErrorResponse
	require.NoError(t, json.Unmarshal(body, &er))
	require.Equal(t, "session_not_found", er.Error)
}

func TestStatusLifecycleEndpoints(t *testing.T) {
	srv, repo := newTestServer(t)
	repo.put(models.Appointment{
		ID: "a1", BarbershopID: "shop-1", BarberID: "barber-1", ServiceID: "svc-1",
		Start: time.Date(2026, 3, 12, 10, 0, 0, 0, time.UTC), DurationMin: 30,
		Status: models.StatusScheduled,
	})

	resp, body := doJSON(t, http.MethodPatch, srv.URL+"/api/v1/appointments/a1/status", StatusRequest{Status: "confirmed"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var appt models.Appointment
	require.NoError(t, json.Unmarshal(body, &appt))
	require.Equal(t, models.StatusConfirmed, appt.Status)

	// confirmed → completed skips in_progress and is rejected.
	resp, body = doJSON(t, http.MethodPatch, srv.URL+"/api/v1/appointments/a1/status", StatusRequest{Status: "completed"})
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	var er ErrorResponse
	require.NoError(t, json.Unmarshal(body, &er))
	require.Equal(t, "invalid_status_transition", er.Error)

	resp, _ = doJSON(t, http.MethodPost, srv.URL+"/api/v1/appointments/a1/no-show", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodPatch, srv.URL+"/api/v1/appointments/ghost/status", StatusRequest{Status: "confirmed"})
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRescheduleConflict(t *testing.T) {
	srv, repo := newTestServer(t)
	repo.put(models.Appointment{
		ID: "a1", BarbershopID: "shop-1", BarberID: "barber-1", ServiceID: "svc-1",
		Start: time.Date(2026, 3, 12, 10, 0, 0, 0, time.UTC), DurationMin: 30,
		Status: models.StatusScheduled,
	})
	repo.put(models.Appointment{
		ID: "a2", BarbershopID: "shop-1", BarberID: "barber-1", ServiceID: "svc-1",
		Start: time.Date(2026, 3, 12, 11, 0, 0, 0, time.UTC), DurationMin: 30,
		Status: models.StatusScheduled,
	})

	resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/v1/appointments/a1/reschedule",
		RescheduleRequest{Start: time.Date(2026, 3, 12, 11, 0, 0, 0, time.UTC)})
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	var er ErrorResponse
	require.NoError(t, json.Unmarshal(body, &er))
	require.Equal(t, "slot_conflict", er.Error)

	// The prior schedule is preserved.
	a1, err := repo.Get(context.Background(), "a1")
	require.NoError(t, err)
	require.Equal(t, 10, a1.Start.Hour())

	resp, _ = doJSON(t, http.MethodPost, srv.URL+"/api/v1/appointments/a1/reschedule",
		RescheduleRequest{Start: time.Date(2026, 3, 12, 14, 0, 0, 0, time.UTC)})
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestBatchStatusEndpoint(t *testing.T) {
	srv, repo := newTestServer(t)
	repo.put(models.Appointment{ID: "a1", BarbershopID: "shop-1", BarberID: "barber-1",
		Start: time.Date(2026, 3, 12, 10, 0, 0, 0, time.UTC), DurationMin: 30, Status: models.StatusScheduled})
	repo.put(models.Appointment{ID: "a2", BarbershopID: "shop-1", BarberID: "barber-1",
		Start: time.Date(2026, 3, 12, 11, 0, 0, 0, time.UTC), DurationMin: 30, Status: models.StatusCompleted})

	resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/v1/barbershops/shop-1/appointments/batch-status",
		BatchStatusRequest{IDs: []string{"a1", "a2", "ghost"}, Status: "cancelled"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out BatchStatusResponse
	require.NoError(t, json.Unmarshal(body, &out))
	require.False(t, out.AllOK)
	require.Len(t, out.Items, 3)
	require.True(t, out.Items[0].OK)
	require.False(t, out.Items[1].OK)
	require.False(t, out.Items[2].OK)
}

func TestCalendarEndpoints(t *testing.T) {
	srv, repo := newTestServer(t)
	repo.put(models.Appointment{ID: "a1", BarbershopID: "shop-1", BarberID: "barber-1",
		ClientName: "João", ServiceName: "Corte Masculino",
		Start: time.Date(2026, 3, 11, 10, 0, 0, 0, time.UTC), DurationMin: 30, Status: models.StatusConfirmed})

	resp, body := doJSON(t, http.MethodGet, srv.URL+"/api/v1/barbershops/shop-1/calendar?mode=week&ref=2026-03-11", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var week struct {
		Mode   string            `json:"mode"`
		Start  time.Time         `json:"start"`
		Events []json.RawMessage `json:"events"`
	}
	require.NoError(t, json.Unmarshal(body, &week))
	require.Equal(t, "week", week.Mode)
	// 2026-03-11 is a Wednesday; weeks start on Sunday.
	require.Equal(t, time.Date(2026, 3, 8, 0, 0, 0, 0, time.UTC), week.Start)
	require.Len(t, week.Events, 1)

	resp, body = doJSON(t, http.MethodGet, srv.URL+"/api/v1/barbershops/shop-1/calendar/month?ref=2026-03-11", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var month struct {
		Cells []json.RawMessage `json:"cells"`
	}
	require.NoError(t, json.Unmarshal(body, &month))
	require.Len(t, month.Cells, 35)

	resp, _ = doJSON(t, http.MethodGet, srv.URL+"/api/v1/barbershops/shop-1/calendar?mode=decade&ref=2026-03-11", nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestExportEndpoint(t *testing.T) {
	srv, repo := newTestServer(t)
	repo.put(models.Appointment{ID: "a1", BarbershopID: "shop-1", BarberID: "barber-1",
		ClientName: "João", ServiceName: "Corte Masculino",
		Start: time.Date(2026, 3, 11, 10, 0, 0, 0, time.UTC), DurationMin: 30, Status: models.StatusConfirmed})

	resp, body := doJSON(t, http.MethodGet, srv.URL+"/api/v1/barbershops/shop-1/appointments/export", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, resp.Header.Get("Content-Type"), "spreadsheetml")
	require.NotEmpty(t, body)
}
