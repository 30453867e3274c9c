package booking

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"styllobarbe/internal/apperr"
	"styllobarbe/internal/filters"
	"styllobarbe/internal/models"
)

type fakeShops struct{ shops []models.Barbershop }

func (f *fakeShops) List(_ context.Context, flt filters.BarbershopFilter) ([]models.Barbershop, error) {
	return filters.Barbershops(f.shops, flt), nil
}

type fakeServices struct {
	services []models.Service
	// hook runs while the request is "in flight", before the result is
	// checked for staleness.
	hook func()
}

func (f *fakeServices) ListForBarbershop(_ context.Context, shopID string, flt filters.ServiceFilter) ([]models.Service, error) {
	if f.hook != nil {
		f.hook()
	}
	var scoped []models.Service
	for _, s := range f.services {
		if s.BarbershopID == shopID {
			scoped = append(scoped, s)
		}
	}
	return filters.Services(scoped, flt), nil
}

type fakeBarbers struct{ barbers []models.Barber }

func (f *fakeBarbers) ListBarbersForBarbershop(_ context.Context, shopID string, flt filters.BarberFilter) ([]models.Barber, error) {
	var scoped []models.Barber
	for _, b := range f.barbers {
		if b.BarbershopID == shopID {
			scoped = append(scoped, b)
		}
	}
	return filters.Barbers(scoped, flt), nil
}

func TestLoader_CausalOrder(t *testing.T) {
	loader := NewLoader(&fakeShops{}, &fakeServices{}, &fakeBarbers{})
	store := NewStore(time.Hour)
	session := store.Create("c1")

	_, err := loader.Services(context.Background(), session, filters.ServiceFilter{})
	assert.True(t, apperr.IsValidation(err), "services need a barbershop first")

	_, err = loader.Barbers(context.Background(), session, filters.BarberFilter{})
	assert.True(t, apperr.IsValidation(err), "barbers need a service first")
}

func TestLoader_EligibilityApplied(t *testing.T) {
	services := &fakeServices{services: []models.Service{
		{ID: "svc1", BarbershopID: "shop1", Name: "Corte Masculino", Category: models.CategoryCut, DurationMin: 30},
	}}
	barbers := &fakeBarbers{barbers: []models.Barber{
		{ID: "b1", BarbershopID: "shop1", Specialties: []string{"corte"}, Rating: 4.0, Available: true},
		{ID: "b2", BarbershopID: "shop1", Specialties: []string{"barba"}, Rating: 4.9, Available: true},
	}}
	loader := NewLoader(&fakeShops{}, services, barbers)
	store := NewStore(time.Hour)
	session := store.Create("c1")
	session.With(func(sel *Selection) {
		sel.SelectBarbershop(models.Barbershop{ID: "shop1"})
		sel.SelectService(services.services[0])
	})

	got, err := loader.Barbers(context.Background(), session, filters.BarberFilter{})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "b1", got[0].ID, "only specialty-matching barbers are eligible")
}

func TestLoader_StaleResponseDiscarded(t *testing.T) {
	store := NewStore(time.Hour)
	session := store.Create("c1")
	session.With(func(sel *Selection) {
		sel.SelectBarbershop(models.Barbershop{ID: "shop1"})
	})

	services := &fakeServices{services: []models.Service{
		{ID: "svc1", BarbershopID: "shop1", Name: "Corte"},
	}}
	loader := NewLoader(&fakeShops{}, services, &fakeBarbers{})

	// The user navigates away while the request is in flight.
	services.hook = func() { loader.Invalidate(session.ID) }

	_, err := loader.Services(context.Background(), session, filters.ServiceFilter{})
	assert.ErrorIs(t, err, apperr.ErrStaleLoad)
}

func TestLoader_ShopChangeInFlightDiscards(t *testing.T) {
	store := NewStore(time.Hour)
	session := store.Create("c1")
	session.With(func(sel *Selection) {
		sel.SelectBarbershop(models.Barbershop{ID: "shop1"})
	})

	services := &fakeServices{services: []models.Service{
		{ID: "svc1", BarbershopID: "shop1", Name: "Corte"},
	}}
	loader := NewLoader(&fakeShops{}, services, &fakeBarbers{})
	services.hook = func() {
		session.With(func(sel *Selection) {
			sel.SelectBarbershop(models.Barbershop{ID: "shop2"})
		})
	}

	_, err := loader.Services(context.Background(), session, filters.ServiceFilter{})
	assert.ErrorIs(t, err, apperr.ErrStaleLoad)
}

func TestLoader_FreshLoadSucceeds(t *testing.T) {
	store := NewStore(time.Hour)
	session := store.Create("c1")
	session.With(func(sel *Selection) {
		sel.SelectBarbershop(models.Barbershop{ID: "shop1"})
	})

	services := &fakeServices{services: []models.Service{
		{ID: "svc1", BarbershopID: "shop1", Name: "Corte"},
		{ID: "svc2", BarbershopID: "shop2", Name: "Barba"},
	}}
	loader := NewLoader(&fakeShops{}, services, &fakeBarbers{})

	got, err := loader.Services(context.Background(), session, filters.ServiceFilter{})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "svc1", got[0].ID)
}
