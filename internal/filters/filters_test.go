package filters

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"styllobarbe/internal/models"
)

func shopFixtures() []models.Barbershop {
	return []models.Barbershop{
		{ID: "s1", Name: "Corte Nobre", Address: "Rua Augusta 100", Rating: 4.8, DistanceKm: 3.2, NetworkID: "net-a"},
		{ID: "s2", Name: "Barba Negra", Address: "Av. Paulista 900", Rating: 4.2, DistanceKm: 1.1, NetworkID: "net-b"},
		{ID: "s3", Name: "Styllo Centro", Address: "Rua do Centro 5", Rating: 3.9, DistanceKm: 0.4, NetworkID: "net-a", OwnerAdminID: "adm-1"},
	}
}

func TestBarbershops_FiltersAndOrder(t *testing.T) {
	shops := shopFixtures()

	t.Run("no filter sorts by distance", func(t *testing.T) {
		got := Barbershops(shops, BarbershopFilter{})
		assert.Len(t, got, 3)
		assert.Equal(t, "s3", got[0].ID)
		assert.Equal(t, "s2", got[1].ID)
		assert.Equal(t, "s1", got[2].ID)
	})

	t.Run("query matches name or address case-insensitive", func(t *testing.T) {
		got := Barbershops(shops, BarbershopFilter{Query: "PAULISTA"})
		assert.Len(t, got, 1)
		assert.Equal(t, "s2", got[0].ID)
	})

	t.Run("distance and rating AND together", func(t *testing.T) {
		got := Barbershops(shops, BarbershopFilter{MaxDistanceKm: 4, MinRating: 4.5})
		assert.Len(t, got, 1)
		assert.Equal(t, "s1", got[0].ID)
	})

	t.Run("tenant scope wins over other filters", func(t *testing.T) {
		got := Barbershops(shops, BarbershopFilter{
			Scope: TenantScope{NetworkID: "net-a"},
		})
		assert.Len(t, got, 2)
		for _, s := range got {
			assert.Equal(t, "net-a", s.NetworkID)
		}

		// Even a matching query cannot leak a shop outside the scope.
		got = Barbershops(shops, BarbershopFilter{
			Query: "barba",
			Scope: TenantScope{NetworkID: "net-a"},
		})
		assert.Empty(t, got)
	})

	t.Run("owner admin scoping", func(t *testing.T) {
		got := Barbershops(shops, BarbershopFilter{Scope: TenantScope{OwnerAdminID: "adm-1"}})
		assert.Len(t, got, 1)
		assert.Equal(t, "s3", got[0].ID)
	})
}

func TestServices_InclusiveBoundsAndSourceOrder(t *testing.T) {
	services := []models.Service{
		{ID: "v1", Name: "Corte Masculino", Category: models.CategoryCut, PriceCents: 4500, DurationMin: 30},
		{ID: "v2", Name: "Barba Completa", Category: models.CategoryBeard, PriceCents: 3500, DurationMin: 30},
		{ID: "v3", Name: "Corte + Barba", Category: models.CategoryCombo, PriceCents: 7000, DurationMin: 60},
	}

	got := Services(services, ServiceFilter{MinPriceCents: 3500, MaxPriceCents: 4500})
	assert.Len(t, got, 2)
	// Source order preserved.
	assert.Equal(t, "v1", got[0].ID)
	assert.Equal(t, "v2", got[1].ID)

	got = Services(services, ServiceFilter{Category: models.CategoryCombo})
	assert.Len(t, got, 1)
	assert.Equal(t, "v3", got[0].ID)

	got = Services(services, ServiceFilter{MaxDurationMin: 30, Query: "corte"})
	assert.Len(t, got, 1)
	assert.Equal(t, "v1", got[0].ID)
}

func TestBarbers_RatingOrder(t *testing.T) {
	barbers := []models.Barber{
		{ID: "b1", Name: "João", Specialties: []string{"corte"}, Rating: 4.1, Available: true},
		{ID: "b2", Name: "Pedro", Specialties: []string{"barba"}, Rating: 4.9, Available: false},
		{ID: "b3", Name: "Lucas", Specialties: []string{"corte", "barba"}, Rating: 4.5, Available: true},
	}

	got := Barbers(barbers, BarberFilter{})
	assert.Equal(t, []string{"b2", "b3", "b1"}, ids(got))

	got = Barbers(barbers, BarberFilter{OnlyAvailable: true, MinRating: 4.2})
	assert.Equal(t, []string{"b3"}, ids(got))

	got = Barbers(barbers, BarberFilter{Specialty: "BARBA"})
	assert.Equal(t, []string{"b2", "b3"}, ids(got))
}

func ids(barbers []models.Barber) []string {
	out := make([]string, len(barbers))
	for i, b := range barbers {
		out[i] = b.ID
	}
	return out
}

func TestEligibility(t *testing.T) {
	corte := models.Service{Name: "Corte Masculino", Category: models.CategoryCut}
	combo := models.Service{Name: "Pacote Noivo", Category: models.CategoryCombo}

	cutter := models.Barber{ID: "b1", Specialties: []string{"Corte"}}
	shaver := models.Barber{ID: "b2", Specialties: []string{"Barba"}}

	assert.True(t, EligibleForService(cutter, corte), "specialty substring of service name")
	assert.False(t, EligibleForService(shaver, corte))
	assert.True(t, EligibleForService(shaver, combo), "combo admits any barber")

	eligible := EligibleBarbers(corte, []models.Barber{shaver, cutter})
	assert.Equal(t, []string{"b1"}, ids(eligible))

	eligible = EligibleBarbers(combo, []models.Barber{shaver, cutter})
	assert.Len(t, eligible, 2)
}

func TestAppointments_PassThrough(t *testing.T) {
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	appts := []models.Appointment{
		{ID: "a1", BarberID: "b1", ServiceName: "Corte", Status: models.StatusScheduled, Start: day.Add(9 * time.Hour)},
		{ID: "a2", BarberID: "b2", ServiceName: "Barba", Status: models.StatusConfirmed, Start: day.Add(14 * time.Hour)},
		{ID: "a3", BarberID: "b1", ClientName: "Marcos", Status: models.StatusCancelled, Start: day.AddDate(0, 0, 1)},
	}

	assert.Len(t, Appointments(appts, models.AppointmentFilters{}), 3)

	got := Appointments(appts, models.AppointmentFilters{BarberID: "b1"})
	assert.Len(t, got, 2)

	got = Appointments(appts, models.AppointmentFilters{
		From: day, To: day.AddDate(0, 0, 1),
	})
	assert.Len(t, got, 2)

	got = Appointments(appts, models.AppointmentFilters{Query: "marcos"})
	assert.Len(t, got, 1)
	assert.Equal(t, "a3", got[0].ID)

	got = Appointments(appts, models.AppointmentFilters{BarberID: "b1", Status: models.StatusScheduled})
	assert.Len(t, got, 1)
	assert.Equal(t, "a1", got[0].ID)
}
