// Package filters implements pure predicate composition over barbershops,
// services and barbers. All filters AND their specified fields; a
// zero-value field imposes no constraint.
package filters

import (
	"sort"
	"strings"

	"styllobarbe/internal/models"
)

// TenantScope restricts barbershops to a network or owning admin. It is
// computed from the authenticated profile, never from user input, and is
// applied before any user-controlled filter. A zero scope means no
// restriction.
type TenantScope struct {
	NetworkID    string
	OwnerAdminID string
}

// Empty reports whether the scope restricts nothing.
func (s TenantScope) Empty() bool {
	return s.NetworkID == "" && s.OwnerAdminID == ""
}

func (s TenantScope) admits(b models.Barbershop) bool {
	if s.NetworkID != "" && b.NetworkID != s.NetworkID {
		return false
	}
	if s.OwnerAdminID != "" && b.OwnerAdminID != s.OwnerAdminID {
		return false
	}
	return true
}

// BarbershopFilter selects barbershops.
type BarbershopFilter struct {
	Query         string
	MaxDistanceKm float64
	MinRating     float64
	Scope         TenantScope
}

// Barbershops returns the shops matching every specified predicate, sorted
// ascending by distance.
func Barbershops(shops []models.Barbershop, f BarbershopFilter) []models.Barbershop {
	out := make([]models.Barbershop, 0, len(shops))
	q := strings.ToLower(strings.TrimSpace(f.Query))
	for _, shop := range shops {
		if !f.Scope.admits(shop) {
			continue
		}
		if q != "" &&
			!strings.Contains(strings.ToLower(shop.Name), q) &&
			!strings.Contains(strings.ToLower(shop.Address), q) {
			continue
		}
		if f.MaxDistanceKm > 0 && shop.DistanceKm > f.MaxDistanceKm {
			continue
		}
		if f.MinRating > 0 && shop.Rating < f.MinRating {
			continue
		}
		out = append(out, shop)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DistanceKm < out[j].DistanceKm
	})
	return out
}

// ServiceFilter selects services. Price bounds are inclusive.
type ServiceFilter struct {
	Category       models.ServiceCategory
	MinPriceCents  int64
	MaxPriceCents  int64
	MaxDurationMin int
	Query          string
}

// Services returns the services matching every specified predicate,
// preserving source order.
func Services(services []models.Service, f ServiceFilter) []models.Service {
	out := make([]models.Service, 0, len(services))
	q := strings.ToLower(strings.TrimSpace(f.Query))
	for _, svc := range services {
		if f.Category != "" && svc.Category != f.Category {
			continue
		}
		if f.MinPriceCents > 0 && svc.PriceCents < f.MinPriceCents {
			continue
		}
		if f.MaxPriceCents > 0 && svc.PriceCents > f.MaxPriceCents {
			continue
		}
		if f.MaxDurationMin > 0 && svc.DurationMin > f.MaxDurationMin {
			continue
		}
		if q != "" &&
			!strings.Contains(strings.ToLower(svc.Name), q) &&
			!strings.Contains(strings.ToLower(svc.Description), q) {
			continue
		}
		out = append(out, svc)
	}
	return out
}

// BarberFilter selects barbers.
type BarberFilter struct {
	Specialty     string
	MinRating     float64
	OnlyAvailable bool
}

// Barbers returns the barbers matching every specified predicate, sorted
// descending by rating.
func Barbers(barbers []models.Barber, f BarberFilter) []models.Barber {
	out := make([]models.Barber, 0, len(barbers))
	spec := strings.ToLower(strings.TrimSpace(f.Specialty))
	for _, b := range barbers {
		if spec != "" && !hasSpecialtySubstring(b, spec) {
			continue
		}
		if f.MinRating > 0 && b.Rating < f.MinRating {
			continue
		}
		if f.OnlyAvailable && !b.Available {
			continue
		}
		out = append(out, b)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Rating > out[j].Rating
	})
	return out
}

func hasSpecialtySubstring(b models.Barber, loweredQuery string) bool {
	for _, s := range b.Specialties {
		if strings.Contains(strings.ToLower(s), loweredQuery) {
			return true
		}
	}
	return false
}

// EligibleForService reports whether the barber may perform the service: any
// of the barber's specialties is a case-insensitive substring of the service
// name, or the service is a combo (combos admit any barber).
func EligibleForService(b models.Barber, svc models.Service) bool {
	if svc.Category == models.CategoryCombo {
		return true
	}
	name := strings.ToLower(svc.Name)
	for _, s := range b.Specialties {
		spec := strings.ToLower(strings.TrimSpace(s))
		if spec != "" && strings.Contains(name, spec) {
			return true
		}
	}
	return false
}

// EligibleBarbers returns the subset of barbers eligible for the service,
// sorted descending by rating. Used both for annotating a service and for
// restricting barber choice in the wizard.
func EligibleBarbers(svc models.Service, barbers []models.Barber) []models.Barber {
	out := make([]models.Barber, 0, len(barbers))
	for _, b := range barbers {
		if EligibleForService(b, svc) {
			out = append(out, b)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Rating > out[j].Rating
	})
	return out
}

// Appointments returns the appointments matching the filter spec. Query
// matches client or service name, case-insensitive.
func Appointments(appts []models.Appointment, f models.AppointmentFilters) []models.Appointment {
	out := make([]models.Appointment, 0, len(appts))
	q := strings.ToLower(strings.TrimSpace(f.Query))
	for _, a := range appts {
		if f.BarberID != "" && a.BarberID != f.BarberID {
			continue
		}
		if f.ServiceID != "" && a.ServiceID != f.ServiceID {
			continue
		}
		if f.Status != "" && a.Status != f.Status {
			continue
		}
		if !f.From.IsZero() && a.Start.Before(f.From) {
			continue
		}
		if !f.To.IsZero() && !a.Start.Before(f.To) {
			continue
		}
		if q != "" &&
			!strings.Contains(strings.ToLower(a.ClientName), q) &&
			!strings.Contains(strings.ToLower(a.ServiceName), q) {
			continue
		}
		out = append(out, a)
	}
	return out
}
