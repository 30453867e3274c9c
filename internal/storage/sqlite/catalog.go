package sqlite

import (
	"context"
	"fmt"
	"strings"

	"styllobarbe/internal/filters"
	"styllobarbe/internal/models"
)

// Catalog serves the reference-data repositories (barbershops, services,
// barbers). Rows are scanned and the pure predicate layer applies the
// filter spec, so SQL stays trivial and ordering rules live in one place.
type Catalog struct {
	db *DB
}

// NewCatalog creates a catalog over the database.
func NewCatalog(db *DB) *Catalog {
	return &Catalog{db: db}
}

// List returns barbershops matching the filter, ascending by distance.
func (c *Catalog) List(ctx context.Context, f filters.BarbershopFilter) ([]models.Barbershop, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT id, name, address, phone, rating, rating_count, distance_km,
			travel_time_min, COALESCE(network_id, ''), COALESCE(owner_admin_id, '')
		FROM barbershops`)
	if err != nil {
		return nil, fmt.Errorf("list barbershops: %w", err)
	}
	defer rows.Close()

	var shops []models.Barbershop
	for rows.Next() {
		var s models.Barbershop
		if err := rows.Scan(&s.ID, &s.Name, &s.Address, &s.Phone, &s.Rating,
			&s.RatingCount, &s.DistanceKm, &s.TravelTimeMin, &s.NetworkID, &s.OwnerAdminID); err != nil {
			return nil, fmt.Errorf("scan barbershop: %w", err)
		}
		shops = append(shops, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return filters.Barbershops(shops, f), nil
}

// ListForBarbershop returns the shop's services matching the filter, each
// annotated with its eligible barbers.
func (c *Catalog) ListForBarbershop(ctx context.Context, barbershopID string, f filters.ServiceFilter) ([]models.Service, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT id, barbershop_id, name, COALESCE(description, ''), category,
			price_cents, duration_min
		FROM services WHERE barbershop_id = ?`, barbershopID)
	if err != nil {
		return nil, fmt.Errorf("list services: %w", err)
	}
	defer rows.Close()

	var services []models.Service
	for rows.Next() {
		var s models.Service
		if err := rows.Scan(&s.ID, &s.BarbershopID, &s.Name, &s.Description,
			&s.Category, &s.PriceCents, &s.DurationMin); err != nil {
			return nil, fmt.Errorf("scan service: %w", err)
		}
		services = append(services, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	services = filters.Services(services, f)
	if len(services) == 0 {
		return services, nil
	}

	barbers, err := c.barbersFor(ctx, barbershopID)
	if err != nil {
		return nil, err
	}
	for i := range services {
		services[i].EligibleBarbers = filters.EligibleBarbers(services[i], barbers)
	}
	return services, nil
}

// ListBarbersForBarbershop returns the shop's barbers matching the filter,
// descending by rating.
func (c *Catalog) ListBarbersForBarbershop(ctx context.Context, barbershopID string, f filters.BarberFilter) ([]models.Barber, error) {
	barbers, err := c.barbersFor(ctx, barbershopID)
	if err != nil {
		return nil, err
	}
	return filters.Barbers(barbers, f), nil
}

func (c *Catalog) barbersFor(ctx context.Context, barbershopID string) ([]models.Barber, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT id, barbershop_id, name, COALESCE(specialties, ''), rating,
			rating_count, available
		FROM barbers WHERE barbershop_id = ?`, barbershopID)
	if err != nil {
		return nil, fmt.Errorf("list barbers: %w", err)
	}
	defer rows.Close()

	var barbers []models.Barber
	for rows.Next() {
		var b models.Barber
		var specialties string
		if err := rows.Scan(&b.ID, &b.BarbershopID, &b.Name, &specialties,
			&b.Rating, &b.RatingCount, &b.Available); err != nil {
			return nil, fmt.Errorf("scan barber: %w", err)
		}
		b.Specialties = splitSpecialties(specialties)
		barbers = append(barbers, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return barbers, nil
}

// Specialties are stored comma-separated.
func splitSpecialties(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func joinSpecialties(specialties []string) string {
	return strings.Join(specialties, ",")
}

// InsertBarbershop adds reference data, used by seeding.
func (c *Catalog) InsertBarbershop(ctx context.Context, s models.Barbershop) error {
	_, err := c.db.ExecContext(ctx,
		`INSERT INTO barbershops (id, name, address, phone, rating, rating_count,
			distance_km, travel_time_min, network_id, owner_admin_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.ID, s.Name, s.Address, s.Phone, s.Rating, s.RatingCount,
		s.DistanceKm, s.TravelTimeMin, s.NetworkID, s.OwnerAdminID)
	return err
}

// InsertService adds reference data, used by seeding.
func (c *Catalog) InsertService(ctx context.Context, s models.Service) error {
	_, err := c.db.ExecContext(ctx,
		`INSERT INTO services (id, barbershop_id, name, description, category,
			price_cents, duration_min)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		s.ID, s.BarbershopID, s.Name, s.Description, s.Category, s.PriceCents, s.DurationMin)
	return err
}

// InsertBarber adds reference data, used by seeding.
func (c *Catalog) InsertBarber(ctx context.Context, b models.Barber) error {
	_, err := c.db.ExecContext(ctx,
		`INSERT INTO barbers (id, barbershop_id, name, specialties, rating,
			rating_count, available)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		b.ID, b.BarbershopID, b.Name, joinSpecialties(b.Specialties),
		b.Rating, b.RatingCount, b.Available)
	return err
}
