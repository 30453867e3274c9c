package booking

import (
	"context"
	"sync"

	"styllobarbe/internal/apperr"
	"styllobarbe/internal/filters"
	"styllobarbe/internal/models"
)

// BarbershopRepository lists barbershops.
type BarbershopRepository interface {
	List(ctx context.Context, f filters.BarbershopFilter) ([]models.Barbershop, error)
}

// ServiceRepository lists a barbershop's services.
type ServiceRepository interface {
	ListForBarbershop(ctx context.Context, barbershopID string, f filters.ServiceFilter) ([]models.Service, error)
}

// BarberRepository lists a barbershop's barbers.
type BarberRepository interface {
	ListBarbersForBarbershop(ctx context.Context, barbershopID string, f filters.BarberFilter) ([]models.Barber, error)
}

type resource string

const (
	resBarbershops resource = "barbershops"
	resServices    resource = "services"
	resBarbers     resource = "barbers"
)

// Loader issues the wizard's dependent list loads in causal order: services
// only after a barbershop is chosen, barbers only after a service. Each
// load is tagged with a generation; a response whose generation is no
// longer current is discarded with ErrStaleLoad instead of being applied.
type Loader struct {
	shops    BarbershopRepository
	services ServiceRepository
	barbers  BarberRepository

	mu   sync.Mutex
	gens map[string]map[resource]uint64
}

// NewLoader creates a loader over the three reference-data repositories.
func NewLoader(shops BarbershopRepository, services ServiceRepository, barbers BarberRepository) *Loader {
	return &Loader{
		shops:    shops,
		services: services,
		barbers:  barbers,
		gens:     make(map[string]map[resource]uint64),
	}
}

func (l *Loader) begin(sessionID string, res resource) uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	m, ok := l.gens[sessionID]
	if !ok {
		m = make(map[resource]uint64)
		l.gens[sessionID] = m
	}
	m[res]++
	return m[res]
}

func (l *Loader) current(sessionID string, res resource, gen uint64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.gens[sessionID][res] == gen
}

// Invalidate bumps every generation for the session, so that in-flight
// responses issued before a navigation are discarded.
func (l *Loader) Invalidate(sessionID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	m, ok := l.gens[sessionID]
	if !ok {
		m = make(map[resource]uint64)
		l.gens[sessionID] = m
	}
	for _, res := range []resource{resBarbershops, resServices, resBarbers} {
		m[res]++
	}
}

// Forget drops the session's generation bookkeeping.
func (l *Loader) Forget(sessionID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.gens, sessionID)
}

// Barbershops loads the shop list for the first wizard step.
func (l *Loader) Barbershops(ctx context.Context, sessionID string, f filters.BarbershopFilter) ([]models.Barbershop, error) {
	gen := l.begin(sessionID, resBarbershops)
	shops, err := l.shops.List(ctx, f)
	if err != nil {
		return nil, apperr.Collaborator("list barbershops", err)
	}
	if !l.current(sessionID, resBarbershops, gen) {
		return nil, apperr.ErrStaleLoad
	}
	return shops, nil
}

// Services loads the service list. It is not issued until the session has
// a barbershop selected.
func (l *Loader) Services(ctx context.Context, session *Session, f filters.ServiceFilter) ([]models.Service, error) {
	sel := session.Snapshot()
	if sel.Barbershop == nil {
		return nil, apperr.Validation("service", "choose a barbershop first")
	}
	shopID := sel.Barbershop.ID

	gen := l.begin(session.ID, resServices)
	services, err := l.services.ListForBarbershop(ctx, shopID, f)
	if err != nil {
		return nil, apperr.Collaborator("list services", err)
	}
	// Discard if superseded or if the shop changed while in flight.
	if !l.current(session.ID, resServices, gen) {
		return nil, apperr.ErrStaleLoad
	}
	if now := session.Snapshot(); now.Barbershop == nil || now.Barbershop.ID != shopID {
		return nil, apperr.ErrStaleLoad
	}
	return services, nil
}

// Barbers loads barbers eligible for the selected service. It is not
// issued until the session has a service selected.
func (l *Loader) Barbers(ctx context.Context, session *Session, f filters.BarberFilter) ([]models.Barber, error) {
	sel := session.Snapshot()
	if sel.Barbershop == nil || sel.Service == nil {
		return nil, apperr.Validation("barber", "choose a service first")
	}
	shopID, serviceID := sel.Barbershop.ID, sel.Service.ID

	gen := l.begin(session.ID, resBarbers)
	barbers, err := l.barbers.ListBarbersForBarbershop(ctx, shopID, f)
	if err != nil {
		return nil, apperr.Collaborator("list barbers", err)
	}
	if !l.current(session.ID, resBarbers, gen) {
		return nil, apperr.ErrStaleLoad
	}
	if now := session.Snapshot(); now.Service == nil || now.Service.ID != serviceID {
		return nil, apperr.ErrStaleLoad
	}
	return filters.EligibleBarbers(*sel.Service, barbers), nil
}
