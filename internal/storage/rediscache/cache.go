// Package rediscache decorates the reference-data catalog with an
// optional Redis read-through cache. Barbershops, services and barbers
// are immutable reference data, so full lists are cached per scope and
// the pure filter layer runs after the cache.
package rediscache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"styllobarbe/internal/filters"
	"styllobarbe/internal/models"
)

// Catalog is the underlying reference-data source, typically the sqlite
// catalog.
type Catalog interface {
	List(ctx context.Context, f filters.BarbershopFilter) ([]models.Barbershop, error)
	ListForBarbershop(ctx context.Context, barbershopID string, f filters.ServiceFilter) ([]models.Service, error)
	ListBarbersForBarbershop(ctx context.Context, barbershopID string, f filters.BarberFilter) ([]models.Barber, error)
}

// CachedCatalog serves catalog reads through Redis. With no Redis client
// configured it is a transparent pass-through.
type CachedCatalog struct {
	source Catalog

	redis    *redis.Client
	cacheTTL time.Duration
}

// NewCachedCatalog wraps a catalog without caching enabled.
func NewCachedCatalog(source Catalog) *CachedCatalog {
	return &CachedCatalog{source: source}
}

// UseRedisCache configures optional Redis caching for list reads.
func (c *CachedCatalog) UseRedisCache(redisClient *redis.Client, ttl time.Duration) {
	c.redis = redisClient
	c.cacheTTL = ttl
}

// List returns barbershops matching the filter. The unfiltered list for
// the tenant scope is the cache unit so every filter combination shares
// one entry.
func (c *CachedCatalog) List(ctx context.Context, f filters.BarbershopFilter) ([]models.Barbershop, error) {
	cacheKey := fmt.Sprintf("barbershops:%s:%s", f.Scope.NetworkID, f.Scope.OwnerAdminID)

	var shops []models.Barbershop
	if c.readCache(ctx, cacheKey, &shops) {
		return filters.Barbershops(shops, f), nil
	}

	shops, err := c.source.List(ctx, filters.BarbershopFilter{Scope: f.Scope})
	if err != nil {
		return nil, err
	}
	c.writeCache(ctx, cacheKey, shops)
	return filters.Barbershops(shops, f), nil
}

// ListForBarbershop returns the shop's services matching the filter.
func (c *CachedCatalog) ListForBarbershop(ctx context.Context, barbershopID string, f filters.ServiceFilter) ([]models.Service, error) {
	cacheKey := "services:" + barbershopID

	var services []models.Service
	if c.readCache(ctx, cacheKey, &services) {
		return filters.Services(services, f), nil
	}

	services, err := c.source.ListForBarbershop(ctx, barbershopID, filters.ServiceFilter{})
	if err != nil {
		return nil, err
	}
	c.writeCache(ctx, cacheKey, services)
	return filters.Services(services, f), nil
}

// ListBarbersForBarbershop returns the shop's barbers matching the filter.
func (c *CachedCatalog) ListBarbersForBarbershop(ctx context.Context, barbershopID string, f filters.BarberFilter) ([]models.Barber, error) {
	cacheKey := "barbers:" + barbershopID

	var barbers []models.Barber
	if c.readCache(ctx, cacheKey, &barbers) {
		return filters.Barbers(barbers, f), nil
	}

	barbers, err := c.source.ListBarbersForBarbershop(ctx, barbershopID, filters.BarberFilter{})
	if err != nil {
		return nil, err
	}
	c.writeCache(ctx, cacheKey, barbers)
	return filters.Barbers(barbers, f), nil
}

// Invalidate drops the cached lists for a barbershop after reference data
// changes, e.g. a seed run.
func (c *CachedCatalog) Invalidate(ctx context.Context, barbershopID string) {
	if c.redis == nil {
		return
	}
	_ = c.redis.Del(ctx, "services:"+barbershopID, "barbers:"+barbershopID).Err()
}

func (c *CachedCatalog) readCache(ctx context.Context, key string, out any) bool {
	if c.redis == nil || c.cacheTTL <= 0 {
		return false
	}
	val, err := c.redis.Get(ctx, key).Result()
	if err != nil {
		return false
	}
	if err := json.Unmarshal([]byte(val), out); err != nil {
		return false
	}
	return true
}

func (c *CachedCatalog) writeCache(ctx context.Context, key string, val any) {
	if c.redis == nil || c.cacheTTL <= 0 {
		return
	}
	data, err := json.Marshal(val)
	if err != nil {
		return
	}
	_ = c.redis.Set(ctx, key, data, c.cacheTTL).Err()
}
