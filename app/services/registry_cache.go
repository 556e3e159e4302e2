package services

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/medops/core-engine/app/dto"
	"github.com/redis/go-redis/v9"
)

const activeClientsCacheKey = "registry:active_clients"

// CachedRegistryClient decorates a RegistryAPI with a Redis cache for the
// active-client list. Clients are immutable reference data, so a short TTL is
// safe; every other operation passes straight through. Cache failures are
// logged and ignored so Redis being down never surfaces to the flows.
type CachedRegistryClient struct {
	inner RegistryAPI
	cache *redis.Client
	ttl   time.Duration
}

// NewCachedRegistryClient wraps inner with a client-list cache. A nil cache
// client disables caching entirely.
func NewCachedRegistryClient(inner RegistryAPI, cache *redis.Client, ttl time.Duration) RegistryAPI {
	if cache == nil {
		return inner
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &CachedRegistryClient{inner: inner, cache: cache, ttl: ttl}
}

// FetchActiveClients serves the client list from Redis when possible
func (c *CachedRegistryClient) FetchActiveClients(ctx context.Context) ([]dto.ClientDTO, error) {
	if raw, err := c.cache.Get(ctx, activeClientsCacheKey).Bytes(); err == nil {
		var cached []dto.ClientDTO
		if err := json.Unmarshal(raw, &cached); err == nil {
			return cached, nil
		}
	}

	clients, err := c.inner.FetchActiveClients(ctx)
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(clients); err == nil {
		if err := c.cache.Set(ctx, activeClientsCacheKey, raw, c.ttl).Err(); err != nil {
			log.Printf("registry cache: failed to store active clients: %v", err)
		}
	}

	return clients, nil
}

func (c *CachedRegistryClient) FetchContracts(ctx context.Context, clientID string) ([]dto.ContractDTO, error) {
	return c.inner.FetchContracts(ctx, clientID)
}

func (c *CachedRegistryClient) FetchOperationUnits(ctx context.Context, contractInternalID string) ([]dto.OperationUnitDTO, error) {
	return c.inner.FetchOperationUnits(ctx, contractInternalID)
}

func (c *CachedRegistryClient) FetchAssignedCAGs(ctx context.Context, operationUnitInternalID string, page, size int) (*dto.AssignedCAGListResponse, error) {
	return c.inner.FetchAssignedCAGs(ctx, operationUnitInternalID, page, size)
}

func (c *CachedRegistryClient) SearchCAGs(ctx context.Context, params dto.CAGSearchParams) ([]dto.UnassignedCAGDTO, error) {
	return c.inner.SearchCAGs(ctx, params)
}

func (c *CachedRegistryClient) AssignCAGs(ctx context.Context, req dto.AssignCAGsRequest) (string, error) {
	return c.inner.AssignCAGs(ctx, req)
}

func (c *CachedRegistryClient) UpdateCAGStatus(ctx context.Context, req dto.UpdateCAGStatusRequest) (string, error) {
	return c.inner.UpdateCAGStatus(ctx, req)
}
