package usecase

import (
	"context"
	"fmt"
	"time"

	"artkit-backend/internal/domain"
	"artkit-backend/pkg/cache"
	"artkit-backend/pkg/logger"

	"github.com/goccy/go-json"
)

const memKeyArtTools = "arttools:list"

// CatalogUsecase serves the art-tools catalog with two cache layers in
// front of the remote API: a TTL'd memory cache and the durable KV
// copy under "artTools". The favorites join reads caches only; the
// remote is consulted by catalog reads and explicit refreshes.
type CatalogUsecase struct {
	source domain.CatalogSource
	kv     domain.KVStore
	cache  cache.CacheService
	ttl    time.Duration
}

func NewCatalogUsecase(source domain.CatalogSource, kv domain.KVStore, cache cache.CacheService, ttl time.Duration) *CatalogUsecase {
	return &CatalogUsecase{
		source: source,
		kv:     kv,
		cache:  cache,
		ttl:    ttl,
	}
}

// Snapshot returns the catalog, first cache hit wins: memory, then KV,
// then the remote API.
func (u *CatalogUsecase) Snapshot(ctx context.Context) ([]domain.ArtTool, error) {
	if tools, ok := u.cachedSnapshot(ctx); ok {
		return tools, nil
	}
	return u.Refresh(ctx)
}

// Refresh fetches the catalog from the remote API and rewrites both
// cache layers. A KV write failure is logged and does not fail the
// refresh; the memory layer still serves the fresh copy.
func (u *CatalogUsecase) Refresh(ctx context.Context) ([]domain.ArtTool, error) {
	tools, err := u.source.Fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch catalog: %w", err)
	}

	if data, err := json.Marshal(tools); err != nil {
		logger.Error().Err(err).Msg("Failed to encode catalog for cache")
	} else if err := u.kv.Set(ctx, domain.KVKeyArtTools, data); err != nil {
		logger.Error().Err(err).Msg("Failed to cache catalog in KV store")
	}
	u.cache.Set(memKeyArtTools, tools, u.ttl)

	return tools, nil
}

// GetByID returns one catalog item, or nil when the id is unknown.
func (u *CatalogUsecase) GetByID(ctx context.Context, id string) (*domain.ArtTool, error) {
	tools, err := u.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	for i := range tools {
		if tools[i].ID == id {
			return &tools[i], nil
		}
	}
	return nil, nil
}

// Resolve joins favorite ids against the cached catalog, preserving id
// order. The join is best effort: with no cached catalog, or for ids
// with no catalog record, entries are simply omitted.
func (u *CatalogUsecase) Resolve(ctx context.Context, ids []string) []domain.FavoriteEntry {
	tools, ok := u.cachedSnapshot(ctx)
	if !ok {
		if len(ids) > 0 {
			logger.Warn().Int("ids", len(ids)).Msg("No catalog cache available, favorites list will be empty")
		}
		return []domain.FavoriteEntry{}
	}

	byID := make(map[string]domain.ArtTool, len(tools))
	for _, t := range tools {
		byID[t.ID] = t
	}

	entries := make([]domain.FavoriteEntry, 0, len(ids))
	for _, id := range ids {
		if t, ok := byID[id]; ok {
			entries = append(entries, domain.FavoriteEntry{ArtTool: t})
		}
	}
	return entries
}

func (u *CatalogUsecase) cachedSnapshot(ctx context.Context) ([]domain.ArtTool, bool) {
	if val, found := u.cache.Get(memKeyArtTools); found {
		return val.([]domain.ArtTool), true
	}

	data, err := u.kv.Get(ctx, domain.KVKeyArtTools)
	if err != nil {
		if err != domain.ErrKeyNotFound {
			logger.Warn().Err(err).Msg("Failed to read catalog cache")
		}
		return nil, false
	}

	var tools []domain.ArtTool
	if err := json.Unmarshal(data, &tools); err != nil {
		logger.Warn().Err(err).Msg("Malformed catalog cache payload")
		return nil, false
	}

	u.cache.Set(memKeyArtTools, tools, u.ttl)
	return tools, true
}
