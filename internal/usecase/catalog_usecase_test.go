package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"artkit-backend/internal/domain"
	"artkit-backend/internal/infrastructure/cache"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingSource struct{ calls int }

func (s *failingSource) Fetch(ctx context.Context) ([]domain.ArtTool, error) {
	s.calls++
	return nil, errors.New("upstream down")
}

func newCatalogUC(source domain.CatalogSource, store domain.KVStore) *CatalogUsecase {
	return NewCatalogUsecase(source, store, cache.NewMemoryCache(time.Minute, time.Minute), time.Minute)
}

func TestCatalogSnapshotFetchesAndCaches(t *testing.T) {
	store := newFakeKV()
	source := &stubSource{tools: []domain.ArtTool{tool("a"), tool("b")}}
	uc := newCatalogUC(source, store)

	tools, err := uc.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Len(t, tools, 2)
	assert.Equal(t, 1, source.calls)

	// Cached under "artTools" in the KV store.
	_, err = store.Get(context.Background(), domain.KVKeyArtTools)
	require.NoError(t, err)

	// Second read served from cache.
	_, err = uc.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, source.calls)
}

func TestCatalogSnapshotServedFromKVWhenMemoryCold(t *testing.T) {
	store := newFakeKV()
	store.put(t, domain.KVKeyArtTools, []domain.ArtTool{tool("a")})

	source := &stubSource{}
	uc := newCatalogUC(source, store)

	tools, err := uc.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "a", tools[0].ID)
	assert.Zero(t, source.calls, "a warm KV copy must not hit the remote")
}

func TestCatalogSnapshotMalformedKVFallsToRemote(t *testing.T) {
	store := newFakeKV()
	store.mu.Lock()
	store.data[domain.KVKeyArtTools] = []byte("{broken")
	store.mu.Unlock()

	source := &stubSource{tools: []domain.ArtTool{tool("x")}}
	uc := newCatalogUC(source, store)

	tools, err := uc.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "x", tools[0].ID)
	assert.Equal(t, 1, source.calls)
}

func TestCatalogSnapshotErrorWithNoCache(t *testing.T) {
	uc := newCatalogUC(&failingSource{}, newFakeKV())

	_, err := uc.Snapshot(context.Background())
	assert.Error(t, err)
}

func TestCatalogRefreshRewritesKV(t *testing.T) {
	store := newFakeKV()
	store.put(t, domain.KVKeyArtTools, []domain.ArtTool{tool("old")})

	source := &stubSource{tools: []domain.ArtTool{tool("new")}}
	uc := newCatalogUC(source, store)

	tools, err := uc.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "new", tools[0].ID)

	fresh := newCatalogUC(&stubSource{}, store)
	got, err := fresh.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "new", got[0].ID)
}

func TestCatalogGetByID(t *testing.T) {
	store := newFakeKV()
	store.put(t, domain.KVKeyArtTools, []domain.ArtTool{tool("a")})
	uc := newCatalogUC(&stubSource{}, store)

	got, err := uc.GetByID(context.Background(), "a")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Tool a", got.ArtName)

	missing, err := uc.GetByID(context.Background(), "zz")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestCatalogResolveBestEffort(t *testing.T) {
	store := newFakeKV()
	store.put(t, domain.KVKeyArtTools, []domain.ArtTool{tool("a"), tool("b"), tool("c")})
	uc := newCatalogUC(&stubSource{}, store)

	entries := uc.Resolve(context.Background(), []string{"c", "missing", "a"})
	assert.Equal(t, []string{"c", "a"}, entryIDs(entries), "id order preserved, gaps dropped")

	empty := uc.Resolve(context.Background(), nil)
	assert.Empty(t, empty)
}

func TestCatalogResolveWithoutCache(t *testing.T) {
	uc := newCatalogUC(&failingSource{}, newFakeKV())

	entries := uc.Resolve(context.Background(), []string{"a"})
	assert.Empty(t, entries, "resolve never consults the remote")
}
