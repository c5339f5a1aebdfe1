package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"

	"artkit-backend/internal/domain"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeKV records writes so tests can assert on persistence behavior.
type fakeKV struct {
	mu        sync.Mutex
	data      map[string][]byte
	setCalls  int
	failWrite bool
}

func newFakeKV() *fakeKV {
	return &fakeKV{data: make(map[string][]byte)}
}

func (f *fakeKV) Get(ctx context.Context, key string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.data[key]
	if !ok {
		return nil, domain.ErrKeyNotFound
	}
	return v, nil
}

func (f *fakeKV) Set(ctx context.Context, key string, value []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.setCalls++
	if f.failWrite {
		return errors.New("disk full")
	}
	f.data[key] = value
	return nil
}

func (f *fakeKV) writes() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.setCalls
}

func (f *fakeKV) put(t *testing.T, key string, v interface{}) {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	f.mu.Lock()
	f.data[key] = data
	f.mu.Unlock()
}

func TestFavoritesToggleParity(t *testing.T) {
	fav := NewFavoritesUsecase(newFakeKV())
	defer fav.Close()

	for i := 0; i < 3; i++ {
		fav.Toggle("a1")
	}
	assert.True(t, fav.Contains("a1"), "odd number of toggles should leave the id in")

	fav.Toggle("a1")
	assert.False(t, fav.Contains("a1"), "even number of toggles should remove the id")
}

func TestFavoritesToggleKeepsInsertionOrder(t *testing.T) {
	fav := NewFavoritesUsecase(newFakeKV())
	defer fav.Close()

	fav.Toggle("a")
	fav.Toggle("b")
	ids := fav.Toggle("c")
	assert.Equal(t, []string{"a", "b", "c"}, ids)

	ids = fav.Toggle("b")
	assert.Equal(t, []string{"a", "c"}, ids)

	// Re-adding goes to the end, not back to its old slot.
	ids = fav.Toggle("b")
	assert.Equal(t, []string{"a", "c", "b"}, ids)
}

func TestFavoritesToggleBatchIsRemovalOnly(t *testing.T) {
	store := newFakeKV()
	store.put(t, domain.KVKeyFavorites, []string{"a", "b", "c"})

	fav := NewFavoritesUsecase(store)
	defer fav.Close()
	fav.Load(context.Background())

	ids := fav.ToggleBatch([]string{"b", "zz"})
	assert.Equal(t, []string{"a", "c"}, ids, "non-members must be ignored, not re-added")
}

func TestFavoritesToggleBatchEmptyIsSilent(t *testing.T) {
	store := newFakeKV()
	fav := NewFavoritesUsecase(store)

	fav.ToggleBatch(nil)
	fav.ToggleBatch([]string{"never-added"})
	fav.Close()

	assert.Equal(t, 0, store.writes(), "a no-op batch must not reach the store")
}

func TestFavoritesLoadMalformedPayload(t *testing.T) {
	store := newFakeKV()
	store.mu.Lock()
	store.data[domain.KVKeyFavorites] = []byte("not json")
	store.mu.Unlock()

	fav := NewFavoritesUsecase(store)
	defer fav.Close()

	ids := fav.Load(context.Background())
	assert.Empty(t, ids, "malformed data means no favorites yet")

	// The set must stay usable afterwards.
	assert.Equal(t, []string{"x"}, fav.Toggle("x"))
}

func TestFavoritesLoadAbsentKey(t *testing.T) {
	fav := NewFavoritesUsecase(newFakeKV())
	defer fav.Close()

	assert.Empty(t, fav.Load(context.Background()))
}

func TestFavoritesPersistenceRoundTrip(t *testing.T) {
	store := newFakeKV()

	fav := NewFavoritesUsecase(store)
	fav.Toggle("a")
	fav.Toggle("b")
	fav.Close()

	reloaded := NewFavoritesUsecase(store)
	defer reloaded.Close()
	assert.Equal(t, []string{"a", "b"}, reloaded.Load(context.Background()))
}

func TestFavoritesBatchThenLoadIsSetDifference(t *testing.T) {
	store := newFakeKV()
	store.put(t, domain.KVKeyFavorites, []string{"a", "b", "c", "d"})

	fav := NewFavoritesUsecase(store)
	fav.Load(context.Background())
	fav.ToggleBatch([]string{"b", "d", "extra"})
	fav.Flush()
	fav.Close()

	reloaded := NewFavoritesUsecase(store)
	defer reloaded.Close()
	assert.Equal(t, []string{"a", "c"}, reloaded.Load(context.Background()))
}

func TestFavoritesConcurrentTogglesNoLostUpdate(t *testing.T) {
	fav := NewFavoritesUsecase(newFakeKV())
	defer fav.Close()

	ids := []string{"a", "b", "c", "d", "e", "f", "g", "h"}
	var wg sync.WaitGroup
	for _, id := range ids {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			fav.Toggle(id)
		}(id)
	}
	wg.Wait()

	got := fav.IDs()
	assert.Len(t, got, len(ids))
	for _, id := range ids {
		assert.True(t, fav.Contains(id), "id %s lost in concurrent toggles", id)
	}
}

func TestFavoritesWriteErrorIsNotSurfaced(t *testing.T) {
	store := newFakeKV()
	store.failWrite = true

	fav := NewFavoritesUsecase(store)
	defer fav.Close()

	ids := fav.Toggle("a")
	assert.Equal(t, []string{"a"}, ids, "in-memory set stays correct when persistence fails")
	fav.Flush()
	assert.True(t, fav.Contains("a"))
}
