package v1

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"artkit-backend/internal/domain"
	"artkit-backend/internal/infrastructure/cache"
	"artkit-backend/internal/repository/kv"
	"artkit-backend/internal/usecase"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nullSource struct{}

func (nullSource) Fetch(ctx context.Context) ([]domain.ArtTool, error) {
	return nil, nil
}

// withUser stands in for the auth middleware in tests.
func withUser(userID string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if userID != "" {
			user := &domain.User{ID: userID, Role: "user"}
			r = r.WithContext(context.WithValue(r.Context(), domain.UserContextKey, user))
		}
		next.ServeHTTP(w, r)
	})
}

func newTestServer(t *testing.T, userID string) (*httptest.Server, domain.KVStore) {
	t.Helper()

	store := kv.NewMemoryStore()
	tools := []domain.ArtTool{
		{ID: "1", ArtName: "Acrylic Set", Price: 24.5},
		{ID: "2", ArtName: "Oil Pastels", Price: 12},
		{ID: "3", ArtName: "Brush Kit", Price: 8},
	}
	data, err := json.Marshal(tools)
	require.NoError(t, err)
	require.NoError(t, store.Set(context.Background(), domain.KVKeyArtTools, data))

	catalogUC := usecase.NewCatalogUsecase(nullSource{}, store, cache.NewMemoryCache(time.Minute, time.Minute), time.Minute)
	scope := func(uid string) domain.KVStore { return kv.Namespaced(store, "u:"+uid) }
	sessions := usecase.NewSessionRegistry(context.Background(), scope, catalogUC, DetailNavigator{}, time.Minute, time.Minute)
	t.Cleanup(sessions.Shutdown)

	h := NewFavoritesHandler(sessions)

	mux := http.NewServeMux()
	mux.Handle("GET /api/v1/favorites", withUser(userID, http.HandlerFunc(h.GetState)))
	mux.Handle("GET /api/v1/favorites/ids", withUser(userID, http.HandlerFunc(h.GetIDs)))
	mux.Handle("POST /api/v1/favorites/activate", withUser(userID, http.HandlerFunc(h.Activate)))
	mux.Handle("POST /api/v1/favorites/toggle", withUser(userID, http.HandlerFunc(h.Toggle)))
	mux.Handle("POST /api/v1/favorites/edit-mode", withUser(userID, http.HandlerFunc(h.ToggleEditMode)))
	mux.Handle("POST /api/v1/favorites/select", withUser(userID, http.HandlerFunc(h.Select)))
	mux.Handle("POST /api/v1/favorites/select-all", withUser(userID, http.HandlerFunc(h.SelectAll)))
	mux.Handle("POST /api/v1/favorites/delete", withUser(userID, http.HandlerFunc(h.RequestDelete)))
	mux.Handle("POST /api/v1/favorites/delete/confirm", withUser(userID, http.HandlerFunc(h.ConfirmDelete)))
	mux.Handle("DELETE /api/v1/favorites/{artToolId}", withUser(userID, http.HandlerFunc(h.DeleteOne)))
	mux.Handle("POST /api/v1/favorites/{artToolId}/open", withUser(userID, http.HandlerFunc(h.Open)))

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, store
}

func do(t *testing.T, method, url, body string) (*http.Response, map[string]interface{}) {
	t.Helper()

	var req *http.Request
	var err error
	if body != "" {
		req, err = http.NewRequest(method, url, strings.NewReader(body))
	} else {
		req, err = http.NewRequest(method, url, nil)
	}
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var decoded map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&decoded)
	return resp, decoded
}

func TestFavoritesEndpointsRequireUser(t *testing.T) {
	srv, _ := newTestServer(t, "")

	resp, body := do(t, http.MethodGet, srv.URL+"/api/v1/favorites", "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Unauthorized", body["error"])
}

func TestFavoritesToggleAndActivateFlow(t *testing.T) {
	srv, _ := newTestServer(t, "alice")

	resp, body := do(t, http.MethodPost, srv.URL+"/api/v1/favorites/toggle", `{"artToolId":"2"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []interface{}{"2"}, body["ids"])

	do(t, http.MethodPost, srv.URL+"/api/v1/favorites/toggle", `{"artToolId":"1"}`)

	resp, body = do(t, http.MethodPost, srv.URL+"/api/v1/favorites/activate", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	entries := body["entries"].([]interface{})
	require.Len(t, entries, 2)
	first := entries[0].(map[string]interface{})
	assert.Equal(t, "2", first["id"])
	assert.Equal(t, "Oil Pastels", first["artName"])
	assert.Equal(t, false, body["editMode"])
}

func TestFavoritesToggleRejectsBadPayload(t *testing.T) {
	srv, _ := newTestServer(t, "alice")

	resp, _ := do(t, http.MethodPost, srv.URL+"/api/v1/favorites/toggle", `{`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = do(t, http.MethodPost, srv.URL+"/api/v1/favorites/toggle", `{}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestFavoritesBulkDeleteFlow(t *testing.T) {
	srv, _ := newTestServer(t, "alice")

	for _, id := range []string{"1", "2", "3"} {
		do(t, http.MethodPost, srv.URL+"/api/v1/favorites/toggle", `{"artToolId":"`+id+`"}`)
	}
	do(t, http.MethodPost, srv.URL+"/api/v1/favorites/activate", "")

	// Selecting outside edit mode is a conflict.
	resp, _ := do(t, http.MethodPost, srv.URL+"/api/v1/favorites/select", `{"artToolId":"1"}`)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	do(t, http.MethodPost, srv.URL+"/api/v1/favorites/edit-mode", "")

	// Deleting with nothing selected is a conflict.
	resp, _ = do(t, http.MethodPost, srv.URL+"/api/v1/favorites/delete", "")
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, body := do(t, http.MethodPost, srv.URL+"/api/v1/favorites/select-all", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, body["selected"], 3)

	resp, _ = do(t, http.MethodPost, srv.URL+"/api/v1/favorites/delete", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = do(t, http.MethodPost, srv.URL+"/api/v1/favorites/delete/confirm", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, body["entries"])
	assert.Equal(t, false, body["editMode"], "deleting everything exits edit mode")

	resp, body = do(t, http.MethodGet, srv.URL+"/api/v1/favorites/ids", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, body["ids"])
}

func TestFavoritesSwipeDelete(t *testing.T) {
	srv, _ := newTestServer(t, "alice")

	do(t, http.MethodPost, srv.URL+"/api/v1/favorites/toggle", `{"artToolId":"1"}`)
	do(t, http.MethodPost, srv.URL+"/api/v1/favorites/toggle", `{"artToolId":"3"}`)
	do(t, http.MethodPost, srv.URL+"/api/v1/favorites/activate", "")

	resp, body := do(t, http.MethodDelete, srv.URL+"/api/v1/favorites/1", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	entries := body["entries"].([]interface{})
	require.Len(t, entries, 1)
	assert.Equal(t, "3", entries[0].(map[string]interface{})["id"])
}

func TestFavoritesOpenEntry(t *testing.T) {
	srv, _ := newTestServer(t, "alice")

	do(t, http.MethodPost, srv.URL+"/api/v1/favorites/toggle", `{"artToolId":"1"}`)
	do(t, http.MethodPost, srv.URL+"/api/v1/favorites/activate", "")

	resp, body := do(t, http.MethodPost, srv.URL+"/api/v1/favorites/1/open", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["navigated"])
	assert.Equal(t, "/api/v1/arttools/1", body["detail"])

	// In edit mode taps do not navigate.
	do(t, http.MethodPost, srv.URL+"/api/v1/favorites/edit-mode", "")
	resp, body = do(t, http.MethodPost, srv.URL+"/api/v1/favorites/1/open", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, false, body["navigated"])
}

func TestFavoritesSessionsAreIsolatedPerUser(t *testing.T) {
	store := kv.NewMemoryStore()
	catalogUC := usecase.NewCatalogUsecase(nullSource{}, store, cache.NewMemoryCache(time.Minute, time.Minute), time.Minute)
	scope := func(uid string) domain.KVStore { return kv.Namespaced(store, "u:"+uid) }
	sessions := usecase.NewSessionRegistry(context.Background(), scope, catalogUC, DetailNavigator{}, time.Minute, time.Minute)
	t.Cleanup(sessions.Shutdown)

	sessions.Get("alice").Favorites.Toggle("1")
	sessions.Get("bob").Favorites.Toggle("2")

	assert.Equal(t, []string{"1"}, sessions.Get("alice").Favorites.IDs())
	assert.Equal(t, []string{"2"}, sessions.Get("bob").Favorites.IDs())
}
