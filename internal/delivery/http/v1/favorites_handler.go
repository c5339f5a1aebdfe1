package v1

import (
	"errors"
	"net/http"

	"artkit-backend/internal/domain"
	"artkit-backend/internal/usecase"
	"artkit-backend/pkg/utils"

	"github.com/goccy/go-json"
)

// FavoritesHandler exposes the per-user favorites screen over HTTP.
// Every endpoint resolves the caller's session first; the controller
// and store inside it hold all state between requests.
type FavoritesHandler struct {
	sessions *usecase.SessionRegistry
}

func NewFavoritesHandler(sessions *usecase.SessionRegistry) *FavoritesHandler {
	return &FavoritesHandler{sessions: sessions}
}

type FavoriteRequest struct {
	ArtToolID string `json:"artToolId"`
}

func (h *FavoritesHandler) session(w http.ResponseWriter, r *http.Request) (*usecase.Session, bool) {
	user, ok := r.Context().Value(domain.UserContextKey).(*domain.User)
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "Unauthorized")
		return nil, false
	}
	return h.sessions.Get(user.ID), true
}

func (h *FavoritesHandler) decodeID(w http.ResponseWriter, r *http.Request) (string, bool) {
	var req FavoriteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ArtToolID == "" {
		utils.WriteError(w, http.StatusBadRequest, "Invalid request payload")
		return "", false
	}
	return req.ArtToolID, true
}

// writeState maps controller transition errors: misuse of the state
// machine is a conflict, everything else still returns the current
// state so the client can re-render.
func writeState(w http.ResponseWriter, state usecase.FavListState, err error) {
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotSelecting),
			errors.Is(err, domain.ErrEmptySelection),
			errors.Is(err, domain.ErrConfirmPending),
			errors.Is(err, domain.ErrNoConfirmPending):
			utils.WriteError(w, http.StatusConflict, err.Error())
		default:
			utils.WriteError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}
	utils.WriteJSON(w, http.StatusOK, state)
}

// GetState returns the current screen state without reloading.
func (h *FavoritesHandler) GetState(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	utils.WriteJSON(w, http.StatusOK, sess.Controller.State())
}

// Activate corresponds to the favorites screen gaining focus.
func (h *FavoritesHandler) Activate(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	utils.WriteJSON(w, http.StatusOK, sess.Controller.Activate(r.Context()))
}

// Deactivate corresponds to the screen losing focus.
func (h *FavoritesHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	sess.Controller.Deactivate()
	utils.WriteJSON(w, http.StatusOK, map[string]string{"message": "Deactivated"})
}

// GetIDs returns the raw favorite id set, for badge counts and the
// detail screen's heart state.
func (h *FavoritesHandler) GetIDs(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string][]string{"ids": sess.Favorites.IDs()})
}

// Toggle is the detail-screen heart: flips one id in the favorite set
// directly, without touching the list screen's state.
func (h *FavoritesHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	id, ok := h.decodeID(w, r)
	if !ok {
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string][]string{"ids": sess.Favorites.Toggle(id)})
}

func (h *FavoritesHandler) ToggleEditMode(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	state, err := sess.Controller.ToggleEditMode()
	writeState(w, state, err)
}

func (h *FavoritesHandler) Select(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	id, ok := h.decodeID(w, r)
	if !ok {
		return
	}
	state, err := sess.Controller.ToggleSelect(id)
	writeState(w, state, err)
}

func (h *FavoritesHandler) SelectAll(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	state, err := sess.Controller.ToggleSelectAll()
	writeState(w, state, err)
}

func (h *FavoritesHandler) RequestDelete(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	state, err := sess.Controller.RequestDelete()
	writeState(w, state, err)
}

func (h *FavoritesHandler) CancelDelete(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	state, err := sess.Controller.CancelDelete()
	writeState(w, state, err)
}

func (h *FavoritesHandler) ConfirmDelete(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	state, err := sess.Controller.ConfirmDelete(r.Context())
	writeState(w, state, err)
}

// DeleteOne is the swipe-to-delete path for a single displayed entry.
func (h *FavoritesHandler) DeleteOne(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	id := r.PathValue("artToolId")
	utils.WriteJSON(w, http.StatusOK, sess.Controller.DeleteOne(r.Context(), id))
}

// Open taps an entry. Outside edit mode this navigates to the detail
// view; in edit mode taps go through Select instead.
func (h *FavoritesHandler) Open(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	id := r.PathValue("artToolId")
	if !sess.Controller.TapEntry(id) {
		utils.WriteJSON(w, http.StatusOK, map[string]interface{}{"navigated": false})
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"navigated": true,
		"detail":    "/api/v1/arttools/" + id,
	})
}
