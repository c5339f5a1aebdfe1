package usecase

import (
	"context"
	"sync"

	"artkit-backend/internal/domain"
)

// FavListState is the renderable snapshot of the favorites screen.
// Selected is reported in display order.
type FavListState struct {
	Entries        []domain.FavoriteEntry `json:"entries"`
	EditMode       bool                   `json:"editMode"`
	Selected       []string               `json:"selected"`
	ConfirmPending bool                   `json:"confirmPending"`
}

// FavListController drives the favorites screen through its three
// states: Viewing (editMode off), Selecting (editMode on) and
// ConfirmingDelete (editMode on, confirmation dialog open). It keeps
// two invariants by construction: the selection is always a subset of
// the displayed entries, and edit mode never survives an empty list.
type FavListController struct {
	favorites *FavoritesUsecase
	catalog   *CatalogUsecase
	nav       domain.Navigator

	mu             sync.Mutex
	generation     uint64
	entries        []domain.FavoriteEntry
	editMode       bool
	selected       map[string]struct{}
	confirmPending bool
}

func NewFavListController(favorites *FavoritesUsecase, catalog *CatalogUsecase, nav domain.Navigator) *FavListController {
	return &FavListController{
		favorites: favorites,
		catalog:   catalog,
		nav:       nav,
		selected:  make(map[string]struct{}),
	}
}

// Activate corresponds to the screen gaining focus: reload the
// favorite ids, join them against the catalog cache and reset the
// selection. Each activation carries a generation; a reload that
// finishes after a newer activation started is discarded, so the
// screen always reflects the latest focus.
func (c *FavListController) Activate(ctx context.Context) FavListState {
	c.mu.Lock()
	c.generation++
	gen := c.generation
	c.mu.Unlock()

	ids := c.favorites.Load(ctx)
	entries := c.catalog.Resolve(ctx, ids)

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.generation {
		// Superseded by a newer activation or a deactivate.
		return c.stateLocked()
	}
	c.entries = entries
	c.editMode = false
	c.selected = make(map[string]struct{})
	c.confirmPending = false
	return c.stateLocked()
}

// Deactivate invalidates any in-flight activation reload.
func (c *FavListController) Deactivate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generation++
}

func (c *FavListController) State() FavListState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stateLocked()
}

// ToggleEditMode switches between Viewing and Selecting, clearing the
// selection either way. Over an empty list edit mode is meaningless
// and the controller stays in Viewing.
func (c *FavListController) ToggleEditMode() (FavListState, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.confirmPending {
		return c.stateLocked(), domain.ErrConfirmPending
	}
	if len(c.entries) == 0 {
		c.editMode = false
		c.selected = make(map[string]struct{})
		return c.stateLocked(), nil
	}
	c.editMode = !c.editMode
	c.selected = make(map[string]struct{})
	return c.stateLocked(), nil
}

// ToggleSelect flips the selection of one displayed entry. Ids not
// currently displayed are ignored, which keeps the subset invariant.
func (c *FavListController) ToggleSelect(id string) (FavListState, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.confirmPending {
		return c.stateLocked(), domain.ErrConfirmPending
	}
	if !c.editMode {
		return c.stateLocked(), domain.ErrNotSelecting
	}
	if !c.displayedLocked(id) {
		return c.stateLocked(), nil
	}
	if _, ok := c.selected[id]; ok {
		delete(c.selected, id)
	} else {
		c.selected[id] = struct{}{}
	}
	return c.stateLocked(), nil
}

// ToggleSelectAll selects every displayed entry, or clears the
// selection when everything is already selected. A partial selection
// counts as "not all" and selects the rest.
func (c *FavListController) ToggleSelectAll() (FavListState, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.confirmPending {
		return c.stateLocked(), domain.ErrConfirmPending
	}
	if !c.editMode {
		return c.stateLocked(), domain.ErrNotSelecting
	}
	if len(c.selected) == len(c.entries) {
		c.selected = make(map[string]struct{})
		return c.stateLocked(), nil
	}
	for _, e := range c.entries {
		c.selected[e.ID] = struct{}{}
	}
	return c.stateLocked(), nil
}

// RequestDelete opens the confirmation dialog for the current
// selection.
func (c *FavListController) RequestDelete() (FavListState, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.confirmPending {
		return c.stateLocked(), domain.ErrConfirmPending
	}
	if !c.editMode {
		return c.stateLocked(), domain.ErrNotSelecting
	}
	if len(c.selected) == 0 {
		return c.stateLocked(), domain.ErrEmptySelection
	}
	c.confirmPending = true
	return c.stateLocked(), nil
}

// CancelDelete closes the dialog and returns to Selecting with the
// selection intact.
func (c *FavListController) CancelDelete() (FavListState, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.confirmPending {
		return c.stateLocked(), domain.ErrNoConfirmPending
	}
	c.confirmPending = false
	return c.stateLocked(), nil
}

// ConfirmDelete removes the selected entries from the favorite set and
// the displayed list. Deleting the last entries forces edit mode off.
func (c *FavListController) ConfirmDelete(ctx context.Context) (FavListState, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.confirmPending {
		return c.stateLocked(), domain.ErrNoConfirmPending
	}

	ids := c.selectedInOrderLocked()
	c.favorites.ToggleBatch(ids)

	kept := c.entries[:0]
	for _, e := range c.entries {
		if _, ok := c.selected[e.ID]; !ok {
			kept = append(kept, e)
		}
	}
	c.entries = kept
	c.selected = make(map[string]struct{})
	c.confirmPending = false
	if len(c.entries) == 0 {
		c.editMode = false
	}
	return c.stateLocked(), nil
}

// DeleteOne is the swipe-to-delete path: a confirmed single removal
// that keeps the current mode unless the list empties out.
func (c *FavListController) DeleteOne(ctx context.Context, id string) FavListState {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.displayedLocked(id) {
		return c.stateLocked()
	}

	c.favorites.Toggle(id)

	for i, e := range c.entries {
		if e.ID == id {
			c.entries = append(c.entries[:i], c.entries[i+1:]...)
			break
		}
	}
	delete(c.selected, id)
	if len(c.entries) == 0 {
		c.editMode = false
		c.confirmPending = false
		c.selected = make(map[string]struct{})
	}
	return c.stateLocked()
}

// TapEntry opens the detail view for an entry when not in edit mode.
// Reports whether navigation happened; no controller state changes.
func (c *FavListController) TapEntry(id string) bool {
	c.mu.Lock()
	if c.editMode || !c.displayedLocked(id) {
		c.mu.Unlock()
		return false
	}
	c.mu.Unlock()

	c.nav.NavigateToDetail(id)
	return true
}

func (c *FavListController) displayedLocked(id string) bool {
	for _, e := range c.entries {
		if e.ID == id {
			return true
		}
	}
	return false
}

func (c *FavListController) selectedInOrderLocked() []string {
	out := make([]string, 0, len(c.selected))
	for _, e := range c.entries {
		if _, ok := c.selected[e.ID]; ok {
			out = append(out, e.ID)
		}
	}
	return out
}

func (c *FavListController) stateLocked() FavListState {
	entries := make([]domain.FavoriteEntry, len(c.entries))
	copy(entries, c.entries)
	return FavListState{
		Entries:        entries,
		EditMode:       c.editMode,
		Selected:       c.selectedInOrderLocked(),
		ConfirmPending: c.confirmPending,
	}
}
