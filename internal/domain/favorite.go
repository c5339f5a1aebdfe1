package domain

import "errors"

// Persistence keys in the key-value store.
const (
	KVKeyFavorites = "favorites"
	KVKeyArtTools  = "artTools"
)

var (
	// ErrEmptySelection is returned when a bulk delete is requested with
	// nothing selected.
	ErrEmptySelection = errors.New("no favorites selected")

	// ErrNotSelecting is returned when a selection operation arrives
	// outside edit mode.
	ErrNotSelecting = errors.New("not in edit mode")

	// ErrNoConfirmPending is returned when a delete confirmation arrives
	// without a pending delete request.
	ErrNoConfirmPending = errors.New("no delete confirmation pending")

	// ErrConfirmPending is returned when edit or selection operations
	// arrive while a delete confirmation dialog is open.
	ErrConfirmPending = errors.New("delete confirmation pending")
)

// FavoriteSet is an insertion-ordered, duplicate-free list of art tool
// ids. Its JSON form (a plain array of strings) is what gets persisted
// under KVKeyFavorites.
type FavoriteSet struct {
	ids   []string
	index map[string]struct{}
}

func NewFavoriteSet(ids ...string) *FavoriteSet {
	s := &FavoriteSet{index: make(map[string]struct{}, len(ids))}
	for _, id := range ids {
		s.Add(id)
	}
	return s
}

// Add appends id unless it is already a member. Reports whether the set
// changed.
func (s *FavoriteSet) Add(id string) bool {
	if _, ok := s.index[id]; ok {
		return false
	}
	s.index[id] = struct{}{}
	s.ids = append(s.ids, id)
	return true
}

// Remove drops id if present. Reports whether the set changed.
func (s *FavoriteSet) Remove(id string) bool {
	if _, ok := s.index[id]; !ok {
		return false
	}
	delete(s.index, id)
	for i, v := range s.ids {
		if v == id {
			s.ids = append(s.ids[:i], s.ids[i+1:]...)
			break
		}
	}
	return true
}

func (s *FavoriteSet) Contains(id string) bool {
	_, ok := s.index[id]
	return ok
}

func (s *FavoriteSet) Len() int {
	return len(s.ids)
}

// IDs returns the membership in insertion order. The returned slice is
// a copy; callers may keep it.
func (s *FavoriteSet) IDs() []string {
	out := make([]string, len(s.ids))
	copy(out, s.ids)
	return out
}
