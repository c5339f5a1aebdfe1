package usecase

import (
	"context"
	"sync"
	"time"

	"artkit-backend/internal/domain"
	"artkit-backend/pkg/logger"

	"github.com/goccy/go-json"
)

const defaultPersistTimeout = 5 * time.Second

// FavoritesUsecase owns the canonical favorite set for one session and
// is the single writer of the "favorites" key in its KV store. The
// in-memory set is always mutated synchronously; persistence runs on a
// background worker and is allowed to lag (eventually consistent).
type FavoritesUsecase struct {
	kv domain.KVStore

	mu          sync.Mutex
	set         *domain.FavoriteSet
	dirty       bool
	loadSeq     uint64
	loadApplied uint64

	persistCh chan struct{}
	quit      chan struct{}
	done      chan struct{}
	closeOnce sync.Once

	persistTimeout time.Duration
}

func NewFavoritesUsecase(kv domain.KVStore) *FavoritesUsecase {
	u := &FavoritesUsecase{
		kv:             kv,
		set:            domain.NewFavoriteSet(),
		persistCh:      make(chan struct{}, 1),
		quit:           make(chan struct{}),
		done:           make(chan struct{}),
		persistTimeout: defaultPersistTimeout,
	}
	go u.persistLoop()
	return u
}

// Load hydrates the set from the KV store and returns the resulting
// ids. Absent or malformed data means "no favorites yet": the caller
// always gets a usable set and never an error. Loads apply in issuance
// order: a slow read that completes after a newer Load has already
// hydrated the set is discarded.
func (u *FavoritesUsecase) Load(ctx context.Context) []string {
	u.mu.Lock()
	u.loadSeq++
	seq := u.loadSeq
	u.mu.Unlock()

	var ids []string
	data, err := u.kv.Get(ctx, domain.KVKeyFavorites)
	switch {
	case err == domain.ErrKeyNotFound:
	case err != nil:
		logger.Warn().Err(err).Msg("Failed to read favorites, starting empty")
	default:
		if err := json.Unmarshal(data, &ids); err != nil {
			logger.Warn().Err(err).Msg("Malformed favorites payload, starting empty")
			ids = nil
		}
	}

	u.mu.Lock()
	defer u.mu.Unlock()
	if seq < u.loadApplied {
		// Superseded while the read was in flight.
		return u.set.IDs()
	}
	u.loadApplied = seq
	u.set = domain.NewFavoriteSet(ids...)
	return u.set.IDs()
}

// Toggle removes id if it is a member, otherwise appends it, and
// schedules a persist of the full set. Returns the updated ids.
func (u *FavoritesUsecase) Toggle(id string) []string {
	u.mu.Lock()
	if !u.set.Remove(id) {
		u.set.Add(id)
	}
	u.dirty = true
	ids := u.set.IDs()
	u.mu.Unlock()

	u.requestPersist()
	return ids
}

// ToggleBatch removes every member of ids from the set; non-members
// are ignored. A call that changes nothing issues no persist.
func (u *FavoritesUsecase) ToggleBatch(ids []string) []string {
	u.mu.Lock()
	changed := false
	for _, id := range ids {
		if u.set.Remove(id) {
			changed = true
		}
	}
	if changed {
		u.dirty = true
	}
	out := u.set.IDs()
	u.mu.Unlock()

	if changed {
		u.requestPersist()
	}
	return out
}

// IDs returns the current membership in insertion order.
func (u *FavoritesUsecase) IDs() []string {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.set.IDs()
}

func (u *FavoritesUsecase) Contains(id string) bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.set.Contains(id)
}

// requestPersist signals the worker; signals coalesce, so a burst of
// toggles produces a single write of the final state.
func (u *FavoritesUsecase) requestPersist() {
	select {
	case u.persistCh <- struct{}{}:
	default:
	}
}

func (u *FavoritesUsecase) persistLoop() {
	defer close(u.done)
	for {
		select {
		case <-u.persistCh:
			u.persist()
		case <-u.quit:
			// Drain a pending signal so the last mutation is not lost.
			select {
			case <-u.persistCh:
				u.persist()
			default:
			}
			return
		}
	}
}

func (u *FavoritesUsecase) persist() {
	u.mu.Lock()
	ids := u.set.IDs()
	u.dirty = false
	u.mu.Unlock()

	data, err := json.Marshal(ids)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to encode favorites")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), u.persistTimeout)
	defer cancel()

	if err := u.kv.Set(ctx, domain.KVKeyFavorites, data); err != nil {
		// Write failures stay in the log; the in-memory set remains
		// correct for the rest of the session.
		logger.Error().Err(err).Int("count", len(ids)).Msg("Failed to persist favorites")
	}
}

// Flush writes the current set immediately. Callers that need
// read-your-writes through a fresh Load use this to settle persistence.
func (u *FavoritesUsecase) Flush() {
	u.persist()
}

// Close stops the persist worker, flushing any pending write first.
func (u *FavoritesUsecase) Close() {
	u.closeOnce.Do(func() {
		close(u.quit)
		<-u.done

		u.mu.Lock()
		pending := u.dirty
		u.mu.Unlock()
		if pending {
			u.persist()
		}
	})
}
