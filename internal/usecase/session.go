package usecase

import (
	"context"
	"sync"
	"time"

	"artkit-backend/internal/domain"
	"artkit-backend/pkg/logger"
)

// Session is one user's shared favorites instance pair: the store that
// owns the set and the controller that owns the screen state. One
// session exists per user at a time, created lazily and reused across
// requests.
type Session struct {
	Favorites  *FavoritesUsecase
	Controller *FavListController
	lastSeen   time.Time
}

// KVScope hands each session its own namespaced view of the shared KV
// store, so every session keeps writing the canonical "favorites" key.
type KVScope func(userID string) domain.KVStore

// SessionRegistry manages per-user sessions with background eviction
// of idle ones. Evicted sessions flush pending persists before they go.
type SessionRegistry struct {
	scope   KVScope
	catalog *CatalogUsecase
	nav     domain.Navigator

	mu       sync.Mutex
	sessions map[string]*Session

	ttl    time.Duration
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

func NewSessionRegistry(ctx context.Context, scope KVScope, catalog *CatalogUsecase, nav domain.Navigator, ttl, sweepPeriod time.Duration) *SessionRegistry {
	r := &SessionRegistry{
		scope:    scope,
		catalog:  catalog,
		nav:      nav,
		sessions: make(map[string]*Session),
		ttl:      ttl,
		done:     make(chan struct{}),
	}
	r.ctx, r.cancel = context.WithCancel(ctx)
	go r.sweepLoop(sweepPeriod)
	return r
}

// Get returns the user's session, creating it on first use.
func (r *SessionRegistry) Get(userID string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.sessions[userID]; ok {
		s.lastSeen = time.Now()
		return s
	}

	favorites := NewFavoritesUsecase(r.scope(userID))
	favorites.Load(r.ctx)
	s := &Session{
		Favorites:  favorites,
		Controller: NewFavListController(favorites, r.catalog, r.nav),
		lastSeen:   time.Now(),
	}
	r.sessions[userID] = s
	logger.Debug().Str("user_id", userID).Msg("Favorites session created")
	return s
}

func (r *SessionRegistry) sweepLoop(period time.Duration) {
	defer close(r.done)
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.evictIdle()
		case <-r.ctx.Done():
			return
		}
	}
}

func (r *SessionRegistry) evictIdle() {
	cutoff := time.Now().Add(-r.ttl)

	r.mu.Lock()
	var evicted []*Session
	for id, s := range r.sessions {
		if s.lastSeen.Before(cutoff) {
			delete(r.sessions, id)
			evicted = append(evicted, s)
		}
	}
	r.mu.Unlock()

	// Close outside the lock; Close blocks on the persist worker.
	for _, s := range evicted {
		s.Favorites.Close()
	}
	if len(evicted) > 0 {
		logger.Debug().Int("count", len(evicted)).Msg("Evicted idle favorites sessions")
	}
}

// Shutdown stops the sweeper and closes every live session.
func (r *SessionRegistry) Shutdown() {
	r.cancel()
	<-r.done

	r.mu.Lock()
	sessions := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		sessions = append(sessions, s)
	}
	r.sessions = make(map[string]*Session)
	r.mu.Unlock()

	for _, s := range sessions {
		s.Favorites.Close()
	}
}
