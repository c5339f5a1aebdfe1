package cache

import "time"

// CacheService is the in-process cache in front of the KV store. The
// catalog keeps its decoded snapshot here so the favorites join does
// not re-read and re-decode the KV copy on every activation.
type CacheService interface {
	// Get retrieves a value from the cache.
	// Returns value, true if found; nil, false if not.
	Get(key string) (interface{}, bool)

	// Set adds a value to the cache with a TTL.
	Set(key string, value interface{}, duration time.Duration)

	// Delete removes a value from the cache.
	Delete(key string)

	// Flush removes all items.
	Flush()
}
