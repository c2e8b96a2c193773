package common

import "time"

// CacheInterface is the key/value cache behind API key lookups and used
// action tokens. CacheService and RedisCacheService implement it.
type CacheInterface interface {
	Set(key string, value interface{}, duration time.Duration)

	// Get returns the value and true if the key is present.
	Get(key string) (interface{}, bool)

	Delete(key string)

	// GetOrSet returns the cached value for key, or stores and returns what
	// loader produces. Loader errors are not cached.
	GetOrSet(key string, duration time.Duration, loader func() (any, error)) (interface{}, error)

	Close() error
}
