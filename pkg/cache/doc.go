// Package cache stores successful API responses in Redis so repeated runs
// against the same resources do not hit the remote API again while the
// response is fresh.
//
// # Basic Usage
//
//	redisClient := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
//	manager := cache.NewManager(redisClient, time.Hour)
//
//	key := cache.Key{
//		Endpoint:    "/api/3/action/datastore_search",
//		QueryParams: url.Values{"resource_id": {"d304108a-..."}, "offset": {"0"}},
//	}
//
//	entry, err := manager.Get(ctx, key)
//	if errors.Is(err, cache.ErrCacheMiss) {
//		// fetch from the API, then:
//		_ = manager.Set(ctx, key, cache.NewEntry(200, header, body, manager.DefaultTTL()))
//	}
//
// Entries expire at the response's Expires header when present, otherwise
// after the manager's default TTL. Callers pass query parameters with
// credentials already hashed; the key is built from whatever it is given.
//
// # Metrics
//
//   - etl_cache_hits_total - Cache hits
//   - etl_cache_misses_total - Cache misses
//   - etl_cache_errors_total{operation} - Redis failures by operation
package cache
