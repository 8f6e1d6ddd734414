package cache

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// KeyPrefix namespaces all cache keys in Redis.
const KeyPrefix = "etl"

// Key identifies a cached response.
type Key struct {
	// Endpoint is the URL path (e.g. "/api/3/action/datastore_search").
	Endpoint string

	// Host distinguishes APIs that share a path.
	Host string

	// QueryParams are the request query parameters, credentials hashed.
	QueryParams url.Values
}

// String generates a deterministic cache key string.
//
// Example:
//
//	etl:data.ca.gov:api/3/action/datastore_search:limit=5000:offset=0:resource_id=d304108a
func (k Key) String() string {
	parts := []string{KeyPrefix}

	if k.Host != "" {
		parts = append(parts, k.Host)
	}

	endpoint := strings.Trim(k.Endpoint, "/")
	if endpoint != "" {
		parts = append(parts, endpoint)
	}

	if len(k.QueryParams) > 0 {
		names := make([]string, 0, len(k.QueryParams))
		for name := range k.QueryParams {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			values := k.QueryParams[name]
			parts = append(parts, fmt.Sprintf("%s=%s", name, strings.Join(values, ",")))
		}
	}

	return strings.Join(parts, ":")
}
