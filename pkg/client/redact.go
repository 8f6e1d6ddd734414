package client

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
)

// SensitiveParams are query parameters never written in clear to logs,
// errors or cache keys.
var SensitiveParams = []string{"api_key"}

const redacted = "REDACTED"

// RedactQuery returns a copy of q with sensitive values replaced.
func RedactQuery(q url.Values) url.Values {
	out := make(url.Values, len(q))
	for name, values := range q {
		out[name] = append([]string(nil), values...)
	}
	for _, name := range SensitiveParams {
		if _, ok := out[name]; ok {
			out.Set(name, redacted)
		}
	}
	return out
}

// RedactURL renders u with extra merged into its query and sensitive values
// redacted.
func RedactURL(u *url.URL, extra url.Values) string {
	q := u.Query()
	for name, values := range extra {
		for _, v := range values {
			q.Add(name, v)
		}
	}

	clean := *u
	clean.User = nil
	clean.RawQuery = RedactQuery(q).Encode()
	return clean.String()
}

// CacheQuery returns a copy of q with sensitive values replaced by a short
// SHA-256 digest. Responses stay separated per credential without the
// credential being stored.
func CacheQuery(q url.Values) url.Values {
	out := make(url.Values, len(q))
	for name, values := range q {
		out[name] = append([]string(nil), values...)
	}
	for _, name := range SensitiveParams {
		values, ok := out[name]
		if !ok {
			continue
		}
		for i, v := range values {
			sum := sha256.Sum256([]byte(v))
			values[i] = "sha256-" + hex.EncodeToString(sum[:8])
		}
	}
	return out
}
