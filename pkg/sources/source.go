// Package sources holds the API sources that feed the pipeline. Each
// subpackage speaks one API and returns flattened record.Datasets.
package sources

import (
	"context"
	"net/url"

	"github.com/Sternrassler/fuel-data-etl/pkg/client"
)

// Getter is the part of *client.Client that sources depend on.
type Getter interface {
	Get(ctx context.Context, rawURL string, query url.Values, opts ...client.RequestOption) (*client.Response, error)
}
