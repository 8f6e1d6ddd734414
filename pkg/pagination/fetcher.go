package pagination

import (
	"context"
	"fmt"
	"time"

	"github.com/Sternrassler/fuel-data-etl/pkg/record"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	pagesFetchedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "etl_pages_fetched_total",
		Help: "Total pages fetched by resource",
	}, []string{"resource_id"})

	recordsFetchedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "etl_records_fetched_total",
		Help: "Total records fetched by resource",
	}, []string{"resource_id"})
)

// DefaultPageSize is the CKAN page size used by the DMV datasets.
const DefaultPageSize = 5000

// Config holds fetcher configuration.
type Config struct {
	// PageSize is sent as the limit parameter; must be > 0.
	PageSize int
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{PageSize: DefaultPageSize}
}

// Page is one slice of a resource.
type Page struct {
	Records record.Dataset

	// Columns is the field order reported by the API, if any.
	Columns []string

	// Total is the resource size reported by the API, or -1 if unknown.
	// It is informational only and never ends pagination.
	Total int
}

// PageSource fetches a single page of a resource.
type PageSource interface {
	FetchPage(ctx context.Context, resourceID string, limit, offset int) (Page, error)
}

// Transform is applied to each resource before resources are merged.
type Transform func(resourceID string, t record.Table) record.Table

// Fetcher drives a PageSource across all pages of a resource.
type Fetcher struct {
	source PageSource
	config Config
	logger zerolog.Logger
}

// New creates a fetcher.
func New(source PageSource, cfg Config) (*Fetcher, error) {
	if source == nil {
		return nil, fmt.Errorf("page source is required")
	}
	if cfg.PageSize <= 0 {
		return nil, fmt.Errorf("page size must be > 0 (got %d)", cfg.PageSize)
	}

	return &Fetcher{
		source: source,
		config: cfg,
		logger: log.With().Str("component", "pagination").Logger(),
	}, nil
}

// PageSize returns the configured page size.
func (f *Fetcher) PageSize() int {
	return f.config.PageSize
}

// FetchAll returns every record of resourceID in API order, with the
// columns of all pages in first-seen order.
func (f *Fetcher) FetchAll(ctx context.Context, resourceID string) (record.Table, error) {
	start := time.Now()
	limit := f.config.PageSize

	var table record.Table
	offset := 0
	pages := 0

	for {
		page, err := f.source.FetchPage(ctx, resourceID, limit, offset)
		if err != nil {
			return record.Table{}, fmt.Errorf("fetch resource %s at offset %d: %w", resourceID, offset, err)
		}
		pages++

		table.Append(record.Table{Columns: page.Columns, Records: page.Records})
		pagesFetchedTotal.WithLabelValues(resourceID).Inc()
		recordsFetchedTotal.WithLabelValues(resourceID).Add(float64(len(page.Records)))

		f.logger.Debug().
			Str("resource_id", resourceID).
			Int("offset", offset).
			Int("limit", limit).
			Int("records", len(page.Records)).
			Int("total", page.Total).
			Msg("Page fetched")

		if len(page.Records) < limit {
			break
		}
		offset += limit
	}

	f.logger.Info().
		Str("resource_id", resourceID).
		Int("records", len(table.Records)).
		Int("pages", pages).
		Dur("duration", time.Since(start)).
		Msg("Resource fetched")

	return table, nil
}

// FetchResources fetches each resource in list order, applies transform to
// each one (nil for none) and concatenates the results. The first failing
// resource aborts the run.
func (f *Fetcher) FetchResources(ctx context.Context, resourceIDs []string, transform Transform) (record.Table, error) {
	var all record.Table

	for _, id := range resourceIDs {
		f.logger.Info().Str("resource_id", id).Msg("Fetching resource")

		t, err := f.FetchAll(ctx, id)
		if err != nil {
			return record.Table{}, err
		}
		if transform != nil {
			t = transform(id, t)
		}
		all.Append(t)
	}

	return all, nil
}
