// Package etl runs the two jobs of the tool: fetch, normalize and write
// the NREL fuel stations and the DMV vehicle fuel type datasets. A job
// either writes its complete output file or fails without touching it.
package etl

import (
	"context"
	"fmt"
	"time"

	"github.com/Sternrassler/fuel-data-etl/pkg/export"
	"github.com/Sternrassler/fuel-data-etl/pkg/normalize"
	"github.com/Sternrassler/fuel-data-etl/pkg/pagination"
	"github.com/Sternrassler/fuel-data-etl/pkg/record"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog/log"
)

// Job names used in logs and metric labels.
const (
	JobStations = "stations"
	JobVehicles = "vehicles"
)

var (
	jobRecords = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "etl_job_records",
		Help: "Records written by the last successful run of each job",
	}, []string{"job"})

	jobDuration = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "etl_job_duration_seconds",
		Help: "Duration of the last successful run of each job",
	}, []string{"job"})

	jobLastSuccess = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "etl_job_last_success_timestamp_seconds",
		Help: "Unix time of the last successful run of each job",
	}, []string{"job"})

	jobFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "etl_job_failures_total",
		Help: "Failed runs by job",
	}, []string{"job"})
)

// StationSource returns all fuel stations in one call.
type StationSource interface {
	FetchStations(ctx context.Context) (record.Table, error)
}

// ResourceFetcher fetches and concatenates paginated resources.
type ResourceFetcher interface {
	FetchResources(ctx context.Context, resourceIDs []string, transform pagination.Transform) (record.Table, error)
}

// Summary describes a completed job.
type Summary struct {
	Job      string
	Records  int
	Columns  []string
	Path     string
	Duration time.Duration
}

// Stations fetches the fuel stations from src and writes them to path.
func Stations(ctx context.Context, src StationSource, path string) (*Summary, error) {
	start := time.Now()

	table, err := src.FetchStations(ctx)
	if err != nil {
		jobFailures.WithLabelValues(JobStations).Inc()
		return nil, fmt.Errorf("stations: %w", err)
	}

	return finish(JobStations, path, table, start)
}

// Vehicles fetches resourceIDs in order through f, renames aliased columns
// of each resource with canon (nil to skip) and writes the concatenation to
// path.
func Vehicles(ctx context.Context, f ResourceFetcher, resourceIDs []string, canon *normalize.Canonicalizer, path string) (*Summary, error) {
	if len(resourceIDs) == 0 {
		jobFailures.WithLabelValues(JobVehicles).Inc()
		return nil, fmt.Errorf("vehicles: no resource ids configured")
	}

	start := time.Now()

	var transform pagination.Transform
	if canon != nil {
		transform = func(_ string, t record.Table) record.Table {
			return canon.ApplyTable(t)
		}
	}

	table, err := f.FetchResources(ctx, resourceIDs, transform)
	if err != nil {
		jobFailures.WithLabelValues(JobVehicles).Inc()
		return nil, fmt.Errorf("vehicles: %w", err)
	}

	return finish(JobVehicles, path, table, start)
}

func finish(job, path string, table record.Table, start time.Time) (*Summary, error) {
	columns := table.Header()
	if err := export.WriteCSVColumns(path, columns, table.Records); err != nil {
		jobFailures.WithLabelValues(job).Inc()
		return nil, fmt.Errorf("%s: write %s: %w", job, path, err)
	}

	summary := &Summary{
		Job:      job,
		Records:  len(table.Records),
		Columns:  columns,
		Path:     path,
		Duration: time.Since(start),
	}

	jobRecords.WithLabelValues(job).Set(float64(summary.Records))
	jobDuration.WithLabelValues(job).Set(summary.Duration.Seconds())
	jobLastSuccess.WithLabelValues(job).SetToCurrentTime()

	logger := log.With().Str("component", "etl").Logger()
	event := logger.Info()
	if len(table.Records) == 0 {
		event = logger.Warn()
	}
	event.
		Str("job", job).
		Str("path", path).
		Int("records", summary.Records).
		Int("columns", len(columns)).
		Dur("duration", summary.Duration).
		Msg("Output written")

	return summary, nil
}
