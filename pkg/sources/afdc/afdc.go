// Package afdc reads the Alternative Fuels Data Center station list from
// the NREL developer API in a single request.
package afdc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"

	"github.com/Sternrassler/fuel-data-etl/pkg/record"
	"github.com/Sternrassler/fuel-data-etl/pkg/sources"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// DefaultURL is the alt-fuel-stations JSON endpoint.
const DefaultURL = "https://developer.nrel.gov/api/alt-fuel-stations/v1.json"

type stationsResponse struct {
	TotalResults *int               `json:"total_results"`
	FuelStations *[]json.RawMessage `json:"fuel_stations"`
}

// Source fetches fuel stations.
type Source struct {
	getter   sources.Getter
	endpoint string
	apiKey   string
	params   url.Values
	logger   zerolog.Logger
}

// NewSource creates a source. params are extra API filters such as
// fuel_type or state; api_key in params is ignored.
func NewSource(getter sources.Getter, endpoint, apiKey string, params map[string]string) (*Source, error) {
	if getter == nil {
		return nil, fmt.Errorf("http client is required")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("api key is required")
	}
	if endpoint == "" {
		endpoint = DefaultURL
	}

	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)

	q := url.Values{}
	for _, name := range names {
		if name == "api_key" {
			continue
		}
		q.Set(name, params[name])
	}

	return &Source{
		getter:   getter,
		endpoint: endpoint,
		apiKey:   apiKey,
		params:   q,
		logger:   log.With().Str("component", "afdc").Logger(),
	}, nil
}

// FetchStations issues one request and returns every station flattened
// into dotted columns, in the field order of the response.
func (s *Source) FetchStations(ctx context.Context) (record.Table, error) {
	query := url.Values{"api_key": {s.apiKey}}
	for name, values := range s.params {
		query[name] = values
	}

	resp, err := s.getter.Get(ctx, s.endpoint, query)
	if err != nil {
		return record.Table{}, fmt.Errorf("fetch fuel stations: %w", err)
	}

	var body stationsResponse
	if err := record.Decode(bytes.NewReader(resp.Body), &body); err != nil {
		return record.Table{}, fmt.Errorf("fetch fuel stations: %w", err)
	}
	if body.FuelStations == nil {
		return record.Table{}, fmt.Errorf("fetch fuel stations: response has no fuel_stations field")
	}

	stations, err := record.FlattenRaw(*body.FuelStations)
	if err != nil {
		return record.Table{}, fmt.Errorf("fetch fuel stations: %w", err)
	}

	event := s.logger.Info().Int("records", len(stations.Records))
	if body.TotalResults != nil {
		event = event.Int("total_results", *body.TotalResults)
	}
	event.Bool("cached", resp.Cached).Msg("Fuel stations fetched")

	return stations, nil
}
