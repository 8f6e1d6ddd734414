// Package ckan reads records from a CKAN data portal's datastore_search
// action, one page per call.
package ckan

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/Sternrassler/fuel-data-etl/pkg/client"
	"github.com/Sternrassler/fuel-data-etl/pkg/pagination"
	"github.com/Sternrassler/fuel-data-etl/pkg/record"
	"github.com/Sternrassler/fuel-data-etl/pkg/sources"
)

// DefaultBaseURL is the California open data portal.
const DefaultBaseURL = "https://data.ca.gov"

// SearchPath is the datastore_search action path.
const SearchPath = "/api/3/action/datastore_search"

// ResourceError is returned when the API answers with success: false.
type ResourceError struct {
	ResourceID string
	Message    string
}

// Error implements the error interface.
func (e *ResourceError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("failed to fetch data for resource_id %s", e.ResourceID)
	}
	return fmt.Sprintf("failed to fetch data for resource_id %s: %s", e.ResourceID, e.Message)
}

type searchResponse struct {
	Success *bool `json:"success"`
	Result  struct {
		Fields  []field           `json:"fields"`
		Records []json.RawMessage `json:"records"`
		Total   *int              `json:"total"`
	} `json:"result"`
	Error *apiError `json:"error"`
}

// field describes one datastore column.
type field struct {
	ID   string `json:"id"`
	Type string `json:"type"`
}

type apiError struct {
	Type    string `json:"__type"`
	Message string `json:"message"`
}

func (e *apiError) String() string {
	switch {
	case e == nil:
		return ""
	case e.Type != "" && e.Message != "":
		return e.Type + ": " + e.Message
	case e.Message != "":
		return e.Message
	default:
		return e.Type
	}
}

// Source implements pagination.PageSource for datastore_search.
type Source struct {
	getter   sources.Getter
	endpoint string
}

var _ pagination.PageSource = (*Source)(nil)

// NewSource creates a source for the portal at baseURL.
func NewSource(getter sources.Getter, baseURL string) *Source {
	return &Source{
		getter:   getter,
		endpoint: strings.TrimRight(baseURL, "/") + SearchPath,
	}
}

// FetchPage fetches records [offset, offset+limit) of resourceID.
func (s *Source) FetchPage(ctx context.Context, resourceID string, limit, offset int) (pagination.Page, error) {
	query := url.Values{
		"resource_id": {resourceID},
		"limit":       {strconv.Itoa(limit)},
		"offset":      {strconv.Itoa(offset)},
	}

	resp, err := s.getter.Get(ctx, s.endpoint, query, client.CacheIf(succeeded))
	if err != nil {
		return pagination.Page{}, fmt.Errorf("resource_id %s: %w", resourceID, err)
	}

	var body searchResponse
	if err := record.Decode(bytes.NewReader(resp.Body), &body); err != nil {
		return pagination.Page{}, fmt.Errorf("resource_id %s: %w", resourceID, err)
	}

	if body.Success == nil || !*body.Success {
		return pagination.Page{}, &ResourceError{
			ResourceID: resourceID,
			Message:    body.Error.String(),
		}
	}

	total := -1
	if body.Result.Total != nil {
		total = *body.Result.Total
	}

	table, err := record.FlattenRaw(body.Result.Records)
	if err != nil {
		return pagination.Page{}, fmt.Errorf("resource_id %s: %w", resourceID, err)
	}

	// Declared fields define the column order; fields only seen in records
	// follow in document order.
	page := record.Table{Columns: make([]string, 0, len(body.Result.Fields))}
	for _, f := range body.Result.Fields {
		page.Columns = append(page.Columns, f.ID)
	}
	page.Append(table)

	return pagination.Page{
		Records: page.Records,
		Columns: page.Columns,
		Total:   total,
	}, nil
}

// succeeded reports whether a datastore_search body has success: true.
// Failed answers are not cached.
func succeeded(body []byte) bool {
	var status struct {
		Success bool `json:"success"`
	}
	return json.Unmarshal(body, &status) == nil && status.Success
}
