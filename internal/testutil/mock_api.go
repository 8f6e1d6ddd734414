// Package testutil provides mock API servers for tests.
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
)

// Request is one request received by a mock server.
type Request struct {
	Path       string
	ResourceID string
	Limit      int
	Offset     int
	APIKey     string
	UserAgent  string
}

// MockCKAN serves datastore_search for in-memory resources.
type MockCKAN struct {
	server *httptest.Server

	mu        sync.Mutex
	resources map[string][]map[string]any
	fields    map[string][]string
	failures  map[string]int    // resource_id -> HTTP status to return
	apiErrors map[string]string // resource_id -> success:false message
	requests  []Request
}

// NewMockCKAN starts a mock CKAN portal.
func NewMockCKAN() *MockCKAN {
	m := &MockCKAN{
		resources: make(map[string][]map[string]any),
		fields:    make(map[string][]string),
		failures:  make(map[string]int),
		apiErrors: make(map[string]string),
	}
	m.server = httptest.NewServer(http.HandlerFunc(m.handle))
	return m
}

// URL returns the portal base URL.
func (m *MockCKAN) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockCKAN) Close() {
	m.server.Close()
}

// SetResource registers the records of a resource.
func (m *MockCKAN) SetResource(resourceID string, records []map[string]any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resources[resourceID] = records
}

// SetFields sets the field list reported for resourceID. Without it the
// response has no fields entry.
func (m *MockCKAN) SetFields(resourceID string, fields []string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fields[resourceID] = fields
}

// SetStatus makes every request for resourceID answer with statusCode.
func (m *MockCKAN) SetStatus(resourceID string, statusCode int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures[resourceID] = statusCode
}

// SetAPIError makes requests for resourceID answer 200 with success: false.
func (m *MockCKAN) SetAPIError(resourceID, message string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.apiErrors[resourceID] = message
}

// Requests returns the requests received so far.
func (m *MockCKAN) Requests() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Request, len(m.requests))
	copy(out, m.requests)
	return out
}

func (m *MockCKAN) handle(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))
	id := q.Get("resource_id")

	m.mu.Lock()
	m.requests = append(m.requests, Request{
		Path:       r.URL.Path,
		ResourceID: id,
		Limit:      limit,
		Offset:     offset,
		UserAgent:  r.Header.Get("User-Agent"),
	})
	status, failing := m.failures[id]
	apiErr, hasAPIErr := m.apiErrors[id]
	records, known := m.resources[id]
	fields := m.fields[id]
	m.mu.Unlock()

	w.Header().Set("Content-Type", "application/json; charset=utf-8")

	switch {
	case r.URL.Path != "/api/3/action/datastore_search":
		w.WriteHeader(http.StatusNotFound)
		return
	case failing:
		w.WriteHeader(status)
		fmt.Fprintf(w, `{"success": false, "error": {"message": "HTTP %d"}}`, status)
		return
	case hasAPIErr:
		writeJSON(w, map[string]any{
			"success": false,
			"error":   map[string]any{"__type": "Validation Error", "message": apiErr},
		})
		return
	case !known:
		w.WriteHeader(http.StatusNotFound)
		writeJSON(w, map[string]any{
			"success": false,
			"error":   map[string]any{"__type": "Not Found Error", "message": "Not found: Resource was not found."},
		})
		return
	}

	page := []map[string]any{}
	for i := offset; i < len(records) && i < offset+limit; i++ {
		page = append(page, records[i])
	}

	result := map[string]any{
		"resource_id": id,
		"records":     page,
		"total":       len(records),
		"limit":       limit,
		"offset":      offset,
	}
	if fields != nil {
		declared := make([]map[string]string, 0, len(fields))
		for _, f := range fields {
			declared = append(declared, map[string]string{"id": f, "type": "text"})
		}
		result["fields"] = declared
	}

	writeJSON(w, map[string]any{
		"success": true,
		"result":  result,
	})
}

// MockNREL serves the alt-fuel-stations endpoint.
type MockNREL struct {
	server *httptest.Server

	mu        sync.Mutex
	apiKey    string
	stations  []map[string]any
	remaining int
	requests  []Request
}

// NewMockNREL starts a mock NREL API accepting apiKey.
func NewMockNREL(apiKey string) *MockNREL {
	m := &MockNREL{apiKey: apiKey, remaining: 999}
	m.server = httptest.NewServer(http.HandlerFunc(m.handle))
	return m
}

// URL returns the alt-fuel-stations endpoint URL.
func (m *MockNREL) URL() string {
	return m.server.URL + "/api/alt-fuel-stations/v1.json"
}

// Close shuts down the mock server.
func (m *MockNREL) Close() {
	m.server.Close()
}

// SetStations sets the stations returned.
func (m *MockNREL) SetStations(stations []map[string]any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stations = stations
}

// SetRemaining sets the X-RateLimit-Remaining value sent with responses.
func (m *MockNREL) SetRemaining(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.remaining = n
}

// Requests returns the requests received so far.
func (m *MockNREL) Requests() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Request, len(m.requests))
	copy(out, m.requests)
	return out
}

func (m *MockNREL) handle(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get("api_key")

	m.mu.Lock()
	m.requests = append(m.requests, Request{
		Path:      r.URL.Path,
		APIKey:    key,
		UserAgent: r.Header.Get("User-Agent"),
	})
	stations := m.stations
	remaining := m.remaining
	m.mu.Unlock()

	w.Header().Set("Content-Type", "application/json; charset=utf-8")

	if key != m.apiKey {
		w.WriteHeader(http.StatusForbidden)
		writeJSON(w, map[string]any{
			"error": map[string]any{
				"code":    "API_KEY_INVALID",
				"message": "An invalid api_key was supplied.",
			},
		})
		return
	}

	w.Header().Set("X-RateLimit-Limit", "1000")
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))

	if stations == nil {
		stations = []map[string]any{}
	}
	writeJSON(w, map[string]any{
		"station_locator_url": "https://afdc.energy.gov/stations/",
		"total_results":       len(stations),
		"fuel_stations":       stations,
	})
}

// Records builds n CKAN-style vehicle records whose zip column is named zipColumn.
func Records(n int, zipColumn string) []map[string]any {
	out := make([]map[string]any, n)
	for i := range out {
		out[i] = map[string]any{
			"_id":        i + 1,
			"Date":       "10/1/2020",
			zipColumn:    fmt.Sprintf("9%04d", i%10000),
			"Model Year": "2019",
			"Fuel":       "Gasoline",
			"Make":       "OTHER/UNK",
			"Duty":       "Light",
			"Vehicles":   i % 17,
		}
	}
	return out
}

// VehicleFields is the datastore field order of the records built by Records.
func VehicleFields(zipColumn string) []string {
	return []string{"_id", "Date", zipColumn, "Model Year", "Fuel", "Make", "Duty", "Vehicles"}
}

func writeJSON(w http.ResponseWriter, v any) {
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
