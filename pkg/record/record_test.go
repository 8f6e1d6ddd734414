package record

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestFlatten(t *testing.T) {
	obj := map[string]any{
		"id":                 json.Number("1517"),
		"station_name":       "Spring Hill Station",
		"open_date":          nil,
		"ev_connector_types": []any{"J1772", "CHADEMO"},
		"federal_agency": map[string]any{
			"id":   json.Number("9"),
			"code": "DOE",
		},
		"ev_network_ids": map[string]any{
			"station": []any{"ABC"},
			"posts":   map[string]any{"count": json.Number("2")},
		},
		"empty": map[string]any{},
	}

	want := Record{
		"id":                         json.Number("1517"),
		"station_name":               "Spring Hill Station",
		"open_date":                  nil,
		"ev_connector_types":         []any{"J1772", "CHADEMO"},
		"federal_agency.id":          json.Number("9"),
		"federal_agency.code":        "DOE",
		"ev_network_ids.station":     []any{"ABC"},
		"ev_network_ids.posts.count": json.Number("2"),
	}

	if diff := cmp.Diff(want, Flatten(obj)); diff != "" {
		t.Errorf("Flatten() mismatch (-want +got):\n%s", diff)
	}
}

func TestColumns(t *testing.T) {
	tests := []struct {
		name string
		ds   Dataset
		want []string
	}{
		{
			name: "empty dataset",
			ds:   nil,
			want: nil,
		},
		{
			name: "single record sorted",
			ds:   Dataset{{"b": 1, "a": 2, "c": 3}},
			want: []string{"a", "b", "c"},
		},
		{
			name: "union in first-seen order",
			ds: Dataset{
				{"Zip Code": "95814", "Vehicles": "3"},
				{"Vehicles": "1", "Fuel": "Gasoline", "Date": "2020"},
				{"Zip Code": "95815", "Model Year": "2019"},
			},
			want: []string{"Vehicles", "Zip Code", "Date", "Fuel", "Model Year"},
		},
		{
			name: "records without fields",
			ds:   Dataset{{}, {}},
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, Columns(tt.ds)); diff != "" {
				t.Errorf("Columns() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDecode_KeepsNumbers(t *testing.T) {
	var out struct {
		Records []map[string]any `json:"records"`
	}

	err := Decode(strings.NewReader(`{"records":[{"Vehicles": 12345678901234567890, "Zip": "00501"}]}`), &out)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	got := out.Records[0]["Vehicles"]
	if got != json.Number("12345678901234567890") {
		t.Errorf("Vehicles = %#v, want json.Number", got)
	}
}

func TestDecode_InvalidJSON(t *testing.T) {
	var out map[string]any
	if err := Decode(strings.NewReader(`{"records": [`), &out); err == nil {
		t.Error("Expected error for truncated JSON")
	}
}
