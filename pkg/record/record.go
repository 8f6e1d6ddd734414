// Package record defines the tabular data model shared by all sources:
// a Record is one flattened JSON object and a Dataset is an ordered
// sequence of Records accumulated across pages and sources.
package record

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
)

// Separator joins nested object keys when flattening.
const Separator = "."

// Record maps a field name to a scalar value (string, json.Number, bool or nil).
// Field sets are defined by the remote API and are not validated locally.
type Record map[string]any

// Dataset is an ordered sequence of Records. Position is the only identity.
type Dataset []Record

// Flatten converts a decoded JSON object into a Record. Nested objects are
// expanded into dotted column names ("federal_agency.name"); arrays are kept
// as values. Empty nested objects produce no columns.
func Flatten(obj map[string]any) Record {
	rec := make(Record, len(obj))
	flattenInto(rec, "", obj)
	return rec
}

func flattenInto(dst Record, prefix string, obj map[string]any) {
	for key, value := range obj {
		name := key
		if prefix != "" {
			name = prefix + Separator + key
		}

		if nested, ok := value.(map[string]any); ok {
			flattenInto(dst, name, nested)
			continue
		}
		dst[name] = value
	}
}

// Columns returns the union of field names observed in ds in first-seen
// order. Keys new to a record are appended sorted, so the result is stable
// regardless of map iteration order. Sources that know their field order
// report it through Table.Columns instead.
func Columns(ds Dataset) []string {
	seen := make(map[string]struct{})
	var columns []string

	for _, rec := range ds {
		var fresh []string
		for key := range rec {
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			fresh = append(fresh, key)
		}
		sort.Strings(fresh)
		columns = append(columns, fresh...)
	}

	return columns
}

// Decode reads one JSON document from r into v. Numbers are kept as
// json.Number so they round-trip to the output file unchanged.
func Decode(r io.Reader, v any) error {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("decode json: %w", err)
	}
	return nil
}
