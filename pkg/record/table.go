package record

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Table is a Dataset together with the column order reported by its
// source. Records may carry fields that Columns does not list.
type Table struct {
	Columns []string
	Records Dataset
}

// Append adds the records of o and any of its columns not listed yet.
func (t *Table) Append(o Table) {
	t.Columns = union(t.Columns, o.Columns)
	t.Records = append(t.Records, o.Records...)
}

// Header returns the output columns: Columns in order, then any field
// observed in Records but missing from Columns, ordered as by Columns(ds).
func (t Table) Header() []string {
	return union(t.Columns, Columns(t.Records))
}

func union(a, b []string) []string {
	out := make([]string, 0, len(a)+len(b))
	seen := make(map[string]struct{}, len(a)+len(b))
	for _, list := range [][]string{a, b} {
		for _, name := range list {
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}
			out = append(out, name)
		}
	}
	return out
}

// FlattenRaw decodes and flattens each JSON object of objs. Columns lists
// the flattened field names in document order, first-seen across objects.
func FlattenRaw(objs []json.RawMessage) (Table, error) {
	t := Table{Records: make(Dataset, 0, len(objs))}
	seen := make(map[string]struct{})

	for i, raw := range objs {
		var obj map[string]any
		if err := Decode(bytes.NewReader(raw), &obj); err != nil {
			return Table{}, fmt.Errorf("object %d: %w", i, err)
		}
		keys, err := KeyOrder(raw)
		if err != nil {
			return Table{}, fmt.Errorf("object %d: %w", i, err)
		}

		for _, key := range keys {
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			t.Columns = append(t.Columns, key)
		}
		t.Records = append(t.Records, Flatten(obj))
	}

	return t, nil
}

// KeyOrder returns the field names Flatten produces for the JSON object in
// data, in document order. A JSON null yields no names.
func KeyOrder(data []byte) ([]string, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("decode json: %w", err)
	}
	if tok == nil {
		return nil, nil
	}
	if tok != json.Delim('{') {
		return nil, fmt.Errorf("decode json: expected object, got %v", tok)
	}

	var keys []string
	if err := objectKeys(dec, "", &keys); err != nil {
		return nil, fmt.Errorf("decode json: %w", err)
	}
	return keys, nil
}

// objectKeys reads the members of an object whose opening brace has been
// consumed, including the closing brace.
func objectKeys(dec *json.Decoder, prefix string, keys *[]string) error {
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("unexpected token %v", tok)
		}
		name := key
		if prefix != "" {
			name = prefix + Separator + key
		}

		tok, err = dec.Token()
		if err != nil {
			return err
		}
		switch tok {
		case json.Delim('{'):
			if err := objectKeys(dec, name, keys); err != nil {
				return err
			}
			continue
		case json.Delim('['):
			if err := skipArray(dec); err != nil {
				return err
			}
		}
		*keys = append(*keys, name)
	}

	_, err := dec.Token()
	return err
}

func skipArray(dec *json.Decoder) error {
	for depth := 1; depth > 0; {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		switch tok {
		case json.Delim('{'), json.Delim('['):
			depth++
		case json.Delim('}'), json.Delim(']'):
			depth--
		}
	}
	return nil
}
