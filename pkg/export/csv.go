// Package export serializes a Dataset to a CSV file.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/Sternrassler/fuel-data-etl/pkg/record"
)

// WriteCSV writes ds to path with a header derived from the observed
// fields. See WriteCSVColumns.
func WriteCSV(path string, ds record.Dataset) error {
	return WriteCSVColumns(path, record.Columns(ds), ds)
}

// WriteCSVColumns writes ds to path using columns as the header row. The
// file is written next to path and renamed into place, so an existing file
// is replaced only on success and a failure leaves no partial output. A
// dataset with no records still produces a file: header-only, or empty if
// there are no columns.
func WriteCSVColumns(path string, columns []string, ds record.Dataset) (err error) {
	dir := filepath.Dir(path)

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if err = Write(tmp, columns, ds); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close output file: %w", err)
	}
	if err = os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("chmod output file: %w", err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename output file: %w", err)
	}

	return nil
}

// Write encodes ds as CSV to w: a header row of columns (omitted when there
// are none), then one row per record with empty cells for missing fields.
func Write(w io.Writer, columns []string, ds record.Dataset) error {
	cw := csv.NewWriter(w)

	if len(columns) > 0 {
		if err := cw.Write(columns); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}

	row := make([]string, len(columns))
	for i, rec := range ds {
		for j, col := range columns {
			cell, err := FormatValue(rec[col])
			if err != nil {
				return fmt.Errorf("record %d column %q: %w", i, col, err)
			}
			row[j] = cell
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write record %d: %w", i, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

// FormatValue renders one field as a CSV cell.
func FormatValue(v any) (string, error) {
	switch val := v.(type) {
	case nil:
		return "", nil
	case string:
		return val, nil
	case json.Number:
		return val.String(), nil
	case bool:
		return strconv.FormatBool(val), nil
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), nil
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32), nil
	case int:
		return strconv.Itoa(val), nil
	case int64:
		return strconv.FormatInt(val, 10), nil
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return "", fmt.Errorf("encode value: %w", err)
		}
		return string(b), nil
	}
}
