package pagination

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/Sternrassler/fuel-data-etl/pkg/record"
	"github.com/google/go-cmp/cmp"
)

type call struct {
	resourceID string
	limit      int
	offset     int
}

// fakeSource serves sizes[resourceID] records, paged by limit/offset.
type fakeSource struct {
	sizes   map[string]int
	failAt  map[string]int // offset at which the resource fails
	columns map[int][]string
	calls   []call
}

func (s *fakeSource) FetchPage(_ context.Context, resourceID string, limit, offset int) (Page, error) {
	s.calls = append(s.calls, call{resourceID, limit, offset})

	if at, ok := s.failAt[resourceID]; ok && at == offset {
		return Page{}, errors.New("status 500")
	}

	size := s.sizes[resourceID]
	var recs record.Dataset
	for i := offset; i < size && i < offset+limit; i++ {
		recs = append(recs, record.Record{"_id": i, "resource": resourceID})
	}
	return Page{Records: recs, Columns: s.columns[offset], Total: size}, nil
}

func TestNew_Validation(t *testing.T) {
	if _, err := New(nil, DefaultConfig()); err == nil {
		t.Error("Expected error for nil source")
	}

	for _, size := range []int{0, -1} {
		_, err := New(&fakeSource{}, Config{PageSize: size})
		want := fmt.Sprintf("page size must be > 0 (got %d)", size)
		if err == nil || err.Error() != want {
			t.Errorf("New(PageSize=%d) error = %v, want %q", size, err, want)
		}
	}
}

func TestDefaultConfig(t *testing.T) {
	if DefaultConfig().PageSize != 5000 {
		t.Errorf("PageSize = %d, want 5000", DefaultConfig().PageSize)
	}
}

func TestFetchAll_PagesAndTermination(t *testing.T) {
	tests := []struct {
		name        string
		size        int
		limit       int
		wantOffsets []int
	}{
		{"empty resource", 0, 10, []int{0}},
		{"single short page", 7, 10, []int{0}},
		{"exact multiple needs empty page", 20, 10, []int{0, 10, 20}},
		{"short last page", 25, 10, []int{0, 10, 20}},
		{"page size one", 3, 1, []int{0, 1, 2, 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := &fakeSource{sizes: map[string]int{"r": tt.size}}
			f, err := New(src, Config{PageSize: tt.limit})
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}

			got, err := f.FetchAll(context.Background(), "r")
			if err != nil {
				t.Fatalf("FetchAll() error = %v", err)
			}
			if len(got.Records) != tt.size {
				t.Errorf("len(records) = %d, want %d", len(got.Records), tt.size)
			}

			var offsets []int
			for _, c := range src.calls {
				if c.limit != tt.limit {
					t.Errorf("limit = %d, want %d", c.limit, tt.limit)
				}
				offsets = append(offsets, c.offset)
			}
			if diff := cmp.Diff(tt.wantOffsets, offsets); diff != "" {
				t.Errorf("offsets mismatch (-want +got):\n%s", diff)
			}

			for i, rec := range got.Records {
				if rec["_id"] != i {
					t.Fatalf("record %d has _id %v, order not preserved", i, rec["_id"])
				}
			}
		})
	}
}

func TestFetchAll_TwoPageScenario(t *testing.T) {
	src := &fakeSource{sizes: map[string]int{"A": 6200}}
	f, _ := New(src, DefaultConfig())

	got, err := f.FetchAll(context.Background(), "A")
	if err != nil {
		t.Fatalf("FetchAll() error = %v", err)
	}

	if len(got.Records) != 6200 {
		t.Errorf("len(records) = %d, want 6200", len(got.Records))
	}
	want := []call{{"A", 5000, 0}, {"A", 5000, 5000}}
	if diff := cmp.Diff(want, src.calls, cmp.AllowUnexported(call{})); diff != "" {
		t.Errorf("calls mismatch (-want +got):\n%s", diff)
	}
}

func TestFetchAll_FailsWithoutPartialResult(t *testing.T) {
	src := &fakeSource{
		sizes:  map[string]int{"A": 30},
		failAt: map[string]int{"A": 10},
	}
	f, _ := New(src, Config{PageSize: 10})

	got, err := f.FetchAll(context.Background(), "A")
	if err == nil {
		t.Fatal("Expected error")
	}
	if got.Records != nil || got.Columns != nil {
		t.Errorf("records = %d, want empty table on failure", len(got.Records))
	}
	if !strings.Contains(err.Error(), "resource A") {
		t.Errorf("error = %v, want it to name the resource", err)
	}
	if len(src.calls) != 2 {
		t.Errorf("calls = %d, want 2 (no retry)", len(src.calls))
	}
}

func TestFetchResources_OrderAndTransform(t *testing.T) {
	src := &fakeSource{sizes: map[string]int{"A": 3, "B": 2}}
	f, _ := New(src, Config{PageSize: 2})

	var seen []string
	got, err := f.FetchResources(context.Background(), []string{"B", "A"}, func(id string, t record.Table) record.Table {
		seen = append(seen, id)
		for _, rec := range t.Records {
			rec["source"] = id
		}
		return t
	})
	if err != nil {
		t.Fatalf("FetchResources() error = %v", err)
	}

	if diff := cmp.Diff([]string{"B", "A"}, seen); diff != "" {
		t.Errorf("transform order mismatch (-want +got):\n%s", diff)
	}
	if len(got.Records) != 5 {
		t.Fatalf("len(records) = %d, want 5", len(got.Records))
	}
	if got.Records[0]["source"] != "B" || got.Records[4]["source"] != "A" {
		t.Errorf("records not concatenated in list order: first=%v last=%v", got.Records[0]["source"], got.Records[4]["source"])
	}
}

func TestFetchResources_StopsAtFirstFailure(t *testing.T) {
	src := &fakeSource{
		sizes:  map[string]int{"A": 1, "B": 1, "C": 1},
		failAt: map[string]int{"B": 0},
	}
	f, _ := New(src, DefaultConfig())

	_, err := f.FetchResources(context.Background(), []string{"A", "B", "C"}, nil)
	if err == nil {
		t.Fatal("Expected error")
	}

	for _, c := range src.calls {
		if c.resourceID == "C" {
			t.Error("resource C should not be fetched after B failed")
		}
	}
}

func TestFetchResources_Empty(t *testing.T) {
	f, _ := New(&fakeSource{}, DefaultConfig())

	got, err := f.FetchResources(context.Background(), nil, nil)
	if err != nil {
		t.Fatalf("FetchResources() error = %v", err)
	}
	if len(got.Records) != 0 {
		t.Errorf("len(records) = %d, want 0", len(got.Records))
	}
}

func TestFetchAll_ColumnsInFirstSeenOrder(t *testing.T) {
	src := &fakeSource{
		sizes: map[string]int{"A": 5},
		columns: map[int][]string{
			0: {"_id", "Date", "ZIP Code"},
			2: {"_id", "Date", "ZIP Code", "Model Year"},
		},
	}
	f, _ := New(src, Config{PageSize: 2})

	got, err := f.FetchAll(context.Background(), "A")
	if err != nil {
		t.Fatalf("FetchAll() error = %v", err)
	}

	want := []string{"_id", "Date", "ZIP Code", "Model Year"}
	if diff := cmp.Diff(want, got.Columns); diff != "" {
		t.Errorf("Columns mismatch (-want +got):\n%s", diff)
	}
}
