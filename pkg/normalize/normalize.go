// Package normalize rewrites inconsistent column names to a single
// canonical spelling before datasets from different sources are merged.
package normalize

import (
	"github.com/Sternrassler/fuel-data-etl/pkg/record"
)

// Alias maps an alternate column name to its canonical name.
type Alias struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// DefaultAliases is the alias table for the DMV vehicle datasets. Order is
// priority: for a given canonical name the first alias present wins.
var DefaultAliases = []Alias{
	{From: "ZIP Code", To: "Zip Code"},
	{From: "Zip_Code", To: "Zip Code"},
}

// Canonicalizer applies an ordered alias table to datasets.
type Canonicalizer struct {
	aliases []Alias
}

// NewCanonicalizer creates a canonicalizer for the given alias table.
// Entries with an empty name or mapping a name to itself are ignored.
func NewCanonicalizer(aliases []Alias) *Canonicalizer {
	table := make([]Alias, 0, len(aliases))
	for _, a := range aliases {
		if a.From == "" || a.To == "" || a.From == a.To {
			continue
		}
		table = append(table, a)
	}
	return &Canonicalizer{aliases: table}
}

// Aliases returns a copy of the alias table.
func (c *Canonicalizer) Aliases() []Alias {
	out := make([]Alias, len(c.aliases))
	copy(out, c.aliases)
	return out
}

// Apply renames aliased columns of one source's dataset in place and returns
// it. For each canonical name only the first alias (in table order) that
// occurs in the dataset is renamed; later aliases for the same canonical name
// are left as they are. A record that already has the canonical column keeps
// its value and loses the alias.
func (c *Canonicalizer) Apply(ds record.Dataset) record.Dataset {
	return c.ApplyTable(record.Table{Records: ds}).Records
}

// ApplyTable is Apply for a table: the column list is renamed in place
// too, so a canonical column keeps the position of its alias. An alias
// counts as present when it is listed or observed in any record.
func (c *Canonicalizer) ApplyTable(t record.Table) record.Table {
	present := columnSet(t.Records)
	for _, name := range t.Columns {
		present[name] = struct{}{}
	}

	for _, a := range c.resolve(present) {
		for _, rec := range t.Records {
			value, ok := rec[a.From]
			if !ok {
				continue
			}
			delete(rec, a.From)
			if _, exists := rec[a.To]; !exists {
				rec[a.To] = value
			}
		}
		t.Columns = renameColumn(t.Columns, a)
	}

	return t
}

// resolve picks, per canonical name, the first alias in table order that is
// present.
func (c *Canonicalizer) resolve(present map[string]struct{}) []Alias {
	var out []Alias
	resolved := make(map[string]bool)

	for _, a := range c.aliases {
		if resolved[a.To] {
			continue
		}
		if _, ok := present[a.From]; !ok {
			continue
		}
		resolved[a.To] = true
		out = append(out, a)
	}
	return out
}

// renameColumn replaces a.From with a.To, or drops it when a.To is listed.
func renameColumn(columns []string, a Alias) []string {
	hasCanonical := false
	for _, name := range columns {
		if name == a.To {
			hasCanonical = true
			break
		}
	}

	out := columns[:0]
	for _, name := range columns {
		if name == a.From {
			if hasCanonical {
				continue
			}
			name = a.To
		}
		out = append(out, name)
	}
	return out
}

func columnSet(ds record.Dataset) map[string]struct{} {
	set := make(map[string]struct{})
	for _, rec := range ds {
		for key := range rec {
			set[key] = struct{}{}
		}
	}
	return set
}
