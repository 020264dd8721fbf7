package dataset

import (
	"fmt"
	"sort"
)

// Range is an inclusive numeric interval.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Contains reports whether min <= v <= max.
func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// FilterSpec is a set of constraints combined with AND. An empty inclusion
// list places no restriction on its column.
type FilterSpec struct {
	Categories map[string][]string `json:"categories,omitempty"`
	Ranges     map[string]Range    `json:"ranges,omitempty"`
}

// IsEmpty reports whether the spec restricts nothing.
func (s FilterSpec) IsEmpty() bool {
	for _, values := range s.Categories {
		if len(values) > 0 {
			return false
		}
	}
	return len(s.Ranges) == 0
}

// View is a filtered, order-preserving selection of dataset rows. It does
// not copy or own the dataset.
type View struct {
	ds   *Dataset
	rows []int
}

// Len returns the number of selected rows.
func (v *View) Len() int { return len(v.rows) }

// Dataset returns the dataset the view selects from.
func (v *View) Dataset() *Dataset { return v.ds }

// Index returns the dataset row index of the i-th selected row.
func (v *View) Index(i int) int { return v.rows[i] }

// Indexes returns the selected dataset row indexes in order.
func (v *View) Indexes() []int {
	out := make([]int, len(v.rows))
	copy(out, v.rows)
	return out
}

// Head renders the first n selected rows. A negative n renders all of them.
func (v *View) Head(n int) Table {
	if n < 0 || n > len(v.rows) {
		n = len(v.rows)
	}
	t := Table{Columns: v.ds.Names(), Rows: make([][]any, 0, n)}
	for _, i := range v.rows[:n] {
		t.Rows = append(t.Rows, v.ds.Row(i))
	}
	return t
}

// Records renders every selected row as canonical string cells, in the
// column order of Dataset().Names().
func (v *View) Records() [][]string {
	out := make([][]string, len(v.rows))
	for k, i := range v.rows {
		rec := make([]string, v.ds.Width())
		for j, c := range v.ds.columns {
			rec[j] = c.String(i)
		}
		out[k] = rec
	}
	return out
}

type categoryPredicate struct {
	col     *Column
	allowed map[string]struct{}
}

type rangePredicate struct {
	col *Column
	r   Range
}

// Apply selects the rows of ds that satisfy every constraint of spec.
// Constraints on columns the dataset lacks are skipped. A range on a column
// that is not numeric is rejected with ErrColumnKind. ds is never modified.
func Apply(ds *Dataset, spec FilterSpec) (*View, error) {
	var cats []categoryPredicate
	for _, name := range sortedKeys(spec.Categories) {
		values := spec.Categories[name]
		if len(values) == 0 {
			continue
		}
		col, ok := ds.Column(name)
		if !ok {
			continue
		}
		allowed := make(map[string]struct{}, len(values))
		for _, v := range values {
			allowed[v] = struct{}{}
		}
		cats = append(cats, categoryPredicate{col: col, allowed: allowed})
	}

	var ranges []rangePredicate
	for _, name := range sortedKeys(spec.Ranges) {
		col, ok := ds.Column(name)
		if !ok {
			continue
		}
		if col.Kind != KindNumeric {
			return nil, fmt.Errorf("%w: range on %s column %q", ErrColumnKind, col.Kind, name)
		}
		ranges = append(ranges, rangePredicate{col: col, r: spec.Ranges[name]})
	}

	rows := make([]int, 0, ds.Len())
rowLoop:
	for i := 0; i < ds.Len(); i++ {
		for _, p := range cats {
			if _, ok := p.allowed[p.col.String(i)]; !ok {
				continue rowLoop
			}
		}
		for _, p := range ranges {
			if !p.r.Contains(p.col.numbers[i]) {
				continue rowLoop
			}
		}
		rows = append(rows, i)
	}
	return &View{ds: ds, rows: rows}, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
