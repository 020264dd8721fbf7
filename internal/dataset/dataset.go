// Package dataset holds the player table in its raw and cleaned forms, the
// cleaning pipeline between them and the filter engine that derives views
// from a clean table.
//
// A Dataset is immutable once Clean returns it. Views and statistics only
// read from it, so one Dataset can be shared by every consumer of a session.
package dataset

import (
	"fmt"
	"sort"
	"strconv"
	"time"
)

// Kind is the value type of a clean column.
type Kind string

const (
	KindNumeric Kind = "numeric"
	KindText    Kind = "text"
	KindDate    Kind = "date"
)

const (
	dateLayout     = "2006-01-02"
	dateTimeLayout = "2006-01-02 15:04:05"
)

// Date is a parsed calendar date. Valid is false for the unparseable marker.
type Date struct {
	Time  time.Time
	Valid bool
}

// String formats the date, or returns "" for the unparseable marker.
func (d Date) String() string {
	if !d.Valid {
		return ""
	}
	h, m, s := d.Time.Clock()
	if h == 0 && m == 0 && s == 0 {
		return d.Time.Format(dateLayout)
	}
	return d.Time.Format(dateTimeLayout)
}

// Column is one clean column. Exactly one of the value slices is populated,
// matching Kind. Columns are read-only once part of a Dataset.
type Column struct {
	Name        string
	Kind        Kind
	Categorical bool

	levels  []string
	numbers []float64
	texts   []string
	dates   []Date
}

// Len returns the number of cells in the column.
func (c *Column) Len() int {
	switch c.Kind {
	case KindNumeric:
		return len(c.numbers)
	case KindDate:
		return len(c.dates)
	default:
		return len(c.texts)
	}
}

// Number returns cell i of a numeric column.
func (c *Column) Number(i int) float64 { return c.numbers[i] }

// Text returns cell i of a text column.
func (c *Column) Text(i int) string { return c.texts[i] }

// Date returns cell i of a date column.
func (c *Column) Date(i int) Date { return c.dates[i] }

// String returns the canonical text form of cell i, whatever the kind.
func (c *Column) String(i int) string {
	switch c.Kind {
	case KindNumeric:
		return formatNumber(c.numbers[i])
	case KindDate:
		return c.dates[i].String()
	default:
		return c.texts[i]
	}
}

// Value returns cell i as a JSON-friendly value. Unparseable dates are nil.
func (c *Column) Value(i int) any {
	switch c.Kind {
	case KindNumeric:
		return c.numbers[i]
	case KindDate:
		if !c.dates[i].Valid {
			return nil
		}
		return c.dates[i].String()
	default:
		return c.texts[i]
	}
}

// Levels returns the sorted value domain of a categorical column.
func (c *Column) Levels() []string {
	out := make([]string, len(c.levels))
	copy(out, c.levels)
	return out
}

// Numbers returns a copy of a numeric column's cells.
func (c *Column) Numbers() []float64 {
	out := make([]float64, len(c.numbers))
	copy(out, c.numbers)
	return out
}

// Dataset is a clean, column-oriented player table.
type Dataset struct {
	columns []*Column
	index   map[string]int
	rows    int
}

func newDataset(columns []*Column, rows int) (*Dataset, error) {
	index := make(map[string]int, len(columns))
	for i, c := range columns {
		if _, dup := index[c.Name]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateColumn, c.Name)
		}
		if c.Len() != rows {
			return nil, fmt.Errorf("column %q has %d cells, want %d", c.Name, c.Len(), rows)
		}
		index[c.Name] = i
	}
	return &Dataset{columns: columns, index: index, rows: rows}, nil
}

// Len returns the number of rows.
func (d *Dataset) Len() int { return d.rows }

// Width returns the number of columns.
func (d *Dataset) Width() int { return len(d.columns) }

// Names returns the column names in order.
func (d *Dataset) Names() []string {
	names := make([]string, len(d.columns))
	for i, c := range d.columns {
		names[i] = c.Name
	}
	return names
}

// Columns returns the columns in order.
func (d *Dataset) Columns() []*Column {
	out := make([]*Column, len(d.columns))
	copy(out, d.columns)
	return out
}

// Column looks a column up by name.
func (d *Dataset) Column(name string) (*Column, bool) {
	i, ok := d.index[name]
	if !ok {
		return nil, false
	}
	return d.columns[i], true
}

// Require returns the named column or a ColumnMissingError.
func (d *Dataset) Require(name string) (*Column, error) {
	c, ok := d.Column(name)
	if !ok {
		return nil, &ColumnMissingError{Column: name}
	}
	return c, nil
}

// RequireNumeric returns the named numeric column.
func (d *Dataset) RequireNumeric(name string) (*Column, error) {
	c, err := d.Require(name)
	if err != nil {
		return nil, err
	}
	if c.Kind != KindNumeric {
		return nil, fmt.Errorf("%w: %q is %s, want numeric", ErrColumnKind, name, c.Kind)
	}
	return c, nil
}

// Row returns row i as JSON-friendly values in column order.
func (d *Dataset) Row(i int) []any {
	row := make([]any, len(d.columns))
	for j, c := range d.columns {
		row[j] = c.Value(i)
	}
	return row
}

// Table is a row-major rendering of some dataset rows.
type Table struct {
	Columns []string `json:"columns"`
	Rows    [][]any  `json:"rows"`
}

// Head returns the first n rows.
func (d *Dataset) Head(n int) Table {
	if n < 0 || n > d.rows {
		n = d.rows
	}
	t := Table{Columns: d.Names(), Rows: make([][]any, 0, n)}
	for i := 0; i < n; i++ {
		t.Rows = append(t.Rows, d.Row(i))
	}
	return t
}

// Raw renders the dataset back into raw string cells. Unparseable dates
// become empty cells, so cleaning the result again yields the same dataset.
func (d *Dataset) Raw() *Raw {
	raw := &Raw{Header: d.Names(), Rows: make([][]string, d.rows)}
	for i := 0; i < d.rows; i++ {
		row := make([]string, len(d.columns))
		for j, c := range d.columns {
			row[j] = c.String(i)
		}
		raw.Rows[i] = row
	}
	return raw
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// sortedLevels returns the distinct canonical values of a column, ordered
// numerically for numeric columns and lexically otherwise. Unparseable dates
// are left out.
func sortedLevels(c *Column) []string {
	switch c.Kind {
	case KindNumeric:
		seen := make(map[float64]struct{})
		vals := make([]float64, 0)
		for _, v := range c.numbers {
			if _, ok := seen[v]; ok {
				continue
			}
			seen[v] = struct{}{}
			vals = append(vals, v)
		}
		sort.Float64s(vals)
		out := make([]string, len(vals))
		for i, v := range vals {
			out[i] = formatNumber(v)
		}
		return out
	case KindDate:
		seen := make(map[time.Time]struct{})
		vals := make([]time.Time, 0)
		for _, d := range c.dates {
			if !d.Valid {
				continue
			}
			if _, ok := seen[d.Time]; ok {
				continue
			}
			seen[d.Time] = struct{}{}
			vals = append(vals, d.Time)
		}
		sort.Slice(vals, func(i, j int) bool { return vals[i].Before(vals[j]) })
		out := make([]string, len(vals))
		for i, t := range vals {
			out[i] = Date{Time: t, Valid: true}.String()
		}
		return out
	default:
		seen := make(map[string]struct{})
		out := make([]string, 0)
		for _, s := range c.texts {
			if _, ok := seen[s]; ok {
				continue
			}
			seen[s] = struct{}{}
			out = append(out, s)
		}
		sort.Strings(out)
		return out
	}
}
