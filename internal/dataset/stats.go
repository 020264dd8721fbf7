package dataset

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// infoColumnLimit caps the column names listed by Info.
const infoColumnLimit = 15

// Info is the shape summary shown for a loaded dataset.
type Info struct {
	Rows        int      `json:"rows"`
	Columns     int      `json:"columns"`
	ColumnNames []string `json:"column_names"`
	Categorical []string `json:"categorical"`
}

// Info returns the row and column counts and the first column names.
func (d *Dataset) Info() Info {
	names := d.Names()
	if len(names) > infoColumnLimit {
		names = names[:infoColumnLimit]
	}
	info := Info{Rows: d.rows, Columns: len(d.columns), ColumnNames: names, Categorical: []string{}}
	for _, c := range d.columns {
		if c.Categorical {
			info.Categorical = append(info.Categorical, c.Name)
		}
	}
	return info
}

// Unique returns the sorted distinct values of a column, used as filter
// options. Categorical columns answer from their level set.
func (d *Dataset) Unique(name string) ([]string, error) {
	c, err := d.Require(name)
	if err != nil {
		return nil, err
	}
	if c.Categorical {
		return c.Levels(), nil
	}
	return sortedLevels(c), nil
}

// Quantile returns the q-th quantile of values using linear interpolation
// between closest ranks. It reports false for an empty slice.
func Quantile(values []float64, q float64) (float64, bool) {
	n := len(values)
	if n == 0 {
		return 0, false
	}
	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)
	if q <= 0 {
		return sorted[0], true
	}
	if q >= 1 {
		return sorted[n-1], true
	}
	pos := q * float64(n-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	frac := pos - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac, true
}

// Bounds describes a numeric range control: the column's integer extent
// and the initial selection.
type Bounds struct {
	Column     string `json:"column"`
	Min        int64  `json:"min"`
	Max        int64  `json:"max"`
	DefaultMin int64  `json:"default_min"`
	DefaultMax int64  `json:"default_max"`
}

// defaultSelections are the initial range selections; value_eur is absent
// because its defaults come from the interquartile range.
var defaultSelections = map[string][2]int64{
	ColAge:       {18, 35},
	ColOverall:   {70, 90},
	ColPotential: {70, 90},
}

// RangeBounds returns the Bounds of every RangeColumns entry. All four
// columns are required.
func (d *Dataset) RangeBounds() ([]Bounds, error) {
	out := make([]Bounds, 0, len(RangeColumns))
	for _, name := range RangeColumns {
		c, err := d.RequireNumeric(name)
		if err != nil {
			return nil, err
		}
		b := Bounds{Column: name}
		if len(c.numbers) > 0 {
			lo, hi := c.numbers[0], c.numbers[0]
			for _, v := range c.numbers[1:] {
				lo = math.Min(lo, v)
				hi = math.Max(hi, v)
			}
			b.Min, b.Max = int64(lo), int64(hi)
		}
		if sel, ok := defaultSelections[name]; ok {
			b.DefaultMin, b.DefaultMax = sel[0], sel[1]
		} else {
			q1, _ := Quantile(c.numbers, 0.25)
			q3, _ := Quantile(c.numbers, 0.75)
			b.DefaultMin, b.DefaultMax = int64(q1), int64(q3)
		}
		b.DefaultMin = clamp(b.DefaultMin, b.Min, b.Max)
		b.DefaultMax = clamp(b.DefaultMax, b.Min, b.Max)
		out = append(out, b)
	}
	return out, nil
}

func clamp(v, lo, hi int64) int64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ColumnSummary holds descriptive statistics for one column. Fields that do
// not apply to the column's kind, or are undefined for its size, are nil.
type ColumnSummary struct {
	Name   string   `json:"name"`
	Kind   Kind     `json:"kind"`
	Count  int      `json:"count"`
	Unique *int     `json:"unique,omitempty"`
	Top    *string  `json:"top,omitempty"`
	Freq   *int     `json:"freq,omitempty"`
	Mean   *float64 `json:"mean,omitempty"`
	Std    *float64 `json:"std,omitempty"`
	Min    any      `json:"min,omitempty"`
	P25    *float64 `json:"25%,omitempty"`
	P50    *float64 `json:"50%,omitempty"`
	P75    *float64 `json:"75%,omitempty"`
	Max    any      `json:"max,omitempty"`
}

// Describe returns descriptive statistics for every column.
func (d *Dataset) Describe() []ColumnSummary {
	out := make([]ColumnSummary, 0, len(d.columns))
	for _, c := range d.columns {
		switch c.Kind {
		case KindNumeric:
			out = append(out, describeNumeric(c))
		case KindDate:
			out = append(out, describeDates(c))
		default:
			out = append(out, describeText(c))
		}
	}
	return out
}

func describeNumeric(c *Column) ColumnSummary {
	s := ColumnSummary{Name: c.Name, Kind: c.Kind, Count: len(c.numbers)}
	n := len(c.numbers)
	if n == 0 {
		return s
	}
	mean := stat.Mean(c.numbers, nil)
	s.Mean = &mean
	if n > 1 {
		// Sample standard deviation (n-1).
		std := stat.StdDev(c.numbers, nil)
		s.Std = &std
	}
	lo, _ := Quantile(c.numbers, 0)
	p25, _ := Quantile(c.numbers, 0.25)
	p50, _ := Quantile(c.numbers, 0.5)
	p75, _ := Quantile(c.numbers, 0.75)
	hi, _ := Quantile(c.numbers, 1)
	s.Min, s.P25, s.P50, s.P75, s.Max = lo, &p25, &p50, &p75, hi
	return s
}

func describeText(c *Column) ColumnSummary {
	s := ColumnSummary{Name: c.Name, Kind: c.Kind, Count: len(c.texts)}
	if len(c.texts) == 0 {
		return s
	}
	counts := make(map[string]int)
	top, freq := "", 0
	for _, v := range c.texts {
		counts[v]++
		if counts[v] > freq {
			top, freq = v, counts[v]
		}
	}
	unique := len(counts)
	s.Unique, s.Top, s.Freq = &unique, &top, &freq
	return s
}

func describeDates(c *Column) ColumnSummary {
	s := ColumnSummary{Name: c.Name, Kind: c.Kind}
	var lo, hi Date
	for _, d := range c.dates {
		if !d.Valid {
			continue
		}
		s.Count++
		if !lo.Valid || d.Time.Before(lo.Time) {
			lo = d
		}
		if !hi.Valid || d.Time.After(hi.Time) {
			hi = d
		}
	}
	if s.Count > 0 {
		s.Min, s.Max = lo.String(), hi.String()
	}
	return s
}
