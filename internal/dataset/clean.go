package dataset

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"
)

// dateLayouts are tried in order when parsing the dob column.
var dateLayouts = []string{
	dateLayout,
	dateTimeLayout,
	time.RFC3339,
	"2006/01/02",
	"01/02/2006",
	"20060102",
	"2 January 2006",
	"Jan 2, 2006",
	"January 2, 2006",
}

// CleanReport tracks what Clean changed.
type CleanReport struct {
	DroppedColumns    []string `json:"dropped_columns"`
	NumericColumns    int      `json:"numeric_columns"`
	TextColumns       int      `json:"text_columns"`
	NumericFilled     int      `json:"numeric_filled"`
	TextFilled        int      `json:"text_filled"`
	InvalidDates      int      `json:"invalid_dates"`
	ZeroFilledColumns []string `json:"zero_filled_columns"`
}

// Summary returns a human-readable summary of the cleaning pass.
func (r *CleanReport) Summary() string {
	return fmt.Sprintf(
		"dropped=%d numeric=%d text=%d numeric_filled=%d text_filled=%d invalid_dates=%d zero_filled=%d",
		len(r.DroppedColumns), r.NumericColumns, r.TextColumns,
		r.NumericFilled, r.TextFilled, r.InvalidDates, len(r.ZeroFilledColumns),
	)
}

// Clean turns a raw table into a Dataset. It is deterministic: the same raw
// input always gives the same dataset. The steps run in a fixed order
// because later ones read what earlier ones produce:
//
//  1. drop DroppedColumns
//  2. split the remaining columns into numeric and text by their values
//  3. fill missing numeric cells with the column median (0 if undefined)
//  4. fill missing text cells with UnknownText
//  5. parse dob into dates, keeping an explicit marker for bad values
//  6. tag CategoricalColumns
//  7. normalize column names
//
// The only error is a contract violation in the input shape: duplicate or
// ragged raw columns, or two names that collide after normalization.
func Clean(raw *Raw) (*Dataset, CleanReport, error) {
	var report CleanReport
	if err := raw.Validate(); err != nil {
		return nil, report, err
	}

	columns := make([]*Column, 0, len(raw.Header))
	for idx, name := range raw.Header {
		if isDropped(name) {
			report.DroppedColumns = append(report.DroppedColumns, name)
			continue
		}
		cells := raw.column(idx)
		if partition(name, cells) == KindNumeric {
			columns = append(columns, fillNumeric(name, cells, &report))
			report.NumericColumns++
		} else {
			columns = append(columns, fillText(name, cells, &report))
			report.TextColumns++
		}
	}

	for i, c := range columns {
		if c.Name == ColDOB {
			columns[i] = parseDates(c, &report)
		}
	}

	for _, c := range columns {
		if isCategorical(c.Name) {
			c.Categorical = true
			c.levels = sortedLevels(c)
		}
	}

	for _, c := range columns {
		c.Name = NormalizeName(c.Name)
	}

	ds, err := newDataset(columns, len(raw.Rows))
	if err != nil {
		return nil, report, err
	}
	return ds, report, nil
}

// partition decides the kind of a raw column. A column is numeric when every
// present cell parses as a finite number. A column without any present cell
// takes its known kind, and is numeric when the name is not known.
func partition(name string, cells []string) Kind {
	observed := false
	for _, cell := range cells {
		if IsMissing(cell) {
			continue
		}
		observed = true
		if _, ok := parseNumber(cell); !ok {
			return KindText
		}
	}
	if observed {
		return KindNumeric
	}
	if k, ok := KnownKind(name); ok && k != KindNumeric {
		return KindText
	}
	return KindNumeric
}

func parseNumber(cell string) (float64, bool) {
	s := strings.TrimSpace(cell)
	if strings.ContainsAny(s, "xX_") {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, false
	}
	return v, true
}

func fillNumeric(name string, cells []string, report *CleanReport) *Column {
	numbers := make([]float64, len(cells))
	present := make([]float64, 0, len(cells))
	missing := make([]int, 0)
	for i, cell := range cells {
		if IsMissing(cell) {
			missing = append(missing, i)
			continue
		}
		v, _ := parseNumber(cell)
		numbers[i] = v
		present = append(present, v)
	}

	fill, ok := Median(present)
	if !ok {
		fill = 0
		report.ZeroFilledColumns = append(report.ZeroFilledColumns, name)
	}
	for _, i := range missing {
		numbers[i] = fill
	}
	report.NumericFilled += len(missing)
	return &Column{Name: name, Kind: KindNumeric, numbers: numbers}
}

func fillText(name string, cells []string, report *CleanReport) *Column {
	texts := make([]string, len(cells))
	for i, cell := range cells {
		if IsMissing(cell) {
			texts[i] = UnknownText
			report.TextFilled++
			continue
		}
		texts[i] = cell
	}
	return &Column{Name: name, Kind: KindText, texts: texts}
}

func parseDates(c *Column, report *CleanReport) *Column {
	dates := make([]Date, c.Len())
	for i := range dates {
		d, ok := ParseDate(c.String(i))
		if !ok {
			report.InvalidDates++
		}
		dates[i] = d
	}
	return &Column{Name: c.Name, Kind: KindDate, dates: dates}
}

// ParseDate parses a date cell. The second result is false, and the Date
// is the unparseable marker, when no known layout matches.
func ParseDate(s string) (Date, bool) {
	s = strings.TrimSpace(s)
	if s == "" || s == UnknownText {
		return Date{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Date{Time: t.UTC(), Valid: true}, true
		}
	}
	return Date{}, false
}

// Median returns the median of values, averaging the two middle values for
// an even count. It reports false for an empty slice.
func Median(values []float64) (float64, bool) {
	n := len(values)
	if n == 0 {
		return 0, false
	}
	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)
	if n%2 == 1 {
		return sorted[n/2], true
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2, true
}
