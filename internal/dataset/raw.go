package dataset

import (
	"fmt"
	"strings"
)

// naMarkers are the cell spellings read as missing values.
var naMarkers = map[string]struct{}{
	"NA": {}, "N/A": {}, "n/a": {}, "NaN": {}, "nan": {}, "-NaN": {}, "-nan": {},
	"null": {}, "NULL": {}, "None": {}, "<NA>": {}, "#N/A": {}, "#NA": {},
	"#N/A N/A": {}, "1.#IND": {}, "1.#QNAN": {}, "-1.#IND": {}, "-1.#QNAN": {},
}

// IsMissing reports whether a raw cell holds no value.
func IsMissing(cell string) bool {
	s := strings.TrimSpace(cell)
	if s == "" {
		return true
	}
	_, ok := naMarkers[s]
	return ok
}

// Raw is a table as read from its source: a header and untyped string cells.
type Raw struct {
	Header []string
	Rows   [][]string
}

// Validate checks that header names are unique and every row matches the
// header width.
func (r *Raw) Validate() error {
	seen := make(map[string]struct{}, len(r.Header))
	for _, h := range r.Header {
		if _, dup := seen[h]; dup {
			return fmt.Errorf("%w: %q", ErrDuplicateColumn, h)
		}
		seen[h] = struct{}{}
	}
	for i, row := range r.Rows {
		if len(row) != len(r.Header) {
			return fmt.Errorf("%w: row %d has %d cells, header has %d",
				ErrRaggedRow, i+1, len(row), len(r.Header))
		}
	}
	return nil
}

func (r *Raw) column(idx int) []string {
	cells := make([]string, len(r.Rows))
	for i, row := range r.Rows {
		cells[i] = row[idx]
	}
	return cells
}
