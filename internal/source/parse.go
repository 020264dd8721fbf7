package source

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/albapepper/fifa-analytics/internal/dataset"
)

const utf8BOM = "\ufeff"

var errNoHeader = errors.New("no header row")

// ParseCSV reads a CSV document whose first record is the header.
func ParseCSV(r io.Reader) (*dataset.Raw, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 0 // every record must match the header width

	header, err := cr.Read()
	if err == io.EOF {
		return nil, errNoHeader
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	header[0] = strings.TrimPrefix(header[0], utf8BOM)

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read records: %w", err)
	}

	raw := &dataset.Raw{Header: header, Rows: rows}
	if err := raw.Validate(); err != nil {
		return nil, err
	}
	return raw, nil
}

// ParseXLSX reads the first sheet of a workbook; its first row is the header.
// Trailing empty cells, which excelize leaves out, are padded back.
func ParseXLSX(r io.Reader) (*dataset.Raw, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, errNoHeader
	}

	header := rows[0]
	records := make([][]string, 0, len(rows)-1)
	for i, row := range rows[1:] {
		if len(row) > len(header) {
			return nil, fmt.Errorf("%w: row %d has %d cells, header has %d",
				dataset.ErrRaggedRow, i+1, len(row), len(header))
		}
		record := make([]string, len(header))
		copy(record, row)
		records = append(records, record)
	}

	raw := &dataset.Raw{Header: header, Rows: records}
	if err := raw.Validate(); err != nil {
		return nil, err
	}
	return raw, nil
}
