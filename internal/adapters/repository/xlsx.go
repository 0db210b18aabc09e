package repository

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/okian/catan/pkg/metrics"
)

const defaultSkipRows = 1

// XLSXSource reads rows from an Excel workbook on disk.
type XLSXSource struct {
	path     string
	sheet    string
	skipRows int
}

// NewXLSXSource creates a source for the workbook at path. By default the
// first sheet is read and its first row (the technical header) is skipped.
func NewXLSXSource(path string, opts ...Option) *XLSXSource {
	s := &XLSXSource{
		path:     path,
		skipRows: defaultSkipRows,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Path returns the workbook location.
func (s *XLSXSource) Path() string { return s.path }

// Rows opens the workbook and returns the rows after the skipped prefix.
// Cells are returned as raw values, so dates come back as Excel serials.
func (s *XLSXSource) Rows(ctx context.Context) ([][]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start := time.Now()

	f, err := excelize.OpenFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrOpenWorkbook, s.path, err)
	}
	defer func() { _ = f.Close() }()

	sheet := s.sheet
	sheets := f.GetSheetList()
	if sheet == "" {
		if len(sheets) == 0 {
			return nil, fmt.Errorf("%w: %s has no sheets", ErrSheetNotFound, s.path)
		}
		sheet = sheets[0]
	} else if !slices.Contains(sheets, sheet) {
		return nil, fmt.Errorf("%w: %q in %s", ErrSheetNotFound, sheet, s.path)
	}

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrReadSheet, sheet, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	metrics.RecordWorkbookReadLatency(float64(time.Since(start).Milliseconds()))

	if len(rows) <= s.skipRows {
		return [][]string{}, nil
	}
	rows = rows[s.skipRows:]
	return pad(rows), nil
}

// pad extends short rows to the header width; excelize trims trailing empty cells.
func pad(rows [][]string) [][]string {
	if len(rows) == 0 {
		return rows
	}
	width := len(rows[0])
	for i, row := range rows {
		if len(row) < width {
			rows[i] = append(row, make([]string, width-len(row))...)
		}
	}
	return rows
}
