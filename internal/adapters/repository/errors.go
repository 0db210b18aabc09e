package repository

import "errors"

// Sentinel kinds for workbook access errors.
var (
	ErrOpenWorkbook  = errors.New("open workbook failed")
	ErrSheetNotFound = errors.New("sheet not found")
	ErrReadSheet     = errors.New("read sheet failed")
)
