// Package repository reads the league spreadsheet. The workbook is the only
// durable store; it is opened afresh on every read and never written.
package repository

import "context"

// Source yields the raw rows of the league dataset. Row 0 of the result is the
// embedded header row; the technical header of the workbook is already dropped.
type Source interface {
	Rows(ctx context.Context) ([][]string, error)
}

// StaticSource serves fixed rows, e.g. fixtures or generated samples.
type StaticSource [][]string

// Rows returns a copy of the rows so callers cannot mutate the source.
func (s StaticSource) Rows(ctx context.Context) ([][]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([][]string, len(s))
	for i, row := range s {
		out[i] = append([]string(nil), row...)
	}
	return out, nil
}
