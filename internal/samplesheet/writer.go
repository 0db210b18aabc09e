package samplesheet

import (
	"context"
	"fmt"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/okian/catan/pkg/logger"
)

// Write generates the rows for cfg and saves them as an xlsx workbook at
// cfg.Out. Numeric cells are stored as numbers.
func Write(ctx context.Context, cfg Config) error {
	rows, err := Generate(cfg)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := cfg.Sheet
	if sheet == "" {
		sheet = DefaultSheet
	}
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return fmt.Errorf("row %d: %w", i+1, err)
		}
		values := make([]interface{}, len(row))
		for j, v := range row {
			values[j] = cellValue(i, v)
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	if err := f.SaveAs(cfg.Out); err != nil {
		return fmt.Errorf("save %s: %w", cfg.Out, err)
	}
	logger.Get().Info(ctx, "sample workbook written",
		logger.String("path", cfg.Out),
		logger.Int("seasons", cfg.Seasons),
		logger.Int("games", cfg.Games),
		logger.Int("rows", len(rows)-2),
	)
	return nil
}

// cellValue keeps header rows as text and stores integers in data rows as numbers.
func cellValue(row int, v string) interface{} {
	if row < 2 || v == "" {
		return v
	}
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	return v
}
