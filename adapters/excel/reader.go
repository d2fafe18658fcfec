// Package excel loads spreadsheet workbooks (xlsx via excelize, or csv) into
// the in-memory workbook model.
package excel

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"finprobe/domain/workbook"
	"finprobe/internal/errors"
	"finprobe/internal/logger"

	"github.com/xuri/excelize/v2"
)

// DataReader reads Excel and CSV files
type DataReader struct {
	coercer *TypeCoercer
}

// NewDataReader creates a reader that handles both Excel and CSV files
func NewDataReader() *DataReader {
	return &DataReader{coercer: NewTypeCoercer(DefaultCoercionConfig())}
}

// Load reads every sheet of the file at path.
// A sheet that fails to read is skipped and recorded; only a missing or
// unopenable file is an error.
func (r *DataReader) Load(ctx context.Context, path string) (*workbook.Workbook, error) {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return nil, errors.New(errors.CodeNotFound, fmt.Sprintf("workbook not found: %s", path))
	}

	if strings.EqualFold(filepath.Ext(path), ".csv") {
		return r.readCSVData(ctx, path)
	}
	return r.readExcelData(ctx, path)
}

func (r *DataReader) readExcelData(ctx context.Context, path string) (*workbook.Workbook, error) {
	startTime := time.Now()
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, errors.WorkbookOpen(path, err)
	}
	defer f.Close()

	date1904 := false
	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		date1904 = *props.Date1904
	}

	wb := &workbook.Workbook{Path: path, SheetNames: f.GetSheetList()}
	styleDates := make(map[int]bool)

	err = loadSheets(ctx, wb, func(sheet string) (*workbook.Table, error) {
		return r.readSheet(f, sheet, newCellTyper(f, sheet, date1904, styleDates))
	})
	if err != nil {
		return nil, err
	}

	logger.Debug(ctx, "workbook read",
		"path", path,
		"sheets", len(wb.SheetNames),
		"tables", len(wb.Tables),
		"elapsed_ms", float64(time.Since(startTime).Nanoseconds())/1e6)
	return wb, nil
}

// loadSheets reads every sheet named in wb. A sheet whose read fails is
// logged and recorded in wb.Skipped; only cancellation stops the loop.
func loadSheets(ctx context.Context, wb *workbook.Workbook, read func(sheet string) (*workbook.Table, error)) error {
	for _, sheet := range wb.SheetNames {
		if err := ctx.Err(); err != nil {
			return err
		}
		table, err := read(sheet)
		if err != nil {
			sheetErr := errors.SheetRead(sheet, err)
			logger.Warn(ctx, "skipping sheet", "sheet", sheet, "error", sheetErr)
			wb.Skipped = append(wb.Skipped, workbook.SheetError{Sheet: sheet, Err: sheetErr.Error()})
			continue
		}
		rows, cols := table.Shape()
		logger.Info(ctx, "loaded sheet", "sheet", sheet, "rows", rows, "cols", cols)
		wb.Tables = append(wb.Tables, table)
	}
	return nil
}

func (r *DataReader) readSheet(f *excelize.File, sheet string, typer *cellTyper) (*workbook.Table, error) {
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, err
	}
	return buildTable(sheet, rows, typer.value)
}

func (r *DataReader) readCSVData(ctx context.Context, path string) (*workbook.Workbook, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.WorkbookOpen(path, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, errors.WorkbookOpen(path, fmt.Errorf("failed to read CSV file: %w", err))
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	table, err := buildTable(name, rows, func(_, _ int, raw string) (workbook.Value, error) {
		return r.coercer.CoerceValue(raw), nil
	})
	if err != nil {
		return nil, errors.WorkbookOpen(path, err)
	}

	rowsN, cols := table.Shape()
	logger.Info(ctx, "loaded sheet", "sheet", name, "rows", rowsN, "cols", cols)
	return &workbook.Workbook{
		Path:       path,
		SheetNames: []string{name},
		Tables:     []*workbook.Table{table},
	}, nil
}

type cellFunc func(col, row int, raw string) (workbook.Value, error)

// buildTable turns raw rows (first row is the header) into a table.
// col and row passed to typeCell are 1-based sheet coordinates.
func buildTable(name string, rows [][]string, typeCell cellFunc) (*workbook.Table, error) {
	if len(rows) == 0 {
		return workbook.NewTable(name, 0, nil), nil
	}

	width := 0
	for _, row := range rows {
		if len(row) > width {
			width = len(row)
		}
	}
	headers := headerNames(rows[0], width)
	dataRows := rows[1:]

	cols := make([]*workbook.Column, width)
	for c := 0; c < width; c++ {
		values := make([]workbook.Value, len(dataRows))
		for i, row := range dataRows {
			if c >= len(row) {
				values[i] = workbook.NewMissingValue()
				continue
			}
			v, err := typeCell(c+1, i+2, row[c])
			if err != nil {
				return nil, fmt.Errorf("cell (%d,%d): %w", c+1, i+2, err)
			}
			values[i] = v
		}
		cols[c] = workbook.NewColumn(headers[c], values)
	}
	return workbook.NewTable(name, len(dataRows), cols), nil
}

// headerNames names width columns from the header row.
// Blank names become "Unnamed: i"; repeats get ".1", ".2" suffixes.
func headerNames(header []string, width int) []string {
	names := make([]string, width)
	seen := make(map[string]int)
	for i := 0; i < width; i++ {
		name := ""
		if i < len(header) {
			name = strings.TrimSpace(header[i])
		}
		if name == "" {
			name = fmt.Sprintf("Unnamed: %d", i)
		}
		base := name
		for seen[name] > 0 {
			name = fmt.Sprintf("%s.%d", base, seen[base])
			seen[base]++
		}
		seen[name]++
		names[i] = name
	}
	return names
}
