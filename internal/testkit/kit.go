package testkit

import (
	"context"
	"fmt"
	"math"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"finprobe/domain/report"
	"finprobe/domain/workbook"

	"github.com/xuri/excelize/v2"
)

// Num builds numeric cells; NaN becomes a missing cell
func Num(vals ...float64) []workbook.Value {
	out := make([]workbook.Value, len(vals))
	for i, v := range vals {
		if math.IsNaN(v) {
			out[i] = workbook.NewMissingValue()
			continue
		}
		out[i] = workbook.NewNumericValue(v)
	}
	return out
}

// Text builds text cells; "" becomes a missing cell
func Text(vals ...string) []workbook.Value {
	out := make([]workbook.Value, len(vals))
	for i, v := range vals {
		out[i] = workbook.NewStringValue(v)
	}
	return out
}

// Dates builds date cells from YYYY-MM-DD strings; "" becomes a missing cell
func Dates(vals ...string) []workbook.Value {
	out := make([]workbook.Value, len(vals))
	for i, v := range vals {
		if v == "" {
			out[i] = workbook.NewMissingValue()
			continue
		}
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			panic(fmt.Sprintf("testkit: bad date %q: %v", v, err))
		}
		out[i] = workbook.NewDateValue(t)
	}
	return out
}

// Bools builds boolean cells
func Bools(vals ...bool) []workbook.Value {
	out := make([]workbook.Value, len(vals))
	for i, v := range vals {
		out[i] = workbook.NewBoolValue(v)
	}
	return out
}

// Col builds a column and infers its kind
func Col(name string, values []workbook.Value) *workbook.Column {
	return workbook.NewColumn(name, values)
}

// Table builds a table whose row count is the longest column; shorter columns are padded with missing cells
func Table(name string, cols ...*workbook.Column) *workbook.Table {
	rows := 0
	for _, c := range cols {
		if c.Len() > rows {
			rows = c.Len()
		}
	}
	for _, c := range cols {
		for c.Len() < rows {
			c.Values = append(c.Values, workbook.NewMissingValue())
		}
	}
	return workbook.NewTable(name, rows, cols)
}

// Workbook wraps tables into a loaded workbook
func Workbook(path string, tables ...*workbook.Table) *workbook.Workbook {
	wb := &workbook.Workbook{Path: path}
	for _, t := range tables {
		wb.SheetNames = append(wb.SheetNames, t.Name)
		wb.Tables = append(wb.Tables, t)
	}
	return wb
}

// Sheet is a fixture sheet: Rows[0] is the header row
type Sheet struct {
	Name string
	Rows [][]any
}

// WriteWorkbook saves the sheets as an .xlsx file under dir and returns its path.
// Cells are written with excelize's own typing, so time.Time values get a date number format.
func WriteWorkbook(tb testing.TB, dir, name string, sheets ...Sheet) string {
	tb.Helper()

	f := excelize.NewFile()
	defer f.Close()

	for i, sheet := range sheets {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", sheet.Name); err != nil {
				tb.Fatalf("rename sheet: %v", err)
			}
		} else if _, err := f.NewSheet(sheet.Name); err != nil {
			tb.Fatalf("create sheet %s: %v", sheet.Name, err)
		}
		for r, row := range sheet.Rows {
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			if err != nil {
				tb.Fatalf("cell name: %v", err)
			}
			if err := f.SetSheetRow(sheet.Name, cell, &row); err != nil {
				tb.Fatalf("write row %d of %s: %v", r, sheet.Name, err)
			}
		}
	}

	path := filepath.Join(dir, name)
	if err := f.SaveAs(path); err != nil {
		tb.Fatalf("save workbook: %v", err)
	}
	return path
}

// FindTable returns the named table of wb, failing the test when it is absent
func FindTable(tb testing.TB, wb *workbook.Workbook, name string) *workbook.Table {
	tb.Helper()
	for _, t := range wb.Tables {
		if t.Name == name {
			return t
		}
	}
	tb.Fatalf("table %q not loaded; have %v", name, wb.SheetNames)
	return nil
}

// FindColumn returns the named column of t, failing the test when it is absent
func FindColumn(tb testing.TB, t *workbook.Table, name string) *workbook.Column {
	tb.Helper()
	for _, c := range t.Columns {
		if c.Name == name {
			return c
		}
	}
	tb.Fatalf("column %q not in table %q", name, t.Name)
	return nil
}

// StaticWorkbookReader serves a prebuilt workbook regardless of path
type StaticWorkbookReader struct {
	Workbook *workbook.Workbook
	Err      error

	mu    sync.Mutex
	paths []string
}

// NewStaticWorkbookReader creates a reader returning wb
func NewStaticWorkbookReader(wb *workbook.Workbook) *StaticWorkbookReader {
	return &StaticWorkbookReader{Workbook: wb}
}

// Load records the path and returns the configured workbook or error
func (r *StaticWorkbookReader) Load(ctx context.Context, path string) (*workbook.Workbook, error) {
	r.mu.Lock()
	r.paths = append(r.paths, path)
	r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	return r.Workbook, nil
}

// Paths returns every path Load was called with
func (r *StaticWorkbookReader) Paths() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.paths...)
}

// InMemoryReportSink keeps written reports instead of touching disk
type InMemoryReportSink struct {
	mu      sync.Mutex
	reports map[string]*report.Report
	order   []string
	Err     error
}

// NewInMemoryReportSink creates an empty sink
func NewInMemoryReportSink() *InMemoryReportSink {
	return &InMemoryReportSink{reports: make(map[string]*report.Report)}
}

// Write stores the report under path
func (s *InMemoryReportSink) Write(ctx context.Context, path string, r *report.Report) error {
	if s.Err != nil {
		return s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.reports[path]; !ok {
		s.order = append(s.order, path)
	}
	s.reports[path] = r
	return nil
}

// Get returns the report stored under path
func (s *InMemoryReportSink) Get(path string) (*report.Report, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.reports[path]
	return r, ok
}

// Paths lists written paths in first-write order
func (s *InMemoryReportSink) Paths() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.order...)
}
