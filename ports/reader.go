package ports

import (
	"context"

	"finprobe/domain/workbook"
)

// WorkbookReaderPort loads a spreadsheet file into the in-memory workbook model.
// Sheets that fail to read are recorded in Workbook.Skipped instead of failing the load.
type WorkbookReaderPort interface {
	Load(ctx context.Context, path string) (*workbook.Workbook, error)
}
