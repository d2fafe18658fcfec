package ports

import (
	"context"

	"finprobe/domain/report"
)

// ReportWriterPort persists a finished report
type ReportWriterPort interface {
	Write(ctx context.Context, path string, r *report.Report) error
}
