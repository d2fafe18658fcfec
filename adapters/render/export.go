package render

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"finprobe/domain/report"
	"finprobe/internal/errors"
	"finprobe/internal/logger"
)

// Output formats accepted by FileWriter
const (
	FormatAuto     = "auto"
	FormatText     = "text"
	FormatMarkdown = "markdown"
	FormatHTML     = "html"
)

// Formats lists every accepted format name
var Formats = []string{FormatAuto, FormatText, FormatMarkdown, FormatHTML}

// FileWriter exports a report to disk
type FileWriter struct {
	opts   Options
	format string
}

// NewFileWriter creates a writer. FormatAuto picks the renderer from the file extension.
func NewFileWriter(opts Options, format string) (*FileWriter, error) {
	switch format {
	case "":
		format = FormatAuto
	case FormatAuto, FormatText, FormatMarkdown, FormatHTML:
	default:
		return nil, errors.InvalidInput(fmt.Sprintf("unknown report format %q (want one of %s)", format, strings.Join(Formats, ", ")))
	}
	return &FileWriter{opts: opts, format: format}, nil
}

// RendererFor returns the renderer used for path
func (fw *FileWriter) RendererFor(path string) Renderer {
	format := fw.format
	if format == FormatAuto {
		switch strings.ToLower(filepath.Ext(path)) {
		case ".md", ".markdown":
			format = FormatMarkdown
		case ".html", ".htm":
			format = FormatHTML
		default:
			format = FormatText
		}
	}

	switch format {
	case FormatMarkdown:
		return NewMarkdownRenderer(fw.opts)
	case FormatHTML:
		return NewHTMLRenderer(fw.opts)
	default:
		return NewTextRenderer(fw.opts)
	}
}

// Write renders rep and writes it to path, replacing any existing file
func (fw *FileWriter) Write(ctx context.Context, path string, rep *report.Report) error {
	ctx, span := logger.StartSpan(ctx, "finprobe.export")
	defer span.End()

	var buf bytes.Buffer
	if err := fw.RendererFor(path).Render(&buf, rep); err != nil {
		logger.RecordError(ctx, err)
		return errors.ExportFailed(path, err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			logger.RecordError(ctx, err)
			return errors.ExportFailed(path, err)
		}
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		logger.RecordError(ctx, err)
		return errors.ExportFailed(path, err)
	}

	logger.Info(ctx, "report saved", "path", path, "bytes", buf.Len())
	return nil
}
