package core

import (
	"context"
	"fmt"
	"io"

	"github.com/JonMunkholm/sheetmap/internal/logging"
	"github.com/JonMunkholm/sheetmap/internal/workbook"
)

// Projector materializes records into a positional table.
type Projector interface {
	Project(spec ColumnSpec, records []Record) (workbook.Table, error)
}

// ProjectorFunc adapts a function to Projector.
type ProjectorFunc func(spec ColumnSpec, records []Record) (workbook.Table, error)

func (f ProjectorFunc) Project(spec ColumnSpec, records []Record) (workbook.Table, error) {
	return f(spec, records)
}

// DefaultProjector evaluates bindings in process.
var DefaultProjector = ProjectorFunc(func(spec ColumnSpec, records []Record) (workbook.Table, error) {
	return Project(spec, records), nil
})

// Writer encodes a projected table.
type Writer interface {
	Write(ctx context.Context, w io.Writer, t workbook.Table) error
}

// ExportRequest describes one export.
type ExportRequest struct {
	Spec    ColumnSpec
	Records []Record
	// GroupKey enables packing detection: rows are sorted by these fields and
	// rows sharing all of them are highlighted.
	GroupKey []string
	// SortBy orders rows without flagging them. Ignored when GroupKey is set.
	SortBy   []string
	Filename string
}

// ExportStats summarizes a finished export.
type ExportStats struct {
	Filename string `json:"filename"`
	Rows     int    `json:"rows"`
	Columns  int    `json:"columns"`
	Grouped  int    `json:"grouped"`
}

// Emitter projects records and hands the result to a Writer.
type Emitter struct {
	Projector Projector
	Writer    Writer
}

// NewEmitter creates an emitter. Nil arguments select the in-process
// projector and the default xlsx writer.
func NewEmitter(p Projector, w Writer) *Emitter {
	if p == nil {
		p = DefaultProjector
	}
	if w == nil {
		w = workbook.DefaultWriter
	}
	return &Emitter{Projector: p, Writer: w}
}

// Emit writes the export for req to w. Grouping runs before projection. Any
// projection or encoding failure is reported as ErrWriteFailed.
func (e *Emitter) Emit(ctx context.Context, w io.Writer, req ExportRequest) (ExportStats, error) {
	records := req.Records
	var flags []bool
	stats := ExportStats{Filename: req.Filename}

	switch {
	case len(req.GroupKey) > 0:
		g := Group(records, req.GroupKey)
		records = Reorder(records, g.Order)
		flags = g.Flags
		stats.Grouped = g.Grouped()
	case len(req.SortBy) > 0:
		records = Reorder(records, SortOrder(records, req.SortBy))
	}

	t, err := e.Projector.Project(req.Spec, records)
	if err != nil {
		return stats, fail("export", KindWriteFailed, fmt.Errorf("project %s: %w", req.Filename, err))
	}
	if len(t.Header) != len(req.Spec) {
		return stats, fail("export", KindWriteFailed,
			fmt.Errorf("project %s: %d columns, want %d", req.Filename, len(t.Header), len(req.Spec)))
	}
	t.Highlight = flags

	if err := e.Writer.Write(ctx, w, t); err != nil {
		return stats, fail("export", KindWriteFailed, fmt.Errorf("write %s: %w", req.Filename, err))
	}

	stats.Rows = len(t.Rows)
	stats.Columns = len(t.Header)
	logging.FromContext(ctx).Debug("export written",
		"file", req.Filename,
		"rows", stats.Rows,
		"columns", stats.Columns,
		"grouped", stats.Grouped,
	)
	return stats, nil
}
