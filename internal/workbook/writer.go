package workbook

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// ErrWrite wraps every failure while encoding an export.
var ErrWrite = errors.New("workbook: write failed")

// Table is a positional export: a header row, data rows of equal width and
// an optional highlight flag per data row.
type Table struct {
	Header    []string
	Rows      [][]any
	Highlight []bool
}

// Highlighted reports whether data row i is flagged.
func (t Table) Highlighted(i int) bool {
	return i < len(t.Highlight) && t.Highlight[i]
}

// XLSXWriter encodes tables as single-sheet xlsx workbooks.
type XLSXWriter struct {
	SheetName      string
	HighlightColor string
}

// DefaultWriter uses the colour bundle-shippable orders are marked with.
var DefaultWriter = XLSXWriter{SheetName: "Sheet1", HighlightColor: "#c7e2f5"}

// Write streams t into w. Rows are written with excelize's stream writer so
// large order exports do not build the whole sheet in memory first.
func (x XLSXWriter) Write(ctx context.Context, w io.Writer, t Table) (err error) {
	f := excelize.NewFile()
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("%w: %v", ErrWrite, cerr)
		}
	}()

	sheet := x.SheetName
	if sheet == "" {
		sheet = DefaultWriter.SheetName
	}
	if sheet != "Sheet1" {
		if err := f.SetSheetName("Sheet1", sheet); err != nil {
			return fmt.Errorf("%w: sheet name %q: %v", ErrWrite, sheet, err)
		}
	}

	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}

	var fillID int
	if len(t.Highlight) > 0 {
		color := x.HighlightColor
		if color == "" {
			color = DefaultWriter.HighlightColor
		}
		fillID, err = f.NewStyle(&excelize.Style{
			Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{color}},
		})
		if err != nil {
			return fmt.Errorf("%w: highlight style: %v", ErrWrite, err)
		}
	}

	header := make([]any, len(t.Header))
	for i, h := range t.Header {
		header[i] = h
	}
	if err := sw.SetRow("A1", header); err != nil {
		return fmt.Errorf("%w: header: %v", ErrWrite, err)
	}

	for i, row := range t.Rows {
		if i%1000 == 0 {
			if err := ctx.Err(); err != nil {
				return fmt.Errorf("%w: %v", ErrWrite, err)
			}
		}
		values := make([]any, len(row))
		for j, v := range row {
			v = cellValue(v)
			if t.Highlighted(i) {
				v = excelize.Cell{StyleID: fillID, Value: v}
			}
			values[j] = v
		}
		ref, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrWrite, err)
		}
		if err := sw.SetRow(ref, values); err != nil {
			return fmt.Errorf("%w: row %d: %v", ErrWrite, i+1, err)
		}
	}

	if err := sw.Flush(); err != nil {
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}
	return nil
}

// cellValue converts values excelize would otherwise write as text. Records
// decoded from JSON carry json.Number, which must stay numeric in the sheet.
func cellValue(v any) any {
	n, ok := v.(json.Number)
	if !ok {
		return v
	}
	if i, err := n.Int64(); err == nil {
		return i
	}
	if f, err := n.Float64(); err == nil {
		return f
	}
	return n.String()
}
