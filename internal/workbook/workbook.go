// Package workbook decodes uploaded spreadsheet bytes into an in-memory grid
// of typed cells and encodes export tables back into xlsx files.
//
// OOXML workbooks are handled by excelize. Delimited text (CSV or TSV) is
// accepted as a single-sheet workbook so marketplace exports can be uploaded
// without first being re-saved.
package workbook

import (
	"fmt"
	"strconv"
	"strings"
)

// CellType tags a decoded cell. The zero value marks an absent cell.
type CellType uint8

const (
	CellAbsent CellType = iota
	CellString
	CellNumber
	CellBool
	CellDate
	CellError
	CellFormula
)

var cellTypeNames = [...]string{"absent", "string", "number", "bool", "date", "error", "formula"}

func (t CellType) String() string {
	if int(t) < len(cellTypeNames) {
		return cellTypeNames[t]
	}
	return "CellType(" + strconv.Itoa(int(t)) + ")"
}

// Cell is one decoded cell. Value is the formatted text as the spreadsheet
// displays it; Raw is the stored value (number serials, booleans as 0/1).
type Cell struct {
	Type  CellType
	Value string
	Raw   string
}

// Present reports whether the cell carries a type tag.
func (c Cell) Present() bool {
	return c.Type != CellAbsent
}

// Typed returns the cell's value as a Go value: float64 for plain numbers, bool
// for booleans and the formatted string for everything else. Numbers shown
// with a date or text format keep their formatted text. Absent cells yield nil.
func (c Cell) Typed() any {
	switch c.Type {
	case CellAbsent:
		return nil
	case CellNumber:
		shown := strings.ReplaceAll(strings.TrimSpace(c.Value), ",", "")
		if _, err := strconv.ParseFloat(shown, 64); err != nil {
			return c.Value
		}
		if f, err := strconv.ParseFloat(strings.TrimSpace(c.Raw), 64); err == nil {
			return f
		}
		return c.Value
	case CellBool:
		switch strings.ToUpper(strings.TrimSpace(c.Raw)) {
		case "1", "TRUE":
			return true
		case "0", "FALSE":
			return false
		}
		return c.Value
	default:
		return c.Value
	}
}

// Coord addresses a cell by zero-based row and column.
type Coord struct {
	Row int
	Col int
}

// Sheet is one tab of a workbook. Rows are trimmed to the used range, so
// Rows[0][0] is the cell at Origin. Rows may be ragged; Cell fills the gaps.
type Sheet struct {
	Name   string
	Origin Coord
	Rows   [][]Cell
}

// Cell returns the cell at (row, col) relative to Origin, or an absent cell
// when the position lies outside the decoded grid.
func (s *Sheet) Cell(row, col int) Cell {
	if row < 0 || row >= len(s.Rows) || col < 0 || col >= len(s.Rows[row]) {
		return Cell{}
	}
	return s.Rows[row][col]
}

// Width returns the number of columns in the widest row.
func (s *Sheet) Width() int {
	w := 0
	for _, r := range s.Rows {
		if len(r) > w {
			w = len(r)
		}
	}
	return w
}

// Workbook maps sheet names to sheets in their original tab order.
type Workbook struct {
	names  []string
	sheets map[string]*Sheet
}

// New returns an empty workbook.
func New() *Workbook {
	return &Workbook{sheets: make(map[string]*Sheet)}
}

// Add appends a sheet. Sheet names are unique within a workbook.
func (w *Workbook) Add(s *Sheet) error {
	if _, ok := w.sheets[s.Name]; ok {
		return fmt.Errorf("duplicate sheet name %q", s.Name)
	}
	w.names = append(w.names, s.Name)
	w.sheets[s.Name] = s
	return nil
}

// Names returns sheet names in tab order.
func (w *Workbook) Names() []string {
	out := make([]string, len(w.names))
	copy(out, w.names)
	return out
}

// Sheet returns the named sheet.
func (w *Workbook) Sheet(name string) (*Sheet, bool) {
	s, ok := w.sheets[name]
	return s, ok
}

// Sheets returns every sheet in tab order.
func (w *Workbook) Sheets() []*Sheet {
	out := make([]*Sheet, 0, len(w.names))
	for _, n := range w.names {
		out = append(out, w.sheets[n])
	}
	return out
}

// Len returns the number of sheets.
func (w *Workbook) Len() int {
	return len(w.names)
}

// trim cuts leading empty rows and columns from a decoded grid and reports
// where the used range starts.
func trim(name string, grid [][]Cell) *Sheet {
	s := &Sheet{Name: name}

	firstRow, firstCol := -1, -1
	for r, row := range grid {
		for c, cell := range row {
			if !cell.Present() {
				continue
			}
			if firstRow < 0 {
				firstRow = r
			}
			if firstCol < 0 || c < firstCol {
				firstCol = c
			}
		}
	}
	if firstRow < 0 {
		return s
	}

	s.Origin = Coord{Row: firstRow, Col: firstCol}
	for _, row := range grid[firstRow:] {
		if firstCol < len(row) {
			s.Rows = append(s.Rows, row[firstCol:])
		} else {
			s.Rows = append(s.Rows, nil)
		}
	}

	// Drop trailing empty rows.
	for len(s.Rows) > 0 && !rowPresent(s.Rows[len(s.Rows)-1]) {
		s.Rows = s.Rows[:len(s.Rows)-1]
	}
	return s
}

func rowPresent(row []Cell) bool {
	for _, c := range row {
		if c.Present() {
			return true
		}
	}
	return false
}
