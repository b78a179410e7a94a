package workbook

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Options controls decoding of inputs that are not OOXML workbooks.
type Options struct {
	// CSVSheetName names the sheet produced for delimited text.
	CSVSheetName string

	// LegacyCharset decodes delimited text that is not valid UTF-8.
	// Supported values are "euc-kr" (also covering CP949 exports) and "none".
	LegacyCharset string
}

// DefaultOptions mirrors the server defaults.
var DefaultOptions = Options{CSVSheetName: "Sheet1", LegacyCharset: "euc-kr"}

var (
	zipMagic = []byte("PK\x03\x04")
	oleMagic = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}
)

// Decode parses raw file bytes into a Workbook. Bytes that are neither an
// xlsx workbook nor delimited text yield an error wrapping ErrMalformed.
func Decode(data []byte, opts Options) (*Workbook, error) {
	switch {
	case len(data) == 0:
		return nil, fmt.Errorf("%w: empty file", ErrMalformed)
	case bytes.HasPrefix(data, zipMagic):
		return decodeXLSX(data)
	case bytes.HasPrefix(data, oleMagic):
		// Legacy BIFF (.xls) and encrypted workbooks share the OLE container.
		return nil, fmt.Errorf("%w: legacy or protected workbook", ErrMalformed)
	case looksLikeText(data):
		return decodeDelimited(data, opts)
	default:
		return nil, fmt.Errorf("%w: unrecognised file format", ErrMalformed)
	}
}

func decodeXLSX(data []byte) (*Workbook, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	defer f.Close()

	wb := New()
	for _, name := range f.GetSheetList() {
		grid, err := readSheet(f, name)
		if err != nil {
			return nil, fmt.Errorf("%w: sheet %q: %v", ErrMalformed, name, err)
		}
		if err := wb.Add(trim(name, grid)); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
	}
	return wb, nil
}

// readSheet combines formatted and raw row values with per-cell type tags.
func readSheet(f *excelize.File, name string) ([][]Cell, error) {
	formatted, err := f.GetRows(name)
	if err != nil {
		return nil, err
	}
	raw, err := f.GetRows(name, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, err
	}

	grid := make([][]Cell, len(formatted))
	for r, row := range formatted {
		cells := make([]Cell, len(row))
		for c, v := range row {
			if v == "" {
				continue
			}
			ref, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				return nil, err
			}
			ct, err := f.GetCellType(name, ref)
			if err != nil {
				return nil, err
			}
			rv := v
			if r < len(raw) && c < len(raw[r]) {
				rv = raw[r][c]
			}
			cells[c] = Cell{Type: mapCellType(ct), Value: v, Raw: rv}
		}
		grid[r] = cells
	}
	return grid, nil
}

// mapCellType converts an excelize type attribute. Numeric cells are usually
// written without a type attribute, so an untagged cell holding a value is a
// number.
func mapCellType(ct excelize.CellType) CellType {
	switch ct {
	case excelize.CellTypeBool:
		return CellBool
	case excelize.CellTypeDate:
		return CellDate
	case excelize.CellTypeError:
		return CellError
	case excelize.CellTypeFormula:
		return CellFormula
	case excelize.CellTypeInlineString, excelize.CellTypeSharedString:
		return CellString
	default:
		return CellNumber
	}
}

// looksLikeText rejects payloads with NUL bytes in their first block unless
// they start with a UTF-16 byte order mark.
func looksLikeText(data []byte) bool {
	if bytes.HasPrefix(data, []byte{0xFF, 0xFE}) || bytes.HasPrefix(data, []byte{0xFE, 0xFF}) {
		return true
	}
	head := data
	if len(head) > 4096 {
		head = head[:4096]
	}
	return bytes.IndexByte(head, 0) < 0
}

func textDecoder(data []byte, opts Options) transform.Transformer {
	var fallback *encoding.Decoder
	if !utf8.Valid(data) && strings.EqualFold(opts.LegacyCharset, "euc-kr") {
		fallback = korean.EUCKR.NewDecoder()
	} else {
		fallback = unicode.UTF8.NewDecoder()
	}
	// A byte order mark overrides the fallback (UTF-8, UTF-16LE or UTF-16BE).
	return unicode.BOMOverride(fallback)
}

func decodeDelimited(data []byte, opts Options) (*Workbook, error) {
	text, err := io.ReadAll(transform.NewReader(bytes.NewReader(data), textDecoder(data, opts)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	r := csv.NewReader(bytes.NewReader(text))
	r.Comma = sniffDelimiter(text)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	var grid [][]Cell
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		row := make([]Cell, len(rec))
		for i, v := range rec {
			if v == "" {
				continue
			}
			row[i] = Cell{Type: CellString, Value: v, Raw: v}
		}
		grid = append(grid, row)
	}

	name := opts.CSVSheetName
	if name == "" {
		name = DefaultOptions.CSVSheetName
	}
	wb := New()
	if err := wb.Add(trim(name, grid)); err != nil {
		return nil, err
	}
	return wb, nil
}

// sniffDelimiter picks tab over comma when the first line has more tabs.
func sniffDelimiter(text []byte) rune {
	line := text
	if i := bytes.IndexByte(text, '\n'); i >= 0 {
		line = text[:i]
	}
	if bytes.Count(line, []byte{'\t'}) > bytes.Count(line, []byte{','}) {
		return '\t'
	}
	return ','
}
