package core

import (
	"context"

	"github.com/JonMunkholm/sheetmap/internal/logging"
	"github.com/JonMunkholm/sheetmap/internal/workbook"
	"github.com/xuri/excelize/v2"
)

// SheetResult holds the records of one retained sheet.
type SheetResult struct {
	Sheet string `json:"sheet"`
	HeaderSet
	Records []Record `json:"records"`
}

// ImportResult is the outcome of a successful import. The top-level fields
// describe the primary sheet, the first retained sheet in tab order.
type ImportResult struct {
	Sheet   string        `json:"sheet"`
	Records []Record      `json:"records"`
	Headers []string      `json:"headers"`
	Keys    []string      `json:"keys"`
	Sheets  []SheetResult `json:"sheets"`
}

// Importer turns uploaded spreadsheet bytes into keyed records.
type Importer struct {
	Decode      workbook.Options
	MaxFileSize int64
}

// NewImporter creates an importer. maxFileSize <= 0 disables the size limit.
func NewImporter(opts workbook.Options, maxFileSize int64) *Importer {
	return &Importer{Decode: opts, MaxFileSize: maxFileSize}
}

// Import reads src, resolves each sheet's header through m and materializes
// the rows below it. Sheets without records are dropped; when none remain the
// result is ErrNoData.
func (im *Importer) Import(ctx context.Context, src workbook.Source, m LabelMap) (*ImportResult, error) {
	wb, err := im.load(ctx, src)
	if err != nil {
		return nil, err
	}

	res, err := ImportWorkbook(wb, m)
	if err != nil {
		return nil, err
	}

	logging.FromContext(ctx).Debug("workbook imported",
		"sheets", wb.Len(),
		"retained", len(res.Sheets),
		"primary", res.Sheet,
		"records", len(res.Records),
	)
	return res, nil
}

// ImportHeaders returns only the header labels of the primary sheet, for
// building a label mapping interactively.
func (im *Importer) ImportHeaders(ctx context.Context, src workbook.Source) (HeaderSet, error) {
	wb, err := im.load(ctx, src)
	if err != nil {
		return HeaderSet{}, err
	}
	for _, s := range wb.Sheets() {
		if h := ResolveHeaders(s, nil); !h.Empty() {
			return h, nil
		}
	}
	return HeaderSet{}, fail("import", KindNoData, nil)
}

// ImportGrid returns the primary sheet as rows of typed values, header row
// included. Absent cells are nil.
func (im *Importer) ImportGrid(ctx context.Context, src workbook.Source) (string, [][]any, error) {
	wb, err := im.load(ctx, src)
	if err != nil {
		return "", nil, err
	}
	for _, s := range wb.Sheets() {
		if len(s.Rows) == 0 {
			continue
		}
		rows := make([][]any, len(s.Rows))
		for r, row := range s.Rows {
			vals := make([]any, len(row))
			for c, cell := range row {
				vals[c] = cell.Typed()
			}
			rows[r] = vals
		}
		return s.Name, rows, nil
	}
	return "", nil, fail("import", KindNoData, nil)
}

func (im *Importer) load(ctx context.Context, src workbook.Source) (*workbook.Workbook, error) {
	data, err := src.ReadAll(ctx, im.MaxFileSize)
	if err != nil {
		return nil, readFailure("import", err)
	}
	wb, err := workbook.Decode(data, im.Decode)
	if err != nil {
		return nil, readFailure("import", err)
	}
	return wb, nil
}

// ImportWorkbook runs header resolution and record materialization over an
// already decoded workbook.
func ImportWorkbook(wb *workbook.Workbook, m LabelMap) (*ImportResult, error) {
	res := &ImportResult{}
	for _, s := range wb.Sheets() {
		h := ResolveHeaders(s, m)
		if h.Empty() {
			continue
		}
		recs := Materialize(s, h.Keys)
		if len(recs) == 0 {
			continue
		}
		res.Sheets = append(res.Sheets, SheetResult{Sheet: s.Name, HeaderSet: h, Records: recs})
	}

	if len(res.Sheets) == 0 {
		return nil, fail("import", KindNoData, nil)
	}

	primary := res.Sheets[0]
	res.Sheet = primary.Sheet
	res.Records = primary.Records
	res.Headers = primary.Headers
	res.Keys = primary.Keys
	return res, nil
}

// Materialize converts the rows below the header into records. Column i is
// stored under keys[i]; columns past the header are ignored, absent cells add
// no field and rows without any present cell are skipped. When two columns
// resolve to the same key the rightmost value wins.
func Materialize(s *workbook.Sheet, keys []string) []Record {
	var out []Record
	for r := 1; r < len(s.Rows); r++ {
		var rec Record
		for c, key := range keys {
			cell := s.Cell(r, c)
			if !cell.Present() {
				continue
			}
			rec.Set(key, cell.Typed())
		}
		if rec.Len() > 0 {
			out = append(out, rec)
		}
	}
	return out
}

// LetterOptions configures ImportLetters.
type LetterOptions struct {
	// SkipRows drops this many leading rows of every sheet (banner and header rows).
	SkipRows int
	// Require keeps only rows with a value in this column letter; empty keeps all.
	Require string
	// SheetKey, when set, stores the sheet name in every record under this key.
	SheetKey string
}

// ImportLetters reads every sheet keyed by spreadsheet column letters (A, B,
// ...) instead of header labels. Marketplace settlement files carry several
// banner rows and one sheet per mall, which this mode is meant for.
func (im *Importer) ImportLetters(ctx context.Context, src workbook.Source, opts LetterOptions) ([]Record, error) {
	wb, err := im.load(ctx, src)
	if err != nil {
		return nil, err
	}

	var out []Record
	for _, s := range wb.Sheets() {
		width := s.Width()
		letters := make([]string, width)
		for c := range letters {
			name, err := excelize.ColumnNumberToName(s.Origin.Col + c + 1)
			if err != nil {
				return nil, fail("import", KindDecode, err)
			}
			letters[c] = name
		}
		for r := opts.SkipRows; r < len(s.Rows); r++ {
			var rec Record
			for c, key := range letters {
				if cell := s.Cell(r, c); cell.Present() {
					rec.Set(key, cell.Typed())
				}
			}
			if rec.Len() == 0 {
				continue
			}
			if opts.Require != "" {
				if _, ok := rec.Get(opts.Require); !ok {
					continue
				}
			}
			if opts.SheetKey != "" {
				rec.Set(opts.SheetKey, s.Name)
			}
			out = append(out, rec)
		}
	}
	if len(out) == 0 {
		return nil, fail("import", KindNoData, nil)
	}
	return out, nil
}
