package core

import (
	"context"
	"time"

	"github.com/JonMunkholm/sheetmap/internal/workbook"
)

// SheetSummary counts the records of one retained sheet.
type SheetSummary struct {
	Name    string `json:"name"`
	Records int    `json:"records"`
}

// ImportPreview is a read-only look at an upload: what would be imported and
// which values break their field budgets.
type ImportPreview struct {
	Sheet            string            `json:"sheet"`
	Headers          []string          `json:"headers"`
	Keys             []string          `json:"keys"`
	TotalRecords     int               `json:"totalRecords"`
	Sheets           []SheetSummary    `json:"sheets"`
	Samples          []Record          `json:"samples"`
	ErrorCount       int               `json:"errorCount"`
	ErrorSamples     []ValidationError `json:"errorSamples"`
	ProcessingTimeMs int64             `json:"processingTimeMs"`
}

// Sample limits
const (
	maxRecordSamples = 10
	maxErrorSamples  = 20
)

// BuildPreview summarizes an import result and validates the primary sheet
// against rules.
func BuildPreview(res *ImportResult, rules BudgetRules) *ImportPreview {
	p := &ImportPreview{
		Sheet:        res.Sheet,
		Headers:      res.Headers,
		Keys:         res.Keys,
		TotalRecords: len(res.Records),
	}
	for _, s := range res.Sheets {
		p.Sheets = append(p.Sheets, SheetSummary{Name: s.Sheet, Records: len(s.Records)})
	}

	n := min(len(res.Records), maxRecordSamples)
	p.Samples = res.Records[:n]

	errs := rules.Validate(res.Records)
	p.ErrorCount = len(errs)
	p.ErrorSamples = errs[:min(len(errs), maxErrorSamples)]
	return p
}

// PreviewImport reads an upload like Import and reports a preview instead of
// the full record set. The form's budget rules, if any, are applied.
func (s *Service) PreviewImport(ctx context.Context, src workbook.Source, req ImportRequest) (*ImportPreview, error) {
	start := time.Now()

	res, err := s.Import(ctx, src, req)
	if err != nil {
		return nil, err
	}

	var rules BudgetRules
	if req.FormKey != "" {
		if def, ok := Get(req.FormKey); ok {
			rules = def.Budgets
		}
	}

	p := BuildPreview(res, rules)
	p.ProcessingTimeMs = time.Since(start).Milliseconds()
	return p, nil
}
