package core

// validation.go checks imported records against the byte budgets of legacy
// marketplace fields.
//
// Validation never rejects an import: the records are returned as read and
// the problems are reported next to them, so the user can fix the sheet or
// accept the truncation the marketplace will apply.

import (
	"fmt"
	"sort"

	"github.com/JonMunkholm/sheetmap/internal/textutil"
)

// ValidationError represents a single validation problem of a field.
type ValidationError struct {
	Row     int    `json:"row"`     // 1-based data row, header excluded
	Field   string `json:"field"`   // Record key
	Value   string `json:"value"`   // The offending value
	Bytes   int    `json:"bytes"`   // Legacy byte length of Value
	Max     int    `json:"max"`     // Budget of the field
	Fits    string `json:"fits"`    // Longest prefix inside the budget
	Message string `json:"message"` // Human-readable message
}

func (e ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("row %d: %s: %s", e.Row, e.Field, e.Message)
	}
	return e.Message
}

// BudgetRules maps record keys to their byte budget.
type BudgetRules map[string]int

// ValidateRecord checks the budgeted fields of one record. row is reported
// back in the errors. Fields are checked in key order so results are stable.
func (b BudgetRules) ValidateRecord(row int, rec Record) []ValidationError {
	if len(b) == 0 {
		return nil
	}
	keys := make([]string, 0, len(b))
	for k := range b {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var errs []ValidationError
	for _, k := range keys {
		v, ok := rec.Get(k)
		if !ok || v == nil {
			continue
		}
		text := ToText(v)
		budget := textutil.CheckBudget(text, b[k])
		if !budget.Over {
			continue
		}
		errs = append(errs, ValidationError{
			Row:     row,
			Field:   k,
			Value:   text,
			Bytes:   budget.Bytes,
			Max:     budget.Max,
			Fits:    budget.Fits,
			Message: fmt.Sprintf("%d bytes exceeds the %d byte limit", budget.Bytes, budget.Max),
		})
	}
	return errs
}

// Validate checks every record and returns all problems in row order.
func (b BudgetRules) Validate(records []Record) []ValidationError {
	var errs []ValidationError
	for i, rec := range records {
		errs = append(errs, b.ValidateRecord(i+1, rec)...)
	}
	return errs
}
