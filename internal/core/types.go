package core

import (
	"context"
)

// DynamicKind selects a data-driven column set appended to a form's columns
// at export time.
type DynamicKind uint8

const (
	DynamicNone DynamicKind = iota
	// DynamicNotify appends one column per notify item of an assortment.
	DynamicNotify
	// DynamicMalls appends one product id column per mall, on request.
	DynamicMalls
)

func (d DynamicKind) String() string {
	switch d {
	case DynamicNotify:
		return "notify"
	case DynamicMalls:
		return "malls"
	}
	return "none"
}

// FormInfo contains display information about a form.
type FormInfo struct {
	Key      string `json:"key"`      // Unique identifier: "product_stocks"
	Group    string `json:"group"`    // Menu section: "Products", "Orders"
	Label    string `json:"label"`    // Display name
	Filename string `json:"filename"` // Download name without extension
	Export   bool   `json:"export"`   // Has an export column spec
	Import   bool   `json:"import"`   // Has an import label map
}

// FormDefinition contains everything needed to export or import one form.
type FormDefinition struct {
	Info    FormInfo
	Columns ColumnSpec
	// Import maps sheet header labels to record keys for uploads of this form.
	Import LabelMap
	// Budgets limits the legacy byte length of imported fields.
	Budgets BudgetRules
	// GroupKey enables packing detection on export.
	GroupKey []string
	// SortBy orders exported rows when no GroupKey is set.
	SortBy  []string
	Dynamic DynamicKind
	// DynamicLabel heads the literal assortment column of notify exports.
	DynamicLabel string
}

// ColumnSource supplies the data-driven parts of exports: notify items,
// malls, stored order forms and packing rules.
type ColumnSource interface {
	NotifyColumns(ctx context.Context, assortCode string) ([]CodeLabel, error)
	MallColumns(ctx context.Context) ([]CodeLabel, error)
	OrderForm(ctx context.Context, id int64) (*OrderForm, error)
	PackingRule(ctx context.Context, id int64) ([]string, error)
}

// ExportOptions carries the caller-selected parts of a form export.
type ExportOptions struct {
	// AssortCode selects the notify column set for DynamicNotify forms.
	AssortCode string `json:"assortCode"`
	// WithMalls appends per-mall product id columns for DynamicMalls forms.
	WithMalls bool `json:"withMalls"`
	// Filename overrides the form's download name.
	Filename string `json:"filename"`
}
