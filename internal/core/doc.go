// Package core provides the tabular import/export mapping engine.
//
// This package contains the domain logic independent of any UI or transport
// layer. It is used by the web handlers, the CLI and tests without
// modification.
//
// # Import
//
// [Importer.Import] reads spreadsheet bytes from a [workbook.Source], decodes
// them and, for every sheet, resolves the header row through a [LabelMap].
// Labels without an entry keep their own text as key. The rows below the
// header become [Record] values keyed positionally by the resolved keys:
//
//	res, err := core.NewImporter(workbook.DefaultOptions, 0).
//	    Import(ctx, workbook.Bytes(data), core.LabelMap{"상품명": "product_name"})
//
// Sheets without records are dropped. A workbook without any record fails
// with [ErrNoData], which callers can tell apart from [ErrDecode].
//
// # Export
//
// A [ColumnSpec] is an ordered list of labelled bindings ([Literal], [Blank],
// [Field] with coercions such as [Int], [DateFormat] and [EnumMap], or
// [Computed]). [Project] evaluates it against records; the [Emitter] adds
// packing detection ([Group]) and hands the table to a [Writer].
//
// # Form Registry
//
// Export layouts and import label maps are registered at init time using
// [Register]:
//
//	core.Register(core.FormDefinition{
//	    Info:    core.FormInfo{Key: "product_stocks", Group: "Products", Label: "재고"},
//	    Columns: core.ColumnSpec{{Label: "상품코드", Binding: core.Field("product_id")}},
//	})
//
// Forms whose columns depend on stored data (notify items, malls, order
// download forms) read them through a [ColumnSource].
//
// # Error Handling
//
// Every failure is a [*Error] with a [Kind]. [MapError] turns it into a
// user message with a support code; unmapped enumeration codes are never
// errors and export as blank cells.
package core
