package core

import (
	"fmt"
	"strings"

	"github.com/JonMunkholm/sheetmap/internal/codes"
	"github.com/JonMunkholm/sheetmap/internal/workbook"
)

// BindingKind says where a column's values come from.
type BindingKind uint8

const (
	BindLiteral BindingKind = iota
	BindBlank
	BindField
	BindComputed
)

func (k BindingKind) String() string {
	switch k {
	case BindLiteral:
		return "literal"
	case BindBlank:
		return "blank"
	case BindField:
		return "field"
	case BindComputed:
		return "computed"
	}
	return fmt.Sprintf("BindingKind(%d)", uint8(k))
}

// Coercion transforms a field value before it is written. rec is the whole
// source record, for coercions that depend on a sibling field.
type Coercion interface {
	Apply(v any, rec Record) any
	String() string
}

// Binding produces the value of one export column for a record.
type Binding struct {
	Kind      BindingKind
	Value     any              // BindLiteral
	Key       string           // BindField
	Coercions []Coercion       // BindField, applied in order
	Compute   func(Record) any // BindComputed
	Name      string           // BindComputed, for descriptions
}

// Literal binds every row to the same constant.
func Literal(v any) Binding { return Binding{Kind: BindLiteral, Value: v} }

// Blank binds every row to the empty string.
func Blank() Binding { return Binding{Kind: BindBlank} }

// Field binds a record field, optionally coerced.
func Field(key string, cs ...Coercion) Binding {
	return Binding{Kind: BindField, Key: key, Coercions: cs}
}

// Computed binds a function of the whole record. name describes it in
// column listings.
func Computed(name string, fn func(Record) any) Binding {
	return Binding{Kind: BindComputed, Compute: fn, Name: name}
}

// Eval evaluates the binding for rec.
func (b Binding) Eval(rec Record) any {
	switch b.Kind {
	case BindLiteral:
		return b.Value
	case BindBlank:
		return ""
	case BindComputed:
		if b.Compute == nil {
			return ""
		}
		return orBlank(b.Compute(rec))
	default:
		v := rec.Value(b.Key)
		for _, c := range b.Coercions {
			v = c.Apply(v, rec)
		}
		return orBlank(v)
	}
}

// String describes the binding, e.g. "field(sale_status|enum:sale_status)".
func (b Binding) String() string {
	switch b.Kind {
	case BindLiteral:
		return fmt.Sprintf("literal(%v)", b.Value)
	case BindBlank:
		return "blank"
	case BindComputed:
		return "computed(" + b.Name + ")"
	}
	parts := []string{b.Key}
	for _, c := range b.Coercions {
		parts = append(parts, c.String())
	}
	return "field(" + strings.Join(parts, "|") + ")"
}

func orBlank(v any) any {
	if v == nil {
		return ""
	}
	return v
}

// Column is one export column.
type Column struct {
	Label   string
	Binding Binding
}

// ColumnSpec is an ordered export schema. Output columns follow slice order.
type ColumnSpec []Column

// Labels returns the header row.
func (s ColumnSpec) Labels() []string {
	out := make([]string, len(s))
	for i, c := range s {
		out[i] = c.Label
	}
	return out
}

// Project evaluates spec against every record. Rows are positional and
// aligned with spec; records are read, never modified.
func Project(spec ColumnSpec, records []Record) workbook.Table {
	t := workbook.Table{
		Header: spec.Labels(),
		Rows:   make([][]any, len(records)),
	}
	for i, rec := range records {
		row := make([]any, len(spec))
		for j, col := range spec {
			row[j] = col.Binding.Eval(rec)
		}
		t.Rows[i] = row
	}
	return t
}

// IdentitySpec builds a spec with one field column per key, labelled by the
// key itself.
func IdentitySpec(keys []string) ColumnSpec {
	spec := make(ColumnSpec, len(keys))
	for i, k := range keys {
		spec[i] = Column{Label: k, Binding: Field(k)}
	}
	return spec
}

// ---- coercions ----

type intCoercion struct{}

// Int truncates the value to an integer; non-numeric values become 0.
func Int() Coercion { return intCoercion{} }

func (intCoercion) Apply(v any, _ Record) any { return ToInt(v) }
func (intCoercion) String() string            { return "int" }

type dateCoercion struct{ pattern string }

// DateFormat formats a timestamp with a token pattern like "YYYY-MM-DD HH:mm:ss".
func DateFormat(pattern string) Coercion { return dateCoercion{pattern: pattern} }

func (c dateCoercion) Apply(v any, _ Record) any { return FormatDate(v, c.pattern) }
func (c dateCoercion) String() string            { return "date:" + c.pattern }

type enumCoercion struct {
	name  string
	table codes.Lookuper
}

// EnumMap replaces a code id with its export code; unknown ids become "".
func EnumMap(name string, table codes.Lookuper) Coercion {
	return enumCoercion{name: name, table: table}
}

func (c enumCoercion) Apply(v any, _ Record) any { return c.table.Lookup(v) }
func (c enumCoercion) String() string            { return "enum:" + c.name }

type nestedEnumCoercion struct {
	table     *codes.NestedTable
	parentKey string
}

// NestedEnum looks the value up under the code found in parentKey.
func NestedEnum(table *codes.NestedTable, parentKey string) Coercion {
	return nestedEnumCoercion{table: table, parentKey: parentKey}
}

func (c nestedEnumCoercion) Apply(v any, rec Record) any {
	return c.table.Lookup(rec.Value(c.parentKey), v)
}

func (c nestedEnumCoercion) String() string {
	return "enum:" + c.table.Name() + "@" + c.parentKey
}

type zeroBlankCoercion struct{ guard string }

// ZeroBlank turns zero or empty values into "".
func ZeroBlank() Coercion { return zeroBlankCoercion{} }

// BlankWhenZero blanks the value when the sibling field guard is zero or
// absent, e.g. a weight that is only meaningful when its unit is set.
func BlankWhenZero(guard string) Coercion { return zeroBlankCoercion{guard: guard} }

func (c zeroBlankCoercion) Apply(v any, rec Record) any {
	test := v
	if c.guard != "" {
		test = rec.Value(c.guard)
	}
	if IsZero(test) {
		return ""
	}
	return v
}

func (c zeroBlankCoercion) String() string {
	if c.guard != "" {
		return "zeroblank@" + c.guard
	}
	return "zeroblank"
}

type ifNullCoercion struct{ def any }

// IfNull substitutes def for absent values.
func IfNull(def any) Coercion { return ifNullCoercion{def: def} }

func (c ifNullCoercion) Apply(v any, _ Record) any {
	if v == nil {
		return c.def
	}
	return v
}

func (c ifNullCoercion) String() string { return fmt.Sprintf("ifnull:%v", c.def) }
