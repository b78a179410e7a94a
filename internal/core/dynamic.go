package core

import (
	"fmt"
	"strconv"
)

// CodeLabel is one entry of a data-driven column list: the code identifying
// the column and the label shown in the header.
type CodeLabel struct {
	Code  string `json:"code" yaml:"code"`
	Label string `json:"label" yaml:"label"`
}

// ExtendColumns returns prefix followed by one Field column per pair, keyed
// by keyFor(i, pair) and labelled by pair.Label. Extra coercions are applied
// to every added column. An empty pairs list yields a copy of prefix.
func ExtendColumns(prefix ColumnSpec, pairs []CodeLabel, keyFor func(i int, p CodeLabel) string, cs ...Coercion) ColumnSpec {
	out := make(ColumnSpec, 0, len(prefix)+len(pairs))
	out = append(out, prefix...)
	for i, p := range pairs {
		out = append(out, Column{Label: p.Label, Binding: Field(keyFor(i, p), cs...)})
	}
	return out
}

// NotifyKey names the i-th notify detail field: field1, field2, ...
func NotifyKey(i int, _ CodeLabel) string {
	return "field" + strconv.Itoa(i+1)
}

// MallKey names the per-mall product id field of a mall: mall_product_id_<code>.
func MallKey(_ int, p CodeLabel) string {
	return "mall_product_id_" + p.Code
}

// NotifyColumns extends prefix with the notify detail columns of one
// assortment. The assortment code itself is written as a literal column.
func NotifyColumns(prefix ColumnSpec, assortLabel, assortCode string, items []CodeLabel) ColumnSpec {
	withAssort := make(ColumnSpec, 0, len(prefix)+1)
	withAssort = append(withAssort, prefix...)
	withAssort = append(withAssort, Column{Label: assortLabel, Binding: Literal(assortCode)})
	return ExtendColumns(withAssort, items, NotifyKey, IfNull(""))
}

// MallColumns extends prefix with one product id column per mall.
func MallColumns(prefix ColumnSpec, malls []CodeLabel) ColumnSpec {
	return ExtendColumns(prefix, malls, MallKey, IfNull(""))
}

// OptionCode renders the catalogue option code of a product option, e.g.
// product 1234 option 5 -> "1234-005". Missing parts yield "".
func OptionCode(productID, optionCode any) string {
	if productID == nil || optionCode == nil {
		return ""
	}
	p := ToText(productID)
	if p == "" {
		return ""
	}
	if f, ok := ToFloat(optionCode); ok {
		return fmt.Sprintf("%s-%03d", p, int64(f))
	}
	o := ToText(optionCode)
	if o == "" {
		return ""
	}
	return p + "-" + o
}

// OptionCodeOf binds the option code built from two record fields.
func OptionCodeOf(productKey, optionKey string) Binding {
	return Computed("option_code("+productKey+","+optionKey+")", func(r Record) any {
		return OptionCode(r.Value(productKey), r.Value(optionKey))
	})
}
