package forms

import (
	"github.com/JonMunkholm/sheetmap/internal/core"
)

// stampFormat is how back-office timestamps are written.
const stampFormat = "YYYY-MM-DD HH:mm:ss"

// importLabels builds the label map that reads a form's own export back in:
// each field column's label maps to its key. Literal, blank and computed
// columns are skipped.
func importLabels(spec core.ColumnSpec) core.LabelMap {
	m := make(core.LabelMap, len(spec))
	for _, c := range spec {
		if c.Binding.Kind == core.BindField {
			m[c.Label] = c.Binding.Key
		}
	}
	return m
}

// col is shorthand for a field column.
func col(label, key string, cs ...core.Coercion) core.Column {
	return core.Column{Label: label, Binding: core.Field(key, cs...)}
}

// optionCodeCol writes "{product}-{option:%03d}".
func optionCodeCol(label, productKey, optionKey string) core.Column {
	return core.Column{Label: label, Binding: core.OptionCodeOf(productKey, optionKey)}
}

// intDiff writes the integer difference of two fields.
func intDiff(label, a, b string) core.Column {
	return core.Column{
		Label: label,
		Binding: core.Computed(a+"-"+b, func(r core.Record) any {
			return core.ToInt(r.Value(a)) - core.ToInt(r.Value(b))
		}),
	}
}

// mallOptionName writes a marketplace option label: "name:item", or the item
// alone when the option has no name.
func mallOptionName(label, nameKey, itemKey string) core.Column {
	return core.Column{
		Label: label,
		Binding: core.Computed("mall_option("+nameKey+","+itemKey+")", func(r core.Record) any {
			name := core.ToText(r.Value(nameKey))
			item := core.ToText(r.Value(itemKey))
			switch {
			case name == "":
				return item
			case item == "":
				return name
			}
			return name + ":" + item
		}),
	}
}
