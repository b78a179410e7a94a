package core

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/JonMunkholm/sheetmap/internal/codes"
)

// Order form field names with special meaning.
const (
	FieldBlank   = "blank"
	FieldComment = "comment"
)

// OrderFormEntry is one column of a stored order download form. Field is the
// id of an entry in the field catalogue; it is stored as text or number.
type OrderFormEntry struct {
	Field json.RawMessage `json:"field" yaml:"-"`
	Title string          `json:"title" yaml:"title"`
	Text  string          `json:"text,omitempty" yaml:"text,omitempty"`

	// FieldID is the parsed catalogue id.
	FieldID int `json:"-" yaml:"field"`
}

// OrderForm is a user-defined order export layout.
type OrderForm struct {
	ID      int64            `json:"id" yaml:"id"`
	Name    string           `json:"name" yaml:"name"`
	Packing int64            `json:"packing" yaml:"packing"`
	Entries []OrderFormEntry `json:"entries" yaml:"entries"`
	// Catalogue maps field ids to record keys.
	Catalogue map[int]string `json:"-" yaml:"-"`
}

// ParseOrderFormEntries decodes the stored field list of an order form.
func ParseOrderFormEntries(data []byte) ([]OrderFormEntry, error) {
	var entries []OrderFormEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("order form entries: %w", err)
	}
	for i := range entries {
		raw := entries[i].Field
		var v any
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.UseNumber()
		if err := dec.Decode(&v); err != nil {
			return nil, fmt.Errorf("order form entry %d: field: %w", i, err)
		}
		id, ok := codes.ToID(v)
		if !ok {
			return nil, fmt.Errorf("order form entry %d: field %s is not an id", i, raw)
		}
		entries[i].FieldID = id
	}
	return entries, nil
}

// Compile turns the form into a column spec. Each entry becomes a column
// titled by the entry; blank entries write nothing and comment entries write
// their text on every row.
func (f *OrderForm) Compile() (ColumnSpec, error) {
	spec := make(ColumnSpec, 0, len(f.Entries))
	for i, e := range f.Entries {
		name, ok := f.Catalogue[e.FieldID]
		if !ok || name == "" {
			return nil, fmt.Errorf("order form %d entry %d: unknown field %d", f.ID, i, e.FieldID)
		}
		var b Binding
		switch name {
		case FieldBlank:
			b = Blank()
		case FieldComment:
			b = Literal(e.Text)
		default:
			b = Field(name)
		}
		spec = append(spec, Column{Label: e.Title, Binding: b})
	}
	return spec, nil
}
