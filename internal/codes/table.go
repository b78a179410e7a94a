// Package codes maps internal numeric code ids to the legacy codes used in
// exported spreadsheets.
//
// Tables are immutable after construction. A lookup that misses returns the
// empty string so retired or unmapped codes export as blank cells.
package codes

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Lookuper resolves a code value to its export code.
type Lookuper interface {
	Lookup(code any) string
}

// Table is a one-level code table.
type Table struct {
	name    string
	entries map[int]string
}

// NewTable copies entries into an immutable table.
func NewTable(name string, entries map[int]string) *Table {
	t := &Table{name: name, entries: make(map[int]string, len(entries))}
	for k, v := range entries {
		t.entries[k] = v
	}
	return t
}

// Sequence builds a table mapping first, first+1, ... to the given export codes.
func Sequence(name string, first int, exports ...string) *Table {
	m := make(map[int]string, len(exports))
	for i, e := range exports {
		m[first+i] = e
	}
	return NewTable(name, m)
}

// Name returns the table name.
func (t *Table) Name() string { return t.name }

// Len returns the number of entries.
func (t *Table) Len() int { return len(t.entries) }

// Lookup returns the export code for code, or "" when code is unknown or not
// an integer.
func (t *Table) Lookup(code any) string {
	id, ok := ToID(code)
	if !ok {
		return ""
	}
	return t.entries[id]
}

// Reverse returns the internal id for an export code.
func (t *Table) Reverse(export string) (int, bool) {
	for id, e := range t.entries {
		if e == export {
			return id, true
		}
	}
	return 0, false
}

// Entry is one row of a table listing.
type Entry struct {
	ID     int    `json:"id"`
	Export string `json:"export"`
}

// Entries lists the table ordered by id.
func (t *Table) Entries() []Entry {
	out := make([]Entry, 0, len(t.entries))
	for id, e := range t.entries {
		out = append(out, Entry{ID: id, Export: e})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// NestedTable maps (parent, child) code pairs. A child code is only
// meaningful under its parent.
type NestedTable struct {
	name    string
	entries map[int]map[int]string
}

// NewNestedTable copies entries into an immutable two-level table.
func NewNestedTable(name string, entries map[int]map[int]string) *NestedTable {
	t := &NestedTable{name: name, entries: make(map[int]map[int]string, len(entries))}
	for parent, children := range entries {
		m := make(map[int]string, len(children))
		for k, v := range children {
			m[k] = v
		}
		t.entries[parent] = m
	}
	return t
}

// Name returns the table name.
func (t *NestedTable) Name() string { return t.name }

// Lookup returns the export code of child under parent, or "".
func (t *NestedTable) Lookup(parent, child any) string {
	p, ok := ToID(parent)
	if !ok {
		return ""
	}
	c, ok := ToID(child)
	if !ok {
		return ""
	}
	return t.entries[p][c]
}

// Under returns the one-level table of children registered under parent.
func (t *NestedTable) Under(parent int) *Table {
	return NewTable(fmt.Sprintf("%s/%d", t.name, parent), t.entries[parent])
}

// ToID converts the values records carry for code columns into an int id.
// Strings are trimmed and parsed; floats must be integral.
func ToID(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int8:
		return int(n), true
	case int16:
		return int(n), true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case uint:
		return int(n), true
	case uint8:
		return int(n), true
	case uint16:
		return int(n), true
	case uint32:
		return int(n), true
	case uint64:
		return int(n), true
	case float32:
		return floatID(float64(n))
	case float64:
		return floatID(n)
	case string:
		s := strings.TrimSpace(n)
		if s == "" {
			return 0, false
		}
		if i, err := strconv.Atoi(s); err == nil {
			return i, true
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return floatID(f)
		}
		return 0, false
	case fmt.Stringer:
		return ToID(n.String())
	default:
		return 0, false
	}
}

func floatID(f float64) (int, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	return int(f), true
}
