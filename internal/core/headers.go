package core

import "github.com/JonMunkholm/sheetmap/internal/workbook"

// LabelMap renames header labels to canonical field keys. Labels without an
// entry keep their own text as key, so a nil map is the identity.
type LabelMap map[string]string

// Resolve returns the key for label.
func (m LabelMap) Resolve(label string) string {
	if k, ok := m[label]; ok && k != "" {
		return k
	}
	return label
}

// Invert returns the key -> label map. When several labels share a key the
// lexically smallest label wins so the result is deterministic.
func (m LabelMap) Invert() map[string]string {
	out := make(map[string]string, len(m))
	for label, key := range m {
		if cur, ok := out[key]; !ok || label < cur {
			out[key] = label
		}
	}
	return out
}

// HeaderSet pairs the raw header labels of a sheet with their resolved keys.
// Headers[i] and Keys[i] describe the same column.
type HeaderSet struct {
	Headers []string `json:"headers"`
	Keys    []string `json:"keys"`
}

// Len returns the header width.
func (h HeaderSet) Len() int {
	return len(h.Headers)
}

// Empty reports whether the sheet had no usable header.
func (h HeaderSet) Empty() bool {
	return len(h.Headers) == 0
}

// ResolveHeaders reads the header row of s. The scan runs left to right from
// the first used column and stops at the first cell without a type tag;
// columns after that gap are not part of the header.
func ResolveHeaders(s *workbook.Sheet, m LabelMap) HeaderSet {
	var h HeaderSet
	if s == nil || len(s.Rows) == 0 {
		return h
	}
	for c := 0; ; c++ {
		cell := s.Cell(0, c)
		if !cell.Present() {
			break
		}
		h.Headers = append(h.Headers, cell.Value)
		h.Keys = append(h.Keys, m.Resolve(cell.Value))
	}
	return h
}
