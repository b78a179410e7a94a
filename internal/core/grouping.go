package core

import (
	"sort"
	"strconv"
	"strings"
)

// Grouping is the outcome of packing detection over a record set.
type Grouping struct {
	// Order lists input positions in output order.
	Order []int
	// Flags[j] reports whether output row j belongs to a class of more than
	// one record.
	Flags []bool
	// Annotations[i] is the flag of input record i.
	Annotations []bool
	// Classes is the number of distinct key tuples seen.
	Classes int
}

// Grouped counts flagged records.
func (g Grouping) Grouped() int {
	n := 0
	for _, f := range g.Annotations {
		if f {
			n++
		}
	}
	return n
}

// Group partitions records by the values at key, flags every record whose
// class has more than one member and computes a stable order sorted by key.
// Records lacking any key field form no class and are never flagged. With an
// empty key the order is the input order and nothing is flagged.
func Group(records []Record, key []string) Grouping {
	g := Grouping{
		Order:       make([]int, len(records)),
		Flags:       make([]bool, len(records)),
		Annotations: make([]bool, len(records)),
	}
	for i := range g.Order {
		g.Order[i] = i
	}
	if len(key) == 0 {
		return g
	}

	// Pass 1: partition by composite key.
	classOf := make([]string, len(records))
	joined := make([]bool, len(records))
	sizes := make(map[string]int)
	for i, rec := range records {
		ck, ok := compositeKey(rec, key)
		if !ok {
			continue
		}
		classOf[i] = ck
		joined[i] = true
		sizes[ck]++
	}
	g.Classes = len(sizes)

	// Pass 2: flag lookup back onto the original positions.
	for i := range records {
		g.Annotations[i] = joined[i] && sizes[classOf[i]] > 1
	}

	g.Order = SortOrder(records, key)
	for j, i := range g.Order {
		g.Flags[j] = g.Annotations[i]
	}
	return g
}

// compositeKey encodes the values at key so that two records share an
// encoding exactly when every value is structurally equal. Each part is
// tagged with its kind and length-prefixed, so no separator can collide.
func compositeKey(rec Record, key []string) (string, bool) {
	var b strings.Builder
	for _, k := range key {
		v, ok := rec.Get(k)
		if !ok || v == nil {
			return "", false
		}
		var tag byte
		var text string
		if f, isNum := numericValue(v); isNum {
			tag, text = 'n', strconv.FormatFloat(f, 'g', -1, 64)
		} else if bv, isBool := v.(bool); isBool {
			tag, text = 'b', strconv.FormatBool(bv)
		} else {
			tag, text = 's', ToText(v)
		}
		b.WriteByte(tag)
		b.WriteString(strconv.Itoa(len(text)))
		b.WriteByte(':')
		b.WriteString(text)
	}
	return b.String(), true
}

// numericValue reports v as a number only when it is stored as one; numeric
// looking strings stay strings so "1" and 1 remain distinct.
func numericValue(v any) (float64, bool) {
	switch v.(type) {
	case string, bool, nil:
		return 0, false
	}
	return ToFloat(v)
}

// SortOrder returns the positions of records stably sorted by the values at
// key. Absent values sort first, then numeric values (including numeric
// text) in numeric order, then other text. Values that compare equal always
// share a composite key, so every class ends up contiguous.
func SortOrder(records []Record, key []string) []int {
	order := make([]int, len(records))
	for i := range order {
		order[i] = i
	}
	if len(key) == 0 {
		return order
	}
	sort.SliceStable(order, func(a, b int) bool {
		ra, rb := records[order[a]], records[order[b]]
		for _, k := range key {
			if c := compareValues(ra.Value(k), rb.Value(k)); c != 0 {
				return c < 0
			}
		}
		return false
	})
	return order
}

func compareValues(a, b any) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}
	fa, okA := ToFloat(a)
	fb, okB := ToFloat(b)
	switch {
	case okA && !okB:
		return -1
	case !okA && okB:
		return 1
	case !okA && !okB:
		return strings.Compare(ToText(a), ToText(b))
	}
	switch {
	case fa < fb:
		return -1
	case fa > fb:
		return 1
	}
	// Same number: stored numbers before numeric text.
	_, storedA := numericValue(a)
	_, storedB := numericValue(b)
	switch {
	case storedA && storedB:
		return 0
	case storedA:
		return -1
	case storedB:
		return 1
	}
	return strings.Compare(ToText(a), ToText(b))
}

// Reorder returns records in the given position order.
func Reorder(records []Record, order []int) []Record {
	out := make([]Record, len(order))
	for j, i := range order {
		out[j] = records[i]
	}
	return out
}
