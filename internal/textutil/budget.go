// Package textutil measures strings against the byte budgets of legacy
// marketplace fields.
//
// Lengths are counted per UTF-16 code unit: 1 byte below U+0080, 2 bytes
// below U+0800 and 3 bytes otherwise. This is not the UTF-8 length for
// characters outside the BMP (a surrogate pair counts 6, UTF-8 needs 4), and
// the difference is kept on purpose because the downstream limits were
// defined with this rule.
package textutil

import "unicode/utf16"

// DefaultFieldBudget is the byte budget of a standard legacy text field.
const DefaultFieldBudget = 50

func unitBytes(u uint16) int {
	switch {
	case u < 0x80:
		return 1
	case u < 0x800:
		return 2
	default:
		return 3
	}
}

// ByteLength returns the legacy byte length of s.
func ByteLength(s string) int {
	n := 0
	for _, u := range utf16.Encode([]rune(s)) {
		n += unitBytes(u)
	}
	return n
}

// ByteTruncationIndex returns the UTF-16 code unit index at which the
// cumulative byte length of s first exceeds maxBytes. When s fits entirely
// the result equals the number of code units in s.
func ByteTruncationIndex(s string, maxBytes int) int {
	units := utf16.Encode([]rune(s))
	total := 0
	for i, u := range units {
		total += unitBytes(u)
		if total > maxBytes {
			return i
		}
	}
	return len(units)
}

// UnitLength returns the number of UTF-16 code units in s.
func UnitLength(s string) int {
	return len(utf16.Encode([]rune(s)))
}

// PrefixUnits returns the prefix of s made of its first n UTF-16 code units.
// A cut that would split a surrogate pair drops the whole pair.
func PrefixUnits(s string, n int) string {
	if n <= 0 {
		return ""
	}
	count := 0
	for i, r := range s {
		w := utf16.RuneLen(r)
		if w < 0 {
			w = 1
		}
		if count+w > n {
			return s[:i]
		}
		count += w
	}
	return s
}

// Budget is the result of checking a string against a byte budget.
type Budget struct {
	Bytes int  `json:"bytes"`
	Max   int  `json:"max"`
	Over  bool `json:"over"`
	// CutAt is the UTF-16 index where the budget is exceeded.
	CutAt int `json:"cutAt"`
	// Fits is the longest prefix of the input inside the budget.
	Fits string `json:"fits"`
}

// CheckBudget measures s against maxBytes without modifying it. Callers use
// the result to warn the user; nothing is truncated here.
func CheckBudget(s string, maxBytes int) Budget {
	n := ByteLength(s)
	cut := ByteTruncationIndex(s, maxBytes)
	return Budget{
		Bytes: n,
		Max:   maxBytes,
		Over:  n > maxBytes,
		CutAt: cut,
		Fits:  PrefixUnits(s, cut),
	}
}
