package core

// convert.go holds the value coercions used when projecting records into
// export columns.
//
// Records reach the exporter from JSON request bodies, database rows and
// previous imports, so the same field may arrive as json.Number, float64,
// string or a pgtype value. Every coercion accepts all of them and never fails:
// a value that cannot be converted degrades to 0 (integers) or to the input
// text (dates).

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

// numericRegex validates that a string is a valid numeric format after cleanup.
var numericRegex = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

// TwoDigitYearPivot defines how 2-digit years are interpreted.
// Years that would result in dates more than this many years in the future
// are assumed to be in the previous century.
var TwoDigitYearPivot = 20

var (
	twoDigitYearLayouts = []string{
		"06-01-02", "06.01.02", "06/01/02",
	}
	fourDigitYearLayouts = []string{
		"2006-01-02", "2006/01/02", "2006.01.02", "2006. 1. 2.", "2006. 1. 2",
		"20060102",
		"1/2/2006", "01/02/2006",
	}
	timestampLayouts = []string{
		time.RFC3339Nano,
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		"2006-01-02 15:04:05.999999999",
		"2006-01-02 15:04",
		"2006/01/02 15:04:05",
		"2006.01.02 15:04:05",
		"20060102150405",
	}
)

// ToPgNumeric converts a string to pgtype.Numeric.
// Handles won/dollar signs, thousands separators and accounting format
// (parentheses for negative).
func ToPgNumeric(s string) pgtype.Numeric {
	s = CleanCell(s)
	if s == "" {
		return pgtype.Numeric{Valid: false}
	}

	isNegative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		isNegative = true
		s = strings.TrimSpace(s[1 : len(s)-1])
	}

	for _, sym := range []string{"₩", "￦", "$", "€", ",", "원"} {
		s = strings.ReplaceAll(s, sym, "")
	}
	s = strings.TrimSpace(s)

	if isNegative {
		s = "-" + s
	}

	if !numericRegex.MatchString(s) {
		return pgtype.Numeric{Valid: false}
	}

	var n pgtype.Numeric
	if err := n.Scan(s); err != nil {
		return pgtype.Numeric{Valid: false}
	}
	return n
}

// ToPgDate converts a string to pgtype.Date.
// Supports multiple date formats and handles 2-digit years with pivot.
func ToPgDate(s string) pgtype.Date {
	s = strings.TrimSpace(s)
	if s == "" {
		return pgtype.Date{Valid: false}
	}

	for _, layout := range fourDigitYearLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return pgtype.Date{Time: t, Valid: true}
		}
	}

	pivotYear := time.Now().Year() + TwoDigitYearPivot
	for _, layout := range twoDigitYearLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			if t.Year() > pivotYear {
				t = t.AddDate(-100, 0, 0)
			}
			return pgtype.Date{Time: t, Valid: true}
		}
	}

	return pgtype.Date{Valid: false}
}

// CleanCell removes spreadsheet artifacts from a cell value: surrounding
// whitespace, the ="..." text-forcing formula prefix and surrounding quotes.
func CleanCell(s string) string {
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "=\"") && strings.HasSuffix(s, "\"") {
		s = s[2 : len(s)-1]
	} else if strings.HasPrefix(s, "=") {
		s = s[1:]
	}

	return strings.Trim(s, `"'`)
}

// ToFloat converts a record value to float64.
func ToFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case nil:
		return 0, false
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return 0, false
		}
		return n, true
	case bool:
		if n {
			return 1, true
		}
		return 0, true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case pgtype.Numeric:
		if !n.Valid {
			return 0, false
		}
		f, err := n.Float64Value()
		if err != nil || !f.Valid {
			return 0, false
		}
		return f.Float64, true
	case pgtype.Int8:
		return float64(n.Int64), n.Valid
	case pgtype.Int4:
		return float64(n.Int32), n.Valid
	case pgtype.Float8:
		return n.Float64, n.Valid
	case string:
		num := ToPgNumeric(n)
		if !num.Valid {
			return 0, false
		}
		return ToFloat(num)
	default:
		return ToFloat(fmt.Sprint(v))
	}
}

// ToInt truncates v toward zero. Values that are not numeric yield 0.
func ToInt(v any) int64 {
	f, ok := ToFloat(v)
	if !ok || f > math.MaxInt64 || f < math.MinInt64 {
		return 0
	}
	return int64(math.Trunc(f))
}

// IsZero reports whether v is absent, empty or numerically zero.
func IsZero(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return true
		}
		f, err := strconv.ParseFloat(s, 64)
		return err == nil && f == 0
	case time.Time:
		return x.IsZero()
	case pgtype.Timestamp:
		return !x.Valid || x.Time.IsZero()
	case pgtype.Timestamptz:
		return !x.Valid || x.Time.IsZero()
	case pgtype.Date:
		return !x.Valid || x.Time.IsZero()
	}
	f, ok := ToFloat(v)
	return ok && f == 0
}

// ToTime interprets a timestamp-like value. Numbers are epoch milliseconds,
// as serialized by the back-office JSON API. Zero values report false.
func ToTime(v any) (time.Time, bool) {
	switch x := v.(type) {
	case nil:
		return time.Time{}, false
	case time.Time:
		return x, !x.IsZero()
	case *time.Time:
		if x == nil {
			return time.Time{}, false
		}
		return *x, !x.IsZero()
	case pgtype.Timestamp:
		return x.Time, x.Valid && !x.Time.IsZero()
	case pgtype.Timestamptz:
		return x.Time, x.Valid && !x.Time.IsZero()
	case pgtype.Date:
		return x.Time, x.Valid && !x.Time.IsZero()
	case string:
		return parseTimeString(x)
	}

	f, ok := ToFloat(v)
	if !ok || f == 0 {
		return time.Time{}, false
	}
	return time.UnixMilli(int64(f)), true
}

func parseTimeString(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" || s == "0" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, !t.IsZero()
		}
	}
	if d := ToPgDate(s); d.Valid {
		return d.Time, true
	}
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil && len(s) >= 10 {
		return time.UnixMilli(ms), true
	}
	return time.Time{}, false
}

// FormatDate formats v with a token pattern such as "YYYY-MM-DD HH:mm:ss".
// Absent and zero timestamps format as "", never as the epoch. Text that is
// not a recognizable timestamp is returned unchanged.
func FormatDate(v any, pattern string) string {
	t, ok := ToTime(v)
	if !ok {
		if s, isStr := v.(string); isStr && !IsZero(s) {
			return s
		}
		return ""
	}
	return formatTokens(t, pattern)
}

// dateTokens are matched longest first.
var dateTokens = []string{
	"YYYY", "MMMM", "dddd", "MMM", "ddd", "SSS",
	"YY", "MM", "DD", "HH", "hh", "mm", "ss",
	"M", "D", "H", "h", "m", "s", "A", "a",
}

func formatTokens(t time.Time, pattern string) string {
	var b strings.Builder
	for i := 0; i < len(pattern); {
		if pattern[i] == '[' {
			if end := strings.IndexByte(pattern[i:], ']'); end > 0 {
				b.WriteString(pattern[i+1 : i+end])
				i += end + 1
				continue
			}
		}
		matched := false
		for _, tok := range dateTokens {
			if strings.HasPrefix(pattern[i:], tok) {
				b.WriteString(formatToken(t, tok))
				i += len(tok)
				matched = true
				break
			}
		}
		if !matched {
			b.WriteByte(pattern[i])
			i++
		}
	}
	return b.String()
}

func formatToken(t time.Time, tok string) string {
	switch tok {
	case "YYYY":
		return fmt.Sprintf("%04d", t.Year())
	case "YY":
		return fmt.Sprintf("%02d", t.Year()%100)
	case "MMMM":
		return t.Month().String()
	case "MMM":
		return t.Month().String()[:3]
	case "MM":
		return fmt.Sprintf("%02d", int(t.Month()))
	case "M":
		return strconv.Itoa(int(t.Month()))
	case "DD":
		return fmt.Sprintf("%02d", t.Day())
	case "D":
		return strconv.Itoa(t.Day())
	case "dddd":
		return t.Weekday().String()
	case "ddd":
		return t.Weekday().String()[:3]
	case "HH":
		return fmt.Sprintf("%02d", t.Hour())
	case "H":
		return strconv.Itoa(t.Hour())
	case "hh":
		return fmt.Sprintf("%02d", hour12(t))
	case "h":
		return strconv.Itoa(hour12(t))
	case "mm":
		return fmt.Sprintf("%02d", t.Minute())
	case "m":
		return strconv.Itoa(t.Minute())
	case "ss":
		return fmt.Sprintf("%02d", t.Second())
	case "s":
		return strconv.Itoa(t.Second())
	case "SSS":
		return fmt.Sprintf("%03d", t.Nanosecond()/int(time.Millisecond))
	case "A":
		if t.Hour() < 12 {
			return "AM"
		}
		return "PM"
	case "a":
		if t.Hour() < 12 {
			return "am"
		}
		return "pm"
	}
	return tok
}

func hour12(t time.Time) int {
	h := t.Hour() % 12
	if h == 0 {
		return 12
	}
	return h
}

// ToText renders a projected value as cell text.
func ToText(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case json.Number:
		return x.String()
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case pgtype.Text:
		return x.String
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(v)
	}
}
