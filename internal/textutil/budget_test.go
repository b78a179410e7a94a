package textutil

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestByteLength(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want int
	}{
		{"empty", "", 0},
		{"ascii", "abc", 3},
		{"latin", "é", 2},
		{"boundary 0x7f", "\u007f", 1},
		{"boundary 0x80", "\u0080", 2},
		{"boundary 0x7ff", "\u07ff", 2},
		{"boundary 0x800", "\u0800", 3},
		{"hangul", "상품명", 9},
		{"mixed", "A상b", 5},
		{"astral counts as two units", "😀", 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ByteLength(tt.in); got != tt.want {
				t.Errorf("ByteLength(%q) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestByteLength_AtLeastCharLength(t *testing.T) {
	inputs := []string{"", "plain", "상품", "mix 상품 é", "😀x", strings.Repeat("가", 40)}

	for _, s := range inputs {
		chars := UnitLength(s)
		got := ByteLength(s)
		if got < chars {
			t.Errorf("ByteLength(%q) = %d, less than char length %d", s, got, chars)
		}
		ascii := utf8.RuneCountInString(s) == len(s)
		if (got == chars) != ascii {
			t.Errorf("ByteLength(%q) == char length is %v, want %v", s, got == chars, ascii)
		}
	}
}

func TestByteTruncationIndex(t *testing.T) {
	tests := []struct {
		name string
		in   string
		max  int
		want int
	}{
		{"fits", "abc", 10, 3},
		{"exact fit", "abc", 3, 3},
		{"over by one", "abcd", 3, 3},
		{"zero budget", "abc", 0, 0},
		{"hangul", "가나다라", 7, 2},
		{"hangul exact", "가나다", 9, 3},
		{"mixed", "a가b", 4, 2},
		{"empty", "", 5, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ByteTruncationIndex(tt.in, tt.max); got != tt.want {
				t.Errorf("ByteTruncationIndex(%q, %d) = %d, want %d", tt.in, tt.max, got, tt.want)
			}
		})
	}
}

func TestPrefixUnits(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"abc", 2, "ab"},
		{"가나다", 1, "가"},
		{"a😀b", 2, "a"},
		{"a😀b", 3, "a😀"},
		{"abc", 10, "abc"},
		{"abc", 0, ""},
	}

	for _, tt := range tests {
		if got := PrefixUnits(tt.in, tt.n); got != tt.want {
			t.Errorf("PrefixUnits(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
		}
	}
}

func TestCheckBudget(t *testing.T) {
	name := strings.Repeat("가", 20) // 60 bytes

	b := CheckBudget(name, DefaultFieldBudget)
	if !b.Over {
		t.Fatal("CheckBudget().Over = false, want true")
	}
	if b.Bytes != 60 {
		t.Errorf("Bytes = %d, want 60", b.Bytes)
	}
	if b.CutAt != 16 {
		t.Errorf("CutAt = %d, want 16", b.CutAt)
	}
	if b.Fits != strings.Repeat("가", 16) {
		t.Errorf("Fits = %q, want 16 syllables", b.Fits)
	}

	ok := CheckBudget("short", DefaultFieldBudget)
	if ok.Over || ok.Fits != "short" {
		t.Errorf("CheckBudget(short) = %+v, want fitting result", ok)
	}
}
