package core

import (
	"encoding/json"
	"reflect"
	"testing"
	"time"

	"github.com/JonMunkholm/sheetmap/internal/codes"
)

func TestProject_BindingKinds(t *testing.T) {
	status := codes.NewTable("status", map[int]string{1: "Y", 2: "N"})
	spec := ColumnSpec{
		{Label: "Mall", Binding: Literal("10001")},
		{Label: "Memo", Binding: Blank()},
		{Label: "Name", Binding: Field("name")},
		{Label: "Qty", Binding: Field("qty", Int())},
		{Label: "Date", Binding: Field("reg_date", DateFormat("YYYY-MM-DD"))},
		{Label: "Status", Binding: Field("status", EnumMap("status", status))},
		{Label: "Code", Binding: OptionCodeOf("product_id", "option_code")},
	}
	recs := []Record{
		NewRecord("name", "셔츠", "qty", "12.9", "reg_date", time.Date(2024, 5, 1, 9, 0, 0, 0, time.Local),
			"status", 1, "product_id", 1234, "option_code", 5),
		NewRecord("qty", "abc", "status", 9),
	}

	table := Project(spec, recs)

	if !reflect.DeepEqual(table.Header, []string{"Mall", "Memo", "Name", "Qty", "Date", "Status", "Code"}) {
		t.Errorf("Header = %v", table.Header)
	}
	want := [][]any{
		{"10001", "", "셔츠", int64(12), "2024-05-01", "Y", "1234-005"},
		{"10001", "", "", int64(0), "", "", ""},
	}
	if !reflect.DeepEqual(table.Rows, want) {
		t.Errorf("Rows = %#v\nwant %#v", table.Rows, want)
	}
}

func TestProject_EnumHitAndMiss(t *testing.T) {
	spec := ColumnSpec{{Label: "Code", Binding: Field("code", EnumMap("codes", codes.NewTable("codes", map[int]string{5: "A"})))}}

	table := Project(spec, []Record{NewRecord("code", 5), NewRecord("code", 9)})

	if got := table.Rows[0][0]; got != "A" {
		t.Errorf("code 5 = %#v, want A", got)
	}
	if got := table.Rows[1][0]; got != "" {
		t.Errorf("code 9 = %#v, want empty", got)
	}
}

func TestProject_RoundTrip(t *testing.T) {
	var rec Record
	if err := json.Unmarshal([]byte(`{"id":7,"name":"바지","price":"12,000","active":true}`), &rec); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	table := Project(IdentitySpec(rec.Keys()), []Record{rec})

	if !reflect.DeepEqual(table.Header, rec.Keys()) {
		t.Errorf("Header = %v, want %v", table.Header, rec.Keys())
	}
	for i, k := range rec.Keys() {
		if got := table.Rows[0][i]; got != rec.Value(k) {
			t.Errorf("column %d (%s) = %#v, want %#v", i, k, got, rec.Value(k))
		}
	}
}

func TestProject_DoesNotMutateRecords(t *testing.T) {
	rec := NewRecord("qty", "3")
	Project(ColumnSpec{{Label: "q", Binding: Field("qty", Int())}}, []Record{rec})
	if rec.Value("qty") != "3" {
		t.Errorf("record changed to %#v", rec.Value("qty"))
	}
}

func TestProject_Empty(t *testing.T) {
	table := Project(ColumnSpec{{Label: "a", Binding: Field("a")}}, nil)
	if len(table.Header) != 1 || len(table.Rows) != 0 {
		t.Errorf("Project(nil) = %+v", table)
	}
}

func TestCoercions(t *testing.T) {
	certify := codes.NewNestedTable("certify_item", map[int]map[int]string{
		1: {10: "A10"},
		2: {10: "B10"},
	})

	tests := []struct {
		name string
		b    Binding
		rec  Record
		want any
	}{
		{"zero blank zero", Field("w", ZeroBlank()), NewRecord("w", 0), ""},
		{"zero blank text zero", Field("w", ZeroBlank()), NewRecord("w", "0"), ""},
		{"zero blank keeps value", Field("w", ZeroBlank()), NewRecord("w", 2.5), 2.5},
		{"guarded blank", Field("w", BlankWhenZero("unit")), NewRecord("w", 3, "unit", 0), ""},
		{"guarded keeps", Field("w", BlankWhenZero("unit")), NewRecord("w", 3, "unit", 1), 3},
		{"ifnull absent", Field("m", IfNull("-")), NewRecord(), "-"},
		{"ifnull present", Field("m", IfNull("-")), NewRecord("m", "x"), "x"},
		{"nested under parent", Field("item", NestedEnum(certify, "assort")), NewRecord("assort", 2, "item", 10), "B10"},
		{"nested unknown parent", Field("item", NestedEnum(certify, "assort")), NewRecord("assort", 3, "item", 10), ""},
		{"chained", Field("q", Int(), ZeroBlank()), NewRecord("q", "0.4"), ""},
		{"computed", Computed("sum", func(r Record) any { return ToInt(r.Value("a")) + ToInt(r.Value("b")) }), NewRecord("a", 1, "b", 2), int64(3)},
		{"computed nil", Computed("nil", func(Record) any { return nil }), NewRecord(), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.b.Eval(tt.rec); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Eval() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestBinding_String(t *testing.T) {
	tests := []struct {
		b    Binding
		want string
	}{
		{Literal(3), "literal(3)"},
		{Blank(), "blank"},
		{Field("a"), "field(a)"},
		{Field("d", DateFormat("YYYY")), "field(d|date:YYYY)"},
		{Field("s", EnumMap("sale_status", codes.NewTable("sale_status", nil)), ZeroBlank()), "field(s|enum:sale_status|zeroblank)"},
		{Computed("x", nil), "computed(x)"},
	}
	for _, tt := range tests {
		if got := tt.b.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

// ----------------------------------------------------------------------------
// Dynamic columns
// ----------------------------------------------------------------------------

func TestNotifyColumns(t *testing.T) {
	prefix := ColumnSpec{{Label: "상품코드", Binding: Field("id")}}
	items := []CodeLabel{{Code: "1", Label: "소재"}, {Code: "2", Label: "색상"}}

	spec := NotifyColumns(prefix, "상품정보고시", "07", items)

	if !reflect.DeepEqual(spec.Labels(), []string{"상품코드", "상품정보고시", "소재", "색상"}) {
		t.Fatalf("Labels() = %v", spec.Labels())
	}
	table := Project(spec, []Record{NewRecord("id", 1, "field1", "면")})
	want := []any{1, "07", "면", ""}
	if !reflect.DeepEqual(table.Rows[0], want) {
		t.Errorf("row = %#v, want %#v", table.Rows[0], want)
	}
	if len(prefix) != 1 {
		t.Error("prefix was modified")
	}
}

func TestExtendColumns_NoExtras(t *testing.T) {
	prefix := ColumnSpec{{Label: "a", Binding: Field("a")}}
	spec := ExtendColumns(prefix, nil, NotifyKey)
	if !reflect.DeepEqual(spec.Labels(), []string{"a"}) {
		t.Errorf("Labels() = %v, want [a]", spec.Labels())
	}
}

func TestMallColumns(t *testing.T) {
	spec := MallColumns(nil, []CodeLabel{{Code: "10001", Label: "G마켓"}})
	if len(spec) != 1 || spec[0].Label != "G마켓" || spec[0].Binding.Key != "mall_product_id_10001" {
		t.Errorf("spec = %+v", spec)
	}
}

func TestOptionCode(t *testing.T) {
	tests := []struct {
		product, option any
		want            string
	}{
		{1234, 5, "1234-005"},
		{json.Number("99"), json.Number("12"), "99-012"},
		{"P1", "X", "P1-X"},
		{nil, 5, ""},
		{1234, nil, ""},
	}
	for _, tt := range tests {
		if got := OptionCode(tt.product, tt.option); got != tt.want {
			t.Errorf("OptionCode(%v, %v) = %q, want %q", tt.product, tt.option, got, tt.want)
		}
	}
}
