package core

import (
	"bytes"
	"context"
	"errors"
	"io"
	"reflect"
	"testing"
	"time"

	"github.com/JonMunkholm/sheetmap/internal/workbook"
)

// fakeSource serves fixed column data.
type fakeSource struct {
	notify  map[string][]CodeLabel
	malls   []CodeLabel
	forms   map[int64]*OrderForm
	packing map[int64][]string
	err     error
}

func (f *fakeSource) NotifyColumns(_ context.Context, code string) ([]CodeLabel, error) {
	return f.notify[code], f.err
}

func (f *fakeSource) MallColumns(context.Context) ([]CodeLabel, error) {
	return f.malls, f.err
}

func (f *fakeSource) OrderForm(_ context.Context, id int64) (*OrderForm, error) {
	if f.err != nil {
		return nil, f.err
	}
	form, ok := f.forms[id]
	if !ok {
		return nil, fail("export", KindUnknownForm, nil)
	}
	return form, nil
}

func (f *fakeSource) PackingRule(_ context.Context, id int64) ([]string, error) {
	return f.packing[id], f.err
}

func newTestService(src ColumnSource, w Writer) *Service {
	return NewService(ServiceConfig{
		Decode:        workbook.DefaultOptions,
		Writer:        w,
		MaxConcurrent: 2,
		MaxWait:       time.Second,
	}, src)
}

func registerTestForms(t *testing.T) {
	withRegistry(t,
		FormDefinition{
			Info:    FormInfo{Key: "product_stocks", Group: "Products", Label: "재고"},
			Columns: ColumnSpec{{Label: "상품코드", Binding: Field("product_id")}, {Label: "옵션", Binding: Field("option_code")}},
			SortBy:  []string{"product_id", "option_code"},
		},
		FormDefinition{
			Info:    FormInfo{Key: "product_notifies", Group: "Products", Label: "상품정보고시"},
			Dynamic: DynamicNotify,
		},
		FormDefinition{
			Info:    FormInfo{Key: "products", Group: "Products", Label: "상품"},
			Columns: ColumnSpec{{Label: "상품명", Binding: Field("product_name")}},
			Dynamic: DynamicMalls,
		},
		FormDefinition{
			Info:    FormInfo{Key: "linkage_product_names", Group: "Linkage", Label: "연동상품명"},
			Import:  LabelMap{"상품명": "product_name", "상품코드": "id"},
			Budgets: BudgetRules{"product_name": 4},
		},
	)
}

func TestService_ListForms(t *testing.T) {
	registerTestForms(t)
	s := newTestService(nil, &captureWriter{})

	if got := len(s.ListForms()); got != 4 {
		t.Errorf("len(ListForms()) = %d, want 4", got)
	}
	byGroup := s.ListFormsByGroup()
	if len(byGroup["Products"]) != 3 || len(byGroup["Linkage"]) != 1 {
		t.Errorf("ListFormsByGroup() = %v", byGroup)
	}
}

func TestService_Import(t *testing.T) {
	registerTestForms(t)
	s := newTestService(nil, nil)
	data := buildXLSX(t, []string{"Sheet1"}, map[string]map[string]any{
		"Sheet1": {"A1": "상품코드", "B1": "상품명", "C1": "비고", "A2": 7, "B2": "셔츠", "C2": "x"},
	})

	res, err := s.Import(context.Background(), workbook.Bytes(data), ImportRequest{
		FormKey: "linkage_product_names",
		Mapping: LabelMap{"비고": "memo"},
	})
	if err != nil {
		t.Fatalf("Import() error: %v", err)
	}
	if !reflect.DeepEqual(res.Keys, []string{"id", "product_name", "memo"}) {
		t.Errorf("Keys = %v", res.Keys)
	}
	if s.LimiterStatus().Active != 0 {
		t.Error("job slot was not released")
	}
}

func TestService_ImportGrid(t *testing.T) {
	s := newTestService(nil, nil)
	data := buildXLSX(t, []string{"Sheet1"}, map[string]map[string]any{
		"Sheet1": {"A1": "상품코드", "B1": "상품명", "A2": 7, "B2": "셔츠"},
	})

	sheet, rows, err := s.ImportGrid(context.Background(), workbook.Bytes(data))
	if err != nil {
		t.Fatalf("ImportGrid() error: %v", err)
	}
	want := [][]any{{"상품코드", "상품명"}, {float64(7), "셔츠"}}
	if sheet != "Sheet1" || !reflect.DeepEqual(rows, want) {
		t.Errorf("ImportGrid() = %q, %v, want Sheet1, %v", sheet, rows, want)
	}
}

func TestService_ImportUnknownForm(t *testing.T) {
	registerTestForms(t)
	s := newTestService(nil, nil)

	for _, key := range []string{"missing", "product_stocks"} {
		_, err := s.Import(context.Background(), workbook.Bytes(nil), ImportRequest{FormKey: key})
		if !errors.Is(err, ErrUnknownForm) {
			t.Errorf("Import(%q) error = %v, want ErrUnknownForm", key, err)
		}
	}
}

func TestService_ImportReleasesOnFailure(t *testing.T) {
	s := newTestService(nil, nil)
	_, err := s.Import(context.Background(), workbook.Bytes([]byte("PK\x03\x04junk")), ImportRequest{})
	if !errors.Is(err, ErrDecode) {
		t.Errorf("Import() error = %v, want ErrDecode", err)
	}
	if s.LimiterStatus().Active != 0 {
		t.Error("job slot was not released")
	}
}

func TestService_PreviewImport(t *testing.T) {
	registerTestForms(t)
	s := newTestService(nil, nil)
	data := buildXLSX(t, []string{"Sheet1"}, map[string]map[string]any{
		"Sheet1": {"A1": "상품명", "A2": "ab", "A3": "상품이름"},
	})

	p, err := s.PreviewImport(context.Background(), workbook.Bytes(data), ImportRequest{FormKey: "linkage_product_names"})
	if err != nil {
		t.Fatalf("PreviewImport() error: %v", err)
	}
	if p.TotalRecords != 2 || p.ErrorCount != 1 {
		t.Fatalf("preview = %+v", p)
	}
	e := p.ErrorSamples[0]
	if e.Row != 2 || e.Field != "product_name" || e.Bytes != 12 || e.Fits != "상" {
		t.Errorf("error sample = %+v", e)
	}
}

func TestService_Export(t *testing.T) {
	registerTestForms(t)
	cw := &captureWriter{}
	s := newTestService(nil, cw)

	recs := []Record{
		NewRecord("product_id", 2, "option_code", 1),
		NewRecord("product_id", 1, "option_code", 3),
	}
	stats, err := s.Export(context.Background(), io.Discard, "product_stocks", ExportOptions{}, recs)
	if err != nil {
		t.Fatalf("Export() error: %v", err)
	}
	if stats.Filename != "product_stocks.xlsx" || stats.Rows != 2 {
		t.Errorf("stats = %+v", stats)
	}
	if cw.table.Rows[0][0] != 1 {
		t.Errorf("first row = %v, want product 1 first", cw.table.Rows[0])
	}

	stats, err = s.Export(context.Background(), io.Discard, "product_stocks", ExportOptions{Filename: "재고"}, recs)
	if err != nil || stats.Filename != "재고.xlsx" {
		t.Errorf("Export(filename) = %+v, %v", stats, err)
	}
}

func TestService_ExportUnknownForm(t *testing.T) {
	registerTestForms(t)
	s := newTestService(nil, &captureWriter{})

	for _, key := range []string{"missing", "linkage_product_names"} {
		_, err := s.Export(context.Background(), io.Discard, key, ExportOptions{}, nil)
		if !errors.Is(err, ErrUnknownForm) {
			t.Errorf("Export(%q) error = %v, want ErrUnknownForm", key, err)
		}
	}
}

func TestService_FormSpec(t *testing.T) {
	registerTestForms(t)
	src := &fakeSource{
		notify: map[string][]CodeLabel{"01": {{Code: "1", Label: "소재"}, {Code: "2", Label: "색상"}}},
		malls:  []CodeLabel{{Code: "10001", Label: "G마켓"}},
	}
	s := newTestService(src, nil)
	ctx := context.Background()

	notify, _ := Get("product_notifies")
	products, _ := Get("products")

	tests := []struct {
		name string
		def  FormDefinition
		opts ExportOptions
		want int
	}{
		{"notify with items", notify, ExportOptions{AssortCode: "01"}, len(notifyPrefix) + 3},
		{"notify without code", notify, ExportOptions{}, len(notifyPrefix) + 1},
		{"notify unknown code", notify, ExportOptions{AssortCode: "99"}, len(notifyPrefix) + 1},
		{"malls off", products, ExportOptions{}, 1},
		{"malls on", products, ExportOptions{WithMalls: true}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec, err := s.FormSpec(ctx, tt.def, tt.opts)
			if err != nil {
				t.Fatalf("FormSpec() error: %v", err)
			}
			if len(spec) != tt.want {
				t.Errorf("len(spec) = %d, want %d (%v)", len(spec), tt.want, spec.Labels())
			}
		})
	}
}

func TestService_FormSpecErrors(t *testing.T) {
	registerTestForms(t)
	notify, _ := Get("product_notifies")
	ctx := context.Background()

	_, err := newTestService(nil, nil).FormSpec(ctx, notify, ExportOptions{AssortCode: "01"})
	if !errors.Is(err, ErrUnknownForm) {
		t.Errorf("FormSpec(no source) error = %v, want ErrUnknownForm", err)
	}

	_, err = newTestService(&fakeSource{err: errors.New("db down")}, nil).FormSpec(ctx, notify, ExportOptions{AssortCode: "01"})
	if !errors.Is(err, ErrWriteFailed) {
		t.Errorf("FormSpec(source error) error = %v, want ErrWriteFailed", err)
	}
}

func TestService_ExportOrders(t *testing.T) {
	form := testOrderForm()
	form.Packing = 1
	src := &fakeSource{
		forms:   map[int64]*OrderForm{9: form},
		packing: map[int64][]string{1: {"receiver_name", "receiver_address"}},
	}
	cw := &captureWriter{}
	s := newTestService(src, cw)

	stats, err := s.ExportOrders(context.Background(), io.Discard, 9, "", orderRecords())
	if err != nil {
		t.Fatalf("ExportOrders() error: %v", err)
	}
	if stats.Filename != "택배양식.xlsx" || stats.Grouped != 2 || stats.Columns != 4 {
		t.Errorf("stats = %+v", stats)
	}
	if !reflect.DeepEqual(cw.table.Highlight, []bool{true, true, false}) {
		t.Errorf("Highlight = %v", cw.table.Highlight)
	}
}

func TestService_ExportOrdersErrors(t *testing.T) {
	broken := testOrderForm()
	broken.Entries = append(broken.Entries, OrderFormEntry{FieldID: 42})
	src := &fakeSource{forms: map[int64]*OrderForm{1: broken}}
	s := newTestService(src, &captureWriter{})
	ctx := context.Background()

	tests := []struct {
		name string
		s    *Service
		id   int64
	}{
		{"no source", newTestService(nil, nil), 9},
		{"missing form", s, 2},
		{"unknown field", s, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.s.ExportOrders(ctx, io.Discard, tt.id, "", nil)
			if !errors.Is(err, ErrUnknownForm) {
				t.Errorf("ExportOrders() error = %v, want ErrUnknownForm", err)
			}
		})
	}
}

func TestService_ExportSpecXLSX(t *testing.T) {
	s := newTestService(nil, nil)
	var buf bytes.Buffer

	_, err := s.ExportSpec(context.Background(), &buf, ExportRequest{
		Spec:    IdentitySpec([]string{"a", "b"}),
		Records: []Record{NewRecord("a", 1, "b", "x")},
	})
	if err != nil {
		t.Fatalf("ExportSpec() error: %v", err)
	}

	res, err := NewImporter(workbook.DefaultOptions, 0).Import(context.Background(), workbook.Bytes(buf.Bytes()), nil)
	if err != nil {
		t.Fatalf("re-import error: %v", err)
	}
	if !reflect.DeepEqual(res.Keys, []string{"a", "b"}) || len(res.Records) != 1 {
		t.Errorf("re-import = %+v", res)
	}
}

func TestService_Busy(t *testing.T) {
	s := NewService(ServiceConfig{MaxConcurrent: 1, MaxWait: 10 * time.Millisecond}, nil)
	if !s.limiter.TryAcquire() {
		t.Fatal("TryAcquire() failed")
	}
	defer s.limiter.Release()

	_, err := s.ImportHeaders(context.Background(), workbook.Bytes(nil))
	if !errors.Is(err, ErrBusy) {
		t.Errorf("ImportHeaders() error = %v, want ErrBusy", err)
	}
}

func TestClient_LogAttrs(t *testing.T) {
	ctx := WithClient(context.Background(), Client{IP: "10.0.0.1", Origin: "http"})
	got := ClientFrom(ctx).logAttrs()
	want := []any{"origin", "http", "client_ip", "10.0.0.1"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("logAttrs() = %v, want %v", got, want)
	}
	if c := ClientFrom(context.Background()); c != (Client{}) {
		t.Errorf("ClientFrom(empty) = %+v, want zero", c)
	}
}
