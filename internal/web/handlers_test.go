package web

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"

	"github.com/JonMunkholm/sheetmap/internal/core"
	"github.com/xuri/excelize/v2"
)

func stockSheet(t *testing.T) []byte {
	return buildXLSX(t, map[string]any{
		"A1": "상품코드", "B1": "옵션", "C1": "비고",
		"A2": 12, "B2": 1, "C2": "x",
		"A3": 7, "B3": 2,
	})
}

// ----------------------------------------------------------------------------
// Import
// ----------------------------------------------------------------------------

func TestImport(t *testing.T) {
	s := newTestServer(t, nil)
	req := uploadRequest(t, "/api/import", stockSheet(t), map[string]string{
		"form":    "stocks",
		"mapping": `{"비고":"memo"}`,
	})

	rec := serve(s, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var res core.ImportResult
	decodeBody(t, rec, &res)
	if !reflect.DeepEqual(res.Keys, []string{"product_id", "option_code", "memo"}) {
		t.Errorf("Keys = %v", res.Keys)
	}
	if len(res.Records) != 2 || res.Records[1].Value("memo") != nil {
		t.Errorf("Records = %v", res.Records)
	}
	if got := res.Records[0].Value("memo"); got != "x" {
		t.Errorf("memo = %#v, want x", got)
	}
}

func TestImport_Errors(t *testing.T) {
	s := newTestServer(t, map[string]string{"IMPORT_MAX_FILE_SIZE": "2048"})
	big := bytes.Repeat([]byte("a,b\n"), 1024)

	tests := []struct {
		name   string
		file   []byte
		fields map[string]string
		status int
		code   string
	}{
		{"no file", nil, map[string]string{"form": "stocks"}, http.StatusBadRequest, "FILE004"},
		{"empty file", []byte{}, nil, http.StatusBadRequest, "FILE005"},
		{"bad mapping", stockSheet(t), map[string]string{"mapping": "[1]"}, http.StatusBadRequest, "REQ001"},
		{"unknown form", stockSheet(t), map[string]string{"form": "missing"}, http.StatusNotFound, "EXP002"},
		{"export-only form", stockSheet(t), map[string]string{"form": "notifies"}, http.StatusNotFound, "EXP002"},
		{"not a workbook", []byte("PK\x03\x04junk"), nil, http.StatusUnprocessableEntity, "FILE002"},
		{"too large", big, nil, http.StatusRequestEntityTooLarge, "FILE001"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(s, uploadRequest(t, "/api/import", tt.file, tt.fields))
			assertErrorCode(t, rec, tt.status, tt.code)
		})
	}
}

func TestImport_NotMultipart(t *testing.T) {
	s := newTestServer(t, nil)
	rec := serve(s, jsonRequest(http.MethodPost, "/api/import", `{}`))
	assertErrorCode(t, rec, http.StatusBadRequest, "REQ001")
}

func TestImport_CSV(t *testing.T) {
	s := newTestServer(t, nil)
	csv := []byte("상품명\n셔츠\n바지\n")

	rec := serve(s, uploadRequest(t, "/api/import", csv, map[string]string{"form": "names"}))

	var res core.ImportResult
	decodeBody(t, rec, &res)
	if res.Sheet != "Sheet1" || len(res.Records) != 2 || res.Records[1].Value("product_name") != "바지" {
		t.Errorf("result = %+v", res)
	}
}

func TestImportHeaders(t *testing.T) {
	s := newTestServer(t, nil)
	rec := serve(s, uploadRequest(t, "/api/import/headers", stockSheet(t), nil))

	var h core.HeaderSet
	decodeBody(t, rec, &h)
	want := []string{"상품코드", "옵션", "비고"}
	if !reflect.DeepEqual(h.Headers, want) || !reflect.DeepEqual(h.Keys, want) {
		t.Errorf("headers = %+v, want labels as keys %v", h, want)
	}
}

func TestImportPreview(t *testing.T) {
	s := newTestServer(t, nil)
	sheet := buildXLSX(t, map[string]any{"A1": "상품명", "A2": "ab", "A3": "<b>긴상품명</b>"})

	rec := serve(s, uploadRequest(t, "/api/import/preview", sheet, map[string]string{"form": "names"}))
	var p core.ImportPreview
	decodeBody(t, rec, &p)
	if p.TotalRecords != 2 || p.ErrorCount != 1 || p.ErrorSamples[0].Row != 2 {
		t.Errorf("preview = %+v", p)
	}

	req := uploadRequest(t, "/api/import/preview", sheet, map[string]string{"form": "names"})
	req.Header.Set("HX-Request", "true")
	rec = serve(s, req)
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Fatalf("Content-Type = %q, want text/html", ct)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `class="preview"`) || !strings.Contains(body, "2행 product_name") {
		t.Errorf("fragment = %s", body)
	}
}

func TestImportGrid(t *testing.T) {
	s := newTestServer(t, nil)
	rec := serve(s, uploadRequest(t, "/api/import/grid", stockSheet(t), nil))

	var g GridResponse
	decodeBody(t, rec, &g)
	if g.Sheet != "Sheet1" || len(g.Rows) != 3 {
		t.Fatalf("grid = %+v", g)
	}
	if g.Rows[0][0] != "상품코드" || g.Rows[1][0] != float64(12) || g.Rows[1][2] != "x" {
		t.Errorf("rows = %v", g.Rows)
	}
}

func TestImportLetters(t *testing.T) {
	s := newTestServer(t, nil)
	sheet := buildXLSX(t, map[string]any{
		"A1": "정산내역", "A2": "주문번호", "B2": "금액",
		"A3": "G-1", "B3": 1000,
		"B4": 500,
	})

	rec := serve(s, uploadRequest(t, "/api/import/letters", sheet, map[string]string{
		"skip": "2", "require": "A", "sheetKey": "mall",
	}))
	var body struct {
		Records []core.Record `json:"records"`
	}
	decodeBody(t, rec, &body)
	if len(body.Records) != 1 {
		t.Fatalf("records = %v, want one", body.Records)
	}
	r := body.Records[0]
	if r.Value("A") != "G-1" || r.Value("mall") != "Sheet1" {
		t.Errorf("record = %v", r)
	}

	rec = serve(s, uploadRequest(t, "/api/import/letters", sheet, map[string]string{"skip": "-1"}))
	assertErrorCode(t, rec, http.StatusBadRequest, "REQ001")
}

// ----------------------------------------------------------------------------
// Export
// ----------------------------------------------------------------------------

func openWorkbook(t *testing.T, rec *httptest.ResponseRecorder) [][]string {
	t.Helper()
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	f, err := excelize.OpenReader(rec.Body)
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer f.Close()
	rows, err := f.GetRows("Sheet1")
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	return rows
}

func TestExport(t *testing.T) {
	s := newTestServer(t, nil)
	body := `{"records":[{"product_id":12,"option_code":1},{"product_id":7,"option_code":2}],"filename":"재고"}`

	rec := serve(s, jsonRequest(http.MethodPost, "/api/export/stocks", body))
	if cd := rec.Header().Get("Content-Disposition"); !strings.HasPrefix(cd, "attachment") {
		t.Errorf("Content-Disposition = %q", cd)
	}
	if got := rec.Header().Get("X-Export-Rows"); got != "2" {
		t.Errorf("X-Export-Rows = %q, want 2", got)
	}

	rows := openWorkbook(t, rec)
	want := [][]string{{"상품코드", "옵션"}, {"7", "2"}, {"12", "1"}}
	if !reflect.DeepEqual(rows, want) {
		t.Errorf("rows = %v, want %v", rows, want)
	}
}

func TestExport_Notify(t *testing.T) {
	s := newTestServer(t, nil)
	body := `{"assortCode":"01","records":[{"mall_id":"10001","id":5,"field2":"빨강"}]}`

	rows := openWorkbook(t, serve(s, jsonRequest(http.MethodPost, "/api/export/notifies", body)))
	if len(rows) != 2 || len(rows[0]) != 8 {
		t.Fatalf("rows = %v", rows)
	}
	if rows[1][5] != "01" || rows[1][7] != "빨강" {
		t.Errorf("data row = %v", rows[1])
	}
}

func TestExport_Errors(t *testing.T) {
	s := newTestServer(t, nil)

	tests := []struct {
		name   string
		path   string
		body   string
		status int
		code   string
	}{
		{"unknown form", "/api/export/missing", `{"records":[]}`, http.StatusNotFound, "EXP002"},
		{"import-only form", "/api/export/names", `{"records":[]}`, http.StatusNotFound, "EXP002"},
		{"invalid json", "/api/export/stocks", `{"records":`, http.StatusBadRequest, "REQ001"},
		{"empty body", "/api/export/stocks", ``, http.StatusBadRequest, "REQ001"},
		{"unknown order form", "/api/export/orders/99", `{"records":[]}`, http.StatusNotFound, "EXP002"},
		{"bad order form id", "/api/export/orders/abc", `{"records":[]}`, http.StatusBadRequest, "REQ001"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(s, jsonRequest(http.MethodPost, tt.path, tt.body))
			assertErrorCode(t, rec, tt.status, tt.code)
		})
	}
}

func TestExportOrders(t *testing.T) {
	s := newTestServer(t, nil)
	body := `{"records":[
		{"receiver_name":"Kim","receiver_address":"Seoul"},
		{"receiver_name":"Lee","receiver_address":"Busan"},
		{"receiver_name":"Kim","receiver_address":"Seoul"}
	]}`

	rec := serve(s, jsonRequest(http.MethodPost, "/api/export/orders/9", body))
	if got := rec.Header().Get("X-Export-Grouped"); got != "2" {
		t.Errorf("X-Export-Grouped = %q, want 2", got)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "filename*=") {
		t.Errorf("Content-Disposition = %q, want an encoded filename", cd)
	}

	rows := openWorkbook(t, rec)
	want := [][]string{{"수취인", "주소"}, {"Kim", "Seoul"}, {"Kim", "Seoul"}, {"Lee", "Busan"}}
	if !reflect.DeepEqual(rows, want) {
		t.Errorf("rows = %v, want %v", rows, want)
	}
}

// ----------------------------------------------------------------------------
// Error responses
// ----------------------------------------------------------------------------

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{core.ErrBusy, http.StatusServiceUnavailable},
		{core.ErrFileTooLarge, http.StatusRequestEntityTooLarge},
		{&core.Error{Kind: core.KindNoData, Op: "import"}, http.StatusUnprocessableEntity},
		{core.ErrWriteFailed, http.StatusInternalServerError},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := statusFor(tt.err); got != tt.want {
			t.Errorf("statusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestRespondError_Formats(t *testing.T) {
	err := &core.Error{Kind: core.KindNoData, Op: "import"}

	t.Run("htmx", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/import", nil)
		req.Header.Set("HX-Request", "true")
		rec := httptest.NewRecorder()
		respondError(rec, req, err, http.StatusUnprocessableEntity)

		body := rec.Body.String()
		if !strings.Contains(body, `role="alert"`) || !strings.Contains(body, "IMP001") {
			t.Errorf("fragment = %s", body)
		}
	})

	t.Run("text", func(t *testing.T) {
		rec := httptest.NewRecorder()
		respondError(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil), err, http.StatusUnprocessableEntity)
		if !strings.Contains(rec.Body.String(), "(IMP001)") {
			t.Errorf("body = %s", rec.Body.String())
		}
	})

	t.Run("busy retry after", func(t *testing.T) {
		rec := httptest.NewRecorder()
		respondKindError(rec, httptest.NewRequest(http.MethodGet, "/api/status", nil), core.ErrBusy)
		if rec.Code != http.StatusServiceUnavailable || rec.Header().Get("Retry-After") == "" {
			t.Errorf("status = %d, Retry-After = %q", rec.Code, rec.Header().Get("Retry-After"))
		}
	})
}
