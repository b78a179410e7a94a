package core

import (
	"bytes"
	"context"
	"errors"
	"io"
	"reflect"
	"testing"

	"github.com/JonMunkholm/sheetmap/internal/workbook"
	"github.com/xuri/excelize/v2"
)

// captureWriter records the table it was given.
type captureWriter struct {
	table workbook.Table
	err   error
}

func (c *captureWriter) Write(_ context.Context, _ io.Writer, t workbook.Table) error {
	c.table = t
	return c.err
}

var orderSpec = ColumnSpec{
	{Label: "수취인", Binding: Field("receiver_name")},
	{Label: "주소", Binding: Field("receiver_address")},
	{Label: "상품", Binding: Field("product_name")},
}

func orderRecords() []Record {
	return []Record{
		NewRecord("receiver_name", "Kim", "receiver_address", "Seoul", "product_name", "A"),
		NewRecord("receiver_name", "Lee", "receiver_address", "Busan", "product_name", "B"),
		NewRecord("receiver_name", "Kim", "receiver_address", "Seoul", "product_name", "C"),
	}
}

func TestEmit_Grouped(t *testing.T) {
	cw := &captureWriter{}
	e := NewEmitter(nil, cw)

	stats, err := e.Emit(context.Background(), io.Discard, ExportRequest{
		Spec:     orderSpec,
		Records:  orderRecords(),
		GroupKey: []string{"receiver_name", "receiver_address"},
		Filename: "orders.xlsx",
	})
	if err != nil {
		t.Fatalf("Emit() error: %v", err)
	}

	wantRows := [][]any{
		{"Kim", "Seoul", "A"},
		{"Kim", "Seoul", "C"},
		{"Lee", "Busan", "B"},
	}
	if !reflect.DeepEqual(cw.table.Rows, wantRows) {
		t.Errorf("Rows = %v, want %v", cw.table.Rows, wantRows)
	}
	if !reflect.DeepEqual(cw.table.Highlight, []bool{true, true, false}) {
		t.Errorf("Highlight = %v", cw.table.Highlight)
	}
	want := ExportStats{Filename: "orders.xlsx", Rows: 3, Columns: 3, Grouped: 2}
	if stats != want {
		t.Errorf("stats = %+v, want %+v", stats, want)
	}
}

func TestEmit_SortByDoesNotFlag(t *testing.T) {
	cw := &captureWriter{}
	_, err := NewEmitter(nil, cw).Emit(context.Background(), io.Discard, ExportRequest{
		Spec:    orderSpec,
		Records: orderRecords(),
		SortBy:  []string{"product_name"},
	})
	if err != nil {
		t.Fatalf("Emit() error: %v", err)
	}
	if cw.table.Highlight != nil {
		t.Errorf("Highlight = %v, want nil", cw.table.Highlight)
	}
	if got := cw.table.Rows[2][2]; got != "C" {
		t.Errorf("last product = %v, want C", got)
	}
}

func TestEmit_WriteFailed(t *testing.T) {
	tests := []struct {
		name string
		p    Projector
		w    Writer
	}{
		{
			name: "writer error",
			w:    &captureWriter{err: errors.New("disk full")},
		},
		{
			name: "projector error",
			p: ProjectorFunc(func(ColumnSpec, []Record) (workbook.Table, error) {
				return workbook.Table{}, errors.New("boom")
			}),
			w: &captureWriter{},
		},
		{
			name: "column count mismatch",
			p: ProjectorFunc(func(ColumnSpec, []Record) (workbook.Table, error) {
				return workbook.Table{Header: []string{"only"}}, nil
			}),
			w: &captureWriter{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewEmitter(tt.p, tt.w).Emit(context.Background(), io.Discard, ExportRequest{
				Spec:    orderSpec,
				Records: orderRecords(),
			})
			if !errors.Is(err, ErrWriteFailed) {
				t.Errorf("Emit() error = %v, want ErrWriteFailed", err)
			}
		})
	}
}

func TestEmit_XLSX(t *testing.T) {
	var buf bytes.Buffer
	_, err := NewEmitter(nil, nil).Emit(context.Background(), &buf, ExportRequest{
		Spec:     orderSpec,
		Records:  orderRecords(),
		GroupKey: []string{"receiver_name"},
	})
	if err != nil {
		t.Fatalf("Emit() error: %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("Sheet1")
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(rows) != 4 || rows[0][0] != "수취인" || rows[3][0] != "Lee" {
		t.Fatalf("rows = %v", rows)
	}

	styled, err := f.GetCellStyle("Sheet1", "A2")
	if err != nil {
		t.Fatalf("GetCellStyle: %v", err)
	}
	plain, err := f.GetCellStyle("Sheet1", "A4")
	if err != nil {
		t.Fatalf("GetCellStyle: %v", err)
	}
	if styled == 0 || plain != 0 {
		t.Errorf("styles A2=%d A4=%d, want highlighted A2 only", styled, plain)
	}
}

func TestEmit_EmptyRecords(t *testing.T) {
	cw := &captureWriter{}
	stats, err := NewEmitter(nil, cw).Emit(context.Background(), io.Discard, ExportRequest{Spec: orderSpec})
	if err != nil {
		t.Fatalf("Emit() error: %v", err)
	}
	if stats.Rows != 0 || len(cw.table.Header) != 3 {
		t.Errorf("stats = %+v, header = %v", stats, cw.table.Header)
	}
}
