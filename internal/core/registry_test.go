package core

import (
	"reflect"
	"testing"
)

func withRegistry(t *testing.T, defs ...FormDefinition) {
	t.Helper()
	Clear()
	t.Cleanup(Clear)
	for _, d := range defs {
		Register(d)
	}
}

func TestRegister_DerivesFlags(t *testing.T) {
	withRegistry(t,
		FormDefinition{Info: FormInfo{Key: "stocks", Group: "Products"}, Columns: ColumnSpec{{Label: "id", Binding: Field("id")}}},
		FormDefinition{Info: FormInfo{Key: "invoices", Group: "Orders", Filename: "송장"}, Import: LabelMap{"송장번호": "invoice_no"}},
		FormDefinition{Info: FormInfo{Key: "notifies", Group: "Products"}, Dynamic: DynamicNotify},
	)

	tests := []struct {
		key          string
		export       bool
		importable   bool
		wantFilename string
	}{
		{"stocks", true, false, "stocks"},
		{"invoices", false, true, "송장"},
		{"notifies", true, false, "notifies"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			def, ok := Get(tt.key)
			if !ok {
				t.Fatalf("Get(%q) not found", tt.key)
			}
			if def.Info.Export != tt.export || def.Info.Import != tt.importable {
				t.Errorf("Export, Import = %v, %v, want %v, %v", def.Info.Export, def.Info.Import, tt.export, tt.importable)
			}
			if def.Info.Filename != tt.wantFilename {
				t.Errorf("Filename = %q, want %q", def.Info.Filename, tt.wantFilename)
			}
		})
	}
}

func TestRegister_Panics(t *testing.T) {
	tests := []struct {
		name string
		defs []FormDefinition
	}{
		{"empty key", []FormDefinition{{}}},
		{"duplicate", []FormDefinition{{Info: FormInfo{Key: "a"}}, {Info: FormInfo{Key: "a"}}}},
		{"unlabelled column", []FormDefinition{{Info: FormInfo{Key: "a"}, Columns: ColumnSpec{{Binding: Field("id")}}}}},
		{"import label without key", []FormDefinition{{Info: FormInfo{Key: "a"}, Import: LabelMap{"상품코드": ""}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			Clear()
			t.Cleanup(Clear)
			defer func() {
				if recover() == nil {
					t.Error("Register() did not panic")
				}
			}()
			for _, d := range tt.defs {
				Register(d)
			}
		})
	}
}

func TestRegistry_Listing(t *testing.T) {
	withRegistry(t,
		FormDefinition{Info: FormInfo{Key: "b", Group: "Products"}},
		FormDefinition{Info: FormInfo{Key: "z", Group: "Orders"}},
		FormDefinition{Info: FormInfo{Key: "a", Group: "Products"}},
	)

	var keys []string
	for _, d := range All() {
		keys = append(keys, d.Info.Key)
	}
	if !reflect.DeepEqual(keys, []string{"z", "a", "b"}) {
		t.Errorf("All() keys = %v, want [z a b]", keys)
	}
	if got := Groups(); !reflect.DeepEqual(got, []string{"Orders", "Products"}) {
		t.Errorf("Groups() = %v", got)
	}
	if got := ByGroup("Products"); len(got) != 2 || got[0].Info.Key != "a" {
		t.Errorf("ByGroup(Products) = %v", got)
	}
	if got := Infos(); len(got) != 3 || got[0].Key != "z" {
		t.Errorf("Infos() = %v", got)
	}
	if FormCount() != 3 {
		t.Errorf("FormCount() = %d, want 3", FormCount())
	}
	if _, ok := Get("missing"); ok {
		t.Error("Get(missing) found a form")
	}
}

func TestLookup(t *testing.T) {
	withRegistry(t,
		FormDefinition{Info: FormInfo{Key: "out"}, Columns: ColumnSpec{{Label: "id", Binding: Field("id")}}},
		FormDefinition{Info: FormInfo{Key: "in"}, Import: LabelMap{"번호": "id"}},
	)

	tests := []struct {
		key    string
		export bool
		ok     bool
	}{
		{"out", true, true},
		{"out", false, false},
		{"in", false, true},
		{"in", true, false},
		{"missing", true, false},
	}
	for _, tt := range tests {
		_, err := lookup("test", tt.key, tt.export)
		if (err == nil) != tt.ok {
			t.Errorf("lookup(%q, export=%v) error = %v, want ok=%v", tt.key, tt.export, err, tt.ok)
		}
		if err != nil && KindOf(err) != KindUnknownForm {
			t.Errorf("lookup(%q) kind = %v, want unknown form", tt.key, KindOf(err))
		}
	}
}
