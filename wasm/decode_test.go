package wasm

import (
	"bytes"
	"errors"
	"io"
	"testing"
)

var header = []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}

func sampleModule() *Module {
	tableMax := uint64(16)
	return &Module{
		Types: []FuncType{
			{Params: []ValType{ValI32}, Results: []ValType{ValI32}},
			{},
		},
		Imports: []Import{
			{Module: "env", Name: "foo", Desc: ImportDesc{Kind: KindFunc, TypeIdx: 1}},
			{Module: "env", Name: "mem", Desc: ImportDesc{Kind: KindMemory, Memory: &MemoryType{Limits: Limits{Min: 1}}}},
			{Module: "env", Name: "tbl", Desc: ImportDesc{Kind: KindTable, Table: &TableType{ElemType: byte(ValFuncRef), Limits: Limits{Min: 2}}}},
			{Module: "env", Name: "g", Desc: ImportDesc{Kind: KindGlobal, Global: &GlobalType{ValType: ValI64, Mutable: true}}},
		},
		Funcs: []uint32{0, 1},
		Tables: []TableType{
			{ElemType: byte(ValFuncRef), Limits: Limits{Min: 1, Max: &tableMax}},
		},
		Exports: []Export{
			{Name: "run", Kind: KindFunc, Idx: 1},
			{Name: "main", Kind: KindFunc, Idx: 1},
			{Name: "table", Kind: KindTable, Idx: 1},
		},
		Code: []FuncBody{
			{Locals: []LocalEntry{{Count: 2, ValType: ValI64}}, Code: []byte{0x20, 0x00, OpEnd}},
			{Code: []byte{OpEnd}},
		},
	}
}

func TestParseModule_DecodedSections(t *testing.T) {
	data := sampleModule().Encode()

	m, err := ParseModule(data)
	if err != nil {
		t.Fatalf("ParseModule failed: %v", err)
	}

	if len(m.Types) != 2 {
		t.Fatalf("expected 2 types, got %d", len(m.Types))
	}
	if !m.Types[0].Equal(&FuncType{Params: []ValType{ValI32}, Results: []ValType{ValI32}}) {
		t.Errorf("unexpected type 0: %s", m.Types[0])
	}
	if m.NumImportedFuncs() != 1 {
		t.Errorf("expected 1 imported func, got %d", m.NumImportedFuncs())
	}
	if m.NumImportedTables() != 1 {
		t.Errorf("expected 1 imported table, got %d", m.NumImportedTables())
	}
	if g := m.Imports[3].Desc.Global; g == nil || g.ValType != ValI64 || !g.Mutable {
		t.Errorf("unexpected global import: %+v", g)
	}
	if len(m.Tables) != 1 || m.Tables[0].Limits.Max == nil || *m.Tables[0].Limits.Max != 16 {
		t.Errorf("unexpected tables: %+v", m.Tables)
	}
	if len(m.Exports) != 3 || m.Exports[1].Name != "main" {
		t.Errorf("unexpected exports: %+v", m.Exports)
	}
	if len(m.Skipped) != 0 {
		t.Errorf("expected no skipped sections, got %+v", m.Skipped)
	}
}

func TestParseModule_BodyOffsets(t *testing.T) {
	data := sampleModule().Encode()

	m, err := ParseModule(data)
	if err != nil {
		t.Fatalf("ParseModule failed: %v", err)
	}
	if len(m.Code) != 2 {
		t.Fatalf("expected 2 bodies, got %d", len(m.Code))
	}

	for i, body := range m.Code {
		got := data[body.Offset : body.Offset+len(body.Body)]
		if !bytes.Equal(got, body.Body) {
			t.Errorf("body %d: offset %d does not locate body bytes", i, body.Offset)
		}
		if !bytes.HasSuffix(body.Body, body.Code) {
			t.Errorf("body %d: code is not a suffix of the raw body", i)
		}
	}

	if len(m.Code[0].Locals) != 1 || m.Code[0].Locals[0].Count != 2 {
		t.Errorf("unexpected locals: %+v", m.Code[0].Locals)
	}
}

func TestParseModule_SkipsOtherSections(t *testing.T) {
	data := append([]byte{}, header...)
	data = append(data, 0x00, 0x05, 0x04, 'm', 'e', 't', 'a') // custom "meta"
	data = append(data, 0x05, 0x03, 0x01, 0x00, 0x01)         // memory: 1 page

	m, err := ParseModule(data)
	if err != nil {
		t.Fatalf("ParseModule failed: %v", err)
	}
	if len(m.Skipped) != 2 {
		t.Fatalf("expected 2 skipped sections, got %d", len(m.Skipped))
	}
	if m.Skipped[0].ID != SectionCustom || m.Skipped[0].Size != 5 || m.Skipped[0].Offset != 10 {
		t.Errorf("unexpected custom section header: %+v", m.Skipped[0])
	}
	if m.Skipped[1].ID != SectionMemory || m.Skipped[1].Size != 3 || m.Skipped[1].Offset != 17 {
		t.Errorf("unexpected memory section header: %+v", m.Skipped[1])
	}
}

func TestParseModule_Errors(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		wantErr error
	}{
		{
			name:    "bad magic",
			data:    []byte{0x00, 0x61, 0x73, 0x00, 0x01, 0x00, 0x00, 0x00},
			wantErr: ErrInvalidMagic,
		},
		{
			name:    "bad version",
			data:    []byte{0x00, 0x61, 0x73, 0x6d, 0x02, 0x00, 0x00, 0x00},
			wantErr: ErrInvalidVersion,
		},
		{
			name:    "gc type form",
			data:    append(append([]byte{}, header...), 0x01, 0x02, 0x01, 0x5f),
			wantErr: ErrUnsupported,
		},
		{
			name: "out of order",
			data: append(append([]byte{}, header...), 0x03, 0x01, 0x00, 0x01, 0x01, 0x00),
		},
		{
			name: "truncated section",
			data: append(append([]byte{}, header...), 0x01, 0x10, 0x00),
		},
		{
			name: "unknown section",
			data: append(append([]byte{}, header...), 0x20, 0x00),
		},
		{
			name:    "type count exceeds section",
			data:    append(append([]byte{}, header...), 0x01, 0x05, 0xff, 0xff, 0xff, 0xff, 0x0f),
			wantErr: io.ErrUnexpectedEOF,
		},
		{
			name:    "import count exceeds section",
			data:    append(append([]byte{}, header...), 0x02, 0x05, 0xff, 0xff, 0xff, 0xff, 0x0f),
			wantErr: io.ErrUnexpectedEOF,
		},
		{
			name:    "function count exceeds section",
			data:    append(append([]byte{}, header...), 0x03, 0x05, 0xff, 0xff, 0xff, 0xff, 0x0f),
			wantErr: io.ErrUnexpectedEOF,
		},
		{
			name: "trailing bytes",
			data: append(append([]byte{}, header...), 0x03, 0x02, 0x00, 0x00),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseModule(tt.data)
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestFuncType_Equal(t *testing.T) {
	a := &FuncType{Params: []ValType{ValI32, ValF64}}
	b := &FuncType{Params: []ValType{ValI32, ValF64}}
	c := &FuncType{Params: []ValType{ValI32}, Results: []ValType{ValF64}}

	if !a.Equal(b) {
		t.Error("expected equal signatures")
	}
	if a.Equal(c) {
		t.Error("expected different signatures")
	}
	if a.Equal(nil) {
		t.Error("expected non-nil signature to differ from nil")
	}
	if got := c.String(); got != "(i32) -> (f64)" {
		t.Errorf("unexpected String(): %q", got)
	}
}
