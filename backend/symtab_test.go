package backend

import (
	"errors"
	"testing"

	"github.com/wippyai/wasm-aot/wasm"
)

var (
	sigVoid = &wasm.FuncType{}
	sigI32  = &wasm.FuncType{Params: []wasm.ValType{wasm.ValI32}, Results: []wasm.ValType{wasm.ValI32}}
)

func TestSymbolTable_DenseIDs(t *testing.T) {
	st := NewSymbolTable()

	f0, err := st.DeclareFunction("a", LinkageLocal, sigVoid)
	if err != nil {
		t.Fatal(err)
	}
	d0, err := st.DeclareData("t", LinkageLocal, true)
	if err != nil {
		t.Fatal(err)
	}
	f1, err := st.DeclareFunction("b", LinkageExport, sigI32)
	if err != nil {
		t.Fatal(err)
	}

	if !f0.IsFunc() || !f1.IsFunc() || !d0.IsData() {
		t.Errorf("unexpected id kinds: %v %v %v", f0, f1, d0)
	}
	if f0 == f1 {
		t.Error("distinct functions must get distinct ids")
	}
	if f0.String() != "func0" || f1.String() != "func1" || d0.String() != "data0" {
		t.Errorf("unexpected ids: %v %v %v", f0, f1, d0)
	}
	if st.Len() != 3 {
		t.Errorf("expected 3 symbols, got %d", st.Len())
	}

	syms := st.Symbols()
	if syms[0].Name != "a" || syms[1].Name != "t" || syms[2].Name != "b" {
		t.Errorf("symbols not in declaration order: %+v", syms)
	}
}

func TestSymbolTable_Merge(t *testing.T) {
	tests := []struct {
		name    string
		first   Linkage
		second  Linkage
		want    Linkage
		wantErr error
	}{
		{name: "import then import", first: LinkageImport, second: LinkageImport, want: LinkageImport},
		{name: "import then export", first: LinkageImport, second: LinkageExport, want: LinkageExport},
		{name: "local then import", first: LinkageLocal, second: LinkageImport, want: LinkageLocal},
		{name: "local then local", first: LinkageLocal, second: LinkageLocal, wantErr: ErrDuplicateDefinition},
		{name: "export then local", first: LinkageExport, second: LinkageLocal, wantErr: ErrDuplicateDefinition},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := NewSymbolTable()
			id, err := st.DeclareFunction("f", tt.first, sigVoid)
			if err != nil {
				t.Fatal(err)
			}

			again, err := st.DeclareFunction("f", tt.second, sigVoid)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if again != id {
				t.Errorf("redeclaration returned %v, want %v", again, id)
			}
			d, _ := st.Lookup("f")
			if d.Linkage != tt.want {
				t.Errorf("expected linkage %v, got %v", tt.want, d.Linkage)
			}
		})
	}
}

func TestSymbolTable_Incompatible(t *testing.T) {
	st := NewSymbolTable()
	if _, err := st.DeclareFunction("f", LinkageImport, sigVoid); err != nil {
		t.Fatal(err)
	}
	if _, err := st.DeclareData("d", LinkageLocal, true); err != nil {
		t.Fatal(err)
	}

	if _, err := st.DeclareFunction("f", LinkageImport, sigI32); !errors.Is(err, ErrIncompatibleDeclaration) {
		t.Errorf("signature mismatch: expected ErrIncompatibleDeclaration, got %v", err)
	}
	if _, err := st.DeclareData("f", LinkageImport, true); !errors.Is(err, ErrIncompatibleDeclaration) {
		t.Errorf("function as data: expected ErrIncompatibleDeclaration, got %v", err)
	}
	if _, err := st.DeclareFunction("d", LinkageImport, sigVoid); !errors.Is(err, ErrIncompatibleDeclaration) {
		t.Errorf("data as function: expected ErrIncompatibleDeclaration, got %v", err)
	}
	if _, err := st.DeclareData("d", LinkageImport, false); !errors.Is(err, ErrIncompatibleDeclaration) {
		t.Errorf("writability mismatch: expected ErrIncompatibleDeclaration, got %v", err)
	}
	if _, err := st.DeclareFunction("", LinkageLocal, sigVoid); !errors.Is(err, ErrEmptyName) {
		t.Errorf("empty name: expected ErrEmptyName, got %v", err)
	}
}

func TestSymbolTable_DuplicateBeforeIncompatible(t *testing.T) {
	st := NewSymbolTable()
	if _, err := st.DeclareFunction("f", LinkageExport, sigI32); err != nil {
		t.Fatal(err)
	}
	if _, err := st.DeclareData("d", LinkageLocal, true); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		declare func() error
	}{
		{
			name: "function with another signature",
			declare: func() error {
				_, err := st.DeclareFunction("f", LinkageLocal, sigVoid)
				return err
			},
		},
		{
			name: "function as data",
			declare: func() error {
				_, err := st.DeclareData("f", LinkageLocal, true)
				return err
			},
		},
		{
			name: "data with another writability",
			declare: func() error {
				_, err := st.DeclareData("d", LinkageExport, false)
				return err
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.declare()
			if !errors.Is(err, ErrDuplicateDefinition) {
				t.Errorf("expected ErrDuplicateDefinition, got %v", err)
			}
			if errors.Is(err, ErrIncompatibleDeclaration) {
				t.Errorf("duplicate definition also reported as incompatible: %v", err)
			}
		})
	}
}

func TestSymbolTable_Rewind(t *testing.T) {
	st := NewSymbolTable()
	if _, err := st.DeclareFunction("keep", LinkageImport, sigVoid); err != nil {
		t.Fatal(err)
	}

	m := st.Mark()

	if _, err := st.DeclareFunction("keep", LinkageExport, sigVoid); err != nil {
		t.Fatal(err)
	}
	if _, err := st.DeclareFunction("drop", LinkageLocal, sigVoid); err != nil {
		t.Fatal(err)
	}
	if _, err := st.DeclareData("drop_data", LinkageLocal, true); err != nil {
		t.Fatal(err)
	}

	st.Rewind(m)

	if st.Len() != 1 {
		t.Fatalf("expected 1 symbol after rewind, got %d", st.Len())
	}
	d, ok := st.Lookup("keep")
	if !ok || d.Linkage != LinkageImport {
		t.Errorf("expected keep restored to import linkage, got %+v", d)
	}
	if _, ok := st.Lookup("drop"); ok {
		t.Error("drop should be gone after rewind")
	}

	id, err := st.DeclareFunction("again", LinkageLocal, sigVoid)
	if err != nil {
		t.Fatal(err)
	}
	if id.String() != "func1" {
		t.Errorf("ordinals should be reused after rewind, got %v", id)
	}
}

func TestLinkage_String(t *testing.T) {
	if LinkageImport.String() != "import" || LinkageLocal.String() != "local" || LinkageExport.String() != "export" {
		t.Error("unexpected linkage names")
	}
	if LinkageImport.IsDefinition() || !LinkageExport.IsDefinition() {
		t.Error("unexpected IsDefinition")
	}
}
