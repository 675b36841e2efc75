package decls

import (
	"github.com/wippyai/wasm-aot/moduleinfo"
	"github.com/wippyai/wasm-aot/wasm"
)

// FunctionDecl describes a declared function. It is computed per query and
// shares the signature with the module data, which must not be modified.
type FunctionDecl struct {
	Signature   *wasm.FuncType
	ImportName  *moduleinfo.ImportName // nil for defined functions
	ExportNames []string
	Name        Name
	Index       uint32
}

// Defined reports whether the function has a body in the module.
func (f FunctionDecl) Defined() bool {
	return f.ImportName == nil
}

// Imported reports whether the function is supplied externally.
func (f FunctionDecl) Imported() bool {
	return !f.Defined()
}

// Exported reports whether the module exports the function.
func (f FunctionDecl) Exported() bool {
	return len(f.ExportNames) > 0
}

// TableDecl describes a declared table. The import pair and export names are
// metadata only: table symbols are always local.
type TableDecl struct {
	Table        *wasm.TableType
	ImportName   *moduleinfo.ImportName // nil for defined tables
	ExportNames  []string
	ContentsName Name
	LenName      Name
	Index        uint32
}

// Defined reports whether the table is declared by the module itself.
func (t TableDecl) Defined() bool {
	return t.ImportName == nil
}

// Imported reports whether the table is imported by the module.
func (t TableDecl) Imported() bool {
	return !t.Defined()
}

// Exported reports whether the module exports the table.
func (t TableDecl) Exported() bool {
	return len(t.ExportNames) > 0
}

func cloneNames(names []string) []string {
	if len(names) == 0 {
		return nil
	}
	out := make([]string, len(names))
	copy(out, names)
	return out
}
