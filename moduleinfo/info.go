// Package moduleinfo describes a parsed WebAssembly module in terms of its
// function and table index spaces.
//
// In both index spaces imported entities come first, in import section
// order, followed by the entities declared by the module itself. Every
// function is either imported (it has an import pair and no body) or
// defined (it has a body and zero or more export names).
package moduleinfo

import (
	"fmt"

	"github.com/wippyai/wasm-aot/errors"
	"github.com/wippyai/wasm-aot/wasm"
)

// ImportName is the (module, field) pair naming an import.
type ImportName struct {
	Module string
	Field  string
}

func (n ImportName) String() string {
	return n.Module + "." + n.Field
}

// Exportable pairs an entity with the names it is exported under, in export
// section order.
type Exportable[T any] struct {
	Entity      T
	ExportNames []string
}

// FunctionBody is the raw body of a defined function.
type FunctionBody struct {
	Code   []byte // local declarations followed by instructions
	Offset int    // position of Code within the module binary
	Index  uint32 // function index
}

// Info is the parsed module data consumed by the declaration layer.
// It is not modified after construction.
type Info struct {
	Signatures     []wasm.FuncType
	Functions      []Exportable[uint32] // signature index per function index
	ImportedFuncs  map[uint32]ImportName
	Tables         []Exportable[wasm.TableType]
	ImportedTables map[uint32]ImportName
	FunctionBodies []FunctionBody // code section order
	Target         TargetConfig
}

// Parse decodes a module binary and builds its Info.
func Parse(data []byte, target TargetConfig) (*Info, error) {
	m, err := wasm.ParseModule(data)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseParse, errors.KindInvalidModule, err, "decode module")
	}
	return FromModule(m, target)
}

// FromModule builds the index spaces of a decoded module.
func FromModule(m *wasm.Module, target TargetConfig) (*Info, error) {
	info := &Info{
		Signatures:     m.Types,
		ImportedFuncs:  make(map[uint32]ImportName),
		ImportedTables: make(map[uint32]ImportName),
		Target:         target,
	}

	for i, imp := range m.Imports {
		name := ImportName{Module: imp.Module, Field: imp.Name}
		switch imp.Desc.Kind {
		case wasm.KindFunc:
			if int(imp.Desc.TypeIdx) >= len(m.Types) {
				return nil, errors.InvalidModule("import %d (%s): type index %d out of range", i, name, imp.Desc.TypeIdx)
			}
			info.ImportedFuncs[uint32(len(info.Functions))] = name
			info.Functions = append(info.Functions, Exportable[uint32]{Entity: imp.Desc.TypeIdx})
		case wasm.KindTable:
			if imp.Desc.Table == nil {
				return nil, errors.InvalidModule("import %d (%s): missing table type", i, name)
			}
			info.ImportedTables[uint32(len(info.Tables))] = name
			info.Tables = append(info.Tables, Exportable[wasm.TableType]{Entity: *imp.Desc.Table})
		}
	}

	numImportedFuncs := len(info.Functions)

	for i, typeIdx := range m.Funcs {
		if int(typeIdx) >= len(m.Types) {
			return nil, errors.InvalidModule("function %d: type index %d out of range", numImportedFuncs+i, typeIdx)
		}
		info.Functions = append(info.Functions, Exportable[uint32]{Entity: typeIdx})
	}

	for _, t := range m.Tables {
		info.Tables = append(info.Tables, Exportable[wasm.TableType]{Entity: t})
	}

	for _, exp := range m.Exports {
		switch exp.Kind {
		case wasm.KindFunc:
			if int(exp.Idx) >= len(info.Functions) {
				return nil, errors.InvalidModule("export %q: function index %d out of range", exp.Name, exp.Idx)
			}
			f := &info.Functions[exp.Idx]
			f.ExportNames = append(f.ExportNames, exp.Name)
		case wasm.KindTable:
			if int(exp.Idx) >= len(info.Tables) {
				return nil, errors.InvalidModule("export %q: table index %d out of range", exp.Name, exp.Idx)
			}
			t := &info.Tables[exp.Idx]
			t.ExportNames = append(t.ExportNames, exp.Name)
		}
	}

	if len(m.Code) != len(m.Funcs) {
		return nil, errors.InvalidModule("%d function declarations but %d bodies", len(m.Funcs), len(m.Code))
	}

	info.FunctionBodies = make([]FunctionBody, len(m.Code))
	for i, body := range m.Code {
		code := body.Body
		if code == nil {
			// Modules assembled in memory have no raw body.
			code = body.Code
		}
		info.FunctionBodies[i] = FunctionBody{
			Code:   code,
			Offset: body.Offset,
			Index:  uint32(numImportedFuncs + i),
		}
	}

	return info, nil
}

// NumFunctions returns the size of the function index space.
func (info *Info) NumFunctions() int {
	return len(info.Functions)
}

// NumTables returns the size of the table index space.
func (info *Info) NumTables() int {
	return len(info.Tables)
}

// Signature returns the signature of a function.
func (info *Info) Signature(funcIndex uint32) (*wasm.FuncType, bool) {
	if int(funcIndex) >= len(info.Functions) {
		return nil, false
	}
	sigIndex := info.Functions[funcIndex].Entity
	if int(sigIndex) >= len(info.Signatures) {
		return nil, false
	}
	return &info.Signatures[sigIndex], true
}

// ImportedFunc returns the import pair of an imported function.
func (info *Info) ImportedFunc(funcIndex uint32) (ImportName, bool) {
	name, ok := info.ImportedFuncs[funcIndex]
	return name, ok
}

// ImportedTable returns the import pair of an imported table.
func (info *Info) ImportedTable(tableIndex uint32) (ImportName, bool) {
	name, ok := info.ImportedTables[tableIndex]
	return name, ok
}

// Describe returns a short human-readable summary.
func (info *Info) Describe() string {
	return fmt.Sprintf("%d functions (%d imported), %d tables (%d imported), %d bodies",
		len(info.Functions), len(info.ImportedFuncs),
		len(info.Tables), len(info.ImportedTables),
		len(info.FunctionBodies))
}
