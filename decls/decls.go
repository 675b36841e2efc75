// Package decls binds the function and table index spaces of a WebAssembly
// module to the symbols of the native artifact compiled from it.
//
// Declare runs once per compilation. For every function it picks a symbol
// and a linkage:
//
//   - imported functions use the symbol returned by the import Resolver,
//     with import linkage;
//   - unexported defined functions are named guest_func_<index>, with local
//     linkage;
//   - exported defined functions are named guest_func_<first export name>,
//     with export linkage. Further export names are kept as metadata only.
//
// Every table gets two local, writable data symbols, guest_table_<index>
// and guest_table_<index>_len, whether or not the module imports or exports
// it.
//
// Each symbol is registered with the backend exactly once. The resulting
// Decls is read-only and safe for concurrent readers; later compilation
// stages must refer to entities through its names.
package decls

import (
	goerrors "errors"
	"iter"

	"go.uber.org/zap"

	"github.com/wippyai/wasm-aot/backend"
	"github.com/wippyai/wasm-aot/errors"
	"github.com/wippyai/wasm-aot/moduleinfo"
)

// Resolver maps an import pair to the symbol it is bound to.
// *bindings.Bindings implements Resolver.
type Resolver interface {
	Translate(module, field string) (string, error)
}

var errNoResolver = goerrors.New("no import resolver")

type tableNames struct {
	contents Name
	length   Name
}

// Decls holds the module data and the names declared for it.
type Decls struct {
	info  *moduleinfo.Info
	funcs []Name       // indexed by function index
	table []tableNames // indexed by table index
}

// Declare registers every function and table of info with b.
//
// All import bindings are resolved before the first declaration, so an
// unresolved import leaves b untouched. If a declaration fails and b
// implements backend.Rewinder, b is rewound to its state before Declare.
func Declare(info *moduleinfo.Info, b backend.Backend, resolver Resolver) (*Decls, error) {
	if err := checkInfo(info); err != nil {
		return nil, err
	}

	importSymbols, err := resolveImports(info, resolver)
	if err != nil {
		Logger().Debug("import resolution failed", zap.Error(err))
		return nil, err
	}

	rw, rewinds := b.(backend.Rewinder)
	var mark backend.Mark
	if rewinds {
		mark = rw.Mark()
	}

	funcs, err := declareFuncs(info, b, importSymbols)
	var tables []tableNames
	if err == nil {
		tables, err = declareTables(info, b)
	}
	if err != nil {
		Logger().Debug("declaration failed", zap.Error(err), zap.Bool("rewound", rewinds))
		if rewinds {
			rw.Rewind(mark)
		}
		return nil, err
	}

	Logger().Debug("module declared",
		zap.Int("functions", len(funcs)),
		zap.Int("tables", len(tables)))

	return &Decls{info: info, funcs: funcs, table: tables}, nil
}

// checkInfo verifies that every function is either imported or defined.
func checkInfo(info *moduleinfo.Info) error {
	bodies := make([]bool, len(info.Functions))
	for _, body := range info.FunctionBodies {
		if int(body.Index) >= len(info.Functions) {
			return errors.InvalidModule("body for function %d out of range", body.Index)
		}
		if _, imported := info.ImportedFuncs[body.Index]; imported {
			return errors.InvalidModule("imported function %d has a body", body.Index)
		}
		if bodies[body.Index] {
			return errors.InvalidModule("function %d has more than one body", body.Index)
		}
		bodies[body.Index] = true
	}
	for i, hasBody := range bodies {
		if _, imported := info.ImportedFuncs[uint32(i)]; !imported && !hasBody {
			return errors.InvalidModule("defined function %d has no body", i)
		}
	}
	for i := range info.ImportedFuncs {
		if int(i) >= len(info.Functions) {
			return errors.InvalidModule("import for function %d out of range", i)
		}
	}
	for i := range info.ImportedTables {
		if int(i) >= len(info.Tables) {
			return errors.InvalidModule("import for table %d out of range", i)
		}
	}
	return nil
}

// resolveImports returns the bound symbol of each imported function, in a
// slice indexed by function index.
func resolveImports(info *moduleinfo.Info, resolver Resolver) ([]string, error) {
	symbols := make([]string, len(info.Functions))
	for i := range info.Functions {
		ix := uint32(i)
		imp, ok := info.ImportedFunc(ix)
		if !ok {
			continue
		}
		symbol, err := "", errNoResolver
		if resolver != nil {
			symbol, err = resolver.Translate(imp.Module, imp.Field)
		}
		if err != nil {
			e := errors.UnresolvedImport(imp.Module, imp.Field, err)
			e.Value = ix
			return nil, e
		}
		symbols[i] = symbol
	}
	return symbols, nil
}

func declareFuncs(info *moduleinfo.Info, b backend.Backend, importSymbols []string) ([]Name, error) {
	names := make([]Name, 0, len(info.Functions))
	for i := range info.Functions {
		ix := uint32(i)
		sig, ok := info.Signature(ix)
		if !ok {
			return nil, errors.Internal(errors.PhaseDeclare, "function %d has no signature", ix)
		}

		symbol, linkage := funcSymbol(info, ix, importSymbols)
		id, err := b.DeclareFunction(symbol, linkage, sig)
		if err != nil {
			e := errors.DeclarationFailed("function", symbol, err)
			e.Value = ix
			return nil, e
		}

		Logger().Debug("function declared",
			zap.Uint32("index", ix),
			zap.String("symbol", symbol),
			zap.Stringer("linkage", linkage))

		names = append(names, newName(symbol, id))
	}
	return names, nil
}

func funcSymbol(info *moduleinfo.Info, ix uint32, importSymbols []string) (string, backend.Linkage) {
	if _, imported := info.ImportedFunc(ix); imported {
		return importSymbols[ix], backend.LinkageImport
	}
	exports := info.Functions[ix].ExportNames
	if len(exports) == 0 {
		return FuncSymbol(ix), backend.LinkageLocal
	}
	return ExportedFuncSymbol(exports[0]), backend.LinkageExport
}

func declareTables(info *moduleinfo.Info, b backend.Backend) ([]tableNames, error) {
	names := make([]tableNames, 0, len(info.Tables))
	for i := range info.Tables {
		ix := uint32(i)

		contents, err := declareTableData(b, TableSymbol(ix), ix)
		if err != nil {
			return nil, err
		}
		length, err := declareTableData(b, TableLenSymbol(ix), ix)
		if err != nil {
			return nil, err
		}

		Logger().Debug("table declared",
			zap.Uint32("index", ix),
			zap.String("contents", contents.Symbol()),
			zap.String("len", length.Symbol()))

		names = append(names, tableNames{contents: contents, length: length})
	}
	return names, nil
}

func declareTableData(b backend.Backend, symbol string, ix uint32) (Name, error) {
	id, err := b.DeclareData(symbol, backend.LinkageLocal, true)
	if err != nil {
		e := errors.DeclarationFailed("table", symbol, err)
		e.Value = ix
		return Name{}, e
	}
	return newName(symbol, id), nil
}

// Function returns the declaration of a function.
func (d *Decls) Function(index uint32) (FunctionDecl, error) {
	if int(index) >= len(d.funcs) {
		return FunctionDecl{}, errors.OutOfBounds("function", index, len(d.funcs))
	}
	sig, _ := d.info.Signature(index)
	f := FunctionDecl{
		Signature:   sig,
		ExportNames: cloneNames(d.info.Functions[index].ExportNames),
		Name:        d.funcs[index],
		Index:       index,
	}
	if imp, ok := d.info.ImportedFunc(index); ok {
		f.ImportName = &imp
	}
	return f, nil
}

// Table returns the declaration of a table.
func (d *Decls) Table(index uint32) (TableDecl, error) {
	if int(index) >= len(d.table) {
		return TableDecl{}, errors.OutOfBounds("table", index, len(d.table))
	}
	names := d.table[index]
	t := TableDecl{
		Table:        &d.info.Tables[index].Entity,
		ExportNames:  cloneNames(d.info.Tables[index].ExportNames),
		ContentsName: names.contents,
		LenName:      names.length,
		Index:        index,
	}
	if imp, ok := d.info.ImportedTable(index); ok {
		t.ImportName = &imp
	}
	return t, nil
}

// FunctionBodies yields each defined function with its body, in code
// section order. Every call starts a new iteration.
func (d *Decls) FunctionBodies() iter.Seq2[FunctionDecl, moduleinfo.FunctionBody] {
	return func(yield func(FunctionDecl, moduleinfo.FunctionBody) bool) {
		for _, body := range d.info.FunctionBodies {
			f, err := d.Function(body.Index)
			if err != nil {
				// Declare has checked every body index.
				panic(err)
			}
			if !yield(f, body) {
				return
			}
		}
	}
}

// NumFunctions returns the number of declared functions.
func (d *Decls) NumFunctions() int {
	return len(d.funcs)
}

// NumTables returns the number of declared tables.
func (d *Decls) NumTables() int {
	return len(d.table)
}

// TargetConfig returns the compilation target of the module.
func (d *Decls) TargetConfig() moduleinfo.TargetConfig {
	return d.info.Target
}

// Info returns the module data. It must not be modified.
func (d *Decls) Info() *moduleinfo.Info {
	return d.info
}
