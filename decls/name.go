package decls

import (
	"strconv"

	"github.com/wippyai/wasm-aot/backend"
)

// Symbol prefixes of entities defined by the module. Linking and loading
// stages rely on these names.
const (
	funcSymbolPrefix  = "guest_func_"
	tableSymbolPrefix = "guest_table_"
	tableLenSuffix    = "_len"
)

// Name is the identity of a declared entity in the emitted artifact: its
// symbol and the ID the backend issued for it. Names are immutable values.
type Name struct {
	symbol string
	id     backend.ID
}

func newName(symbol string, id backend.ID) Name {
	return Name{symbol: symbol, id: id}
}

// Symbol returns the symbol name.
func (n Name) Symbol() string { return n.symbol }

// ID returns the backend identifier.
func (n Name) ID() backend.ID { return n.id }

// IsFunc reports whether the name refers to a function.
func (n Name) IsFunc() bool { return n.id.IsFunc() }

// IsData reports whether the name refers to a data object.
func (n Name) IsData() bool { return n.id.IsData() }

func (n Name) String() string { return n.symbol }

// FuncSymbol returns the symbol of an unexported defined function.
func FuncSymbol(index uint32) string {
	return funcSymbolPrefix + strconv.FormatUint(uint64(index), 10)
}

// ExportedFuncSymbol returns the symbol of a function exported as exportName.
func ExportedFuncSymbol(exportName string) string {
	return funcSymbolPrefix + exportName
}

// TableSymbol returns the symbol of a table's contents.
func TableSymbol(index uint32) string {
	return tableSymbolPrefix + strconv.FormatUint(uint64(index), 10)
}

// TableLenSymbol returns the symbol of a table's length.
func TableLenSymbol(index uint32) string {
	return TableSymbol(index) + tableLenSuffix
}
