// Package backend defines the symbol declaration interface of a native code
// generation backend and provides SymbolTable, an in-memory implementation.
//
// A backend owns the symbol table of the artifact being emitted. Callers
// declare each function and data object once, receive an opaque ID and use
// that ID for every later reference.
package backend

import (
	"fmt"

	"github.com/wippyai/wasm-aot/wasm"
)

// Linkage is the visibility and binding mode of a declared symbol.
type Linkage uint8

const (
	// LinkageImport symbols are defined outside the artifact.
	LinkageImport Linkage = iota
	// LinkageLocal symbols are defined in the artifact and not visible to linkers.
	LinkageLocal
	// LinkageExport symbols are defined in the artifact and visible to linkers.
	LinkageExport
)

func (l Linkage) String() string {
	switch l {
	case LinkageImport:
		return "import"
	case LinkageLocal:
		return "local"
	case LinkageExport:
		return "export"
	default:
		return fmt.Sprintf("linkage(%d)", uint8(l))
	}
}

// IsDefinition reports whether the symbol is defined in the artifact.
func (l Linkage) IsDefinition() bool {
	return l == LinkageLocal || l == LinkageExport
}

// merge combines two declarations of one symbol. An import merges into
// anything; two definitions do not merge.
func (l Linkage) merge(other Linkage) (Linkage, bool) {
	switch {
	case l == LinkageImport:
		return other, true
	case other == LinkageImport:
		return l, true
	default:
		return l, false
	}
}

type idKind uint8

const (
	idFunc idKind = iota + 1
	idData
)

// ID identifies a declared symbol within one backend. IDs are comparable and
// may be copied freely; their contents are meaningful only to the backend
// that issued them.
type ID struct {
	kind  idKind
	index uint32
}

// IsFunc reports whether the ID was issued for a function.
func (id ID) IsFunc() bool { return id.kind == idFunc }

// IsData reports whether the ID was issued for a data object.
func (id ID) IsData() bool { return id.kind == idData }

// IsZero reports whether the ID was never issued.
func (id ID) IsZero() bool { return id.kind == 0 }

func (id ID) String() string {
	switch id.kind {
	case idFunc:
		return fmt.Sprintf("func%d", id.index)
	case idData:
		return fmt.Sprintf("data%d", id.index)
	default:
		return "invalid"
	}
}

// Backend receives symbol declarations.
type Backend interface {
	// DeclareFunction declares a function symbol with the given signature.
	DeclareFunction(name string, linkage Linkage, sig *wasm.FuncType) (ID, error)
	// DeclareData declares a data object symbol.
	DeclareData(name string, linkage Linkage, writable bool) (ID, error)
}

// Mark is a point in a Rewinder's declaration history.
type Mark struct {
	n int
}

// Rewinder is implemented by backends that can undo declarations.
type Rewinder interface {
	// Mark returns the current point in the declaration history.
	Mark() Mark
	// Rewind undoes every declaration made after m.
	Rewind(m Mark)
}
