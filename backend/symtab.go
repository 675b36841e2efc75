package backend

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/wippyai/wasm-aot/wasm"
)

// Declaration errors returned by SymbolTable.
var (
	ErrDuplicateDefinition     = errors.New("duplicate definition")
	ErrIncompatibleDeclaration = errors.New("incompatible declaration")
	ErrEmptyName               = errors.New("empty symbol name")
)

// Declaration is a symbol known to a SymbolTable.
type Declaration struct {
	Signature *wasm.FuncType // functions only
	Name      string
	ID        ID
	Linkage   Linkage
	Writable  bool // data only
}

// IsFunc reports whether the symbol is a function.
func (d Declaration) IsFunc() bool { return d.ID.IsFunc() }

type journalEntry struct {
	index   int
	added   bool
	linkage Linkage // linkage before a merge
}

// SymbolTable is an in-memory Backend. Functions and data objects get dense
// ordinals in declaration order.
//
// Redeclaring a name merges the declarations: an import merges with any
// declaration of the same kind, signature and writability; two definitions
// are a duplicate.
//
// SymbolTable is not safe for concurrent use.
type SymbolTable struct {
	byName  map[string]int
	decls   []Declaration
	journal []journalEntry
	funcs   uint32
	data    uint32
}

// NewSymbolTable creates an empty symbol table.
func NewSymbolTable() *SymbolTable {
	return &SymbolTable{byName: make(map[string]int)}
}

// DeclareFunction implements Backend.
func (t *SymbolTable) DeclareFunction(name string, linkage Linkage, sig *wasm.FuncType) (ID, error) {
	if name == "" {
		return ID{}, ErrEmptyName
	}
	if i, ok := t.byName[name]; ok {
		d := &t.decls[i]
		if err := duplicate(d, linkage); err != nil {
			return ID{}, err
		}
		if !d.IsFunc() {
			return ID{}, fmt.Errorf("%w: %q is declared as data", ErrIncompatibleDeclaration, name)
		}
		if !d.Signature.Equal(sig) {
			return ID{}, fmt.Errorf("%w: %q declared with signature %s, now %s",
				ErrIncompatibleDeclaration, name, sigString(d.Signature), sigString(sig))
		}
		return t.merge(i, linkage)
	}

	id := ID{kind: idFunc, index: t.funcs}
	t.funcs++
	t.add(Declaration{Name: name, ID: id, Linkage: linkage, Signature: sig})
	return id, nil
}

// DeclareData implements Backend.
func (t *SymbolTable) DeclareData(name string, linkage Linkage, writable bool) (ID, error) {
	if name == "" {
		return ID{}, ErrEmptyName
	}
	if i, ok := t.byName[name]; ok {
		d := &t.decls[i]
		if err := duplicate(d, linkage); err != nil {
			return ID{}, err
		}
		if d.IsFunc() {
			return ID{}, fmt.Errorf("%w: %q is declared as a function", ErrIncompatibleDeclaration, name)
		}
		if d.Writable != writable {
			return ID{}, fmt.Errorf("%w: %q declared with writable=%t, now %t",
				ErrIncompatibleDeclaration, name, d.Writable, writable)
		}
		return t.merge(i, linkage)
	}

	id := ID{kind: idData, index: t.data}
	t.data++
	t.add(Declaration{Name: name, ID: id, Linkage: linkage, Writable: writable})
	return id, nil
}

func (t *SymbolTable) add(d Declaration) {
	t.byName[d.Name] = len(t.decls)
	t.journal = append(t.journal, journalEntry{index: len(t.decls), added: true})
	t.decls = append(t.decls, d)

	Logger().Debug("symbol declared",
		zap.String("symbol", d.Name),
		zap.Stringer("id", d.ID),
		zap.Stringer("linkage", d.Linkage))
}

// duplicate reports a second definition of a name. It takes precedence over
// kind and signature mismatches.
func duplicate(d *Declaration, linkage Linkage) error {
	if d.Linkage.IsDefinition() && linkage.IsDefinition() {
		return fmt.Errorf("%w: %q (%s, then %s)", ErrDuplicateDefinition, d.Name, d.Linkage, linkage)
	}
	return nil
}

func (t *SymbolTable) merge(i int, linkage Linkage) (ID, error) {
	d := &t.decls[i]
	merged, ok := d.Linkage.merge(linkage)
	if !ok {
		return ID{}, fmt.Errorf("%w: %q (%s, then %s)", ErrDuplicateDefinition, d.Name, d.Linkage, linkage)
	}
	if merged != d.Linkage {
		t.journal = append(t.journal, journalEntry{index: i, linkage: d.Linkage})
		d.Linkage = merged
	}
	return d.ID, nil
}

// Mark implements Rewinder.
func (t *SymbolTable) Mark() Mark {
	return Mark{n: len(t.journal)}
}

// Rewind implements Rewinder.
func (t *SymbolTable) Rewind(m Mark) {
	if m.n >= len(t.journal) {
		return
	}
	Logger().Debug("rewinding symbol table",
		zap.Int("entries", len(t.journal)-m.n))

	for j := len(t.journal) - 1; j >= m.n; j-- {
		e := t.journal[j]
		if !e.added {
			t.decls[e.index].Linkage = e.linkage
			continue
		}
		d := t.decls[e.index]
		delete(t.byName, d.Name)
		if d.IsFunc() {
			t.funcs--
		} else {
			t.data--
		}
		t.decls = t.decls[:e.index]
	}
	t.journal = t.journal[:m.n]
}

// Lookup returns the declaration of a symbol.
func (t *SymbolTable) Lookup(name string) (Declaration, bool) {
	i, ok := t.byName[name]
	if !ok {
		return Declaration{}, false
	}
	return t.decls[i], true
}

// Symbols returns all declarations in declaration order.
func (t *SymbolTable) Symbols() []Declaration {
	out := make([]Declaration, len(t.decls))
	copy(out, t.decls)
	return out
}

// Len returns the number of declared symbols.
func (t *SymbolTable) Len() int {
	return len(t.decls)
}

func sigString(sig *wasm.FuncType) string {
	if sig == nil {
		return "<nil>"
	}
	return sig.String()
}
