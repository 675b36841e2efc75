// Package bindings maps WebAssembly imports to the symbol names a compiled
// artifact links against.
//
// A binding set is keyed by import module, then by import field:
//
//	{
//	    "env": {
//	        "foo": "host_foo",
//	        "bar": "host_bar"
//	    }
//	}
//
// Bindings are read-only once constructed and safe for concurrent use;
// Bind and Extend must not race with Translate.
package bindings

import (
	"encoding/json"
	goerrors "errors"
	"fmt"
	"os"
	"sort"

	"github.com/wippyai/wasm-aot/errors"
)

// ErrNotFound is wrapped by Translate when an import pair has no binding.
var ErrNotFound = goerrors.New("binding not found")

// EnvModule is the import module used by Env.
const EnvModule = "env"

// Bindings is an import binding policy table.
type Bindings struct {
	modules map[string]map[string]string
}

// Empty returns a binding set without entries.
func Empty() *Bindings {
	return &Bindings{modules: make(map[string]map[string]string)}
}

// New returns a binding set holding a copy of modules.
func New(modules map[string]map[string]string) *Bindings {
	b := Empty()
	for module, fields := range modules {
		m := make(map[string]string, len(fields))
		for field, symbol := range fields {
			m[field] = symbol
		}
		b.modules[module] = m
	}
	return b
}

// Env returns a binding set where every field is imported from EnvModule.
func Env(fields map[string]string) *Bindings {
	return New(map[string]map[string]string{EnvModule: fields})
}

// FromJSON decodes a binding set from its JSON object form.
func FromJSON(data []byte) (*Bindings, error) {
	var modules map[string]map[string]string
	if err := json.Unmarshal(data, &modules); err != nil {
		return nil, errors.Wrap(errors.PhaseBind, errors.KindInvalidData, err, "bindings must be an object of objects of strings")
	}
	return New(modules), nil
}

// FromFile reads a binding set from a JSON file.
func FromFile(path string) (*Bindings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read bindings: %w", err)
	}
	b, err := FromJSON(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return b, nil
}

// Translate returns the symbol bound to an import pair.
func (b *Bindings) Translate(module, field string) (string, error) {
	fields, ok := b.modules[module]
	if !ok {
		return "", fmt.Errorf("unknown import module %q: %w", module, ErrNotFound)
	}
	symbol, ok := fields[field]
	if !ok {
		return "", fmt.Errorf("unknown field %q in import module %q: %w", field, module, ErrNotFound)
	}
	return symbol, nil
}

// Bind adds a single binding. Rebinding a pair to a different symbol is a
// conflict; rebinding it to the same symbol is a no-op.
func (b *Bindings) Bind(module, field, symbol string) error {
	fields, ok := b.modules[module]
	if !ok {
		fields = make(map[string]string)
		b.modules[module] = fields
	}
	if existing, ok := fields[field]; ok && existing != symbol {
		return errors.New(errors.PhaseBind, errors.KindConflict).
			Import(module, field).
			Detail("already bound to %q, cannot rebind to %q", existing, symbol).
			Build()
	}
	fields[field] = symbol
	return nil
}

// Extend merges other into b. Entries are applied in sorted order, so the
// reported conflict is deterministic; entries before it remain applied.
func (b *Bindings) Extend(other *Bindings) error {
	for _, module := range other.Modules() {
		fields := other.modules[module]
		for _, field := range sortedKeys(fields) {
			if err := b.Bind(module, field, fields[field]); err != nil {
				return err
			}
		}
	}
	return nil
}

// Modules returns the bound import module names in sorted order.
func (b *Bindings) Modules() []string {
	return sortedKeys(b.modules)
}

// Len returns the number of bound import pairs.
func (b *Bindings) Len() int {
	n := 0
	for _, fields := range b.modules {
		n += len(fields)
	}
	return n
}

// MarshalJSON encodes the binding set in the form accepted by FromJSON.
func (b *Bindings) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.modules)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
