// Package wasm decodes the parts of a WebAssembly binary module that an
// ahead-of-time compiler needs to assign symbols: the type, import,
// function, table, export and code sections.
//
// All other sections are validated for ordering and skipped by size; their
// locations are kept in Module.Skipped.
//
// # Parsing
//
//	data, _ := os.ReadFile("module.wasm")
//	module, err := wasm.ParseModule(data)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Function bodies keep their raw bytes and their offset within the binary,
// so later compilation stages can report positions against the original
// input.
//
// # Encoding
//
// Module.Encode writes the decoded sections back to binary form. It is
// mainly useful for building test inputs:
//
//	m := &wasm.Module{
//	    Types: []wasm.FuncType{{}},
//	    Funcs: []uint32{0},
//	    Code:  []wasm.FuncBody{{Code: []byte{wasm.OpEnd}}},
//	}
//	data := m.Encode()
package wasm
