// Package wasmaot is the declaration layer of an ahead-of-time WebAssembly
// compiler. It decides the native symbol of every function and table of a
// core module and registers those symbols with a code-generation backend.
//
// # Architecture Overview
//
//	wasmaot/
//	├── wasm/            Core module decoding (types, imports, functions, tables, exports, code)
//	├── moduleinfo/      Function and table index spaces, target configuration
//	├── bindings/        Import binding policy: (module, field) -> symbol
//	├── backend/         Backend interface, linkage, in-memory SymbolTable
//	├── decls/           Symbol assignment and the read-only declaration store
//	├── errors/          Structured error types for debugging
//	└── cmd/wasm-decls/  Prints the symbol map of a module
//
// # Quick Start
//
//	info, err := moduleinfo.Parse(wasmBytes, moduleinfo.DefaultTargetConfig())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	st := backend.NewSymbolTable()
//	d, err := decls.Declare(info, st, bindings.Env(map[string]string{"puts": "host_puts"}))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	for f, body := range d.FunctionBodies() {
//	    fmt.Println(f.Name, len(body.Code))
//	}
//
// # Symbol Names
//
// Imported functions take the symbol their binding names. Defined functions
// are guest_func_<index>, or guest_func_<first export name> when exported.
// Each table gets guest_table_<index> and guest_table_<index>_len.
//
// # Thread Safety
//
// Declare must run on a single goroutine. The Decls it returns is read-only
// and safe for concurrent use.
package wasmaot
