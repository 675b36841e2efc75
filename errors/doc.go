// Package errors provides structured error types for the declaration layer.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type carries the entity, import pair or symbol involved and a cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseDeclare, errors.KindDeclaration).
//		Entity("function").
//		Symbol("guest_func_run").
//		Cause(backendErr).
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.UnresolvedImport("env", "foo", cause)
//	err := errors.OutOfBounds("table", 4, 2)
//
// Construction-time kinds (unresolved_import, declaration) are fatal: no
// partially declared module is ever returned. Query-time out_of_bounds errors
// are ordinary results.
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
