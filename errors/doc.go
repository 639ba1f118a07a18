// Package errors provides structured error types for the codablejson library.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type includes rich context: wire path, Go type and tag names, and cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseDecode, errors.KindInvalidData).
//		Path("$$Map", "0").
//		Tag("Map").
//		Detail("entry must be a [key, value] pair").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.NameConflict("Set")
//	err := errors.OutOfBounds(errors.PhasePatch, path, 10, 5)
//
// All errors implement the standard error interface and support errors.Is/As.
// Two errors match under errors.Is when Phase and Kind are equal.
package errors
