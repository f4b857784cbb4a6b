// Package errors provides foundational, type-safe error primitives used across novelbuilder.
//
// Errors are classified by category and severity. Per-chapter problems
// (empty_input, structure) are warnings: the chapter is dropped and the run
// continues. Template and packaging problems are fatal because no valid
// output can be produced.
//
// Example usage:
//
//	err := errors.StructuralMismatchError("chapter has no body").
//		WithContext("chapter_id", 12).
//		WithContext("path", path).
//		Build()
package errors
