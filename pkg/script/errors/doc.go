// Package errors provides rich error types for expression compilation and
// evaluation.
//
// Every error carries a kind, an optional source column, and an optional
// suggestion for fixing the input. Errors are recoverable at the call
// boundary: a failed expression never aborts evaluation of unrelated
// facts, and the formatted message is suitable for showing directly to
// the fact author.
package errors
