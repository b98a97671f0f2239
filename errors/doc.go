// Package errors provides structured error types for the bitfield module.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type includes rich context: definition path, Go type and base type
// names, the offending value, and a cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseDefine, errors.KindOverflow).
//		Path("Status", "mode").
//		Base("u8").
//		Detail("%d bits declared, capacity is %d", 12, 8).
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.CapacityExceeded(path, "u8", 12, 8)
//	err := errors.DuplicateField(path, "mode", 1)
//
// All errors implement the standard error interface and support errors.Is/As.
// Two errors match under errors.Is when their Phase and Kind agree.
package errors
