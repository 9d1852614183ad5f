// Package errors provides structured error types for the hostcall module.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type carries the call name, a detail message and a cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseStage, errors.KindAllocation).
//		Call("recvfrom").
//		Detail("address buffer does not fit").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.AllocationExhausted(40, 1, 24)
//	err := errors.OutOfBounds(errors.PhaseHost, 4096, 16, 4096)
//
// Host-reported failures are *Errno values carrying the raw code unchanged.
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
