// Package call defines how a system call is marshalled through the shared
// block and the primitives calls are built from.
//
// A call moves through three phases:
//
//   - Stage reserves ranges with an Allocator and produces the argument
//     words. Nothing is written.
//   - Commit copies guest inputs into their ranges and initializes scalar
//     slots. After this the request can be sent.
//   - Collect runs after the host answered. It validates every length the
//     host claims against what was staged and only then copies bytes back.
//
// Output, Scalar and Input are the building blocks. Output.CollectRange
// panics on a range outside its allocation: callers validate first, so a
// panic there is a bug in the call, never host behavior.
//
// A host response that fails validation does not produce an error. The
// result is Collected with Present false, and the reason is kept in
// Collected.Discard for logging.
package call
