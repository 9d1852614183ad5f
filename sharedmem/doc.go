// Package sharedmem provides backings for the shared block.
//
// Slice keeps the block in a Go byte slice and is what tests and in-process
// hosts use. Region keeps it in the linear memory of a memory-only wasm
// module instantiated in wazero, the same place a wasm guest would see it.
// Wrap adapts any other wazero api.Memory.
//
// All backings bounds-check every access and report failures as
// errors.KindOutOfBounds in phase memory. None of them grow.
package sharedmem
