// Package host implements the host end of the shared block.
//
// An Executor reads the call number and argument words from the header,
// runs the handler registered for that number and writes the result word.
// Unknown numbers answer ENOSYS. Handlers reach guest memory only through
// Frame, which rejects null, out-of-range and header-overlapping offsets
// with EFAULT, and resolve descriptors only through the fdtable.Table, so a
// guest cannot name a host descriptor it was not given.
//
// On Linux the handlers perform the real calls with golang.org/x/sys/unix.
// Elsewhere only getpid is provided.
//
// Address results follow the kernel convention: at most the capacity the
// guest declared is written, and the length slot receives the full size.
// The guest clamps that length before trusting it.
package host
