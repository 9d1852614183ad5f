// Package hostcall lets code inside an isolated guest ask a partially trusted
// host to perform system calls on its behalf through one shared memory block.
//
// The guest never hands the host a pointer into its own memory. Every call is
// marshalled in three phases:
//
//	stage    reserve ranges in the shared block, build the argument vector
//	commit   copy guest inputs into the block, write the request header
//	collect  validate what the host reported, copy outputs back to the guest
//
// Anything the host writes is treated as adversarial input: a byte count or
// length larger than what the guest allocated is discarded, never trusted.
//
// # Package Layout
//
//	hostcall/     Root package with the Memory and Allocator interfaces
//	├── sharedmem/   Memory backings (byte slice, wazero linear memory)
//	├── arena/       Bump allocator with checkpoint/rollback
//	├── abi/         Call numbers, argument vector, result word, block header
//	├── call/        Stage/commit/collect contract and output primitives
//	├── syscalls/    Concrete calls (recvfrom, read, write, ...)
//	├── guest/       Dispatcher driving one call through all phases
//	├── transport/   Request/result signalling between guest and host
//	├── host/        Reference host executor
//	├── fdtable/     Host-side descriptor table
//	├── config/      Environment and YAML configuration
//	├── metrics/     Prometheus collectors
//	└── errors/      Structured error types
//
// # Quick Start
//
//	mem := sharedmem.NewSlice(64 << 10)
//	exec := host.New(host.WithTable(fdtable.New()))
//	tr := transport.NewDirect(exec, mem)
//
//	g, err := guest.New(mem, tr)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	var addr [28]byte
//	var addrLen uint32
//	res, err := g.Recvfrom(ctx, fd, buf, 0, syscalls.SockaddrOutput{Addr: addr[:], Len: &addrLen})
//	if err != nil {
//	    log.Fatal(err) // guest-side or transport failure
//	}
//	if !res.Present {
//	    // the host claimed more bytes than it was given
//	}
//
// # Block Layout
//
// The first abi.HeaderSize bytes of the block hold the call number, the six
// argument words and the result word. The arena hands out the rest, so offset
// zero never names data and doubles as a NULL pointer.
//
// # Thread Safety
//
// A Guest serializes its callers. Arena, Memory backings and staged call data
// are NOT thread-safe and belong to one Guest.
package hostcall
