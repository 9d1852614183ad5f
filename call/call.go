package call

import (
	"github.com/wippyai/hostcall"
	"github.com/wippyai/hostcall/abi"
)

// Collector reads host output back out of the shared block.
type Collector interface {
	Read(offset uint32, length uint32) ([]byte, error)
	ReadU32(offset uint32) (uint32, error)
}

// Committer writes guest data into the shared block.
type Committer interface {
	Write(offset uint32, data []byte) error
	WriteU32(offset uint32, value uint32) error
}

// Staged is a request whose ranges are reserved but not yet written.
// Commit freezes it: inputs are copied in, scalar slots get their initial
// values, and the result is the shape Collect works on.
type Staged[C any] interface {
	Commit(Committer) (C, error)
}

// Syscall is one supported call. S and C are the staged and committed shapes,
// R is what Collect produces. Num and Arity are constants of the type.
//
// Stage reserves every range the call needs and returns the argument words.
// On error the caller rolls the allocator back, so Stage need not clean up.
//
// Collect must validate every host-controlled length before copying
// anything. A claim larger than what was staged yields a discarded result.
type Syscall[S Staged[C], C, R any] interface {
	Num() abi.Number
	Arity() int
	Stage(hostcall.Allocator) (abi.Argv, S, error)
	Collect(C, abi.Ret, Collector) R
}

// None is the staged and committed shape of calls with no buffer arguments.
type None struct{}

// Commit is a no-op.
func (None) Commit(Committer) (None, error) { return None{}, nil }
