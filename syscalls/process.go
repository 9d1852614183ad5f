package syscalls

import (
	"github.com/wippyai/hostcall"
	"github.com/wippyai/hostcall/abi"
	"github.com/wippyai/hostcall/call"
	"github.com/wippyai/hostcall/errors"
)

// Getpid asks for the host-side process id.
type Getpid struct{}

// Num returns the getpid call number.
func (Getpid) Num() abi.Number { return abi.SysGetpid }

// Arity is 0.
func (Getpid) Arity() int { return 0 }

// Stage allocates nothing.
func (Getpid) Stage(hostcall.Allocator) (abi.Argv, call.None, error) {
	return abi.Argv{}, call.None{}, nil
}

// Collect returns the host's pid. Any non-errno value is accepted.
func (Getpid) Collect(_ call.None, ret abi.Ret, _ call.Collector) call.Collected[int64] {
	if code, ok := ret.Errno(); ok {
		return call.Failed[int64](errors.NewErrno(abi.SysGetpid.String(), code))
	}
	return call.Some(ret.Value())
}
