package syscalls

import (
	"github.com/wippyai/hostcall"
	"github.com/wippyai/hostcall/abi"
	"github.com/wippyai/hostcall/call"
)

// Read reads from Fd into Buf.
type Read struct {
	Fd  int32
	Buf []byte
}

// Num returns the read call number.
func (Read) Num() abi.Number { return abi.SysRead }

// Arity is 3: fd, buffer offset and length.
func (Read) Arity() int { return 3 }

// Stage reserves the output buffer. Nothing is copied in.
func (r Read) Stage(alloc hostcall.Allocator) (abi.Argv, call.Output, error) {
	buf, err := call.StageSliceMax(alloc, r.Buf)
	if err != nil {
		return abi.Argv{}, call.Output{}, err
	}
	return abi.Argv{fdWord(r.Fd), buf.Offset(), buf.Len()}, buf, nil
}

// Collect copies the first ret bytes into Buf. A count past the staged
// length discards the response.
func (Read) Collect(buf call.Output, ret abi.Ret, col call.Collector) call.Collected[int64] {
	return call.CollectCount(abi.SysRead.String(), ret, buf, col)
}

// Write writes Buf to Fd. Buffers longer than call.MaxTransfer are written
// partially, as a short write.
type Write struct {
	Fd  int32
	Buf []byte
}

// Num returns the write call number.
func (Write) Num() abi.Number { return abi.SysWrite }

// Arity is 3: fd, buffer offset and length.
func (Write) Arity() int { return 3 }

// Stage reserves the input buffer, which Commit fills from Buf.
func (w Write) Stage(alloc hostcall.Allocator) (abi.Argv, call.Input, error) {
	buf, err := call.StageSlice(alloc, w.Buf)
	if err != nil {
		return abi.Argv{}, call.Input{}, err
	}
	return abi.Argv{fdWord(w.Fd), buf.Offset(), buf.Len()}, buf, nil
}

// Collect checks the count the host claims to have written against the
// staged length. Nothing is copied back.
func (Write) Collect(buf call.Input, ret abi.Ret, _ call.Collector) call.Collected[int64] {
	return call.CheckCount(abi.SysWrite.String(), ret, buf.Len())
}

// Close closes Fd.
type Close struct {
	Fd int32
}

// Num returns the close call number.
func (Close) Num() abi.Number { return abi.SysClose }

// Arity is 1.
func (Close) Arity() int { return 1 }

// Stage allocates nothing.
func (c Close) Stage(hostcall.Allocator) (abi.Argv, call.None, error) {
	return abi.Argv{fdWord(c.Fd)}, call.None{}, nil
}

// Collect accepts only 0 or an errno.
func (Close) Collect(_ call.None, ret abi.Ret, _ call.Collector) call.Collected[int64] {
	return call.CollectZero(abi.SysClose.String(), ret)
}
