package syscalls

import (
	"github.com/wippyai/hostcall"
	"github.com/wippyai/hostcall/abi"
	"github.com/wippyai/hostcall/call"
	"github.com/wippyai/hostcall/errors"
)

// Recvfrom receives into Buf and optionally reports the peer in SrcAddr.
type Recvfrom struct {
	Fd      int32
	Buf     []byte
	Flags   int32
	SrcAddr SockaddrOutput
}

// RecvfromStaged is a Recvfrom with its ranges reserved.
type RecvfromStaged struct {
	buf  call.Output
	addr StagedSockaddr
}

// RecvfromCommitted is a Recvfrom ready to send.
type RecvfromCommitted struct {
	buf  call.Output
	addr CommittedSockaddr
}

// Num returns the recvfrom call number.
func (Recvfrom) Num() abi.Number { return abi.SysRecvfrom }

// Arity is 6.
func (Recvfrom) Arity() int { return 6 }

// Stage reserves the address output first, then the data buffer.
func (r Recvfrom) Stage(alloc hostcall.Allocator) (abi.Argv, RecvfromStaged, error) {
	addr, err := r.SrcAddr.Stage(alloc)
	if err != nil {
		return abi.Argv{}, RecvfromStaged{}, err
	}
	buf, err := call.StageSliceMax(alloc, r.Buf)
	if err != nil {
		return abi.Argv{}, RecvfromStaged{}, err
	}
	argv := abi.Argv{
		fdWord(r.Fd),
		buf.Offset(),
		buf.Len(),
		flagsWord(r.Flags),
		addr.AddrOffset(),
		addr.LenOffset(),
	}
	return argv, RecvfromStaged{buf: buf, addr: addr}, nil
}

// Commit writes the address capacity into its length slot.
func (s RecvfromStaged) Commit(c call.Committer) (RecvfromCommitted, error) {
	addr, err := s.addr.Commit(c)
	if err != nil {
		return RecvfromCommitted{}, err
	}
	return RecvfromCommitted{buf: s.buf, addr: addr}, nil
}

// Collect copies the received prefix and the peer address. A byte count
// larger than the staged buffer discards the whole response. Both outputs
// are read before either destination is written, so a discarded response
// leaves Buf and SrcAddr as they were.
func (Recvfrom) Collect(c RecvfromCommitted, ret abi.Ret, col call.Collector) call.Collected[int64] {
	name := abi.SysRecvfrom.String()
	res := call.CheckCount(name, ret, c.buf.Len())
	if !res.Present || res.Err != nil {
		return res
	}
	data, err := c.buf.ReadRange(col, 0, uint64(res.Value))
	if err != nil {
		return call.Discarded[int64](errors.Wrap(errors.PhaseCollect, errors.KindOutOfBounds, err, name))
	}
	addr, err := c.addr.Read(col)
	if err != nil {
		return call.Discarded[int64](errors.Wrap(errors.PhaseCollect, errors.KindOutOfBounds, err, name))
	}
	data.Apply()
	addr.Apply()
	return res
}

func fdWord(fd int32) uint64 {
	return uint64(int64(fd))
}

func flagsWord(flags int32) uint64 {
	return uint64(uint32(flags))
}
