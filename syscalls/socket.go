package syscalls

import (
	"github.com/wippyai/hostcall"
	"github.com/wippyai/hostcall/abi"
	"github.com/wippyai/hostcall/call"
	"github.com/wippyai/hostcall/errors"
)

// Sendto sends Buf on Fd, to DestAddr when it is not empty. DestAddr is an
// encoded sockaddr, see abi.EncodeSockaddrInet.
type Sendto struct {
	Fd       int32
	Buf      []byte
	Flags    int32
	DestAddr []byte
}

// SendtoStaged is a Sendto with its inputs reserved.
type SendtoStaged struct {
	buf  call.Input
	addr call.Input
}

// Num returns the sendto call number.
func (Sendto) Num() abi.Number { return abi.SysSendto }

// Arity is 6, with null address words when DestAddr is empty.
func (Sendto) Arity() int { return 6 }

// Stage rejects datagrams that would not fit in one transfer rather than
// sending a truncated message.
func (s Sendto) Stage(alloc hostcall.Allocator) (abi.Argv, SendtoStaged, error) {
	if len(s.Buf) > call.MaxTransfer {
		return abi.Argv{}, SendtoStaged{}, errors.New(errors.PhaseStage, errors.KindInvalidInput).
			Call(abi.SysSendto.String()).
			Value(len(s.Buf)).
			Detail("message of %d bytes exceeds %d", len(s.Buf), call.MaxTransfer).
			Build()
	}
	if len(s.DestAddr) > abi.SizeofSockaddrStorage {
		return abi.Argv{}, SendtoStaged{}, errors.New(errors.PhaseStage, errors.KindInvalidInput).
			Call(abi.SysSendto.String()).
			Detail("address of %d bytes", len(s.DestAddr)).
			Build()
	}

	buf, err := call.StageSlice(alloc, s.Buf)
	if err != nil {
		return abi.Argv{}, SendtoStaged{}, err
	}
	argv := abi.Argv{fdWord(s.Fd), buf.Offset(), buf.Len(), flagsWord(s.Flags)}

	var addr call.Input
	if len(s.DestAddr) > 0 {
		if addr, err = call.StageSlice(alloc, s.DestAddr); err != nil {
			return abi.Argv{}, SendtoStaged{}, err
		}
		argv[4] = addr.Offset()
		argv[5] = addr.Len()
	}
	return argv, SendtoStaged{buf: buf, addr: addr}, nil
}

// Commit copies the message and the destination address into the block.
func (s SendtoStaged) Commit(c call.Committer) (SendtoStaged, error) {
	if _, err := s.buf.Commit(c); err != nil {
		return SendtoStaged{}, err
	}
	if s.addr.Len() > 0 {
		if _, err := s.addr.Commit(c); err != nil {
			return SendtoStaged{}, err
		}
	}
	return s, nil
}

// Collect checks the sent count against the staged message length.
func (Sendto) Collect(s SendtoStaged, ret abi.Ret, _ call.Collector) call.Collected[int64] {
	return call.CheckCount(abi.SysSendto.String(), ret, s.buf.Len())
}

// Getsockname reports the local address of Fd in Addr.
type Getsockname struct {
	Fd   int32
	Addr SockaddrOutput
}

// Num returns the getsockname call number.
func (Getsockname) Num() abi.Number { return abi.SysGetsockname }

// Arity is 3: fd, address offset and length slot offset.
func (Getsockname) Arity() int { return 3 }

// Stage reserves the address buffer and its length slot.
func (g Getsockname) Stage(alloc hostcall.Allocator) (abi.Argv, StagedSockaddr, error) {
	addr, err := g.Addr.Stage(alloc)
	if err != nil {
		return abi.Argv{}, StagedSockaddr{}, err
	}
	return abi.Argv{fdWord(g.Fd), addr.AddrOffset(), addr.LenOffset()}, addr, nil
}

// Collect accepts only 0 or an errno, then copies the clamped address.
func (Getsockname) Collect(addr CommittedSockaddr, ret abi.Ret, col call.Collector) call.Collected[int64] {
	name := abi.SysGetsockname.String()
	res := call.CollectZero(name, ret)
	if !res.Present || res.Err != nil {
		return res
	}
	if _, err := addr.Collect(col); err != nil {
		return call.Discarded[int64](errors.Wrap(errors.PhaseCollect, errors.KindOutOfBounds, err, name))
	}
	return res
}
