package main

import (
	"bytes"
	"context"
	"fmt"

	"github.com/wippyai/hostcall/abi"
	"github.com/wippyai/hostcall/guest"
	"github.com/wippyai/hostcall/host"
	"github.com/wippyai/hostcall/sharedmem"
	"github.com/wippyai/hostcall/syscalls"
	"github.com/wippyai/hostcall/transport"
)

const (
	probeBlockSize = 4096
	probeFill      = 0x41
)

// probeCall describes where a call keeps its outputs in the argument words.
// A slot of -1 means the call has no such output.
type probeCall struct {
	num     abi.Number
	bufSlot int
	lenSlot int
}

var probeCalls = []probeCall{
	{num: abi.SysRecvfrom, bufSlot: 1, lenSlot: 5},
	{num: abi.SysRead, bufSlot: 1, lenSlot: -1},
	{num: abi.SysGetsockname, bufSlot: 1, lenSlot: 2},
	{num: abi.SysWrite, bufSlot: -1, lenSlot: -1},
	{num: abi.SysClose, bufSlot: -1, lenSlot: -1},
	{num: abi.SysGetpid, bufSlot: -1, lenSlot: -1},
}

// probe is one scripted host response.
type probe struct {
	call    probeCall
	bufLen  int
	fill    int    // bytes the host writes at the output buffer
	ret     int64  // result word
	addrLen uint32 // value the host stores in the address length slot
}

type probeReport struct {
	argv    abi.Argv
	res     guest.Result
	buf     []byte
	addr    []byte
	addrLen uint32
}

// adversary ignores every bound the guest declared, short of the block end.
func adversary(p probe) host.Handler {
	return func(_ context.Context, f *host.Frame) abi.Ret {
		if p.call.bufSlot >= 0 && !f.Null(p.call.bufSlot) && p.fill > 0 {
			off := f.Argv[p.call.bufSlot]
			n := min(uint64(p.fill), uint64(f.Mem.Size())-min(off, uint64(f.Mem.Size())))
			f.Mem.Write(uint32(off), bytes.Repeat([]byte{probeFill}, int(n)))
		}
		if p.call.lenSlot >= 0 && !f.Null(p.call.lenSlot) {
			f.Mem.WriteU32(uint32(f.Argv[p.call.lenSlot]), p.addrLen)
		}
		return abi.Ret(p.ret)
	}
}

// runProbe issues the probed call from a fresh guest against an adversarial
// host and reports what the guest kept.
func runProbe(ctx context.Context, p probe) (probeReport, error) {
	mem := sharedmem.NewSlice(probeBlockSize)
	exec := host.New(host.WithHandler(p.call.num, adversary(p)))
	g, err := guest.New(mem, transport.NewDirect(exec, mem))
	if err != nil {
		return probeReport{}, err
	}

	rep := probeReport{
		buf:  make([]byte, p.bufLen),
		addr: make([]byte, abi.SizeofSockaddrInet4),
	}
	addr := syscalls.SockaddrOutput{Addr: rep.addr, Len: &rep.addrLen}

	switch p.call.num {
	case abi.SysRecvfrom:
		rep.res, err = g.Recvfrom(ctx, 3, rep.buf, 0, addr)
	case abi.SysRead:
		rep.res, err = g.Read(ctx, 3, rep.buf)
	case abi.SysGetsockname:
		rep.buf = nil
		rep.res, err = g.Getsockname(ctx, 3, addr)
	case abi.SysWrite:
		rep.res, err = g.Write(ctx, 1, bytes.Repeat([]byte{'w'}, p.bufLen))
	case abi.SysClose:
		rep.res, err = g.Close(ctx, 3)
	case abi.SysGetpid:
		rep.res, err = g.Getpid(ctx)
	default:
		return probeReport{}, fmt.Errorf("no probe for %s", p.call.num)
	}
	if err != nil {
		return probeReport{}, err
	}

	req, err := abi.ReadRequest(mem)
	if err != nil {
		return probeReport{}, err
	}
	rep.argv = req.Argv
	return rep, nil
}
