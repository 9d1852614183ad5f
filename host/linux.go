//go:build linux

package host

import (
	"context"
	"fmt"
	"net/netip"

	"golang.org/x/sys/unix"

	"github.com/wippyai/hostcall/abi"
	"github.com/wippyai/hostcall/errors"
	"github.com/wippyai/hostcall/fdtable"
)

func platformHandlers() map[abi.Number]Handler {
	return map[abi.Number]Handler{
		abi.SysRead:        sysRead,
		abi.SysWrite:       sysWrite,
		abi.SysClose:       sysClose,
		abi.SysGetpid:      sysGetpid,
		abi.SysSendto:      sysSendto,
		abi.SysRecvfrom:    sysRecvfrom,
		abi.SysGetsockname: sysGetsockname,
	}
}

// Blocking handlers do not observe ctx: once the host starts a call it runs
// to completion, as the kernel would.

func sysRead(_ context.Context, f *Frame) abi.Ret {
	e, err := f.Fd(0)
	if err != nil {
		return failed(err)
	}
	out, err := f.Out(1, 2)
	if err != nil {
		return failed(err)
	}
	n, err := unix.Read(e.HostFD, out.Data)
	if err != nil {
		return failed(err)
	}
	if err := f.Put(out, n); err != nil {
		return failed(err)
	}
	return abi.FromValue(int64(n))
}

func sysWrite(_ context.Context, f *Frame) abi.Ret {
	e, err := f.Fd(0)
	if err != nil {
		return failed(err)
	}
	data, err := f.In(1, 2)
	if err != nil {
		return failed(err)
	}
	n, err := unix.Write(e.HostFD, data)
	if err != nil {
		return failed(err)
	}
	return abi.FromValue(int64(n))
}

func sysClose(_ context.Context, f *Frame) abi.Ret {
	e, ok := f.Table.Remove(fdtable.FD(f.Int(0)))
	if !ok {
		return abi.FromErrno(abi.EBADF)
	}
	if e.Kind == fdtable.KindStdio {
		return 0
	}
	if err := unix.Close(e.HostFD); err != nil {
		return failed(err)
	}
	return 0
}

func sysGetpid(context.Context, *Frame) abi.Ret {
	return abi.FromValue(int64(unix.Getpid()))
}

func sysRecvfrom(_ context.Context, f *Frame) abi.Ret {
	e, err := f.Fd(0)
	if err != nil {
		return failed(err)
	}
	out, err := f.Out(1, 2)
	if err != nil {
		return failed(err)
	}
	n, from, err := unix.Recvfrom(e.HostFD, out.Data, int(f.Int(3)))
	if err != nil {
		return failed(err)
	}
	if err := f.Put(out, n); err != nil {
		return failed(err)
	}

	if !f.Null(4) {
		var addr []byte
		if from != nil {
			if addr, err = encodeSockaddr(from); err != nil {
				return failed(err)
			}
		}
		if err := f.PutSockaddr(4, 5, addr); err != nil {
			return failed(err)
		}
	}
	return abi.FromValue(int64(n))
}

func sysSendto(_ context.Context, f *Frame) abi.Ret {
	e, err := f.Fd(0)
	if err != nil {
		return failed(err)
	}
	data, err := f.In(1, 2)
	if err != nil {
		return failed(err)
	}

	var to unix.Sockaddr
	if !f.Null(4) {
		raw, err := f.In(4, 5)
		if err != nil {
			return failed(err)
		}
		if to, err = decodeSockaddr(raw); err != nil {
			return failed(err)
		}
	}

	if err := unix.Sendto(e.HostFD, data, int(f.Int(3)), to); err != nil {
		return failed(err)
	}
	return abi.FromValue(int64(len(data)))
}

func sysGetsockname(_ context.Context, f *Frame) abi.Ret {
	e, err := f.Fd(0)
	if err != nil {
		return failed(err)
	}
	if f.Null(1) || f.Null(2) {
		return abi.FromErrno(abi.EFAULT)
	}
	sa, err := unix.Getsockname(e.HostFD)
	if err != nil {
		return failed(err)
	}
	addr, err := encodeSockaddr(sa)
	if err != nil {
		return failed(err)
	}
	if err := f.PutSockaddr(1, 2, addr); err != nil {
		return failed(err)
	}
	return 0
}

func encodeSockaddr(sa unix.Sockaddr) ([]byte, error) {
	switch sa := sa.(type) {
	case *unix.SockaddrInet4:
		return abi.EncodeSockaddrInet(netip.AddrPortFrom(netip.AddrFrom4(sa.Addr), uint16(sa.Port))), nil
	case *unix.SockaddrInet6:
		return abi.EncodeSockaddrInet(netip.AddrPortFrom(netip.AddrFrom16(sa.Addr), uint16(sa.Port))), nil
	default:
		return nil, errors.Unsupported(errors.PhaseHost, fmt.Sprintf("address family of %T", sa))
	}
}

func decodeSockaddr(b []byte) (unix.Sockaddr, error) {
	ap, err := abi.DecodeSockaddrInet(b)
	if err != nil {
		return nil, err
	}
	if ap.Addr().Is4() {
		return &unix.SockaddrInet4{Port: int(ap.Port()), Addr: ap.Addr().As4()}, nil
	}
	return &unix.SockaddrInet6{Port: int(ap.Port()), Addr: ap.Addr().As16()}, nil
}
