//go:build linux

package testbed

import (
	"bytes"
	"context"
	stderrors "errors"
	"net/netip"
	"testing"

	"golang.org/x/sys/unix"

	"github.com/wippyai/hostcall/abi"
	"github.com/wippyai/hostcall/call"
	"github.com/wippyai/hostcall/fdtable"
	"github.com/wippyai/hostcall/host"
	"github.com/wippyai/hostcall/syscalls"
)

func hostTable(t *testing.T) *fdtable.Table {
	t.Helper()
	table := fdtable.New(fdtable.WithStdio(), fdtable.WithCloser(unix.Close))
	t.Cleanup(func() { table.Close() })
	return table
}

func udpSocket(t *testing.T, table *fdtable.Table) (fdtable.FD, netip.AddrPort) {
	t.Helper()
	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_DGRAM|unix.SOCK_CLOEXEC, 0)
	if err != nil {
		t.Fatal(err)
	}
	if err := unix.Bind(fd, &unix.SockaddrInet4{Addr: [4]byte{127, 0, 0, 1}}); err != nil {
		unix.Close(fd)
		t.Fatal(err)
	}
	sa, err := unix.Getsockname(fd)
	if err != nil {
		unix.Close(fd)
		t.Fatal(err)
	}
	gfd, err := table.Insert(fdtable.Entry{Name: "udp", Kind: fdtable.KindSocket, HostFD: fd})
	if err != nil {
		unix.Close(fd)
		t.Fatal(err)
	}
	in4 := sa.(*unix.SockaddrInet4)
	return gfd, netip.AddrPortFrom(netip.AddrFrom4(in4.Addr), uint16(in4.Port))
}

func TestLinux_PipeRoundTrip(t *testing.T) {
	table := hostTable(t)
	var p [2]int
	if err := unix.Pipe2(p[:], unix.O_CLOEXEC); err != nil {
		t.Fatal(err)
	}
	r, _ := table.Insert(fdtable.Entry{Name: "pipe-r", Kind: fdtable.KindFile, HostFD: p[0]})
	w, _ := table.Insert(fdtable.Entry{Name: "pipe-w", Kind: fdtable.KindFile, HostFD: p[1]})

	s := newStack(t, host.WithTable(table))
	ctx := context.Background()

	msg := bytes.Repeat([]byte("hostcall "), 100)
	res, err := s.guest.Write(ctx, int32(w), msg)
	if err != nil || res.Value != int64(len(msg)) {
		t.Fatalf("write = %+v, %v", res, err)
	}

	got := make([]byte, 0, len(msg))
	buf := make([]byte, 128)
	for len(got) < len(msg) {
		res, err := s.guest.Read(ctx, int32(r), buf)
		if err != nil || !res.Present || res.Err != nil {
			t.Fatalf("read = %+v, %v", res, err)
		}
		if res.Value == 0 {
			break
		}
		got = append(got, buf[:res.Value]...)
	}
	if !bytes.Equal(got, msg) {
		t.Errorf("read back %d bytes, want %d", len(got), len(msg))
	}

	if res, err := s.guest.Close(ctx, int32(w)); err != nil || res.Outcome() != call.OutcomeOK {
		t.Errorf("close = %+v, %v", res, err)
	}
	res, err = s.guest.Read(ctx, int32(r), buf)
	if err != nil || res.Value != 0 {
		t.Errorf("read at EOF = %+v, %v", res, err)
	}
	res, err = s.guest.Write(ctx, int32(w), msg)
	if err != nil || !stderrors.Is(res.Err, unix.EBADF) {
		t.Errorf("write after close = %+v, %v", res, err)
	}
}

func TestLinux_UDP(t *testing.T) {
	table := hostTable(t)
	a, aAddr := udpSocket(t, table)
	b, bAddr := udpSocket(t, table)

	s := newStack(t, host.WithTable(table))
	ctx := context.Background()

	local := make([]byte, abi.SizeofSockaddrStorage)
	var localLen uint32
	res, err := s.guest.Getsockname(ctx, int32(b), syscalls.SockaddrOutput{Addr: local, Len: &localLen})
	if err != nil || res.Outcome() != call.OutcomeOK {
		t.Fatalf("getsockname = %+v, %v", res, err)
	}
	if got, err := abi.DecodeSockaddrInet(local[:localLen]); err != nil || got != bAddr {
		t.Errorf("getsockname = %v, %v; want %v", got, err, bAddr)
	}

	res, err = s.guest.Sendto(ctx, int32(a), []byte("ping"), 0, abi.EncodeSockaddrInet(bAddr))
	if err != nil || res.Value != 4 {
		t.Fatalf("sendto = %+v, %v", res, err)
	}

	// a short address buffer gets the truncated address and its capacity
	buf := make([]byte, 16)
	from := make([]byte, 8)
	var fromLen uint32
	res, err = s.guest.Recvfrom(ctx, int32(b), buf, 0, syscalls.SockaddrOutput{Addr: from, Len: &fromLen})
	if err != nil || res.Value != 4 {
		t.Fatalf("recvfrom = %+v, %v", res, err)
	}
	if string(buf[:4]) != "ping" {
		t.Errorf("payload = %q", buf[:4])
	}
	if fromLen != 8 || !bytes.Equal(from, abi.EncodeSockaddrInet(aAddr)[:8]) {
		t.Errorf("from = % x (len %d)", from, fromLen)
	}
}

func TestLinux_RecvfromTruncatedDatagram(t *testing.T) {
	table := hostTable(t)
	a, _ := udpSocket(t, table)
	b, bAddr := udpSocket(t, table)

	s := newStack(t, host.WithTable(table))
	ctx := context.Background()

	payload := bytes.Repeat([]byte{0x7e}, 100)
	res, err := s.guest.Sendto(ctx, int32(a), payload, 0, abi.EncodeSockaddrInet(bAddr))
	if err != nil || res.Value != 100 {
		t.Fatalf("sendto = %+v, %v", res, err)
	}

	// with MSG_TRUNC the host reports all 100 bytes for a 16-byte buffer
	buf := make([]byte, 16)
	from := make([]byte, abi.SizeofSockaddrInet4)
	var fromLen uint32 = 5
	res, err = s.guest.Recvfrom(ctx, int32(b), buf, unix.MSG_TRUNC, syscalls.SockaddrOutput{Addr: from, Len: &fromLen})
	if err != nil {
		t.Fatalf("recvfrom failed: %v", err)
	}
	if res.Present {
		t.Fatalf("result should be absent, got %+v", res)
	}
	if !bytes.Equal(buf, make([]byte, 16)) || fromLen != 5 {
		t.Errorf("destinations modified: buf % x, fromLen %d", buf, fromLen)
	}

	// the guest stays usable
	if res, err := s.guest.Getpid(ctx); err != nil || res.Outcome() != call.OutcomeOK {
		t.Errorf("getpid after discard = %+v, %v", res, err)
	}
}

func TestLinux_RecvfromWouldBlock(t *testing.T) {
	table := hostTable(t)
	fd, _ := udpSocket(t, table)
	s := newStack(t, host.WithTable(table))

	res, err := s.guest.Recvfrom(context.Background(), int32(fd), make([]byte, 16), unix.MSG_DONTWAIT, syscalls.SockaddrOutput{})
	if err != nil {
		t.Fatal(err)
	}
	if !res.Present || !stderrors.Is(res.Err, unix.EAGAIN) {
		t.Errorf("recvfrom = %+v, want EAGAIN", res)
	}
}

func TestLinux_UnregisteredDescriptor(t *testing.T) {
	s := newStack(t, host.WithTable(hostTable(t)))

	res, err := s.guest.Read(context.Background(), 42, make([]byte, 8))
	if err != nil {
		t.Fatal(err)
	}
	if !stderrors.Is(res.Err, unix.EBADF) {
		t.Errorf("read = %+v, want EBADF", res)
	}
}
