//go:build linux

package main

import (
	"context"
	"fmt"

	"golang.org/x/sys/unix"

	"github.com/wippyai/hostcall/abi"
	"github.com/wippyai/hostcall/fdtable"
	"github.com/wippyai/hostcall/guest"
	"github.com/wippyai/hostcall/syscalls"
)

func udpSocket(table *fdtable.Table, name string) (fdtable.FD, error) {
	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_DGRAM|unix.SOCK_CLOEXEC, 0)
	if err != nil {
		return 0, fmt.Errorf("socket: %w", err)
	}
	if err := unix.Bind(fd, &unix.SockaddrInet4{Addr: [4]byte{127, 0, 0, 1}}); err != nil {
		unix.Close(fd)
		return 0, fmt.Errorf("bind: %w", err)
	}
	gfd, err := table.Insert(fdtable.Entry{Name: name, Kind: fdtable.KindSocket, HostFD: fd})
	if err != nil {
		unix.Close(fd)
		return 0, err
	}
	return gfd, nil
}

func udpDemo(ctx context.Context, g *guest.Guest, table *fdtable.Table) error {
	a, err := udpSocket(table, "udp-a")
	if err != nil {
		return err
	}
	defer g.Close(ctx, int32(a))
	b, err := udpSocket(table, "udp-b")
	if err != nil {
		return err
	}
	defer g.Close(ctx, int32(b))

	addr := make([]byte, abi.SizeofSockaddrStorage)
	var addrLen uint32
	res, err := g.Getsockname(ctx, int32(b), syscalls.SockaddrOutput{Addr: addr, Len: &addrLen})
	if err != nil {
		return err
	}
	if !res.Present || res.Err != nil {
		return fmt.Errorf("getsockname: %s", describe(res))
	}
	dest, err := abi.DecodeSockaddrInet(addr[:addrLen])
	if err != nil {
		return err
	}
	fmt.Printf("getsockname(%d) = %s\n", b, dest)

	msg := []byte("ping")
	res, err = g.Sendto(ctx, int32(a), msg, 0, abi.EncodeSockaddrInet(dest))
	if err != nil {
		return err
	}
	fmt.Printf("sendto(%d, %q, %s) = %s\n", a, msg, dest, describe(res))

	buf := make([]byte, 64)
	res, err = g.Recvfrom(ctx, int32(b), buf, 0, syscalls.SockaddrOutput{Addr: addr, Len: &addrLen})
	if err != nil {
		return err
	}
	if !res.Present || res.Err != nil {
		return fmt.Errorf("recvfrom: %s", describe(res))
	}
	from, err := abi.DecodeSockaddrInet(addr[:addrLen])
	if err != nil {
		return err
	}
	fmt.Printf("recvfrom(%d) = %d %q from %s\n", b, res.Value, buf[:res.Value], from)
	return nil
}
