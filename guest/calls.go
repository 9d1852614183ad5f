package guest

import (
	"context"

	"github.com/wippyai/hostcall/call"
	"github.com/wippyai/hostcall/syscalls"
)

// Result is what every built-in call collects into.
type Result = call.Collected[int64]

// Read reads up to len(buf) bytes from fd.
func (g *Guest) Read(ctx context.Context, fd int32, buf []byte) (Result, error) {
	return Execute[call.Output, call.Output, Result](ctx, g, syscalls.Read{Fd: fd, Buf: buf})
}

// Write writes buf to fd.
func (g *Guest) Write(ctx context.Context, fd int32, buf []byte) (Result, error) {
	return Execute[call.Input, call.Input, Result](ctx, g, syscalls.Write{Fd: fd, Buf: buf})
}

// Close closes fd.
func (g *Guest) Close(ctx context.Context, fd int32) (Result, error) {
	return Execute[call.None, call.None, Result](ctx, g, syscalls.Close{Fd: fd})
}

// Recvfrom receives into buf. When src.Addr is not empty it receives the
// sender's address, and src.Len, if set, its length.
func (g *Guest) Recvfrom(ctx context.Context, fd int32, buf []byte, flags int32, src syscalls.SockaddrOutput) (Result, error) {
	return Execute[syscalls.RecvfromStaged, syscalls.RecvfromCommitted, Result](ctx, g,
		syscalls.Recvfrom{Fd: fd, Buf: buf, Flags: flags, SrcAddr: src})
}

// Sendto sends buf, to dest when it is not empty.
func (g *Guest) Sendto(ctx context.Context, fd int32, buf []byte, flags int32, dest []byte) (Result, error) {
	return Execute[syscalls.SendtoStaged, syscalls.SendtoStaged, Result](ctx, g,
		syscalls.Sendto{Fd: fd, Buf: buf, Flags: flags, DestAddr: dest})
}

// Getsockname reports the local address of fd in addr.
func (g *Guest) Getsockname(ctx context.Context, fd int32, addr syscalls.SockaddrOutput) (Result, error) {
	return Execute[syscalls.StagedSockaddr, syscalls.CommittedSockaddr, Result](ctx, g,
		syscalls.Getsockname{Fd: fd, Addr: addr})
}

// Getpid returns the host process id.
func (g *Guest) Getpid(ctx context.Context) (Result, error) {
	return Execute[call.None, call.None, Result](ctx, g, syscalls.Getpid{})
}
