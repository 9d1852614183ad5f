// Package syscalls implements the supported calls on top of package call.
//
// Each call is a plain struct holding the guest-side arguments. It fixes its
// number and arity, stages its buffers in argument order and validates the
// host response in Collect. All of them produce call.Collected[int64].
//
//	Read{Fd, Buf}                          read(2)
//	Write{Fd, Buf}                         write(2)
//	Close{Fd}                              close(2)
//	Recvfrom{Fd, Buf, Flags, SrcAddr}      recvfrom(2)
//	Sendto{Fd, Buf, Flags, DestAddr}       sendto(2)
//	Getsockname{Fd, Addr}                  getsockname(2)
//	Getpid{}                               getpid(2)
//
// SockaddrOutput is the (address, address length) output pair shared by
// recvfrom and getsockname. Its length slot is host-controlled and is
// clamped to the buffer before any address byte is copied.
package syscalls
