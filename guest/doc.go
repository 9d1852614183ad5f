// Package guest is the requesting side of a hostcall block.
//
// A Guest owns the arena of one shared block and runs each call through
// four steps:
//
//	stage    reserve ranges in the arena and build the argument words
//	commit   copy inputs into the block and write the header
//	send     hand the block to the host through a transport.Transport
//	collect  validate the host's result and copy outputs back
//
// A failed stage rolls the arena back and sends nothing. After a request is
// sent it is always collected before the arena is reset for the next call.
//
// Host-reported errors come back inside the result, not as the returned
// error:
//
//	res, err := g.Recvfrom(ctx, fd, buf, 0, syscalls.SockaddrOutput{Addr: addr, Len: &n})
//	switch {
//	case err != nil:
//		// guest or transport failure
//	case !res.Present:
//		// host response failed validation and was dropped
//	case res.Err != nil:
//		// host errno, e.g. errors.Is(res.Err, unix.EAGAIN) on Linux
//	default:
//		// res.Value bytes in buf
//	}
//
// If a context ends while the host holds a request, the host may still write
// to the block, so the Guest refuses all further calls.
package guest
