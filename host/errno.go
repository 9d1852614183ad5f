package host

import (
	stderrors "errors"
	"syscall"

	"github.com/wippyai/hostcall/abi"
	"github.com/wippyai/hostcall/errors"
)

// errnoFor converts a handler failure to the Linux code the guest receives.
func errnoFor(err error) uint32 {
	var errno syscall.Errno
	if stderrors.As(err, &errno) {
		return uint32(errno)
	}

	var e *errors.Error
	if stderrors.As(err, &e) {
		switch e.Kind {
		case errors.KindOutOfBounds:
			return abi.EFAULT
		case errors.KindNotFound:
			return abi.EBADF
		case errors.KindInvalidInput:
			return abi.EINVAL
		case errors.KindUnsupported:
			return abi.EAFNOSUPPORT
		}
	}
	return abi.EIO
}

// failed is the result word for err.
func failed(err error) abi.Ret {
	return abi.FromErrno(errnoFor(err))
}
