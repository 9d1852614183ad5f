//go:build linux

package errors

import "syscall"

// Unwrap exposes the code as a syscall.Errno so errors.Is(err, unix.EAGAIN)
// works. The numbering matches only on Linux.
func (e *Errno) Unwrap() error {
	return syscall.Errno(e.Code)
}
