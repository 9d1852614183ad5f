//go:build linux

package errors

import (
	"errors"
	"syscall"
	"testing"
)

func TestErrno_UnwrapsToSyscall(t *testing.T) {
	err := NewErrno("recvfrom", 11)

	var sysErr syscall.Errno
	if !errors.As(err, &sysErr) || uint32(sysErr) != 11 {
		t.Errorf("errors.As syscall.Errno = %v, want 11", sysErr)
	}
	if !errors.Is(err, syscall.EAGAIN) {
		t.Error("errors.Is should match syscall.EAGAIN")
	}
}
