package abi

import "fmt"

// Number identifies a system call. Values follow the Linux x86_64 table.
type Number uint64

const (
	SysRead        Number = 0
	SysWrite       Number = 1
	SysClose       Number = 3
	SysGetpid      Number = 39
	SysSendto      Number = 44
	SysRecvfrom    Number = 45
	SysGetsockname Number = 51
)

var numberNames = map[Number]string{
	SysRead:        "read",
	SysWrite:       "write",
	SysClose:       "close",
	SysGetpid:      "getpid",
	SysSendto:      "sendto",
	SysRecvfrom:    "recvfrom",
	SysGetsockname: "getsockname",
}

func (n Number) String() string {
	if name, ok := numberNames[n]; ok {
		return name
	}
	return fmt.Sprintf("syscall(%d)", uint64(n))
}

// MaxArgs is the number of argument slots every request carries.
const MaxArgs = 6

// Argv holds the argument words of one request. Each slot is either a
// scalar or an offset into the shared block.
type Argv [MaxArgs]uint64

// Truncate zeroes every slot at index arity or above.
func (a Argv) Truncate(arity int) Argv {
	for i := max(arity, 0); i < MaxArgs; i++ {
		a[i] = 0
	}
	return a
}

// MaxErrno is the largest code a result can carry as an error.
const MaxErrno = 4095

// Ret is the raw result word the host writes back.
// Values in [-MaxErrno, -1] are negated error codes, everything else is a
// success value.
type Ret int64

// IsErrno reports whether r carries an error code.
func (r Ret) IsErrno() bool {
	return r < 0 && r >= -MaxErrno
}

// Errno returns the error code carried by r and whether there was one.
func (r Ret) Errno() (uint32, bool) {
	if !r.IsErrno() {
		return 0, false
	}
	return uint32(-r), true
}

// Value returns r as a success value. Meaningless if IsErrno.
func (r Ret) Value() int64 {
	return int64(r)
}

// FromErrno encodes an error code as a result.
func FromErrno(code uint32) Ret {
	return Ret(-int64(code))
}

// FromValue encodes a success value as a result.
func FromValue(v int64) Ret {
	return Ret(v)
}

// Linux error codes the host produces itself.
const (
	EIO          uint32 = 5
	EBADF        uint32 = 9
	EFAULT       uint32 = 14
	EINVAL       uint32 = 22
	ENOSYS       uint32 = 38
	EAFNOSUPPORT uint32 = 97
)
