package host

import (
	"math"
	"strconv"

	"github.com/wippyai/hostcall"
	"github.com/wippyai/hostcall/abi"
	"github.com/wippyai/hostcall/errors"
	"github.com/wippyai/hostcall/fdtable"
)

// Frame is one request as a handler sees it. Every guest offset is checked
// against the block before it is touched; offsets into the header are
// rejected like out-of-range ones.
type Frame struct {
	Mem   hostcall.Memory
	Table *fdtable.Table
	Argv  abi.Argv
	Num   abi.Number
}

// Int returns slot i as a signed 32-bit argument.
func (f *Frame) Int(i int) int32 {
	return int32(f.Argv[i])
}

// Fd resolves slot i to a registered descriptor.
func (f *Frame) Fd(i int) (fdtable.Entry, error) {
	fd := fdtable.FD(f.Int(i))
	e, ok := f.Table.Lookup(fd)
	if !ok {
		return fdtable.Entry{}, errors.NotFound(errors.PhaseHost, "descriptor", strconv.Itoa(int(fd)))
	}
	return e, nil
}

// Null reports whether slot i holds a null pointer.
func (f *Frame) Null(i int) bool {
	return f.Argv[i] == 0
}

func (f *Frame) check(offset, length uint64) (uint32, error) {
	if length == 0 {
		return uint32(offset), nil
	}
	if offset < abi.HeaderSize || offset > math.MaxUint32 || length > math.MaxUint32 ||
		offset+length > uint64(f.Mem.Size()) {
		return 0, errors.OutOfBounds(errors.PhaseHost, offset, length, f.Mem.Size())
	}
	return uint32(offset), nil
}

// In returns the guest bytes named by the offset slot off and the length
// slot n.
func (f *Frame) In(off, n int) ([]byte, error) {
	offset, err := f.check(f.Argv[off], f.Argv[n])
	if err != nil {
		return nil, err
	}
	if f.Argv[n] == 0 {
		return nil, nil
	}
	return f.Mem.Read(offset, uint32(f.Argv[n]))
}

// OutBuf is scratch space for a guest output range.
type OutBuf struct {
	Data   []byte
	offset uint32
}

// Out validates the range named by slots off and n and returns scratch of
// that length. Nothing reaches the guest until Put.
func (f *Frame) Out(off, n int) (OutBuf, error) {
	offset, err := f.check(f.Argv[off], f.Argv[n])
	if err != nil {
		return OutBuf{}, err
	}
	return OutBuf{Data: make([]byte, f.Argv[n]), offset: offset}, nil
}

// Put copies the first n scratch bytes into the guest range. A count past
// the scratch length, as recv reports with MSG_TRUNC, copies only the scratch.
func (f *Frame) Put(o OutBuf, n int) error {
	n = min(n, len(o.Data))
	if n <= 0 {
		return nil
	}
	return f.Mem.Write(o.offset, o.Data[:n])
}

// ReadU32 reads the 4-byte guest value slot i points at.
func (f *Frame) ReadU32(i int) (uint32, error) {
	offset, err := f.check(f.Argv[i], 4)
	if err != nil {
		return 0, err
	}
	return f.Mem.ReadU32(offset)
}

// WriteU32 writes the 4-byte guest value slot i points at.
func (f *Frame) WriteU32(i int, v uint32) error {
	offset, err := f.check(f.Argv[i], 4)
	if err != nil {
		return err
	}
	return f.Mem.WriteU32(offset, v)
}

// PutSockaddr stores addr kernel style into the (address, length) pair at
// slots addrSlot and lenSlot: at most the capacity the guest declared in the
// length slot is written, and the length slot receives the full size of
// addr. A null address slot is left alone.
func (f *Frame) PutSockaddr(addrSlot, lenSlot int, addr []byte) error {
	if f.Null(addrSlot) {
		return nil
	}
	capacity, err := f.ReadU32(lenSlot)
	if err != nil {
		return err
	}
	offset, err := f.check(f.Argv[addrSlot], uint64(capacity))
	if err != nil {
		return err
	}
	n := min(uint32(len(addr)), capacity)
	if n > 0 {
		if err := f.Mem.Write(offset, addr[:n]); err != nil {
			return err
		}
	}
	return f.WriteU32(lenSlot, uint32(len(addr)))
}
