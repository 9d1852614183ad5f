package sharedmem

import (
	"encoding/binary"

	"github.com/wippyai/hostcall/errors"
)

// Slice is a Memory backed by a Go byte slice. Read returns views that alias
// the slice, so a host writing through such a view writes the shared block.
type Slice struct {
	data []byte
}

// NewSlice allocates a zeroed block of size bytes.
func NewSlice(size uint32) *Slice {
	return &Slice{data: make([]byte, size)}
}

// Bytes returns the underlying buffer.
func (m *Slice) Bytes() []byte {
	return m.data
}

// Size returns the block size in bytes.
func (m *Slice) Size() uint32 {
	return uint32(len(m.data))
}

func (m *Slice) check(offset uint32, length uint64) error {
	if uint64(offset)+length > uint64(len(m.data)) {
		return errors.OutOfBounds(errors.PhaseMemory, uint64(offset), length, m.Size())
	}
	return nil
}

// Read returns a view of length bytes at offset.
func (m *Slice) Read(offset uint32, length uint32) ([]byte, error) {
	if err := m.check(offset, uint64(length)); err != nil {
		return nil, err
	}
	return m.data[offset : offset+length : offset+length], nil
}

// Write copies data to offset.
func (m *Slice) Write(offset uint32, data []byte) error {
	if err := m.check(offset, uint64(len(data))); err != nil {
		return err
	}
	copy(m.data[offset:], data)
	return nil
}

// ReadU32 reads an unsigned 32-bit little-endian value.
func (m *Slice) ReadU32(offset uint32) (uint32, error) {
	if err := m.check(offset, 4); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(m.data[offset:]), nil
}

// ReadU64 reads an unsigned 64-bit little-endian value.
func (m *Slice) ReadU64(offset uint32) (uint64, error) {
	if err := m.check(offset, 8); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(m.data[offset:]), nil
}

// WriteU32 writes an unsigned 32-bit little-endian value.
func (m *Slice) WriteU32(offset uint32, value uint32) error {
	if err := m.check(offset, 4); err != nil {
		return err
	}
	binary.LittleEndian.PutUint32(m.data[offset:], value)
	return nil
}

// WriteU64 writes an unsigned 64-bit little-endian value.
func (m *Slice) WriteU64(offset uint32, value uint64) error {
	if err := m.check(offset, 8); err != nil {
		return err
	}
	binary.LittleEndian.PutUint64(m.data[offset:], value)
	return nil
}
