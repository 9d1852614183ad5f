package hostcall

// Memory is the fixed-size region shared by the guest and the host.
// Offsets are relative to the start of the region.
type Memory interface {
	Read(offset uint32, length uint32) ([]byte, error)
	Write(offset uint32, data []byte) error
	ReadU32(offset uint32) (uint32, error)
	ReadU64(offset uint32) (uint64, error)
	WriteU32(offset uint32, value uint32) error
	WriteU64(offset uint32, value uint64) error
	Size() uint32
}

// Placement is a byte range handed out by an Allocator.
type Placement struct {
	Offset uint32
	Len    uint32
}

// End returns the first offset past the placement.
func (p Placement) End() uint64 {
	return uint64(p.Offset) + uint64(p.Len)
}

// Allocator hands out non-overlapping ranges of a Memory.
type Allocator interface {
	Alloc(size, align uint32) (Placement, error)
}
