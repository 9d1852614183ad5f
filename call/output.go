package call

import (
	"fmt"

	"github.com/wippyai/hostcall"
	"github.com/wippyai/hostcall/errors"
)

// MaxTransfer bounds the bytes a single buffer argument may stage.
const MaxTransfer = 1 << 20

// Output is a staged range the host fills and the guest copies back into
// dst. It is a value: staging binds it to dst, collecting writes dst.
type Output struct {
	dst    []byte
	offset uint32
	length uint32
}

// StageSliceMax reserves min(len(dst), MaxTransfer) bytes for dst. Nothing is
// copied in; the host only writes the range.
func StageSliceMax(alloc hostcall.Allocator, dst []byte) (Output, error) {
	n := min(len(dst), MaxTransfer)
	p, err := alloc.Alloc(uint32(n), 1)
	if err != nil {
		return Output{}, err
	}
	return Output{dst: dst, offset: p.Offset, length: p.Len}, nil
}

// Offset returns the staged offset for an argument slot.
func (o Output) Offset() uint64 { return uint64(o.offset) }

// Len returns the allocated length.
func (o Output) Len() uint64 { return uint64(o.length) }

// Commit leaves outputs untouched.
func (o Output) Commit(Committer) (Output, error) { return o, nil }

// CollectRange copies [start, end) of the staged range into the same range
// of dst. The caller must have checked end against Len; a range outside the
// allocation panics instead of copying.
func (o Output) CollectRange(col Collector, start, end uint64) error {
	p, err := o.ReadRange(col, start, end)
	if err != nil {
		return err
	}
	p.Apply()
	return nil
}

// ReadRange is CollectRange without the copy: dst stays untouched until
// Apply, so a call with several outputs can read all of them first.
func (o Output) ReadRange(col Collector, start, end uint64) (Pending, error) {
	if start > end || end > o.Len() {
		panic(fmt.Sprintf("call: collect range [%d, %d) outside allocation of %d", start, end, o.length))
	}
	if start == end {
		return Pending{}, nil
	}
	data, err := col.Read(o.offset+uint32(start), uint32(end-start))
	if err != nil {
		return Pending{}, err
	}
	return Pending{dst: o.dst[start:end], data: data}, nil
}

// Pending is host output read out of the block but not yet delivered.
type Pending struct {
	dst  []byte
	data []byte
}

// Apply copies the output into its destination.
func (p Pending) Apply() {
	copy(p.dst, p.data)
}

// Scalar is a 4-byte little-endian slot the guest initializes at commit and
// the host may overwrite.
type Scalar struct {
	offset uint32
	init   uint32
}

// StageScalar reserves an aligned slot that will start out holding init.
func StageScalar(alloc hostcall.Allocator, init uint32) (Scalar, error) {
	p, err := alloc.Alloc(4, 4)
	if err != nil {
		return Scalar{}, err
	}
	return Scalar{offset: p.Offset, init: init}, nil
}

// Offset returns the staged offset for an argument slot.
func (s Scalar) Offset() uint64 { return uint64(s.offset) }

// Commit writes the initial value.
func (s Scalar) Commit(c Committer) (Scalar, error) {
	if err := c.WriteU32(s.offset, s.init); err != nil {
		return Scalar{}, errors.Wrap(errors.PhaseCommit, errors.KindOutOfBounds, err, "write scalar slot")
	}
	return s, nil
}

// Collect reads whatever the host left in the slot. The value is untrusted.
func (s Scalar) Collect(col Collector) (uint32, error) {
	return col.ReadU32(s.offset)
}

// Input is a staged range the guest fills at commit and the host only reads.
type Input struct {
	src    []byte
	offset uint32
	length uint32
}

// StageSlice reserves min(len(src), MaxTransfer) bytes for src.
func StageSlice(alloc hostcall.Allocator, src []byte) (Input, error) {
	n := min(len(src), MaxTransfer)
	p, err := alloc.Alloc(uint32(n), 1)
	if err != nil {
		return Input{}, err
	}
	return Input{src: src, offset: p.Offset, length: p.Len}, nil
}

// Offset returns the staged offset for an argument slot.
func (i Input) Offset() uint64 { return uint64(i.offset) }

// Len returns the staged length, which may be shorter than the source.
func (i Input) Len() uint64 { return uint64(i.length) }

// Commit copies the staged prefix of the source into the block.
func (i Input) Commit(c Committer) (Input, error) {
	if err := c.Write(i.offset, i.src[:i.length]); err != nil {
		return Input{}, errors.Wrap(errors.PhaseCommit, errors.KindOutOfBounds, err, "copy input")
	}
	return i, nil
}
