package arena

import (
	"fmt"

	"github.com/wippyai/hostcall"
	"github.com/wippyai/hostcall/errors"
)

// Arena is a bump allocator over the region [base, base+capacity) of the
// shared block. Allocations are released only in bulk, by Rollback to a
// checkpoint or by Reset.
//
// Arena is not safe for concurrent use.
type Arena struct {
	marks  []Mark
	gen    uint64
	base   uint32
	limit  uint32
	offset uint32
	peak   uint32
}

var _ hostcall.Allocator = (*Arena)(nil)

// Mark identifies a checkpoint. It is only valid until the arena is rolled
// back past it or reset. Every checkpoint gets a fresh generation, so a
// dropped mark never matches a later one taken at the same depth and offset.
type Mark struct {
	gen    uint64
	depth  int
	offset uint32
}

// New creates an arena covering capacity bytes starting at base.
func New(base, capacity uint32) (*Arena, error) {
	if uint64(base)+uint64(capacity) > 1<<32-1 {
		return nil, errors.New(errors.PhaseLoad, errors.KindInvalidInput).
			Detail("arena [%d, +%d) exceeds 32-bit offsets", base, capacity).
			Build()
	}
	return &Arena{
		base:   base,
		limit:  base + capacity,
		offset: base,
		peak:   base,
	}, nil
}

// Alloc reserves size bytes aligned to align, which must be a power of two.
// On failure the arena is left exactly as it was.
func (a *Arena) Alloc(size, align uint32) (hostcall.Placement, error) {
	if align == 0 || align&(align-1) != 0 {
		return hostcall.Placement{}, errors.New(errors.PhaseStage, errors.KindInvalidInput).
			Value(align).
			Detail("alignment %d is not a power of two", align).
			Build()
	}

	start := (uint64(a.offset) + uint64(align) - 1) &^ (uint64(align) - 1)
	end := start + uint64(size)
	if end > uint64(a.limit) {
		return hostcall.Placement{}, errors.AllocationExhausted(size, align, a.Remaining())
	}

	a.offset = uint32(end)
	if a.offset > a.peak {
		a.peak = a.offset
	}
	return hostcall.Placement{Offset: uint32(start), Len: size}, nil
}

// Checkpoint pushes the current offset and returns a mark for it.
func (a *Arena) Checkpoint() Mark {
	a.gen++
	m := Mark{gen: a.gen, depth: len(a.marks) + 1, offset: a.offset}
	a.marks = append(a.marks, m)
	return m
}

// Rollback restores the offset recorded by m and drops m together with every
// mark taken after it. Rolling back to a mark that was already dropped panics.
func (a *Arena) Rollback(m Mark) {
	a.pop(m, "rollback")
	a.offset = m.offset
}

// Release drops m and every later mark but keeps the allocations made since.
func (a *Arena) Release(m Mark) {
	a.pop(m, "release")
}

func (a *Arena) pop(m Mark, op string) {
	if m.depth < 1 || m.depth > len(a.marks) || a.marks[m.depth-1] != m {
		panic(fmt.Sprintf("arena: %s to stale mark (gen %d, depth %d, offset %d; stack depth %d)",
			op, m.gen, m.depth, m.offset, len(a.marks)))
	}
	a.marks = a.marks[:m.depth-1]
}

// Reset drops every allocation and checkpoint.
func (a *Arena) Reset() {
	a.offset = a.base
	a.marks = a.marks[:0]
}

// Base returns the first offset the arena hands out.
func (a *Arena) Base() uint32 { return a.base }

// Offset returns the current high-water offset.
func (a *Arena) Offset() uint32 { return a.offset }

// Capacity returns the size of the arena region.
func (a *Arena) Capacity() uint32 { return a.limit - a.base }

// Remaining returns the bytes left before alignment padding.
func (a *Arena) Remaining() uint32 { return a.limit - a.offset }

// Depth returns the number of live checkpoints.
func (a *Arena) Depth() int { return len(a.marks) }

// Peak returns the highest offset ever reached, relative to Base.
func (a *Arena) Peak() uint32 { return a.peak - a.base }
