package sharedmem

import (
	"context"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	"github.com/wippyai/hostcall/errors"
)

// PageSize is the size of one wasm linear memory page.
const PageSize = 65536

// MaxPages keeps Size() representable as uint32.
const MaxPages = 65535

// Wrap adapts a wazero api.Memory to hostcall.Memory.
func Wrap(mem api.Memory) *Wrapper {
	if mem == nil {
		return nil
	}
	return &Wrapper{Mem: mem}
}

// Wrapper adapts wazero api.Memory to the hostcall.Memory interface.
type Wrapper struct {
	Mem api.Memory
}

func (m *Wrapper) oob(offset uint32, length uint64) error {
	return errors.OutOfBounds(errors.PhaseMemory, uint64(offset), length, m.Mem.Size())
}

// Read reads bytes from memory. The returned slice is a view of the memory.
func (m *Wrapper) Read(offset uint32, length uint32) ([]byte, error) {
	data, ok := m.Mem.Read(offset, length)
	if !ok {
		return nil, m.oob(offset, uint64(length))
	}
	return data, nil
}

// Write writes bytes to memory.
func (m *Wrapper) Write(offset uint32, data []byte) error {
	if !m.Mem.Write(offset, data) {
		return m.oob(offset, uint64(len(data)))
	}
	return nil
}

// ReadU32 reads an unsigned 32-bit little-endian value.
func (m *Wrapper) ReadU32(offset uint32) (uint32, error) {
	v, ok := m.Mem.ReadUint32Le(offset)
	if !ok {
		return 0, m.oob(offset, 4)
	}
	return v, nil
}

// ReadU64 reads an unsigned 64-bit little-endian value.
func (m *Wrapper) ReadU64(offset uint32) (uint64, error) {
	v, ok := m.Mem.ReadUint64Le(offset)
	if !ok {
		return 0, m.oob(offset, 8)
	}
	return v, nil
}

// WriteU32 writes an unsigned 32-bit little-endian value.
func (m *Wrapper) WriteU32(offset uint32, value uint32) error {
	if !m.Mem.WriteUint32Le(offset, value) {
		return m.oob(offset, 4)
	}
	return nil
}

// WriteU64 writes an unsigned 64-bit little-endian value.
func (m *Wrapper) WriteU64(offset uint32, value uint64) error {
	if !m.Mem.WriteUint64Le(offset, value) {
		return m.oob(offset, 8)
	}
	return nil
}

// Size returns the memory size in bytes.
func (m *Wrapper) Size() uint32 {
	return m.Mem.Size()
}

// Region is a shared block living in the linear memory of a memory-only
// module instantiated in its own wazero runtime. The memory is fixed size:
// its limits pin min and max to the same page count.
type Region struct {
	*Wrapper
	rt  wazero.Runtime
	mod api.Module
}

// NewWazero instantiates a region of pages wasm pages.
func NewWazero(ctx context.Context, pages uint32) (*Region, error) {
	if pages == 0 || pages > MaxPages {
		return nil, errors.New(errors.PhaseLoad, errors.KindInvalidInput).
			Value(pages).
			Detail("page count %d outside [1, %d]", pages, MaxPages).
			Build()
	}

	rt := wazero.NewRuntimeWithConfig(ctx, wazero.NewRuntimeConfig().WithMemoryLimitPages(pages))

	compiled, err := rt.CompileModule(ctx, memoryModule(pages))
	if err != nil {
		_ = rt.Close(ctx)
		return nil, errors.Load("compile memory module", err)
	}

	mod, err := rt.InstantiateModule(ctx, compiled, wazero.NewModuleConfig().WithName(moduleName))
	if err != nil {
		_ = rt.Close(ctx)
		return nil, errors.Load("instantiate memory module", err)
	}

	mem := mod.ExportedMemory(exportName)
	if mem == nil {
		_ = rt.Close(ctx)
		return nil, errors.NotFound(errors.PhaseLoad, "export", exportName)
	}

	Logger().Debug("wazero region ready",
		zap.Uint32("pages", pages),
		zap.Uint32("size", mem.Size()))

	return &Region{Wrapper: Wrap(mem), rt: rt, mod: mod}, nil
}

// PagesFor returns the page count needed to hold size bytes.
func PagesFor(size uint32) uint32 {
	return uint32((uint64(size) + PageSize - 1) / PageSize)
}

// Close releases the runtime and its memory.
func (r *Region) Close(ctx context.Context) error {
	return r.rt.Close(ctx)
}
