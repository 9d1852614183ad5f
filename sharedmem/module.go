package sharedmem

import "bytes"

const (
	moduleName = "hostcall-block"
	exportName = "memory"

	sectionMemory byte = 5
	sectionExport byte = 7

	limitsHasMax byte = 0x01
	externMemory byte = 0x02
)

var (
	wasmMagic   = []byte{0x00, 0x61, 0x73, 0x6d}
	wasmVersion = []byte{0x01, 0x00, 0x00, 0x00}
)

// memoryModule encodes a module whose only content is one memory of exactly
// pages pages, exported under exportName.
func memoryModule(pages uint32) []byte {
	var buf bytes.Buffer
	buf.Write(wasmMagic)
	buf.Write(wasmVersion)

	var sec bytes.Buffer
	writeLEB128u(&sec, 1)
	sec.WriteByte(limitsHasMax)
	writeLEB128u(&sec, pages)
	writeLEB128u(&sec, pages)
	writeSection(&buf, sectionMemory, sec.Bytes())

	sec.Reset()
	writeLEB128u(&sec, 1)
	writeLEB128u(&sec, uint32(len(exportName)))
	sec.WriteString(exportName)
	sec.WriteByte(externMemory)
	writeLEB128u(&sec, 0)
	writeSection(&buf, sectionExport, sec.Bytes())

	return buf.Bytes()
}

func writeSection(buf *bytes.Buffer, id byte, data []byte) {
	buf.WriteByte(id)
	writeLEB128u(buf, uint32(len(data)))
	buf.Write(data)
}

func writeLEB128u(buf *bytes.Buffer, v uint32) {
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			b |= 0x80
		}
		buf.WriteByte(b)
		if v == 0 {
			return
		}
	}
}
