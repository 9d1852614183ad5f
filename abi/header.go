package abi

import "github.com/wippyai/hostcall"

// Block header layout. The arena starts at HeaderSize, so no staged range
// ever begins at offset 0 and 0 can stand for a null pointer.
const (
	NumOffset  = 0
	ArgvOffset = 8
	RetOffset  = ArgvOffset + MaxArgs*8
	HeaderSize = RetOffset + 8
)

// Request is the call number and argument words placed in the header.
type Request struct {
	Num  Number
	Argv Argv
}

// WriteRequest stores req in the header and clears the result word.
func WriteRequest(mem hostcall.Memory, req Request) error {
	if err := mem.WriteU64(NumOffset, uint64(req.Num)); err != nil {
		return err
	}
	for i, w := range req.Argv {
		if err := mem.WriteU64(ArgvOffset+uint32(i)*8, w); err != nil {
			return err
		}
	}
	return WriteRet(mem, 0)
}

// ReadRequest loads the header's call number and argument words.
func ReadRequest(mem hostcall.Memory) (Request, error) {
	var req Request
	num, err := mem.ReadU64(NumOffset)
	if err != nil {
		return req, err
	}
	req.Num = Number(num)
	for i := range req.Argv {
		if req.Argv[i], err = mem.ReadU64(ArgvOffset + uint32(i)*8); err != nil {
			return req, err
		}
	}
	return req, nil
}

// WriteRet stores the result word.
func WriteRet(mem hostcall.Memory, r Ret) error {
	return mem.WriteU64(RetOffset, uint64(r))
}

// ReadRet loads the result word.
func ReadRet(mem hostcall.Memory) (Ret, error) {
	v, err := mem.ReadU64(RetOffset)
	return Ret(v), err
}
