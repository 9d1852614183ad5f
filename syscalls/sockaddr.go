package syscalls

import (
	"github.com/wippyai/hostcall"
	"github.com/wippyai/hostcall/call"
)

// SockaddrOutput is an optional address result: the host writes an address
// into Addr and its length into a separate slot, kernel style. An empty
// Addr stages nothing and passes null offsets. When Len is set it receives
// the collected length, clamped to len(Addr).
type SockaddrOutput struct {
	Addr []byte
	Len  *uint32
}

// StagedSockaddr is a SockaddrOutput with its ranges reserved.
type StagedSockaddr struct {
	addr   call.Output
	length call.Scalar
	dst    *uint32
	null   bool
}

// CommittedSockaddr is a StagedSockaddr with its length slot initialized.
type CommittedSockaddr struct {
	staged StagedSockaddr
}

// Stage reserves the address buffer and a length slot holding its capacity.
func (s SockaddrOutput) Stage(alloc hostcall.Allocator) (StagedSockaddr, error) {
	if len(s.Addr) == 0 {
		return StagedSockaddr{dst: s.Len, null: true}, nil
	}
	addr, err := call.StageSliceMax(alloc, s.Addr)
	if err != nil {
		return StagedSockaddr{}, err
	}
	length, err := call.StageScalar(alloc, uint32(addr.Len()))
	if err != nil {
		return StagedSockaddr{}, err
	}
	return StagedSockaddr{addr: addr, length: length, dst: s.Len}, nil
}

// AddrOffset is the address argument word, 0 when null.
func (s StagedSockaddr) AddrOffset() uint64 {
	if s.null {
		return 0
	}
	return s.addr.Offset()
}

// LenOffset is the address-length argument word, 0 when null.
func (s StagedSockaddr) LenOffset() uint64 {
	if s.null {
		return 0
	}
	return s.length.Offset()
}

// Commit writes the declared capacity into the length slot.
func (s StagedSockaddr) Commit(c call.Committer) (CommittedSockaddr, error) {
	if s.null {
		return CommittedSockaddr{staged: s}, nil
	}
	if _, err := s.length.Commit(c); err != nil {
		return CommittedSockaddr{}, err
	}
	return CommittedSockaddr{staged: s}, nil
}

// Collect reads the host's length, clamps it to the buffer capacity and
// copies that many address bytes. Any excess the host reported is dropped.
// A null address reports length 0.
func (s CommittedSockaddr) Collect(col call.Collector) (uint32, error) {
	p, err := s.Read(col)
	if err != nil {
		return 0, err
	}
	p.Apply()
	return p.n, nil
}

// Read is Collect without delivery: neither Addr nor Len changes until
// Apply.
func (s CommittedSockaddr) Read(col call.Collector) (PendingSockaddr, error) {
	st := s.staged
	if st.null {
		return PendingSockaddr{dst: st.dst}, nil
	}
	n, err := st.length.Collect(col)
	if err != nil {
		return PendingSockaddr{}, err
	}
	n = uint32(min(uint64(n), st.addr.Len()))
	addr, err := st.addr.ReadRange(col, 0, uint64(n))
	if err != nil {
		return PendingSockaddr{}, err
	}
	return PendingSockaddr{addr: addr, dst: st.dst, n: n}, nil
}

// PendingSockaddr is a collected address awaiting delivery.
type PendingSockaddr struct {
	addr call.Pending
	dst  *uint32
	n    uint32
}

// Apply copies the address bytes and stores the length.
func (p PendingSockaddr) Apply() {
	p.addr.Apply()
	if p.dst != nil {
		*p.dst = p.n
	}
}
