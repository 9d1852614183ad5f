package syscalls

import (
	"bytes"
	"encoding/binary"
	stderrors "errors"
	"net/netip"
	"testing"

	"github.com/wippyai/hostcall/abi"
	"github.com/wippyai/hostcall/arena"
	"github.com/wippyai/hostcall/call"
	"github.com/wippyai/hostcall/errors"
	"github.com/wippyai/hostcall/sharedmem"
)

const blockSize = 4096

func setup(t *testing.T) (*sharedmem.Slice, *arena.Arena) {
	t.Helper()
	a, err := arena.New(abi.HeaderSize, blockSize-abi.HeaderSize)
	if err != nil {
		t.Fatal(err)
	}
	return sharedmem.NewSlice(blockSize), a
}

// run stages and commits sc, lets host play the host against the block and
// collects the result.
func run[S call.Staged[C], C any](t *testing.T, sc call.Syscall[S, C, result], host func(mem *sharedmem.Slice, argv abi.Argv) abi.Ret) (result, abi.Argv) {
	t.Helper()
	mem, a := setup(t)
	argv, staged, err := sc.Stage(a)
	if err != nil {
		t.Fatalf("Stage failed: %v", err)
	}
	committed, err := staged.Commit(mem)
	if err != nil {
		t.Fatalf("Commit failed: %v", err)
	}
	ret := host(mem, argv)
	return sc.Collect(committed, ret, mem), argv
}

func putU32(mem *sharedmem.Slice, off uint64, v uint32) {
	binary.LittleEndian.PutUint32(mem.Bytes()[off:], v)
}

func getU32(mem *sharedmem.Slice, off uint64) uint32 {
	return binary.LittleEndian.Uint32(mem.Bytes()[off:])
}

func TestRecvfrom_Stage(t *testing.T) {
	_, a := setup(t)
	r := Recvfrom{Fd: 5, Buf: make([]byte, 16), Flags: 0x40, SrcAddr: SockaddrOutput{Addr: make([]byte, 16)}}
	argv, _, err := r.Stage(a)
	if err != nil {
		t.Fatal(err)
	}

	// address buffer, its length slot, then the data buffer
	want := abi.Argv{5, 64 + 16 + 4, 16, 0x40, 64, 64 + 16}
	if argv != want {
		t.Errorf("argv = %v, want %v", argv, want)
	}
	if r.Num() != abi.SysRecvfrom || r.Arity() != 6 {
		t.Errorf("num=%d arity=%d", r.Num(), r.Arity())
	}
}

func TestRecvfrom_NegativeFd(t *testing.T) {
	_, a := setup(t)
	argv, _, _ := Recvfrom{Fd: -1}.Stage(a)
	if int32(argv[0]) != -1 {
		t.Errorf("fd word = %#x", argv[0])
	}
}

// Host claims 40 bytes against a 16-byte buffer and writes all 40.
func TestRecvfrom_OversizeClaimIsAbsent(t *testing.T) {
	buf := bytes.Repeat([]byte{0x5a}, 16)
	var addrLen uint32 = 77
	addr := make([]byte, 16)

	res, _ := run[RecvfromStaged, RecvfromCommitted](t,
		Recvfrom{Fd: 3, Buf: buf, SrcAddr: SockaddrOutput{Addr: addr, Len: &addrLen}},
		func(mem *sharedmem.Slice, argv abi.Argv) abi.Ret {
			for i := uint64(0); i < 40; i++ {
				mem.Bytes()[argv[1]+i] = 0xff
			}
			return 40
		})

	// absent rather than an error: callers cannot tell a lying host from
	// one that produced nothing
	if res.Present {
		t.Fatalf("result should be absent, got %+v", res)
	}
	if res.Err != nil {
		t.Errorf("absent result carries error %v", res.Err)
	}
	if !stderrors.Is(res.Discard, &errors.Error{Phase: errors.PhaseCollect, Kind: errors.KindInvalidHostResponse}) {
		t.Errorf("Discard = %v", res.Discard)
	}
	if !bytes.Equal(buf, bytes.Repeat([]byte{0x5a}, 16)) {
		t.Errorf("destination modified: %v", buf)
	}
	if addrLen != 77 {
		t.Errorf("address length modified: %d", addrLen)
	}
}

// Host reports 10 data bytes and an 8-byte address in an 8-byte buffer.
func TestRecvfrom_ValidResponse(t *testing.T) {
	buf := make([]byte, 16)
	addr := make([]byte, 8)
	var addrLen uint32
	payload := []byte("0123456789")
	peer := []byte{2, 0, 0x1f, 0x90, 10, 0, 0, 1}

	res, _ := run[RecvfromStaged, RecvfromCommitted](t,
		Recvfrom{Fd: 3, Buf: buf, SrcAddr: SockaddrOutput{Addr: addr, Len: &addrLen}},
		func(mem *sharedmem.Slice, argv abi.Argv) abi.Ret {
			if got := getU32(mem, argv[5]); got != 8 {
				t.Errorf("length slot committed as %d, want 8", got)
			}
			copy(mem.Bytes()[argv[1]:], payload)
			copy(mem.Bytes()[argv[4]:], peer)
			putU32(mem, argv[5], 8)
			return 10
		})

	if !res.Present || res.Err != nil || res.Value != 10 {
		t.Fatalf("result = %+v, want Some(Ok(10))", res)
	}
	if !bytes.Equal(buf[:10], payload) {
		t.Errorf("buf = %q", buf[:10])
	}
	if !bytes.Equal(buf[10:], make([]byte, 6)) {
		t.Errorf("tail of buf modified: %v", buf[10:])
	}
	if addrLen != 8 || !bytes.Equal(addr, peer) {
		t.Errorf("addr = %v len %d", addr, addrLen)
	}
}

func TestRecvfrom_AddressLengthClamped(t *testing.T) {
	addr := make([]byte, 8)
	var addrLen uint32

	res, _ := run[RecvfromStaged, RecvfromCommitted](t,
		Recvfrom{Fd: 3, Buf: make([]byte, 4), SrcAddr: SockaddrOutput{Addr: addr, Len: &addrLen}},
		func(mem *sharedmem.Slice, argv abi.Argv) abi.Ret {
			for i := uint64(0); i < 8; i++ {
				mem.Bytes()[argv[4]+i] = byte(i + 1)
			}
			putU32(mem, argv[5], 0xffffffff)
			return 0
		})

	if !res.Present || res.Value != 0 {
		t.Fatalf("result = %+v", res)
	}
	if addrLen != 8 {
		t.Errorf("addrLen = %d, want clamped 8", addrLen)
	}
	if !bytes.Equal(addr, []byte{1, 2, 3, 4, 5, 6, 7, 8}) {
		t.Errorf("addr = %v", addr)
	}
}

func TestRecvfrom_ShortAddress(t *testing.T) {
	addr := bytes.Repeat([]byte{0xcc}, 16)
	var addrLen uint32

	run[RecvfromStaged, RecvfromCommitted](t,
		Recvfrom{Fd: 3, Buf: make([]byte, 4), SrcAddr: SockaddrOutput{Addr: addr, Len: &addrLen}},
		func(mem *sharedmem.Slice, argv abi.Argv) abi.Ret {
			copy(mem.Bytes()[argv[4]:], []byte{1, 2, 3})
			putU32(mem, argv[5], 3)
			return 0
		})

	if addrLen != 3 || !bytes.Equal(addr[:3], []byte{1, 2, 3}) || addr[3] != 0xcc {
		t.Errorf("addr = %v len %d", addr, addrLen)
	}
}

func TestRecvfrom_NullAddress(t *testing.T) {
	res, argv := run[RecvfromStaged, RecvfromCommitted](t,
		Recvfrom{Fd: 3, Buf: make([]byte, 4)},
		func(mem *sharedmem.Slice, argv abi.Argv) abi.Ret {
			return 2
		})
	if argv[4] != 0 || argv[5] != 0 {
		t.Errorf("null address staged as %d/%d", argv[4], argv[5])
	}
	if !res.Present || res.Value != 2 {
		t.Errorf("result = %+v", res)
	}
}

func TestRecvfrom_NullAddressClearsLength(t *testing.T) {
	var addrLen uint32 = 99
	res, _ := run[RecvfromStaged, RecvfromCommitted](t,
		Recvfrom{Fd: 3, Buf: make([]byte, 4), SrcAddr: SockaddrOutput{Len: &addrLen}},
		func(mem *sharedmem.Slice, argv abi.Argv) abi.Ret {
			return 2
		})
	if !res.Present || res.Value != 2 {
		t.Fatalf("result = %+v", res)
	}
	if addrLen != 0 {
		t.Errorf("addrLen = %d, want 0 for a null address", addrLen)
	}
}

// failingCollector reads through to the block except at one offset.
type failingCollector struct {
	call.Collector
	at uint32
}

func (c failingCollector) Read(offset, length uint32) ([]byte, error) {
	if offset == c.at {
		return nil, errors.OutOfBounds(errors.PhaseCollect, uint64(offset), uint64(length), 0)
	}
	return c.Collector.Read(offset, length)
}

func TestRecvfrom_AddressReadFailureLeavesBuffer(t *testing.T) {
	mem, a := setup(t)
	buf := bytes.Repeat([]byte{0x5a}, 8)
	addr := make([]byte, 16)
	var addrLen uint32 = 77
	sc := Recvfrom{Fd: 3, Buf: buf, SrcAddr: SockaddrOutput{Addr: addr, Len: &addrLen}}

	argv, staged, err := sc.Stage(a)
	if err != nil {
		t.Fatal(err)
	}
	committed, err := staged.Commit(mem)
	if err != nil {
		t.Fatal(err)
	}
	copy(mem.Bytes()[argv[1]:], "datagram")
	putU32(mem, argv[5], 16)

	res := sc.Collect(committed, 8, failingCollector{Collector: mem, at: uint32(argv[4])})
	if res.Present {
		t.Fatalf("result should be absent, got %+v", res)
	}
	if !bytes.Equal(buf, bytes.Repeat([]byte{0x5a}, 8)) {
		t.Errorf("destination modified: %q", buf)
	}
	if addrLen != 77 {
		t.Errorf("address length modified: %d", addrLen)
	}
}

func TestRecvfrom_HostError(t *testing.T) {
	buf := bytes.Repeat([]byte{1}, 8)
	var addrLen uint32 = 5

	res, _ := run[RecvfromStaged, RecvfromCommitted](t,
		Recvfrom{Fd: 3, Buf: buf, SrcAddr: SockaddrOutput{Addr: make([]byte, 16), Len: &addrLen}},
		func(mem *sharedmem.Slice, argv abi.Argv) abi.Ret {
			return abi.FromErrno(11)
		})

	if !res.Present {
		t.Fatal("host error should be present")
	}
	var errno *errors.Errno
	if !stderrors.As(res.Err, &errno) || errno.Code != 11 || errno.Call != "recvfrom" {
		t.Errorf("Err = %v", res.Err)
	}
	if addrLen != 5 || !bytes.Equal(buf, bytes.Repeat([]byte{1}, 8)) {
		t.Error("host error should not touch outputs")
	}
}

func TestRecvfrom_StageExhausted(t *testing.T) {
	a, err := arena.New(abi.HeaderSize, 64)
	if err != nil {
		t.Fatal(err)
	}
	_, _, err = Recvfrom{Fd: 3, Buf: make([]byte, 40), SrcAddr: SockaddrOutput{Addr: make([]byte, 28)}}.Stage(a)
	if !stderrors.Is(err, &errors.Error{Phase: errors.PhaseStage, Kind: errors.KindAllocation}) {
		t.Errorf("err = %v, want allocation exhausted", err)
	}
}

func TestRead(t *testing.T) {
	buf := make([]byte, 8)
	res, argv := run[call.Output, call.Output](t, Read{Fd: 4, Buf: buf},
		func(mem *sharedmem.Slice, argv abi.Argv) abi.Ret {
			copy(mem.Bytes()[argv[1]:], "abc")
			return 3
		})
	if argv[0] != 4 || argv[2] != 8 || argv[3] != 0 {
		t.Errorf("argv = %v", argv)
	}
	if !res.Present || res.Value != 3 || string(buf[:3]) != "abc" {
		t.Errorf("result = %+v, buf = %q", res, buf)
	}

	res, _ = run[call.Output, call.Output](t, Read{Fd: 4, Buf: buf},
		func(mem *sharedmem.Slice, argv abi.Argv) abi.Ret { return 9 })
	if res.Present {
		t.Error("claim past buffer should be discarded")
	}
}

func TestWrite(t *testing.T) {
	var seen []byte
	res, argv := run[call.Input, call.Input](t, Write{Fd: 1, Buf: []byte("hello")},
		func(mem *sharedmem.Slice, argv abi.Argv) abi.Ret {
			seen = append(seen, mem.Bytes()[argv[1]:argv[1]+argv[2]]...)
			return abi.Ret(argv[2])
		})
	if string(seen) != "hello" || argv[2] != 5 {
		t.Errorf("host saw %q", seen)
	}
	if !res.Present || res.Value != 5 {
		t.Errorf("result = %+v", res)
	}

	res, _ = run[call.Input, call.Input](t, Write{Fd: 1, Buf: []byte("hello")},
		func(mem *sharedmem.Slice, argv abi.Argv) abi.Ret { return 6 })
	if res.Present {
		t.Error("count past staged input should be discarded")
	}
}

func TestClose(t *testing.T) {
	tests := []struct {
		name        string
		ret         abi.Ret
		wantPresent bool
		wantErr     bool
	}{
		{"ok", 0, true, false},
		{"ebadf", abi.FromErrno(abi.EBADF), true, true},
		{"positive", 1, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, argv := run[call.None, call.None](t, Close{Fd: 7},
				func(mem *sharedmem.Slice, argv abi.Argv) abi.Ret { return tt.ret })
			if argv != (abi.Argv{7}) {
				t.Errorf("argv = %v", argv)
			}
			if res.Present != tt.wantPresent || (res.Err != nil) != tt.wantErr {
				t.Errorf("result = %+v", res)
			}
		})
	}
}

func TestSendto(t *testing.T) {
	dest := abi.EncodeSockaddrInet(netip.MustParseAddrPort("10.0.0.2:9000"))
	var gotMsg, gotAddr []byte

	res, argv := run[SendtoStaged, SendtoStaged](t, Sendto{Fd: 3, Buf: []byte("ping"), DestAddr: dest},
		func(mem *sharedmem.Slice, argv abi.Argv) abi.Ret {
			gotMsg = append(gotMsg, mem.Bytes()[argv[1]:argv[1]+argv[2]]...)
			gotAddr = append(gotAddr, mem.Bytes()[argv[4]:argv[4]+argv[5]]...)
			return 4
		})
	if string(gotMsg) != "ping" || !bytes.Equal(gotAddr, dest) || argv[5] != abi.SizeofSockaddrInet4 {
		t.Errorf("host saw msg %q addr % x", gotMsg, gotAddr)
	}
	if !res.Present || res.Value != 4 {
		t.Errorf("result = %+v", res)
	}
}

func TestSendto_NoDestination(t *testing.T) {
	_, argv := run[SendtoStaged, SendtoStaged](t, Sendto{Fd: 3, Buf: []byte("x")},
		func(mem *sharedmem.Slice, argv abi.Argv) abi.Ret { return 1 })
	if argv[4] != 0 || argv[5] != 0 {
		t.Errorf("argv = %v", argv)
	}
}

func TestSendto_TooLarge(t *testing.T) {
	_, a := setup(t)
	_, _, err := Sendto{Fd: 3, Buf: make([]byte, call.MaxTransfer+1)}.Stage(a)
	if !stderrors.Is(err, &errors.Error{Phase: errors.PhaseStage, Kind: errors.KindInvalidInput}) {
		t.Errorf("err = %v", err)
	}
	if a.Offset() != abi.HeaderSize {
		t.Error("rejected sendto should not allocate")
	}
}

func TestGetsockname(t *testing.T) {
	addr := make([]byte, abi.SizeofSockaddrInet4)
	var addrLen uint32
	local := abi.EncodeSockaddrInet(netip.MustParseAddrPort("127.0.0.1:4242"))

	res, argv := run[StagedSockaddr, CommittedSockaddr](t, Getsockname{Fd: 3, Addr: SockaddrOutput{Addr: addr, Len: &addrLen}},
		func(mem *sharedmem.Slice, argv abi.Argv) abi.Ret {
			copy(mem.Bytes()[argv[1]:], local)
			putU32(mem, argv[2], uint32(len(local)))
			return 0
		})
	if argv[3] != 0 {
		t.Errorf("argv = %v", argv)
	}
	if !res.Present || res.Err != nil {
		t.Fatalf("result = %+v", res)
	}
	ap, err := abi.DecodeSockaddrInet(addr[:addrLen])
	if err != nil || ap.String() != "127.0.0.1:4242" {
		t.Errorf("address = %v, %v", ap, err)
	}
}

func TestGetpid(t *testing.T) {
	res, argv := run[call.None, call.None](t, Getpid{},
		func(mem *sharedmem.Slice, argv abi.Argv) abi.Ret { return 4321 })
	if argv != (abi.Argv{}) {
		t.Errorf("argv = %v", argv)
	}
	if !res.Present || res.Value != 4321 {
		t.Errorf("result = %+v", res)
	}
}
