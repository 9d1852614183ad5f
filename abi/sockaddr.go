package abi

import (
	"encoding/binary"
	"net/netip"

	"github.com/wippyai/hostcall/errors"
)

// Address families and encoded sizes, Linux layout.
const (
	AFInet  = 2
	AFInet6 = 10

	SizeofSockaddrInet4 = 16
	SizeofSockaddrInet6 = 28

	// SizeofSockaddrStorage is enough room for any address the host returns.
	SizeofSockaddrStorage = 128
)

// EncodeSockaddrInet renders ap as a sockaddr_in or sockaddr_in6. The family
// is in host (little-endian) order, the port in network order.
func EncodeSockaddrInet(ap netip.AddrPort) []byte {
	addr := ap.Addr()
	if addr.Is4() {
		b := make([]byte, SizeofSockaddrInet4)
		binary.LittleEndian.PutUint16(b[0:], AFInet)
		binary.BigEndian.PutUint16(b[2:], ap.Port())
		a4 := addr.As4()
		copy(b[4:8], a4[:])
		return b
	}

	b := make([]byte, SizeofSockaddrInet6)
	binary.LittleEndian.PutUint16(b[0:], AFInet6)
	binary.BigEndian.PutUint16(b[2:], ap.Port())
	a16 := addr.As16()
	copy(b[8:24], a16[:])
	return b
}

// DecodeSockaddrInet parses a sockaddr_in or sockaddr_in6.
func DecodeSockaddrInet(b []byte) (netip.AddrPort, error) {
	if len(b) < 2 {
		return netip.AddrPort{}, sockaddrError("address too short: %d bytes", len(b))
	}
	family := binary.LittleEndian.Uint16(b)
	switch family {
	case AFInet:
		if len(b) < 8 {
			return netip.AddrPort{}, sockaddrError("sockaddr_in too short: %d bytes", len(b))
		}
		port := binary.BigEndian.Uint16(b[2:])
		return netip.AddrPortFrom(netip.AddrFrom4([4]byte(b[4:8])), port), nil
	case AFInet6:
		if len(b) < 24 {
			return netip.AddrPort{}, sockaddrError("sockaddr_in6 too short: %d bytes", len(b))
		}
		port := binary.BigEndian.Uint16(b[2:])
		return netip.AddrPortFrom(netip.AddrFrom16([16]byte(b[8:24])), port), nil
	default:
		return netip.AddrPort{}, sockaddrError("unsupported address family %d", family)
	}
}

func sockaddrError(format string, args ...any) error {
	return errors.New(errors.PhaseCollect, errors.KindInvalidInput).
		Detail(format, args...).
		Build()
}
