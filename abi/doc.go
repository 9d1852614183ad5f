// Package abi defines what travels through the shared block: call numbers,
// the six argument words, the result word and the header that holds them.
//
// Header layout (all words little-endian):
//
//	0   u64      call number
//	8   u64 x 6  argv
//	56  i64      result, written by the host
//	64  ...      arena data
//
// A result in [-4095, -1] is a negated Linux errno. Anything else is a
// success value.
package abi
